package flow

// Prompt templates for AI-assisted stage generation. Slots are filled by
// the engine's prompt builder from the finalized content of the parent and
// its ancestors; a slot with no matching ancestor renders as "无".

const promptDesign = `请基于以下需求分析，生成详细的设计方案：

需求内容：
{{parent_content}}

请包含：
1. 技术架构设计
2. 核心模块划分
3. 接口设计
4. 数据模型设计
5. 关键流程设计`

const promptImplementation = `请基于以下设计方案，生成详细的实现方案：

需求：
{{requirement_content|无}}

设计方案：
{{parent_content}}

请包含：
1. 技术栈选型
2. 目录结构
3. 核心代码实现要点
4. 关键类和方法说明
5. 实现步骤`

const promptTest = `请基于以下实现方案，生成测试方案：

需求：
{{requirement_content|无}}

设计：
{{design_content|无}}

实现方案：
{{parent_content}}

请包含：
1. 单元测试计划
2. 集成测试计划
3. 测试用例列表
4. 测试数据准备
5. 验收标准`

const promptCodeReview = `请基于以下测试结果，生成代码评审报告：

实现方案：
{{implementation_content|无}}

测试结果：
{{parent_content}}

请包含：
1. 代码质量评估
2. 架构合理性
3. 安全性检查
4. 性能优化建议
5. 改进建议`

const promptDocumentation = `请基于以下内容，生成技术文档：

需求：
{{requirement_content|无}}

设计：
{{design_content|无}}

实现：
{{implementation_content|无}}

评审意见：
{{parent_content}}

请包含：
1. 功能说明
2. API文档
3. 使用指南
4. 部署说明
5. 常见问题`

const promptBugAnalysis = `请分析以下Bug报告：

Bug描述：
{{parent_content}}

请提供：
1. 问题根因分析
2. 影响范围评估
3. 可能的解决方案
4. 风险评估`

const promptBugFix = `请基于以下问题分析，提供修复方案：

Bug报告：
{{bug_report_content|无}}

问题分析：
{{parent_content}}

请提供：
1. 具体修复步骤
2. 代码修改点
3. 配置调整
4. 数据迁移方案（如需要）`

const promptBugVerify = `请为以下修复方案提供验证计划：

修复方案：
{{parent_content}}

请提供：
1. 验证步骤
2. 回归测试计划
3. 验收标准
4. 回滚预案`
