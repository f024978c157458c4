// Package templates implements the {{name}} substitution dialect used by
// flow rule prompts and label templates.
//
// Supported forms:
//
//	{{name}}          substituted when the variable is present, otherwise
//	                  left verbatim (Validate reports it as missing)
//	{{name|default}}  substituted with the default when absent
package templates

import (
	"regexp"
	"strings"
)

var (
	withDefaultRe = regexp.MustCompile(`\{\{(\w+)\|([^}]*)\}\}`)
	simpleRe      = regexp.MustCompile(`\{\{(\w+)\}\}`)
	anyVarRe      = regexp.MustCompile(`\{\{(\w+)(?:\|[^}]*)?\}\}`)
)

// Render substitutes variables into the template. Variables with a default
// fall back to it; plain variables with no value are left in place so the
// caller can detect them with Validate.
func Render(template string, vars map[string]string) string {
	result := withDefaultRe.ReplaceAllStringFunc(template, func(m string) string {
		groups := withDefaultRe.FindStringSubmatch(m)
		if v, ok := vars[groups[1]]; ok {
			return v
		}
		return groups[2]
	})

	return simpleRe.ReplaceAllStringFunc(result, func(m string) string {
		name := simpleRe.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// RenderWithFallback behaves like Render but substitutes fallback for any
// plain variable with no value, instead of leaving it verbatim.
func RenderWithFallback(template string, vars map[string]string, fallback string) string {
	result := withDefaultRe.ReplaceAllStringFunc(template, func(m string) string {
		groups := withDefaultRe.FindStringSubmatch(m)
		if v, ok := vars[groups[1]]; ok {
			return v
		}
		return groups[2]
	})

	return simpleRe.ReplaceAllStringFunc(result, func(m string) string {
		name := simpleRe.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return fallback
	})
}

// Validation is the outcome of checking a template against a variable set.
type Validation struct {
	Valid    bool
	Missing  []string // required variables with no value
	Required []string // variables without defaults
	Optional []string // variables with defaults
}

// Validate reports which required variables are missing from vars.
func Validate(template string, vars map[string]string) Validation {
	optional := make(map[string]bool)
	for _, m := range withDefaultRe.FindAllStringSubmatch(template, -1) {
		optional[m[1]] = true
	}

	var required, missing []string
	seen := make(map[string]bool)
	for _, m := range simpleRe.FindAllStringSubmatch(template, -1) {
		name := m[1]
		if optional[name] || seen[name] {
			continue
		}
		seen[name] = true
		required = append(required, name)
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}

	var optionalList []string
	for _, m := range withDefaultRe.FindAllStringSubmatch(template, -1) {
		if !contains(optionalList, m[1]) {
			optionalList = append(optionalList, m[1])
		}
	}

	return Validation{
		Valid:    len(missing) == 0,
		Missing:  missing,
		Required: required,
		Optional: optionalList,
	}
}

// Variables returns every variable referenced by the template, in order of
// first appearance.
func Variables(template string) []string {
	var out []string
	for _, m := range anyVarRe.FindAllStringSubmatch(template, -1) {
		if !contains(out, m[1]) {
			out = append(out, m[1])
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
