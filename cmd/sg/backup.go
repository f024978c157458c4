package main

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/server"
	"github.com/alfredjeanlab/specgraph/internal/snapshot"
)

var backupCmd = &cobra.Command{
	Use:   "backup [file]",
	Short: "Export the graph as a JSONL snapshot",
	Long: `Export the graph as a JSONL snapshot.

Without an argument the snapshot goes to .specgraph/backups/. With --s3
the snapshot is also uploaded to the bucket configured under [snapshot]
in .specgraph/config.toml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toS3, _ := cmd.Flags().GetBool("s3")

		return withRuntime(func(rt *server.Runtime) error {
			var buf bytes.Buffer
			if err := snapshot.ExportJSONL(cmd.Context(), rt.Store, &buf); err != nil {
				return err
			}

			name := fmt.Sprintf("graph-%s.jsonl", time.Now().UTC().Format("20060102T150405Z"))
			target := filepath.Join(workspaceRoot, ".specgraph", "backups", name)
			if len(args) == 1 {
				target = args[0]
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating backup dir: %w", err)
			}
			if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
			fmt.Printf("Wrote snapshot to %s (%d bytes)\n", target, buf.Len())

			if toS3 {
				snap := rt.Config.Snapshot
				if snap.Bucket == "" {
					return fmt.Errorf("--s3 requires snapshot.bucket in the workspace config")
				}
				key := path.Join(snap.Prefix, filepath.Base(target))
				dst, err := snapshot.NewS3Destination(cmd.Context(), snap.Bucket, key, snap.Region, snap.Endpoint)
				if err != nil {
					return err
				}
				if err := dst.Write(cmd.Context(), buf.Bytes()); err != nil {
					return err
				}
				fmt.Printf("Uploaded snapshot to s3://%s/%s\n", snap.Bucket, key)
			}
			return nil
		})
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Import a JSONL snapshot into the workspace graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening snapshot: %w", err)
		}
		defer f.Close()

		return withRuntime(func(rt *server.Runtime) error {
			if err := snapshot.ImportJSONL(cmd.Context(), rt.Store, f); err != nil {
				return err
			}
			fmt.Printf("Restored snapshot %s\n", args[0])
			return nil
		})
	},
}

func init() {
	backupCmd.Flags().Bool("s3", false, "also upload the snapshot to the configured S3 bucket")
}
