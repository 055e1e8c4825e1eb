package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"newsgraph/common"
	"newsgraph/config"
	"newsgraph/orchestrator"

	"github.com/spf13/cobra"
)

// newSnapshotStore is replaced in tests.
var newSnapshotStore = func(ctx context.Context, cfg config.S3Config) (orchestrator.SnapshotStore, error) {
	s3c, err := common.NewS3(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s3c, nil
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <article-key>",
	Short: "Print the last exported related-article snapshot",
	Long: `Print the snapshot the warmer last exported for <article-key>.

Snapshots are read from S3_BUCKET under S3_PREFIX/related/<article-key>.json.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if cfg.S3.Bucket == "" {
		return errors.New("S3_BUCKET is not set")
	}

	store, err := newSnapshotStore(cmd.Context(), cfg.S3)
	if err != nil {
		return err
	}
	snap, err := orchestrator.NewExporter(store).Load(cmd.Context(), args[0])
	if errors.Is(err, common.ErrObjectNotFound) {
		return fmt.Errorf("no snapshot exported for %s", args[0])
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
