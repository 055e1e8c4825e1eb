package orchestrator

import (
	"context"
	"fmt"
	"time"

	"newsgraph/types"
)

// SnapshotStore persists JSON documents by name. common.S3 implements it.
type SnapshotStore interface {
	PutJSON(ctx context.Context, name string, v any) error
	GetJSON(ctx context.Context, name string, v any) error
}

// Snapshot is the exported related set of one article.
type Snapshot struct {
	ArticleKey  string                 `json:"article_key"`
	RunID       string                 `json:"run_id,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
	Similar     []types.RelatedArticle `json:"similar"`
	ByPathCount []types.RelatedArticle `json:"by_path_count"`
}

// SnapshotName is the object name of an article's snapshot.
func SnapshotName(articleKey string) string {
	return "related/" + articleKey + ".json"
}

// Exporter writes snapshots to object storage.
type Exporter struct {
	store SnapshotStore
}

func NewExporter(store SnapshotStore) *Exporter {
	return &Exporter{store: store}
}

// Export uploads snap under its article's name.
func (e *Exporter) Export(ctx context.Context, snap Snapshot) error {
	if err := e.store.PutJSON(ctx, SnapshotName(snap.ArticleKey), snap); err != nil {
		return fmt.Errorf("failed to export %s: %w", snap.ArticleKey, err)
	}
	return nil
}

// Load reads back the last exported snapshot of articleKey.
func (e *Exporter) Load(ctx context.Context, articleKey string) (Snapshot, error) {
	var snap Snapshot
	if err := e.store.GetJSON(ctx, SnapshotName(articleKey), &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
