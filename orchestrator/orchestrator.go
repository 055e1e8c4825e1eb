// Package orchestrator precomputes related-article sets for freshly published
// articles, keeps them warm in the cache and exports them as JSON snapshots.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"newsgraph/aql"
	"newsgraph/cache"
	"newsgraph/config"
	"newsgraph/logger"
	"newsgraph/retrieval"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// WarmKeysSet is the sorted set of warmed article keys scored by last warm time.
const WarmKeysSet = "newsgraph:warm:keys"

// Options tunes the lookups a warm run performs.
type Options struct {
	Depth          aql.Depth
	EdgeCollection string
	Threshold      float64
	Limit          int
	Window         int64
	Retention      time.Duration
	Concurrency    int
}

// DefaultOptions mirrors the API defaults.
func DefaultOptions() Options {
	return Options{
		Depth:          aql.Depth{Min: 1, Max: 2},
		EdgeCollection: config.DefaultEdgeCollection,
		Threshold:      config.DefaultSimilarityThreshold,
		Limit:          config.DefaultLimit,
		Window:         config.DefaultWindow,
		Retention:      config.WarmKeyRetention,
		Concurrency:    config.MaxConcurrentWarms,
	}
}

// RunSummary reports one RunOnce pass.
type RunSummary struct {
	RunID  string
	Warmed int
	Failed int
}

// Runner warms article keys. Exporter and Redis are optional: without an
// exporter nothing is uploaded, without Redis keys are not remembered.
type Runner struct {
	svc      retrieval.Service
	exporter *Exporter
	rdb      redis.Cmdable
	opts     Options
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running atomic.Bool
}

// NewRunner creates a runner. Zero option fields take their defaults.
func NewRunner(svc retrieval.Service, exporter *Exporter, rdb redis.Cmdable, opts Options) *Runner {
	def := DefaultOptions()
	if opts.Depth == (aql.Depth{}) {
		opts.Depth = def.Depth
	}
	if opts.EdgeCollection == "" {
		opts.EdgeCollection = def.EdgeCollection
	}
	if opts.Threshold == 0 {
		opts.Threshold = def.Threshold
	}
	if opts.Limit <= 0 {
		opts.Limit = def.Limit
	}
	if opts.Window <= 0 {
		opts.Window = def.Window
	}
	if opts.Retention <= 0 {
		opts.Retention = def.Retention
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = def.Concurrency
	}
	return &Runner{svc: svc, exporter: exporter, rdb: rdb, opts: opts, now: time.Now}
}

// Warm computes the similarity and path-count sets of articleKey, refreshing
// any cached copies, exports the snapshot and remembers the key.
func (r *Runner) Warm(ctx context.Context, articleKey string) (Snapshot, error) {
	return r.warm(ctx, articleKey, "")
}

func (r *Runner) warm(ctx context.Context, articleKey, runID string) (Snapshot, error) {
	if articleKey == "" {
		return Snapshot{}, fmt.Errorf("%w: article key is required", retrieval.ErrInvalidRequest)
	}
	ctx = cache.WithRefresh(ctx)
	snap := Snapshot{ArticleKey: articleKey, RunID: runID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := r.svc.RelatedBySimilarity(gctx, retrieval.SimilarityRequest{
			ArticleKey:     articleKey,
			Depth:          r.opts.Depth,
			EdgeCollection: r.opts.EdgeCollection,
			Threshold:      r.opts.Threshold,
		})
		snap.Similar = recs
		return err
	})
	g.Go(func() error {
		recs, err := r.svc.RelatedByPathCount(gctx, retrieval.PathCountRequest{
			ArticleKey: articleKey,
			Depth:      r.opts.Depth,
			Limit:      r.opts.Limit,
			Window:     r.opts.Window,
		})
		snap.ByPathCount = recs
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to warm %s: %w", articleKey, err)
	}
	snap.GeneratedAt = r.now().UTC()

	if r.exporter != nil {
		if err := r.exporter.Export(ctx, snap); err != nil {
			return snap, err
		}
	}
	if r.rdb != nil {
		z := redis.Z{Score: float64(snap.GeneratedAt.Unix()), Member: articleKey}
		if err := r.rdb.ZAdd(ctx, WarmKeysSet, z).Err(); err != nil {
			return snap, fmt.Errorf("failed to record warmed key %s: %w", articleKey, err)
		}
	}
	logger.Debug("warmed article", "article", articleKey, "similar", len(snap.Similar), "by_path_count", len(snap.ByPathCount))
	return snap, nil
}

// RecentKeys returns keys warmed within the retention period and drops older ones.
func (r *Runner) RecentKeys(ctx context.Context) ([]string, error) {
	if r.rdb == nil {
		return nil, errors.New("warm key set requires redis")
	}
	cutoff := strconv.FormatInt(r.now().Add(-r.opts.Retention).Unix(), 10)
	if err := r.rdb.ZRemRangeByScore(ctx, WarmKeysSet, "-inf", "("+cutoff).Err(); err != nil {
		return nil, fmt.Errorf("failed to expire warmed keys: %w", err)
	}
	keys, err := r.rdb.ZRangeByScore(ctx, WarmKeysSet, &redis.ZRangeBy{Min: cutoff, Max: "+inf"}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list warmed keys: %w", err)
	}
	return keys, nil
}

// RunOnce re-warms every recently warmed key. Individual failures are logged
// and counted; only a failure to list the keys fails the run.
func (r *Runner) RunOnce(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}
	keys, err := r.RecentKeys(ctx)
	if err != nil {
		return summary, err
	}
	logger.Info("warm run starting", "run_id", summary.RunID, "keys", len(keys))

	var warmed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for _, key := range keys {
		g.Go(func() error {
			if _, err := r.warm(gctx, key, summary.RunID); err != nil {
				failed.Add(1)
				logger.Warn("warm failed", "run_id", summary.RunID, "article", key, "err", err)
				return nil
			}
			warmed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	summary.Warmed = int(warmed.Load())
	summary.Failed = int(failed.Load())
	logger.Info("warm run complete", "run_id", summary.RunID, "warmed", summary.Warmed, "failed", summary.Failed)
	return summary, ctx.Err()
}

// StartCron schedules RunOnce. A tick is skipped while a run is in progress.
func (r *Runner) StartCron(spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return errors.New("warm schedule already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, r.tick); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	c.Start()
	r.cron = c
	logger.Info("warm schedule started", "schedule", spec)
	return nil
}

func (r *Runner) tick() {
	if !r.running.CompareAndSwap(false, true) {
		logger.Info("warm run skipped, previous run still in progress")
		return
	}
	defer r.running.Store(false)

	if _, err := r.RunOnce(context.Background()); err != nil {
		logger.Error("warm run failed", "err", err)
	}
}

// Stop stops the schedule and waits for a running job to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
