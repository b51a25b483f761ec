// Package runner owns one aggregation run: load the previous snapshot,
// collect from every provider, diff, save and notify.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobby/internal/diff"
	"github.com/amishk599/jobby/internal/model"
)

// Collector fetches from providers and merges their records.
type Collector interface {
	Collect(ctx context.Context, providers []model.Provider) *model.Collection
}

// cleaner is implemented by stores that prune old runs.
type cleaner interface {
	Cleanup(olderThan time.Duration) error
}

// Runner wires providers, the snapshot store and the notifier into a single run.
type Runner struct {
	providers []model.Provider
	collector Collector
	store     model.SnapshotStore
	notifier  model.Notifier
	retention time.Duration
	logger    *slog.Logger
}

// NewRunner creates a runner wired with all its dependencies.
func NewRunner(
	providers []model.Provider,
	collector Collector,
	store model.SnapshotStore,
	notifier model.Notifier,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		providers: providers,
		collector: collector,
		store:     store,
		notifier:  notifier,
		logger:    logger,
	}
}

// WithRetention makes each run prune stored runs older than d, if the store
// supports it. Zero keeps everything.
func (r *Runner) WithRetention(d time.Duration) *Runner {
	r.retention = d
	return r
}

// Run performs one run and returns its labeled result.
//
// Failing to load or save the snapshot aborts the run, as does cancellation
// during the fetch: a partial collection would report every listing from the
// skipped providers as GONE. Notification and cleanup failures are only logged.
func (r *Runner) Run(ctx context.Context) (model.Result, error) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)
	start := time.Now()

	logger.Info("run started", "providers", len(r.providers))

	prev, err := r.store.Load()
	if err != nil {
		return model.Result{}, fmt.Errorf("run %s: loading previous snapshot: %w", runID, err)
	}

	cur := r.collector.Collect(ctx, r.providers)
	if err := ctx.Err(); err != nil {
		return model.Result{}, fmt.Errorf("run %s: %w", runID, err)
	}

	result := diff.Diff(prev, cur)

	if err := r.store.Save(result); err != nil {
		return model.Result{}, fmt.Errorf("run %s: saving snapshot: %w", runID, err)
	}

	if c, ok := r.store.(cleaner); ok && r.retention > 0 {
		if err := c.Cleanup(r.retention); err != nil {
			logger.Warn("cleanup failed", "error", err)
		}
	}

	if err := r.notifier.Notify(result); err != nil {
		logger.Error("notification failed", "error", err)
	}

	logger.Info("run complete",
		"previous", prev.Len(),
		"current", cur.Len(),
		"new", result.Count(model.LabelNew),
		"old", result.Count(model.LabelOld),
		"gone", result.Count(model.LabelGone),
		"duration", time.Since(start).Round(time.Millisecond).String(),
	)
	return result, nil
}
