// Package aggregate runs every configured provider and merges their records
// into a single snapshot keyed by uid.
package aggregate

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobby/internal/model"
)

var errDuplicateUID = errors.New("uid produced more than once")

// Aggregator fetches from providers and merges the results.
type Aggregator struct {
	concurrency int
	filter      model.RecordFilter // nil keeps everything
	logger      *slog.Logger
}

// NewAggregator creates an aggregator. concurrency below 2 fetches one
// provider at a time; filter may be nil.
func NewAggregator(concurrency int, filter model.RecordFilter, logger *slog.Logger) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		concurrency: concurrency,
		filter:      filter,
		logger:      logger,
	}
}

// fetchResult is the outcome of one provider's fetch, kept by provider index.
type fetchResult struct {
	records []model.Record
	err     error
}

// Collect fetches every provider and merges the records into one collection.
//
// A failed provider is logged and contributes nothing. Records are merged in
// provider order after all fetches finish, so when two providers produce the
// same uid the later provider wins regardless of which fetch completed
// first; each such collision is logged as a configuration error.
func (a *Aggregator) Collect(ctx context.Context, providers []model.Provider) *model.Collection {
	results := a.fetchAll(ctx, providers)

	merged := model.NewCollection()
	failed := 0
	for i, p := range providers {
		res := results[i]
		if res.err != nil {
			failed++
			a.logger.Error("fetch failed", "kind", p.Kind(), "name", p.Name(), "error", res.err)
			continue
		}

		kept := 0
		for _, r := range res.records {
			if a.filter != nil && !a.filter.Match(r) {
				continue
			}
			kept++
			if merged.Put(r) {
				a.logger.Warn("duplicate uid, keeping the later record",
					"uid", r.UID,
					"error", &model.ConfigError{Kind: p.Kind(), Key: p.Name(), Err: errDuplicateUID},
				)
			}
		}

		a.logger.Info("fetched provider",
			"kind", p.Kind(),
			"name", p.Name(),
			"fetched", len(res.records),
			"kept", kept,
		)
	}

	a.logger.Info("aggregation complete",
		"providers", len(providers),
		"failed", failed,
		"records", merged.Len(),
	)
	return merged
}

func (a *Aggregator) fetchAll(ctx context.Context, providers []model.Provider) []fetchResult {
	results := make([]fetchResult, len(providers))

	if a.concurrency == 1 {
		for i, p := range providers {
			if err := ctx.Err(); err != nil {
				results[i].err = err
				continue
			}
			results[i].records, results[i].err = p.FetchJobs(ctx)
		}
		return results
	}

	// Errors are kept per provider rather than returned, so one failure
	// never cancels the others.
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, p := range providers {
		g.Go(func() error {
			results[i].records, results[i].err = p.FetchJobs(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
