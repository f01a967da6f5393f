// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rustinb303/ai-pr-watcher/internal/config"
	"github.com/rustinb303/ai-pr-watcher/internal/domain"
	"github.com/rustinb303/ai-pr-watcher/internal/gateway"
)

// Collector is the use case for building one snapshot per run. It fans
// out one fetch per configured service and joins the results before the
// snapshot is recorded.
type Collector struct {
	fetcher  gateway.Fetcher
	services []config.Service
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, services []config.Service, logger zerolog.Logger) *Collector {
	return &Collector{
		fetcher:  fetcher,
		services: services,
		logger:   logger,
		now:      time.Now,
	}
}

// Collect fetches current counts for every configured service
// concurrently. Services share no mutable state, so a failing service
// never blocks the others: its fields stay absent and the failure is
// accumulated into the returned error. The snapshot is still usable
// whenever at least one service reported; Collect fails outright only
// when no service produced a single metric.
func (c *Collector) Collect(ctx context.Context) (domain.Snapshot, error) {
	c.logger.Debug().Int("services", len(c.services)).Msg("starting collection")

	stats := make([]domain.ServiceStat, len(c.services))
	var mu sync.Mutex
	var merr *multierror.Error

	eg, egCtx := errgroup.WithContext(ctx)
	for i, svc := range c.services {
		i, svc := i, svc
		eg.Go(func() error {
			stat, err := c.collectService(egCtx, svc)
			stats[i] = stat
			if err != nil {
				c.logger.Warn().Err(err).Str("service", svc.Name).Msg("service collection failed")
				mu.Lock()
				merr = multierror.Append(merr, err)
				mu.Unlock()
			}
			// Failures are isolated per service, never abort the group.
			return nil
		})
	}
	_ = eg.Wait()

	snap := domain.Snapshot{Timestamp: c.now().UTC(), Stats: stats}
	if !snap.HasData() {
		err := merr.ErrorOrNil()
		if err == nil {
			err = errors.New("no services configured")
		}
		return snap, fmt.Errorf("collection produced no data: %w", err)
	}
	c.logger.Debug().Time("timestamp", snap.Timestamp).Msg("collection complete")
	return snap, merr.ErrorOrNil()
}

// collectService fetches the counts for a single service. PR services
// report a total and a merged count; commit services report commits
// only. The returned stat keeps whatever was fetched before an error.
func (c *Collector) collectService(ctx context.Context, svc config.Service) (domain.ServiceStat, error) {
	stat := domain.ServiceStat{Service: svc.Name}

	switch svc.Metric {
	case config.MetricCommits:
		count, err := c.countWithRetry(ctx, svc.Query, c.fetcher.CountCommits)
		if err != nil {
			return stat, wrapRetrieval(svc, err)
		}
		stat.Commits = domain.Count(count)

	case config.MetricPulls:
		total, err := c.countWithRetry(ctx, svc.Query, c.fetcher.CountPRs)
		if err != nil {
			return stat, wrapRetrieval(svc, err)
		}
		stat.TotalPRs = domain.Count(total)

		merged, err := c.countWithRetry(ctx, svc.MergedQuery(), c.fetcher.CountPRs)
		if err != nil {
			return stat, wrapRetrieval(svc, err)
		}
		stat.MergedPRs = domain.Count(merged)

	default:
		return stat, fmt.Errorf("service %s: unknown metric kind %q", svc.Name, svc.Metric)
	}

	return stat, nil
}

// countWithRetry applies the retry-once-then-mark-absent policy. A
// malformed response is not retried; the shape will not improve.
func (c *Collector) countWithRetry(ctx context.Context, query string, count func(context.Context, string) (int, error)) (int, error) {
	n, err := count(ctx, query)
	if err == nil {
		return n, nil
	}
	var formatErr *gateway.FormatError
	if errors.As(err, &formatErr) || ctx.Err() != nil {
		return 0, err
	}
	c.logger.Debug().Err(err).Str("query", query).Msg("count failed, retrying once")
	return count(ctx, query)
}

// wrapRetrieval keeps FormatErrors as-is and marks everything else as a
// per-service retrieval failure.
func wrapRetrieval(svc config.Service, err error) error {
	var formatErr *gateway.FormatError
	if errors.As(err, &formatErr) {
		return err
	}
	return &gateway.RetrievalError{Service: svc.Name, Query: svc.Query, Err: err}
}
