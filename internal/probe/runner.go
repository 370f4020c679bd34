// Package probe fires concurrent searches at a running jobscout server and
// checks every response for ordering, score bounds and pagination consistency.
package probe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/jobscout/pkg/logger"
)

// ErrViolations is returned when at least one response broke an invariant.
var ErrViolations = errors.New("probe found invariant violations")

// Run executes the probe and returns its statistics. Transport failures are
// counted, not returned; only a failed health check, a cancelled ctx or a
// violated invariant produce an error.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("probe")
	stats := &Stats{StartTime: time.Now(), SourceErrors: make(map[string]int)}

	log.Info(ctx, "starting search probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := c.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	requests := Generate(cfg)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, r := range requests {
		g.Go(func() error {
			start := time.Now()
			res, err := c.search(gctx, r)
			took := time.Since(start)

			var violations []string
			if err == nil {
				violations = Verify(r.Query, res)
			}

			mu.Lock()
			defer mu.Unlock()
			stats.Sent++
			stats.TotalLatency += took
			stats.MaxLatency = max(stats.MaxLatency, took)
			if err != nil {
				stats.Failed++
				log.Warn(gctx, "search failed", logger.String("requestID", r.ID), logger.Error(err))
				return nil
			}
			stats.Succeeded++
			stats.Jobs += len(res.Jobs)
			for _, e := range res.Errors {
				stats.SourceErrors[e.Source]++
			}
			stats.Violations += len(violations)
			if cfg.Verbose || len(violations) > 0 {
				log.Info(gctx, "search checked",
					logger.String("requestID", r.ID),
					logger.String("title", r.Query.Title),
					logger.Int("page", r.Query.Page),
					logger.Int("jobs", len(res.Jobs)),
					logger.Int("total", res.TotalCount),
					logger.Strings("violations", violations))
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Violations > 0 {
		return stats, fmt.Errorf("%w: %d", ErrViolations, stats.Violations)
	}
	return stats, nil
}

// Suggest queries the suggestions endpoint once.
func Suggest(ctx context.Context, cfg *Config, partial string) ([]string, []string, error) {
	c := newClient(cfg.BaseURL, cfg.Timeout)
	s, err := c.suggestions(ctx, partial)
	if err != nil {
		return nil, nil, err
	}
	return s.Titles, s.Locations, nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Sent) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("sent", stats.Sent),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Int("jobs", stats.Jobs),
		logger.Any("sourceErrors", stats.SourceErrors),
		logger.Duration("avgLatency", stats.AvgLatency()),
		logger.Duration("maxLatency", stats.MaxLatency),
		logger.Duration("duration", stats.Duration),
		logger.Float64("searchesPerSecond", perSecond))
}
