// Package scheduler periodically re-runs saved searches.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/jobscout/internal/adapters/repository"
	"github.com/okian/jobscout/internal/domain/dedupe"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

const (
	defaultSpec     = "@every 6h"
	defaultLimit    = 12
	defaultSeenSize = 100000
)

// Searcher runs one search.
type Searcher interface {
	Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error)
}

// Scheduler wraps robfig/cron and re-runs every active saved search on each tick.
type Scheduler struct {
	cron     *cron.Cron
	store    repository.Store
	searcher Searcher

	spec       string
	limit      int
	seenSize   int
	runOnStart bool
	now        func() time.Time
	logger     logger.Logger

	mu     sync.Mutex
	seen   dedupe.Deduper
	primed map[string]bool
	wg     sync.WaitGroup
}

// New creates a Scheduler. Call Start to register the job.
func New(store repository.Store, searcher Searcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:      store,
		searcher:   searcher,
		spec:       defaultSpec,
		limit:      defaultLimit,
		seenSize:   defaultSeenSize,
		runOnStart: true,
		now:        time.Now,
		logger:     logger.Get().Named("scheduler"),
		primed:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seen = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.seenSize))
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	return s
}

// Start registers the refresh job and starts the cron loop. Unless disabled
// with WithRunOnStart(false), one refresh also runs immediately in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error(ctx, "saved search refresh failed", logger.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrSchedule, s.spec, err)
	}

	s.cron.Start()
	s.logger.Info(ctx, "scheduler started", logger.String("spec", s.spec))

	if s.runOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error(ctx, "saved search refresh failed", logger.Error(err))
			}
		}()
	}
	return nil
}

// Stop stops the cron loop and waits for a running refresh, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		<-s.cron.Stop().Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info(ctx, "scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn(ctx, "scheduler stop timed out", logger.Error(ctx.Err()))
	}
}

// RunOnce re-runs every active saved search and returns how many completed.
// A failing search is logged and counted in metrics; it does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	searches, err := s.store.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrListFailed, err)
	}
	if len(searches) == 0 {
		s.logger.Debug(ctx, "no active saved searches")
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	completed := 0
	for _, saved := range searches {
		if ctx.Err() != nil {
			return completed, ctx.Err()
		}
		if err := s.refresh(ctx, saved); err != nil {
			metrics.RecordSavedSearchRun("error")
			s.logger.Warn(ctx, "saved search run failed",
				logger.String("id", saved.ID),
				logger.String("title", saved.Title),
				logger.Error(err))
			continue
		}
		metrics.RecordSavedSearchRun("ok")
		completed++
	}

	s.logger.Info(ctx, "saved search refresh complete",
		logger.Int("searches", len(searches)),
		logger.Int("completed", completed),
		logger.Duration("took", s.now().Sub(start)))
	return completed, nil
}

func (s *Scheduler) refresh(ctx context.Context, saved model.SavedSearch) error {
	res, err := s.searcher.Search(ctx, saved.Query(s.limit))
	if err != nil {
		return err
	}

	fresh := 0
	for i := range res.Jobs {
		key := saved.ID + "|" + dedupe.TitleCompanyKey(&res.Jobs[i])
		if !s.seen.SeenAndRecord(ctx, key) {
			fresh++
		}
	}
	// The first run in this process only fills the seen set.
	if !s.primed[saved.ID] {
		s.primed[saved.ID] = true
		fresh = 0
	}

	return s.store.RecordRun(ctx, saved.ID, res.TotalCount, fresh, s.now())
}
