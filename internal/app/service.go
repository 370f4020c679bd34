// Package service runs the job search pipeline behind the HTTP API.
//
// One search fans out to every provider through the fetch pool, waits for every
// outcome, then normalizes, dedupes, filters, ranks and paginates the merged
// listings. Provider failures are reported per source; they never fail the search.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/okian/jobscout/internal/adapters/mq/queue"
	workerpool "github.com/okian/jobscout/internal/adapters/mq/worker"
	"github.com/okian/jobscout/internal/adapters/sources"
	"github.com/okian/jobscout/internal/domain/dedupe"
	"github.com/okian/jobscout/internal/domain/filter"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/normalize"
	"github.com/okian/jobscout/internal/domain/scoring"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultResultsPerCall = 20
	maxResultsPerCall     = 100
	defaultMaxLimit       = 50
	defaultQueueSize      = 1024
)

// Pipeline stage names used in metrics.
const (
	stageFetch     = "fetch"
	stageNormalize = "normalize"
	stageDedupe    = "dedupe"
	stageFilter    = "filter"
	stageRank      = "rank"
	stageBoost     = "boost"
)

// Outcome is the settled result of one provider branch.
type Outcome = queue.Outcome

// Sizer reports how many entries a cache holds.
type Sizer interface {
	Len() int
}

// Service implements the API dependencies for job search.
type Service struct {
	mu sync.RWMutex

	// Core components
	clients    []sources.Client
	normalizer *normalize.Normalizer
	ranker     *scoring.Ranker
	dedupeKey  dedupe.KeyFunc
	queue      *queue.InMemoryQueue
	pool       *workerpool.Pool
	geoCache   Sizer

	// Configuration
	workerCount    int
	queueSize      int
	resultsPerCall int
	maxLimit       int
	dedupePolicy   string

	// State
	started bool
	cancel  context.CancelFunc
	stats   *searchStats
	now     func() time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClients sets the providers to fan out to.
func WithClients(clients ...sources.Client) Option {
	return func(s *Service) {
		s.clients = clients
	}
}

// WithNormalizer sets the normalizer, typically one wired to the geocode cache.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithRanker sets the ranker.
func WithRanker(r *scoring.Ranker) Option {
	return func(s *Service) {
		if r != nil {
			s.ranker = r
		}
	}
}

// WithDedupePolicy selects the identity key. Unknown policies are rejected by Start.
func WithDedupePolicy(policy string) Option {
	return func(s *Service) {
		s.dedupePolicy = policy
	}
}

// WithWorkerCount sets the number of fetch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets how many fetches may wait for a worker.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithResultsPerCall sets the minimum page size asked of each provider.
func WithResultsPerCall(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.resultsPerCall = n
		}
	}
}

// WithMaxLimit caps the page size a caller may request.
func WithMaxLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithGeocodeCache exposes the geocode cache size in stats.
func WithGeocodeCache(c Sizer) Option {
	return func(s *Service) {
		s.geoCache = c
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Call Start before Search.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU() * 4,
		queueSize:      defaultQueueSize,
		resultsPerCall: defaultResultsPerCall,
		maxLimit:       defaultMaxLimit,
		dedupePolicy:   dedupe.PolicyTitleCompany,
		now:            time.Now,
		stats:          newSearchStats(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("search")
	}
	if s.normalizer == nil {
		s.normalizer = normalize.New()
	}
	if s.ranker == nil {
		s.ranker = scoring.NewRanker()
	}
	return s
}

// Start resolves the dedupe policy and starts the fetch pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	key, err := dedupe.KeyFor(s.dedupePolicy)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStart, err)
	}
	s.dedupeKey = key

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, workerpool.WithPoolLogger(s.logger.Named("pool")))

	// Workers outlive the caller's context; only Stop ends them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	names := make([]string, 0, len(s.clients))
	for _, c := range s.clients {
		names = append(names, c.Name())
	}

	s.started = true
	s.logger.Info(ctx, "search service started",
		logger.Strings("sources", names),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("dedupePolicy", s.dedupePolicy),
	)
	return nil
}

// Stop drains the fetch pool.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.logger.Info(ctx, "search service stopped")
	return err
}

// Search runs one aggregation. Only an invalid query or a stopped service
// returns an error; every other failure is reported inside the result.
func (s *Service) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	start := s.now()

	s.mu.RLock()
	started, pool, key := s.started, s.pool, s.dedupeKey
	s.mu.RUnlock()
	if !started {
		return model.SearchResult{}, ErrNotStarted
	}

	q.Title = strings.TrimSpace(q.Title)
	q.Location = strings.TrimSpace(q.Location)
	if q.Limit > s.maxLimit {
		q.Limit = s.maxLimit
	}
	if err := q.Validate(); err != nil {
		return model.SearchResult{}, err
	}

	result := model.SearchResult{
		Jobs:    []model.NormalizedJob{},
		Sources: make(map[string]model.SourceStatus, len(s.clients)),
		Page:    q.Page,
		Limit:   q.Limit,
		Errors:  []model.SourceError{},
	}

	where := s.locate(ctx, q.Location)

	fetchStart := s.now()
	outcomes := s.fanOut(ctx, pool, q)
	metrics.RecordStageLatency(stageFetch, msSince(s.now, fetchStart))

	batches := make([]normalize.Batch, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			result.Sources[o.Source] = model.SourceStatus{Success: false, Error: o.Err.Error()}
			result.Errors = append(result.Errors, model.SourceError{Source: o.Source, Error: o.Err.Error()})
			s.stats.recordSource(o.Source, 0, false)
			s.logger.Warn(ctx, "source failed",
				logger.String("source", o.Source),
				logger.String("kind", string(sources.KindOf(o.Err))),
				logger.Error(o.Err),
			)
			continue
		}
		result.Sources[o.Source] = model.SourceStatus{Count: len(o.Jobs), Success: true}
		s.stats.recordSource(o.Source, len(o.Jobs), true)
		metrics.RecordSourceJobs(o.Source, len(o.Jobs))
		batches = append(batches, normalize.Batch{Source: o.Source, Jobs: o.Jobs})
	}

	ranked, err := s.pipeline(ctx, q, where, key, batches)
	outcome := "ok"
	if err != nil {
		outcome = "aggregator_error"
		metrics.RecordPipelineFailure()
		s.logger.Error(ctx, "pipeline failed", logger.String("title", q.Title), logger.Error(err))
		result.Errors = append(result.Errors, model.SourceError{Source: model.AggregatorSource, Error: err.Error()})
		ranked = nil
	} else if len(batches) == 0 && len(outcomes) > 0 {
		outcome = "all_sources_failed"
	}

	result.TotalCount = len(ranked)
	result.Jobs = paginate(ranked, q.Page, q.Limit)
	result.HasMore = q.Page*q.Limit < result.TotalCount
	result.QueryTimeMs = s.now().Sub(start).Milliseconds()

	s.stats.recordSearch(outcome, result.QueryTimeMs)
	metrics.RecordSearch(outcome, float64(result.QueryTimeMs), len(result.Jobs))
	s.logger.Info(ctx, "search completed",
		logger.String("title", q.Title),
		logger.String("location", q.Location),
		logger.Int("total", result.TotalCount),
		logger.Int("returned", len(result.Jobs)),
		logger.Int("errors", len(result.Errors)),
		logger.Int("queryTimeMs", int(result.QueryTimeMs)),
	)
	return result, nil
}

// locate geocodes the user's location once per search. It never fails the search.
func (s *Service) locate(ctx context.Context, raw string) (where model.Place) {
	if raw == "" {
		return model.Place{}
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "user location lookup panicked", logger.Any("panic", r))
			where = model.Place{Formatted: raw}
		}
	}()
	formatted, code := s.normalizer.Locate(ctx, raw)
	where.Formatted = formatted
	if code != nil {
		where.CountryCode = *code
	}
	return where
}

// fanOut submits every provider and waits for all of them. Outcomes keep client order.
func (s *Service) fanOut(ctx context.Context, pool *workerpool.Pool, q model.SearchQuery) []Outcome {
	size := s.resultsPerCall
	if want := q.Page * q.Limit; want > size {
		size = want
	}
	if size > maxResultsPerCall {
		size = maxResultsPerCall
	}

	replies := make([]<-chan Outcome, len(s.clients))
	for i, c := range s.clients {
		c := c
		replies[i] = pool.Submit(ctx, c.Name(), func(ctx context.Context) ([]model.RawJob, error) {
			return c.FetchJobs(ctx, q.Title, q.Filters, 1, size)
		})
	}

	outcomes := make([]Outcome, len(s.clients))
	for i, reply := range replies {
		select {
		case o := <-reply:
			outcomes[i] = o
		case <-ctx.Done():
			outcomes[i] = Outcome{Source: s.clients[i].Name(), Err: ctx.Err()}
		}
		outcomes[i].Source = s.clients[i].Name()
	}
	return outcomes
}

// pipeline runs the pure stages. A panic in any stage is returned as ErrPipeline.
func (s *Service) pipeline(ctx context.Context, q model.SearchQuery, where model.Place, key dedupe.KeyFunc, batches []normalize.Batch) (jobs []model.NormalizedJob, err error) {
	stage := stageNormalize
	defer func() {
		if r := recover(); r != nil {
			jobs = nil
			err = fmt.Errorf("%w: %s stage: %v", ErrPipeline, stage, r)
		}
	}()

	timed := func(name string, fn func()) {
		stage = name
		begin := s.now()
		fn()
		metrics.RecordStageLatency(name, msSince(s.now, begin))
	}

	timed(stageNormalize, func() { jobs = s.normalizer.NormalizeAll(ctx, batches) })
	timed(stageDedupe, func() { jobs = dedupe.Dedupe(ctx, jobs, key) })
	timed(stageFilter, func() { jobs = filter.Apply(jobs, q.Filters) })
	timed(stageRank, func() { jobs = s.ranker.Rank(jobs, q.Title, where) })
	timed(stageBoost, func() { jobs = s.ranker.Boost(jobs) })
	return jobs, nil
}

// paginate returns jobs[(page-1)*limit : page*limit], clipped, never nil.
func paginate(jobs []model.NormalizedJob, page, limit int) []model.NormalizedJob {
	from := (page - 1) * limit
	if from >= len(jobs) {
		return []model.NormalizedJob{}
	}
	to := from + limit
	if to > len(jobs) {
		to = len(jobs)
	}
	return jobs[from:to]
}

func msSince(now func() time.Time, t time.Time) float64 {
	return float64(now().Sub(t).Microseconds()) / 1000
}

// Sources returns the configured provider names in fan-out order.
func (s *Service) Sources() []string {
	names := make([]string, 0, len(s.clients))
	for _, c := range s.clients {
		names = append(names, c.Name())
	}
	return names
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"sources":      s.Sources(),
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupePolicy": s.dedupePolicy,
	}
	s.stats.fill(stats)

	if s.started {
		pending := s.pool.Pending(context.Background())
		stats["queueLength"] = pending
		metrics.UpdateQueueSize(pending)
	}
	if s.geoCache != nil {
		size := s.geoCache.Len()
		stats["geocodeCacheSize"] = size
		metrics.UpdateGeocodeCacheSize(size)
	}
	return stats
}
