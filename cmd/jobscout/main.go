package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/jobscout/internal/adapters/geocode"
	"github.com/okian/jobscout/internal/adapters/http/api"
	"github.com/okian/jobscout/internal/adapters/http/swagger"
	"github.com/okian/jobscout/internal/adapters/repository"
	"github.com/okian/jobscout/internal/adapters/sources"
	service "github.com/okian/jobscout/internal/app"
	"github.com/okian/jobscout/internal/config"
	"github.com/okian/jobscout/internal/domain/normalize"
	"github.com/okian/jobscout/internal/domain/scoring"
	"github.com/okian/jobscout/internal/scheduler"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	connectTimeout            = 10 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	a, err := newApplication(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to start", logger.Error(err))
		os.Exit(1)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, a.svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.Strings("sources", a.svc.Sources()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Error(ctx, "HTTP server failed", logger.Error(err))
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	a.close(shutdownCtx)

	log.Info(shutdownCtx, "server stopped")
}

// application holds the wired components of the server process.
type application struct {
	svc   *service.Service
	store repository.Store
	sched *scheduler.Scheduler
	rdb   *redis.Client
	mux   *http.ServeMux
	log   logger.Logger
}

// newApplication wires and starts every component described by cfg.
// A missing Redis is tolerated; a configured but unreachable database is not.
func newApplication(ctx context.Context, cfg *config.Config, log logger.Logger) (*application, error) {
	a := &application{log: log}

	cacheOpts := []geocode.CacheOption{
		geocode.WithTTL(cfg.GeocodeCacheTTL()),
		geocode.WithMaxSize(cfg.GeocodeCacheSize),
	}
	if cfg.RedisURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		rdb, err := geocode.NewRedisClient(connectCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Warn(ctx, "redis unavailable; geocode cache stays in-process", logger.Error(err))
		} else {
			a.rdb = rdb
			cacheOpts = append(cacheOpts, geocode.WithRemote(geocode.NewRedisStore(rdb)))
		}
	}
	geoCache := geocode.NewCache(geocode.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeAPIKey), cacheOpts...)

	a.svc = service.New(
		service.WithLogger(log.Named("service")),
		service.WithClients(sources.NewRegistry(cfg)...),
		service.WithNormalizer(normalize.New(normalize.WithGeocoder(geoCache))),
		service.WithRanker(scoring.NewRanker(scoring.WithSourceWeights(cfg.SourceWeights))),
		service.WithDedupePolicy(cfg.DedupePolicy),
		service.WithWorkerCount(cfg.FetchWorkers),
		service.WithQueueSize(cfg.FetchQueueSize),
		service.WithResultsPerCall(cfg.SourceResultsPerCall),
		service.WithMaxLimit(cfg.MaxLimit),
		service.WithGeocodeCache(geoCache),
	)
	if err := a.svc.Start(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.store = store

	if cfg.SavedSearchSchedule != "" {
		a.sched = scheduler.New(store, a.svc,
			scheduler.WithSpec(cfg.SavedSearchSchedule),
			scheduler.WithLimit(cfg.DefaultLimit),
			scheduler.WithLogger(log.Named("scheduler")))
		if err := a.sched.Start(ctx); err != nil {
			a.sched = nil
			a.close(ctx)
			return nil, err
		}
	}

	a.mux = http.NewServeMux()
	swagger.Register(ctx, a.mux)
	api.NewServer(a.svc, store,
		api.WithDefaultLimit(cfg.DefaultLimit),
		api.WithMaxLimit(cfg.MaxLimit),
		api.WithLogger(log.Named("http")),
	).Register(ctx, a.mux)

	return a, nil
}

// openStore returns the Postgres store when a database is configured and the
// in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info(ctx, "no database configured; saved searches are kept in memory")
		return repository.NewInMemoryStore(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := repository.NewPostgresPool(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	store := repository.NewPostgresStore(pool)
	if err := store.Migrate(connectCtx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// close stops components in reverse start order.
func (a *application) close(ctx context.Context) {
	if a.sched != nil {
		a.sched.Stop(ctx)
	}
	if a.svc != nil {
		if err := a.svc.Stop(ctx); err != nil {
			a.log.Warn(ctx, "service stop failed", logger.Error(err))
		}
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes pool gauges. GetStats also updates the
// queue and geocode cache gauges as a side effect.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
