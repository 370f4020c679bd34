package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobscout/internal/adapters/sources"
	service "github.com/okian/jobscout/internal/app"
	"github.com/okian/jobscout/internal/config"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// offlineConfig disables every provider so no test reaches the network.
func offlineConfig() *config.Config {
	cfg := config.New()
	cfg.Addr = ":0"
	cfg.FetchWorkers = 2
	cfg.DisabledSources = strings.Join(sources.Names, ",")
	cfg.SavedSearchSchedule = ""
	cfg.RedisURL = ""
	cfg.DatabaseURL = ""
	return cfg
}

func setenv(vars map[string]string) {
	for k, v := range vars {
		_ = os.Setenv(k, v)
	}
}

func unsetenv(keys ...string) {
	for _, k := range keys {
		_ = os.Unsetenv(k)
	}
}

func get(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		_ = logger.Init()

		convey.Convey("When loading configuration from the environment", func() {
			setenv(map[string]string{
				"JOBSCOUT_ADDR":          ":9090",
				"JOBSCOUT_FETCH_WORKERS": "4",
				"JOBSCOUT_ENV_FILE":      "testdata-missing.env",
			})
			defer unsetenv("JOBSCOUT_ADDR", "JOBSCOUT_FETCH_WORKERS", "JOBSCOUT_ENV_FILE")

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.FetchWorkers, convey.ShouldEqual, 4)
		})

		convey.Convey("When the configuration is invalid", func() {
			setenv(map[string]string{
				"JOBSCOUT_ENV_FILE":      "testdata-missing.env",
				"JOBSCOUT_DEDUPE_POLICY": "by_vibes",
			})
			defer unsetenv("JOBSCOUT_ENV_FILE", "JOBSCOUT_DEDUPE_POLICY")

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When wiring the application offline", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			a, err := newApplication(ctx, offlineConfig(), logger.Get())
			convey.So(err, convey.ShouldBeNil)
			defer a.close(ctx)

			convey.So(a.svc.Sources(), convey.ShouldBeEmpty)
			convey.So(a.sched, convey.ShouldBeNil)

			convey.Convey("Then search answers with an empty envelope", func() {
				w := get(a.mux, "/search-jobs?title=golang")
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

				var res model.SearchResult
				convey.So(json.Unmarshal(w.Body.Bytes(), &res), convey.ShouldBeNil)
				convey.So(res.Jobs, convey.ShouldBeEmpty)
				convey.So(res.Page, convey.ShouldEqual, 1)
				convey.So(res.Limit, convey.ShouldEqual, 12)
			})

			convey.Convey("And a blank title is a bad request", func() {
				convey.So(get(a.mux, "/search-jobs?title=").Code, convey.ShouldEqual, http.StatusBadRequest)
			})

			convey.Convey("And docs, health, stats and saved searches are routed", func() {
				for _, target := range []string{"/api-docs", "/openapi.yaml", "/healthz", "/stats", "/api/saved-searches", "/suggestions?partial=dev"} {
					convey.So(get(a.mux, target).Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})

		convey.Convey("When a saved-search schedule is configured", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			cfg := offlineConfig()
			cfg.SavedSearchSchedule = "@every 1h"
			a, err := newApplication(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			defer a.close(ctx)
			convey.So(a.sched, convey.ShouldNotBeNil)
		})

		convey.Convey("When the schedule is invalid", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			cfg := offlineConfig()
			cfg.SavedSearchSchedule = "whenever"
			_, err := newApplication(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When updating system metrics", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("When updating service metrics", func() {
			svc := service.New()
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("When the metric updaters see a cancelled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				startServiceMetricsUpdater(ctx, service.New())
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("metric updaters did not return")
			}
		})

		convey.Convey("When creating a metrics manager on a private registry", func() {
			manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
			convey.So(manager, convey.ShouldNotBeNil)
		})
	})
}
