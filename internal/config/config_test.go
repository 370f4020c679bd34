package config_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/okian/jobscout/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.FetchWorkers, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.MaxAttempts, convey.ShouldEqual, 3)
			convey.So(cfg.DefaultLimit, convey.ShouldEqual, 12)
			convey.So(cfg.DedupePolicy, convey.ShouldEqual, config.DedupeTitleCompany)
			convey.So(cfg.SourceTimeout(), convey.ShouldEqual, 8*time.Second)
			convey.So(cfg.RetryBaseDelay(), convey.ShouldEqual, 250*time.Millisecond)
			convey.So(cfg.GeocodeCacheTTL(), convey.ShouldEqual, 0)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then curated sources outweigh aggregators", func() {
			convey.So(cfg.SourceWeights["usajobs"], convey.ShouldBeGreaterThan, cfg.SourceWeights["jooble"])
		})
	})
}

func TestConfig_Disabled(t *testing.T) {
	convey.Convey("Given a disabled source list", t, func() {
		cfg := config.New()
		cfg.DisabledSources = "jooble, JSearch"

		convey.So(cfg.Disabled("jooble"), convey.ShouldBeTrue)
		convey.So(cfg.Disabled("jsearch"), convey.ShouldBeTrue)
		convey.So(cfg.Disabled("adzuna"), convey.ShouldBeFalse)
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configurations", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":       func(c *config.Config) { c.Addr = " " },
			"no workers":       func(c *config.Config) { c.FetchWorkers = 0 },
			"no queue":         func(c *config.Config) { c.FetchQueueSize = 0 },
			"no timeout":       func(c *config.Config) { c.SourceTimeoutMS = 0 },
			"no attempts":      func(c *config.Config) { c.MaxAttempts = 0 },
			"limit above max":  func(c *config.Config) { c.DefaultLimit = 100 },
			"unknown policy":   func(c *config.Config) { c.DedupePolicy = "url" },
			"negative weight":  func(c *config.Config) { c.SourceWeights = map[string]float64{"adzuna": -1} },
		}
		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			convey.So(cfg.Validate(), convey.ShouldWrap, config.ErrInvalidConfig)
			_ = name
		}
	})
}
