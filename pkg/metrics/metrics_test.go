package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it uses the jobscout namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "jobscout")
				So(manager.subsystem, ShouldEqual, "search")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("probe"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithMetricsEnabled(false),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the collectors are registered on that registry", func() {
				So(manager.enabled, ShouldBeFalse)
				manager.sourceRetries.WithLabelValues("adzuna").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if strings.HasPrefix(f.GetName(), "test_probe_") {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording source outcomes", func() {
			before := testutil.ToFloat64(globalManager.sourceRequests.WithLabelValues("remotive", "success"))
			RecordSourceRequest("remotive", "success", 120)
			RecordSourceRequest("remotive", "success", 80)
			RecordSourceJobs("remotive", 12)

			Convey("Then the counters move", func() {
				after := testutil.ToFloat64(globalManager.sourceRequests.WithLabelValues("remotive", "success"))
				So(after-before, ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.sourceJobs.WithLabelValues("remotive")), ShouldBeGreaterThanOrEqualTo, 12)
			})
		})

		Convey("When recording geocode lookups", func() {
			before := testutil.ToFloat64(globalManager.geocodeLookups.WithLabelValues("hit"))
			RecordGeocodeLookup("hit")
			UpdateGeocodeCacheSize(3)

			Convey("Then hit count and size are exported", func() {
				So(testutil.ToFloat64(globalManager.geocodeLookups.WithLabelValues("hit"))-before, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.geocodeCache), ShouldEqual, 3)
			})
		})

		Convey("When recording pool and HTTP metrics", func() {
			So(func() {
				UpdateQueueSize(4)
				UpdateWorkerCount(8)
				RecordFetchRejected()
				RecordSearch("ok", 350, 12)
				RecordStageLatency("rank", 1.5)
				RecordPipelineFailure()
				RecordSourceRetry("jsearch")
				RecordSavedSearchRun("ok")
				RecordHTTPRequest("search-jobs", "GET", "200")
				RecordHTTPRequestDuration("search-jobs", "GET", "200", 12)
				RecordErrorByEndpoint("search-jobs", "GET", "client_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.poolWorkerCount), ShouldEqual, 8)
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then jobscout metrics are present", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
