package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/jobscout/internal/app"
	"github.com/okian/jobscout/internal/domain/dedupe"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When searching before start", func() {
			_, err := svc.Search(ctx, model.SearchQuery{Title: "go", Page: 1, Limit: 10})

			Convey("Then it reports the service is not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service with an unknown dedupe policy", t, func() {
		svc := service.New(service.WithDedupePolicy("by_vibes"))

		Convey("Then Start fails", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, service.ErrStart), ShouldBeTrue)
			So(errors.Is(err, dedupe.ErrUnknownPolicy), ShouldBeTrue)
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When stopping the service", func() {
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("And stopping again is a no-op", func() {
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_Suggestions(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()

		Convey("When the partial matches titles", func() {
			got := svc.Suggestions("DEVELOPER")

			Convey("Then matching is case-insensitive substring", func() {
				So(got.Titles, ShouldContain, "Backend Developer")
				So(got.Titles, ShouldContain, "Go Developer")
				So(len(got.Titles), ShouldBeLessThanOrEqualTo, 8)
				So(got.Locations, ShouldBeEmpty)
			})
		})

		Convey("When the partial matches locations", func() {
			got := svc.Suggestions("  lon ")

			Convey("Then the location list is filtered", func() {
				So(got.Locations, ShouldResemble, []string{"London, United Kingdom"})
			})
		})

		Convey("When the partial is blank", func() {
			got := svc.Suggestions(" ")

			Convey("Then both lists are empty but not nil", func() {
				So(got.Titles, ShouldNotBeNil)
				So(got.Titles, ShouldBeEmpty)
				So(got.Locations, ShouldNotBeNil)
				So(got.Locations, ShouldBeEmpty)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithClients(&fakeClient{name: "remotive"}))

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats["started"], ShouldEqual, false)
				So(stats["sources"], ShouldResemble, []string{"remotive"})
				So(stats["searches"], ShouldEqual, 0)
				So(stats["dedupePolicy"], ShouldEqual, dedupe.PolicyTitleCompany)
			})
		})
	})
}
