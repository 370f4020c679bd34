package probe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
)

func envelope(page, limit, total int, scores ...float64) model.SearchResult {
	res := model.SearchResult{
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		HasMore:    page*limit < total,
		Sources:    map[string]model.SourceStatus{"remotive": {Count: len(scores), Success: true}},
	}
	for _, s := range scores {
		res.Jobs = append(res.Jobs, model.NormalizedJob{Title: "x", Source: "remotive", RelevanceScore: s})
	}
	return res
}

func TestVerify(t *testing.T) {
	Convey("Given a search query", t, func() {
		q := model.SearchQuery{Title: "go", Page: 2, Limit: 3}

		Convey("A consistent response has no violations", func() {
			So(Verify(q, envelope(2, 3, 7, 0.9, 0.5, 0.5)), ShouldBeEmpty)
		})

		Convey("Out of order scores are reported", func() {
			So(Verify(q, envelope(2, 3, 7, 0.4, 0.8)), ShouldHaveLength, 1)
		})

		Convey("Scores above one are reported", func() {
			So(Verify(q, envelope(2, 3, 7, 1.2)), ShouldNotBeEmpty)
		})

		Convey("A wrong has_more is reported", func() {
			res := envelope(2, 3, 6, 0.3)
			res.HasMore = true
			So(Verify(q, res), ShouldHaveLength, 1)
		})

		Convey("Too many jobs are reported", func() {
			So(Verify(q, envelope(2, 3, 9, 0.9, 0.8, 0.7, 0.6)), ShouldNotBeEmpty)
		})

		Convey("A source error must show as failed in sources", func() {
			res := envelope(2, 3, 0)
			res.Errors = []model.SourceError{{Source: "adzuna", Error: "boom"}, {Source: model.AggregatorSource, Error: "x"}}
			So(Verify(q, res), ShouldHaveLength, 1)
			res.Sources["adzuna"] = model.SourceStatus{Error: "boom"}
			So(Verify(q, res), ShouldBeEmpty)
		})
	})
}

func TestGenerate(t *testing.T) {
	Convey("Generate rotates titles and pages", t, func() {
		reqs := Generate(&Config{Requests: 10, Limit: 5, MaxPage: 2, Titles: []string{"a", "b"}, Locations: []string{"", "Remote"}})
		So(reqs, ShouldHaveLength, 10)
		So(reqs[0].Query.Title, ShouldEqual, "a")
		So(reqs[1].Query.Title, ShouldEqual, "b")
		So(reqs[0].Query.Page, ShouldEqual, 1)
		So(reqs[1].Query.Page, ShouldEqual, 2)
		So(reqs[2].Query.Location, ShouldEqual, "Remote")
		So(reqs[3].Query.Filters.RemoteOnly, ShouldBeTrue)
		So(reqs[4].Query.Filters.MinSalary, ShouldNotBeNil)
		So(reqs[0].ID, ShouldNotEqual, reqs[1].ID)
		for _, r := range reqs {
			So(r.Query.Validate(), ShouldBeNil)
		}
	})
}

func TestEncodeQuery(t *testing.T) {
	Convey("encodeQuery renders filters as parameters", t, func() {
		minSalary := 50000.0
		v := encodeQuery(model.SearchQuery{
			Title: "go", Location: "Berlin", Page: 2, Limit: 10,
			Filters: model.FilterSet{RemoteOnly: true, MinSalary: &minSalary, EmploymentType: "Contract"},
		})
		So(v.Get("title"), ShouldEqual, "go")
		So(v.Get("location"), ShouldEqual, "Berlin")
		So(v.Get("page"), ShouldEqual, "2")
		So(v.Get("remote_only"), ShouldEqual, "true")
		So(v.Get("min_salary"), ShouldEqual, "50000")
		So(v.Get("employment_type"), ShouldEqual, "Contract")
		So(v.Has("max_salary"), ShouldBeFalse)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a fake jobscout server", t, func() {
		_ = logger.Init()
		var searches, badOrder atomic.Int64

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz":
				w.WriteHeader(http.StatusOK)
			case "/search-jobs":
				searches.Add(1)
				page, _ := strconv.Atoi(r.URL.Query().Get("page"))
				limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
				res := envelope(page, limit, 20, 0.9, 0.7)
				if badOrder.Load() > 0 {
					res = envelope(page, limit, 20, 0.1, 0.7)
				}
				_ = json.NewEncoder(w).Encode(res)
			case "/suggestions":
				_ = json.NewEncoder(w).Encode(model.Suggestions{Titles: []string{"Software Engineer"}, Locations: []string{}})
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		cfg := &Config{BaseURL: srv.URL, Requests: 12, Workers: 3, Timeout: time.Second, Limit: 5, MaxPage: 3}
		ctx := context.Background()

		Convey("A consistent server passes", func() {
			stats, err := Run(ctx, cfg)
			So(err, ShouldBeNil)
			So(searches.Load(), ShouldEqual, 12)
			So(stats.Sent, ShouldEqual, 12)
			So(stats.Succeeded, ShouldEqual, 12)
			So(stats.Jobs, ShouldEqual, 24)
		})

		Convey("Misordered results fail the run", func() {
			badOrder.Store(1)
			stats, err := Run(ctx, cfg)
			So(errors.Is(err, ErrViolations), ShouldBeTrue)
			So(stats.Violations, ShouldEqual, 12)
		})

		Convey("Suggest returns both lists", func() {
			titles, locations, err := Suggest(ctx, cfg, "soft")
			So(err, ShouldBeNil)
			So(titles, ShouldResemble, []string{"Software Engineer"})
			So(locations, ShouldBeEmpty)
		})

		Convey("An unreachable server fails the health check", func() {
			down := &Config{BaseURL: "http://127.0.0.1:1", Requests: 1, Workers: 1, Timeout: 200 * time.Millisecond, Limit: 5}
			_, err := Run(ctx, down)
			So(err, ShouldNotBeNil)
		})
	})
}
