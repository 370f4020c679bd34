package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobscout/internal/adapters/http/api"
	"github.com/okian/jobscout/internal/adapters/repository"
	service "github.com/okian/jobscout/internal/app"
	"github.com/okian/jobscout/internal/domain/model"
	logging "github.com/okian/jobscout/pkg/logger"
)

// Mock implementations for testing
type mockDeps struct {
	mu      sync.Mutex
	last    model.SearchQuery
	calls   int
	result  model.SearchResult
	err     error
	stats   map[string]interface{}
	partial string
}

func (m *mockDeps) Search(_ context.Context, q model.SearchQuery) (model.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = q
	if m.err != nil {
		return model.SearchResult{}, m.err
	}
	res := m.result
	res.Page, res.Limit = q.Page, q.Limit
	return res, nil
}

func (m *mockDeps) Suggestions(partial string) model.Suggestions {
	m.partial = partial
	return model.Suggestions{Titles: []string{"Software Engineer"}, Locations: []string{}}
}

func (m *mockDeps) GetStats() map[string]interface{} {
	return m.stats
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		_ = logging.Init()
		deps := &mockDeps{
			result: model.SearchResult{
				Jobs:       []model.NormalizedJob{{Title: "Go Developer", Company: "Acme", Source: "remotive"}},
				Sources:    map[string]model.SourceStatus{"remotive": {Count: 1, Success: true}, "adzuna": {Error: "not configured"}},
				TotalCount: 1,
				Errors:     []model.SourceError{{Source: "adzuna", Error: "not configured"}},
			},
			stats: map[string]interface{}{"searches": 3},
		}
		store := repository.NewInMemoryStore()
		server := api.NewServer(deps, store, api.WithDefaultLimit(12), api.WithMaxLimit(50))
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("The health endpoint serves metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("The stats endpoint returns JSON", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"searches":3`)
		})

		Convey("Search applies defaults and returns the envelope", func() {
			w := serve(mux, http.MethodGet, "/search-jobs?title=go", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.last.Page, ShouldEqual, 1)
			So(deps.last.Limit, ShouldEqual, 12)

			var res model.SearchResult
			So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
			So(res.Jobs, ShouldHaveLength, 1)
			So(res.TotalCount, ShouldEqual, 1)
			So(res.Sources["adzuna"].Success, ShouldBeFalse)
			So(res.Errors[0].Source, ShouldEqual, "adzuna")
		})

		Convey("The api alias serves the same search", func() {
			w := serve(mux, http.MethodGet, "/api/jobs/search-jobs?title=go&page=2&limit=5", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.last.Page, ShouldEqual, 2)
			So(deps.last.Limit, ShouldEqual, 5)
		})

		Convey("Filters are parsed from the query string", func() {
			w := serve(mux, http.MethodGet,
				"/search-jobs?title=go&location=Berlin&remote_only=true&min_salary=50000&max_salary=80000&employment_type=Full-time&experience_level=senior", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			f := deps.last.Filters
			So(deps.last.Location, ShouldEqual, "Berlin")
			So(f.RemoteOnly, ShouldBeTrue)
			So(*f.MinSalary, ShouldEqual, 50000)
			So(*f.MaxSalary, ShouldEqual, 80000)
			So(f.EmploymentType, ShouldEqual, "full-time")
			So(f.ExperienceLevel, ShouldEqual, "senior")
		})

		Convey("A blank title is rejected before searching", func() {
			w := serve(mux, http.MethodGet, "/search-jobs?title=%20%20", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "bad_request")
			So(deps.calls, ShouldEqual, 0)
		})

		Convey("Malformed numbers are rejected", func() {
			for _, target := range []string{
				"/search-jobs?title=go&page=abc",
				"/search-jobs?title=go&page=0",
				"/search-jobs?title=go&limit=-3",
				"/search-jobs?title=go&min_salary=lots",
				"/search-jobs?title=go&remote_only=maybe",
				"/search-jobs?title=go&min_salary=90000&max_salary=10000",
			} {
				w := serve(mux, http.MethodGet, target, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
			So(deps.calls, ShouldEqual, 0)
		})

		Convey("Large limits are capped", func() {
			serve(mux, http.MethodGet, "/search-jobs?title=go&limit=500", "")
			So(deps.last.Limit, ShouldEqual, 50)
		})

		Convey("A stopped service answers 503", func() {
			deps.err = service.ErrNotStarted
			w := serve(mux, http.MethodGet, "/search-jobs?title=go", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("Unexpected search errors answer 500", func() {
			deps.err = errors.New("boom")
			w := serve(mux, http.MethodGet, "/search-jobs?title=go", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w)["code"], ShouldEqual, "internal_error")
		})

		Convey("Search only accepts GET", func() {
			w := serve(mux, http.MethodPost, "/search-jobs?title=go", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Suggestions pass the partial through", func() {
			w := serve(mux, http.MethodGet, "/suggestions?partial=soft", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.partial, ShouldEqual, "soft")
			So(w.Body.String(), ShouldContainSubstring, `"titles":["Software Engineer"]`)
		})

		Convey("Saved searches can be created and listed", func() {
			w := serve(mux, http.MethodPost, "/api/saved-searches",
				`{"title":"Go Developer","location":"Remote","filters":{"remote_only":true}}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			var created model.SavedSearch
			So(json.Unmarshal(w.Body.Bytes(), &created), ShouldBeNil)
			So(created.ID, ShouldNotBeEmpty)
			So(created.Filters.RemoteOnly, ShouldBeTrue)

			w = serve(mux, http.MethodGet, "/api/saved-searches", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, created.ID)
		})

		Convey("An empty saved-search list is an empty array", func() {
			w := serve(mux, http.MethodGet, "/api/saved-searches", "")
			So(w.Body.String(), ShouldContainSubstring, `"saved_searches":[]`)
		})

		Convey("Invalid saved searches are rejected", func() {
			So(serve(mux, http.MethodPost, "/api/saved-searches", `{"title":""}`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodPost, "/api/saved-searches", `{"title":`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodPost, "/api/saved-searches", `{"title":"x","bogus":1}`).Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodDelete, "/api/saved-searches", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Unknown paths are not found", func() {
			So(serve(mux, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Responses carry a request id", func() {
			w := serve(mux, http.MethodGet, "/suggestions?partial=a", "")
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)

			req := httptest.NewRequest(http.MethodGet, "/suggestions", nil)
			req.Header.Set(api.RequestIDHeader, "req-7")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, "req-7")
		})
	})

	Convey("Given a server without a saved-search store", t, func() {
		mux := http.NewServeMux()
		api.NewServer(&mockDeps{}, nil).Register(context.Background(), mux)

		Convey("The saved-search routes are absent", func() {
			So(serve(mux, http.MethodGet, "/api/saved-searches", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSearch_EmploymentTypeCanonical(t *testing.T) {
	Convey("Given a server", t, func() {
		deps := &mockDeps{}
		mux := http.NewServeMux()
		api.NewServer(deps, nil).Register(context.Background(), mux)

		Convey("Employment type synonyms reach the service as canonical labels", func() {
			for _, raw := range []string{"fulltime", "Full%20Time", "FULLTIME", "permanent"} {
				w := serve(mux, http.MethodGet, "/search-jobs?title=go&employment_type="+raw, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.last.Filters.EmploymentType, ShouldEqual, "full-time")
			}
		})
	})
}
