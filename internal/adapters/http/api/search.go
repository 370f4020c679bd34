package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	service "github.com/okian/jobscout/internal/app"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/normalize"
)

// SearchHandler serves the job search endpoints.
type SearchHandler struct {
	searcher     Searcher
	defaultLimit int
	maxLimit     int
}

// NewSearchHandler creates a search handler. Requests without a limit get
// defaultLimit; larger limits are capped at maxLimit.
func NewSearchHandler(s Searcher, defaultLimit, maxLimit int) *SearchHandler {
	return &SearchHandler{searcher: s, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// HandleSearch handles GET /search-jobs and GET /api/jobs/search-jobs.
// Provider failures are reported inside a 200 body; only a bad request or an
// unavailable service produce an error status.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
		return
	}
	q, err := h.parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := h.searcher.Search(r.Context(), q)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, model.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func (h *SearchHandler) parseQuery(v url.Values) (model.SearchQuery, error) {
	q := model.SearchQuery{
		Title:    strings.TrimSpace(v.Get("title")),
		Location: strings.TrimSpace(v.Get("location")),
		Page:     1,
		Limit:    h.defaultLimit,
	}
	if q.Title == "" {
		return q, fmt.Errorf("%w: title is required", ErrBadRequest)
	}

	var err error
	if q.Page, err = intParam(v, "page", q.Page); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(v, "limit", q.Limit); err != nil {
		return q, err
	}
	if q.Limit > h.maxLimit {
		q.Limit = h.maxLimit
	}

	f := &q.Filters
	if f.RemoteOnly, err = boolParam(v, "remote_only"); err != nil {
		return q, err
	}
	if f.MinSalary, err = floatParam(v, "min_salary"); err != nil {
		return q, err
	}
	if f.MaxSalary, err = floatParam(v, "max_salary"); err != nil {
		return q, err
	}
	f.EmploymentType = normalize.EmploymentType(v.Get("employment_type"))
	f.ExperienceLevel = strings.TrimSpace(v.Get("experience_level"))

	if err := q.Validate(); err != nil {
		return q, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return q, nil
}

func intParam(v url.Values, name string, def int) (int, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrBadRequest, name)
	}
	return n, nil
}

func floatParam(v url.Values, name string) (*float64, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return nil, fmt.Errorf("%w: %s must be a non-negative number", ErrBadRequest, name)
	}
	return &f, nil
}

func boolParam(v url.Values, name string) (bool, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", ErrBadRequest, name)
	}
	return b, nil
}
