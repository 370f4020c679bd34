// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
)

// Searcher runs one aggregated job search.
type Searcher interface {
	Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error)
}

// Suggester returns autocomplete candidates.
type Suggester interface {
	Suggestions(partial string) model.Suggestions
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Searcher
	Suggester
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	searchHandler      *SearchHandler
	suggestionsHandler *SuggestionsHandler
	savedHandler       *SavedSearchHandler
	logger             logger.Logger
}

// NewServer creates a new API server with all handlers. saved may be nil, in
// which case the saved-search routes are not registered.
func NewServer(deps Dependencies, saved SavedSearchStore, opts ...Option) *Server {
	cfg := serverConfig{defaultLimit: defaultLimit, maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Get().Named("http")
	}

	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		searchHandler:      NewSearchHandler(deps, cfg.defaultLimit, cfg.maxLimit),
		suggestionsHandler: NewSuggestionsHandler(deps),
		logger:             cfg.logger,
	}
	if saved != nil {
		s.savedHandler = NewSavedSearchHandler(saved)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/search-jobs", s.wrap(s.searchHandler.HandleSearch, "search-jobs"))
	mux.HandleFunc("/api/jobs/search-jobs", s.wrap(s.searchHandler.HandleSearch, "search-jobs"))
	mux.HandleFunc("/suggestions", s.wrap(s.suggestionsHandler.HandleSuggestions, "suggestions"))
	if s.savedHandler != nil {
		mux.HandleFunc("/api/saved-searches", s.wrap(s.savedHandler.HandleSavedSearches, "saved-searches"))
	}
}

// wrap applies request id, access log and metrics middleware to next.
func (s *Server) wrap(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(AccessLogMiddleware(s.logger, MetricsMiddleware(next, endpoint)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
