package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/jobscout/internal/adapters/repository"
	"github.com/okian/jobscout/internal/domain/model"
)

const maxSavedSearchBody = 16 << 10

// SavedSearchStore is the part of the saved-search repository the API uses.
type SavedSearchStore interface {
	Create(ctx context.Context, s model.SavedSearch) (model.SavedSearch, error)
	ListActive(ctx context.Context) ([]model.SavedSearch, error)
}

// SavedSearchHandler lists and creates saved searches.
type SavedSearchHandler struct {
	store SavedSearchStore
}

// NewSavedSearchHandler creates a saved-search handler.
func NewSavedSearchHandler(store SavedSearchStore) *SavedSearchHandler {
	return &SavedSearchHandler{store: store}
}

type savedSearchRequest struct {
	Title    string          `json:"title"`
	Location string          `json:"location"`
	Filters  model.FilterSet `json:"filters"`
}

type savedSearchList struct {
	SavedSearches []model.SavedSearch `json:"saved_searches"`
}

// HandleSavedSearches handles GET and POST /api/saved-searches.
func (h *SavedSearchHandler) HandleSavedSearches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
	}
}

func (h *SavedSearchHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if items == nil {
		items = []model.SavedSearch{}
	}
	writeJSON(w, http.StatusOK, savedSearchList{SavedSearches: items})
}

func (h *SavedSearchHandler) create(w http.ResponseWriter, r *http.Request) {
	var req savedSearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSavedSearchBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	saved, err := h.store.Create(r.Context(), model.SavedSearch{
		Title:    req.Title,
		Location: req.Location,
		Filters:  req.Filters,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, saved)
	case errors.Is(err, repository.ErrInvalid):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
