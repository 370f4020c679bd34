package api

import "net/http"

// SuggestionsHandler serves autocomplete candidates.
type SuggestionsHandler struct {
	suggester Suggester
}

// NewSuggestionsHandler creates a suggestions handler.
func NewSuggestionsHandler(s Suggester) *SuggestionsHandler {
	return &SuggestionsHandler{suggester: s}
}

// HandleSuggestions handles GET /suggestions?partial=.
func (h *SuggestionsHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
		return
	}
	writeJSON(w, http.StatusOK, h.suggester.Suggestions(r.URL.Query().Get("partial")))
}
