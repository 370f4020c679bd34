package model

import (
	"fmt"
	"time"
)

// SavedSearch is a stored query re-run on a schedule.
type SavedSearch struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Location  string     `json:"location,omitempty"`
	Filters   FilterSet  `json:"filters"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastTotal int        `json:"last_total"`
	NewJobs   int        `json:"new_jobs"`
}

// Query returns the first page of the saved search.
func (s SavedSearch) Query(limit int) SearchQuery {
	return SearchQuery{Title: s.Title, Location: s.Location, Page: 1, Limit: limit, Filters: s.Filters}
}

// Validate checks the saved search can run.
func (s SavedSearch) Validate() error {
	if err := s.Query(1).Validate(); err != nil {
		return fmt.Errorf("saved search: %w", err)
	}
	return nil
}

// Suggestions is the autocomplete payload.
type Suggestions struct {
	Titles    []string `json:"titles"`
	Locations []string `json:"locations"`
}
