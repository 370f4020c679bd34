package model

import (
	"fmt"
	"strings"
)

// FilterSet holds the user constraints applied after deduplication.
type FilterSet struct {
	RemoteOnly      bool     `json:"remote_only"`
	MinSalary       *float64 `json:"min_salary,omitempty"`
	MaxSalary       *float64 `json:"max_salary,omitempty"`
	EmploymentType  string   `json:"employment_type,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
}

// IsZero reports whether no filter is active.
func (f FilterSet) IsZero() bool {
	return !f.RemoteOnly && f.MinSalary == nil && f.MaxSalary == nil &&
		strings.TrimSpace(f.EmploymentType) == "" && strings.TrimSpace(f.ExperienceLevel) == ""
}

// SearchQuery is a validated search request.
type SearchQuery struct {
	Title    string    `json:"title"`
	Location string    `json:"location,omitempty"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Filters  FilterSet `json:"filters"`
}

// Validate rejects queries that must not reach any provider.
func (q SearchQuery) Validate() error {
	switch {
	case strings.TrimSpace(q.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidQuery)
	case q.Page < 1:
		return fmt.Errorf("%w: page must be >= 1", ErrInvalidQuery)
	case q.Limit < 1:
		return fmt.Errorf("%w: limit must be >= 1", ErrInvalidQuery)
	case q.Filters.MinSalary != nil && q.Filters.MaxSalary != nil && *q.Filters.MinSalary > *q.Filters.MaxSalary:
		return fmt.Errorf("%w: min_salary exceeds max_salary", ErrInvalidQuery)
	}
	return nil
}
