// Package model contains domain models passed between layers.
package model

import "time"

// RawJob is a provider record before normalization. Field names differ per source.
type RawJob map[string]any

// NormalizedJob is the canonical listing every stage after the normalizer works on.
type NormalizedJob struct {
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	CountryCode    *string   `json:"country_code"`
	ApplyLink      string    `json:"apply_link"`
	Salary         *float64  `json:"salary"`
	EmploymentType string    `json:"employment_type"`
	Description    string    `json:"description"`
	Source         string    `json:"source"`
	OriginalID     *string   `json:"original_id"`
	CreatedAt      time.Time `json:"created_at"`

	// Set by the ranker.
	MatchedKeywords []string `json:"matched_keywords"`
	RelevanceScore  float64  `json:"relevance_score"`
}

// Place is a geocoded location.
type Place struct {
	Formatted   string `json:"formatted"`
	CountryCode string `json:"country_code"`
}

// HasSalary reports whether a salary figure is known.
func (j *NormalizedJob) HasSalary() bool { return j.Salary != nil }

// SourceStatus summarizes one provider's contribution to a search.
type SourceStatus struct {
	Count   int    `json:"count"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SourceError is a diagnostic entry in SearchResult.Errors.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// AggregatorSource names pipeline failures in SearchResult.Errors.
const AggregatorSource = "aggregator"

// SearchResult is the response envelope of a search.
type SearchResult struct {
	Jobs        []NormalizedJob         `json:"jobs"`
	Sources     map[string]SourceStatus `json:"sources"`
	TotalCount  int                     `json:"total_count"`
	Page        int                     `json:"page"`
	Limit       int                     `json:"limit"`
	HasMore     bool                    `json:"has_more"`
	QueryTimeMs int64                   `json:"query_time"`
	Errors      []SourceError           `json:"errors"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
