package probe

import (
	"time"

	"github.com/okian/jobscout/internal/config"
	"github.com/okian/jobscout/internal/domain/model"
)

// DefaultBaseURL points at a locally running server on its default address.
const DefaultBaseURL = "http://localhost" + config.DefaultAddr

// Config holds configuration for a probe run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Requests  int           // Number of searches to send
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	Titles    []string      // Titles to rotate through
	Locations []string      // Locations to rotate through; "" means none
	Limit     int           // Page size asked for
	MaxPage   int           // Pages are drawn from 1..MaxPage
	Verbose   bool          // Log every violation
}

// Request is one generated search.
type Request struct {
	ID    string
	Query model.SearchQuery
}

// Stats holds probe statistics.
type Stats struct {
	Sent         int
	Succeeded    int
	Failed       int
	Violations   int
	SourceErrors map[string]int
	Jobs         int
	MaxLatency   time.Duration
	TotalLatency time.Duration
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// AvgLatency is the mean latency of completed searches.
func (s *Stats) AvgLatency() time.Duration {
	done := s.Succeeded + s.Failed
	if done == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(done)
}
