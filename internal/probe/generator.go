package probe

import (
	"github.com/google/uuid"

	"github.com/okian/jobscout/internal/domain/model"
)

// DefaultTitles and DefaultLocations seed a probe when none are given.
var (
	DefaultTitles    = []string{"Software Engineer", "Data Scientist", "Product Manager", "DevOps Engineer", "Frontend Developer"}
	DefaultLocations = []string{"", "Remote", "Berlin, Germany", "New York, NY", "London"}
)

var employmentTypes = []string{"", "Full-time", "Contract"}

// Generate builds cfg.Requests searches rotating through titles, locations,
// pages and filter combinations. The output is deterministic apart from ids.
func Generate(cfg *Config) []Request {
	titles, locations := cfg.Titles, cfg.Locations
	if len(titles) == 0 {
		titles = DefaultTitles
	}
	if len(locations) == 0 {
		locations = DefaultLocations
	}
	maxPage := max(cfg.MaxPage, 1)

	out := make([]Request, cfg.Requests)
	for i := range out {
		q := model.SearchQuery{
			Title:    titles[i%len(titles)],
			Location: locations[(i/len(titles))%len(locations)],
			Page:     i%maxPage + 1,
			Limit:    cfg.Limit,
		}
		q.Filters.RemoteOnly = i%4 == 3
		q.Filters.EmploymentType = employmentTypes[i%len(employmentTypes)]
		if i%5 == 4 {
			minSalary := 40000.0
			q.Filters.MinSalary = &minSalary
		}
		out[i] = Request{ID: uuid.NewString(), Query: q}
	}
	return out
}
