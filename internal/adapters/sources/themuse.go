package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
)

// The Muse provider constants.
const (
	TheMuseName    = "themuse"
	themuseBaseURL = "https://www.themuse.com/api/public"
)

// themuseLevels maps experience levels onto The Muse level names.
var themuseLevels = map[string]string{
	"intern":    "Internship",
	"trainee":   "Internship",
	"entry":     "Entry Level",
	"junior":    "Entry Level",
	"graduate":  "Entry Level",
	"fresher":   "Entry Level",
	"associate": "Entry Level",
	"mid":       "Mid Level",
	"senior":    "Senior Level",
	"lead":      "Management",
	"principal": "Senior Level",
}

// TheMuse reads The Muse public jobs API. An API key raises the rate limit but
// is optional. The API filters by category and level, not free text, so titles
// are matched against the query locally.
type TheMuse struct {
	base
	apiKey string
}

// NewTheMuse creates The Muse client.
func NewTheMuse(apiKey string, opts ...Option) *TheMuse {
	return &TheMuse{base: newBase(TheMuseName, themuseBaseURL, opts), apiKey: apiKey}
}

type themuseResponse struct {
	Results []struct {
		ID              any    `json:"id"`
		Name            string `json:"name"`
		Contents        string `json:"contents"`
		PublicationDate string `json:"publication_date"`
		Type            string `json:"type"`
		Locations       []struct {
			Name string `json:"name"`
		} `json:"locations"`
		Levels []struct {
			Name string `json:"name"`
		} `json:"levels"`
		Company struct {
			Name string `json:"name"`
		} `json:"company"`
		Refs struct {
			LandingPage string `json:"landing_page"`
		} `json:"refs"`
	} `json:"results"`
}

// FetchJobs implements Client. Experience level is sent upstream. Pages are
// zero-based on The Muse.
func (m *TheMuse) FetchJobs(ctx context.Context, query string, filters model.FilterSet, page, limit int) ([]model.RawJob, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page-1))
	params.Set("descending", "true")
	if level, ok := themuseLevels[strings.ToLower(strings.TrimSpace(filters.ExperienceLevel))]; ok {
		params.Set("level", level)
	}
	if filters.RemoteOnly {
		params.Set("location", "Flexible / Remote")
	}
	if m.apiKey != "" {
		params.Set("api_key", m.apiKey)
	}
	endpoint := m.baseURL + "/jobs?" + params.Encode()

	var resp themuseResponse
	err := m.doJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := make([]model.RawJob, 0, limit)
	for _, r := range resp.Results {
		if len(out) == limit {
			break
		}
		if !matchesQuery(query, r.Name) {
			continue
		}
		locations := make([]string, 0, len(r.Locations))
		for _, l := range r.Locations {
			locations = append(locations, l.Name)
		}
		levels := make([]string, 0, len(r.Levels))
		for _, l := range r.Levels {
			levels = append(levels, l.Name)
		}
		out = append(out, model.RawJob{
			"id":               idString(r.ID),
			"name":             r.Name,
			"company":          r.Company.Name,
			"location":         strings.Join(locations, "; "),
			"apply_url":        r.Refs.LandingPage,
			"contents":         joinNonEmpty(" ", r.Contents, strings.Join(levels, ", ")),
			"publication_date": r.PublicationDate,
			"type":             r.Type,
		})
	}
	return out, nil
}
