package sources

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
)

// Arbeitnow provider constants.
const (
	ArbeitnowName    = "arbeitnow"
	arbeitnowBaseURL = "https://www.arbeitnow.com/api"
)

// Arbeitnow reads the public Arbeitnow job board. The API has no search, so
// listings are matched against the query locally.
type Arbeitnow struct {
	base
}

// NewArbeitnow creates the Arbeitnow client.
func NewArbeitnow(opts ...Option) *Arbeitnow {
	return &Arbeitnow{base: newBase(ArbeitnowName, arbeitnowBaseURL, opts)}
}

type arbeitnowResponse struct {
	Data []struct {
		Slug        string   `json:"slug"`
		CompanyName string   `json:"company_name"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Remote      bool     `json:"remote"`
		URL         string   `json:"url"`
		Tags        []string `json:"tags"`
		JobTypes    []string `json:"job_types"`
		Location    string   `json:"location"`
		CreatedAt   any      `json:"created_at"`
	} `json:"data"`
}

// FetchJobs implements Client. Remote-only is applied locally since the board
// flags remote listings explicitly.
func (a *Arbeitnow) FetchJobs(ctx context.Context, query string, filters model.FilterSet, page, limit int) ([]model.RawJob, error) {
	endpoint := a.baseURL + "/job-board-api?page=" + strconv.Itoa(page)

	var resp arbeitnowResponse
	err := a.doJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := make([]model.RawJob, 0, limit)
	for _, d := range resp.Data {
		if len(out) == limit {
			break
		}
		if filters.RemoteOnly && !d.Remote {
			continue
		}
		if !matchesQuery(query, d.Title, strings.Join(d.Tags, " ")) {
			continue
		}
		location := d.Location
		if d.Remote {
			location = joinNonEmpty(" ", location, "(Remote)")
		}
		raw := model.RawJob{
			"slug":         d.Slug,
			"title":        d.Title,
			"company_name": d.CompanyName,
			"description":  d.Description,
			"url":          d.URL,
			"location":     location,
			"created_at":   d.CreatedAt,
		}
		if len(d.JobTypes) > 0 {
			raw["job_type"] = d.JobTypes[0]
		}
		out = append(out, raw)
	}
	return out, nil
}
