package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
)

// USAJobs provider constants.
const (
	USAJobsName    = "usajobs"
	usajobsHost    = "data.usajobs.gov"
	usajobsBaseURL = "https://" + usajobsHost + "/api"
)

// USAJobs queries the US federal jobs API, authenticated by key and registered email.
type USAJobs struct {
	base
	apiKey string
	email  string
}

// NewUSAJobs creates the USAJobs client.
func NewUSAJobs(apiKey, email string, opts ...Option) *USAJobs {
	return &USAJobs{base: newBase(USAJobsName, usajobsBaseURL, opts), apiKey: apiKey, email: email}
}

type usajobsResponse struct {
	SearchResult struct {
		SearchResultItems []struct {
			MatchedObjectID         string `json:"MatchedObjectId"`
			MatchedObjectDescriptor struct {
				PositionTitle           string   `json:"PositionTitle"`
				PositionURI             string   `json:"PositionURI"`
				ApplyURI                []string `json:"ApplyURI"`
				PositionLocationDisplay string   `json:"PositionLocationDisplay"`
				OrganizationName        string   `json:"OrganizationName"`
				PositionRemuneration    []struct {
					MinimumRange string `json:"MinimumRange"`
				} `json:"PositionRemuneration"`
				PositionSchedule []struct {
					Name string `json:"Name"`
				} `json:"PositionSchedule"`
				QualificationSummary string `json:"QualificationSummary"`
				UserArea             struct {
					Details struct {
						JobSummary string `json:"JobSummary"`
					} `json:"Details"`
				} `json:"UserArea"`
				PublicationStartDate string `json:"PublicationStartDate"`
			} `json:"MatchedObjectDescriptor"`
		} `json:"SearchResultItems"`
	} `json:"SearchResult"`
}

// FetchJobs implements Client. The salary floor and remote flag are sent upstream.
func (u *USAJobs) FetchJobs(ctx context.Context, query string, filters model.FilterSet, page, limit int) ([]model.RawJob, error) {
	switch {
	case u.apiKey == "":
		return nil, notConfigured(u.name, "USAJOBS_API_KEY")
	case u.email == "":
		return nil, notConfigured(u.name, "USAJOBS_EMAIL")
	}

	params := url.Values{}
	params.Set("Keyword", query)
	params.Set("Page", strconv.Itoa(page))
	params.Set("ResultsPerPage", strconv.Itoa(limit))
	if s := salaryParam(filters.MinSalary); s != "" {
		params.Set("RemunerationMinimumAmount", s)
	}
	if filters.RemoteOnly {
		params.Set("RemoteIndicator", "True")
	}
	endpoint := u.baseURL + "/search?" + params.Encode()

	var resp usajobsResponse
	err := u.doJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", u.email)
		req.Header.Set("Authorization-Key", u.apiKey)
		return req, nil
	}, &resp)
	if err != nil {
		return nil, err
	}

	items := resp.SearchResult.SearchResultItems
	out := make([]model.RawJob, 0, len(items))
	for _, it := range items {
		d := it.MatchedObjectDescriptor
		raw := model.RawJob{
			"id":           it.MatchedObjectID,
			"title":        d.PositionTitle,
			"company":      d.OrganizationName,
			"location":     d.PositionLocationDisplay,
			"url":          d.PositionURI,
			"description":  joinNonEmpty(" ", d.UserArea.Details.JobSummary, d.QualificationSummary),
			"created_at":   d.PublicationStartDate,
			"country_code": "US",
		}
		if len(d.ApplyURI) > 0 && strings.TrimSpace(d.ApplyURI[0]) != "" {
			raw["apply_link"] = d.ApplyURI[0]
		}
		if len(d.PositionRemuneration) > 0 {
			raw["salary"] = d.PositionRemuneration[0].MinimumRange
		}
		if len(d.PositionSchedule) > 0 {
			raw["employment_type"] = d.PositionSchedule[0].Name
		}
		out = append(out, raw)
	}
	return out, nil
}
