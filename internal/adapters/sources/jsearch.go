package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
)

// JSearch provider constants.
const (
	JSearchName    = "jsearch"
	jsearchHost    = "jsearch.p.rapidapi.com"
	jsearchBaseURL = "https://" + jsearchHost
)

var jsearchEmploymentTypes = map[string]string{
	"full-time":  "FULLTIME",
	"part-time":  "PARTTIME",
	"contract":   "CONTRACTOR",
	"internship": "INTERN",
}

// JSearch queries the RapidAPI JSearch aggregator.
type JSearch struct {
	base
	apiKey string
}

// NewJSearch creates the JSearch client.
func NewJSearch(apiKey string, opts ...Option) *JSearch {
	return &JSearch{base: newBase(JSearchName, jsearchBaseURL, opts), apiKey: apiKey}
}

type jsearchResponse struct {
	Status string `json:"status"`
	Data   []struct {
		JobID             string   `json:"job_id"`
		JobTitle          string   `json:"job_title"`
		EmployerName      string   `json:"employer_name"`
		JobCity           string   `json:"job_city"`
		JobState          string   `json:"job_state"`
		JobCountry        string   `json:"job_country"`
		JobIsRemote       bool     `json:"job_is_remote"`
		JobApplyLink      string   `json:"job_apply_link"`
		JobDescription    string   `json:"job_description"`
		JobEmploymentType string   `json:"job_employment_type"`
		JobMinSalary      *float64 `json:"job_min_salary"`
		JobPostedAt       string   `json:"job_posted_at_datetime_utc"`
	} `json:"data"`
}

// FetchJobs implements Client. Remote-only and employment type are sent upstream.
func (j *JSearch) FetchJobs(ctx context.Context, query string, filters model.FilterSet, page, limit int) ([]model.RawJob, error) {
	if j.apiKey == "" {
		return nil, notConfigured(j.name, "RAPIDAPI_KEY")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("num_pages", "1")
	if filters.RemoteOnly {
		params.Set("remote_jobs_only", "true")
	}
	if t, ok := jsearchEmploymentTypes[strings.ToLower(filters.EmploymentType)]; ok {
		params.Set("employment_types", t)
	}
	endpoint := j.baseURL + "/search?" + params.Encode()

	var resp jsearchResponse
	err := j.doJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-RapidAPI-Key", j.apiKey)
		req.Header.Set("X-RapidAPI-Host", jsearchHost)
		return req, nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Status != "" && !strings.EqualFold(resp.Status, "OK") {
		return nil, j.malformed("status " + resp.Status)
	}

	out := make([]model.RawJob, 0, len(resp.Data))
	for _, d := range resp.Data {
		location := joinNonEmpty(", ", d.JobCity, d.JobState, d.JobCountry)
		if d.JobIsRemote {
			location = joinNonEmpty(" ", "Remote", location)
		}
		raw := model.RawJob{
			"job_id":                     d.JobID,
			"job_title":                  d.JobTitle,
			"company":                    d.EmployerName,
			"location":                   location,
			"job_country":                d.JobCountry,
			"job_apply_link":             d.JobApplyLink,
			"job_description":            d.JobDescription,
			"job_employment_type":        d.JobEmploymentType,
			"job_posted_at_datetime_utc": d.JobPostedAt,
		}
		if d.JobMinSalary != nil {
			raw["job_min_salary"] = *d.JobMinSalary
		}
		out = append(out, raw)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
