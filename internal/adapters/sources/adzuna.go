package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
)

// Adzuna provider constants.
const (
	AdzunaName    = "adzuna"
	adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"
)

// Adzuna queries the Adzuna search API with an app id and key pair.
type Adzuna struct {
	base
	appID   string
	appKey  string
	country string
}

// NewAdzuna creates the Adzuna client. country is Adzuna's market code, e.g. "gb".
func NewAdzuna(appID, appKey, country string, opts ...Option) *Adzuna {
	if country == "" {
		country = "gb"
	}
	return &Adzuna{
		base:    newBase(AdzunaName, adzunaBaseURL, opts),
		appID:   appID,
		appKey:  appKey,
		country: strings.ToLower(country),
	}
}

type adzunaResponse struct {
	Results []struct {
		ID          any    `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Company     struct {
			DisplayName string `json:"display_name"`
		} `json:"company"`
		Location struct {
			DisplayName string   `json:"display_name"`
			Area        []string `json:"area"`
		} `json:"location"`
		SalaryMin    *float64 `json:"salary_min"`
		RedirectURL  string   `json:"redirect_url"`
		Created      string   `json:"created"`
		ContractTime string   `json:"contract_time"`
		ContractType string   `json:"contract_type"`
	} `json:"results"`
}

// FetchJobs implements Client. Salary floor and employment type are sent upstream.
func (a *Adzuna) FetchJobs(ctx context.Context, query string, filters model.FilterSet, page, limit int) ([]model.RawJob, error) {
	switch {
	case a.appID == "":
		return nil, notConfigured(a.name, "ADZUNA_APP_ID")
	case a.appKey == "":
		return nil, notConfigured(a.name, "ADZUNA_APP_KEY")
	}

	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(limit))
	params.Set("what", query)
	params.Set("content-type", "application/json")
	if s := salaryParam(filters.MinSalary); s != "" {
		params.Set("salary_min", s)
	}
	if s := salaryParam(filters.MaxSalary); s != "" {
		params.Set("salary_max", s)
	}
	switch strings.ToLower(filters.EmploymentType) {
	case "full-time":
		params.Set("full_time", "1")
	case "part-time":
		params.Set("part_time", "1")
	case "contract":
		params.Set("contract", "1")
	}
	endpoint := fmt.Sprintf("%s/%s/search/%d?%s", a.baseURL, a.country, page, params.Encode())

	var resp adzunaResponse
	err := a.doJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := make([]model.RawJob, 0, len(resp.Results))
	for _, r := range resp.Results {
		raw := model.RawJob{
			"id":           idString(r.ID),
			"title":        r.Title,
			"description":  r.Description,
			"company":      r.Company.DisplayName,
			"location":     r.Location.DisplayName,
			"redirect_url": r.RedirectURL,
			"created":      r.Created,
			"country_code": a.countryCode(),
		}
		if r.SalaryMin != nil {
			raw["salary_min"] = *r.SalaryMin
		}
		// contract_time says full/part time; contract_type says permanent/contract.
		raw["contract_time"] = r.ContractTime
		if r.ContractType == "contract" || r.ContractTime == "" {
			raw["contract_type"] = r.ContractType
		}
		out = append(out, raw)
	}
	return out, nil
}

// countryCode maps the Adzuna market onto ISO alpha-2.
func (a *Adzuna) countryCode() string {
	if a.country == "uk" {
		return "GB"
	}
	return strings.ToUpper(a.country)
}
