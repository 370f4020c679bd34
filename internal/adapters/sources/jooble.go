package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/jobscout/internal/domain/model"
)

// Jooble provider constants.
const (
	JoobleName    = "jooble"
	joobleBaseURL = "https://jooble.org/api"
)

// Jooble queries the Jooble API. The key is part of the URL path.
type Jooble struct {
	base
	apiKey string
}

// NewJooble creates the Jooble client.
func NewJooble(apiKey string, opts ...Option) *Jooble {
	return &Jooble{base: newBase(JoobleName, joobleBaseURL, opts), apiKey: apiKey}
}

type joobleRequest struct {
	Keywords     string `json:"keywords"`
	Page         string `json:"page"`
	ResultOnPage string `json:"ResultOnPage"`
	Salary       string `json:"salary,omitempty"`
}

type joobleResponse struct {
	Jobs []model.RawJob `json:"jobs"`
}

// FetchJobs implements Client. The salary floor is sent upstream. Jooble records
// already use keys the normalizer knows, so they pass through unchanged.
func (j *Jooble) FetchJobs(ctx context.Context, query string, filters model.FilterSet, page, limit int) ([]model.RawJob, error) {
	if j.apiKey == "" {
		return nil, notConfigured(j.name, "JOOBLE_API_KEY")
	}

	body, err := json.Marshal(joobleRequest{
		Keywords:     query,
		Page:         strconv.Itoa(page),
		ResultOnPage: strconv.Itoa(limit),
		Salary:       salaryParam(filters.MinSalary),
	})
	if err != nil {
		return nil, j.errorf("encode request: %v", err)
	}
	endpoint := j.baseURL + "/" + url.PathEscape(j.apiKey)

	var resp joobleResponse
	err = j.doJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}
