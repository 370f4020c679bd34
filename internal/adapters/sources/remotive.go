package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/jobscout/internal/domain/model"
)

// Remotive provider constants.
const (
	RemotiveName    = "remotive"
	remotiveBaseURL = "https://remotive.com/api"
)

// Remotive lists remote-only jobs. It needs no credentials and has no paging, so
// pages are cut from one larger result set.
type Remotive struct {
	base
}

// NewRemotive creates the Remotive client.
func NewRemotive(opts ...Option) *Remotive {
	return &Remotive{base: newBase(RemotiveName, remotiveBaseURL, opts)}
}

type remotiveResponse struct {
	Jobs []model.RawJob `json:"jobs"`
}

// FetchJobs implements Client. Every listing is remote, so no filter is sent.
func (r *Remotive) FetchJobs(ctx context.Context, query string, filters model.FilterSet, page, limit int) ([]model.RawJob, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(page*limit))
	endpoint := r.baseURL + "/remote-jobs?" + params.Encode()

	var resp remotiveResponse
	err := r.doJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, &resp)
	if err != nil {
		return nil, err
	}

	jobs := window(resp.Jobs, page, limit)
	for _, raw := range jobs {
		// candidate_required_location says who may apply, e.g. "USA Only".
		where, _ := raw["candidate_required_location"].(string)
		raw["location"] = joinNonEmpty(" - ", "Remote", where)
	}
	return jobs, nil
}
