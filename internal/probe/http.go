package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/jobscout/internal/domain/model"
)

const maxBody = 8 << 20

// client wraps http.Client for the jobscout API.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// encodeQuery renders q as /search-jobs query parameters.
func encodeQuery(q model.SearchQuery) url.Values {
	v := url.Values{}
	v.Set("title", q.Title)
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Filters.RemoteOnly {
		v.Set("remote_only", "true")
	}
	if q.Filters.MinSalary != nil {
		v.Set("min_salary", strconv.FormatFloat(*q.Filters.MinSalary, 'f', -1, 64))
	}
	if q.Filters.MaxSalary != nil {
		v.Set("max_salary", strconv.FormatFloat(*q.Filters.MaxSalary, 'f', -1, 64))
	}
	if q.Filters.EmploymentType != "" {
		v.Set("employment_type", q.Filters.EmploymentType)
	}
	if q.Filters.ExperienceLevel != "" {
		v.Set("experience_level", q.Filters.ExperienceLevel)
	}
	return v
}

// search runs one request and decodes the envelope.
func (c *client) search(ctx context.Context, r Request) (model.SearchResult, error) {
	var res model.SearchResult
	err := c.getJSON(ctx, "/search-jobs?"+encodeQuery(r.Query).Encode(), r.ID, &res)
	return res, err
}

// suggestions fetches autocomplete candidates.
func (c *client) suggestions(ctx context.Context, partial string) (model.Suggestions, error) {
	var res model.Suggestions
	err := c.getJSON(ctx, "/suggestions?partial="+url.QueryEscape(partial), "", &res)
	return res, err
}

// health checks that /healthz answers 200.
func (c *client) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

func (c *client) getJSON(ctx context.Context, path, requestID string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
