// Package geocode resolves free-text locations into a formatted place and country code.
//
// Client talks to an OpenCage-compatible HTTP API. Cache fronts any Resolver with a
// TTL-bounded in-process map, in-flight coalescing and an optional Redis tier.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/jobscout/internal/domain/model"
)

const defaultClientTimeout = 5 * time.Second

// Place is a geocoded location.
type Place = model.Place

// Resolver turns a free-text location into a Place.
type Resolver interface {
	Resolve(ctx context.Context, query string) (Place, error)
}

// Client queries the geocoding HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for lookups.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient creates a geocoding client. An empty apiKey yields ErrNotConfigured on every call.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type openCageResponse struct {
	Results []struct {
		Formatted  string `json:"formatted"`
		Components struct {
			CountryCode string `json:"country_code"`
		} `json:"components"`
	} `json:"results"`
}

// Resolve looks up query and returns the best match.
func (c *Client) Resolve(ctx context.Context, query string) (Place, error) {
	if c.apiKey == "" {
		return Place{}, ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return Place{}, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("limit", "1")
	params.Set("no_annotations", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("%w: build request: %w", ErrUpstream, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Place{}, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out openCageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Place{}, fmt.Errorf("%w: decode: %w", ErrUpstream, err)
	}
	if len(out.Results) == 0 || out.Results[0].Formatted == "" {
		return Place{}, ErrNoMatch
	}
	r := out.Results[0]
	return Place{
		Formatted:   r.Formatted,
		CountryCode: strings.ToUpper(r.Components.CountryCode),
	}, nil
}
