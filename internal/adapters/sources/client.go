// Package sources holds one Client per upstream job-listing provider.
//
// Every client maps the generic query and the filters its provider understands
// onto a provider request, and flattens the response into model.RawJob records
// whose keys the normalizer knows. Filters a provider cannot express are dropped
// here; the filter stage re-applies all of them.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout     = 8 * time.Second
	defaultMaxAttempts = 3
	defaultBaseDelay   = 250 * time.Millisecond
	userAgent          = "jobscout/1.0"
	errorBodyLimit     = 512
)

// Client fetches raw listings from one provider.
type Client interface {
	Name() string
	FetchJobs(ctx context.Context, query string, filters model.FilterSet, page, limit int) ([]model.RawJob, error)
}

// Option applies a configuration option to a provider client.
type Option func(*base)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(b *base) {
		if h != nil {
			b.http = h
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *base) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithRetry sets the attempt ceiling and backoff base delay for 429/503 responses.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(b *base) {
		if maxAttempts > 0 {
			b.maxAttempts = maxAttempts
		}
		if baseDelay >= 0 {
			b.baseDelay = baseDelay
		}
	}
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(u string) Option {
	return func(b *base) {
		if u != "" {
			b.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// base carries the HTTP plumbing shared by all providers.
type base struct {
	name        string
	baseURL     string
	http        *http.Client
	timeout     time.Duration
	maxAttempts int
	baseDelay   time.Duration
	logger      logger.Logger
}

func newBase(name, baseURL string, opts []Option) base {
	b := base{
		name:        name,
		baseURL:     baseURL,
		http:        &http.Client{},
		timeout:     defaultTimeout,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      logger.Get().Named("sources." + name),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Name returns the provider name.
func (b *base) Name() string { return b.name }

// requestFunc builds a fresh request for each attempt.
type requestFunc func(ctx context.Context) (*http.Request, error)

// doJSON runs build with per-attempt timeouts, retries transient failures with
// exponential backoff, and decodes a 2xx body into out.
func (b *base) doJSON(ctx context.Context, build requestFunc, out any) error {
	var err error
	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		if attempt > 1 {
			metrics.RecordSourceRetry(b.name)
			if serr := sleep(ctx, b.baseDelay*time.Duration(1<<(attempt-2))); serr != nil {
				return &ProviderError{Source: b.name, Kind: KindTransient, Message: "cancelled during backoff", Cause: serr}
			}
		}

		start := time.Now()
		err = b.attempt(ctx, build, out)
		latency := float64(time.Since(start).Milliseconds())
		outcome := "ok"
		if err != nil {
			outcome = string(KindOf(err))
		}
		metrics.RecordSourceRequest(b.name, outcome, latency)

		var pe *ProviderError
		if err == nil || !errors.As(err, &pe) || !pe.Retryable() || ctx.Err() != nil {
			return err
		}
		b.logger.Debug(ctx, "transient provider failure",
			logger.Int("attempt", attempt),
			logger.Int("status", pe.StatusCode),
			logger.Error(err),
		)
	}
	return err
}

func (b *base) attempt(ctx context.Context, build requestFunc, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := build(callCtx)
	if err != nil {
		return &ProviderError{Source: b.name, Kind: KindPermanent, Message: "build request", Cause: err}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return &ProviderError{Source: b.name, Kind: KindTransient, Message: "timed out", Cause: err}
		}
		return &ProviderError{Source: b.name, Kind: KindPermanent, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		kind := KindPermanent
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			kind = KindTransient
		}
		return &ProviderError{
			Source:     b.name,
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Message:    "unexpected status: " + strings.TrimSpace(string(body)),
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return &ProviderError{Source: b.name, Kind: KindTransient, Message: "timed out reading body", Cause: err}
		}
		return &ProviderError{Source: b.name, Kind: KindMalformed, Message: "decode response", Cause: err}
	}
	return nil
}

func (b *base) malformed(msg string) error {
	return &ProviderError{Source: b.name, Kind: KindMalformed, Message: msg}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// salaryParam renders a salary bound as an integer query value.
func salaryParam(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(int64(*v), 10)
}

// window returns items[(page-1)*limit : page*limit], clipped.
func window[T any](items []T, page, limit int) []T {
	from := (page - 1) * limit
	if from >= len(items) {
		return nil
	}
	to := from + limit
	if to > len(items) {
		to = len(items)
	}
	return items[from:to]
}

// joinNonEmpty joins the non-blank parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// matchesQuery reports whether any query word occurs in one of fields, for
// providers without server-side search.
func matchesQuery(query string, fields ...string) bool {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return true
	}
	hay := strings.ToLower(strings.Join(fields, " "))
	for _, w := range words {
		if strings.Contains(hay, w) {
			return true
		}
	}
	return false
}

// idString renders a provider identifier that may arrive as a string or a number.
func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// errorf wraps a formatted message as a permanent provider error.
func (b *base) errorf(format string, args ...any) error {
	return &ProviderError{Source: b.name, Kind: KindPermanent, Message: fmt.Sprintf(format, args...)}
}
