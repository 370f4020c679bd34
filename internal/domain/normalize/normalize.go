// Package normalize maps heterogeneous provider records onto model.NormalizedJob.
//
// Fields are read through priority-ordered alias tables. Locations go through an
// optional Geocoder; a failed or skipped lookup keeps the raw string and never
// fails the record.
package normalize

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
)

// DefaultCompany fills NormalizedJob.Company when the record names none.
const DefaultCompany = "N/A"

const defaultLookupConcurrency = 8

// Geocoder resolves a free-text location.
type Geocoder interface {
	Lookup(ctx context.Context, raw string) (model.Place, error)
}

// Batch is one source's raw output.
type Batch struct {
	Source string
	Jobs   []model.RawJob
}

// Normalizer converts RawJobs into NormalizedJobs.
type Normalizer struct {
	geocoder Geocoder
	lookups  int
	now      func() time.Time
	logger   logger.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithGeocoder enables location normalization.
func WithGeocoder(g Geocoder) Option {
	return func(n *Normalizer) { n.geocoder = g }
}

// WithLookupConcurrency bounds how many geocode lookups NormalizeAll runs at once.
func WithLookupConcurrency(n int) Option {
	return func(nz *Normalizer) {
		if n > 0 {
			nz.lookups = n
		}
	}
}

// WithClock sets the source of discovery time for records without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// WithLogger sets the normalizer logger.
func WithLogger(l logger.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		lookups: defaultLookupConcurrency,
		now:     time.Now,
		logger:  logger.Get().Named("normalize"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts one raw record.
func (n *Normalizer) Normalize(ctx context.Context, source string, raw model.RawJob) model.NormalizedJob {
	r := n.newRun()
	return r.normalize(ctx, source, raw)
}

// NormalizeAll converts every batch in order. Each distinct location is geocoded
// once per call, concurrently up to the lookup bound, and all undated records
// share one discovery time.
func (n *Normalizer) NormalizeAll(ctx context.Context, batches []Batch) []model.NormalizedJob {
	total := 0
	for _, b := range batches {
		total += len(b.Jobs)
	}
	out := make([]model.NormalizedJob, 0, total)
	r := n.newRun()
	r.resolveAll(ctx, batches)
	for _, b := range batches {
		for _, raw := range b.Jobs {
			out = append(out, r.normalize(ctx, b.Source, raw))
		}
	}
	return out
}

// Locate geocodes a single location with the same fallback rules as Normalize.
func (n *Normalizer) Locate(ctx context.Context, raw string) (string, *string) {
	return n.newRun().locate(ctx, raw, "")
}

// run holds state scoped to one aggregation.
type run struct {
	n      *Normalizer
	places map[string]model.Place
	failed map[string]struct{}
	seenAt time.Time
}

func (n *Normalizer) newRun() *run {
	return &run{
		n:      n,
		places: make(map[string]model.Place),
		failed: make(map[string]struct{}),
		seenAt: n.now().UTC(),
	}
}

func (r *run) normalize(ctx context.Context, source string, raw model.RawJob) model.NormalizedJob {
	job := model.NormalizedJob{
		Title:          lookupString(raw, fieldTitle),
		Company:        lookupString(raw, fieldCompany),
		ApplyLink:      lookupString(raw, fieldApplyLink),
		Salary:         ParseSalary(lookup(raw, fieldSalary)),
		EmploymentType: EmploymentType(lookupString(raw, fieldEmploymentType)),
		Description:    StripHTML(lookupString(raw, fieldDescription)),
		Source:         source,
		OriginalID:     model.String(lookupString(raw, fieldID)),
		CreatedAt:      r.seenAt,
	}
	if job.Company == "" {
		job.Company = DefaultCompany
	}
	if ts, ok := ParseTime(lookup(raw, fieldCreated)); ok {
		job.CreatedAt = ts
	}
	job.Location, job.CountryCode = r.locate(ctx, lookupString(raw, fieldLocation), lookupString(raw, fieldCountry))
	return job
}

// locate returns the display location and country code. hint is a source-provided
// country used when geocoding yields nothing.
func (r *run) locate(ctx context.Context, raw, hint string) (string, *string) {
	raw = strings.TrimSpace(raw)
	fallback := countryHint(hint)
	if raw == "" || r.n.geocoder == nil {
		return raw, fallback
	}

	key := strings.ToLower(raw)
	if p, ok := r.places[key]; ok {
		return p.Formatted, countryOr(p.CountryCode, fallback)
	}
	if _, ok := r.failed[key]; ok {
		return raw, fallback
	}

	p, err := r.n.geocoder.Lookup(ctx, raw)
	if !r.record(ctx, key, raw, p, err) {
		return raw, fallback
	}
	return p.Formatted, countryOr(p.CountryCode, fallback)
}

// record stores one lookup result and reports whether it resolved.
func (r *run) record(ctx context.Context, key, raw string, p model.Place, err error) bool {
	if err != nil || p.Formatted == "" {
		if err != nil {
			r.n.logger.Debug(ctx, "geocode fallback", logger.String("location", raw), logger.Error(err))
		}
		r.failed[key] = struct{}{}
		return false
	}
	r.places[key] = p
	return true
}

// resolveAll geocodes every distinct location in batches before the records are
// built. A geocoder panic is raised again on the calling goroutine.
func (r *run) resolveAll(ctx context.Context, batches []Batch) {
	if r.n.geocoder == nil {
		return
	}
	pending := make(map[string]string)
	for _, b := range batches {
		for _, raw := range b.Jobs {
			loc := strings.TrimSpace(lookupString(raw, fieldLocation))
			if loc == "" {
				continue
			}
			if key := strings.ToLower(loc); pending[key] == "" {
				pending[key] = loc
			}
		}
	}
	if len(pending) == 0 {
		return
	}

	var (
		mu       sync.Mutex
		panicked any
	)
	var g errgroup.Group
	g.SetLimit(r.n.lookups)
	for key, loc := range pending {
		g.Go(func() error {
			defer func() {
				if v := recover(); v != nil {
					mu.Lock()
					if panicked == nil {
						panicked = v
					}
					mu.Unlock()
				}
			}()
			p, err := r.n.geocoder.Lookup(ctx, loc)
			mu.Lock()
			defer mu.Unlock()
			r.record(ctx, key, loc, p, err)
			return nil
		})
	}
	_ = g.Wait()
	if panicked != nil {
		panic(panicked)
	}
}

func countryHint(s string) *string {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return nil
	}
	return model.String(strings.ToUpper(s))
}

func countryOr(code string, fallback *string) *string {
	if c := countryHint(code); c != nil {
		return c
	}
	return fallback
}
