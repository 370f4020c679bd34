// Package scoring ranks normalized listings by relevance to a query.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
)

// Score composition.
const (
	titleWeight       = 0.5
	descriptionWeight = 0.3
	locationWeight    = 0.2
	completenessBonus = 0.05
	maxScore          = 1.0

	defaultSourceWeight = 1.0
	defaultMaxKeywords  = 5
)

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithSourceWeights sets per-source boosts. Weights above 1.0 are clamped to 1.0 and
// non-positive weights are ignored.
func WithSourceWeights(weights map[string]float64) Option {
	return func(r *Ranker) {
		r.sourceWeights = make(map[string]float64, len(weights))
		for source, w := range weights {
			if w > 0 {
				r.sourceWeights[strings.ToLower(source)] = math.Min(w, maxScore)
			}
		}
	}
}

// WithDefaultWeight sets the boost for sources without a configured weight.
func WithDefaultWeight(w float64) Option {
	return func(r *Ranker) {
		if w > 0 {
			r.defaultWeight = math.Min(w, maxScore)
		}
	}
}

// WithMaxKeywords caps MatchedKeywords per listing.
func WithMaxKeywords(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.maxKeywords = n
		}
	}
}

// Ranker assigns relevance scores and orders listings.
type Ranker struct {
	sourceWeights map[string]float64
	defaultWeight float64
	maxKeywords   int
}

// NewRanker creates a ranker with configuration options.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		sourceWeights: map[string]float64{},
		defaultWeight: defaultSourceWeight,
		maxKeywords:   defaultMaxKeywords,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank scores every listing against query and the user's location, fills
// MatchedKeywords, and stable-sorts by score descending. jobs is modified in place.
func (r *Ranker) Rank(jobs []model.NormalizedJob, query string, where model.Place) []model.NormalizedJob {
	q := Tokenize(query)
	for i := range jobs {
		j := &jobs[i]
		j.RelevanceScore = r.score(j, q, where)
		j.MatchedKeywords = MatchedKeywords(q, j, r.maxKeywords)
	}
	sortByScore(jobs)
	return jobs
}

// Boost multiplies each score by its source weight and re-sorts.
func (r *Ranker) Boost(jobs []model.NormalizedJob) []model.NormalizedJob {
	for i := range jobs {
		jobs[i].RelevanceScore = clamp(jobs[i].RelevanceScore * r.Weight(jobs[i].Source))
	}
	sortByScore(jobs)
	return jobs
}

// Weight returns the boost applied to source.
func (r *Ranker) Weight(source string) float64 {
	if w, ok := r.sourceWeights[strings.ToLower(source)]; ok {
		return w
	}
	return r.defaultWeight
}

func (r *Ranker) score(j *model.NormalizedJob, query []string, where model.Place) float64 {
	s := titleWeight*Cosine(query, Tokenize(j.Title)) +
		descriptionWeight*Cosine(query, Tokenize(j.Description)) +
		locationWeight*LocationMatch(where, j)
	if j.Salary != nil {
		s += completenessBonus
	}
	if j.EmploymentType != "" {
		s += completenessBonus
	}
	if j.ApplyLink != "" {
		s += completenessBonus
	}
	return clamp(s)
}

// LocationMatch is 1 when the user's country matches or every user location token
// appears in the listing's location, the fraction of matching tokens otherwise, and
// 0 without a user location.
func LocationMatch(where model.Place, j *model.NormalizedJob) float64 {
	want := Tokenize(where.Formatted)
	if len(want) == 0 {
		return 0
	}
	if where.CountryCode != "" && j.CountryCode != nil && strings.EqualFold(where.CountryCode, *j.CountryCode) {
		return 1
	}
	have := make(map[string]struct{})
	for _, t := range Tokenize(j.Location) {
		have[t] = struct{}{}
	}
	hits := 0
	for _, t := range want {
		if _, ok := have[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}

// MatchedKeywords returns query tokens that occur within, or contain, a token of the
// listing's title and description. Single-character tokens are ignored.
func MatchedKeywords(query []string, j *model.NormalizedJob, limit int) []string {
	text := Tokenize(j.Title + " " + j.Description)
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(query))
	for _, q := range query {
		if len(out) == limit {
			break
		}
		if len(q) < 2 {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		for _, t := range text {
			if strings.Contains(t, q) || (len(t) > 1 && strings.Contains(q, t)) {
				out = append(out, q)
				break
			}
		}
	}
	return out
}

func sortByScore(jobs []model.NormalizedJob) {
	sort.SliceStable(jobs, func(a, b int) bool {
		return jobs[a].RelevanceScore > jobs[b].RelevanceScore
	})
}

func clamp(s float64) float64 {
	switch {
	case math.IsNaN(s) || s < 0:
		return 0
	case s > maxScore:
		return maxScore
	}
	return s
}
