package dedupe

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
)

// Identity key policies.
const (
	PolicyTitleCompany         = "title_company"
	PolicyTitleCompanyLocation = "title_company_location"
)

// KeyFunc derives the identity key of a listing.
type KeyFunc func(j *model.NormalizedJob) string

// keySep cannot appear in folded field text.
const keySep = "\x1f"

func fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// TitleCompanyKey identifies a listing by title and company.
func TitleCompanyKey(j *model.NormalizedJob) string {
	return fold(j.Title) + keySep + fold(j.Company)
}

// TitleCompanyLocationKey additionally separates listings by location.
func TitleCompanyLocationKey(j *model.NormalizedJob) string {
	return TitleCompanyKey(j) + keySep + fold(j.Location)
}

// KeyFor returns the KeyFunc of a named policy.
func KeyFor(policy string) (KeyFunc, error) {
	switch policy {
	case PolicyTitleCompany, "":
		return TitleCompanyKey, nil
	case PolicyTitleCompanyLocation:
		return TitleCompanyLocationKey, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
}

// Dedupe keeps the first listing of every key, in input order. Later duplicates
// are dropped without merging their fields.
func Dedupe(ctx context.Context, jobs []model.NormalizedJob, key KeyFunc) []model.NormalizedJob {
	seen := NewInMemoryDeduper(WithMaxSize(0))
	out := make([]model.NormalizedJob, 0, len(jobs))
	for i := range jobs {
		if seen.SeenAndRecord(ctx, key(&jobs[i])) {
			continue
		}
		out = append(out, jobs[i])
	}
	return out
}
