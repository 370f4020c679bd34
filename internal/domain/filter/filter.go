// Package filter applies user constraints to normalized listings.
//
// Every active predicate must hold for a listing to survive. Missing data is
// treated as unknown and does not exclude a listing, except for the remote and
// experience checks which look for positive evidence in the text.
package filter

import (
	"slices"
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/normalize"
	"github.com/okian/jobscout/internal/domain/scoring"
)

// remoteSignals mark a listing as remote-friendly.
var remoteSignals = []string{
	"remote", "work from home", "wfh", "virtual", "telecommute",
	"distributed", "anywhere", "worldwide", "global",
}

// experienceSynonyms maps a level name to phrases that indicate it.
var experienceSynonyms = map[string][]string{
	"entry":     {"entry level", "junior", "graduate", "new grad", "0-2 years", "beginner"},
	"junior":    {"junior", "jr.", "entry level", "associate"},
	"mid":       {"mid level", "intermediate", "3-5 years", "experienced"},
	"senior":    {"senior", "sr.", "5+ years", "expert", "advanced"},
	"lead":      {"lead", "team lead", "tech lead", "leadership"},
	"principal": {"principal", "staff", "architect", "distinguished"},
	"intern":    {"intern", "internship", "co-op", "placement"},
	"trainee":   {"trainee", "apprentice", "apprenticeship"},
	"associate": {"associate", "junior"},
	"graduate":  {"graduate", "new grad", "recent graduate", "entry level"},
	"fresher":   {"fresher", "freshers", "no experience", "entry level", "graduate"},
}

// Apply returns the listings that satisfy every active filter, in input order.
func Apply(jobs []model.NormalizedJob, f model.FilterSet) []model.NormalizedJob {
	if f.IsZero() {
		return jobs
	}
	out := make([]model.NormalizedJob, 0, len(jobs))
	for i := range jobs {
		if Match(&jobs[i], f) {
			out = append(out, jobs[i])
		}
	}
	return out
}

// Match reports whether one listing satisfies f.
func Match(j *model.NormalizedJob, f model.FilterSet) bool {
	if f.RemoteOnly && !IsRemote(j) {
		return false
	}
	if !salaryInRange(j.Salary, f.MinSalary, f.MaxSalary) {
		return false
	}
	if want := normalize.EmploymentType(f.EmploymentType); want != "" && j.EmploymentType != "" &&
		normalize.EmploymentType(j.EmploymentType) != want {
		return false
	}
	if level := strings.TrimSpace(f.ExperienceLevel); level != "" && !hasExperience(j, level) {
		return false
	}
	return true
}

// IsRemote reports whether title, description or location carries a remote signal.
func IsRemote(j *model.NormalizedJob) bool {
	return containsAny(searchTokens(j, true), remoteSignals)
}

func salaryInRange(salary, lo, hi *float64) bool {
	if salary == nil {
		return true
	}
	if lo != nil && *salary < *lo {
		return false
	}
	if hi != nil && *salary > *hi {
		return false
	}
	return true
}

func hasExperience(j *model.NormalizedJob, level string) bool {
	level = strings.ToLower(level)
	phrases, ok := experienceSynonyms[level]
	if !ok {
		phrases = []string{level}
	}
	return containsAny(searchTokens(j, false), phrases)
}

// searchTokens is the word list the keyword predicates scan.
func searchTokens(j *model.NormalizedJob, withLocation bool) []string {
	text := j.Title + " " + j.Description
	if withLocation {
		text += " " + j.Location
	}
	return scoring.Tokenize(text)
}

// containsAny reports whether any phrase occurs in tokens as a run of whole
// words, so "intern" does not match "international".
func containsAny(tokens, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(tokens, scoring.Tokenize(p)) {
			return true
		}
	}
	return false
}

func containsPhrase(tokens, phrase []string) bool {
	n := len(phrase)
	if n == 0 {
		return false
	}
	for i := 0; i+n <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+n], phrase) {
			return true
		}
	}
	return false
}
