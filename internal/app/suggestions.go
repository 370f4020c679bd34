package service

import (
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
)

const maxSuggestions = 8

var suggestedTitles = []string{
	"Software Engineer",
	"Senior Software Engineer",
	"Backend Developer",
	"Frontend Developer",
	"Full Stack Developer",
	"Go Developer",
	"Python Developer",
	"Java Developer",
	"JavaScript Developer",
	"DevOps Engineer",
	"Site Reliability Engineer",
	"Data Engineer",
	"Data Scientist",
	"Data Analyst",
	"Machine Learning Engineer",
	"Mobile Developer",
	"iOS Developer",
	"Android Developer",
	"QA Engineer",
	"Security Engineer",
	"Cloud Engineer",
	"Product Manager",
	"Project Manager",
	"Engineering Manager",
	"UX Designer",
	"UI Designer",
	"Technical Writer",
	"Business Analyst",
	"Systems Administrator",
	"Database Administrator",
}

var suggestedLocations = []string{
	"Remote",
	"New York, NY",
	"San Francisco, CA",
	"Seattle, WA",
	"Austin, TX",
	"Boston, MA",
	"Chicago, IL",
	"Los Angeles, CA",
	"Denver, CO",
	"Washington, DC",
	"Toronto, Canada",
	"Vancouver, Canada",
	"London, United Kingdom",
	"Manchester, United Kingdom",
	"Dublin, Ireland",
	"Berlin, Germany",
	"Munich, Germany",
	"Amsterdam, Netherlands",
	"Paris, France",
	"Stockholm, Sweden",
	"Barcelona, Spain",
	"Lisbon, Portugal",
	"Zurich, Switzerland",
	"Sydney, Australia",
	"Melbourne, Australia",
	"Singapore",
	"Bangalore, India",
	"Tokyo, Japan",
}

// Suggestions returns curated titles and locations containing partial,
// case-insensitively. A blank partial yields empty lists.
func (s *Service) Suggestions(partial string) model.Suggestions {
	partial = strings.ToLower(strings.TrimSpace(partial))
	if partial == "" {
		return model.Suggestions{Titles: []string{}, Locations: []string{}}
	}
	return model.Suggestions{
		Titles:    matching(suggestedTitles, partial),
		Locations: matching(suggestedLocations, partial),
	}
}

func matching(list []string, partial string) []string {
	out := make([]string, 0, maxSuggestions)
	for _, item := range list {
		if len(out) == maxSuggestions {
			break
		}
		if strings.Contains(strings.ToLower(item), partial) {
			out = append(out, item)
		}
	}
	return out
}
