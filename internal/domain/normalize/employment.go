package normalize

import "strings"

// Canonical employment type labels.
const (
	FullTime   = "full-time"
	PartTime   = "part-time"
	Contract   = "contract"
	Internship = "internship"
	Freelance  = "freelance"
)

var employmentSynonyms = map[string]string{
	"fulltime":         FullTime,
	"full time":        FullTime,
	"full-time":        FullTime,
	"full_time":        FullTime,
	"permanent":        FullTime,
	"parttime":         PartTime,
	"part time":        PartTime,
	"part-time":        PartTime,
	"part_time":        PartTime,
	"contract":         Contract,
	"contractor":       Contract,
	"temp":             Contract,
	"temporary":        Contract,
	"contract to hire": Contract,
	"intern":           Internship,
	"internship":       Internship,
	"freelance":        Freelance,
	"freelancer":       Freelance,
}

// EmploymentType maps a raw label onto the canonical set.
// Unknown non-empty labels pass through lower-cased.
func EmploymentType(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if canonical, ok := employmentSynonyms[key]; ok {
		return canonical
	}
	return key
}
