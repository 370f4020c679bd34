package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
)

// field names a NormalizedJob attribute extracted from raw records.
type field int

const (
	fieldTitle field = iota
	fieldCompany
	fieldLocation
	fieldCountry
	fieldApplyLink
	fieldSalary
	fieldEmploymentType
	fieldDescription
	fieldID
	fieldCreated
)

// aliases lists raw keys per field, highest priority first.
var aliases = map[field][]string{
	fieldTitle:          {"title", "job_title", "name", "position", "role"},
	fieldCompany:        {"company", "company_name", "employer", "organization", "hiring_organization"},
	fieldLocation:       {"location", "job_location", "city", "candidate_required_location", "area"},
	fieldCountry:        {"country_code", "job_country", "country"},
	fieldApplyLink:      {"apply_link", "redirect_url", "url", "link", "job_apply_link", "apply_url"},
	fieldSalary:         {"salary", "salary_min", "min_salary", "job_min_salary", "salary_from"},
	fieldEmploymentType: {"employment_type", "job_employment_type", "contract_type", "job_type", "type", "contract_time"},
	fieldDescription:    {"description", "job_description", "snippet", "summary", "contents"},
	fieldID:             {"id", "job_id", "slug", "position_id"},
	fieldCreated:        {"created_at", "created", "date_posted", "job_posted_at_datetime_utc", "publication_date", "updated"},
}

// nestedNameKeys are tried when an alias holds an object, e.g. {"display_name": "Acme"}.
var nestedNameKeys = []string{"display_name", "name", "label", "title"}

// lookup returns the first non-empty value among the field's aliases.
func lookup(raw model.RawJob, f field) any {
	for _, key := range aliases[f] {
		v, ok := raw[key]
		if !ok || isEmpty(v) {
			continue
		}
		return v
	}
	return nil
}

// lookupString is lookup followed by text conversion.
func lookupString(raw model.RawJob, f field) string {
	return text(lookup(raw, f))
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return text(t) == ""
	}
	return false
}

// text renders a raw value as a trimmed string.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		for _, k := range nestedNameKeys {
			if s := text(t[k]); s != "" {
				return s
			}
		}
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := text(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}
