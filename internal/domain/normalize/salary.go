package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// salaryNumber matches the first figure in a salary string, with an optional k multiplier.
// Commas are thousands separators.
var salaryNumber = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*([kK])?`)

// ParseSalary converts a raw salary value into a single figure.
// Ranges collapse to their lower bound. Unparseable input yields nil.
func ParseSalary(v any) *float64 {
	var out float64
	switch t := v.(type) {
	case float64:
		out = t
	case int:
		out = float64(t)
	case int64:
		out = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		out = f
	case string:
		m := salaryNumber.FindStringSubmatch(t)
		if m == nil {
			return nil
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			return nil
		}
		if m[2] != "" {
			n *= 1000
		}
		out = n
	default:
		return nil
	}
	if out <= 0 {
		return nil
	}
	return &out
}
