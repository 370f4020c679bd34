package scoring

import (
	"math"
	"strings"
	"unicode"
)

// Tokenize lower-cases s and splits it into words. '+' and '#' stay inside tokens
// so that "C++" and "C#" survive.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

func counts(tokens []string) map[string]float64 {
	m := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		m[t]++
	}
	return m
}

// Cosine is the cosine similarity of the word-count vectors of a and b.
// Empty input on either side yields 0.
func Cosine(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	va, vb := counts(a), counts(b)
	var dot, na, nb float64
	for t, x := range va {
		dot += x * vb[t]
		na += x * x
	}
	for _, y := range vb {
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
