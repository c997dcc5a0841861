package curation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// matchSlack absorbs float formatting noise when a token sits exactly
// half a unit from its fact.
const matchSlack = 1e-9

var numPattern = regexp.MustCompile(`[-+]?[~≈]?\$?\d[\d,]*(?:\.\d+)?[kKmMxX%]?`)

// numToken is one numeric claim pulled out of phrased text. Tol is
// half a unit of the token's last printed decimal, scaled by any k/m
// magnitude suffix, so "82%" tolerates 0.5 and "4.88x" tolerates
// 0.005.
type numToken struct {
	Value float64
	Tol   float64
	Raw   string
}

func (t numToken) matchesAny(facts []float64) bool {
	for _, f := range facts {
		if math.Abs(t.Value-f) <= t.Tol+matchSlack {
			return true
		}
	}
	return false
}

// extractNumbers pulls every numeric token out of s: integers and
// decimals, $ amounts, percentages, ~ approximations, comma grouping,
// k/m magnitude suffixes, and x multiples.
func extractNumbers(s string) []numToken {
	matches := numPattern.FindAllStringIndex(s, -1)
	tokens := make([]numToken, 0, len(matches))
	for _, m := range matches {
		raw := s[m[0]:m[1]]
		tok, ok := parseNumToken(raw, isWordByte(s, m[0]-1), isLetterByte(s, m[1]))
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// parseNumToken normalizes one raw match. A leading minus after a word
// character is a hyphen, not a sign ("GPT-5" claims 5, not -5), and a
// k/m suffix running into further letters is part of a word ("8km"
// claims 8).
func parseNumToken(raw string, hyphenated, suffixInWord bool) (numToken, bool) {
	s := raw
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		s = s[1:]
		neg = !hyphenated
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "~")
	s = strings.TrimPrefix(s, "≈")
	s = strings.TrimPrefix(s, "$")
	scale := 1.0
	if n := len(s); n > 0 {
		switch s[n-1] {
		case '%', 'x', 'X':
			s = s[:n-1]
		case 'k', 'K':
			if !suffixInWord {
				scale = 1e3
			}
			s = s[:n-1]
		case 'm', 'M':
			if !suffixInWord {
				scale = 1e6
			}
			s = s[:n-1]
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	decimals := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		decimals = len(s) - i - 1
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return numToken{}, false
	}
	v *= scale
	if neg {
		v = -v
	}
	return numToken{
		Value: v,
		Tol:   0.5 * math.Pow(10, -float64(decimals)) * scale,
		Raw:   raw,
	}, true
}

func isWordByte(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isLetterByte(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// FormatUSD renders a dollar amount with comma grouping and no cents.
func FormatUSD(v float64) string {
	digits := strconv.FormatInt(int64(math.Abs(math.Round(v))), 10)
	var b strings.Builder
	if math.Signbit(v) {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
