package curation

import (
	"math"
	"testing"
)

func TestExtractNumbers(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		values []float64
		tols   []float64
	}{
		{"dollar and percent", "Liquidity of $12,500 with 82% odds", []float64{12500, 82}, []float64{0.5, 0.5}},
		{"multiple and stake", "pays ~4.88x on a $1 stake", []float64{4.88, 1}, []float64{0.005, 0.5}},
		{"k suffix", "about 1.5k trades", []float64{1500}, []float64{50}},
		{"m suffix", "a $2M pool", []float64{2000000}, []float64{500000}},
		{"signed decimal", "EV of +0.23 today", []float64{0.23}, []float64{0.005}},
		{"negative", "EV -0.15 looks poor", []float64{-0.15}, []float64{0.005}},
		{"hyphenated word", "GPT-5 beats GPT-4", []float64{5, 4}, []float64{0.5, 0.5}},
		{"unit runs into letters", "8km from here", []float64{8}, []float64{0.5}},
		{"plain integer", "resolves in 30 days", []float64{30}, []float64{0.5}},
		{"trailing comma", "worth $12,500, maybe more", []float64{12500}, []float64{0.5}},
		{"no numerals", "no numerals at all", nil, nil},
	}
	for _, tc := range cases {
		got := extractNumbers(tc.text)
		if len(got) != len(tc.values) {
			t.Errorf("%s: extracted %d tokens, want %d (%v)", tc.name, len(got), len(tc.values), got)
			continue
		}
		for i, tok := range got {
			if tok.Value != tc.values[i] {
				t.Errorf("%s: token %d value = %g, want %g", tc.name, i, tok.Value, tc.values[i])
			}
			if math.Abs(tok.Tol-tc.tols[i]) > 1e-12 {
				t.Errorf("%s: token %d tol = %g, want %g", tc.name, i, tok.Tol, tc.tols[i])
			}
		}
	}
}

func TestNumTokenMatching(t *testing.T) {
	facts := []float64{82.05, 12500, 0.207, 70.5}
	cases := []struct {
		name string
		text string
		ok   bool
	}{
		{"decimal within half its last digit", "82.1", true},
		{"integer within half a unit", "82", true},
		{"integer almost a full unit off", "83", false},
		{"exact dollar amount", "$12,500", true},
		{"rounded EV", "+0.21", true},
		{"EV off by over half its last digit", "0.22", false},
		{"exactly half a unit away", "70", true},
		{"a full unit away", "71.5", false},
	}
	for _, tc := range cases {
		toks := extractNumbers(tc.text)
		if len(toks) != 1 {
			t.Fatalf("%s: extracted %d tokens, want 1", tc.name, len(toks))
		}
		if got := toks[0].matchesAny(facts); got != tc.ok {
			t.Errorf("%s: matchesAny(%q) = %v, want %v", tc.name, tc.text, got, tc.ok)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{950, "950"},
		{12500, "12,500"},
		{12500.4, "12,500"},
		{1250000, "1,250,000"},
	}
	for _, tc := range cases {
		if got := FormatUSD(tc.in); got != tc.want {
			t.Errorf("FormatUSD(%g) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
