package research

import (
	"strings"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// Keyword tables for directional lean classification.
var (
	bullishKeywords = []string{
		"breakthrough", "success", "approved", "confirmed", "achieved",
		"launches", "releases", "partnership", "funding", "raised",
		"positive", "growth", "exceeds", "surpasses", "first",
	}
	bearishKeywords = []string{
		"fails", "delayed", "cancelled", "rejected", "denied",
		"lawsuit", "investigation", "concerns", "risks", "warns",
		"layoffs", "downsizing", "negative", "struggles", "behind",
	}
)

// ClassifyLean infers the directional lean of a text from keyword
// counts. A direction needs at least two hits and a strict majority.
func ClassifyLean(text string) domain.Lean {
	lower := strings.ToLower(text)

	bullish, bearish := 0, 0
	for _, kw := range bullishKeywords {
		if strings.Contains(lower, kw) {
			bullish++
		}
	}
	for _, kw := range bearishKeywords {
		if strings.Contains(lower, kw) {
			bearish++
		}
	}

	switch {
	case bullish > bearish && bullish >= 2:
		return domain.LeanYes
	case bearish > bullish && bearish >= 2:
		return domain.LeanNo
	}
	return domain.LeanNone
}

// Markers of an explicit claim about the future.
var predictionMarkers = []string{
	"will ", "predicts", "prediction", "expects", "expected to",
	"forecast", "targets", "by 20", "on track",
}

// ClassifySpecific reports whether a text makes an explicit, concrete
// prediction: a prediction marker plus at least one number.
func ClassifySpecific(text string) bool {
	lower := strings.ToLower(text)

	marked := false
	for _, m := range predictionMarkers {
		if strings.Contains(lower, m) {
			marked = true
			break
		}
	}
	if !marked {
		return false
	}

	for _, r := range lower {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
