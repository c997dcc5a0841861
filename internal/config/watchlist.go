package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Vitor-VarelAI/Polymarket/internal/domain"
)

// Watchlist restricts monitoring to named markets and lets operators
// pin a category when Gamma's tags misclassify one. An empty watchlist
// monitors everything the market fetch returns.
type Watchlist struct {
	// Markets holds slugs of markets to monitor. Empty means all.
	Markets []string `yaml:"markets"`

	// Categories maps a market slug to a category override.
	Categories map[string]string `yaml:"categories"`
}

// LoadWatchlist reads the YAML watchlist at path. An empty path yields
// an empty watchlist; a named but unreadable file is an error so a
// typo'd path cannot silently widen monitoring to every market.
func LoadWatchlist(path string) (*Watchlist, error) {
	if path == "" {
		return &Watchlist{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	w := &Watchlist{}
	if err := yaml.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("parse watchlist: %w", err)
	}
	for i := range w.Markets {
		w.Markets[i] = strings.TrimSpace(w.Markets[i])
	}
	return w, nil
}

// Match reports whether the market is monitored.
func (w *Watchlist) Match(m *domain.Market) bool {
	if len(w.Markets) == 0 {
		return true
	}
	for _, slug := range w.Markets {
		if slug != "" && slug == m.Slug {
			return true
		}
	}
	return false
}

// Apply overwrites the market's category when an override is pinned.
func (w *Watchlist) Apply(m *domain.Market) {
	if override, ok := w.Categories[m.Slug]; ok && override != "" {
		m.Category = override
	}
}
