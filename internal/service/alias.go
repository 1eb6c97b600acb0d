package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"carparkfinder/internal/staticdata"
)

// AliasTable maps colloquial search terms (mall nicknames, abbreviations)
// to canonical development names, and flags developments that receive
// ranking boosts. Loaded once at startup; read-only afterwards.
type AliasTable struct {
	aliases map[string][]string
	popular []string
}

// NewAliasTable loads the embedded alias configuration.
func NewAliasTable(logger *logrus.Logger) (*AliasTable, error) {
	cfg, err := staticdata.Aliases()
	if err != nil {
		return nil, fmt.Errorf("failed to load search aliases: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"aliases": len(cfg.MallAliases),
		"popular": len(cfg.PopularLocations),
	}).Info("Loaded search aliases")

	return newAliasTable(cfg.MallAliases, cfg.PopularLocations), nil
}

func newAliasTable(aliases map[string][]string, popular []string) *AliasTable {
	normalized := make(map[string][]string, len(aliases))
	for key, values := range aliases {
		normalized[strings.ToLower(strings.TrimSpace(key))] = values
	}
	return &AliasTable{
		aliases: normalized,
		popular: popular,
	}
}

// Expand returns the term followed by its configured aliases, in configured
// order. Lookup is exact on the lowercased, trimmed term; fuzziness is the
// ranking engine's job.
func (t *AliasTable) Expand(term string) []string {
	expanded := []string{term}
	if values, ok := t.aliases[strings.ToLower(strings.TrimSpace(term))]; ok {
		expanded = append(expanded, values...)
	}
	return expanded
}

// IsPopular reports whether the development name matches a flagged popular
// location (case-insensitive containment, so availability-feed suffixes
// like "ION Orchard Car Park" still match).
func (t *AliasTable) IsPopular(development string) bool {
	dev := strings.ToLower(development)
	for _, loc := range t.popular {
		if strings.Contains(dev, strings.ToLower(loc)) {
			return true
		}
	}
	return false
}
