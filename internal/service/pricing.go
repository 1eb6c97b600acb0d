package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"carparkfinder/internal/model"
	"carparkfinder/internal/staticdata"
)

// rateKeyReplacer normalizes rate-table keys and lookup terms:
// "313@Somerset" -> "313somerset".
var rateKeyReplacer = strings.NewReplacer("@", "", " ", "", "_", "")

// blockNumberPattern detects housing-estate block addresses like "BLK 123".
var blockNumberPattern = regexp.MustCompile(`(?i)\b(BLK|BLOCK)\s+\d`)

// PricingResolver maps a carpark to its applicable rate set via normalized
// identifier and fuzzy name matching, with housing-estate and generic
// default fallbacks. The rate table is loaded once and read-only.
type PricingResolver struct {
	rates        map[string]*model.RateSet
	housingRates *model.RateSet
	defaultRates *model.RateSet
	logger       *logrus.Logger
}

// NewPricingResolver loads the embedded rate table.
func NewPricingResolver(logger *logrus.Logger) (*PricingResolver, error) {
	entries, err := staticdata.Rates()
	if err != nil {
		return nil, fmt.Errorf("failed to load carpark rates: %w", err)
	}
	return newPricingResolver(entries, logger), nil
}

func newPricingResolver(entries []staticdata.RateEntry, logger *logrus.Logger) *PricingResolver {
	resolver := &PricingResolver{
		rates:  make(map[string]*model.RateSet, len(entries)),
		logger: logger,
	}

	for _, entry := range entries {
		rs := &model.RateSet{
			Name:                  entry.Name,
			WeekdayRate:           normalizeRate(entry.WeekdayRate),
			WeekdayRateAfterHours: normalizeRate(entry.WeekdayRateAfterHours),
			SaturdayRate:          normalizeRate(entry.SaturdayRate),
			SundayRate:            normalizeRate(entry.SundayRate),
			Note:                  entry.Note,
		}

		switch strings.ToLower(entry.CarparkID) {
		case "hdb":
			resolver.housingRates = rs
		case "default":
			resolver.defaultRates = rs
		default:
			resolver.rates[NormalizeRateKey(entry.CarparkID)] = rs
		}
	}

	logger.WithField("carparks", len(resolver.rates)).Info("Loaded carpark rates")
	return resolver
}

// NormalizeRateKey lowercases an identifier or development name and strips
// the separators that differ between feeds and the rate table.
func NormalizeRateKey(s string) string {
	return strings.TrimSpace(rateKeyReplacer.Replace(strings.ToLower(s)))
}

// normalizeRate maps any spelling of a free rate to the literal "Free".
func normalizeRate(rate string) string {
	if strings.EqualFold(strings.TrimSpace(rate), "free") {
		return "Free"
	}
	return rate
}

// Resolve returns the rate set for a carpark, and whether that rate set is
// specific to the carpark (as opposed to the housing-estate or generic
// default fallback). A nil rate set means no pricing at all is configured.
func (p *PricingResolver) Resolve(carparkID, development string) (rs *model.RateSet, specific bool) {
	// Housing estates share one authority-wide rate card regardless of any
	// entry the table might fuzzily match.
	if p.IsHousingEstate(carparkID, development) {
		return p.housingRates, false
	}

	if rs, ok := p.rates[NormalizeRateKey(carparkID)]; ok {
		return rs, true
	}

	if development != "" {
		name := NormalizeRateKey(development)
		if rs, ok := p.rates[name]; ok {
			return rs, true
		}

		// Fuzzy: either string contains the other, to survive feed suffixes
		// like "ION Orchard Car Park".
		for key, rs := range p.rates {
			if strings.Contains(name, key) || strings.Contains(key, name) {
				return rs, true
			}
		}
	}

	return p.defaultRates, false
}

// IsHousingEstate detects housing-authority carparks by development-name
// conventions: a block prefix, an explicit HDB prefix, or a block-number
// pattern anywhere in the name.
func (p *PricingResolver) IsHousingEstate(carparkID, development string) bool {
	dev := strings.ToUpper(strings.TrimSpace(development))
	if dev == "" {
		return false
	}

	for _, prefix := range []string{"BLK ", "BLOCK ", "HDB ", "BLK.", "BLOCK."} {
		if strings.HasPrefix(dev, prefix) {
			return true
		}
	}

	return blockNumberPattern.MatchString(dev)
}

// Apply resolves pricing for every carpark in place, setting has_pricing
// and has_specific_pricing per the resolution outcome.
func (p *PricingResolver) Apply(carparks []model.Carpark) {
	for i := range carparks {
		rs, specific := p.Resolve(carparks[i].CarparkID, carparks[i].Development)
		carparks[i].Pricing = rs
		carparks[i].HasPricing = rs != nil
		carparks[i].HasSpecificPricing = specific
	}
}
