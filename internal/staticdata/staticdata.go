// Package staticdata ships the read-only configuration tables the engine
// loads once at startup: search aliases with popular-location flags, the
// carpark rate table, and the geocoded housing-authority reference.
// The housing reference is an extract of the authority's static dataset;
// replacing data/hdb_carparks.json with a fresh export extends coverage
// without code changes.
package staticdata

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed data/*.json
var dataFS embed.FS

// SearchAliases maps colloquial search terms to canonical development names
// and flags developments that receive ranking boosts.
type SearchAliases struct {
	MallAliases      map[string][]string `json:"mall_aliases"`
	PopularLocations []string            `json:"popular_locations"`
}

// RateEntry is one row of the rate table as stored on disk. The special
// carpark_id values "hdb" and "default" hold the housing-estate and generic
// fallback rate sets.
type RateEntry struct {
	CarparkID             string `json:"carpark_id"`
	Name                  string `json:"name"`
	WeekdayRate           string `json:"weekday_rate"`
	WeekdayRateAfterHours string `json:"weekday_rate_after_hours"`
	SaturdayRate          string `json:"saturday_rate"`
	SundayRate            string `json:"sunday_rate"`
	Note                  string `json:"note"`
}

// HDBCarparkInfo is one row of the housing authority's static geocoded
// reference table.
type HDBCarparkInfo struct {
	CarParkNo           string  `json:"car_park_no"`
	Address             string  `json:"address"`
	Lat                 float64 `json:"lat"`
	Lng                 float64 `json:"lng"`
	CarParkType         string  `json:"car_park_type"`
	TypeOfParkingSystem string  `json:"type_of_parking_system"`
	ShortTermParking    string  `json:"short_term_parking"`
	FreeParking         string  `json:"free_parking"`
	NightParking        string  `json:"night_parking"`
	CarParkDecks        int     `json:"car_park_decks"`
	GantryHeight        float64 `json:"gantry_height"`
	CarParkBasement     string  `json:"car_park_basement"`
}

// Aliases loads the embedded search alias table.
func Aliases() (*SearchAliases, error) {
	raw, err := dataFS.ReadFile("data/search_aliases.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read search aliases: %w", err)
	}
	var aliases SearchAliases
	if err := json.Unmarshal(raw, &aliases); err != nil {
		return nil, fmt.Errorf("failed to parse search aliases: %w", err)
	}
	return &aliases, nil
}

// Rates loads the embedded carpark rate table.
func Rates() ([]RateEntry, error) {
	raw, err := dataFS.ReadFile("data/carpark_rates.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read carpark rates: %w", err)
	}
	var file struct {
		Carparks []RateEntry `json:"carparks"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse carpark rates: %w", err)
	}
	return file.Carparks, nil
}

// HDBCarparks loads the embedded housing-authority reference table.
func HDBCarparks() ([]HDBCarparkInfo, error) {
	raw, err := dataFS.ReadFile("data/hdb_carparks.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read HDB carpark info: %w", err)
	}
	var carparks []HDBCarparkInfo
	if err := json.Unmarshal(raw, &carparks); err != nil {
		return nil, fmt.Errorf("failed to parse HDB carpark info: %w", err)
	}
	return carparks, nil
}
