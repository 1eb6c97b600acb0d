package model

import (
	"github.com/paulmach/orb"
)

// Source identifies which upstream authority a record came from.
type Source string

const (
	SourceLTA Source = "LTA"
	SourceHDB Source = "HDB"
)

// LotType classifies a slot-level availability row by vehicle class.
type LotType string

const (
	LotTypeCar        LotType = "car"
	LotTypeMotorcycle LotType = "motorcycle"
	LotTypeHeavy      LotType = "heavy"
)

// DayType selects which rate text applies for a cost estimate.
type DayType string

const (
	DayTypeWeekday  DayType = "weekday"
	DayTypeSaturday DayType = "saturday"
	DayTypeSunday   DayType = "sunday"
)

// Valid reports whether the day type is one of the supported values.
func (d DayType) Valid() bool {
	switch d {
	case DayTypeWeekday, DayTypeSaturday, DayTypeSunday:
		return true
	}
	return false
}

// SlotRecord is one normalized lot-type-specific availability row as
// published by an upstream feed, before consolidation. Records with
// unparsable coordinates never reach this type.
type SlotRecord struct {
	CarparkID     string
	Area          string
	Development   string
	Address       string
	Location      orb.Point // lng/lat order, as orb stores points
	LotType       LotType
	AvailableLots int
	Source        Source

	// Aggregated marks records whose source already summed car lots
	// (the housing feed publishes one pre-aggregated count per carpark).
	Aggregated bool

	// UpdatedAt carries the feed's own availability timestamp, when present.
	UpdatedAt string

	HDB *HDBDetails
}

// HDBDetails holds housing-authority attributes that only exist on the
// housing feed's static reference table.
type HDBDetails struct {
	CarParkType     string `json:"car_park_type,omitempty"`
	ParkingSystem   string `json:"parking_system,omitempty"`
	ShortTermParking string `json:"short_term_parking,omitempty"`
	FreeParking     string `json:"free_parking,omitempty"`
	NightParking    string `json:"night_parking,omitempty"`
	Decks           int    `json:"car_park_decks,omitempty"`
	GantryHeight    float64 `json:"gantry_height,omitempty"`
	Basement        string `json:"car_park_basement,omitempty"`
}

// Carpark is the consolidated catalogue unit: one logical parking facility
// with lot counts summed across all contributing slot records.
type Carpark struct {
	CarparkID        string  `json:"carpark_id"`
	Area             string  `json:"area"`
	Development      string  `json:"development"`
	Address          string  `json:"address,omitempty"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	CarLots          int     `json:"car_lots"`
	MotorcycleLots   int     `json:"motorcycle_lots"`
	HeavyVehicleLots int     `json:"heavy_vehicle_lots"`
	Source           Source  `json:"source"`
	UpdatedAt        string  `json:"update_datetime,omitempty"`

	HDB *HDBDetails `json:"hdb_details,omitempty"`

	DistanceKM *float64 `json:"distance_km,omitempty"`

	HasPricing         bool     `json:"has_pricing"`
	HasSpecificPricing bool     `json:"has_specific_pricing"`
	Pricing            *RateSet `json:"pricing,omitempty"`

	CalculatedCost *float64 `json:"calculated_cost,omitempty"`
	CostBreakdown  string   `json:"cost_breakdown,omitempty"`
	AIExplanation  string   `json:"ai_explanation,omitempty"`
	AIConfidence   string   `json:"ai_confidence,omitempty"`
}

// RateSet is the static rate text for one carpark, keyed in the rate table
// by a normalized form of its identifier or development name.
type RateSet struct {
	Name                  string `json:"name"`
	WeekdayRate           string `json:"weekday_rate"`
	WeekdayRateAfterHours string `json:"weekday_rate_after_hours,omitempty"`
	SaturdayRate          string `json:"saturday_rate"`
	SundayRate            string `json:"sunday_rate"`
	Note                  string `json:"note,omitempty"`
}

// CostEstimate is the outcome of one oracle calculation (or a degraded
// placeholder when no calculation was possible).
type CostEstimate struct {
	CalculatedCost *float64 `json:"calculated_cost"`
	CostBreakdown  string   `json:"cost_breakdown"`
	AIExplanation  string   `json:"ai_explanation,omitempty"`
	Confidence     string   `json:"confidence,omitempty"`
	FromCache      bool     `json:"from_cache,omitempty"`
}
