package model

import "github.com/paulmach/orb"

// QueryRequest is the single query operation accepted by the engine.
type QueryRequest struct {
	// SearchTerm is free text; empty (or the "near me" sentinel) means browse.
	SearchTerm string

	// DurationHours triggers cost estimation when greater than zero.
	DurationHours float64

	DayType DayType

	// UserLocation, when set, attaches distance_km to every result.
	UserLocation *orb.Point

	// SortByDistance reorders results by ascending distance. Ranked search
	// results are never reordered by distance unless this is set.
	SortByDistance bool
}

// QueryResponse is the ordered carpark list returned to the service layer.
type QueryResponse struct {
	QueryID string    `json:"query_id"`
	Count   int       `json:"count"`
	TookMS  int64     `json:"took_ms"`
	Results []Carpark `json:"results"`
}
