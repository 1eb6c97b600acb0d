package service

import (
	"context"

	"carparkfinder/internal/model"
)

// CostOracle is the external reasoning capability that interprets free-text
// rate structures and computes a parking cost.
type CostOracle interface {
	// EstimateCost asks the oracle to price one carpark stay. The call is
	// deterministic for identical requests (zero-temperature prompting).
	EstimateCost(ctx context.Context, req OracleRequest) (*OracleResult, error)

	// IsEnabled returns whether the oracle is configured and ready. A
	// disabled oracle degrades every estimate to a null cost; it is never
	// a fatal condition for a query.
	IsEnabled() bool
}

// OracleRequest is the structured prompt input for one cost calculation.
type OracleRequest struct {
	CarparkName   string
	RateString    string
	DurationHours float64
	DayType       model.DayType
}

// OracleResult is the structured payload extracted from the oracle's reply.
type OracleResult struct {
	TotalCost   float64 `json:"total_cost"`
	Breakdown   string  `json:"breakdown"`
	Explanation string  `json:"explanation,omitempty"`
	Confidence  string  `json:"confidence,omitempty"`
}
