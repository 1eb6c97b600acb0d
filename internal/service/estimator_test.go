package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carparkfinder/internal/model"
)

type fakeOracle struct {
	mu       sync.Mutex
	calls    int
	enabled  bool
	err      error
	perRates map[string]float64
}

func (f *fakeOracle) EstimateCost(_ context.Context, req OracleRequest) (*OracleResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	cost := 5.0
	if c, ok := f.perRates[req.RateString]; ok {
		cost = c
	}
	return &OracleResult{
		TotalCost:   cost,
		Breakdown:   "flat test rate",
		Explanation: "computed by fake",
		Confidence:  "high",
	}, nil
}

func (f *fakeOracle) IsEnabled() bool { return f.enabled }

func (f *fakeOracle) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func pricedCarpark(id string, weekdayRate string) model.Carpark {
	return model.Carpark{
		CarparkID:   id,
		Development: id,
		HasPricing:  true,
		Pricing: &model.RateSet{
			Name:         id,
			WeekdayRate:  weekdayRate,
			SaturdayRate: weekdayRate,
			SundayRate:   weekdayRate,
		},
	}
}

func TestEstimateCostsAnnotatesInOrder(t *testing.T) {
	oracle := &fakeOracle{enabled: true, perRates: map[string]float64{
		"$1 per hour": 2.0,
		"$2 per hour": 4.0,
		"$3 per hour": 6.0,
	}}
	e := NewCostEstimator(oracle, 10, 3, testLogger())

	carparks := []model.Carpark{
		pricedCarpark("a", "$1 per hour"),
		pricedCarpark("b", "$2 per hour"),
		pricedCarpark("c", "$3 per hour"),
	}
	out := e.EstimateCosts(context.Background(), carparks, 2, model.DayTypeWeekday)

	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].CarparkID)
	assert.Equal(t, "b", out[1].CarparkID)
	assert.Equal(t, "c", out[2].CarparkID)
	for i, want := range []float64{2.0, 4.0, 6.0} {
		require.NotNil(t, out[i].CalculatedCost)
		assert.Equal(t, want, *out[i].CalculatedCost)
		assert.Equal(t, "flat test rate", out[i].CostBreakdown)
		assert.Equal(t, "high", out[i].AIConfidence)
	}
}

func TestEstimateCostsCapsOracleCalls(t *testing.T) {
	oracle := &fakeOracle{enabled: true}
	e := NewCostEstimator(oracle, 2, 2, testLogger())

	carparks := []model.Carpark{
		pricedCarpark("a", "$1 per hour"),
		pricedCarpark("b", "$2 per hour"),
		pricedCarpark("c", "$3 per hour"),
	}
	out := e.EstimateCosts(context.Background(), carparks, 1, model.DayTypeWeekday)

	assert.Equal(t, 2, oracle.callCount())
	assert.NotNil(t, out[0].CalculatedCost)
	assert.NotNil(t, out[1].CalculatedCost)
	assert.Nil(t, out[2].CalculatedCost)
	assert.Equal(t, breakdownBeyondCap, out[2].CostBreakdown)
}

func TestEstimateCostsSkipsUnpriced(t *testing.T) {
	oracle := &fakeOracle{enabled: true}
	e := NewCostEstimator(oracle, 10, 2, testLogger())

	carparks := []model.Carpark{
		{CarparkID: "nopricing"},
		pricedCarpark("priced", "$1 per hour"),
	}
	out := e.EstimateCosts(context.Background(), carparks, 1, model.DayTypeWeekday)

	assert.Nil(t, out[0].CalculatedCost)
	assert.Equal(t, breakdownNoPricing, out[0].CostBreakdown)
	assert.NotNil(t, out[1].CalculatedCost)
	assert.Equal(t, 1, oracle.callCount())
}

func TestEstimateCostsDisabledOracle(t *testing.T) {
	oracle := &fakeOracle{enabled: false}
	e := NewCostEstimator(oracle, 10, 2, testLogger())

	carparks := []model.Carpark{pricedCarpark("a", "$1 per hour")}
	out := e.EstimateCosts(context.Background(), carparks, 1, model.DayTypeWeekday)

	assert.Nil(t, out[0].CalculatedCost)
	assert.Equal(t, breakdownUnavailable, out[0].CostBreakdown)
	assert.Equal(t, 0, oracle.callCount())
}

func TestEstimateCostsOracleFailureDegrades(t *testing.T) {
	oracle := &fakeOracle{enabled: true, err: errors.New("upstream timeout")}
	e := NewCostEstimator(oracle, 10, 2, testLogger())

	carparks := []model.Carpark{
		pricedCarpark("a", "$1 per hour"),
		pricedCarpark("b", "$2 per hour"),
	}
	out := e.EstimateCosts(context.Background(), carparks, 1, model.DayTypeWeekday)

	for _, cp := range out {
		assert.Nil(t, cp.CalculatedCost)
		assert.Equal(t, breakdownError, cp.CostBreakdown)
		assert.Equal(t, "upstream timeout", cp.AIExplanation)
	}
}

func TestEstimateCostsCacheHit(t *testing.T) {
	oracle := &fakeOracle{enabled: true}
	e := NewCostEstimator(oracle, 10, 2, testLogger())

	carparks := []model.Carpark{pricedCarpark("a", "$1 per hour")}
	first := e.EstimateCosts(context.Background(), carparks, 1, model.DayTypeWeekday)
	require.Equal(t, 1, oracle.callCount())
	assert.Equal(t, "computed by fake", first[0].AIExplanation)

	again := []model.Carpark{pricedCarpark("a", "$1 per hour")}
	second := e.EstimateCosts(context.Background(), again, 1, model.DayTypeWeekday)

	assert.Equal(t, 1, oracle.callCount())
	require.NotNil(t, second[0].CalculatedCost)
	assert.Equal(t, *first[0].CalculatedCost, *second[0].CalculatedCost)
	assert.Equal(t, "computed by fake [cached]", second[0].AIExplanation)
}

func TestEstimateCostsCacheKeyedByTuple(t *testing.T) {
	oracle := &fakeOracle{enabled: true}
	e := NewCostEstimator(oracle, 10, 2, testLogger())

	ctx := context.Background()
	e.EstimateCosts(ctx, []model.Carpark{pricedCarpark("a", "$1 per hour")}, 1, model.DayTypeWeekday)
	e.EstimateCosts(ctx, []model.Carpark{pricedCarpark("a", "$1 per hour")}, 2, model.DayTypeWeekday)
	e.EstimateCosts(ctx, []model.Carpark{pricedCarpark("a", "$1 per hour")}, 1, model.DayTypeSunday)

	assert.Equal(t, 3, oracle.callCount())
}

func TestSelectRateString(t *testing.T) {
	pricing := &model.RateSet{
		WeekdayRate:           "$1/hr",
		WeekdayRateAfterHours: "$5 per entry",
		SaturdayRate:          "$2/hr",
	}

	assert.Equal(t, "$1/hr | After hours: $5 per entry", selectRateString(pricing, model.DayTypeWeekday))
	assert.Equal(t, "$2/hr", selectRateString(pricing, model.DayTypeSaturday))
	// Missing Sunday rate falls back to the weekday rate.
	assert.Equal(t, "$1/hr", selectRateString(pricing, model.DayTypeSunday))
}
