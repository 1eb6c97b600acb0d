package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"carparkfinder/internal/model"
)

// Breakdown strings for estimates that never reach the oracle.
const (
	breakdownNoPricing   = "Pricing data unavailable"
	breakdownBeyondCap   = "Not calculated (beyond top results)"
	breakdownNoRate      = "No rate information for this day"
	breakdownError       = "Calculation error"
	breakdownUnavailable = "AI service unavailable"
)

// CostEstimator dispatches rate text to the cost oracle for the leading
// candidates of a ranked carpark list, with bounded concurrency and a
// process-lifetime memo cache. Rate strings are effectively static data, so
// cached estimates never expire.
type CostEstimator struct {
	oracle       CostOracle
	maxCalculate int
	workers      int
	logger       *logrus.Logger

	mu    sync.Mutex
	cache map[string]model.CostEstimate
}

// NewCostEstimator creates an estimator. maxCalculate caps how many leading
// candidates are sent to the oracle per batch; workers bounds concurrency.
func NewCostEstimator(oracle CostOracle, maxCalculate, workers int, logger *logrus.Logger) *CostEstimator {
	if maxCalculate <= 0 {
		maxCalculate = 10
	}
	if workers <= 0 {
		workers = 5
	}
	return &CostEstimator{
		oracle:       oracle,
		maxCalculate: maxCalculate,
		workers:      workers,
		logger:       logger,
		cache:        make(map[string]model.CostEstimate),
	}
}

// EstimateCosts annotates every carpark with a cost estimate for the given
// duration and day type. Only the leading maxCalculate carparks that have
// pricing are dispatched to the oracle; the rest are explicitly marked, not
// silently omitted. The input order is preserved in the output regardless
// of oracle completion order, and a failure on one carpark never aborts the
// batch.
func (e *CostEstimator) EstimateCosts(ctx context.Context, carparks []model.Carpark, durationHours float64, dayType model.DayType) []model.Carpark {
	type job struct {
		index   int
		carpark model.Carpark
	}

	var jobs []job
	for i := range carparks {
		cp := &carparks[i]
		switch {
		case !cp.HasPricing || cp.Pricing == nil:
			applyEstimate(cp, model.CostEstimate{CostBreakdown: breakdownNoPricing})
		case !e.oracle.IsEnabled():
			applyEstimate(cp, model.CostEstimate{CostBreakdown: breakdownUnavailable})
		case len(jobs) < e.maxCalculate:
			jobs = append(jobs, job{index: i, carpark: *cp})
		default:
			applyEstimate(cp, model.CostEstimate{CostBreakdown: breakdownBeyondCap})
		}
	}

	if len(jobs) == 0 {
		return carparks
	}

	// Fixed-size worker pool; results land in their owner's slot, so the
	// original candidate order survives out-of-order completion.
	jobCh := make(chan job)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				est := e.estimateOne(ctx, j.carpark, durationHours, dayType)
				applyEstimate(&carparks[j.index], est)
			}
		}()
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	return carparks
}

// estimateOne runs the per-carpark state machine: rate selection, cache
// lookup, oracle dispatch, and failure degradation.
func (e *CostEstimator) estimateOne(ctx context.Context, cp model.Carpark, durationHours float64, dayType model.DayType) model.CostEstimate {
	rateString := selectRateString(cp.Pricing, dayType)
	if rateString == "" {
		return model.CostEstimate{CostBreakdown: breakdownNoRate}
	}

	key := cacheKey(cp.CarparkID, rateString, durationHours, dayType)

	e.mu.Lock()
	cached, hit := e.cache[key]
	e.mu.Unlock()
	if hit {
		cached.FromCache = true
		if cached.AIExplanation != "" {
			cached.AIExplanation += " [cached]"
		} else {
			cached.AIExplanation = "[cached]"
		}
		e.logger.WithField("carpark_id", cp.CarparkID).Debug("Cost estimate served from cache")
		return cached
	}

	result, err := e.oracle.EstimateCost(ctx, OracleRequest{
		CarparkName:   cp.Development,
		RateString:    rateString,
		DurationHours: durationHours,
		DayType:       dayType,
	})
	if err != nil {
		e.logger.WithError(err).WithField("carpark_id", cp.CarparkID).Error("Cost calculation failed")
		return model.CostEstimate{
			CostBreakdown: breakdownError,
			AIExplanation: err.Error(),
		}
	}

	cost := result.TotalCost
	est := model.CostEstimate{
		CalculatedCost: &cost,
		CostBreakdown:  result.Breakdown,
		AIExplanation:  result.Explanation,
		Confidence:     result.Confidence,
	}

	e.mu.Lock()
	e.cache[key] = est
	e.mu.Unlock()

	return est
}

// selectRateString picks the rate text matching the day type, falling back
// to the weekday rate, and appends the after-hours variant on weekdays.
func selectRateString(pricing *model.RateSet, dayType model.DayType) string {
	switch dayType {
	case model.DayTypeSaturday:
		if pricing.SaturdayRate != "" {
			return pricing.SaturdayRate
		}
		return pricing.WeekdayRate
	case model.DayTypeSunday:
		if pricing.SundayRate != "" {
			return pricing.SundayRate
		}
		return pricing.WeekdayRate
	default:
		if pricing.WeekdayRateAfterHours != "" {
			return fmt.Sprintf("%s | After hours: %s", pricing.WeekdayRate, pricing.WeekdayRateAfterHours)
		}
		return pricing.WeekdayRate
	}
}

// cacheKey hashes the estimate tuple; identical tuples always share one
// cache slot across queries.
func cacheKey(carparkID, rateString string, durationHours float64, dayType model.DayType) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%s|%g|%s", carparkID, rateString, durationHours, dayType)))
	return hex.EncodeToString(sum[:])
}

func applyEstimate(cp *model.Carpark, est model.CostEstimate) {
	cp.CalculatedCost = est.CalculatedCost
	cp.CostBreakdown = est.CostBreakdown
	cp.AIExplanation = est.AIExplanation
	cp.AIConfidence = est.Confidence
}
