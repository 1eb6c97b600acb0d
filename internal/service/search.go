package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"carparkfinder/internal/geo"
	"carparkfinder/internal/model"
)

// Feed is an upstream availability source that yields normalized slot
// records.
type Feed interface {
	FetchCarparks(ctx context.Context) ([]model.SlotRecord, error)
}

// CarparkService runs the full discovery pipeline: fetch, fuse, rank,
// consolidate, locate, price, and estimate.
type CarparkService struct {
	transport   Feed
	housing     Feed
	ranker      *Ranker
	pricing     *PricingResolver
	estimator   *CostEstimator
	interleaveA int
	interleaveB int
	maxResults  int
	logger      *logrus.Logger
}

// NewCarparkService wires the pipeline together.
func NewCarparkService(
	transport Feed,
	housing Feed,
	ranker *Ranker,
	pricing *PricingResolver,
	estimator *CostEstimator,
	interleaveA, interleaveB, maxResults int,
	logger *logrus.Logger,
) *CarparkService {
	return &CarparkService{
		transport:   transport,
		housing:     housing,
		ranker:      ranker,
		pricing:     pricing,
		estimator:   estimator,
		interleaveA: interleaveA,
		interleaveB: interleaveB,
		maxResults:  maxResults,
		logger:      logger,
	}
}

// Search executes the single query operation. It always returns a
// well-formed (possibly empty) list: feed failures degrade to empty
// sources and oracle failures degrade to null costs.
func (s *CarparkService) Search(ctx context.Context, req *model.QueryRequest) (*model.QueryResponse, error) {
	startTime := time.Now()

	transportSlots, housingSlots := s.fetchFeeds(ctx)

	term := strings.TrimSpace(req.SearchTerm)
	sortByDistance := req.SortByDistance
	if IsNearMe(term) {
		// "near me" browses everything; distance ordering is implied.
		term = ""
		sortByDistance = true
	}

	fused := Fuse(transportSlots, housingSlots, term, s.interleaveA, s.interleaveB)

	if term != "" {
		fused = s.ranker.Rank(fused, term)
	}

	carparks := Consolidate(fused, s.logger)

	if req.UserLocation != nil {
		geo.AttachDistances(carparks, *req.UserLocation)
		if sortByDistance {
			geo.SortByDistance(carparks)
		}
	}

	if s.maxResults > 0 && len(carparks) > s.maxResults {
		carparks = carparks[:s.maxResults]
	}

	s.pricing.Apply(carparks)

	if req.DurationHours > 0 {
		dayType := req.DayType
		if !dayType.Valid() {
			dayType = model.DayTypeWeekday
		}
		carparks = s.estimator.EstimateCosts(ctx, carparks, req.DurationHours, dayType)
	}

	took := time.Since(startTime).Milliseconds()
	s.logger.WithFields(logrus.Fields{
		"term":    req.SearchTerm,
		"results": len(carparks),
		"took_ms": took,
	}).Info("Search completed")

	return &model.QueryResponse{
		QueryID: uuid.NewString(),
		Count:   len(carparks),
		TookMS:  took,
		Results: carparks,
	}, nil
}

// fetchFeeds queries both authorities concurrently. A failed feed is
// substituted with an empty sequence and logged; it never fails the query
// or poisons the other feed.
func (s *CarparkService) fetchFeeds(ctx context.Context) ([]model.SlotRecord, []model.SlotRecord) {
	var (
		wg             sync.WaitGroup
		transportSlots []model.SlotRecord
		housingSlots   []model.SlotRecord
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		slots, err := s.transport.FetchCarparks(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Transport feed fetch failed, continuing without it")
			return
		}
		transportSlots = slots
	}()
	go func() {
		defer wg.Done()
		slots, err := s.housing.FetchCarparks(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Housing feed fetch failed, continuing without it")
			return
		}
		housingSlots = slots
	}()
	wg.Wait()

	return transportSlots, housingSlots
}
