package service

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"carparkfinder/internal/model"
)

// Match priorities, lower wins. Score breaks ties within a priority.
const (
	priorityAliasExact       = 0 // alias expansion equals development name
	priorityPopularExact     = 1 // exact development match, popular location
	priorityPopularPrefix    = 2 // alias term is a prefix of a popular development
	priorityPopularContains  = 3 // alias term contained in a popular development
	priorityExact            = 4 // exact development match
	priorityPrefix           = 5 // development starts with term
	priorityContains         = 6 // term inside development name
	priorityWeak             = 7 // short substring, or match in area
	priorityID               = 8 // match in carpark identifier
	priorityNone             = 999
)

// shortTermLen is the term length at or below which a bare substring match
// is heavily penalized, so a fragment like "ion" does not rank "Zion Road"
// next to an intended match.
const shortTermLen = 3

// Ranker scores carparks against alias-expanded search terms using a tiered
// priority scheme and sorts by (priority ascending, score descending).
type Ranker struct {
	aliases *AliasTable
	logger  *logrus.Logger
}

// NewRanker creates a ranker backed by the given alias table.
func NewRanker(aliases *AliasTable, logger *logrus.Logger) *Ranker {
	return &Ranker{
		aliases: aliases,
		logger:  logger,
	}
}

type scoredSlot struct {
	priority int
	score    int
	slot     model.SlotRecord
}

// Rank filters and orders slot records by relevance to the search term. An
// empty or whitespace term is a no-op: the input order is returned
// unchanged. Records matching nowhere are excluded.
func (r *Ranker) Rank(slots []model.SlotRecord, searchTerm string) []model.SlotRecord {
	term := strings.TrimSpace(searchTerm)
	if term == "" {
		return slots
	}

	terms := r.aliases.Expand(term)
	r.logger.WithFields(logrus.Fields{
		"term":     term,
		"expanded": terms,
	}).Debug("Expanded search term")

	scored := make([]scoredSlot, 0, len(slots))
	for _, slot := range slots {
		priority, score := r.matchScore(slot, terms)
		if score > 0 {
			scored = append(scored, scoredSlot{priority: priority, score: score, slot: slot})
		}
	}

	// Stable: equal (priority, score) pairs keep their fusion-order position.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].priority != scored[j].priority {
			return scored[i].priority < scored[j].priority
		}
		return scored[i].score > scored[j].score
	})

	ranked := make([]model.SlotRecord, len(scored))
	for i, s := range scored {
		ranked[i] = s.slot
	}
	return ranked
}

// matchScore evaluates every expanded term against the record and keeps the
// best result: lowest priority, then highest score. The first term is the
// user's original input; the rest are alias expansions, which unlock the
// top tiers.
func (r *Ranker) matchScore(slot model.SlotRecord, terms []string) (int, int) {
	carparkID := strings.ToLower(slot.CarparkID)
	area := strings.ToLower(slot.Area)
	development := strings.ToLower(slot.Development)

	isPopular := r.aliases.IsPopular(slot.Development)

	bestPriority := priorityNone
	bestScore := 0

	for i, term := range terms {
		termLower := strings.ToLower(term)
		isAlias := i > 0

		var priority, score int
		switch {
		case isAlias && termLower == development:
			priority, score = priorityAliasExact, 10000
		case termLower == development && isPopular:
			priority, score = priorityPopularExact, 5000
		case isAlias && isPopular && strings.HasPrefix(development, termLower):
			priority, score = priorityPopularPrefix, 4000
		case isAlias && isPopular && strings.Contains(development, termLower):
			priority, score = priorityPopularContains, 3000
		case termLower == development:
			priority, score = priorityExact, 2000
		case strings.HasPrefix(development, termLower):
			priority, score = priorityPrefix, 1500
		case wholeWordMatch(development, termLower):
			if isPopular {
				priority, score = priorityPopularContains, 3000
			} else {
				priority, score = priorityContains, 1200
			}
		case strings.Contains(development, termLower):
			// Penalize short fragments buried inside longer words.
			if len(termLower) <= shortTermLen {
				priority, score = priorityWeak, 300
			} else {
				priority, score = priorityContains, 1000
			}
		case strings.Contains(area, termLower):
			priority, score = priorityWeak, 500
		case strings.Contains(carparkID, termLower):
			priority, score = priorityID, 300
		default:
			continue
		}

		if priority < bestPriority || (priority == bestPriority && score > bestScore) {
			bestPriority = priority
			bestScore = score
		}
	}

	if bestPriority == priorityNone {
		return priorityNone, 0
	}

	// Flat popularity bonus; never changes the priority tier.
	if isPopular {
		bestScore += 100
	}

	return bestPriority, bestScore
}

// wholeWordMatch reports whether term appears as a whole word in the
// development name, so "ion" matches "ion orchard" but not "zion road".
func wholeWordMatch(development, term string) bool {
	return strings.Contains(" "+development+" ", " "+term+" ") ||
		strings.HasPrefix(development, term+" ")
}
