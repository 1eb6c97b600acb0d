// Package service implements the carpark discovery engine: source fusion,
// consolidation, alias-aware ranking, pricing resolution, and AI cost
// estimation.
package service

import (
	"strings"

	"carparkfinder/internal/model"
)

// nearMeSentinel is the search term the frontend sends for location-based
// browsing; it behaves like an empty search with distance sorting.
const nearMeSentinel = "near me"

// IsNearMe reports whether the term is the "near me" sentinel.
func IsNearMe(term string) bool {
	return strings.EqualFold(strings.TrimSpace(term), nearMeSentinel)
}

// Fuse combines the two normalized feeds into one ordered sequence.
//
// For browse queries (no search term, or the "near me" sentinel) the feeds
// are interleaved so the much larger housing feed does not bury the
// transport feed's results beyond any practical page limit. When a search
// term is present the feeds are simply concatenated: the ranking engine
// decides visible order, and fusion must not bias it.
//
// A feed that failed to fetch arrives as a nil slice and is treated as
// empty.
func Fuse(transport, housing []model.SlotRecord, searchTerm string, ratioA, ratioB int) []model.SlotRecord {
	term := strings.TrimSpace(searchTerm)
	if term != "" && !IsNearMe(term) {
		fused := make([]model.SlotRecord, 0, len(transport)+len(housing))
		fused = append(fused, transport...)
		fused = append(fused, housing...)
		return fused
	}
	return Interleave(transport, housing, ratioA, ratioB)
}

// Interleave alternates ratioA records from the first sequence with ratioB
// records from the second per round, preserving each source's internal
// order, until both are exhausted.
func Interleave(a, b []model.SlotRecord, ratioA, ratioB int) []model.SlotRecord {
	if ratioA <= 0 {
		ratioA = 1
	}
	if ratioB <= 0 {
		ratioB = 1
	}

	fused := make([]model.SlotRecord, 0, len(a)+len(b))
	ai, bi := 0, 0
	for ai < len(a) || bi < len(b) {
		for n := 0; n < ratioA && ai < len(a); n++ {
			fused = append(fused, a[ai])
			ai++
		}
		for n := 0; n < ratioB && bi < len(b); n++ {
			fused = append(fused, b[bi])
			bi++
		}
	}
	return fused
}
