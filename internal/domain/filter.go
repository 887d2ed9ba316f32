package domain

import "sort"

// SortMode selects the ordering applied by SortTrips.
type SortMode string

const (
	SortNone           SortMode = "none"
	SortLatest         SortMode = "latest"         // newest start date first
	SortEarliest       SortMode = "earliest"       // oldest start date first
	SortHighestExpense SortMode = "highestExpense" // largest total spend first
	SortLowestExpense  SortMode = "lowestExpense"  // smallest total spend first
)

// ParseSortMode maps a query-string value to a SortMode.
// Empty input means no sorting; unknown values are reported to the caller.
func ParseSortMode(s string) (SortMode, bool) {
	switch SortMode(s) {
	case "", SortNone:
		return SortNone, true
	case SortLatest, SortEarliest, SortHighestExpense, SortLowestExpense:
		return SortMode(s), true
	default:
		return SortNone, false
	}
}

// SortTrips returns a new slice ordered by the given mode. The input slice
// is never mutated. Sorting is stable, so ties keep their prior order.
// Trips without a start date sort after dated trips in both date modes.
func SortTrips(trips []Trip, mode SortMode) []Trip {
	out := make([]Trip, len(trips))
	copy(out, trips)

	switch mode {
	case SortLatest:
		sort.SliceStable(out, func(i, j int) bool {
			return startDateGreater(out[i], out[j])
		})
	case SortEarliest:
		sort.SliceStable(out, func(i, j int) bool {
			return startDateLess(out[i], out[j])
		})
	case SortHighestExpense:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].TotalExpense() > out[j].TotalExpense()
		})
	case SortLowestExpense:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].TotalExpense() < out[j].TotalExpense()
		})
	}
	return out
}

// startDateLess reports whether a starts strictly before b.
// A nil start date is treated as later than any concrete date.
func startDateLess(a, b Trip) bool {
	switch {
	case a.StartDate == nil:
		return false
	case b.StartDate == nil:
		return true
	default:
		return a.StartDate.Before(*b.StartDate)
	}
}

// startDateGreater reports whether a starts strictly after b. As with
// startDateLess, a nil start date orders after any concrete date.
func startDateGreater(a, b Trip) bool {
	switch {
	case a.StartDate == nil:
		return false
	case b.StartDate == nil:
		return true
	default:
		return a.StartDate.After(*b.StartDate)
	}
}

// FilterByMaxExpense keeps trips whose total spend is at most max (inclusive),
// preserving the order of the input.
func FilterByMaxExpense(trips []Trip, max float64) []Trip {
	out := make([]Trip, 0, len(trips))
	for _, t := range trips {
		if t.TotalExpense() <= max {
			out = append(out, t)
		}
	}
	return out
}

// FilterByState keeps trips with at least one destination in the given
// state, preserving the order of the input.
func FilterByState(trips []Trip, state string) []Trip {
	out := make([]Trip, 0, len(trips))
	for _, t := range trips {
		for _, d := range t.Destinations {
			if d.State == state {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
