// Package domain contains the core data types for the Waypoint travel log.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Trip is the top-level aggregate: one journey belonging to one user.
// Destinations are owned exclusively by their trip and are loaded alongside it.
type Trip struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	StartDate    *time.Time // nil when the trip is not yet scheduled
	EndDate      *time.Time
	Notes        string
	Expenses     Expenses
	Destinations []Destination
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TripPatch carries a partial update for a trip. Nil fields are left
// untouched by Update; only supplied fields replace stored values.
// ID and UserID are never patchable.
type TripPatch struct {
	Title     *string
	StartDate *time.Time
	EndDate   *time.Time
	Notes     *string
	Expenses  *Expenses
}

// Expenses is an open set of named spending buckets (lodging, food, misc, ...).
// Values arrive from JSON and may be numbers or numeric strings; anything
// that does not parse as a number counts as zero.
type Expenses map[string]any

// Total sums all buckets. Non-numeric values count as zero rather than
// failing, so one bad bucket never breaks trip totals.
func (e Expenses) Total() float64 {
	var total float64
	for _, v := range e {
		total += coerceAmount(v)
	}
	return total
}

// coerceAmount converts a single bucket value to float64.
// JSON decoding yields float64 for numbers and string for quoted values;
// the remaining cases cover values constructed directly in Go code.
func coerceAmount(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// TotalExpense returns the trip's total spend across all expense buckets.
func (t Trip) TotalExpense() float64 {
	return t.Expenses.Total()
}
