package domain

import (
	"time"

	"github.com/google/uuid"
)

// Destination is a single stop within a trip. It never exists outside its
// trip, and is always addressed by its own ID rather than by array index,
// so edits and removals stay correct even when the client has reordered or
// filtered its local copy.
type Destination struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	City      string
	State     string // two-letter US state code, uppercase
	Days      *int   // length of stay; nil when not recorded
	Latitude  *float64
	Longitude *float64 // nil together with Latitude when geocoding failed
	Position  int      // insertion order within the trip
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DestinationPatch carries a partial update for a single destination.
// Nil fields are left untouched.
type DestinationPatch struct {
	City  *string
	State *string
	Days  *int
}

// VisitedStates returns the deduplicated set of destination state codes
// across all the given trips. Order follows first appearance.
func VisitedStates(trips []Trip) []string {
	seen := make(map[string]struct{})
	var states []string
	for _, t := range trips {
		for _, d := range t.Destinations {
			if d.State == "" {
				continue
			}
			if _, ok := seen[d.State]; ok {
				continue
			}
			seen[d.State] = struct{}{}
			states = append(states, d.State)
		}
	}
	return states
}
