// Package service contains the business logic for the Waypoint API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/waypoint-labs/waypoint/backend/internal/domain"
	"github.com/waypoint-labs/waypoint/backend/internal/repo"
)

// TripService implements business logic for Trip operations.
// Every method is scoped to the owning user: a trip belonging to someone
// else behaves exactly like a trip that does not exist.
type TripService struct {
	trips repo.TripRepo
	dests repo.DestinationRepo
}

// NewTripService constructs a TripService backed by the provided repos.
func NewTripService(trips repo.TripRepo, dests repo.DestinationRepo) *TripService {
	return &TripService{trips: trips, dests: dests}
}

// Create validates and persists a new trip for userID, including any
// initial destinations supplied with it.
// Returns domain.ErrValidation if the title is empty or whitespace-only.
func (s *TripService) Create(ctx context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	trip.Title = strings.TrimSpace(trip.Title)
	if trip.Title == "" {
		return domain.Trip{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	initial := trip.Destinations
	for i := range initial {
		initial[i].State = strings.ToUpper(strings.TrimSpace(initial[i].State))
		if err := validateDestination(initial[i]); err != nil {
			return domain.Trip{}, err
		}
	}

	trip.UserID = userID
	trip.Destinations = nil
	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	for _, d := range initial {
		d.TripID = created.ID
		if _, err := s.dests.Create(ctx, d); err != nil {
			return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
		}
	}

	return s.load(ctx, created)
}

// GetByID returns a single trip with its destinations.
// Returns domain.ErrNotFound when the trip does not exist or belongs to
// another user.
func (s *TripService) GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.owned(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return s.load(ctx, trip)
}

// List returns all of userID's trips with destinations attached, most
// recent start date first. Always returns a non-nil slice.
func (s *TripService) List(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	trips, err := s.trips.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}

	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		full, err := s.load(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("service.TripService.List: %w", err)
		}
		out = append(out, full)
	}
	return out, nil
}

// Update applies a partial update to a trip. Only non-nil patch fields
// replace stored values; the destination sequence is never touched here.
// Returns domain.ErrNotFound if the trip does not resolve for this user and
// domain.ErrValidation if a supplied title is empty.
func (s *TripService) Update(ctx context.Context, userID, tripID uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	trip, err := s.owned(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return domain.Trip{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
		}
		trip.Title = title
	}
	if patch.StartDate != nil {
		trip.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		trip.EndDate = patch.EndDate
	}
	if patch.Notes != nil {
		trip.Notes = *patch.Notes
	}
	if patch.Expenses != nil {
		trip.Expenses = *patch.Expenses
	}

	updated, err := s.trips.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return s.load(ctx, updated)
}

// Delete removes a trip and, through the database cascade, its destinations.
// Returns domain.ErrNotFound if the trip does not resolve for this user.
func (s *TripService) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, tripID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if err := s.trips.Delete(ctx, tripID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// owned fetches a trip and verifies userID owns it. Trips owned by others
// surface as domain.ErrNotFound so the API never confirms their existence.
func (s *TripService) owned(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.UserID != userID {
		return domain.Trip{}, domain.ErrNotFound
	}
	return trip, nil
}

// load attaches the trip's destinations in insertion order.
func (s *TripService) load(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	dests, err := s.dests.ListByTripID(ctx, trip.ID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("load destinations: %w", err)
	}
	if dests == nil {
		dests = []domain.Destination{}
	}
	trip.Destinations = dests
	return trip, nil
}

// validateDestination enforces the rules shared by trip-create, destination
// add, and destination update.
//   - City must be non-empty (whitespace-only is rejected).
//   - State must be a two-letter code.
//   - Days, when set, must be non-negative.
func validateDestination(d domain.Destination) error {
	if strings.TrimSpace(d.City) == "" {
		return fmt.Errorf("%w: city is required", domain.ErrValidation)
	}
	if len(d.State) != 2 || !isAlpha(d.State) {
		return fmt.Errorf("%w: state must be a two-letter code", domain.ErrValidation)
	}
	if d.Days != nil && *d.Days < 0 {
		return fmt.Errorf("%w: days must not be negative", domain.ErrValidation)
	}
	return nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
