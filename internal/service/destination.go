package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/waypoint-labs/waypoint/backend/internal/domain"
	"github.com/waypoint-labs/waypoint/backend/internal/geo"
	"github.com/waypoint-labs/waypoint/backend/internal/repo"
)

// geoTimeout bounds a single geocoding lookup. The surrounding write never
// waits longer than this for coordinates.
const geoTimeout = 3 * time.Second

// DestinationService implements business logic for the destinations embedded
// in a trip. It shares the trip service's ownership rule: a trip that is not
// yours is a trip that does not exist.
//
// Geocoding is best-effort. A failed or slow lookup logs a warning and the
// destination is persisted with nil coordinates; the write itself never
// fails because of the geo collaborator.
type DestinationService struct {
	trips repo.TripRepo
	dests repo.DestinationRepo
	geo   geo.Lookuper
	log   *slog.Logger
}

// NewDestinationService constructs a DestinationService backed by the
// provided repos and geo lookup client.
func NewDestinationService(trips repo.TripRepo, dests repo.DestinationRepo, lookuper geo.Lookuper, log *slog.Logger) *DestinationService {
	return &DestinationService{trips: trips, dests: dests, geo: lookuper, log: log}
}

// Add appends a destination to the trip's sequence and returns the updated
// trip. Returns domain.ErrValidation for missing city/state and
// domain.ErrNotFound if the trip does not resolve for this user.
func (s *DestinationService) Add(ctx context.Context, userID, tripID uuid.UUID, dest domain.Destination) (domain.Trip, error) {
	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService.Add: %w", err)
	}

	dest.State = strings.ToUpper(strings.TrimSpace(dest.State))
	if err := validateDestination(dest); err != nil {
		return domain.Trip{}, err
	}

	dest.TripID = trip.ID
	s.geocode(ctx, &dest)

	if _, err := s.dests.Create(ctx, dest); err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService.Add: %w", err)
	}
	if err := s.trips.Touch(ctx, trip.ID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService.Add: %w", err)
	}

	return s.assemble(ctx, trip.ID)
}

// Update applies a partial update to one destination, leaving its siblings
// and their order untouched. A changed city or state re-triggers the
// best-effort geocoding lookup.
// Returns domain.ErrNotFound if the trip or destination does not resolve.
func (s *DestinationService) Update(ctx context.Context, userID, tripID, destID uuid.UUID, patch domain.DestinationPatch) (domain.Trip, error) {
	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService.Update: %w", err)
	}

	dest, err := s.dests.GetByID(ctx, trip.ID, destID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService.Update: %w", err)
	}

	placeChanged := false
	if patch.City != nil {
		dest.City = *patch.City
		placeChanged = true
	}
	if patch.State != nil {
		dest.State = strings.ToUpper(strings.TrimSpace(*patch.State))
		placeChanged = true
	}
	if patch.Days != nil {
		dest.Days = patch.Days
	}
	if err := validateDestination(dest); err != nil {
		return domain.Trip{}, err
	}

	if placeChanged {
		dest.Latitude, dest.Longitude = nil, nil
		s.geocode(ctx, &dest)
	}

	if _, err := s.dests.Update(ctx, dest); err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService.Update: %w", err)
	}
	if err := s.trips.Touch(ctx, trip.ID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService.Update: %w", err)
	}

	return s.assemble(ctx, trip.ID)
}

// Remove deletes one destination and returns the updated trip.
// Returns domain.ErrNotFound if the trip or destination does not resolve.
func (s *DestinationService) Remove(ctx context.Context, userID, tripID, destID uuid.UUID) (domain.Trip, error) {
	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService.Remove: %w", err)
	}

	if err := s.dests.Delete(ctx, trip.ID, destID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService.Remove: %w", err)
	}
	if err := s.trips.Touch(ctx, trip.ID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService.Remove: %w", err)
	}

	return s.assemble(ctx, trip.ID)
}

// geocode fills in coordinates for dest from the lookup collaborator.
// Failures are logged and swallowed; dest keeps nil coordinates.
func (s *DestinationService) geocode(ctx context.Context, dest *domain.Destination) {
	lookupCtx, cancel := context.WithTimeout(ctx, geoTimeout)
	defer cancel()

	query := fmt.Sprintf("%s, %s", dest.City, dest.State)
	coords, err := s.geo.Lookup(lookupCtx, query)
	if err != nil {
		s.log.WarnContext(ctx, "geo lookup failed", "query", query, "error", err)
		return
	}
	dest.Latitude = &coords.Latitude
	dest.Longitude = &coords.Longitude
}

func (s *DestinationService) ownedTrip(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.UserID != userID {
		return domain.Trip{}, domain.ErrNotFound
	}
	return trip, nil
}

// assemble re-reads the trip with its destination sequence after a mutation,
// so callers always see the post-write state.
func (s *DestinationService) assemble(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService: reload trip: %w", err)
	}
	dests, err := s.dests.ListByTripID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.DestinationService: reload destinations: %w", err)
	}
	if dests == nil {
		dests = []domain.Destination{}
	}
	trip.Destinations = dests
	return trip, nil
}
