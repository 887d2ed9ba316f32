package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypoint-labs/waypoint/backend/internal/domain"
	"github.com/waypoint-labs/waypoint/backend/internal/geo"
	"github.com/waypoint-labs/waypoint/backend/internal/service"
)

// stubLookuper is a test double for geo.Lookuper.
type stubLookuper struct {
	coords geo.Coordinates
	err    error
}

func (s *stubLookuper) Lookup(_ context.Context, _ string) (geo.Coordinates, error) {
	return s.coords, s.err
}

var _ geo.Lookuper = (*stubLookuper)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newDestService wires a DestinationService around echo repos where the
// trip repo always resolves an owned trip.
func newDestService(lookuper geo.Lookuper) (*service.DestinationService, *mockTripRepo, *mockDestRepo) {
	trips, dests := echoRepos()
	trips.getByID = func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
		return domain.Trip{ID: id, UserID: testUserID, Title: "Road Trip"}, nil
	}
	trips.touch = func(_ context.Context, _ uuid.UUID) error { return nil }

	var stored []domain.Destination
	dests.create = func(_ context.Context, d domain.Destination) (domain.Destination, error) {
		d.ID = uuid.New()
		d.Position = len(stored)
		stored = append(stored, d)
		return d, nil
	}
	dests.listByTripID = func(_ context.Context, _ uuid.UUID) ([]domain.Destination, error) {
		return stored, nil
	}

	return service.NewDestinationService(trips, dests, lookuper, discardLogger()), trips, dests
}

func TestDestinationService_Add_GeocodesCity(t *testing.T) {
	lookuper := &stubLookuper{coords: geo.Coordinates{Latitude: 41.88, Longitude: -87.63}}
	svc, _, _ := newDestService(lookuper)

	trip, err := svc.Add(context.Background(), testUserID, uuid.New(), domain.Destination{
		City:  "Chicago",
		State: "IL",
	})

	require.NoError(t, err)
	require.Len(t, trip.Destinations, 1)
	d := trip.Destinations[0]
	require.NotNil(t, d.Latitude)
	assert.InDelta(t, 41.88, *d.Latitude, 0.001)
	require.NotNil(t, d.Longitude)
	assert.InDelta(t, -87.63, *d.Longitude, 0.001)
}

func TestDestinationService_Add_GeoFailureIsNonFatal(t *testing.T) {
	lookuper := &stubLookuper{err: errors.New("lookup service unavailable")}
	svc, _, _ := newDestService(lookuper)

	trip, err := svc.Add(context.Background(), testUserID, uuid.New(), domain.Destination{
		City:  "Chicago",
		State: "IL",
	})

	// The write succeeds; the destination just has no coordinates.
	require.NoError(t, err)
	require.Len(t, trip.Destinations, 1)
	assert.Nil(t, trip.Destinations[0].Latitude)
	assert.Nil(t, trip.Destinations[0].Longitude)
}

func TestDestinationService_Add_MissingCity(t *testing.T) {
	svc, _, _ := newDestService(&stubLookuper{})

	_, err := svc.Add(context.Background(), testUserID, uuid.New(), domain.Destination{
		City:  "  ",
		State: "IL",
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDestinationService_Add_BadStateCode(t *testing.T) {
	svc, _, _ := newDestService(&stubLookuper{})

	_, err := svc.Add(context.Background(), testUserID, uuid.New(), domain.Destination{
		City:  "Chicago",
		State: "Illinois",
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDestinationService_Add_NegativeDays(t *testing.T) {
	svc, _, _ := newDestService(&stubLookuper{})

	days := -1
	_, err := svc.Add(context.Background(), testUserID, uuid.New(), domain.Destination{
		City:  "Chicago",
		State: "IL",
		Days:  &days,
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDestinationService_Add_TripNotFound(t *testing.T) {
	svc, trips, _ := newDestService(&stubLookuper{})
	trips.getByID = func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
		return domain.Trip{}, domain.ErrNotFound
	}

	_, err := svc.Add(context.Background(), testUserID, uuid.New(), domain.Destination{
		City:  "Chicago",
		State: "IL",
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDestinationService_Update_MergesAndKeepsSiblings(t *testing.T) {
	svc, _, dests := newDestService(&stubLookuper{err: errors.New("down")})
	tripID := uuid.New()
	destID := uuid.New()

	days := 3
	existing := []domain.Destination{
		{ID: uuid.New(), TripID: tripID, City: "Reno", State: "NV", Position: 0},
		{ID: destID, TripID: tripID, City: "Austin", State: "TX", Days: &days, Position: 1},
		{ID: uuid.New(), TripID: tripID, City: "Boise", State: "ID", Position: 2},
	}
	dests.getByID = func(_ context.Context, _, id uuid.UUID) (domain.Destination, error) {
		for _, d := range existing {
			if d.ID == id {
				return d, nil
			}
		}
		return domain.Destination{}, domain.ErrNotFound
	}
	var saved domain.Destination
	dests.update = func(_ context.Context, d domain.Destination) (domain.Destination, error) {
		saved = d
		for i := range existing {
			if existing[i].ID == d.ID {
				existing[i] = d
			}
		}
		return d, nil
	}
	dests.listByTripID = func(_ context.Context, _ uuid.UUID) ([]domain.Destination, error) {
		return existing, nil
	}

	newDays := 5
	trip, err := svc.Update(context.Background(), testUserID, tripID, destID, domain.DestinationPatch{Days: &newDays})

	require.NoError(t, err)
	assert.Equal(t, "Austin", saved.City, "unsupplied fields stay untouched")
	require.NotNil(t, saved.Days)
	assert.Equal(t, 5, *saved.Days)

	// Sibling entries and their order are untouched.
	require.Len(t, trip.Destinations, 3)
	assert.Equal(t, "Reno", trip.Destinations[0].City)
	assert.Equal(t, "Boise", trip.Destinations[2].City)
}

func TestDestinationService_Update_PlaceChangeRegeodes(t *testing.T) {
	lookuper := &stubLookuper{coords: geo.Coordinates{Latitude: 30.27, Longitude: -97.74}}
	svc, _, dests := newDestService(lookuper)
	tripID := uuid.New()
	destID := uuid.New()

	oldLat, oldLon := 41.88, -87.63
	dests.getByID = func(_ context.Context, _, _ uuid.UUID) (domain.Destination, error) {
		return domain.Destination{
			ID: destID, TripID: tripID, City: "Chicago", State: "IL",
			Latitude: &oldLat, Longitude: &oldLon,
		}, nil
	}
	var saved domain.Destination
	dests.update = func(_ context.Context, d domain.Destination) (domain.Destination, error) {
		saved = d
		return d, nil
	}

	city := "Austin"
	state := "tx"
	_, err := svc.Update(context.Background(), testUserID, tripID, destID, domain.DestinationPatch{City: &city, State: &state})

	require.NoError(t, err)
	assert.Equal(t, "TX", saved.State)
	require.NotNil(t, saved.Latitude)
	assert.InDelta(t, 30.27, *saved.Latitude, 0.001)
}

func TestDestinationService_Update_DestinationNotFound(t *testing.T) {
	svc, _, dests := newDestService(&stubLookuper{})
	dests.getByID = func(_ context.Context, _, _ uuid.UUID) (domain.Destination, error) {
		return domain.Destination{}, domain.ErrNotFound
	}

	_, err := svc.Update(context.Background(), testUserID, uuid.New(), uuid.New(), domain.DestinationPatch{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDestinationService_Remove_OK(t *testing.T) {
	svc, _, dests := newDestService(&stubLookuper{})
	removed := false
	dests.delete = func(_ context.Context, _, _ uuid.UUID) error {
		removed = true
		return nil
	}
	dests.listByTripID = func(_ context.Context, _ uuid.UUID) ([]domain.Destination, error) {
		return nil, nil
	}

	trip, err := svc.Remove(context.Background(), testUserID, uuid.New(), uuid.New())

	require.NoError(t, err)
	assert.True(t, removed)
	assert.NotNil(t, trip.Destinations)
}

func TestDestinationService_Remove_NotFound(t *testing.T) {
	svc, _, dests := newDestService(&stubLookuper{})
	dests.delete = func(_ context.Context, _, _ uuid.UUID) error {
		return domain.ErrNotFound
	}

	_, err := svc.Remove(context.Background(), testUserID, uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
