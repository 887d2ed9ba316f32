package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waypoint-labs/waypoint/backend/internal/auth"
	"github.com/waypoint-labs/waypoint/backend/internal/domain"
	"github.com/waypoint-labs/waypoint/backend/internal/handler"
	"github.com/waypoint-labs/waypoint/backend/internal/middleware"
)

const testSecret = "handler-test-secret"

var testUserID = uuid.MustParse("b2a9e1a6-4f2c-41c6-9f53-8a0f6c2de111")

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create  func(ctx context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	getByID func(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	list    func(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	update  func(ctx context.Context, userID, tripID uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	delete  func(ctx context.Context, userID, tripID uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, userID, trip)
}
func (m *mockTripServicer) GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, userID, tripID)
}
func (m *mockTripServicer) List(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	return m.list(ctx, userID)
}
func (m *mockTripServicer) Update(ctx context.Context, userID, tripID uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	return m.update(ctx, userID, tripID, patch)
}
func (m *mockTripServicer) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	return m.delete(ctx, userID, tripID)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

// mockDestServicer is a test double for handler.DestinationServicer.
type mockDestServicer struct {
	add    func(ctx context.Context, userID, tripID uuid.UUID, dest domain.Destination) (domain.Trip, error)
	update func(ctx context.Context, userID, tripID, destID uuid.UUID, patch domain.DestinationPatch) (domain.Trip, error)
	remove func(ctx context.Context, userID, tripID, destID uuid.UUID) (domain.Trip, error)
}

func (m *mockDestServicer) Add(ctx context.Context, userID, tripID uuid.UUID, dest domain.Destination) (domain.Trip, error) {
	return m.add(ctx, userID, tripID, dest)
}
func (m *mockDestServicer) Update(ctx context.Context, userID, tripID, destID uuid.UUID, patch domain.DestinationPatch) (domain.Trip, error) {
	return m.update(ctx, userID, tripID, destID, patch)
}
func (m *mockDestServicer) Remove(ctx context.Context, userID, tripID, destID uuid.UUID) (domain.Trip, error) {
	return m.remove(ctx, userID, tripID, destID)
}

var _ handler.DestinationServicer = (*mockDestServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into its router,
// mirroring how main.go wires it in production.
func newHTTPHandler(trips handler.TripServicer, dests handler.DestinationServicer, users handler.UserServicer) http.Handler {
	srv := handler.NewServer(trips, dests, users, handler.SessionConfig{
		Secret: testSecret,
		Expiry: time.Hour,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return srv.Routes()
}

// authedRequest builds a request carrying a valid session cookie for testUserID.
func authedRequest(t *testing.T, method, target string, body io.Reader) *http.Request {
	t.Helper()
	token, err := auth.GenerateToken(testUserID, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, body)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	return req
}

func tripFixture() domain.Trip {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	return domain.Trip{
		ID:           uuid.New(),
		UserID:       testUserID,
		Title:        "Summer Tour",
		StartDate:    &start,
		EndDate:      &end,
		Notes:        "test notes",
		Expenses:     domain.Expenses{"lodging": 300.0},
		Destinations: []domain.Destination{},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

// ---- auth gating -----------------------------------------------------------

func TestTrips_RequireSession(t *testing.T) {
	h := newHTTPHandler(&mockTripServicer{}, &mockDestServicer{}, &mockUserServicer{})

	req := httptest.NewRequest(http.MethodGet, "/api/trips/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTrips_RejectsGarbageCookie(t *testing.T) {
	h := newHTTPHandler(&mockTripServicer{}, &mockDestServicer{}, &mockUserServicer{})

	req := httptest.NewRequest(http.MethodGet, "/api/trips/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "not-a-token"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---- CreateTrip ------------------------------------------------------------

func TestCreateTrip_Created(t *testing.T) {
	trips := &mockTripServicer{
		create: func(_ context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error) {
			assert.Equal(t, testUserID, userID, "owner must come from the session")
			created := tripFixture()
			created.Title = trip.Title
			return created, nil
		},
	}
	h := newHTTPHandler(trips, &mockDestServicer{}, &mockUserServicer{})

	body := jsonBody(t, map[string]any{
		"title":      "Summer Tour",
		"start_date": "2025-06-01",
		"expenses":   map[string]any{"lodging": 300},
	})
	req := authedRequest(t, http.MethodPost, "/api/trips/", body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]any
	decodeBody(t, rec, &got)
	assert.Equal(t, "Summer Tour", got["title"])
	assert.NotContains(t, got, "password_hash")
}

func TestCreateTrip_ValidationError(t *testing.T) {
	trips := &mockTripServicer{
		create: func(_ context.Context, _ uuid.UUID, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
		},
	}
	h := newHTTPHandler(trips, &mockDestServicer{}, &mockUserServicer{})

	req := authedRequest(t, http.MethodPost, "/api/trips/", jsonBody(t, map[string]any{"title": "  "}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var got map[string]map[string]string
	decodeBody(t, rec, &got)
	assert.Equal(t, "validation_error", got["error"]["code"])
	assert.Equal(t, "title is required", got["error"]["message"])
}

func TestCreateTrip_UnknownFieldRejected(t *testing.T) {
	h := newHTTPHandler(&mockTripServicer{}, &mockDestServicer{}, &mockUserServicer{})

	req := authedRequest(t, http.MethodPost, "/api/trips/", jsonBody(t, map[string]any{
		"title":   "Summer Tour",
		"ownerId": "someone-else", // owner is never accepted from the body
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTrip_EmptyBody(t *testing.T) {
	h := newHTTPHandler(&mockTripServicer{}, &mockDestServicer{}, &mockUserServicer{})

	req := authedRequest(t, http.MethodPost, "/api/trips/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- ListTrips -------------------------------------------------------------

func TestListTrips_AppliesSortAndFilters(t *testing.T) {
	cheap := tripFixture()
	cheap.Title = "cheap"
	cheap.Expenses = domain.Expenses{"misc": 10.0}
	pricey := tripFixture()
	pricey.Title = "pricey"
	pricey.Expenses = domain.Expenses{"misc": 500.0}
	mid := tripFixture()
	mid.Title = "mid"
	mid.Expenses = domain.Expenses{"misc": 50.0}

	trips := &mockTripServicer{
		list: func(_ context.Context, _ uuid.UUID) ([]domain.Trip, error) {
			return []domain.Trip{cheap, pricey, mid}, nil
		},
	}
	h := newHTTPHandler(trips, &mockDestServicer{}, &mockUserServicer{})

	req := authedRequest(t, http.MethodGet, "/api/trips/?sort=highestExpense&maxExpense=100", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	decodeBody(t, rec, &got)
	require.Len(t, got, 2)
	assert.Equal(t, "mid", got[0]["title"])
	assert.Equal(t, "cheap", got[1]["title"])
}

func TestListTrips_UnknownSortMode(t *testing.T) {
	h := newHTTPHandler(&mockTripServicer{}, &mockDestServicer{}, &mockUserServicer{})

	req := authedRequest(t, http.MethodGet, "/api/trips/?sort=cheapest", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTrips_BadMaxExpense(t *testing.T) {
	trips := &mockTripServicer{
		list: func(_ context.Context, _ uuid.UUID) ([]domain.Trip, error) { return nil, nil },
	}
	h := newHTTPHandler(trips, &mockDestServicer{}, &mockUserServicer{})

	req := authedRequest(t, http.MethodGet, "/api/trips/?maxExpense=lots", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- GetTrip ---------------------------------------------------------------

func TestGetTrip_OK(t *testing.T) {
	fixture := tripFixture()
	trips := &mockTripServicer{
		getByID: func(_ context.Context, _, tripID uuid.UUID) (domain.Trip, error) {
			assert.Equal(t, fixture.ID, tripID)
			return fixture, nil
		},
	}
	h := newHTTPHandler(trips, &mockDestServicer{}, &mockUserServicer{})

	req := authedRequest(t, http.MethodGet, "/api/trips/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	decodeBody(t, rec, &got)
	assert.Equal(t, "Summer Tour", got["title"])
	assert.Equal(t, "2025-06-01", got["start_date"])
}

func TestGetTrip_NotFound(t *testing.T) {
	trips := &mockTripServicer{
		getByID: func(_ context.Context, _, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	h := newHTTPHandler(trips, &mockDestServicer{}, &mockUserServicer{})

	req := authedRequest(t, http.MethodGet, "/api/trips/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTrip_MalformedID(t *testing.T) {
	h := newHTTPHandler(&mockTripServicer{}, &mockDestServicer{}, &mockUserServicer{})

	req := authedRequest(t, http.MethodGet, "/api/trips/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- UpdateTrip ------------------------------------------------------------

func TestUpdateTrip_PassesPatch(t *testing.T) {
	fixture := tripFixture()
	trips := &mockTripServicer{
		update: func(_ context.Context, _, _ uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
			require.NotNil(t, patch.Title)
			assert.Equal(t, "Renamed", *patch.Title)
			assert.Nil(t, patch.Notes, "omitted keys must not appear in the patch")
			assert.Nil(t, patch.Expenses)
			updated := fixture
			updated.Title = *patch.Title
			return updated, nil
		},
	}
	h := newHTTPHandler(trips, &mockDestServicer{}, &mockUserServicer{})

	body := jsonBody(t, map[string]any{"title": "Renamed"})
	req := authedRequest(t, http.MethodPatch, "/api/trips/"+fixture.ID.String(), body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateTrip_NotFound(t *testing.T) {
	trips := &mockTripServicer{
		update: func(_ context.Context, _, _ uuid.UUID, _ domain.TripPatch) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	h := newHTTPHandler(trips, &mockDestServicer{}, &mockUserServicer{})

	body := jsonBody(t, map[string]any{"title": "Renamed"})
	req := authedRequest(t, http.MethodPatch, "/api/trips/"+uuid.NewString(), body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- DeleteTrip ------------------------------------------------------------

func TestDeleteTrip_NoContent(t *testing.T) {
	trips := &mockTripServicer{
		delete: func(_ context.Context, _, _ uuid.UUID) error { return nil },
	}
	h := newHTTPHandler(trips, &mockDestServicer{}, &mockUserServicer{})

	req := authedRequest(t, http.MethodDelete, "/api/trips/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteTrip_NotFound(t *testing.T) {
	trips := &mockTripServicer{
		delete: func(_ context.Context, _, _ uuid.UUID) error { return domain.ErrNotFound },
	}
	h := newHTTPHandler(trips, &mockDestServicer{}, &mockUserServicer{})

	req := authedRequest(t, http.MethodDelete, "/api/trips/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
