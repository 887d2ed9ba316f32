package handler

import (
	"errors"
	"net/http"
	"strconv"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/waypoint-labs/waypoint/backend/internal/domain"
)

type createTripRequest struct {
	Title        string                     `json:"title"`
	StartDate    *openapi_types.Date        `json:"start_date"`
	EndDate      *openapi_types.Date        `json:"end_date"`
	Notes        string                     `json:"notes"`
	Expenses     domain.Expenses            `json:"expenses"`
	Destinations []destinationCreateRequest `json:"destinations"`
}

type updateTripRequest struct {
	Title     *string             `json:"title"`
	StartDate *openapi_types.Date `json:"start_date"`
	EndDate   *openapi_types.Date `json:"end_date"`
	Notes     *string             `json:"notes"`
	Expenses  *domain.Expenses    `json:"expenses"`
}

// CreateTrip handles POST /api/trips. The owner is always the session user.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}

	var req createTripRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	trip := domain.Trip{
		Title:    req.Title,
		Notes:    req.Notes,
		Expenses: req.Expenses,
	}
	if req.StartDate != nil {
		sd := req.StartDate.Time
		trip.StartDate = &sd
	}
	if req.EndDate != nil {
		ed := req.EndDate.Time
		trip.EndDate = &ed
	}
	for _, d := range req.Destinations {
		trip.Destinations = append(trip.Destinations, domain.Destination{
			City:  d.City,
			State: d.State,
			Days:  d.Days,
		})
	}

	created, err := s.trips.Create(r.Context(), userID, trip)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /api/trips. The optional query parameters sort,
// maxExpense, and state apply the derived filter/sort view over the user's
// full trip snapshot; the stored records are never mutated.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}

	mode, ok := domain.ParseSortMode(r.URL.Query().Get("sort"))
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "unknown sort mode")
		return
	}

	trips, err := s.trips.List(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	trips = domain.SortTrips(trips, mode)

	if raw := r.URL.Query().Get("maxExpense"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "maxExpense must be a number")
			return
		}
		trips = domain.FilterByMaxExpense(trips, max)
	}

	if state := r.URL.Query().Get("state"); state != "" {
		trips = domain.FilterByState(trips, state)
	}

	data := make([]tripResponse, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, data)
}

// GetTrip handles GET /api/trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), userID, tripID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "trip not found")
			return
		}
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PATCH /api/trips/{tripID}. Merge semantics: only keys
// present in the body replace stored fields.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	var req updateTripRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	patch := domain.TripPatch{
		Title:    req.Title,
		Notes:    req.Notes,
		Expenses: req.Expenses,
	}
	if req.StartDate != nil {
		sd := req.StartDate.Time
		patch.StartDate = &sd
	}
	if req.EndDate != nil {
		ed := req.EndDate.Time
		patch.EndDate = &ed
	}

	updated, err := s.trips.Update(r.Context(), userID, tripID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "trip not found")
			return
		}
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /api/trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), userID, tripID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "trip not found")
			return
		}
		s.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
