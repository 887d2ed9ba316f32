package handler

import (
	"errors"
	"net/http"

	"github.com/waypoint-labs/waypoint/backend/internal/domain"
)

type destinationCreateRequest struct {
	City  string `json:"city"`
	State string `json:"state"`
	Days  *int   `json:"days"`
}

type destinationUpdateRequest struct {
	City  *string `json:"city"`
	State *string `json:"state"`
	Days  *int    `json:"days"`
}

// AddDestination handles POST /api/trips/{tripID}/destinations.
// Responds 201 with the full updated trip. Geocoding failure is invisible
// here: the destination simply arrives without coordinates.
func (s *Server) AddDestination(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	var req destinationCreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	trip, err := s.dests.Add(r.Context(), userID, tripID, domain.Destination{
		City:  req.City,
		State: req.State,
		Days:  req.Days,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "trip not found")
			return
		}
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tripToResponse(trip))
}

// UpdateDestination handles PATCH /api/trips/{tripID}/destinations/{destID}.
func (s *Server) UpdateDestination(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	destID, ok := s.pathUUID(w, r, "destID")
	if !ok {
		return
	}

	var req destinationUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	trip, err := s.dests.Update(r.Context(), userID, tripID, destID, domain.DestinationPatch{
		City:  req.City,
		State: req.State,
		Days:  req.Days,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "trip or destination not found")
			return
		}
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// RemoveDestination handles DELETE /api/trips/{tripID}/destinations/{destID}.
// Responds 200 with the updated trip rather than 204, because the client
// re-renders the trip from the response.
func (s *Server) RemoveDestination(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	destID, ok := s.pathUUID(w, r, "destID")
	if !ok {
		return
	}

	trip, err := s.dests.Remove(r.Context(), userID, tripID, destID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "trip or destination not found")
			return
		}
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(trip))
}
