package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/waypoint-labs/waypoint/backend/internal/domain"
)

// decode reads a JSON request body into dst. Unknown fields are rejected so
// typos surface as 400s instead of silently dropped data.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return errors.New("malformed request body")
	}
	return nil
}

// --- wire representations ---------------------------------------------------
// Dates cross the wire as ISO-8601 date-only strings; openapi_types.Date
// handles the formatting on both directions.

type tripResponse struct {
	ID           uuid.UUID             `json:"id"`
	Title        string                `json:"title"`
	StartDate    *openapi_types.Date   `json:"start_date,omitempty"`
	EndDate      *openapi_types.Date   `json:"end_date,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	Expenses     domain.Expenses       `json:"expenses"`
	TotalExpense float64               `json:"total_expense"`
	Destinations []destinationResponse `json:"destinations"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type destinationResponse struct {
	ID        uuid.UUID `json:"id"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Days      *int      `json:"days,omitempty"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type userResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	VisitedStates []string  `json:"visited_states"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// tripToResponse converts a domain.Trip into its wire representation.
func tripToResponse(t domain.Trip) tripResponse {
	resp := tripResponse{
		ID:           t.ID,
		Title:        t.Title,
		Notes:        t.Notes,
		Expenses:     t.Expenses,
		TotalExpense: t.TotalExpense(),
		Destinations: make([]destinationResponse, len(t.Destinations)),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if resp.Expenses == nil {
		resp.Expenses = domain.Expenses{}
	}
	if t.StartDate != nil {
		sd := openapi_types.Date{Time: *t.StartDate}
		resp.StartDate = &sd
	}
	if t.EndDate != nil {
		ed := openapi_types.Date{Time: *t.EndDate}
		resp.EndDate = &ed
	}
	for i, d := range t.Destinations {
		resp.Destinations[i] = destinationResponse{
			ID:        d.ID,
			City:      d.City,
			State:     d.State,
			Days:      d.Days,
			Latitude:  d.Latitude,
			Longitude: d.Longitude,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		}
	}
	return resp
}

// userToResponse converts a domain.User into its wire representation.
// The password hash never appears here.
func userToResponse(u domain.User) userResponse {
	visited := u.VisitedStates
	if visited == nil {
		visited = []string{}
	}
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		VisitedStates: visited,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
