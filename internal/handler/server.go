// Package handler implements the HTTP handlers for the Waypoint API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, destination.go, user.go, health.go) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/waypoint-labs/waypoint/backend/internal/domain"
	"github.com/waypoint-labs/waypoint/backend/internal/middleware"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, userID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	Update(ctx context.Context, userID, tripID uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	Delete(ctx context.Context, userID, tripID uuid.UUID) error
}

// DestinationServicer defines the destination sub-resource operations.
// Every mutation returns the full updated trip, which is what clients render.
type DestinationServicer interface {
	Add(ctx context.Context, userID, tripID uuid.UUID, dest domain.Destination) (domain.Trip, error)
	Update(ctx context.Context, userID, tripID, destID uuid.UUID, patch domain.DestinationPatch) (domain.Trip, error)
	Remove(ctx context.Context, userID, tripID, destID uuid.UUID) (domain.Trip, error)
}

// UserServicer defines the account operations the auth handlers depend on.
type UserServicer interface {
	Register(ctx context.Context, name, email, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, email *string) (domain.User, error)
	SetVisitedStates(ctx context.Context, id uuid.UUID, codes []string) (domain.User, error)
}

// SessionConfig carries the cookie/token settings the auth handlers need.
type SessionConfig struct {
	Secret        string
	Expiry        time.Duration
	SecureCookies bool
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	trips   TripServicer
	dests   DestinationServicer
	users   UserServicer
	session SessionConfig
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, dests DestinationServicer, users UserServicer, session SessionConfig, log *slog.Logger) *Server {
	return &Server{trips: trips, dests: dests, users: users, session: session, log: log}
}

// Routes builds the API router. Trip routes and the current-user routes sit
// behind the session middleware; login and registration additionally sit
// behind a per-IP rate limit.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRateLimiter(5, 10))
			r.Post("/register", s.Register)
			r.Post("/login", s.Login)
		})
		r.Post("/logout", s.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(s.session.Secret))
			r.Get("/me", s.Me)
			r.Patch("/me", s.UpdateMe)
			r.Get("/me/visited", s.GetVisitedStates)
			r.Put("/me/visited", s.PutVisitedStates)
		})
	})

	r.Route("/api/trips", func(r chi.Router) {
		r.Use(middleware.RequireSession(s.session.Secret))
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Patch("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)
			r.Post("/destinations", s.AddDestination)
			r.Patch("/destinations/{destID}", s.UpdateDestination)
			r.Delete("/destinations/{destID}", s.RemoveDestination)
		})
	})

	return r
}

// sessionUserID returns the identity set by the session middleware.
// Routes registered behind RequireSession always have one; the fallback
// guards against a route accidentally mounted outside the middleware.
func (s *Server) sessionUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return uuid.UUID{}, false
	}
	return id, true
}

// pathUUID parses a UUID path parameter, writing a 400 response on failure.
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid "+param)
		return uuid.UUID{}, false
	}
	return id, true
}
