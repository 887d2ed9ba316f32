package handler

import (
	"net/http"
	"time"

	"github.com/waypoint-labs/waypoint/backend/internal/auth"
	"github.com/waypoint-labs/waypoint/backend/internal/domain"
	"github.com/waypoint-labs/waypoint/backend/internal/middleware"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateMeRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

type visitedStatesRequest struct {
	VisitedStates *[]string `json:"visitedStates"`
}

// Register handles POST /api/auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": userToResponse(user)})
}

// Login handles POST /api/auth/login. On success a signed session token is
// set as an HttpOnly cookie; the body carries the user for the SPA to cache.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, s.session.Secret, s.session.Expiry)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.SetCookie(w, s.sessionCookie(token, s.session.Expiry))

	writeJSON(w, http.StatusOK, map[string]any{"user": userToResponse(user)})
}

// Logout handles POST /api/auth/logout by expiring the session cookie.
// Logging out an already-anonymous client is not an error.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.sessionCookie("", -time.Hour))
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": userToResponse(user)})
}

// UpdateMe handles PATCH /api/auth/me. Name is required; email is optional
// and collides with other accounts as a 409.
func (s *Server) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}

	var req updateMeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), userID, req.Name, req.Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": userToResponse(user)})
}

// GetVisitedStates handles GET /api/auth/me/visited. The response is the
// union of the manually tracked set and the states derived from trip
// destinations, so the map stays current even when the user never toggles
// a state by hand.
func (s *Server) GetVisitedStates(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	trips, err := s.trips.List(r.Context(), userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	codes := mergeStateCodes(user.VisitedStates, domain.VisitedStates(trips))
	writeJSON(w, http.StatusOK, map[string]any{"visitedStates": codes})
}

// mergeStateCodes unions two code lists, keeping first-appearance order.
// The result is never nil so it serializes as a JSON array.
func mergeStateCodes(manual, derived []string) []string {
	seen := make(map[string]struct{}, len(manual)+len(derived))
	out := make([]string, 0, len(manual)+len(derived))
	for _, list := range [][]string{manual, derived} {
		for _, code := range list {
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}
	return out
}

// PutVisitedStates handles PUT /api/auth/me/visited. The body must carry an
// array; a missing or null visitedStates key is a 400, matching the
// "not an array" rejection the map UI depends on.
func (s *Server) PutVisitedStates(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.sessionUserID(w, r)
	if !ok {
		return
	}

	var req visitedStatesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if req.VisitedStates == nil {
		writeError(w, http.StatusBadRequest, "validation_error", "visitedStates must be an array")
		return
	}

	user, err := s.users.SetVisitedStates(r.Context(), userID, *req.VisitedStates)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"visitedStates": userToResponse(user).VisitedStates})
}

// sessionCookie builds the session cookie. A non-positive maxAge expires it,
// which is how logout works.
func (s *Server) sessionCookie(token string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.session.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
