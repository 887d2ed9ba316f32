package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/waypoint-labs/waypoint/backend/internal/auth"
	"github.com/waypoint-labs/waypoint/backend/internal/domain"
	"github.com/waypoint-labs/waypoint/backend/internal/repo"
)

// minPasswordLength is the shortest password accepted at registration.
const minPasswordLength = 6

// UserService implements account registration, credential verification, and
// profile management. Session token issuing lives in the handler layer; this
// service only decides whether a set of credentials identifies a user.
type UserService struct {
	users repo.UserRepo
}

// NewUserService constructs a UserService backed by the provided UserRepo.
func NewUserService(users repo.UserRepo) *UserService {
	return &UserService{users: users}
}

// Register creates a new account. The email is normalized (trimmed,
// lowercased) before storage, so duplicate checks are case-insensitive.
// Returns domain.ErrValidation for missing fields or a short password and
// domain.ErrConflict when the email is already registered.
func (s *UserService) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)

	switch {
	case name == "":
		return domain.User{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	case email == "" || !strings.Contains(email, "@"):
		return domain.User{}, fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	case len(password) < minPasswordLength:
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Register: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		VisitedStates: []string{},
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Register: %w", err)
	}
	return user, nil
}

// Login verifies email/password credentials.
// Unknown email and wrong password both return domain.ErrUnauthorized so the
// response cannot be used to probe which emails are registered.
func (s *UserService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, fmt.Errorf("service.UserService.Login: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return domain.User{}, domain.ErrUnauthorized
	}
	return user, nil
}

// GetByID returns the user for a verified session identity.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.GetByID: %w", err)
	}
	return user, nil
}

// UpdateProfile changes the user's display name and, optionally, email.
// Name is required; a nil email leaves the stored email unchanged.
// Returns domain.ErrConflict if the new email belongs to another account.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, name string, email *string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.UpdateProfile: %w", err)
	}

	user.Name = name
	if email != nil {
		normalized := domain.NormalizeEmail(*email)
		if normalized == "" || !strings.Contains(normalized, "@") {
			return domain.User{}, fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
		}
		user.Email = normalized
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.UpdateProfile: %w", err)
	}
	return updated, nil
}

// SetVisitedStates replaces the user's visited-state set. Codes are
// uppercased and deduplicated; entries that are not two letters are dropped.
func (s *UserService) SetVisitedStates(ctx context.Context, id uuid.UUID, codes []string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.SetVisitedStates: %w", err)
	}

	user.VisitedStates = domain.NormalizeStateCodes(codes)

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.SetVisitedStates: %w", err)
	}
	return updated, nil
}
