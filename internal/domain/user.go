package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Email is stored trimmed and lowercased; the
// unique constraint in the database is therefore case-insensitive.
// PasswordHash is the PHC-encoded credential and must never be serialized
// outward — the handler layer owns the outbound representation and omits it.
type User struct {
	ID            uuid.UUID
	Name          string
	Email         string
	PasswordHash  string
	VisitedStates []string // two-letter codes, deduplicated, uppercase
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NormalizeEmail applies the canonical email form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeStateCodes uppercases and deduplicates a list of state codes,
// preserving first-appearance order. Entries that are not exactly two
// letters are dropped.
func NormalizeStateCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if len(c) != 2 {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
