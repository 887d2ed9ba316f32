package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/waypoint-labs/waypoint/backend/internal/domain"
)

// DestinationRepo defines the persistence operations for Destinations.
// All operations are scoped by tripID so a destination can never be read or
// mutated through another trip. Each write is a single SQL statement over
// exactly one row, so sibling destinations are never rewritten and their
// order is preserved.
type DestinationRepo interface {
	// Create inserts a new destination at the end of the trip's sequence
	// and returns the persisted record.
	Create(ctx context.Context, dest domain.Destination) (domain.Destination, error)

	// GetByID retrieves a single destination by its UUID, scoped to tripID.
	// Returns domain.ErrNotFound if no such destination exists under that trip.
	GetByID(ctx context.Context, tripID, destID uuid.UUID) (domain.Destination, error)

	// ListByTripID returns all destinations for a trip in insertion order.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error)

	// Update overwrites the mutable fields of a destination, scoped to tripID.
	// Returns domain.ErrNotFound if no such destination exists under that trip.
	Update(ctx context.Context, dest domain.Destination) (domain.Destination, error)

	// Delete removes a destination by ID, scoped to tripID.
	// Returns domain.ErrNotFound if no such destination exists under that trip.
	Delete(ctx context.Context, tripID, destID uuid.UUID) error
}

// pgDestinationRepo is the Postgres implementation of DestinationRepo.
type pgDestinationRepo struct {
	db db
}

// NewDestinationRepo constructs a DestinationRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewDestinationRepo(db db) DestinationRepo {
	return &pgDestinationRepo{db: db}
}

const destColumns = `id, trip_id, city, state, days, latitude, longitude, position, created_at, updated_at`

func (r *pgDestinationRepo) Create(ctx context.Context, dest domain.Destination) (domain.Destination, error) {
	// position is assigned inside the INSERT so the append does not need a
	// separate MAX round trip. Concurrent appends to the same trip can still
	// observe the same MAX; nothing enforces uniqueness of (trip_id, position).
	const q = `
		INSERT INTO destinations (trip_id, city, state, days, latitude, longitude, position)
		VALUES (@trip_id, @city, @state, @days, @latitude, @longitude,
		        (SELECT COALESCE(MAX(position) + 1, 0) FROM destinations WHERE trip_id = @trip_id))
		RETURNING ` + destColumns

	args := pgx.NamedArgs{
		"trip_id":   dest.TripID,
		"city":      dest.City,
		"state":     dest.State,
		"days":      dest.Days,
		"latitude":  dest.Latitude,
		"longitude": dest.Longitude,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanDestination(row)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("repo.DestinationRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgDestinationRepo) GetByID(ctx context.Context, tripID, destID uuid.UUID) (domain.Destination, error) {
	const q = `SELECT ` + destColumns + ` FROM destinations WHERE trip_id = @trip_id AND id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": destID})
	result, err := scanDestination(row)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("repo.DestinationRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgDestinationRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error) {
	const q = `
		SELECT ` + destColumns + `
		FROM destinations
		WHERE trip_id = @trip_id
		ORDER BY position, created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.DestinationRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var dests []domain.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DestinationRepo.ListByTripID: scan: %w", err)
		}
		dests = append(dests, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DestinationRepo.ListByTripID: rows: %w", err)
	}

	return dests, nil
}

func (r *pgDestinationRepo) Update(ctx context.Context, dest domain.Destination) (domain.Destination, error) {
	const q = `
		UPDATE destinations
		SET city       = @city,
		    state      = @state,
		    days       = @days,
		    latitude   = @latitude,
		    longitude  = @longitude,
		    updated_at = now()
		WHERE trip_id = @trip_id AND id = @id
		RETURNING ` + destColumns

	args := pgx.NamedArgs{
		"id":        dest.ID,
		"trip_id":   dest.TripID,
		"city":      dest.City,
		"state":     dest.State,
		"days":      dest.Days,
		"latitude":  dest.Latitude,
		"longitude": dest.Longitude,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanDestination(row)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("repo.DestinationRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgDestinationRepo) Delete(ctx context.Context, tripID, destID uuid.UUID) error {
	const q = `DELETE FROM destinations WHERE trip_id = @trip_id AND id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": destID})
	if err != nil {
		return fmt.Errorf("repo.DestinationRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DestinationRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanDestination maps a single database row into a domain.Destination.
// state is char(2), which Postgres pads; pgx returns it as-is, so no trim is
// needed for two-letter codes.
func scanDestination(s scanner) (domain.Destination, error) {
	var (
		d      domain.Destination
		id     pgtype.UUID
		tripID pgtype.UUID
	)

	err := s.Scan(&id, &tripID, &d.City, &d.State, &d.Days, &d.Latitude, &d.Longitude, &d.Position, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Destination{}, domain.ErrNotFound
		}
		return domain.Destination{}, err
	}

	d.ID = uuid.UUID(id.Bytes)
	d.TripID = uuid.UUID(tripID.Bytes)
	return d, nil
}
