// Package repo contains all database access logic for the trips service.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"trips-service/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for trips. The service layer
// and the enrichment consumer depend on this interface, not the concrete
// Postgres implementation, so both can be unit-tested with mocks.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with the
	// DB-generated id populated.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByEmail returns all trips owned by the given email, oldest first.
	// A missing email matches nothing and yields an empty result, not an error.
	ListByEmail(ctx context.Context, email string) ([]domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip and returns
	// the updated record. Returns domain.ErrNotFound if the trip is gone —
	// callers that race with deletion rely on this.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListUnenriched returns trips created before cutoff whose destinations
	// both remain unresolved. Used by the reconciliation sweep to re-publish
	// triggers that may have been lost between save and publish.
	ListUnenriched(ctx context.Context, cutoff time.Time) ([]domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, owner_email, start_time, end_time,
		start_latitude, start_longitude, start_country, start_locality,
		final_latitude, final_longitude, final_country, final_locality,
		date_created`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		INSERT INTO trips (owner_email, start_time, end_time,
			start_latitude, start_longitude, start_country, start_locality,
			final_latitude, final_longitude, final_country, final_locality,
			date_created)
		VALUES (@owner_email, @start_time, @end_time,
			@start_latitude, @start_longitude, @start_country, @start_locality,
			@final_latitude, @final_longitude, @final_country, @final_locality,
			@date_created)
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q, tripArgs(trip))
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByEmail returns all trips owned by email ordered by date_created ascending.
func (r *pgTripRepo) ListByEmail(ctx context.Context, email string) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE owner_email = @owner_email ORDER BY date_created`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_email": email})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByEmail: %w", err)
	}
	defer rows.Close()

	return collectTrips(rows, "repo.TripRepo.ListByEmail")
}

// Update overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	q := `
		UPDATE trips
		SET owner_email     = @owner_email,
		    start_time      = @start_time,
		    end_time        = @end_time,
		    start_latitude  = @start_latitude,
		    start_longitude = @start_longitude,
		    start_country   = @start_country,
		    start_locality  = @start_locality,
		    final_latitude  = @final_latitude,
		    final_longitude = @final_longitude,
		    final_country   = @final_country,
		    final_locality  = @final_locality
		WHERE id = @id
		RETURNING ` + tripColumns

	args := tripArgs(trip)
	args["id"] = trip.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// ListUnenriched returns trips older than cutoff with no resolved country on
// either destination.
func (r *pgTripRepo) ListUnenriched(ctx context.Context, cutoff time.Time) ([]domain.Trip, error) {
	q := `SELECT ` + tripColumns + `
		FROM trips
		WHERE start_country IS NULL AND final_country IS NULL AND date_created < @cutoff
		ORDER BY date_created`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"cutoff": cutoff})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListUnenriched: %w", err)
	}
	defer rows.Close()

	return collectTrips(rows, "repo.TripRepo.ListUnenriched")
}

// tripArgs maps a domain.Trip onto the named insert/update arguments.
// Unresolved country/locality are stored as NULL rather than empty strings.
func tripArgs(trip domain.Trip) pgx.NamedArgs {
	return pgx.NamedArgs{
		"owner_email":     trip.OwnerEmail,
		"start_time":      trip.StartTime,
		"end_time":        trip.EndTime,
		"start_latitude":  trip.StartDestination.Latitude,
		"start_longitude": trip.StartDestination.Longitude,
		"start_country":   textOrNil(trip.StartDestination.Country),
		"start_locality":  textOrNil(trip.StartDestination.Locality),
		"final_latitude":  trip.FinalDestination.Latitude,
		"final_longitude": trip.FinalDestination.Longitude,
		"final_country":   textOrNil(trip.FinalDestination.Country),
		"final_locality":  textOrNil(trip.FinalDestination.Locality),
		"date_created":    trip.DateCreated,
	}
}

func textOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID and nullable country/locality conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t  domain.Trip
		id pgtype.UUID

		startCountry, startLocality pgtype.Text
		finalCountry, finalLocality pgtype.Text
	)

	err := s.Scan(&id, &t.OwnerEmail, &t.StartTime, &t.EndTime,
		&t.StartDestination.Latitude, &t.StartDestination.Longitude, &startCountry, &startLocality,
		&t.FinalDestination.Latitude, &t.FinalDestination.Longitude, &finalCountry, &finalLocality,
		&t.DateCreated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDestination.Country = startCountry.String
	t.StartDestination.Locality = startLocality.String
	t.FinalDestination.Country = finalCountry.String
	t.FinalDestination.Locality = finalLocality.String

	return t, nil
}

// collectTrips drains rows into a slice, attributing errors to op.
func collectTrips(rows pgx.Rows, op string) ([]domain.Trip, error) {
	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return trips, nil
}
