// Package service contains the business logic for the trips service.
// Services validate inputs, enforce business rules, and orchestrate repo and
// message-bus calls. No SQL and no AMQP lives here — services depend on
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trips-service/internal/domain"
	"trips-service/internal/repo"
)

// TriggerPublisher publishes an enrichment trigger for a trip id.
// The message carries the id only; the consumer re-reads current trip state
// rather than trusting any payload.
type TriggerPublisher interface {
	PublishEnrichment(ctx context.Context, tripID uuid.UUID) error
}

// TripService implements create/read/update/delete for trips and hands off
// an enrichment trigger after every successful create or update.
type TripService struct {
	repo repo.TripRepo
	pub  TriggerPublisher
}

// NewTripService constructs a TripService backed by the provided repo and publisher.
func NewTripService(r repo.TripRepo, pub TriggerPublisher) *TripService {
	return &TripService{repo: r, pub: pub}
}

// Create validates dto, persists a new trip, and publishes an enrichment
// trigger for it. The destinations start out with country/locality unset;
// they are filled in asynchronously by the enrichment consumer.
//
// A publish failure is fatal to the whole operation: the record already
// exists, but the caller is told enrichment could not be scheduled and the
// returned error wraps domain.ErrPublish.
func (s *TripService) Create(ctx context.Context, dto *domain.TripCreate) (domain.Trip, error) {
	if err := validateCreate(dto); err != nil {
		return domain.Trip{}, err
	}

	trip := domain.Trip{
		StartTime:        *dto.StartTime,
		EndTime:          *dto.EndTime,
		StartDestination: domain.NewGeolocationData(*dto.StartDestinationCoordinates),
		FinalDestination: domain.NewGeolocationData(*dto.FinalDestinationCoordinates),
		DateCreated:      time.Now().UTC(),
		OwnerEmail:       *dto.OwnerEmail,
	}

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	if err := s.pub.PublishEnrichment(ctx, created.ID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w: %w", domain.ErrPublish, err)
	}

	return created, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// ListByEmail returns all trips owned by email, oldest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListByEmail(ctx context.Context, email string) ([]domain.Trip, error) {
	trips, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListByEmail: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Update merges the fields present on dto into the stored trip, persists the
// result, and publishes a fresh enrichment trigger. Fields omitted from dto
// are left unchanged; a changed destination has its country/locality reset
// and will be re-resolved asynchronously.
func (s *TripService) Update(ctx context.Context, id uuid.UUID, dto *domain.TripUpdate) (domain.Trip, error) {
	if id == uuid.Nil {
		return domain.Trip{}, fmt.Errorf("%w: trip id is required", domain.ErrValidation)
	}
	if dto == nil {
		return domain.Trip{}, fmt.Errorf("%w: request is required", domain.ErrValidation)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	merged := current.Apply(*dto)
	if err := validateUpdate(dto, merged); err != nil {
		return domain.Trip{}, err
	}

	updated, err := s.repo.Update(ctx, merged)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	if err := s.pub.PublishEnrichment(ctx, updated.ID); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w: %w", domain.ErrPublish, err)
	}

	return updated, nil
}

// Delete removes a trip by ID. No attempt is made to cancel an enrichment
// trigger already in flight for the id — the consumer drops triggers for
// missing trips on its own.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}
