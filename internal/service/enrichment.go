package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"trips-service/internal/domain"
	"trips-service/internal/repo"
)

// Geolocator converts a coordinate pair into country/locality data.
// The three outcomes the consumer relies on:
//   - (info, true, nil): resolved
//   - (zero, false, nil): the remote service found no match — not an error
//   - (zero, false, err): transport/remote failure, err wraps domain.ErrGateway
type Geolocator interface {
	Resolve(ctx context.Context, coords domain.GeolocationCoordinates) (domain.GeolocationInfo, bool, error)
}

// EnrichmentService processes enrichment triggers: it re-fetches the trip,
// resolves both destinations independently, merges whatever succeeded, and
// persists the result. It is safe to run the same trigger any number of
// times — processing only ever adds resolved fields.
type EnrichmentService struct {
	repo repo.TripRepo
	geo  Geolocator
	log  *slog.Logger
}

// NewEnrichmentService constructs an EnrichmentService.
func NewEnrichmentService(r repo.TripRepo, geo Geolocator, log *slog.Logger) *EnrichmentService {
	return &EnrichmentService{repo: r, geo: geo, log: log}
}

// Process handles a single enrichment trigger for tripID.
//
// A nil return means the trigger is finished (persisted or deliberately
// dropped) and must be acknowledged. A non-nil return means the attempt
// failed in a way worth redelivering; the caller decides when the retry
// budget is spent. The fully-down gateway case returns an error wrapping
// domain.ErrGateway; a failure on just one destination does not block the
// other and is not retried — the unresolved side is reported as data at
// read time instead.
func (s *EnrichmentService) Process(ctx context.Context, tripID uuid.UUID) error {
	trip, err := s.repo.GetByID(ctx, tripID)
	if errors.Is(err, domain.ErrNotFound) {
		// Expected race: the trip was deleted after the trigger was queued.
		s.log.InfoContext(ctx, "trip already deleted, dropping enrichment trigger", "trip_id", tripID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("service.EnrichmentService.Process: %w", err)
	}

	startInfo, startOK, startErr := s.geo.Resolve(ctx, trip.StartDestination.Coordinates())
	finalInfo, finalOK, finalErr := s.geo.Resolve(ctx, trip.FinalDestination.Coordinates())

	if startErr != nil && finalErr != nil {
		// Fully-down case: nothing was resolved, let the broker redeliver.
		return fmt.Errorf("service.EnrichmentService.Process: trip %s: %w: start: %w, final: %w",
			tripID, domain.ErrGateway, startErr, finalErr)
	}
	if startErr != nil {
		s.log.ErrorContext(ctx, "start destination resolution failed", "trip_id", tripID, "error", startErr)
	}
	if finalErr != nil {
		s.log.ErrorContext(ctx, "final destination resolution failed", "trip_id", tripID, "error", finalErr)
	}

	// Re-fetch before merging so concurrent edits to other fields made while
	// the gateway calls were in flight are not clobbered.
	current, err := s.repo.GetByID(ctx, tripID)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.InfoContext(ctx, "trip deleted during enrichment, dropping trigger", "trip_id", tripID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("service.EnrichmentService.Process: %w", err)
	}

	merged := current
	if startOK {
		merged.StartDestination = merged.StartDestination.WithResolved(startInfo)
	}
	if finalOK {
		merged.FinalDestination = merged.FinalDestination.WithResolved(finalInfo)
	}

	if _, err := s.repo.Update(ctx, merged); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.InfoContext(ctx, "trip deleted during enrichment, dropping trigger", "trip_id", tripID)
			return nil
		}
		return fmt.Errorf("service.EnrichmentService.Process: %w", err)
	}

	s.log.InfoContext(ctx, "trip enriched",
		"trip_id", tripID,
		"start_resolved", startOK,
		"final_resolved", finalOK,
	)
	return nil
}
