package service

import (
	"context"
	"log/slog"
	"time"

	"trips-service/internal/repo"
)

// Reconciler periodically re-publishes enrichment triggers for trips that
// were persisted but never enriched. A crash between "save trip" and
// "publish trigger" can strand a trip with no pending message; there is no
// distributed transaction covering the two steps, so this sweep is the
// mitigation. It is opt-in (interval 0 disables it) because re-publishing is
// an operational decision: a long-unresolvable destination would otherwise
// be retried forever.
type Reconciler struct {
	repo     repo.TripRepo
	pub      TriggerPublisher
	log      *slog.Logger
	interval time.Duration
	minAge   time.Duration
}

// NewReconciler constructs a Reconciler that sweeps every interval for
// unenriched trips older than minAge.
func NewReconciler(r repo.TripRepo, pub TriggerPublisher, log *slog.Logger, interval, minAge time.Duration) *Reconciler {
	return &Reconciler{repo: r, pub: pub, log: log, interval: interval, minAge: minAge}
}

// Run sweeps on a ticker until ctx is cancelled. Sweep failures are logged
// and the next tick tries again; they never stop the loop.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep finds trips older than minAge with both destinations unresolved and
// re-publishes an enrichment trigger for each. Publishing is best-effort per
// trip: one failure does not abort the rest of the sweep.
func (r *Reconciler) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.minAge)

	trips, err := r.repo.ListUnenriched(ctx, cutoff)
	if err != nil {
		r.log.ErrorContext(ctx, "reconcile sweep failed", "error", err)
		return
	}
	if len(trips) == 0 {
		return
	}

	published := 0
	for _, trip := range trips {
		if err := r.pub.PublishEnrichment(ctx, trip.ID); err != nil {
			r.log.ErrorContext(ctx, "reconcile republish failed", "trip_id", trip.ID, "error", err)
			continue
		}
		published++
	}

	r.log.InfoContext(ctx, "reconcile sweep completed",
		"candidates", len(trips),
		"republished", published,
	)
}
