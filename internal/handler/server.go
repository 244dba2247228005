// Package handler implements the HTTP transport adapter for the trips
// service. Handlers are methods on Server, split into domain-specific files,
// and are mounted on a chi router via Routes.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"trips-service/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or message bus.
type TripServicer interface {
	Create(ctx context.Context, dto *domain.TripCreate) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Trip, error)
	Update(ctx context.Context, id uuid.UUID, dto *domain.TripUpdate) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Server holds the handlers' dependencies.
type Server struct {
	trips TripServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer) *Server {
	return &Server{trips: trips}
}

// Routes returns a router exposing the full API surface. No auth is applied
// here — main wires the bearer-token middleware around TripRoutes so the
// health endpoint stays open.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Mount("/trips", s.TripRoutes())
	return r
}

// TripRoutes returns the /trips subrouter, relative to its mount point.
func (s *Server) TripRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", s.CreateTrip)
	r.Get("/", s.ListTripsByEmail)
	r.Get("/{id}", s.GetTrip)
	r.Put("/{id}", s.UpdateTrip)
	r.Delete("/{id}", s.DeleteTrip)
	return r
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
