package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"trips-service/internal/domain"
)

// coordinatesRequest is the wire shape of a coordinate pair on create/update
// requests. Pointer fields let validation distinguish a missing value from zero.
type coordinatesRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// tripRequest is the shared wire shape of create and update request bodies.
// On update, absent fields leave the stored value unchanged.
type tripRequest struct {
	StartDestinationCoordinates *coordinatesRequest `json:"startDestinationCoordinates"`
	FinalDestinationCoordinates *coordinatesRequest `json:"finalDestinationCoordinates"`
	OwnerEmail                  *string             `json:"ownerEmail"`
	StartTime                   *time.Time          `json:"startTime"`
	EndTime                     *time.Time          `json:"endTime"`
}

// tripResponse is a trip plus its derived location errors. Unresolved
// destinations are surfaced in locationErrors rather than failing the read.
type tripResponse struct {
	ID               string                     `json:"id"`
	StartTime        time.Time                  `json:"startTime"`
	EndTime          time.Time                  `json:"endTime"`
	StartDestination domain.GeolocationData     `json:"startDestination"`
	FinalDestination domain.GeolocationData     `json:"finalDestination"`
	DateCreated      time.Time                  `json:"dateCreated"`
	OwnerEmail       string                     `json:"ownerEmail"`
	LocationErrors   []domain.LocationErrorInfo `json:"locationErrors,omitempty"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid request body"))
		return
	}

	created, err := s.trips.Create(r.Context(), &domain.TripCreate{
		StartDestinationCoordinates: toCoordinates(req.StartDestinationCoordinates),
		FinalDestinationCoordinates: toCoordinates(req.FinalDestinationCoordinates),
		OwnerEmail:                  req.OwnerEmail,
		StartTime:                   req.StartTime,
		EndTime:                     req.EndTime,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, validationBody(err))
			return
		}
		writeJSON(w, http.StatusInternalServerError, internalBody())
		return
	}

	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, notFoundBody("trip not found"))
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("trip not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, internalBody())
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// ListTripsByEmail handles GET /trips?email=.
// An unknown email yields an empty list, never 404.
func (s *Server) ListTripsByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, requestBody("email query parameter is required"))
		return
	}

	trips, err := s.trips.ListByEmail(r.Context(), email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, internalBody())
		return
	}

	out := make([]tripResponse, len(trips))
	for i, t := range trips {
		out[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateTrip handles PUT /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, notFoundBody("trip not found"))
		return
	}

	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid request body"))
		return
	}

	updated, err := s.trips.Update(r.Context(), id, &domain.TripUpdate{
		StartDestinationCoordinates: toCoordinates(req.StartDestinationCoordinates),
		FinalDestinationCoordinates: toCoordinates(req.FinalDestinationCoordinates),
		OwnerEmail:                  req.OwnerEmail,
		StartTime:                   req.StartTime,
		EndTime:                     req.EndTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			writeJSON(w, http.StatusBadRequest, validationBody(err))
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, notFoundBody("trip not found"))
		default:
			writeJSON(w, http.StatusInternalServerError, internalBody())
		}
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, notFoundBody("trip not found"))
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("trip not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, internalBody())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// toCoordinates converts a request coordinate pair into the domain type.
// A pair with a missing latitude or longitude counts as absent, so the
// validator reports it as a missing destination.
func toCoordinates(c *coordinatesRequest) *domain.GeolocationCoordinates {
	if c == nil || c.Latitude == nil || c.Longitude == nil {
		return nil
	}
	return &domain.GeolocationCoordinates{Latitude: *c.Latitude, Longitude: *c.Longitude}
}

// tripToResponse converts a domain.Trip into its wire shape, attaching the
// derived location errors.
func tripToResponse(t domain.Trip) tripResponse {
	return tripResponse{
		ID:               t.ID.String(),
		StartTime:        t.StartTime,
		EndTime:          t.EndTime,
		StartDestination: t.StartDestination,
		FinalDestination: t.FinalDestination,
		DateCreated:      t.DateCreated,
		OwnerEmail:       t.OwnerEmail,
		LocationErrors:   domain.LocationErrors(t),
	}
}
