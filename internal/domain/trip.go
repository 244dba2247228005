// Package domain contains the core data types for the trips service.
// This package has no dependencies beyond uuid and is imported by every
// other internal package (repo, service, handler, rabbit).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the core tracked entity: a pair of geolocated destinations, a time
// window, and an owning email. Trip is a value type — every mutation builds a
// new Trip from the prior one, so an in-flight enrichment and a concurrent
// update never alias the same data.
type Trip struct {
	ID               uuid.UUID       `json:"id"`
	StartTime        time.Time       `json:"startTime"`
	EndTime          time.Time       `json:"endTime"`
	StartDestination GeolocationData `json:"startDestination"`
	FinalDestination GeolocationData `json:"finalDestination"`
	DateCreated      time.Time       `json:"dateCreated"` // set once at creation, immutable
	OwnerEmail       string          `json:"ownerEmail"`
}

// TripCreate carries the fields of a trip-creation request.
// All fields are pointers so validation can distinguish a missing field from
// a zero value and report the first violated rule.
type TripCreate struct {
	StartDestinationCoordinates *GeolocationCoordinates
	FinalDestinationCoordinates *GeolocationCoordinates
	OwnerEmail                  *string
	StartTime                   *time.Time
	EndTime                     *time.Time
}

// TripUpdate carries the fields of a partial trip update.
// Nil fields are left unchanged on the stored trip; a changed destination
// resets that destination's resolved country/locality.
type TripUpdate struct {
	StartDestinationCoordinates *GeolocationCoordinates
	FinalDestinationCoordinates *GeolocationCoordinates
	OwnerEmail                  *string
	StartTime                   *time.Time
	EndTime                     *time.Time
}

// Apply merges the set fields of u into a copy of t and returns the copy.
// ID and DateCreated are never touched. Supplying new coordinates for a
// destination discards its previously resolved country/locality, since the
// old resolution no longer describes the new point.
func (t Trip) Apply(u TripUpdate) Trip {
	out := t
	if u.StartDestinationCoordinates != nil {
		out.StartDestination = NewGeolocationData(*u.StartDestinationCoordinates)
	}
	if u.FinalDestinationCoordinates != nil {
		out.FinalDestination = NewGeolocationData(*u.FinalDestinationCoordinates)
	}
	if u.OwnerEmail != nil {
		out.OwnerEmail = *u.OwnerEmail
	}
	if u.StartTime != nil {
		out.StartTime = *u.StartTime
	}
	if u.EndTime != nil {
		out.EndTime = *u.EndTime
	}
	return out
}
