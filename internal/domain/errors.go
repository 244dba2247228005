package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the referenced
// trip does not exist. Handlers map this to HTTP 404. Inside the enrichment
// consumer it marks the expected trip-deleted race and is not a failure.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (missing field, malformed email, end time before start time).
// Handlers map this to HTTP 400. Never retried.
var ErrValidation = errors.New("validation error")

// ErrGateway is returned when the external geocoding call fails at the
// transport or remote level. It is retryable inside the enrichment consumer
// and never propagates to the original create/update caller.
var ErrGateway = errors.New("geolocation gateway error")

// ErrPublish is returned when the enrichment trigger cannot be published at
// create/update time. It is fatal to the triggering request: the record is
// already persisted, but the caller must know enrichment was not scheduled.
// Handlers map this to HTTP 500.
var ErrPublish = errors.New("enrichment publish error")
