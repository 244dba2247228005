package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"trips-service/internal/domain"
)

// emailPattern accepts a dotted local part of letters, digits, underscores and
// hyphens, followed by a domain whose labels may not start with a hyphen and
// whose TLD is at least two letters. The 1–64 character local-part bound is
// enforced separately in validEmail because RE2 has no lookahead.
var emailPattern = regexp.MustCompile(`^[\p{L}\p{N}_-]+(\.[\p{L}\p{N}_-]+)*@[\p{L}\p{N}][\p{L}\p{N}-]*(\.[\p{L}\p{N}-]+)*\.\p{L}{2,}$`)

// validEmail reports whether email is well-formed.
func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return false
	}
	if n := utf8.RuneCountInString(email[:at]); n < 1 || n > 64 {
		return false
	}
	return emailPattern.MatchString(email)
}

// validateCreate checks a creation request against the business rules in
// order, so the first violated rule is the one reported.
func validateCreate(dto *domain.TripCreate) error {
	if dto == nil {
		return fmt.Errorf("%w: request is required", domain.ErrValidation)
	}
	if dto.StartDestinationCoordinates == nil {
		return fmt.Errorf("%w: start destination coordinates are required", domain.ErrValidation)
	}
	if dto.FinalDestinationCoordinates == nil {
		return fmt.Errorf("%w: final destination coordinates are required", domain.ErrValidation)
	}
	if dto.OwnerEmail == nil {
		return fmt.Errorf("%w: owner email is required", domain.ErrValidation)
	}
	if !validEmail(*dto.OwnerEmail) {
		return fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if dto.StartTime == nil {
		return fmt.Errorf("%w: start time is required", domain.ErrValidation)
	}
	if dto.EndTime == nil {
		return fmt.Errorf("%w: end time is required", domain.ErrValidation)
	}
	return validateTimeWindow(*dto.StartTime, *dto.EndTime)
}

// validateUpdate checks the fields present on a partial update, in the same
// rule order as creation. The time-window rule is checked against the merged
// trip so that changing only one of the two times cannot invert the window.
func validateUpdate(dto *domain.TripUpdate, merged domain.Trip) error {
	if dto.OwnerEmail != nil && !validEmail(*dto.OwnerEmail) {
		return fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	return validateTimeWindow(merged.StartTime, merged.EndTime)
}

// validateTimeWindow rejects an end time strictly before the start time.
// Equal times are allowed.
func validateTimeWindow(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%w: end time must not be before start time", domain.ErrValidation)
	}
	return nil
}
