package service

import "time"

// MaxEventDuration is the longest window a single event may span.
const MaxEventDuration = 24 * time.Hour

// ValidateEventTime rejects structurally invalid event windows before any
// lookup or mutation happens.
func ValidateEventTime(start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidRange
	}
	if end.Sub(start) > MaxEventDuration {
		return ErrDurationExceeded
	}
	return nil
}
