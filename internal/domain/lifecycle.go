package domain

import (
	"fmt"
	"time"

	"github.com/yigit/campusprint/internal/pkg/apperrors"
)

// statusRank orders statuses along the pipeline. Requests only move forward.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusPrinting:  1,
	StatusCompleted: 2,
}

// Transition validates a status change requested by actor and returns the new status.
func Transition(current, requested Status, actor Role) (Status, error) {
	if !actor.IsAdmin() {
		return "", apperrors.NewForbiddenError("admin privileges required to update request status")
	}
	if !requested.Valid() {
		return "", apperrors.NewValidationError(apperrors.ErrInvalidStatus,
			fmt.Sprintf("status must be one of: pending, printing, completed (got %q)", requested))
	}
	if !current.Valid() {
		return "", fmt.Errorf("stored status %q is not recognised: %w", current, apperrors.ErrInvalidStatus)
	}
	if statusRank[requested] <= statusRank[current] {
		return "", apperrors.NewValidationError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move request from %s to %s", current, requested))
	}
	return requested, nil
}

// NextUpdatedAt returns the timestamp to store after a transition. The result
// is always strictly after previous at database (microsecond) precision.
func NextUpdatedAt(previous, now time.Time) time.Time {
	next := now.UTC().Truncate(time.Microsecond)
	floor := previous.UTC().Truncate(time.Microsecond)
	if !next.After(floor) {
		next = floor.Add(time.Microsecond)
	}
	return next
}
