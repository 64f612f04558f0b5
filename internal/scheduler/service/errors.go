package service

import (
	"errors"

	"github.com/sinclairt/schedulable/internal/recurrence"
	"github.com/sinclairt/schedulable/internal/scheduler/builder"
)

var (
	// ErrScheduleExists is returned when creating a schedule for an owner that already has one.
	ErrScheduleExists = errors.New("owner already has a schedule")

	// ErrInvalidRequest wraps malformed request parameters.
	ErrInvalidRequest = errors.New("invalid request")
)

// IsValidationError reports whether err was caused by bad input rather than a failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidRequest,
		builder.ErrMissingRequiredFields,
		builder.ErrUnknownProperty,
		builder.ErrUnknownCategory,
		builder.ErrInvalidActivityWindow,
		recurrence.ErrInvalidExpression,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
