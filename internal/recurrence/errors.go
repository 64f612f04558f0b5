package recurrence

import "errors"

var (
	// ErrInvalidExpression is returned when an expression cannot be parsed or
	// cannot represent any real calendar date.
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrNoOccurrence is returned when the search horizon is exhausted without a match,
	// e.g. an adhoc schedule whose date has already passed.
	ErrNoOccurrence = errors.New("no occurrence within search horizon")
)
