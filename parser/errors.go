package parser

import "errors"

// Sentinel errors returned (wrapped) by the resolvers. Match with
// errors.Is.
var (
	// ErrNoComponents means the input contained no recognizable date or
	// time component at all.
	ErrNoComponents = errors.New("no date or time components found")

	// ErrInvalidNumeric means a numeric value was out of range for its
	// component, or the date tokens could not form a consistent
	// year/month/day assignment (e.g. two 4-digit tokens in one date).
	ErrInvalidNumeric = errors.New("ambiguous or out-of-range numeric value")

	// ErrUnknownToken means non-fuzzy parsing encountered input it could
	// not attribute to any component.
	ErrUnknownToken = errors.New("unrecognized token")

	// ErrMalformedISO means no ISO 8601 production matched the input, or
	// a valid match was followed by trailing non-whitespace.
	ErrMalformedISO = errors.New("malformed ISO 8601 string")

	// ErrInvalidWeekDate means an ISO week date had a week or day-of-week
	// number out of range.
	ErrInvalidWeekDate = errors.New("invalid ISO week date")
)
