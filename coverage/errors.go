package coverage

import "errors"

var (
	// ErrDegenerateInput is returned when the tour solver receives fewer
	// than two nodes or a malformed matrix. Plan never triggers it because
	// it stops early when fewer than two waypoints qualify.
	ErrDegenerateInput = errors.New("degenerate tour input")

	// ErrUnsolvableSegment is returned when no route exists between two
	// waypoints, which only happens for an empty mask or a waypoint that
	// lies outside the mask.
	ErrUnsolvableSegment = errors.New("no route between waypoints")

	// ErrInvalidGap is returned for a non-positive sampling spacing.
	ErrInvalidGap = errors.New("grid gap must be positive")

	// ErrInvalidMask is returned for a nil or malformed mask.
	ErrInvalidMask = errors.New("invalid occupancy mask")

	// ErrMaskTooLarge is returned when mask dimensions exceed a pixel
	// limit.
	ErrMaskTooLarge = errors.New("mask too large")
)
