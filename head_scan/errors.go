package headscan

import "errors"

var (
	// ErrNilRenderer is returned when a nil renderer is passed.
	ErrNilRenderer = errors.New("renderer is nil")

	// ErrNilDetector is returned when a nil dense detector is passed.
	ErrNilDetector = errors.New("dense detector is nil")

	// ErrSweepBoundaryNotFound is returned when a full-revolution sweep never
	// observes a detection-loss boundary.
	ErrSweepBoundaryNotFound = errors.New("no detection boundary found within a full revolution")

	// ErrInvalidSweepBounds is returned when sampling is asked to cover an
	// empty or inverted azimuth interval.
	ErrInvalidSweepBounds = errors.New("invalid sweep bounds")
)
