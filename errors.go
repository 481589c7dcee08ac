package asciicam

import "errors"

var (
	// ErrInvalidGridWidth is returned when the requested grid width is not
	// a positive number of characters.
	ErrInvalidGridWidth = errors.New("grid width must be positive")

	// ErrImageTooSmall is returned when the source image cannot supply at
	// least one full cell for the requested grid width.
	ErrImageTooSmall = errors.New("image too small for grid width")

	// ErrInvalidBuffer is returned for nil buffers or buffers whose pixel
	// slice does not match their dimensions.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")

	// ErrUnknownRamp is returned by LookupRamp for names outside the
	// registry.
	ErrUnknownRamp = errors.New("unknown character ramp")

	// ErrEmptyRamp is returned when a ramp has no characters.
	ErrEmptyRamp = errors.New("character ramp is empty")
)
