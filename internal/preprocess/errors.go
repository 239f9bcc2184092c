package preprocess

import "errors"

var (
	// ErrInvalidWindow is returned for a filter window that is not a positive odd size.
	ErrInvalidWindow = errors.New("preprocess: window size must be positive and odd")

	// ErrUnknownOperation is returned for an unrecognized filter or morphology operation.
	ErrUnknownOperation = errors.New("preprocess: unknown operation")

	// ErrInvalidRange is returned when a stretch target range is inverted.
	ErrInvalidRange = errors.New("preprocess: bottom must not exceed top")
)
