package blob

import "errors"

var (
	// ErrUnsupportedKind is returned when an operator does not handle the
	// pixel kind of its input.
	ErrUnsupportedKind = errors.New("blob: unsupported pixel kind")

	// ErrLabelOverflow is returned when more than MaxLabels labels are needed.
	ErrLabelOverflow = errors.New("blob: more than 254 labels required")

	// ErrBlobNotFound is returned by metrics queried for a label with no pixels.
	ErrBlobNotFound = errors.New("blob: label not present")

	// ErrInvalidMoment is returned for negative moment orders.
	ErrInvalidMoment = errors.New("blob: moment order must be non-negative")

	// ErrNilImage is returned when src or dst is nil.
	ErrNilImage = errors.New("blob: nil image")
)
