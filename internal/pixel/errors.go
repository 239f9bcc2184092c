package pixel

import "errors"

var (
	// ErrInvalidSize indicates non-positive dimensions or a data slice whose
	// length is not cols*rows.
	ErrInvalidSize = errors.New("pixel: image must have positive dimensions matching its data length")
	// ErrOutOfBounds indicates a coordinate outside the image extent.
	ErrOutOfBounds = errors.New("pixel: coordinate outside image bounds")
	// ErrSizeMismatch indicates two images that must share dimensions do not.
	ErrSizeMismatch = errors.New("pixel: source and destination dimensions differ")
)
