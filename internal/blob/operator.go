package blob

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

const (
	// MaxLabels is the largest label id a one-byte label image can hold.
	MaxLabels = 254

	// sentinel marks a pixel that is a candidate but not yet labeled.
	sentinel uint8 = 255

	// marker is the transient value border removal and hole filling flood with.
	marker uint8 = 2
)

// Operator runs the blob algorithms and reports diagnostics to its logger.
//
// The zero value is not usable; build one with New. An Operator is safe for
// concurrent use as long as each call works on its own buffers.
type Operator struct {
	log zerolog.Logger
}

// New returns an Operator that logs diagnostics to logger.
// Pass zerolog.Nop() to silence them.
func New(logger zerolog.Logger) *Operator {
	return &Operator{log: logger.With().Str("component", "blob").Logger()}
}

// check validates src and dst before an operator touches any buffer.
//
// src's kind must be one of allowed, otherwise the call is logged and
// rejected with ErrUnsupportedKind. When matchKinds is set and dst's kind
// differs from src's, a warning is logged and the call proceeds.
func (o *Operator) check(op string, src, dst *pixel.Image, matchKinds bool, allowed ...pixel.Kind) error {
	if src == nil || dst == nil {
		return fmt.Errorf("%s: %w", op, ErrNilImage)
	}
	if !kindIn(src.Kind, allowed) {
		o.log.Error().
			Str("op", op).
			Stringer("src_kind", src.Kind).
			Stringer("dst_kind", dst.Kind).
			Msg("pixel kind not supported")
		return fmt.Errorf("%s: %w: %s", op, ErrUnsupportedKind, src.Kind)
	}
	if !src.SameSize(dst) {
		return fmt.Errorf("%s: %w: src %dx%d, dst %dx%d",
			op, pixel.ErrSizeMismatch, src.Cols, src.Rows, dst.Cols, dst.Rows)
	}
	if matchKinds && src.Kind != dst.Kind {
		o.log.Warn().
			Str("op", op).
			Stringer("src_kind", src.Kind).
			Stringer("dst_kind", dst.Kind).
			Msg("src and dst are of different kind, using src kind")
	}
	return nil
}

func (o *Operator) overflow(op string, dst *pixel.Image) error {
	dst.Fill(0)
	o.log.Warn().
		Str("op", op).
		Int("max_labels", MaxLabels).
		Msg("label overflow")
	return fmt.Errorf("%s: %w", op, ErrLabelOverflow)
}

func kindIn(k pixel.Kind, allowed []pixel.Kind) bool {
	for _, a := range allowed {
		if k == a {
			return true
		}
	}
	return false
}

// scan visits every pixel top-left to bottom-right, then bottom-right to
// top-left, calling visit for each. It reports whether any visit changed a
// pixel. Rows and columns in [inset, size-inset) are visited.
func scan(img *pixel.Image, inset int, visit func(c, r int) bool) bool {
	changed := false
	for r := inset; r < img.Rows-inset; r++ {
		for c := inset; c < img.Cols-inset; c++ {
			if visit(c, r) {
				changed = true
			}
		}
	}
	for r := img.Rows - 1 - inset; r >= inset; r-- {
		for c := img.Cols - 1 - inset; c >= inset; c-- {
			if visit(c, r) {
				changed = true
			}
		}
	}
	return changed
}
