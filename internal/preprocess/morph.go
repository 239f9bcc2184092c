package preprocess

import (
	"fmt"
	"strings"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

// MorphOp is a binary or grayscale morphology operation.
type MorphOp int

const (
	MorphErode MorphOp = iota
	MorphDilate
	MorphOpen
	MorphClose
)

func (m MorphOp) String() string {
	switch m {
	case MorphErode:
		return "erode"
	case MorphDilate:
		return "dilate"
	case MorphOpen:
		return "open"
	case MorphClose:
		return "close"
	default:
		return fmt.Sprintf("morph(%d)", int(m))
	}
}

// ParseMorphOp maps "erode", "dilate", "open" or "close" to a MorphOp.
func ParseMorphOp(s string) (MorphOp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "erode":
		return MorphErode, nil
	case "dilate":
		return MorphDilate, nil
	case "open":
		return MorphOpen, nil
	case "close":
		return MorphClose, nil
	}
	return 0, fmt.Errorf("%w: morphology %q", ErrUnknownOperation, s)
}

// MorphConfig configures Morph.
type MorphConfig struct {
	// Operation to apply.
	Operation MorphOp

	// Radius of the square structuring element: its side is about
	// 2·Radius+1 pixels. A radius <= 0 makes the operation a copy.
	Radius float64

	// Iterations repeats the operation. Values below 1 are treated as 1.
	Iterations int
}

// DefaultMorphConfig returns an opening with a radius of 5, which removes
// specks smaller than roughly a 10×10 square.
func DefaultMorphConfig() MorphConfig {
	return MorphConfig{
		Operation:  MorphOpen,
		Radius:     5,
		Iterations: 1,
	}
}

// Morph applies cfg to src and writes the result to dst.
//
// Binary images are scaled to 0/255 for the operation and cut back to 0/1 at
// the midpoint. Gray images keep their values.
func Morph(src, dst *pixel.Image, cfg MorphConfig) error {
	if err := checkPair("morph", src, dst); err != nil {
		return err
	}
	if err := pixel.Copy(src, dst); err != nil {
		return err
	}
	if cfg.Radius <= 0 {
		return nil
	}
	iterations := max(cfg.Iterations, 1)

	for i := 0; i < iterations; i++ {
		switch cfg.Operation {
		case MorphErode:
			erode(dst, cfg.Radius)
		case MorphDilate:
			dilate(dst, cfg.Radius)
		case MorphOpen:
			erode(dst, cfg.Radius)
			dilate(dst, cfg.Radius)
		case MorphClose:
			dilate(dst, cfg.Radius)
			erode(dst, cfg.Radius)
		default:
			return fmt.Errorf("morph: %w: %s", ErrUnknownOperation, cfg.Operation)
		}
	}
	return nil
}

// Erode shrinks the foreground of src by radius.
func Erode(src, dst *pixel.Image, radius float64) error {
	return Morph(src, dst, MorphConfig{Operation: MorphErode, Radius: radius})
}

// Dilate grows the foreground of src by radius.
func Dilate(src, dst *pixel.Image, radius float64) error {
	return Morph(src, dst, MorphConfig{Operation: MorphDilate, Radius: radius})
}

// Open erodes then dilates, removing foreground specks smaller than the
// structuring element.
func Open(src, dst *pixel.Image, radius float64) error {
	return Morph(src, dst, MorphConfig{Operation: MorphOpen, Radius: radius})
}

// Close dilates then erodes, closing background gaps smaller than the
// structuring element.
func Close(src, dst *pixel.Image, radius float64) error {
	return Morph(src, dst, MorphConfig{Operation: MorphClose, Radius: radius})
}

func erode(img *pixel.Image, radius float64) {
	storeRGBA(effect.Erode(pixel.ToGray(img), radius), img)
	if img.Kind == pixel.KindBinary {
		binarize(img)
	}
}

func dilate(img *pixel.Image, radius float64) {
	storeRGBA(effect.Dilate(pixel.ToGray(img), radius), img)
	if img.Kind == pixel.KindBinary {
		binarize(img)
	}
}
