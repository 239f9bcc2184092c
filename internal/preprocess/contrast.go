package preprocess

import (
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

// ContrastStretch linearly maps the range [min, max] of src onto
// [bottom, top]. A flat image maps to bottom.
func ContrastStretch(src, dst *pixel.Image, bottom, top uint8) error {
	if err := checkPair("contrast stretch", src, dst); err != nil {
		return err
	}
	if bottom > top {
		return ErrInvalidRange
	}
	applyLUT(src, dst, stretchLUT(src, bottom, top))
	return nil
}

// ContrastStretchFast stretches src to the full 0..255 range.
func ContrastStretchFast(src, dst *pixel.Image) error {
	if err := checkPair("contrast stretch", src, dst); err != nil {
		return err
	}
	applyLUT(src, dst, stretchLUT(src, 0, 255))
	return nil
}

func stretchLUT(src *pixel.Image, bottom, top uint8) [256]uint8 {
	lo, hi := pixel.MinMax(src)
	span := float64(hi) - float64(lo)
	if span == 0 {
		span = 1
	}
	factor := float64(top-bottom) / span

	var lut [256]uint8
	for v := range lut {
		out := (float64(v)-float64(lo))*factor + float64(bottom) + 0.5
		lut[v] = clamp8(out)
	}
	return lut
}

func applyLUT(src, dst *pixel.Image, lut [256]uint8) {
	for i, v := range src.Pix {
		dst.Pix[i] = lut[v]
	}
	dst.Kind = src.Kind
}

// Gamma applies out = c·255·(v/255)^g, rounded and clipped to 0..255.
//
// Large g with c below 1 suppresses everything but the brightest pixels,
// which isolates a backlit well from its surroundings.
func Gamma(src, dst *pixel.Image, c, g float64) error {
	if err := checkPair("gamma", src, dst); err != nil {
		return err
	}
	var lut [256]uint8
	for v := range lut {
		lut[v] = clamp8(c*255*math.Pow(float64(v)/255, g) + 0.5)
	}

	out := adjust.Apply(pixel.ToGray(src), func(px color.RGBA) color.RGBA {
		return color.RGBA{R: lut[px.R], G: lut[px.G], B: lut[px.B], A: px.A}
	})
	storeRGBA(out, dst)
	dst.Kind = src.Kind
	return nil
}

// Invert replaces every gray value v with 255-v and swaps 0 and 1 in a
// binary image.
func Invert(src, dst *pixel.Image) error {
	if err := checkPair("invert", src, dst); err != nil {
		return err
	}
	for i, v := range src.Pix {
		if src.Kind == pixel.KindBinary {
			dst.Pix[i] = 1 - v&1
		} else {
			dst.Pix[i] = 255 - v
		}
	}
	dst.Kind = src.Kind
	return nil
}

// Rotate180 turns img upside down in place.
func Rotate180(img *pixel.Image) {
	for i, j := 0, len(img.Pix)-1; i < j; i, j = i+1, j-1 {
		img.Pix[i], img.Pix[j] = img.Pix[j], img.Pix[i]
	}
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
