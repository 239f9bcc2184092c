package preprocess

import (
	"fmt"
	"image"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

func checkPair(op string, src, dst *pixel.Image) error {
	if src == nil || dst == nil {
		return fmt.Errorf("%s: nil image", op)
	}
	if !src.SameSize(dst) {
		return fmt.Errorf("%s: %w: src %dx%d, dst %dx%d",
			op, pixel.ErrSizeMismatch, src.Cols, src.Rows, dst.Cols, dst.Rows)
	}
	return nil
}

// storeRGBA writes a bild result back into dst. bild returns gray input as
// RGBA with equal channels.
func storeRGBA(rgba *image.RGBA, dst *pixel.Image) {
	copy(dst.Pix, pixel.FromRGBA(rgba, dst.Kind).Pix)
}

// binarize maps 0..255 back to 0/1 with the midpoint as the cut.
func binarize(img *pixel.Image) {
	for i, v := range img.Pix {
		if v >= 128 {
			img.Pix[i] = 1
		} else {
			img.Pix[i] = 0
		}
	}
}
