package pixel

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// FromImage converts any image.Image to a KindGray buffer using the
// luminance weights 0.3R + 0.6G + 0.1B. The result's (0, 0) is the source's
// Bounds().Min. *image.Gray sources are copied without conversion.
func FromImage(src image.Image) *Image {
	if g, ok := src.(*image.Gray); ok {
		return FromGray(g, KindGray)
	}
	return FromRGBA(effect.Grayscale(src), KindGray)
}

// FromRGBA copies the red channel of src into a buffer of the given kind.
// It is meant for images whose channels are equal, such as the grayscale
// output of bild filters.
func FromRGBA(src *image.RGBA, kind Kind) *Image {
	b := src.Bounds()
	out := &Image{
		Cols: b.Dx(),
		Rows: b.Dy(),
		Kind: kind,
		Pix:  make([]uint8, b.Dx()*b.Dy()),
	}
	for r := 0; r < out.Rows; r++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+r)
		row := out.Pix[r*out.Cols : (r+1)*out.Cols]
		for c := range row {
			row[c] = src.Pix[off+4*c]
		}
	}
	return out
}

// FromGray copies an *image.Gray into a buffer of the given kind.
func FromGray(src *image.Gray, kind Kind) *Image {
	b := src.Bounds()
	out := &Image{
		Cols: b.Dx(),
		Rows: b.Dy(),
		Kind: kind,
		Pix:  make([]uint8, b.Dx()*b.Dy()),
	}
	for r := 0; r < out.Rows; r++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+r)
		copy(out.Pix[r*out.Cols:(r+1)*out.Cols], src.Pix[off:off+out.Cols])
	}
	return out
}

// ToGray renders img as an *image.Gray. Binary pixels are scaled to 0/255;
// label and gray pixels are copied verbatim.
func ToGray(img *Image) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, img.Cols, img.Rows))
	for i, v := range img.Pix {
		if img.Kind == KindBinary && v != 0 {
			v = 255
		}
		out.Pix[i] = v
	}
	return out
}
