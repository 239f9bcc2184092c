package blob

import "github.com/ironsheep/blob-vision-mcp/internal/pixel"

// FillHoles sets every background region of dst that is not connected to the
// image border to foreground.
//
// When src and dst differ, foreground pixels of src are first merged into
// dst; dst's own foreground is kept. src and dst may be the same image.
//
// # Algorithm
//
//  1. Background pixels on the four edges are set to the marker 2. If none
//     exist the whole image is filled with 1 and the call returns.
//  2. Interior background pixels with a marked neighbor are marked, using
//     forward and backward scans until nothing changes.
//  3. Remaining background is enclosed and becomes 1; marked pixels
//     return to 0.
func (o *Operator) FillHoles(src, dst *pixel.Image, conn pixel.Connectivity) error {
	const op = "fill_holes"
	if err := o.check(op, src, dst, true, pixel.KindBinary); err != nil {
		return err
	}
	if src != dst {
		for i, v := range src.Pix {
			if v == 1 {
				dst.Pix[i] = 1
			}
		}
	}
	dst.Kind = src.Kind

	if markBorder(dst, 0) == 0 {
		dst.Fill(1)
		o.log.Debug().Str("op", op).Msg("no background on border, filled image")
		return nil
	}

	passes := 0
	for {
		passes++
		changed := scan(dst, 1, func(c, r int) bool {
			if dst.Pixel(c, r) == 0 && pixel.NeighborCount(dst, c, r, marker, conn) > 0 {
				dst.SetPixel(c, r, marker)
				return true
			}
			return false
		})
		if !changed {
			break
		}
	}

	filled := pixel.Count(dst, 0)
	if err := pixel.SetSelectedToValue(dst, dst, 0, 1); err != nil {
		return err
	}
	if err := pixel.SetSelectedToValue(dst, dst, marker, 0); err != nil {
		return err
	}
	o.log.Debug().Str("op", op).Int("passes", passes).Int("filled", filled).Msg("holes filled")
	return nil
}
