package blob

import "github.com/ironsheep/blob-vision-mcp/internal/pixel"

// RemoveBorderBlobs writes src to dst with every foreground blob that touches
// the image border removed. Blobs that do not touch the border are kept
// unchanged. src and dst may be the same image.
//
// # Algorithm
//
//  1. src is copied to dst and foreground pixels on the four edges are set
//     to the marker 2.
//  2. Interior foreground pixels with a marked neighbor are marked too,
//     using forward and backward scans until nothing changes. This floods
//     the marker through every border-connected blob.
//  3. Marked pixels are cleared to 0.
func (o *Operator) RemoveBorderBlobs(src, dst *pixel.Image, conn pixel.Connectivity) error {
	const op = "remove_border_blobs"
	if err := o.check(op, src, dst, true, pixel.KindBinary); err != nil {
		return err
	}
	if err := pixel.Copy(src, dst); err != nil {
		return err
	}

	marked := markBorder(dst, 1)
	passes := 0
	if marked > 0 {
		for {
			passes++
			changed := scan(dst, 1, func(c, r int) bool {
				if dst.Pixel(c, r) == 1 && pixel.NeighborCount(dst, c, r, marker, conn) > 0 {
					dst.SetPixel(c, r, marker)
					return true
				}
				return false
			})
			if !changed {
				break
			}
		}
	}

	removed := pixel.Count(dst, marker)
	if err := pixel.SetSelectedToValue(dst, dst, marker, 0); err != nil {
		return err
	}
	o.log.Debug().Str("op", op).Int("passes", passes).Int("removed", removed).Msg("border blobs removed")
	return nil
}

// markBorder sets every edge pixel equal to value to the marker and returns
// how many were set.
func markBorder(img *pixel.Image, value uint8) int {
	n := 0
	mark := func(c, r int) {
		if img.Pixel(c, r) == value {
			img.SetPixel(c, r, marker)
			n++
		}
	}
	for c := 0; c < img.Cols; c++ {
		mark(c, 0)
		mark(c, img.Rows-1)
	}
	for r := 1; r < img.Rows-1; r++ {
		mark(0, r)
		mark(img.Cols-1, r)
	}
	return n
}
