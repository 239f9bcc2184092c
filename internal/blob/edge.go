package blob

import "github.com/ironsheep/blob-vision-mcp/internal/pixel"

// BinaryEdgeDetect writes the outline of the foreground of src to dst.
//
// A foreground pixel with at least one in-range background neighbor under
// conn becomes 1; every other pixel becomes 0. Pixels on the image border are
// not treated as edges unless they touch background inside the image.
// src and dst may be the same image.
func (o *Operator) BinaryEdgeDetect(src, dst *pixel.Image, conn pixel.Connectivity) error {
	const op = "binary_edge_detect"
	if err := o.check(op, src, dst, true, pixel.KindBinary); err != nil {
		return err
	}
	in := src
	if src == dst {
		in = src.Clone()
	}
	for r := 0; r < in.Rows; r++ {
		for c := 0; c < in.Cols; c++ {
			var v uint8
			if in.Pixel(c, r) != 0 && pixel.NeighborCount(in, c, r, 0, conn) > 0 {
				v = 1
			}
			dst.SetPixel(c, r, v)
		}
	}
	dst.Kind = src.Kind
	return nil
}
