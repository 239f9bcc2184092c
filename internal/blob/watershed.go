package blob

import "github.com/ironsheep/blob-vision-mcp/internal/pixel"

// Watershed segments the height image src into catchment basins and writes
// them to dst as a label image. It returns the number of basins N; basins
// carry ids 1..N and the lines separating them are 0.
//
// Pixels lower than minHeight are excluded and stay 0. maxHeight is clamped
// to the highest value in src. src may be a gray or label image; src and dst
// may be the same image.
//
// # Algorithm
//
// Water rises one level at a time from minHeight to maxHeight. Pixels inside
// the band start as the sentinel 255. At each level, over the sentinel pixels
// no higher than the level:
//
//  1. Growth: a pixel next to exactly one basin joins it; a pixel next to two
//     or more distinct basins becomes a permanent 0 boundary. Forward and
//     backward scans repeat until nothing changes.
//  2. Seeding: the first remaining pixel in raster order (one with no basin
//     neighbor) starts a new basin, then growth runs again. This repeats
//     until no unclaimed pixel is left at the level.
//
// Sentinel pixels never reached are cleared to 0 and the ids are compacted
// with Relabel. If more than MaxLabels basins form, dst is zeroed and
// (0, ErrLabelOverflow) is returned.
func (o *Operator) Watershed(src, dst *pixel.Image, conn pixel.Connectivity, minHeight, maxHeight uint8) (int, error) {
	const op = "watershed"
	if err := o.check(op, src, dst, false, pixel.KindGray, pixel.KindLabel); err != nil {
		return 0, err
	}

	heights := src
	if src == dst {
		heights = src.Clone()
	}
	if _, hi := pixel.MinMax(heights); maxHeight > hi {
		maxHeight = hi
	}

	for i, h := range heights.Pix {
		if h < minHeight {
			dst.Pix[i] = 0
		} else {
			dst.Pix[i] = sentinel
		}
	}
	dst.Kind = pixel.KindLabel

	ws := &flood{heights: heights, labels: dst, conn: conn}
	var next uint8
	for level := int(minHeight); level <= int(maxHeight); level++ {
		ws.level = uint8(level)
		ws.grow()
		for start := 0; ; {
			i := ws.unclaimed(start)
			if i < 0 {
				break
			}
			if next == MaxLabels {
				return 0, o.overflow(op, dst)
			}
			next++
			dst.Pix[i] = next
			ws.grow()
			start = i + 1
		}
	}

	if err := pixel.SetSelectedToValue(dst, dst, sentinel, 0); err != nil {
		return 0, err
	}
	n := Relabel(dst)
	o.log.Debug().
		Str("op", op).
		Uint8("min_height", minHeight).
		Uint8("max_height", maxHeight).
		Int("passes", ws.passes).
		Int("basins", n).
		Msg("segmented")
	return n, nil
}

// flood holds the state of one Watershed call.
type flood struct {
	heights *pixel.Image
	labels  *pixel.Image
	conn    pixel.Connectivity
	level   uint8
	passes  int
}

// candidate reports whether the pixel at index i is unclaimed and under water.
func (f *flood) candidate(i int) bool {
	return f.labels.Pix[i] == sentinel && f.heights.Pix[i] <= f.level
}

// grow extends the existing basins over the candidates until a fixed point.
func (f *flood) grow() {
	for {
		f.passes++
		changed := scan(f.labels, 0, func(c, r int) bool {
			if !f.candidate(f.labels.Index(c, r)) {
				return false
			}
			lowest, multiple := pixel.NeighborLabels(f.labels, c, r, f.conn)
			switch {
			case lowest == 0:
				return false
			case multiple:
				f.labels.SetPixel(c, r, 0)
			default:
				f.labels.SetPixel(c, r, lowest)
			}
			return true
		})
		if !changed {
			return
		}
	}
}

// unclaimed returns the index of the first candidate at or after start, or -1.
func (f *flood) unclaimed(start int) int {
	for i := start; i < len(f.labels.Pix); i++ {
		if f.candidate(i) {
			return i
		}
	}
	return -1
}
