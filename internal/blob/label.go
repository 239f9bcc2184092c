package blob

import (
	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

// LabelBlobs labels the connected foreground regions of the binary image src
// into dst and returns the number of blobs found.
//
// Any nonzero src pixel counts as foreground. On return dst has kind
// pixel.KindLabel, background pixels are 0 and the blobs carry the dense ids
// 1..N, ranked by the provisional id each blob converged to. src and dst may
// be the same image.
//
// # Algorithm
//
//  1. Every foreground pixel is set to the sentinel 255, background to 0.
//  2. Relaxation iterations run, each a forward and a backward scan, until an
//     iteration changes nothing. During a scan:
//     - A sentinel pixel whose neighbors are all background or sentinel gets
//       the lowest id no pixel currently holds. Otherwise it adopts the
//       lowest neighboring id. When all of 1..MaxLabels are held the pixel
//       stays sentinel until merging frees an id.
//     - A pixel holding an id greater than 1 adopts a strictly lower
//       neighboring id, merging fragments of one blob into the lowest id.
//  3. Surviving ids are compacted to 1..N with Relabel.
//
// Returns (0, nil) for an image with no foreground. If the scans converge
// with sentinel pixels left, every id is held by a distinct blob and there
// are more than MaxLabels blobs: dst is zeroed and (0, ErrLabelOverflow) is
// returned.
func (o *Operator) LabelBlobs(src, dst *pixel.Image, conn pixel.Connectivity) (int, error) {
	const op = "label_blobs"
	if err := o.check(op, src, dst, false, pixel.KindBinary); err != nil {
		return 0, err
	}

	for i, v := range src.Pix {
		if v != 0 {
			dst.Pix[i] = sentinel
		} else {
			dst.Pix[i] = 0
		}
	}
	dst.Kind = pixel.KindLabel

	// held counts the pixels holding each id.
	var held [256]int
	set := func(c, r int, v uint8) {
		held[dst.Pixel(c, r)]--
		held[v]++
		dst.SetPixel(c, r, v)
	}
	unused := func() uint8 {
		for id := 1; id <= MaxLabels; id++ {
			if held[id] == 0 {
				return uint8(id)
			}
		}
		return 0
	}

	handedOut, starved := 0, false
	visit := func(c, r int) bool {
		v := dst.Pixel(c, r)
		switch {
		case v == sentinel:
			free := pixel.NeighborCount(dst, c, r, 0, conn) + pixel.NeighborCount(dst, c, r, sentinel, conn)
			if free != pixel.MaxNeighbors(dst, c, r, conn) {
				set(c, r, pixel.LowestNeighborLabel(dst, c, r, conn))
				return true
			}
			id := unused()
			if id == 0 {
				starved = true
				return false
			}
			handedOut++
			set(c, r, id)
			return true
		case v > 1:
			if low := pixel.LowestNeighborLabel(dst, c, r, conn); low != 0 && low < v {
				set(c, r, low)
				return true
			}
		}
		return false
	}

	passes := 0
	for {
		passes++
		starved = false
		if !scan(dst, 0, visit) {
			break
		}
	}
	if starved {
		return 0, o.overflow(op, dst)
	}

	if handedOut == 0 {
		o.log.Debug().Str("op", op).Int("passes", passes).Msg("no blobs")
		return 0, nil
	}
	n := Relabel(dst)
	o.log.Debug().
		Str("op", op).
		Stringer("connectivity", conn).
		Int("passes", passes).
		Int("provisional", handedOut).
		Int("blobs", n).
		Msg("labeled")
	return n, nil
}
