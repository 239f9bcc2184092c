package blob

import "github.com/ironsheep/blob-vision-mcp/internal/pixel"

// Relabel compacts the ids of a label image to the dense range 1..N and
// returns N.
//
// Ids are renumbered in ascending order of their old value, so the relative
// order of blobs is preserved. Pixels holding 0 or the sentinel 255 become 0.
// Relabeling an already dense image leaves it unchanged.
func Relabel(img *pixel.Image) int {
	hist := pixel.Histogram(img)

	var remap [256]uint8
	n := 0
	for v := 1; v <= MaxLabels; v++ {
		if hist[v] > 0 {
			n++
			remap[v] = uint8(n)
		}
	}
	for i, v := range img.Pix {
		img.Pix[i] = remap[v]
	}
	return n
}

// Labels returns the ids present in a label image in ascending order.
// Background and the sentinel are not included.
func Labels(img *pixel.Image) []uint8 {
	hist := pixel.Histogram(img)
	var ids []uint8
	for v := 1; v <= MaxLabels; v++ {
		if hist[v] > 0 {
			ids = append(ids, uint8(v))
		}
	}
	return ids
}
