package pixel

// orthogonal and diagonal neighbor offsets as {dc, dr}.
var (
	orthogonal = [4][2]int{{0, -1}, {-1, 0}, {0, 1}, {1, 0}}
	diagonal   = [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
)

// NeighborCount returns how many in-range neighbors of (c, r) hold value.
//
// The four orthogonal neighbors are always checked; with Eight the four
// diagonal neighbors are checked too. Neighbors outside the image are skipped.
// The pixel at (c, r) itself is never counted.
//
// NeighborCount has no side effects, so it is safe to call from inside a
// relaxation pass that is mutating img.
func NeighborCount(img *Image, c, r int, value uint8, conn Connectivity) uint32 {
	var count uint32
	for _, d := range orthogonal {
		nc, nr := c+d[0], r+d[1]
		if img.InBounds(nc, nr) && img.Pix[nr*img.Cols+nc] == value {
			count++
		}
	}
	if conn == Eight {
		for _, d := range diagonal {
			nc, nr := c+d[0], r+d[1]
			if img.InBounds(nc, nr) && img.Pix[nr*img.Cols+nc] == value {
				count++
			}
		}
	}
	return count
}

// MaxNeighbors returns the number of in-range neighbor positions of (c, r):
// 2/3/4 for a corner/edge/interior pixel with Four and 3/5/8 with Eight.
// Images one pixel wide or tall yield smaller counts.
func MaxNeighbors(img *Image, c, r int, conn Connectivity) uint32 {
	var count uint32
	for _, d := range orthogonal {
		if img.InBounds(c+d[0], r+d[1]) {
			count++
		}
	}
	if conn == Eight {
		for _, d := range diagonal {
			if img.InBounds(c+d[0], r+d[1]) {
				count++
			}
		}
	}
	return count
}

// LowestNeighborLabel returns the smallest neighbor value in 1..254, or 0 if
// no neighbor holds a label.
func LowestNeighborLabel(img *Image, c, r int, conn Connectivity) uint8 {
	var lowest uint8
	visit := func(nc, nr int) {
		if !img.InBounds(nc, nr) {
			return
		}
		v := img.Pix[nr*img.Cols+nc]
		if v == 0 || v == 255 {
			return
		}
		if lowest == 0 || v < lowest {
			lowest = v
		}
	}
	for _, d := range orthogonal {
		visit(c+d[0], r+d[1])
	}
	if conn == Eight {
		for _, d := range diagonal {
			visit(c+d[0], r+d[1])
		}
	}
	return lowest
}

// NeighborLabels reports the distinct labels (1..254) among the neighbors of
// (c, r). It returns the lowest one and whether more than one distinct label
// was seen.
func NeighborLabels(img *Image, c, r int, conn Connectivity) (lowest uint8, multiple bool) {
	visit := func(nc, nr int) {
		if !img.InBounds(nc, nr) {
			return
		}
		v := img.Pix[nr*img.Cols+nc]
		if v == 0 || v == 255 {
			return
		}
		switch {
		case lowest == 0:
			lowest = v
		case v != lowest:
			multiple = true
			if v < lowest {
				lowest = v
			}
		}
	}
	for _, d := range orthogonal {
		visit(c+d[0], r+d[1])
	}
	if conn == Eight {
		for _, d := range diagonal {
			visit(c+d[0], r+d[1])
		}
	}
	return lowest, multiple
}
