package preprocess

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/blur"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

// GaussianBlur smooths src with a Gaussian kernel of the given radius.
// A radius <= 0 copies src.
func GaussianBlur(src, dst *pixel.Image, radius float64) error {
	if err := checkPair("gaussian blur", src, dst); err != nil {
		return err
	}
	if radius <= 0 {
		return pixel.Copy(src, dst)
	}
	storeRGBA(blur.Gaussian(pixel.ToGray(src), radius), dst)
	dst.Kind = src.Kind
	if dst.Kind == pixel.KindBinary {
		binarize(dst)
	}
	return nil
}

// FilterOp selects the statistic a window filter computes.
type FilterOp int

const (
	// FilterAverage is the arithmetic mean of the window.
	FilterAverage FilterOp = iota
	// FilterHarmonic is the harmonic mean of the window.
	FilterHarmonic
	// FilterMax is the largest value in the window.
	FilterMax
	// FilterMin is the smallest value in the window.
	FilterMin
	// FilterMidpoint is the mean of the smallest and largest values.
	FilterMidpoint
	// FilterMedian is the middle value of the sorted window.
	FilterMedian
	// FilterRange is the largest value minus the smallest.
	FilterRange
)

var filterNames = map[FilterOp]string{
	FilterAverage:  "average",
	FilterHarmonic: "harmonic",
	FilterMax:      "max",
	FilterMin:      "min",
	FilterMidpoint: "midpoint",
	FilterMedian:   "median",
	FilterRange:    "range",
}

// String returns the name ParseFilterOp accepts.
func (f FilterOp) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("filter(%d)", int(f))
}

// ParseFilterOp maps a filter name such as "median" to its FilterOp.
func ParseFilterOp(s string) (FilterOp, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for op, name := range filterNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: filter %q", ErrUnknownOperation, s)
}

// NonlinearFilter replaces each pixel with a statistic of the n×n window
// centered on it. Window cells outside the image are skipped, so border
// pixels see fewer samples. src and dst may be the same image.
//
// The harmonic mean is 0 when any sample is 0. The median of an even number
// of samples is the mean of the two middle values.
func NonlinearFilter(src, dst *pixel.Image, op FilterOp, n int) error {
	if err := checkPair("nonlinear filter", src, dst); err != nil {
		return err
	}
	if n <= 0 || n%2 == 0 {
		return fmt.Errorf("nonlinear filter: %w: %d", ErrInvalidWindow, n)
	}
	if _, ok := filterNames[op]; !ok {
		return fmt.Errorf("nonlinear filter: %w: %d", ErrUnknownOperation, op)
	}
	if src == dst {
		src = src.Clone()
	}

	half := n / 2
	window := make([]int, 0, n*n)
	for r := 0; r < src.Rows; r++ {
		for c := 0; c < src.Cols; c++ {
			window = window[:0]
			for wr := r - half; wr <= r+half; wr++ {
				for wc := c - half; wc <= c+half; wc++ {
					if src.InBounds(wc, wr) {
						window = append(window, int(src.Pixel(wc, wr)))
					}
				}
			}
			dst.SetPixel(c, r, windowStat(op, window, n*n))
		}
	}
	dst.Kind = src.Kind
	return nil
}

// windowStat reduces one window. Average and harmonic divide by the full
// window area, matching a zero-padded kernel.
func windowStat(op FilterOp, w []int, area int) uint8 {
	lo, hi, sum := 255, 0, 0
	for _, v := range w {
		lo = min(lo, v)
		hi = max(hi, v)
		sum += v
	}
	switch op {
	case FilterAverage:
		return uint8(sum / area)
	case FilterHarmonic:
		inv := 0.0
		for _, v := range w {
			if v == 0 {
				return 0
			}
			inv += 1 / float64(v)
		}
		return clamp8(float64(area) / inv)
	case FilterMax:
		return uint8(hi)
	case FilterMin:
		return uint8(lo)
	case FilterMidpoint:
		return uint8((lo + hi) / 2)
	case FilterMedian:
		sort.Ints(w)
		if len(w)%2 == 1 {
			return uint8(w[len(w)/2])
		}
		return uint8((w[len(w)/2] + w[len(w)/2-1]) / 2)
	case FilterRange:
		return uint8(hi - lo)
	}
	return 0
}
