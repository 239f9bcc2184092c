package preprocess

import (
	"fmt"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

// Threshold sets dst to 1 where low <= src <= high and 0 elsewhere.
func Threshold(src, dst *pixel.Image, low, high uint8) error {
	if err := checkPair("threshold", src, dst); err != nil {
		return err
	}
	for i, v := range src.Pix {
		if v >= low && v <= high {
			dst.Pix[i] = 1
		} else {
			dst.Pix[i] = 0
		}
	}
	dst.Kind = pixel.KindBinary
	return nil
}

// ThresholdAbove returns a new binary image that is 1 where src is strictly
// greater than level.
func ThresholdAbove(src *pixel.Image, level uint8) (*pixel.Image, error) {
	if src == nil {
		return nil, fmt.Errorf("threshold above: nil image")
	}
	out, err := pixel.NewBinary(src.Cols, src.Rows)
	if err != nil {
		return nil, err
	}
	if level == 255 {
		return out, nil
	}
	return out, Threshold(src, out, level+1, 255)
}

// ThresholdLevel sets dst from a single cut T. With pixel.Bright, pixels
// >= T become 1; with pixel.Dark they become 0 and the rest 1.
func ThresholdLevel(src, dst *pixel.Image, level uint8, brightness pixel.Brightness) error {
	if err := checkPair("threshold level", src, dst); err != nil {
		return err
	}
	on, off := uint8(1), uint8(0)
	if brightness == pixel.Dark {
		on, off = 0, 1
	}
	for i, v := range src.Pix {
		if v >= level {
			dst.Pix[i] = on
		} else {
			dst.Pix[i] = off
		}
	}
	dst.Kind = pixel.KindBinary
	return nil
}

// ThresholdOtsu thresholds src at the level chosen by OtsuLevel and returns
// that level.
func ThresholdOtsu(src, dst *pixel.Image, brightness pixel.Brightness) (uint8, error) {
	if err := checkPair("threshold otsu", src, dst); err != nil {
		return 0, err
	}
	level := OtsuLevel(src)
	return level, ThresholdLevel(src, dst, level, brightness)
}

// ThresholdTwoMeans thresholds src at the level chosen by TwoMeansLevel and
// returns that level.
func ThresholdTwoMeans(src, dst *pixel.Image, brightness pixel.Brightness) (uint8, error) {
	if err := checkPair("threshold two means", src, dst); err != nil {
		return 0, err
	}
	level := TwoMeansLevel(src)
	return level, ThresholdLevel(src, dst, level, brightness)
}

// OtsuLevel returns the level t that maximizes the between-class variance of
// the classes {v < t} and {v >= t}. An image with a single value yields 0.
func OtsuLevel(img *pixel.Image) uint8 {
	hist := pixel.Histogram(img)
	total := float64(img.Len())
	var sum float64
	for v, n := range hist {
		sum += float64(v) * float64(n)
	}

	var (
		best      uint8
		bestBCV   float64
		nObject   float64
		sumObject float64
	)
	for v, n := range hist {
		nObject += float64(n)
		sumObject += float64(v) * float64(n)
		nBack := total - nObject
		if nObject == 0 || nBack == 0 {
			continue
		}
		meanObject := sumObject / nObject
		meanBack := (sum - sumObject) / nBack
		d := meanBack - meanObject
		if bcv := nBack * nObject * d * d; bcv > bestBCV {
			bestBCV = bcv
			best = uint8(v + 1)
		}
	}
	return best
}

// TwoMeansLevel finds a level by iterative two-means clustering.
//
// Starting halfway between the darkest and brightest pixel, the level moves
// to the midpoint of the mean below it and the mean above it until it stops
// changing. Pixels equal to the level take part in neither mean. If one side
// is empty the current level is returned.
func TwoMeansLevel(img *pixel.Image) uint8 {
	hist := pixel.Histogram(img)
	lo, hi := pixel.MinMax(img)
	t := int(lo) + (int(hi)-int(lo))/2

	// Bounded: integer rounding can make the level alternate between two values.
	for iter := 0; iter < 256; iter++ {
		var left, leftN, right, rightN uint64
		for v, n := range hist {
			switch {
			case v > t:
				right += uint64(v) * uint64(n)
				rightN += uint64(n)
			case v < t:
				left += uint64(v) * uint64(n)
				leftN += uint64(n)
			}
		}
		if leftN == 0 || rightN == 0 {
			break
		}
		next := int((left/leftN + right/rightN) / 2)
		if next == t {
			break
		}
		t = next
	}
	return uint8(t)
}
