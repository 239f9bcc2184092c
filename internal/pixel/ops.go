package pixel

// Copy copies src's pixels and kind into dst.
// Returns ErrSizeMismatch if the dimensions differ.
func Copy(src, dst *Image) error {
	if !src.SameSize(dst) {
		return ErrSizeMismatch
	}
	if src != dst {
		copy(dst.Pix, src.Pix)
	}
	dst.Kind = src.Kind
	return nil
}

// SetSelectedToValue writes value into dst wherever src equals selected and
// copies src's pixel everywhere else. src and dst may be the same image.
func SetSelectedToValue(src, dst *Image, selected, value uint8) error {
	if !src.SameSize(dst) {
		return ErrSizeMismatch
	}
	for i, v := range src.Pix {
		if v == selected {
			dst.Pix[i] = value
		} else {
			dst.Pix[i] = v
		}
	}
	return nil
}

// Histogram counts the occurrences of every pixel value.
func Histogram(img *Image) [256]uint32 {
	var hist [256]uint32
	for _, v := range img.Pix {
		hist[v]++
	}
	return hist
}

// MinMax returns the smallest and largest pixel values.
func MinMax(img *Image) (lo, hi uint8) {
	lo = 255
	for _, v := range img.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Count returns the number of pixels equal to value.
func Count(img *Image, value uint8) int {
	n := 0
	for _, v := range img.Pix {
		if v == value {
			n++
		}
	}
	return n
}
