package pixel

import (
	"fmt"
	"strings"
)

// Kind tells operators how to interpret the bytes of an Image.
type Kind int

const (
	// KindBinary holds 0 (background) and 1 (foreground).
	KindBinary Kind = iota
	// KindLabel holds 0 (background) and blob ids 1..254.
	KindLabel
	// KindGray holds 8-bit intensities.
	KindGray
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindLabel:
		return "label"
	case KindGray:
		return "gray"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Connectivity selects which adjacent cells count as neighbors.
// The numeric value is the number of neighbors of an interior pixel.
type Connectivity int

const (
	// Four uses the orthogonal neighbors N, E, S, W.
	Four Connectivity = 4
	// Eight adds the diagonal neighbors NE, SE, SW, NW.
	Eight Connectivity = 8
)

// String returns "four" or "eight".
func (c Connectivity) String() string {
	switch c {
	case Four:
		return "four"
	case Eight:
		return "eight"
	default:
		return fmt.Sprintf("connectivity(%d)", int(c))
	}
}

// ParseConnectivity accepts "4", "four", "8" or "eight" (case-insensitive).
// An empty string selects Eight.
func ParseConnectivity(s string) (Connectivity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "8", "eight":
		return Eight, nil
	case "4", "four":
		return Four, nil
	default:
		return 0, fmt.Errorf("unknown connectivity %q: want 4 or 8", s)
	}
}

// Brightness selects the polarity of thresholded output.
type Brightness int

const (
	// Bright marks pixels at or above the threshold as foreground.
	Bright Brightness = iota
	// Dark marks pixels below the threshold as foreground.
	Dark
)

// ParseBrightness accepts "bright" or "dark"; empty selects Bright.
func ParseBrightness(s string) (Brightness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bright":
		return Bright, nil
	case "dark":
		return Dark, nil
	default:
		return 0, fmt.Errorf("unknown brightness %q: want bright or dark", s)
	}
}
