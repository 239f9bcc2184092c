package blob

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

// Roundness returns 4πA/P², which is 1 for a perfect disc and falls toward 0
// for elongated or ragged shapes. A zero perimeter yields 0.
func Roundness(area, perimeter float64) float64 {
	if perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}

// Eccentricity returns ((nu20-nu02)² + 4·nu11²) / (nu20+nu02)², which is 0
// for a rotationally symmetric shape and approaches 1 for a line.
// A zero denominator yields 0.
func Eccentricity(nu20, nu02, nu11 float64) float64 {
	den := (nu20 + nu02) * (nu20 + nu02)
	if den == 0 {
		return 0
	}
	d := nu20 - nu02
	return (d*d + 4*nu11*nu11) / den
}

// Axes describes the ellipse with the same second moments as a blob.
type Axes struct {
	// Major and Minor are full axis lengths in pixels.
	Major float64 `json:"major"`
	Minor float64 `json:"minor"`

	// Orientation is the angle of the major axis in radians, measured from
	// the column axis toward increasing rows, in (-π/2, π/2].
	Orientation float64 `json:"orientation"`

	// Eccentricity is sqrt(1 - minor²/major²): 0 for a circle, near 1 for a line.
	Eccentricity float64 `json:"eccentricity"`
}

// PrincipalAxes fits the moment-equivalent ellipse of label.
//
// The covariance matrix of the pixel coordinates is decomposed into its
// eigenvalues λ1 ≥ λ2; the axes are 4·sqrt(λ). A single pixel has zero
// axes and zero eccentricity.
func PrincipalAxes(img *pixel.Image, label uint8) (Axes, error) {
	m, err := ComputeMoments(img, label)
	if err != nil {
		return Axes{}, err
	}

	cov := mat.NewSymDense(2, []float64{
		m.Mu20 / m.M00, m.Mu11 / m.M00,
		m.Mu11 / m.M00, m.Mu02 / m.M00,
	})
	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return Axes{}, fmt.Errorf("principal axes of label %d: eigen decomposition failed", label)
	}
	// Values are ascending.
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	small, large := math.Max(values[0], 0), math.Max(values[1], 0)
	axes := Axes{
		Major:       4 * math.Sqrt(large),
		Minor:       4 * math.Sqrt(small),
		Orientation: math.Atan2(vectors.At(1, 1), vectors.At(0, 1)),
	}
	if axes.Orientation > math.Pi/2 {
		axes.Orientation -= math.Pi
	} else if axes.Orientation <= -math.Pi/2 {
		axes.Orientation += math.Pi
	}
	if large > 0 {
		axes.Eccentricity = math.Sqrt(1 - small/large)
	}
	return axes, nil
}
