package imaging

import (
	"math"
)

// Point represents a 2D pixel position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// OffsetResult describes the displacement from one point to another.
type OffsetResult struct {
	DeltaX                int     `json:"delta_x"`
	DeltaY                int     `json:"delta_y"`
	DistancePixels        float64 `json:"distance_pixels"`
	AngleDegrees          float64 `json:"angle_degrees"`
	DistancePercentWidth  float64 `json:"distance_percent_width"`
	DistancePercentHeight float64 `json:"distance_percent_height"`
}

// MeasureOffset measures the displacement from -> to in an image of the given
// size. The angle is 0 for rightward and 90 for downward motion. Percentages
// are 0 when the corresponding dimension is not positive.
func MeasureOffset(from, to Point, width, height int) *OffsetResult {
	dx := to.X - from.X
	dy := to.Y - from.Y
	distance := math.Hypot(float64(dx), float64(dy))
	angle := math.Atan2(float64(dy), float64(dx)) * 180 / math.Pi

	res := &OffsetResult{
		DeltaX:         dx,
		DeltaY:         dy,
		DistancePixels: math.Round(distance*100) / 100,
		AngleDegrees:   math.Round(angle*10) / 10,
	}
	if width > 0 {
		res.DistancePercentWidth = math.Round(distance/float64(width)*1000) / 10
	}
	if height > 0 {
		res.DistancePercentHeight = math.Round(distance/float64(height)*1000) / 10
	}
	return res
}

// Aligned reports whether the standard deviation of points about their mean
// is at most tolerance pixels in both directions, and returns the mean. An
// empty list is aligned at the origin.
func Aligned(points []Point, tolerance float64) (bool, float64, float64) {
	if len(points) == 0 {
		return true, 0, 0
	}
	var sumX, sumY float64
	for _, p := range points {
		sumX += float64(p.X)
		sumY += float64(p.Y)
	}
	avgX := sumX / float64(len(points))
	avgY := sumY / float64(len(points))

	var varX, varY float64
	for _, p := range points {
		dx := float64(p.X) - avgX
		dy := float64(p.Y) - avgY
		varX += dx * dx
		varY += dy * dy
	}
	sdX := math.Sqrt(varX / float64(len(points)))
	sdY := math.Sqrt(varY / float64(len(points)))
	return sdX <= tolerance && sdY <= tolerance, avgX, avgY
}
