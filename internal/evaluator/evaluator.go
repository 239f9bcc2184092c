package evaluator

import (
	"errors"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

// ErrNotGray is returned when a frame is not a grayscale buffer.
var ErrNotGray = errors.New("evaluator: frame must be a gray image")

// Point is a pixel position or offset.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Candidate is one blob or circle that was scored.
type Candidate struct {
	// Label is the blob id in the label image, 0 for circles.
	Label uint8 `json:"label,omitempty"`

	// Center is the rounded centroid or circle center.
	Center Point `json:"center"`

	// Area is the blob pixel count. Zero for circles.
	Area int `json:"area,omitempty"`

	// Perimeter is the weighted blob perimeter. Zero for circles.
	Perimeter float64 `json:"perimeter,omitempty"`

	// Roundness and Eccentricity are the blob shape scores.
	Roundness    float64 `json:"roundness,omitempty"`
	Eccentricity float64 `json:"eccentricity,omitempty"`

	// Radius and Votes describe a Hough circle.
	Radius int `json:"radius,omitempty"`
	Votes  int `json:"votes,omitempty"`

	// Score ranks candidates. Lower is better for blobs, higher for circles.
	Score float64 `json:"score"`
}

// Result is the outcome of evaluating one frame.
type Result struct {
	// Method names the evaluator that produced the result.
	Method string `json:"method"`

	// Found is false when no candidate qualified; Offset and Position are
	// then zero.
	Found bool `json:"found"`

	// Position is the center of the winning candidate.
	Position Point `json:"position"`

	// Target is the position the frame was compared against.
	Target Point `json:"target"`

	// Offset is Position - Target.
	Offset Point `json:"offset"`

	// Score is the winning candidate's score.
	Score float64 `json:"score"`

	// BlobCount is the number of blobs labeled before area filtering.
	BlobCount int `json:"blob_count,omitempty"`

	// Candidates lists every scored candidate, best first.
	Candidates []Candidate `json:"candidates"`
}

// Evaluator locates the well in a grayscale frame.
type Evaluator interface {
	Evaluate(frame *pixel.Image, target Point) (*Result, error)
}

// scaleToWidth scales v by width/reference. A non-positive reference leaves
// v unchanged.
func scaleToWidth(v float64, width, reference int) float64 {
	if reference <= 0 {
		return v
	}
	return v * float64(width) / float64(reference)
}
