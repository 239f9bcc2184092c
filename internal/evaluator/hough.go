package evaluator

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
	"github.com/ironsheep/blob-vision-mcp/internal/preprocess"
)

// HoughConfig configures HoughEvaluator.
type HoughConfig struct {
	// BlurRadius is the Gaussian blur radius. Zero disables blurring.
	BlurRadius float64

	// GammaC and Gamma shape the stretched frame as c·255·(v/255)^gamma.
	GammaC float64
	Gamma  float64

	// EdgeThreshold is the minimum intensity step between a pixel and its
	// right or lower neighbor for the pixel to count as an edge.
	EdgeThreshold int

	// MinRadius and MaxRadius bound the circle search, in pixels at
	// ReferenceWidth.
	MinRadius int
	MaxRadius int

	// MinDistance is the smallest distance between two reported centers, in
	// pixels at ReferenceWidth.
	MinDistance int

	// ReferenceWidth is the frame width the pixel sizes above were tuned
	// for. Frames of another width scale them proportionally. Zero disables
	// scaling.
	ReferenceWidth int

	// AngleStep is the spacing in degrees of the votes each edge pixel casts.
	AngleStep int

	// VoteFraction is the share of the votes a full circle can collect
	// (360/AngleStep) that a center needs to be reported.
	VoteFraction float64
}

// DefaultHoughConfig returns the settings tuned for 410×308 frames.
func DefaultHoughConfig() HoughConfig {
	return HoughConfig{
		BlurRadius:     3,
		GammaC:         1,
		Gamma:          5,
		EdgeThreshold:  30,
		MinRadius:      50,
		MaxRadius:      100,
		MinDistance:    50,
		ReferenceWidth: 410,
		AngleStep:      10,
		VoteFraction:   0.4,
	}
}

// HoughEvaluator finds the well as the strongest circle in the frame.
type HoughEvaluator struct {
	cfg HoughConfig
	log zerolog.Logger
}

// NewHoughEvaluator returns a circle-voting evaluator.
func NewHoughEvaluator(cfg HoughConfig, logger zerolog.Logger) *HoughEvaluator {
	return &HoughEvaluator{
		cfg: cfg,
		log: logger.With().Str("component", "hough_evaluator").Logger(),
	}
}

// Config returns the evaluator's configuration.
func (e *HoughEvaluator) Config() HoughConfig { return e.cfg }

// Evaluate locates the well in frame and reports its offset from target.
//
// # Algorithm
//
// The frame is blurred, stretched and gamma corrected as in
// FeaturesEvaluator, then reduced to an edge map by a simple intensity
// gradient. For every radius in the band each edge pixel votes for the
// centers at that distance, one vote per AngleStep degrees. Local maxima of
// each accumulator with enough votes become candidates; candidates closer
// than MinDistance to a stronger one are dropped. The candidate with the
// most votes wins.
//
// frame is not modified.
func (e *HoughEvaluator) Evaluate(frame *pixel.Image, target Point) (*Result, error) {
	if frame == nil || frame.Kind != pixel.KindGray {
		return nil, ErrNotGray
	}
	cfg := e.cfg
	if cfg.AngleStep <= 0 || cfg.MinRadius <= 0 || cfg.MaxRadius < cfg.MinRadius {
		return nil, fmt.Errorf("invalid hough config: radius %d..%d, angle step %d",
			cfg.MinRadius, cfg.MaxRadius, cfg.AngleStep)
	}

	work := frame.Clone()
	if err := preprocess.GaussianBlur(work, work, cfg.BlurRadius); err != nil {
		return nil, fmt.Errorf("failed to blur frame: %w", err)
	}
	if err := preprocess.ContrastStretchFast(work, work); err != nil {
		return nil, fmt.Errorf("failed to stretch frame: %w", err)
	}
	if err := preprocess.Gamma(work, work, cfg.GammaC, cfg.Gamma); err != nil {
		return nil, fmt.Errorf("failed to apply gamma: %w", err)
	}

	edges := GradientEdges(work, cfg.EdgeThreshold)
	minR := int(math.Round(scaleToWidth(float64(cfg.MinRadius), frame.Cols, cfg.ReferenceWidth)))
	maxR := int(math.Round(scaleToWidth(float64(cfg.MaxRadius), frame.Cols, cfg.ReferenceWidth)))
	minDist := scaleToWidth(float64(cfg.MinDistance), frame.Cols, cfg.ReferenceWidth)

	circles := houghCircles(edges, max(minR, 1), maxR, cfg.AngleStep, cfg.VoteFraction)
	circles = suppressNearby(circles, minDist)

	result := &Result{Method: "hough", Target: target, Candidates: circles}
	if len(circles) > 0 {
		best := circles[0]
		result.Found = true
		result.Position = best.Center
		result.Offset = best.Center.Sub(target)
		result.Score = best.Score
	}

	e.log.Debug().
		Int("edges", pixel.Count(edges, 1)).
		Int("min_radius", minR).
		Int("max_radius", maxR).
		Int("circles", len(circles)).
		Bool("found", result.Found).
		Msg("evaluated frame")
	return result, nil
}

// GradientEdges marks pixels whose right or lower neighbor differs by more
// than threshold. Pixels on the outermost rows and columns are never edges.
func GradientEdges(img *pixel.Image, threshold int) *pixel.Image {
	edges, _ := pixel.NewBinary(img.Cols, img.Rows)
	for r := 1; r < img.Rows-1; r++ {
		for c := 1; c < img.Cols-1; c++ {
			v := int(img.Pixel(c, r))
			dx := abs(v - int(img.Pixel(c+1, r)))
			dy := abs(v - int(img.Pixel(c, r+1)))
			if dx > threshold || dy > threshold {
				edges.SetPixel(c, r, 1)
			}
		}
	}
	return edges
}

// houghCircles votes for circle centers for every radius in [minR, maxR]
// and returns the accumulator local maxima, strongest first.
func houghCircles(edges *pixel.Image, minR, maxR, angleStep int, fraction float64) []Candidate {
	w, h := edges.Cols, edges.Rows
	angles := 360 / angleStep
	needed := int(math.Ceil(fraction * float64(angles)))
	needed = max(needed, 1)

	type step struct{ dc, dr int }
	var points []step
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if edges.Pixel(c, r) != 0 {
				points = append(points, step{c, r})
			}
		}
	}

	circles := []Candidate{}
	acc := make([]int, w*h)
	for radius := minR; radius <= maxR; radius++ {
		if 2*radius >= w || 2*radius >= h {
			break
		}
		for i := range acc {
			acc[i] = 0
		}

		steps := make([]step, 0, angles)
		for a := 0; a < 360; a += angleStep {
			rad := float64(a) * math.Pi / 180
			steps = append(steps, step{int(float64(radius) * math.Cos(rad)), int(float64(radius) * math.Sin(rad))})
		}
		for _, p := range points {
			for _, s := range steps {
				cx, cy := p.dc-s.dc, p.dr-s.dr
				if cx >= 0 && cx < w && cy >= 0 && cy < h {
					acc[cy*w+cx]++
				}
			}
		}

		// Centers must leave room for the whole circle inside the frame.
		for y := radius; y < h-radius; y++ {
			for x := radius; x < w-radius; x++ {
				votes := acc[y*w+x]
				if votes < needed || !localMax(acc, w, h, x, y, 5) {
					continue
				}
				circles = append(circles, Candidate{
					Center: Point{X: x, Y: y},
					Radius: radius,
					Votes:  votes,
					Score:  math.Min(float64(votes)/float64(angles), 1),
				})
			}
		}
	}

	sort.SliceStable(circles, func(i, j int) bool {
		return circles[i].Votes > circles[j].Votes
	})
	return circles
}

// localMax reports whether no accumulator cell within win of (x, y) has more
// votes.
func localMax(acc []int, w, h, x, y, win int) bool {
	v := acc[y*w+x]
	for dy := -win; dy <= win; dy++ {
		for dx := -win; dx <= win; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			if acc[ny*w+nx] > v {
				return false
			}
		}
	}
	return true
}

// suppressNearby keeps, in order, each circle farther than minDist from every
// circle kept before it. circles must be sorted strongest first.
func suppressNearby(circles []Candidate, minDist float64) []Candidate {
	kept := make([]Candidate, 0, len(circles))
	for _, c := range circles {
		near := false
		for _, k := range kept {
			dx := float64(c.Center.X - k.Center.X)
			dy := float64(c.Center.Y - k.Center.Y)
			if math.Hypot(dx, dy) < minDist {
				near = true
				break
			}
		}
		if !near {
			kept = append(kept, c)
		}
	}
	return kept
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
