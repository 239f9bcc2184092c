package evaluator

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ironsheep/blob-vision-mcp/internal/blob"
	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
	"github.com/ironsheep/blob-vision-mcp/internal/preprocess"
)

// FeaturesConfig configures FeaturesEvaluator.
type FeaturesConfig struct {
	// BlurRadius is the Gaussian blur radius. Zero disables blurring.
	BlurRadius float64

	// GammaC and Gamma shape the stretched frame as c·255·(v/255)^gamma.
	GammaC float64
	Gamma  float64

	// Threshold keeps pixels strictly brighter than this after gamma.
	Threshold uint8

	// Morph cleans the thresholded frame.
	Morph preprocess.MorphConfig

	// FillHoles fills enclosed background inside blobs before labeling.
	FillHoles bool

	// RemoveBorderBlobs drops blobs touching the frame edge before labeling.
	RemoveBorderBlobs bool

	// Connectivity used for labeling and the optional binary steps.
	Connectivity pixel.Connectivity

	// AreaThreshold is the minimum blob pixel count to be scored.
	AreaThreshold int
}

// DefaultFeaturesConfig returns the settings tuned for 410×308 frames of a
// backlit well.
func DefaultFeaturesConfig() FeaturesConfig {
	return FeaturesConfig{
		BlurRadius:    1,
		GammaC:        0.5,
		Gamma:         8,
		Threshold:     20,
		Morph:         preprocess.DefaultMorphConfig(),
		Connectivity:  pixel.Eight,
		AreaThreshold: 5000,
	}
}

// FeaturesEvaluator finds the well as the most disc-like bright blob.
type FeaturesEvaluator struct {
	op  *blob.Operator
	cfg FeaturesConfig
	log zerolog.Logger
}

// NewFeaturesEvaluator returns an evaluator that runs blob operations
// through op and logs to logger.
func NewFeaturesEvaluator(op *blob.Operator, cfg FeaturesConfig, logger zerolog.Logger) *FeaturesEvaluator {
	return &FeaturesEvaluator{
		op:  op,
		cfg: cfg,
		log: logger.With().Str("component", "features_evaluator").Logger(),
	}
}

// Config returns the evaluator's configuration.
func (e *FeaturesEvaluator) Config() FeaturesConfig { return e.cfg }

// Evaluate locates the well in frame and reports its offset from target.
//
// # Algorithm
//
//  1. Blur, stretch to 0..255 and apply gamma, leaving only the brightest
//     regions above Threshold.
//  2. Threshold, then clean up with the morphology step and the optional
//     hole filling and border blob removal.
//  3. Label the blobs. Each blob of at least AreaThreshold pixels is scored
//     as (1 - roundness + eccentricity) / 2, where roundness is 4πA/P² and
//     eccentricity comes from the normalized central moments.
//  4. The lowest score wins; its rounded centroid is the well position.
//
// frame is not modified. A label overflow is returned as an error.
func (e *FeaturesEvaluator) Evaluate(frame *pixel.Image, target Point) (*Result, error) {
	if frame == nil || frame.Kind != pixel.KindGray {
		return nil, ErrNotGray
	}
	cfg := e.cfg
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

	mask, err := preprocess.ThresholdAbove(work, cfg.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to threshold frame: %w", err)
	}
	if err := preprocess.Morph(mask, mask, cfg.Morph); err != nil {
		return nil, fmt.Errorf("failed to clean mask: %w", err)
	}
	if cfg.FillHoles {
		if err := e.op.FillHoles(mask, mask, cfg.Connectivity); err != nil {
			return nil, err
		}
	}
	if cfg.RemoveBorderBlobs {
		if err := e.op.RemoveBorderBlobs(mask, mask, cfg.Connectivity); err != nil {
			return nil, err
		}
	}

	labels, err := pixel.NewLabel(mask.Cols, mask.Rows)
	if err != nil {
		return nil, err
	}
	n, err := e.op.LabelBlobs(mask, labels, cfg.Connectivity)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Method:     "features",
		Target:     target,
		BlobCount:  n,
		Candidates: []Candidate{},
	}
	for _, id := range blob.Labels(labels) {
		cand, ok, err := e.score(labels, id)
		if err != nil {
			return nil, err
		}
		if ok {
			result.Candidates = append(result.Candidates, cand)
		}
	}
	sort.SliceStable(result.Candidates, func(i, j int) bool {
		return result.Candidates[i].Score < result.Candidates[j].Score
	})

	if len(result.Candidates) > 0 {
		best := result.Candidates[0]
		result.Found = true
		result.Position = best.Center
		result.Offset = best.Center.Sub(target)
		result.Score = best.Score
	}

	e.log.Debug().
		Int("blobs", n).
		Int("candidates", len(result.Candidates)).
		Bool("found", result.Found).
		Int("offset_x", result.Offset.X).
		Int("offset_y", result.Offset.Y).
		Msg("evaluated frame")
	return result, nil
}

// score computes the shape score of one blob. ok is false when the blob is
// smaller than AreaThreshold.
func (e *FeaturesEvaluator) score(labels *pixel.Image, id uint8) (Candidate, bool, error) {
	m, err := blob.ComputeMoments(labels, id)
	if err != nil {
		return Candidate{}, false, err
	}
	area := int(m.M00)
	if area < e.cfg.AreaThreshold {
		return Candidate{}, false, nil
	}
	info, err := blob.Analyse(labels, id)
	if err != nil {
		return Candidate{}, false, err
	}
	col, row, err := blob.Centroid(labels, id)
	if err != nil {
		return Candidate{}, false, err
	}

	perimeter := float64(info.Perimeter)
	roundness := blob.Roundness(float64(area), perimeter)
	eccentricity := blob.Eccentricity(m.Nu20, m.Nu02, m.Nu11)
	return Candidate{
		Label:        id,
		Center:       Point{X: col, Y: row},
		Area:         area,
		Perimeter:    perimeter,
		Roundness:    roundness,
		Eccentricity: eccentricity,
		Score:        (1 - roundness + eccentricity) / 2,
	}, true, nil
}
