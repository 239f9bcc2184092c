package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/blob-vision-mcp/internal/evaluator"
	"github.com/ironsheep/blob-vision-mcp/internal/imaging"
)

// defaultWorkingWidth is the frame width the evaluator defaults are tuned for.
const defaultWorkingWidth = 410

type wellEvaluateArgs struct {
	Path         string          `json:"path"`
	Paths        []string        `json:"paths"`
	Region       *imaging.Region `json:"region,omitempty"`
	RegionName   string          `json:"region_name,omitempty"`
	WorkingWidth *int            `json:"working_width,omitempty"`
	Reload       bool            `json:"reload"`
	Method       string          `json:"method"`
	Target       *imaging.Point  `json:"target,omitempty"`

	Threshold         *int     `json:"threshold,omitempty"`
	AreaThreshold     *int     `json:"area_threshold,omitempty"`
	Gamma             *float64 `json:"gamma,omitempty"`
	GammaC            *float64 `json:"gamma_c,omitempty"`
	BlurRadius        *float64 `json:"blur_radius,omitempty"`
	MorphRadius       *float64 `json:"morph_radius,omitempty"`
	FillHoles         bool     `json:"fill_holes"`
	RemoveBorderBlobs bool     `json:"remove_border_blobs"`
	MinRadius         *int     `json:"min_radius,omitempty"`
	MaxRadius         *int     `json:"max_radius,omitempty"`

	Tolerance *float64 `json:"tolerance,omitempty"`
	Render    bool     `json:"render"`
}

type frameReport struct {
	Path   string                `json:"path"`
	Width  int                   `json:"width"`
	Height int                   `json:"height"`
	Result *evaluator.Result     `json:"result"`
	Offset *imaging.OffsetResult `json:"offset,omitempty"`
	Image  *imaging.RenderResult `json:"image,omitempty"`
}

type wellEvaluateResult struct {
	Method string        `json:"method"`
	Frames []frameReport `json:"frames"`

	// Found counts frames in which a well was located.
	Found int `json:"found"`

	// Stable reports whether the well positions of all frames with a find
	// stay within the tolerance; MeanX and MeanY are their average.
	Stable bool    `json:"stable"`
	MeanX  float64 `json:"mean_x"`
	MeanY  float64 `json:"mean_y"`
}

func (s *Server) handleWellEvaluate(args json.RawMessage) (interface{}, error) {
	var a wellEvaluateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	paths := a.Paths
	if a.Path != "" {
		paths = append([]string{a.Path}, paths...)
	}
	if len(paths) == 0 {
		return nil, errors.New("path or paths is required")
	}

	ev, method, err := s.newEvaluator(a)
	if err != nil {
		return nil, err
	}
	width := defaultWorkingWidth
	if a.WorkingWidth != nil {
		width = *a.WorkingWidth
	}
	tolerance := 2.0
	if a.Tolerance != nil {
		tolerance = *a.Tolerance
	}

	res := &wellEvaluateResult{Method: method, Frames: make([]frameReport, 0, len(paths))}
	var found []imaging.Point
	for _, path := range paths {
		report, err := s.evaluateFrame(ev, a, path, width)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if report.Result.Found {
			p := report.Result.Position
			found = append(found, imaging.Point{X: p.X, Y: p.Y})
		}
		res.Frames = append(res.Frames, *report)
	}

	res.Found = len(found)
	res.Stable, res.MeanX, res.MeanY = imaging.Aligned(found, tolerance)
	if len(found) == 0 {
		res.Stable = false
	}
	return res, nil
}

func (s *Server) evaluateFrame(ev evaluator.Evaluator, a wellEvaluateArgs, path string, width int) (*frameReport, error) {
	frame, err := s.loadGray(sourceArgs{
		Path:         path,
		Region:       a.Region,
		RegionName:   a.RegionName,
		WorkingWidth: width,
		Reload:       a.Reload,
	})
	if err != nil {
		return nil, err
	}

	target := evaluator.Point{X: frame.Cols / 2, Y: frame.Rows / 2}
	if a.Target != nil {
		target = evaluator.Point{X: a.Target.X, Y: a.Target.Y}
	}
	result, err := ev.Evaluate(frame, target)
	if err != nil {
		return nil, err
	}

	report := &frameReport{Path: path, Width: frame.Cols, Height: frame.Rows, Result: result}
	if result.Found {
		report.Offset = imaging.MeasureOffset(
			imaging.Point{X: target.X, Y: target.Y},
			imaging.Point{X: result.Position.X, Y: result.Position.Y},
			frame.Cols, frame.Rows)
	}
	if a.Render {
		markers := []imaging.Marker{{X: target.X, Y: target.Y, Color: "#00ff00", Size: 5}}
		if result.Found {
			markers = append(markers, imaging.Marker{X: result.Position.X, Y: result.Position.Y, Size: 5})
		}
		if report.Image, err = imaging.Render(frame, markers); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// newEvaluator builds the evaluator selected by a with its overrides applied.
func (s *Server) newEvaluator(a wellEvaluateArgs) (evaluator.Evaluator, string, error) {
	switch a.Method {
	case "", "features":
		cfg := evaluator.DefaultFeaturesConfig()
		threshold, err := toByte("threshold", a.Threshold, cfg.Threshold)
		if err != nil {
			return nil, "", err
		}
		cfg.Threshold = threshold
		if a.AreaThreshold != nil {
			cfg.AreaThreshold = *a.AreaThreshold
		}
		setFloat(&cfg.Gamma, a.Gamma)
		setFloat(&cfg.GammaC, a.GammaC)
		setFloat(&cfg.BlurRadius, a.BlurRadius)
		setFloat(&cfg.Morph.Radius, a.MorphRadius)
		cfg.FillHoles = a.FillHoles
		cfg.RemoveBorderBlobs = a.RemoveBorderBlobs
		return evaluator.NewFeaturesEvaluator(s.op, cfg, s.log), "features", nil

	case "hough":
		cfg := evaluator.DefaultHoughConfig()
		setFloat(&cfg.Gamma, a.Gamma)
		setFloat(&cfg.GammaC, a.GammaC)
		setFloat(&cfg.BlurRadius, a.BlurRadius)
		if a.MinRadius != nil {
			cfg.MinRadius = *a.MinRadius
		}
		if a.MaxRadius != nil {
			cfg.MaxRadius = *a.MaxRadius
		}
		return evaluator.NewHoughEvaluator(cfg, s.log), "hough", nil

	default:
		return nil, "", fmt.Errorf("unknown evaluation method: %s", a.Method)
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
