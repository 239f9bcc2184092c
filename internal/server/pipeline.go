package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/blob-vision-mcp/internal/blob"
	"github.com/ironsheep/blob-vision-mcp/internal/imaging"
	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
	"github.com/ironsheep/blob-vision-mcp/internal/preprocess"
)

// sourceArgs select the frame a tool works on.
type sourceArgs struct {
	Path         string          `json:"path"`
	Region       *imaging.Region `json:"region,omitempty"`
	RegionName   string          `json:"region_name,omitempty"`
	WorkingWidth int             `json:"working_width,omitempty"`
	Reload       bool            `json:"reload,omitempty"`
}

// loadGray resolves the region and returns the frame as a gray buffer.
func (s *Server) loadGray(a sourceArgs) (*pixel.Image, error) {
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}
	region, err := s.resolveRegion(a.Path, a.Region, a.RegionName)
	if err != nil {
		return nil, err
	}
	return imaging.LoadGray(s.cache, a.Path, imaging.LoadOptions{
		Region:       region,
		WorkingWidth: a.WorkingWidth,
	})
}

// resolveRegion returns the explicit region, the named one, or nil.
func (s *Server) resolveRegion(path string, region *imaging.Region, name string) (*imaging.Region, error) {
	if name == "" {
		return region, nil
	}
	if region != nil {
		return nil, errors.New("region and region_name are mutually exclusive")
	}
	dims, err := imaging.GetDimensions(s.cache, path)
	if err != nil {
		return nil, err
	}
	r, err := imaging.NamedRegion(dims.Width, dims.Height, name)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// thresholdArgs select how a gray frame becomes a binary mask.
type thresholdArgs struct {
	Method     string  `json:"method,omitempty"`
	Level      *int    `json:"level,omitempty"`
	Low        *int    `json:"low,omitempty"`
	High       *int    `json:"high,omitempty"`
	Brightness string  `json:"brightness,omitempty"`
	BlurRadius float64 `json:"blur_radius,omitempty"`
}

// apply thresholds gray into a new binary buffer and returns the level used.
// For method=range the level is the low bound.
func (a thresholdArgs) apply(gray *pixel.Image) (*pixel.Image, uint8, error) {
	brightness, err := pixel.ParseBrightness(a.Brightness)
	if err != nil {
		return nil, 0, err
	}
	src := gray
	if a.BlurRadius > 0 {
		src = gray.Clone()
		if err := preprocess.GaussianBlur(src, src, a.BlurRadius); err != nil {
			return nil, 0, err
		}
	}
	mask, err := pixel.NewBinary(src.Cols, src.Rows)
	if err != nil {
		return nil, 0, err
	}

	var level uint8
	switch a.Method {
	case "", "otsu":
		level, err = preprocess.ThresholdOtsu(src, mask, brightness)
	case "two_means":
		level, err = preprocess.ThresholdTwoMeans(src, mask, brightness)
	case "level":
		if a.Level == nil {
			return nil, 0, errors.New("method level requires level")
		}
		if level, err = toByte("level", a.Level, 0); err == nil {
			err = preprocess.ThresholdLevel(src, mask, level, brightness)
		}
	case "range":
		var high uint8
		if level, err = toByte("low", a.Low, 0); err != nil {
			return nil, 0, err
		}
		if high, err = toByte("high", a.High, 255); err != nil {
			return nil, 0, err
		}
		err = preprocess.Threshold(src, mask, level, high)
	default:
		return nil, 0, fmt.Errorf("unknown threshold method: %s", a.Method)
	}
	if err != nil {
		return nil, 0, err
	}
	return mask, level, nil
}

type morphArgs struct {
	Operation  string  `json:"operation"`
	Radius     float64 `json:"radius"`
	Iterations int     `json:"iterations,omitempty"`
}

func (m morphArgs) config() (preprocess.MorphConfig, error) {
	op, err := preprocess.ParseMorphOp(m.Operation)
	if err != nil {
		return preprocess.MorphConfig{}, err
	}
	return preprocess.MorphConfig{Operation: op, Radius: m.Radius, Iterations: m.Iterations}, nil
}

// maskArgs describe the full frame-to-mask pipeline shared by the blob tools.
type maskArgs struct {
	sourceArgs
	thresholdArgs
	Connectivity      json.Number `json:"connectivity,omitempty"`
	Morph             *morphArgs  `json:"morph,omitempty"`
	FillHoles         bool        `json:"fill_holes,omitempty"`
	RemoveBorderBlobs bool        `json:"remove_border_blobs,omitempty"`
}

// maskResult is a cleaned binary mask and the settings that produced it.
type maskResult struct {
	mask  *pixel.Image
	conn  pixel.Connectivity
	level uint8
}

// buildMask runs load -> threshold -> morphology -> hole filling -> border
// blob removal.
func (s *Server) buildMask(a maskArgs) (*maskResult, error) {
	conn, err := pixel.ParseConnectivity(string(a.Connectivity))
	if err != nil {
		return nil, err
	}
	gray, err := s.loadGray(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	mask, level, err := a.thresholdArgs.apply(gray)
	if err != nil {
		return nil, err
	}
	if a.Morph != nil {
		cfg, err := a.Morph.config()
		if err != nil {
			return nil, err
		}
		if err := preprocess.Morph(mask, mask, cfg); err != nil {
			return nil, err
		}
	}
	if a.FillHoles {
		if err := s.op.FillHoles(mask, mask, conn); err != nil {
			return nil, err
		}
	}
	if a.RemoveBorderBlobs {
		if err := s.op.RemoveBorderBlobs(mask, mask, conn); err != nil {
			return nil, err
		}
	}
	return &maskResult{mask: mask, conn: conn, level: level}, nil
}

// label labels the mask into a new label buffer.
func (s *Server) label(m *maskResult) (*pixel.Image, int, error) {
	labels, err := pixel.NewLabel(m.mask.Cols, m.mask.Rows)
	if err != nil {
		return nil, 0, err
	}
	n, err := s.op.LabelBlobs(m.mask, labels, m.conn)
	if err != nil {
		return nil, 0, err
	}
	return labels, n, nil
}

// blobSummary is the per-blob report of blob_label and blob_watershed.
type blobSummary struct {
	blob.BlobInfo
	Centroid     imaging.Point `json:"centroid"`
	Roundness    float64       `json:"roundness"`
	Eccentricity float64       `json:"eccentricity"`
	Axes         blob.Axes     `json:"axes"`
}

func summarize(labels *pixel.Image, id uint8) (blobSummary, error) {
	info, err := blob.Analyse(labels, id)
	if err != nil {
		return blobSummary{}, err
	}
	col, row, err := blob.Centroid(labels, id)
	if err != nil {
		return blobSummary{}, err
	}
	m, err := blob.ComputeMoments(labels, id)
	if err != nil {
		return blobSummary{}, err
	}
	axes, err := blob.PrincipalAxes(labels, id)
	if err != nil {
		return blobSummary{}, err
	}
	return blobSummary{
		BlobInfo:     info,
		Centroid:     imaging.Point{X: col, Y: row},
		Roundness:    blob.Roundness(m.M00, float64(info.Perimeter)),
		Eccentricity: blob.Eccentricity(m.Nu20, m.Nu02, m.Nu11),
		Axes:         axes,
	}, nil
}

// summarizeAll reports every label with at least minArea pixels.
func summarizeAll(labels *pixel.Image, minArea int) ([]blobSummary, error) {
	out := []blobSummary{}
	for _, id := range blob.Labels(labels) {
		sum, err := summarize(labels, id)
		if err != nil {
			return nil, err
		}
		if int(sum.PixelCount) < minArea {
			continue
		}
		out = append(out, sum)
	}
	return out, nil
}

// toByte validates an optional 0-255 argument.
func toByte(name string, v *int, def uint8) (uint8, error) {
	if v == nil {
		return def, nil
	}
	if *v < 0 || *v > 255 {
		return 0, fmt.Errorf("%s must be in 0..255, got %d", name, *v)
	}
	return uint8(*v), nil
}
