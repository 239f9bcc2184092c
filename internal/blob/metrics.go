package blob

import (
	"fmt"
	"math"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

// Perimeter weights per pixel, keyed by how many of its four orthogonal
// sides touch background.
const (
	perimeterOneSide    = 1.0
	perimeterTwoSides   = math.Sqrt2
	perimeterThreeSides = 0.5 / (1 + math.Sqrt2)
)

// BlobInfo summarizes the pixel set of one label.
type BlobInfo struct {
	// Label is the queried id.
	Label uint8 `json:"label"`

	// Height and Width are the bounding box extent in pixels.
	// Both saturate at 65535.
	Height uint16 `json:"height"`
	Width  uint16 `json:"width"`

	// PixelCount is the number of pixels holding the label, saturating at 65535.
	PixelCount uint16 `json:"pixel_count"`

	// Perimeter is the weighted boundary length. See Analyse.
	Perimeter float32 `json:"perimeter"`

	// MinCol, MinRow, MaxCol and MaxRow are the inclusive bounding box.
	MinCol int `json:"min_col"`
	MinRow int `json:"min_row"`
	MaxCol int `json:"max_col"`
	MaxRow int `json:"max_row"`
}

// Analyse computes the pixel count, bounding box and perimeter of label in a
// single pass over img.
//
// Each matching pixel adds to the perimeter according to the number e of its
// four orthogonal neighbors that are background (0). Sides on the image edge
// and sides touching another label do not count:
//
//   - e == 1 adds 1
//   - e == 2 adds √2
//   - e == 3 adds 0.5/(1+√2)
//   - e == 0 and e == 4 add nothing, so a lone pixel has perimeter 0
//
// img may be a label or binary image. Returns ErrBlobNotFound when no pixel
// holds label.
func Analyse(img *pixel.Image, label uint8) (BlobInfo, error) {
	if err := checkMetricKind(img); err != nil {
		return BlobInfo{}, err
	}

	info := BlobInfo{Label: label, MinCol: img.Cols, MinRow: img.Rows, MaxCol: -1, MaxRow: -1}
	count := 0
	perimeter := 0.0
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			if img.Pixel(c, r) != label {
				continue
			}
			count++
			info.MinCol = min(info.MinCol, c)
			info.MaxCol = max(info.MaxCol, c)
			info.MinRow = min(info.MinRow, r)
			info.MaxRow = max(info.MaxRow, r)

			switch pixel.NeighborCount(img, c, r, 0, pixel.Four) {
			case 1:
				perimeter += perimeterOneSide
			case 2:
				perimeter += perimeterTwoSides
			case 3:
				perimeter += perimeterThreeSides
			}
		}
	}
	if count == 0 {
		return BlobInfo{}, fmt.Errorf("analyse label %d: %w", label, ErrBlobNotFound)
	}

	info.PixelCount = saturate16(count)
	info.Width = saturate16(info.MaxCol - info.MinCol + 1)
	info.Height = saturate16(info.MaxRow - info.MinRow + 1)
	info.Perimeter = float32(perimeter)
	return info, nil
}

// AnalyseAll returns the BlobInfo of every label present in img, ordered by id.
func AnalyseAll(img *pixel.Image) ([]BlobInfo, error) {
	ids := Labels(img)
	infos := make([]BlobInfo, 0, len(ids))
	for _, id := range ids {
		info, err := Analyse(img, id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Centroid returns the center of mass of label, rounded to the nearest pixel.
func Centroid(img *pixel.Image, label uint8) (col, row int, err error) {
	m, err := rawMoments(img, label)
	if err != nil {
		return 0, 0, err
	}
	return int(math.Round(m.m10 / m.m00)), int(math.Round(m.m01 / m.m00)), nil
}

// NormalizedCentralMoment returns the normalized central moment nu_pq of
// label:
//
//	nu_pq = Σ (c - cc)^p (r - rc)^q / m00^((p+q)/2 + 1)
//
// where (cc, rc) is the rounded centroid from Centroid. nu_00 is 1 and nu_10
// and nu_01 are 0 by definition.
func NormalizedCentralMoment(img *pixel.Image, label uint8, p, q int) (float64, error) {
	if p < 0 || q < 0 {
		return 0, fmt.Errorf("moment (%d, %d): %w", p, q, ErrInvalidMoment)
	}
	cc, rc, err := Centroid(img, label)
	if err != nil {
		return 0, err
	}
	switch {
	case p == 0 && q == 0:
		return 1, nil
	case p+q == 1:
		return 0, nil
	}

	var sum, m00 float64
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			if img.Pixel(c, r) != label {
				continue
			}
			m00++
			sum += math.Pow(float64(c-cc), float64(p)) * math.Pow(float64(r-rc), float64(q))
		}
	}
	return sum / math.Pow(m00, float64(p+q)/2+1), nil
}

// Moments holds the raw, central and normalized second order moments of one
// label. Central moments are taken about the exact (unrounded) centroid.
type Moments struct {
	M00 float64 `json:"m00"`
	M10 float64 `json:"m10"`
	M01 float64 `json:"m01"`

	// CentroidCol and CentroidRow are M10/M00 and M01/M00.
	CentroidCol float64 `json:"centroid_col"`
	CentroidRow float64 `json:"centroid_row"`

	Mu20 float64 `json:"mu20"`
	Mu02 float64 `json:"mu02"`
	Mu11 float64 `json:"mu11"`

	Nu20 float64 `json:"nu20"`
	Nu02 float64 `json:"nu02"`
	Nu11 float64 `json:"nu11"`
}

// ComputeMoments computes Moments for label in two passes over img.
func ComputeMoments(img *pixel.Image, label uint8) (Moments, error) {
	raw, err := rawMoments(img, label)
	if err != nil {
		return Moments{}, err
	}
	m := Moments{
		M00:         raw.m00,
		M10:         raw.m10,
		M01:         raw.m01,
		CentroidCol: raw.m10 / raw.m00,
		CentroidRow: raw.m01 / raw.m00,
	}
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			if img.Pixel(c, r) != label {
				continue
			}
			dc := float64(c) - m.CentroidCol
			dr := float64(r) - m.CentroidRow
			m.Mu20 += dc * dc
			m.Mu02 += dr * dr
			m.Mu11 += dc * dr
		}
	}
	norm := m.M00 * m.M00
	m.Nu20 = m.Mu20 / norm
	m.Nu02 = m.Mu02 / norm
	m.Nu11 = m.Mu11 / norm
	return m, nil
}

type raw struct {
	m00, m10, m01 float64
}

func rawMoments(img *pixel.Image, label uint8) (raw, error) {
	if err := checkMetricKind(img); err != nil {
		return raw{}, err
	}
	var m raw
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			if img.Pixel(c, r) == label {
				m.m00++
				m.m10 += float64(c)
				m.m01 += float64(r)
			}
		}
	}
	if m.m00 == 0 {
		return raw{}, fmt.Errorf("moments of label %d: %w", label, ErrBlobNotFound)
	}
	return m, nil
}

func checkMetricKind(img *pixel.Image) error {
	if img == nil {
		return ErrNilImage
	}
	if img.Kind != pixel.KindLabel && img.Kind != pixel.KindBinary {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, img.Kind)
	}
	return nil
}

func saturate16(n int) uint16 {
	if n > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(n)
}
