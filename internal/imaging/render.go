package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

// goldenAngle spreads consecutive label hues around the color wheel.
const goldenAngle = 137.508

// DefaultMarkerColor is used when a marker has no color.
const DefaultMarkerColor = "#ff0000"

// Marker is a cross drawn on top of a rendered buffer.
type Marker struct {
	X int `json:"x"`
	Y int `json:"y"`

	// Color is a "#rrggbb" or "#rgb" hex string. Empty selects
	// DefaultMarkerColor.
	Color string `json:"color,omitempty"`

	// Size is the arm length of the cross in pixels. Zero selects 3.
	Size int `json:"size,omitempty"`
}

// RenderResult contains a rendered buffer as a base64 PNG.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// LabelColor returns the display color of a blob label. Label 0 is black;
// other labels get fully opaque colors whose hues advance by the golden
// angle, so neighboring ids stay distinguishable.
func LabelColor(label uint8) color.RGBA {
	if label == 0 {
		return color.RGBA{A: 255}
	}
	hue := math.Mod(float64(label)*goldenAngle, 360)
	r, g, b := colorful.Hsv(hue, 0.65, 0.95).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Render draws img as a PNG and overlays markers.
//
// Label buffers are colored with LabelColor, binary buffers are black and
// white, gray buffers keep their values. Markers partly outside the image
// are clipped.
func Render(img *pixel.Image, markers []Marker) (*RenderResult, error) {
	if img == nil {
		return nil, fmt.Errorf("nothing to render")
	}
	out := image.NewRGBA(image.Rect(0, 0, img.Cols, img.Rows))
	for i, v := range img.Pix {
		var c color.RGBA
		switch img.Kind {
		case pixel.KindLabel:
			c = LabelColor(v)
		case pixel.KindBinary:
			if v != 0 {
				v = 255
			}
			c = color.RGBA{R: v, G: v, B: v, A: 255}
		default:
			c = color.RGBA{R: v, G: v, B: v, A: 255}
		}
		out.SetRGBA(i%img.Cols, i/img.Cols, c)
	}

	for _, m := range markers {
		if err := drawCross(out, m); err != nil {
			return nil, err
		}
	}

	encoded, err := encodePNG(out)
	if err != nil {
		return nil, err
	}
	return &RenderResult{
		Width:       img.Cols,
		Height:      img.Rows,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

func drawCross(img *image.RGBA, m Marker) error {
	hex := m.Color
	if hex == "" {
		hex = DefaultMarkerColor
	}
	col, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("invalid marker color %q: %w", m.Color, err)
	}
	r, g, b := col.RGB255()
	c := color.RGBA{R: r, G: g, B: b, A: 255}

	size := m.Size
	if size <= 0 {
		size = 3
	}
	bounds := img.Bounds()
	for d := -size; d <= size; d++ {
		if p := image.Pt(m.X+d, m.Y); p.In(bounds) {
			img.SetRGBA(p.X, p.Y, c)
		}
		if p := image.Pt(m.X, m.Y+d); p.In(bounds) {
			img.SetRGBA(p.X, p.Y, c)
		}
	}
	return nil
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
