package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
)

func decodeRender(t *testing.T, res *RenderResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestLabelColor(t *testing.T) {
	if c := LabelColor(0); c != (color.RGBA{A: 255}) {
		t.Errorf("label 0: got %v, want black", c)
	}

	seen := make(map[color.RGBA]uint8)
	for l := 1; l <= 20; l++ {
		c := LabelColor(uint8(l))
		if c.A != 255 {
			t.Errorf("label %d not opaque", l)
		}
		if prev, ok := seen[c]; ok {
			t.Errorf("labels %d and %d share color %v", prev, l, c)
		}
		seen[c] = uint8(l)
	}
}

func TestRender_Labels(t *testing.T) {
	img, err := pixel.FromSlice(pixel.KindLabel, 3, 1, []uint8{0, 1, 2})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	res, err := Render(img, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if res.Width != 3 || res.Height != 1 || res.MimeType != "image/png" {
		t.Errorf("unexpected result header: %+v", res)
	}

	out := decodeRender(t, res)
	for x := 0; x < 3; x++ {
		want := LabelColor(uint8(x))
		if got := rgbaAt(out, x, 0); got != want {
			t.Errorf("pixel %d: got %v, want %v", x, got, want)
		}
	}
}

func TestRender_BinaryAndGray(t *testing.T) {
	bin, _ := pixel.FromSlice(pixel.KindBinary, 2, 1, []uint8{0, 1})
	out := decodeRender(t, mustRender(t, bin, nil))
	if got := rgbaAt(out, 1, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("binary foreground: got %v, want white", got)
	}

	gray, _ := pixel.FromSlice(pixel.KindGray, 2, 1, []uint8{0, 90})
	out = decodeRender(t, mustRender(t, gray, nil))
	if got := rgbaAt(out, 1, 0); got != (color.RGBA{90, 90, 90, 255}) {
		t.Errorf("gray pixel: got %v, want 90", got)
	}
}

func mustRender(t *testing.T, img *pixel.Image, markers []Marker) *RenderResult {
	t.Helper()
	res, err := Render(img, markers)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return res
}

func TestRender_Markers(t *testing.T) {
	img, _ := pixel.NewGray(20, 20)

	out := decodeRender(t, mustRender(t, img, []Marker{
		{X: 10, Y: 10},
		{X: 0, Y: 19, Color: "#00ff00", Size: 5},
	}))

	red := color.RGBA{255, 0, 0, 255}
	for _, p := range []image.Point{{10, 10}, {7, 10}, {13, 10}, {10, 7}, {10, 13}} {
		if got := rgbaAt(out, p.X, p.Y); got != red {
			t.Errorf("cross at %v: got %v, want red", p, got)
		}
	}
	if got := rgbaAt(out, 11, 11); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("off-cross pixel painted: %v", got)
	}
	if got := rgbaAt(out, 5, 19); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("clipped cross arm: got %v, want green", got)
	}

	if _, err := Render(img, []Marker{{X: 1, Y: 1, Color: "green"}}); err == nil {
		t.Error("Render should fail for an invalid marker color")
	}
	if _, err := Render(nil, nil); err == nil {
		t.Error("Render should fail for a nil image")
	}
}
