package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeScene writes a 120x110 gray PNG with a bright disc of radius 25 at
// (70,40) and a bright 61x10 bar at rows 85-94 on a dark background. It
// returns the path and the number of bright disc pixels.
func writeScene(t *testing.T) (string, int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 120, 110))
	discPixels := 0
	for y := 0; y < 110; y++ {
		for x := 0; x < 120; x++ {
			v := uint8(20)
			dx, dy := x-70, y-40
			switch {
			case dx*dx+dy*dy <= 25*25:
				v = 200
				discPixels++
			case y >= 85 && y <= 94 && x >= 5 && x <= 65:
				v = 200
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	path := filepath.Join(t.TempDir(), "scene.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path, discPixels
}

const barPixels = 61 * 10

// callTool runs a tools/call request and decodes the JSON text content.
// It returns the MCP error instead when the call fails.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) (map[string]interface{}, *MCPError) {
	t.Helper()
	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), &out); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
	return out, nil
}

// mustCall is callTool for calls expected to succeed.
func mustCall(t *testing.T, s *Server, name string, args map[string]interface{}) map[string]interface{} {
	t.Helper()
	out, mcpErr := callTool(t, s, name, args)
	if mcpErr != nil {
		t.Fatalf("%s failed: %s: %v", name, mcpErr.Message, mcpErr.Data)
	}
	return out
}

// expectToolError asserts that the call fails with code -32000.
func expectToolError(t *testing.T, s *Server, name string, args map[string]interface{}) {
	t.Helper()
	_, mcpErr := callTool(t, s, name, args)
	if mcpErr == nil {
		t.Fatalf("%s should fail for %v", name, args)
	}
	if mcpErr.Code != -32000 {
		t.Errorf("error code: got %d, want -32000", mcpErr.Code)
	}
}

func num(t *testing.T, m map[string]interface{}, key string) float64 {
	t.Helper()
	v, ok := m[key].(float64)
	if !ok {
		t.Fatalf("%s: got %v (%T), want a number", key, m[key], m[key])
	}
	return v
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	resp := newTestServer().handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("got %+v, want -32602", resp.Error)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	expectToolError(t, newTestServer(), "image_ocr_full", map[string]interface{}{})
}

func TestImageLoadAndDimensions(t *testing.T) {
	s := newTestServer()
	path, _ := writeScene(t)

	info := mustCall(t, s, "image_load", map[string]interface{}{"path": path})
	if num(t, info, "width") != 120 || num(t, info, "height") != 110 {
		t.Errorf("size: got %vx%v, want 120x110", info["width"], info["height"])
	}
	if info["format"] != "png" || info["grayscale"] != true {
		t.Errorf("format %v grayscale %v", info["format"], info["grayscale"])
	}

	dims := mustCall(t, s, "image_dimensions", map[string]interface{}{"path": path})
	if num(t, dims, "width") != 120 || num(t, dims, "height") != 110 {
		t.Errorf("dimensions: got %v", dims)
	}

	expectToolError(t, s, "image_load", map[string]interface{}{"path": "/nonexistent.png"})
}

func TestImageCrop(t *testing.T) {
	s := newTestServer()
	path, _ := writeScene(t)

	out := mustCall(t, s, "image_crop", map[string]interface{}{"path": path, "region_name": "top-left"})
	if num(t, out, "width") != 60 || num(t, out, "height") != 55 {
		t.Errorf("crop size: got %vx%v, want 60x55", out["width"], out["height"])
	}

	out = mustCall(t, s, "image_crop", map[string]interface{}{
		"path":   path,
		"region": map[string]int{"x1": 10, "y1": 10, "x2": 30, "y2": 20},
		"scale":  2,
	})
	if num(t, out, "width") != 40 || num(t, out, "height") != 20 {
		t.Errorf("scaled crop: got %vx%v, want 40x20", out["width"], out["height"])
	}

	expectToolError(t, s, "image_crop", map[string]interface{}{"path": path})
	expectToolError(t, s, "image_crop", map[string]interface{}{
		"path":        path,
		"region":      map[string]int{"x1": 0, "y1": 0, "x2": 10, "y2": 10},
		"region_name": "center",
	})
}

func TestImageFilter(t *testing.T) {
	s := newTestServer()
	path, _ := writeScene(t)

	out := mustCall(t, s, "image_filter", map[string]interface{}{"path": path, "operation": "median", "render": true})
	if out["operation"] != "median" || num(t, out, "size") != 3 {
		t.Errorf("unexpected header: %v", out)
	}
	if num(t, out, "min") != 20 || num(t, out, "max") != 200 {
		t.Errorf("range: got %v..%v, want 20..200", out["min"], out["max"])
	}
	if _, ok := out["image"].(map[string]interface{}); !ok {
		t.Error("render requested but no image returned")
	}

	out = mustCall(t, s, "image_filter", map[string]interface{}{"path": path, "operation": "max", "stretch": true})
	if num(t, out, "min") != 0 || num(t, out, "max") != 255 {
		t.Errorf("stretched range: got %v..%v, want 0..255", out["min"], out["max"])
	}

	expectToolError(t, s, "image_filter", map[string]interface{}{"path": path, "operation": "median", "size": 2})
	expectToolError(t, s, "image_filter", map[string]interface{}{"path": path, "operation": "mode"})
}

func TestImageCacheClear(t *testing.T) {
	s := newTestServer()
	path, _ := writeScene(t)
	mustCall(t, s, "image_dimensions", map[string]interface{}{"path": path})

	out := mustCall(t, s, "image_cache_clear", nil)
	if num(t, out, "cleared") != 1 {
		t.Errorf("cleared: got %v, want 1", out["cleared"])
	}
	if s.cache.Len() != 0 {
		t.Errorf("cache still holds %d images", s.cache.Len())
	}
}

func TestBlobThreshold(t *testing.T) {
	s := newTestServer()
	path, disc := writeScene(t)
	bright := float64(disc + barPixels)

	out := mustCall(t, s, "blob_threshold", map[string]interface{}{"path": path})
	if out["method"] != "otsu" {
		t.Errorf("method: got %v, want otsu", out["method"])
	}
	if level := num(t, out, "level"); level <= 20 || level > 200 {
		t.Errorf("otsu level %v does not split 20 from 200", level)
	}
	if num(t, out, "foreground_pixels") != bright {
		t.Errorf("foreground: got %v, want %v", out["foreground_pixels"], bright)
	}

	out = mustCall(t, s, "blob_threshold", map[string]interface{}{
		"path": path, "method": "range", "low": 100, "high": 255, "render": true,
	})
	if num(t, out, "level") != 100 || num(t, out, "foreground_pixels") != bright {
		t.Errorf("range threshold: got %v", out)
	}

	out = mustCall(t, s, "blob_threshold", map[string]interface{}{
		"path": path, "method": "level", "level": 100, "brightness": "dark",
	})
	if num(t, out, "foreground_pixels") != 120*110-bright {
		t.Errorf("dark foreground: got %v", out["foreground_pixels"])
	}

	out = mustCall(t, s, "blob_threshold", map[string]interface{}{"path": path, "method": "two_means", "region_name": "top-left"})
	if num(t, out, "width") != 60 {
		t.Errorf("region not applied: width %v", out["width"])
	}

	expectToolError(t, s, "blob_threshold", map[string]interface{}{"path": path, "method": "level"})
	expectToolError(t, s, "blob_threshold", map[string]interface{}{"path": path, "method": "range", "low": 300})
	expectToolError(t, s, "blob_threshold", map[string]interface{}{"path": path, "method": "magic"})
	expectToolError(t, s, "blob_threshold", map[string]interface{}{"path": path, "brightness": "grey"})
	expectToolError(t, s, "blob_threshold", map[string]interface{}{})
}

func TestBlobLabel(t *testing.T) {
	s := newTestServer()
	path, disc := writeScene(t)

	out := mustCall(t, s, "blob_label", map[string]interface{}{
		"path": path, "method": "range", "low": 100, "render": true,
	})
	if num(t, out, "blob_count") != 2 {
		t.Fatalf("blob_count: got %v, want 2", out["blob_count"])
	}
	if num(t, out, "connectivity") != 8 {
		t.Errorf("default connectivity: got %v, want 8", out["connectivity"])
	}
	blobs := out["blobs"].([]interface{})
	if len(blobs) != 2 {
		t.Fatalf("got %d blobs, want 2", len(blobs))
	}

	first := blobs[0].(map[string]interface{})
	if num(t, first, "label") != 1 || num(t, first, "pixel_count") != float64(disc) {
		t.Errorf("disc blob: got %v", first)
	}
	centroid := first["centroid"].(map[string]interface{})
	if num(t, centroid, "x") != 70 || num(t, centroid, "y") != 40 {
		t.Errorf("disc centroid: got %v", centroid)
	}
	if num(t, first, "roundness") < 0.8 {
		t.Errorf("disc roundness %v", first["roundness"])
	}

	second := blobs[1].(map[string]interface{})
	if num(t, second, "width") != 61 || num(t, second, "height") != 10 {
		t.Errorf("bar size: got %vx%v, want 61x10", second["width"], second["height"])
	}
	if _, ok := out["image"].(map[string]interface{}); !ok {
		t.Error("render requested but no image returned")
	}

	out = mustCall(t, s, "blob_label", map[string]interface{}{
		"path": path, "method": "range", "low": 100, "min_area": 1000, "connectivity": "4",
	})
	if num(t, out, "blob_count") != 2 || len(out["blobs"].([]interface{})) != 1 {
		t.Errorf("min_area should only filter the listing: %v", out)
	}
	if num(t, out, "connectivity") != 4 {
		t.Errorf("connectivity: got %v, want 4", out["connectivity"])
	}

	expectToolError(t, s, "blob_label", map[string]interface{}{"path": path, "connectivity": 6})
	expectToolError(t, s, "blob_label", map[string]interface{}{
		"path": path, "morph": map[string]interface{}{"operation": "tophat", "radius": 2},
	})
}

func TestBlobLabel_Cleanup(t *testing.T) {
	s := newTestServer()
	path, _ := writeScene(t)

	// Opening with a radius larger than half the bar height removes the bar.
	out := mustCall(t, s, "blob_label", map[string]interface{}{
		"path": path, "method": "range", "low": 100,
		"morph":               map[string]interface{}{"operation": "open", "radius": 6},
		"fill_holes":          true,
		"remove_border_blobs": true,
	})
	if num(t, out, "blob_count") != 1 {
		t.Errorf("blob_count: got %v, want 1", out["blob_count"])
	}
}

func TestBlobWatershed(t *testing.T) {
	s := newTestServer()
	path, disc := writeScene(t)

	out := mustCall(t, s, "blob_watershed", map[string]interface{}{"path": path, "min_height": 100})
	if num(t, out, "basin_count") != 2 {
		t.Fatalf("basin_count: got %v, want 2", out["basin_count"])
	}
	basins := out["basins"].([]interface{})
	if num(t, basins[0].(map[string]interface{}), "pixel_count") != float64(disc) {
		t.Errorf("first basin: got %v", basins[0])
	}

	out = mustCall(t, s, "blob_watershed", map[string]interface{}{"path": path, "render": true})
	if num(t, out, "basin_count") != 1 {
		t.Errorf("flooding from 0: got %v basins, want 1", out["basin_count"])
	}

	out = mustCall(t, s, "blob_watershed", map[string]interface{}{"path": path, "invert": true, "min_height": 100})
	if num(t, out, "basin_count") != 1 {
		t.Errorf("inverted background: got %v basins, want 1", out["basin_count"])
	}

	expectToolError(t, s, "blob_watershed", map[string]interface{}{"path": path, "max_height": 256})
}

func TestBlobAnalyse(t *testing.T) {
	s := newTestServer()
	path, disc := writeScene(t)

	out := mustCall(t, s, "blob_analyse", map[string]interface{}{
		"path": path, "method": "range", "low": 100, "label": 1,
		"orders": [][2]int{{2, 0}, {1, 1}},
	})
	if num(t, out, "pixel_count") != float64(disc) {
		t.Errorf("pixel_count: got %v, want %d", out["pixel_count"], disc)
	}
	moments := out["moments"].(map[string]interface{})
	if num(t, moments, "m00") != float64(disc) {
		t.Errorf("m00: got %v", moments["m00"])
	}
	if math.Abs(num(t, moments, "centroid_col")-70) > 1e-9 {
		t.Errorf("centroid_col: got %v", moments["centroid_col"])
	}

	normalized := out["normalized_moments"].([]interface{})
	if len(normalized) != 2 {
		t.Fatalf("got %d normalized moments, want 2", len(normalized))
	}
	nu20 := num(t, normalized[0].(map[string]interface{}), "value")
	// A disc has nu20 close to 1/(4π)
	if math.Abs(nu20-1/(4*math.Pi)) > 0.005 {
		t.Errorf("nu20: got %v", nu20)
	}
	if nu11 := num(t, normalized[1].(map[string]interface{}), "value"); math.Abs(nu11) > 1e-9 {
		t.Errorf("nu11: got %v, want 0", nu11)
	}

	axes := out["axes"].(map[string]interface{})
	if math.Abs(num(t, axes, "major")-50) > 2 {
		t.Errorf("major axis: got %v, want about 50", axes["major"])
	}

	expectToolError(t, s, "blob_analyse", map[string]interface{}{"path": path, "label": 0})
	expectToolError(t, s, "blob_analyse", map[string]interface{}{"path": path, "method": "range", "low": 100, "label": 9})
}

func TestBlobEdges(t *testing.T) {
	s := newTestServer()
	path, _ := writeScene(t)

	out := mustCall(t, s, "blob_edges", map[string]interface{}{"path": path, "method": "range", "low": 100, "render": true})
	edges := num(t, out, "edge_pixels")
	if edges <= 0 || edges >= num(t, out, "foreground_pixels") {
		t.Errorf("edge pixels %v of %v foreground", edges, out["foreground_pixels"])
	}
}

func TestWellEvaluate_Features(t *testing.T) {
	s := newTestServer()
	path, _ := writeScene(t)

	out := mustCall(t, s, "well_evaluate", map[string]interface{}{
		"paths":          []string{path, path},
		"working_width":  0,
		"area_threshold": 300,
		"morph_radius":   2,
		"target":         map[string]int{"x": 60, "y": 30},
		"render":         true,
	})
	if out["method"] != "features" {
		t.Errorf("method: got %v", out["method"])
	}
	if num(t, out, "found") != 2 || out["stable"] != true {
		t.Fatalf("found %v stable %v, want 2 and true", out["found"], out["stable"])
	}

	frames := out["frames"].([]interface{})
	frame := frames[0].(map[string]interface{})
	result := frame["result"].(map[string]interface{})
	position := result["position"].(map[string]interface{})
	if math.Abs(num(t, position, "x")-70) > 1 || math.Abs(num(t, position, "y")-40) > 1 {
		t.Errorf("position: got %v, want about (70,40)", position)
	}
	offset := frame["offset"].(map[string]interface{})
	if math.Abs(num(t, offset, "distance_pixels")-math.Hypot(10, 10)) > 1.5 {
		t.Errorf("offset distance: got %v", offset["distance_pixels"])
	}
	if _, ok := frame["image"].(map[string]interface{}); !ok {
		t.Error("render requested but no image returned")
	}
}

func TestWellEvaluate_NotFound(t *testing.T) {
	s := newTestServer()
	path, _ := writeScene(t)

	out := mustCall(t, s, "well_evaluate", map[string]interface{}{"path": path, "working_width": 0})
	if num(t, out, "found") != 0 || out["stable"] != false {
		t.Errorf("default area threshold should reject the small scene: %v", out)
	}
	frame := out["frames"].([]interface{})[0].(map[string]interface{})
	if _, ok := frame["offset"]; ok {
		t.Error("offset reported without a find")
	}
}

func TestWellEvaluate_Errors(t *testing.T) {
	s := newTestServer()
	path, _ := writeScene(t)

	expectToolError(t, s, "well_evaluate", map[string]interface{}{})
	expectToolError(t, s, "well_evaluate", map[string]interface{}{"path": path, "method": "template"})
	expectToolError(t, s, "well_evaluate", map[string]interface{}{"path": path, "threshold": -1})
	expectToolError(t, s, "well_evaluate", map[string]interface{}{"path": "/nonexistent.png"})

	// Radii that cannot fit the frame are a config error, not a miss.
	expectToolError(t, s, "well_evaluate", map[string]interface{}{
		"path": path, "method": "hough", "min_radius": 50, "max_radius": 10,
	})
}
