package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/blob-vision-mcp/internal/blob"
	"github.com/ironsheep/blob-vision-mcp/internal/imaging"
	"github.com/ironsheep/blob-vision-mcp/internal/pixel"
	"github.com/ironsheep/blob-vision-mcp/internal/preprocess"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "blob_label").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Debug().
		Str("tool", params.Name).
		Dur("elapsed", time.Since(start)).
		Msg("tool call")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	// Image information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_crop":
		return s.handleImageCrop(args)
	case "image_filter":
		return s.handleImageFilter(args)
	case "image_cache_clear":
		return s.handleImageCacheClear()

	// Blob operations
	case "blob_threshold":
		return s.handleBlobThreshold(args)
	case "blob_label":
		return s.handleBlobLabel(args)
	case "blob_watershed":
		return s.handleBlobWatershed(args)
	case "blob_analyse":
		return s.handleBlobAnalyse(args)
	case "blob_edges":
		return s.handleBlobEdges(args)

	// Well positioning
	case "well_evaluate":
		return s.handleWellEvaluate(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageCropArgs struct {
	Path       string          `json:"path"`
	Region     *imaging.Region `json:"region,omitempty"`
	RegionName string          `json:"region_name,omitempty"`
	Scale      float64         `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	region, err := s.resolveRegion(a.Path, a.Region, a.RegionName)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, errors.New("region or region_name is required")
	}
	return imaging.Crop(img, *region, a.Scale)
}

type imageFilterArgs struct {
	sourceArgs
	Operation string `json:"operation"`
	Size      int    `json:"size"`
	Stretch   bool   `json:"stretch"`
	Render    bool   `json:"render"`
}

type imageFilterResult struct {
	Operation string                `json:"operation"`
	Size      int                   `json:"size"`
	Width     int                   `json:"width"`
	Height    int                   `json:"height"`
	Min       uint8                 `json:"min"`
	Max       uint8                 `json:"max"`
	Image     *imaging.RenderResult `json:"image,omitempty"`
}

func (s *Server) handleImageFilter(args json.RawMessage) (interface{}, error) {
	var a imageFilterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Size == 0 {
		a.Size = 3
	}
	op, err := preprocess.ParseFilterOp(a.Operation)
	if err != nil {
		return nil, err
	}
	gray, err := s.loadGray(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	if err := preprocess.NonlinearFilter(gray, gray, op, a.Size); err != nil {
		return nil, err
	}
	if a.Stretch {
		if err := preprocess.ContrastStretchFast(gray, gray); err != nil {
			return nil, err
		}
	}

	lo, hi := pixel.MinMax(gray)
	res := &imageFilterResult{
		Operation: op.String(),
		Size:      a.Size,
		Width:     gray.Cols,
		Height:    gray.Rows,
		Min:       lo,
		Max:       hi,
	}
	if a.Render {
		if res.Image, err = imaging.Render(gray, nil); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Server) handleImageCacheClear() (interface{}, error) {
	n := s.cache.Len()
	s.cache.Clear()
	return map[string]int{"cleared": n}, nil
}

// === Blob Operation Handlers ===

type blobThresholdArgs struct {
	sourceArgs
	thresholdArgs
	Render bool `json:"render"`
}

type blobThresholdResult struct {
	Method     string                `json:"method"`
	Level      uint8                 `json:"level"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Foreground int                   `json:"foreground_pixels"`
	Image      *imaging.RenderResult `json:"image,omitempty"`
}

func (s *Server) handleBlobThreshold(args json.RawMessage) (interface{}, error) {
	var a blobThresholdArgs
	if err := json.Unmarshal(args, &a); err != nil {
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

	res := &blobThresholdResult{
		Method:     a.Method,
		Level:      level,
		Width:      mask.Cols,
		Height:     mask.Rows,
		Foreground: pixel.Count(mask, 1),
	}
	if res.Method == "" {
		res.Method = "otsu"
	}
	if a.Render {
		if res.Image, err = imaging.Render(mask, nil); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type blobLabelArgs struct {
	maskArgs
	MinArea int  `json:"min_area"`
	Render  bool `json:"render"`
}

type blobLabelResult struct {
	BlobCount    int                   `json:"blob_count"`
	Level        uint8                 `json:"level"`
	Connectivity int                   `json:"connectivity"`
	Width        int                   `json:"width"`
	Height       int                   `json:"height"`
	Blobs        []blobSummary         `json:"blobs"`
	Image        *imaging.RenderResult `json:"image,omitempty"`
}

func (s *Server) handleBlobLabel(args json.RawMessage) (interface{}, error) {
	var a blobLabelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := s.buildMask(a.maskArgs)
	if err != nil {
		return nil, err
	}
	labels, n, err := s.label(m)
	if err != nil {
		return nil, err
	}
	blobs, err := summarizeAll(labels, a.MinArea)
	if err != nil {
		return nil, err
	}

	res := &blobLabelResult{
		BlobCount:    n,
		Level:        m.level,
		Connectivity: int(m.conn),
		Width:        labels.Cols,
		Height:       labels.Rows,
		Blobs:        blobs,
	}
	if a.Render {
		if res.Image, err = imaging.Render(labels, centroidMarkers(blobs)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func centroidMarkers(blobs []blobSummary) []imaging.Marker {
	markers := make([]imaging.Marker, 0, len(blobs))
	for _, b := range blobs {
		markers = append(markers, imaging.Marker{X: b.Centroid.X, Y: b.Centroid.Y, Color: "#ffffff"})
	}
	return markers
}

type blobWatershedArgs struct {
	sourceArgs
	Connectivity json.Number `json:"connectivity,omitempty"`
	MinHeight    *int        `json:"min_height,omitempty"`
	MaxHeight    *int        `json:"max_height,omitempty"`
	Invert       bool        `json:"invert"`
	BlurRadius   float64     `json:"blur_radius"`
	Render       bool        `json:"render"`
}

type blobWatershedResult struct {
	BasinCount int                   `json:"basin_count"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Basins     []blobSummary         `json:"basins"`
	Image      *imaging.RenderResult `json:"image,omitempty"`
}

func (s *Server) handleBlobWatershed(args json.RawMessage) (interface{}, error) {
	var a blobWatershedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	conn, err := pixel.ParseConnectivity(string(a.Connectivity))
	if err != nil {
		return nil, err
	}
	minHeight, err := toByte("min_height", a.MinHeight, 0)
	if err != nil {
		return nil, err
	}
	maxHeight, err := toByte("max_height", a.MaxHeight, 255)
	if err != nil {
		return nil, err
	}

	heights, err := s.loadGray(a.sourceArgs)
	if err != nil {
		return nil, err
	}
	if err := preprocess.GaussianBlur(heights, heights, a.BlurRadius); err != nil {
		return nil, err
	}
	if a.Invert {
		if err := preprocess.Invert(heights, heights); err != nil {
			return nil, err
		}
	}

	basins, err := pixel.NewLabel(heights.Cols, heights.Rows)
	if err != nil {
		return nil, err
	}
	n, err := s.op.Watershed(heights, basins, conn, minHeight, maxHeight)
	if err != nil {
		return nil, err
	}
	summaries, err := summarizeAll(basins, 0)
	if err != nil {
		return nil, err
	}

	res := &blobWatershedResult{
		BasinCount: n,
		Width:      basins.Cols,
		Height:     basins.Rows,
		Basins:     summaries,
	}
	if a.Render {
		if res.Image, err = imaging.Render(basins, centroidMarkers(summaries)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type blobAnalyseArgs struct {
	maskArgs
	Label  int      `json:"label"`
	Orders [][2]int `json:"orders"`
}

type momentValue struct {
	P     int     `json:"p"`
	Q     int     `json:"q"`
	Value float64 `json:"value"`
}

type blobAnalyseResult struct {
	blobSummary
	Moments    blob.Moments  `json:"moments"`
	Normalized []momentValue `json:"normalized_moments,omitempty"`
}

func (s *Server) handleBlobAnalyse(args json.RawMessage) (interface{}, error) {
	var a blobAnalyseArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Label < 1 || a.Label > blob.MaxLabels {
		return nil, fmt.Errorf("label must be in 1..%d, got %d", blob.MaxLabels, a.Label)
	}
	m, err := s.buildMask(a.maskArgs)
	if err != nil {
		return nil, err
	}
	labels, _, err := s.label(m)
	if err != nil {
		return nil, err
	}

	id := uint8(a.Label)
	summary, err := summarize(labels, id)
	if err != nil {
		return nil, err
	}
	moments, err := blob.ComputeMoments(labels, id)
	if err != nil {
		return nil, err
	}
	res := &blobAnalyseResult{blobSummary: summary, Moments: moments}
	for _, pq := range a.Orders {
		v, err := blob.NormalizedCentralMoment(labels, id, pq[0], pq[1])
		if err != nil {
			return nil, err
		}
		res.Normalized = append(res.Normalized, momentValue{P: pq[0], Q: pq[1], Value: v})
	}
	return res, nil
}

type blobEdgesArgs struct {
	maskArgs
	Render bool `json:"render"`
}

type blobEdgesResult struct {
	Foreground int                   `json:"foreground_pixels"`
	EdgePixels int                   `json:"edge_pixels"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Image      *imaging.RenderResult `json:"image,omitempty"`
}

func (s *Server) handleBlobEdges(args json.RawMessage) (interface{}, error) {
	var a blobEdgesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	m, err := s.buildMask(a.maskArgs)
	if err != nil {
		return nil, err
	}
	edges, err := pixel.NewBinary(m.mask.Cols, m.mask.Rows)
	if err != nil {
		return nil, err
	}
	if err := s.op.BinaryEdgeDetect(m.mask, edges, m.conn); err != nil {
		return nil, err
	}

	res := &blobEdgesResult{
		Foreground: pixel.Count(m.mask, 1),
		EdgePixels: pixel.Count(edges, 1),
		Width:      edges.Cols,
		Height:     edges.Rows,
	}
	if a.Render {
		if res.Image, err = imaging.Render(edges, nil); err != nil {
			return nil, err
		}
	}
	return res, nil
}
