package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

func enumProp(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        values,
		"description": description,
	}
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// merge combines property sets; later sets win on conflicts.
func merge(sets ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

var regionSchema = map[string]interface{}{
	"type":        "object",
	"description": "Rectangular region of interest; (x1,y1) inclusive, (x2,y2) exclusive",
	"properties": map[string]interface{}{
		"x1": map[string]interface{}{"type": "integer"},
		"y1": map[string]interface{}{"type": "integer"},
		"x2": map[string]interface{}{"type": "integer"},
		"y2": map[string]interface{}{"type": "integer"},
	},
	"required": []string{"x1", "y1", "x2", "y2"},
}

var regionNames = []string{"full", "top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center"}

// sourceProperties select and prepare the frame every blob tool works on.
func sourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path":          prop("string", "Absolute path to the image file"),
		"region":        regionSchema,
		"region_name":   enumProp("Named region to analyse instead of an explicit region", regionNames...),
		"working_width": prop("integer", "Resize the (cropped) frame to this width before analysis. 0 keeps the size"),
		"reload":        prop("boolean", "Drop the cached copy and read the file again, for frames rewritten in place"),
	}
}

func thresholdProperties() map[string]interface{} {
	return map[string]interface{}{
		"method":      enumProp("Threshold method. Default otsu", "otsu", "two_means", "level", "range"),
		"level":       prop("integer", "Threshold level (0-255) for method=level"),
		"low":         prop("integer", "Lowest foreground value for method=range. Default 0"),
		"high":        prop("integer", "Highest foreground value for method=range. Default 255"),
		"brightness":  enumProp("Which side of the level is foreground. Default bright", "bright", "dark"),
		"blur_radius": prop("number", "Gaussian blur radius applied before thresholding. 0 disables"),
	}
}

func maskProperties() map[string]interface{} {
	return merge(sourceProperties(), thresholdProperties(), map[string]interface{}{
		"connectivity": enumProp("Pixel connectivity. Default 8", "4", "8"),
		"morph": map[string]interface{}{
			"type":        "object",
			"description": "Optional morphological clean-up of the thresholded mask",
			"properties": map[string]interface{}{
				"operation":  enumProp("Operation", "erode", "dilate", "open", "close"),
				"radius":     prop("number", "Structuring element radius in pixels"),
				"iterations": prop("integer", "Repeat count. Default 1"),
			},
			"required": []string{"operation", "radius"},
		},
		"fill_holes":          prop("boolean", "Fill background enclosed by foreground"),
		"remove_border_blobs": prop("boolean", "Drop blobs touching the frame edge"),
	})
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and color depth.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": prop("string", "Absolute path to the image file"),
			}, "path"),
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": prop("string", "Absolute path to the image file"),
			}, "path"),
		},
		{
			Name:        "image_crop",
			Description: "Crop a region from an image and return it as base64-encoded PNG. Use it to preview a region of interest before running blob tools on it.",
			InputSchema: objectSchema(map[string]interface{}{
				"path":        prop("string", "Absolute path to the image file"),
				"region":      regionSchema,
				"region_name": enumProp("Named region, used when region is absent", regionNames...),
				"scale":       prop("number", "Optional scale factor (e.g., 2.0 to double size). Default 1.0"),
			}, "path"),
		},
		{
			Name:        "image_filter",
			Description: "Apply a window filter (average, harmonic, max, min, midpoint, median, range) to the grayscale frame.",
			InputSchema: objectSchema(merge(sourceProperties(), map[string]interface{}{
				"operation": enumProp("Window statistic", "average", "harmonic", "max", "min", "midpoint", "median", "range"),
				"size":      prop("integer", "Odd window size. Default 3"),
				"stretch":   prop("boolean", "Stretch the result to the full 0-255 range"),
				"render":    prop("boolean", "Include the filtered frame as base64 PNG"),
			}), "path", "operation"),
		},
		{
			Name:        "image_cache_clear",
			Description: "Forget every cached image so the next call reads files from disk.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},

		// Blob operations
		{
			Name:        "blob_threshold",
			Description: "Threshold the grayscale frame into a binary mask and report the level used and the foreground pixel count.",
			InputSchema: objectSchema(merge(sourceProperties(), thresholdProperties(), map[string]interface{}{
				"render": prop("boolean", "Include the mask as base64 PNG"),
			}), "path"),
		},
		{
			Name:        "blob_label",
			Description: "Threshold the frame, optionally clean the mask, label connected blobs and report per-blob size, bounding box, perimeter, centroid and shape.",
			InputSchema: objectSchema(merge(maskProperties(), map[string]interface{}{
				"min_area": prop("integer", "Omit blobs with fewer pixels from the listing"),
				"render":   prop("boolean", "Include the label image as base64 PNG with centroid markers"),
			}), "path"),
		},
		{
			Name:        "blob_watershed",
			Description: "Segment the grayscale frame into catchment basins by flooding from min_height to max_height and report each basin.",
			InputSchema: objectSchema(merge(sourceProperties(), map[string]interface{}{
				"connectivity": enumProp("Pixel connectivity. Default 8", "4", "8"),
				"min_height":   prop("integer", "Pixels below this height are excluded. Default 0"),
				"max_height":   prop("integer", "Highest flooding level. Default 255"),
				"invert":       prop("boolean", "Invert the frame first so bright regions become basins"),
				"blur_radius":  prop("number", "Gaussian blur radius applied first. 0 disables"),
				"render":       prop("boolean", "Include the basin image as base64 PNG"),
			}), "path"),
		},
		{
			Name:        "blob_analyse",
			Description: "Label the frame like blob_label and return the full metrics of one blob: bounding box, perimeter, centroid, moments and principal axes.",
			InputSchema: objectSchema(merge(maskProperties(), map[string]interface{}{
				"label": prop("integer", "Blob id (1-254) as reported by blob_label"),
				"orders": map[string]interface{}{
					"type":        "array",
					"description": "Extra normalized central moments to compute, as [p, q] pairs",
					"items": map[string]interface{}{
						"type":     "array",
						"items":    map[string]interface{}{"type": "integer"},
						"minItems": 2,
						"maxItems": 2,
					},
				},
			}), "path", "label"),
		},
		{
			Name:        "blob_edges",
			Description: "Threshold the frame and keep only the foreground pixels that touch the background.",
			InputSchema: objectSchema(merge(maskProperties(), map[string]interface{}{
				"render": prop("boolean", "Include the edge mask as base64 PNG"),
			}), "path"),
		},

		// Well positioning
		{
			Name:        "well_evaluate",
			Description: "Locate the well in one or more frames and report its offset from the target position. The features method scores bright blobs by roundness and eccentricity; the hough method votes for circles.",
			InputSchema: objectSchema(map[string]interface{}{
				"path":                prop("string", "Absolute path to the frame"),
				"paths":               map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Several frames to evaluate; the report says whether the well stayed put"},
				"region":              regionSchema,
				"region_name":         enumProp("Named region to analyse", regionNames...),
				"working_width":       prop("integer", "Frame width the evaluation runs at. Default 410"),
				"reload":              prop("boolean", "Re-read frames from disk"),
				"method":              enumProp("Evaluation method. Default features", "features", "hough"),
				"target":              map[string]interface{}{"type": "object", "description": "Target position at working width. Default frame center", "properties": map[string]interface{}{"x": map[string]interface{}{"type": "integer"}, "y": map[string]interface{}{"type": "integer"}}},
				"threshold":           prop("integer", "features: threshold after gamma (0-255)"),
				"area_threshold":      prop("integer", "features: minimum blob area"),
				"gamma":               prop("number", "Gamma exponent"),
				"gamma_c":             prop("number", "Gamma multiplier"),
				"blur_radius":         prop("number", "Gaussian blur radius"),
				"morph_radius":        prop("number", "features: opening radius"),
				"fill_holes":          prop("boolean", "features: fill holes before labeling"),
				"remove_border_blobs": prop("boolean", "features: drop blobs touching the frame edge"),
				"min_radius":          prop("integer", "hough: smallest radius at 410 px width"),
				"max_radius":          prop("integer", "hough: largest radius at 410 px width"),
				"tolerance":           prop("number", "Largest position spread in pixels for frames to count as stable. Default 2"),
				"render":              prop("boolean", "Include each frame with the found position and the target marked"),
			}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
