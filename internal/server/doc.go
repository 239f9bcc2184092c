// Package server implements the MCP (Model Context Protocol) server that
// exposes the blob operators as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image information:
//   - image_load, image_dimensions: file metadata
//   - image_crop: PNG preview of a region
//   - image_filter: window filters on the grayscale frame
//   - image_cache_clear: drop cached frames
//
// Blob operations, each running load -> optional crop and resize -> grayscale:
//   - blob_threshold: range, level, Otsu or two-means threshold
//   - blob_label: threshold, clean up, label and measure every blob
//   - blob_watershed: flood the frame into catchment basins
//   - blob_analyse: full metrics and moments of one blob
//   - blob_edges: outline of the thresholded foreground
//
// Well positioning:
//   - well_evaluate: locate the well in one or more frames and report its
//     offset from a target position
//
// # Image Caching
//
// Decoded files are cached by path for the lifetime of the process. Tools
// accept "reload" to re-read a frame that a camera rewrites in place.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with
// code -32000, the message "Tool execution failed" and the Go error string
// as data. Malformed tools/call params yield -32602 and unknown methods
// -32601.
package server
