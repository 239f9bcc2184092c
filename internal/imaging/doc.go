// Package imaging loads image files into grayscale pixel buffers and renders
// blob results back to PNG for the MCP server.
//
// All pixel coordinates in this package are 0-based with (0,0) at the
// top-left corner, X increasing rightward and Y increasing downward. For
// regions, (X1,Y1) is inclusive and (X2,Y2) is exclusive.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The other functions are
// stateless and may run concurrently on different images.
//
// # Pipeline
//
// A typical request runs
//
//	cache.Load -> Region crop -> resize to a working width -> pixel.FromImage
//
// through LoadGray, hands the buffer to the blob operators, then turns the
// resulting label or binary buffer into a PNG with Render.
package imaging
