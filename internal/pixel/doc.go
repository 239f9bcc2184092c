// Package pixel provides the 8-bit pixel buffer shared by every operator in
// this module.
//
// An Image is a rows × cols grid over a mutable byte slice stored in
// row-major order: pixel (c, r) lives at Pix[r*Cols+c]. Column c is the
// horizontal coordinate and row r the vertical one, with (0, 0) at the
// top-left corner.
//
// # Pixel Kinds
//
// The Kind of an Image tells operators how to interpret its bytes:
//   - KindBinary: 0 = background, 1 = foreground
//   - KindLabel: 0 = background, 1..254 = blob or basin id, 255 = sentinel
//     used transiently while an algorithm runs
//   - KindGray: 0..255 intensities (or heights for the watershed)
//
// # Neighbors
//
// NeighborCount and MaxNeighbors implement the neighborhood primitive used by
// every relaxation-based algorithm. Neighbors outside the image are skipped,
// never an error.
//
// # Ownership
//
// Mutations are visible immediately to every holder of the *Image; there is
// no copy-on-write. Images are not safe for concurrent mutation; callers
// sharing one buffer must serialize access.
package pixel
