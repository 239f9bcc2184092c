// Package blob implements the binary and label image analysis engine:
// connected-component labeling, border blob removal, hole filling, binary
// edge detection, watershed segmentation and per-blob metrics.
//
// # Pixel Conventions
//
// Operators work on *pixel.Image buffers:
//
//   - Binary images hold 0 (background) and 1 (foreground).
//   - Label images hold 0 (background) and ids 1..254. The value 255 is a
//     transient "unassigned" sentinel that never survives a completed call.
//
// After LabelBlobs or Watershed returns N > 0, the nonzero values of the
// destination are exactly {1, ..., N}.
//
// # Relaxation
//
// Labeling, border removal and hole filling are iterative relaxation
// algorithms. Each iteration scans the buffer top-left to bottom-right and
// then bottom-right to top-left, rewriting pixels in place from the state of
// their neighbors, and stops when a full iteration changes nothing. Pixels
// read within a scan may already have been rewritten by that scan; results
// depend on this and only the converged buffer is meaningful.
//
// # Diagnostics
//
// An Operator logs the conditions the caller should know about:
//
//   - Unsupported pixel kind (error level): the call returns
//     ErrUnsupportedKind and leaves dst untouched.
//   - Kind mismatch between src and dst (warn level): the call proceeds using
//     src's kind.
//   - Label overflow (warn level): more than 254 labels were needed. The call
//     returns a count of 0 together with ErrLabelOverflow so it can be told
//     apart from an image with no blobs.
//
// Operators hold no per-call state and allocate all working tables inside
// each call. Concurrent calls on distinct buffers are safe; callers sharing a
// buffer must serialize access themselves.
package blob
