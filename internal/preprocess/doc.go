// Package preprocess prepares camera frames for blob analysis: contrast
// stretching, gamma correction, blurring, window filters, thresholding and
// binary morphology.
//
// Functions take a source and a destination *pixel.Image of equal size and
// write the result into the destination. Unless noted otherwise the two may be
// the same image. Thresholds produce pixel.KindBinary output; every other
// operation keeps the source kind.
//
// Blur, gamma and morphology are delegated to the bild library, with pixel
// buffers converted to image.Gray on the way in and back from bild's RGBA
// output on the way out.
package preprocess
