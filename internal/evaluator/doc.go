// Package evaluator estimates where a culture well sits in a camera frame
// and how far it is from a target position.
//
// Two evaluators implement the Evaluator interface:
//
//   - FeaturesEvaluator segments the bright well bottom into blobs and picks
//     the roundest, least eccentric one of sufficient area.
//   - HoughEvaluator votes for circle centers along intensity edges and
//     picks the strongest circle within a radius band.
//
// Both report the offset as found position minus target, in pixels, with
// the origin at the top-left corner of the frame.
package evaluator
