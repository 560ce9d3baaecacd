// Package sheet implements the bubble-sheet recognition and scoring pipeline.
//
// The pipeline converts a raster image of a filled-in multiple-choice answer
// sheet into a structured score report. Processing runs strictly forward
// through five stages:
//
//  1. Binarize: convert the image to a luminance plane and apply a locally
//     adaptive threshold, producing a binary ink mask that tolerates uneven
//     scan lighting.
//  2. Detect: extract connected ink regions from the mask and filter them
//     down to bubble-shaped candidates.
//  3. Resolve: order and group the candidates into a question-by-option grid
//     according to a caller-supplied Layout.
//  4. Evaluate: measure the ink fill of every bubble and classify each
//     question's response (none, single option, or ambiguous set).
//  5. Score: compare responses against an answer key, producing per-question
//     statuses and aggregate and subject-level totals.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner:
// X increases rightward, Y increases downward. Bounding boxes use inclusive
// top-left and exclusive bottom-right, matching image.Rectangle.
//
// # Determinism
//
// Every stage is a pure function of the previous stage's output and explicit
// numeric parameters. Running the pipeline twice on identical bytes with
// identical parameters yields an identical Report. No retries are performed:
// a geometric or threshold failure is deterministic and will recur on the
// same input.
//
// # Concurrency
//
// A pipeline run holds no shared mutable state, so a host may process many
// images concurrently with one run per goroutine and no locking inside this
// package. Failures are local to one image.
//
// # Error Handling
//
// Failures are reported as *PipelineError values that record the stage at
// which processing stopped and wrap one of the sentinel errors ErrDecode,
// ErrInsufficientCandidates, ErrLayoutMismatch, or ErrConfiguration, so
// callers can distinguish a bad image from a layout mismatch with errors.Is.
package sheet
