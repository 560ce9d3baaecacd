package sheet

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	"github.com/disintegration/imaging"
)

// DecodeImage decodes raw image bytes into an image. PNG, JPEG, GIF, BMP,
// and TIFF are accepted. A failure is reported as a decode-stage
// PipelineError wrapping ErrDecode.
func DecodeImage(raw []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, failAt(StageDecode, fmt.Errorf("%w: %v", ErrDecode, err))
	}
	return img, nil
}

// ValidateImage rejects inputs that cannot carry a readable sheet before
// any pipeline work is spent on them: oversized files, undecodable bytes,
// and rasters below the minimum dimensions.
func ValidateImage(raw []byte, p Params) error {
	if p.MaxImageBytes > 0 && len(raw) > p.MaxImageBytes {
		return failAt(StageDecode, fmt.Errorf("%w: input is %d bytes, limit is %d",
			ErrDecode, len(raw), p.MaxImageBytes))
	}

	img, err := DecodeImage(raw)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	if bounds.Dx() < p.MinImageWidth || bounds.Dy() < p.MinImageHeight {
		return failAt(StageDecode, fmt.Errorf("%w: image is %dx%d, need at least %dx%d",
			ErrDecode, bounds.Dx(), bounds.Dy(), p.MinImageWidth, p.MinImageHeight))
	}

	return nil
}

// Process runs the full pipeline over raw image bytes and scores the
// result against the answer key.
//
// Parameters:
//   - raw: encoded image bytes in any supported format.
//   - key: mapping from 1-based question number to correct option index.
//   - layout: the sheet's bubble arrangement.
//   - subjects: optional subject subtotal ranges; nil disables subtotals.
//   - p: recognition thresholds, usually DefaultParams() adjusted as needed.
//
// All stages run synchronously in the calling goroutine with no shared
// state, so concurrent calls on different images are safe. On failure the
// returned error is a *PipelineError identifying the stage.
func Process(raw []byte, key AnswerKey, layout Layout, subjects []SubjectRange, p Params) (*Report, error) {
	img, err := DecodeImage(raw)
	if err != nil {
		return nil, err
	}
	report, _, err := run(img, key, layout, subjects, p)
	return report, err
}

// ProcessImage is Process for an already-decoded image, for callers that
// decode once and enhance the raster before recognition.
func ProcessImage(img image.Image, key AnswerKey, layout Layout, subjects []SubjectRange, p Params) (*Report, error) {
	report, _, err := run(img, key, layout, subjects, p)
	return report, err
}

// ProcessWithOverlay runs the pipeline and additionally renders the debug
// overlay raster: the original image with every resolved bubble outlined
// and colored by its fill status. The overlay is a derived visualization
// and has no effect on scoring.
func ProcessWithOverlay(raw []byte, key AnswerKey, layout Layout, subjects []SubjectRange, p Params) (*Report, *image.RGBA, error) {
	img, err := DecodeImage(raw)
	if err != nil {
		return nil, nil, err
	}
	return ProcessImageWithOverlay(img, key, layout, subjects, p)
}

// ProcessImageWithOverlay is ProcessWithOverlay for an already-decoded
// image.
func ProcessImageWithOverlay(img image.Image, key AnswerKey, layout Layout, subjects []SubjectRange, p Params) (*Report, *image.RGBA, error) {
	report, trace, err := run(img, key, layout, subjects, p)
	if err != nil {
		return nil, nil, err
	}

	overlay := RenderOverlay(img, trace.cells, trace.responses)
	return report, overlay, nil
}

// runTrace carries intermediate stage outputs for overlay rendering.
type runTrace struct {
	cells     []GridCell
	responses map[int]Response
}

// run executes binarize through score on a decoded image.
func run(img image.Image, key AnswerKey, layout Layout, subjects []SubjectRange, p Params) (*Report, runTrace, error) {
	var trace runTrace

	if err := layout.Validate(); err != nil {
		return nil, trace, failAt(StageResolve, err)
	}
	if err := p.Validate(); err != nil {
		return nil, trace, failAt(StageBinarize, err)
	}

	gray := NewGrayscale(img)
	mask := Binarize(gray, p.Window, p.Bias)

	candidates, err := DetectCandidates(mask, layout, p)
	if err != nil {
		return nil, trace, failAt(StageDetect, err)
	}

	cells, err := ResolveGrid(candidates, layout)
	if err != nil {
		return nil, trace, failAt(StageResolve, err)
	}

	responses := EvaluateMarks(mask, cells, p)

	report, err := Score(responses, key, subjects)
	if err != nil {
		return nil, trace, failAt(StageScore, err)
	}

	trace.cells = cells
	trace.responses = responses
	return report, trace, nil
}
