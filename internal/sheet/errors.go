package sheet

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline failure taxonomy. Every failure returned
// by this package wraps exactly one of these, so callers can branch with
// errors.Is without parsing messages.
var (
	// ErrDecode indicates the input bytes are not a decodable raster image.
	ErrDecode = errors.New("image decode failed")

	// ErrInsufficientCandidates indicates the detector found fewer
	// bubble-like regions than the configured layout requires. The
	// photographed sheet's geometry does not match the layout; scoring a
	// partial grid would produce garbage, so processing stops here.
	ErrInsufficientCandidates = errors.New("insufficient bubble candidates")

	// ErrLayoutMismatch indicates the candidates could not be partitioned
	// into the exact question-by-option grid the layout describes.
	ErrLayoutMismatch = errors.New("candidate grid does not match layout")

	// ErrConfiguration indicates an invalid Layout, Params, or subject
	// range configuration supplied by the caller.
	ErrConfiguration = errors.New("invalid configuration")
)

// Stage identifies the pipeline stage at which a failure occurred.
type Stage string

const (
	StageDecode   Stage = "decode"
	StageBinarize Stage = "binarize"
	StageDetect   Stage = "detect"
	StageResolve  Stage = "resolve"
	StageEvaluate Stage = "evaluate"
	StageScore    Stage = "score"
)

// PipelineError is a tagged per-image failure: the stage that failed plus a
// cause wrapping one of the sentinel errors above.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// failAt wraps err with its originating stage.
func failAt(stage Stage, err error) error {
	return &PipelineError{Stage: stage, Err: err}
}
