package sheet

import "fmt"

// Params holds every tunable threshold the pipeline uses. All values are
// explicit so the recognition behaviour is auditable and adjustable per
// scan quality; nothing is baked into stage logic.
type Params struct {
	// Window is the side length in pixels of the adaptive-threshold
	// neighbourhood. Must be odd. Larger windows smooth over bigger
	// lighting gradients but blur local contrast.
	Window int `json:"window"`

	// Bias is subtracted from the local window mean before comparing a
	// pixel, pushing borderline pixels toward background. Raising it
	// suppresses paper texture noise at the cost of faint marks.
	Bias int `json:"bias"`

	// MinWidth and MinHeight reject candidate regions smaller than a
	// printed bubble, filtering out noise specks.
	MinWidth  int `json:"min_width"`
	MinHeight int `json:"min_height"`

	// MinAspect and MaxAspect bound a candidate's width/height ratio.
	// Bubbles are round or slightly oval; text strokes and rule lines
	// fall far outside the band.
	MinAspect float64 `json:"min_aspect"`
	MaxAspect float64 `json:"max_aspect"`

	// MinArea rejects candidates whose enclosed region is too small to be
	// a bubble, filtering thin outlines of non-bubble artifacts.
	MinArea int `json:"min_area"`

	// CandidateTolerance scales the layout-derived candidate expectation.
	// Detection fails when fewer than
	// ExpectedCells*CandidateTolerance candidates survive filtering.
	CandidateTolerance float64 `json:"candidate_tolerance"`

	// FillThreshold is the minimum ink ratio (ink pixels over region area)
	// for a bubble to count as marked at all.
	FillThreshold float64 `json:"fill_threshold"`

	// FillMargin is the minimum ink-ratio gap between the darkest bubble
	// and the runner-up for the darkest to win outright. Two bubbles over
	// the threshold within this margin of each other are reported as an
	// ambiguous multiple mark instead of silently picking one.
	FillMargin float64 `json:"fill_margin"`

	// MaxImageBytes caps the accepted input size. Zero disables the check.
	MaxImageBytes int `json:"max_image_bytes"`

	// MinImageWidth and MinImageHeight reject inputs too small to carry a
	// readable sheet.
	MinImageWidth  int `json:"min_image_width"`
	MinImageHeight int `json:"min_image_height"`
}

// DefaultParams returns thresholds tuned for a 150-300 DPI flatbed scan of
// a standard sheet. Callers processing phone photographs will usually need
// to loosen the candidate filters.
func DefaultParams() Params {
	return Params{
		Window:             21,
		Bias:               10,
		MinWidth:           10,
		MinHeight:          10,
		MinAspect:          0.5,
		MaxAspect:          1.5,
		MinArea:            50,
		CandidateTolerance: 1.0,
		FillThreshold:      0.45,
		FillMargin:         0.15,
		MaxImageBytes:      10 << 20,
		MinImageWidth:      400,
		MinImageHeight:     300,
	}
}

// Validate checks the parameter set for values the stages cannot work with.
func (p Params) Validate() error {
	if p.Window < 3 || p.Window%2 == 0 {
		return fmt.Errorf("%w: adaptive threshold window must be odd and >= 3, got %d", ErrConfiguration, p.Window)
	}
	if p.MinAspect <= 0 || p.MaxAspect < p.MinAspect {
		return fmt.Errorf("%w: aspect band [%g, %g] is not a valid range", ErrConfiguration, p.MinAspect, p.MaxAspect)
	}
	if p.CandidateTolerance <= 0 || p.CandidateTolerance > 1 {
		return fmt.Errorf("%w: candidate tolerance %g must be in (0, 1]", ErrConfiguration, p.CandidateTolerance)
	}
	if p.FillThreshold <= 0 || p.FillThreshold >= 1 {
		return fmt.Errorf("%w: fill threshold %g must be in (0, 1)", ErrConfiguration, p.FillThreshold)
	}
	if p.FillMargin < 0 || p.FillMargin >= 1 {
		return fmt.Errorf("%w: fill margin %g must be in [0, 1)", ErrConfiguration, p.FillMargin)
	}
	return nil
}
