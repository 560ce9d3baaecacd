package sheet

import "sort"

// Response is one question's classified answer: no selection, a single
// option, or an ambiguous set of two or more options.
type Response struct {
	// Options holds the selected option indices in ascending order. Empty
	// means no selection; two or more means an ambiguous multiple mark.
	Options []int `json:"options"`

	// Fills holds the measured ink ratio of every option's bubble, indexed
	// by option. Kept for audit output and debug overlays.
	Fills []float64 `json:"fills"`
}

// None reports whether no bubble reached the fill threshold.
func (r Response) None() bool {
	return len(r.Options) == 0
}

// Single returns the selected option when exactly one bubble won.
func (r Response) Single() (int, bool) {
	if len(r.Options) == 1 {
		return r.Options[0], true
	}
	return 0, false
}

// Ambiguous reports whether two or more bubbles tied over the threshold.
func (r Response) Ambiguous() bool {
	return len(r.Options) >= 2
}

// EvaluateMarks measures the ink fill of every grid cell and classifies
// each question's response.
//
// A bubble's fill ratio is its ink count inside the enclosed region (see
// Candidate.fillMeasure) divided by the region area: an untouched outline
// scores low, a pencilled-in bubble scores near 1.0. Per question:
//
//   - no option reaches p.FillThreshold: no selection.
//   - exactly one option reaches it, or the darkest leads the runner-up by
//     at least p.FillMargin: that single option.
//   - otherwise: the ambiguous set of all options over the threshold. A
//     margin-tied pair is never silently resolved in favour of the darker
//     bubble; that distinction belongs in the score report.
//
// The returned map has one Response per question present in cells.
func EvaluateMarks(mask *Mask, cells []GridCell, p Params) map[int]Response {
	type accum struct {
		fills []float64
	}
	byQuestion := make(map[int]*accum)

	for _, cell := range cells {
		a := byQuestion[cell.Question]
		if a == nil {
			a = &accum{}
			byQuestion[cell.Question] = a
		}
		for len(a.fills) <= cell.Option {
			a.fills = append(a.fills, 0)
		}
		ratio := 0.0
		if cell.Candidate.Area > 0 {
			ratio = float64(cell.Candidate.fillMeasure(mask)) / float64(cell.Candidate.Area)
		}
		a.fills[cell.Option] = ratio
	}

	responses := make(map[int]Response, len(byQuestion))
	for question, a := range byQuestion {
		responses[question] = classify(a.fills, p)
	}
	return responses
}

// classify applies the threshold and margin rules to one question's fills.
func classify(fills []float64, p Params) Response {
	over := make([]int, 0, len(fills))
	for opt, fill := range fills {
		if fill >= p.FillThreshold {
			over = append(over, opt)
		}
	}

	resp := Response{Fills: fills}
	switch len(over) {
	case 0:
		return resp
	case 1:
		resp.Options = over
		return resp
	}

	// Two or more over the threshold: the darkest wins only with a
	// decisive margin over the runner-up.
	top, second := over[0], over[1]
	if fills[second] > fills[top] {
		top, second = second, top
	}
	for _, opt := range over[2:] {
		switch {
		case fills[opt] > fills[top]:
			top, second = opt, top
		case fills[opt] > fills[second]:
			second = opt
		}
	}

	if fills[top]-fills[second] >= p.FillMargin {
		resp.Options = []int{top}
		return resp
	}

	sort.Ints(over)
	resp.Options = over
	return resp
}
