package sheet

import (
	"testing"
)

func TestClassify_NoSelection(t *testing.T) {
	p := DefaultParams()
	resp := classify([]float64{0.2, 0.3, 0.1, 0.25}, p)

	if !resp.None() {
		t.Errorf("all fills under threshold classified as %v, want no selection", resp.Options)
	}
}

func TestClassify_SingleOverThreshold(t *testing.T) {
	p := DefaultParams()
	resp := classify([]float64{0.2, 0.95, 0.3, 0.1}, p)

	opt, ok := resp.Single()
	if !ok || opt != 1 {
		t.Errorf("got %v, want single option 1", resp.Options)
	}
}

func TestClassify_DecisiveMarginWins(t *testing.T) {
	p := DefaultParams()
	// Both over the threshold, but 0.95 leads 0.5 by far more than the
	// margin: the darker bubble wins.
	resp := classify([]float64{0.95, 0.5, 0.1, 0.1}, p)

	opt, ok := resp.Single()
	if !ok || opt != 0 {
		t.Errorf("got %v, want single option 0", resp.Options)
	}
}

func TestClassify_MarginTieIsAmbiguous(t *testing.T) {
	p := DefaultParams()
	resp := classify([]float64{0.9, 0.85, 0.1, 0.1}, p)

	if !resp.Ambiguous() {
		t.Fatalf("margin-tied fills classified as %v, want ambiguous", resp.Options)
	}
	if len(resp.Options) != 2 || resp.Options[0] != 0 || resp.Options[1] != 1 {
		t.Errorf("ambiguous set = %v, want [0 1]", resp.Options)
	}
}

func TestClassify_ThreeWayTie(t *testing.T) {
	p := DefaultParams()
	resp := classify([]float64{0.9, 0.88, 0.86, 0.1}, p)

	if len(resp.Options) != 3 {
		t.Errorf("three margin-tied fills gave %v, want all three reported", resp.Options)
	}
}

func TestClassify_ZeroMarginKeepsDarkestWins(t *testing.T) {
	// With the margin disabled any strict maximum wins, reproducing the
	// plain darkest-wins rule.
	p := DefaultParams()
	p.FillMargin = 0

	resp := classify([]float64{0.9, 0.89, 0.1, 0.1}, p)
	opt, ok := resp.Single()
	if !ok || opt != 0 {
		t.Errorf("got %v, want single option 0 with zero margin", resp.Options)
	}
}

func TestEvaluateMarks_FullSheet(t *testing.T) {
	layout := Layout{Questions: 4, Options: 4, RowsPerBlock: 2, Blocks: 2}
	marks := map[int][]int{
		1: {2},
		2: {0, 1}, // double mark
		3: {3},
		// question 4 left blank
	}
	img := drawSheet(layout, marks)
	mask := maskFromImage(img)

	p := DefaultParams()
	candidates, err := DetectCandidates(mask, layout, p)
	if err != nil {
		t.Fatalf("DetectCandidates failed: %v", err)
	}
	cells, err := ResolveGrid(candidates, layout)
	if err != nil {
		t.Fatalf("ResolveGrid failed: %v", err)
	}

	responses := EvaluateMarks(mask, cells, p)
	if len(responses) != layout.Questions {
		t.Fatalf("got %d responses, want %d", len(responses), layout.Questions)
	}

	if opt, ok := responses[1].Single(); !ok || opt != 2 {
		t.Errorf("question 1 = %v, want single option 2", responses[1].Options)
	}
	if !responses[2].Ambiguous() {
		t.Errorf("question 2 = %v, want ambiguous", responses[2].Options)
	}
	if opt, ok := responses[3].Single(); !ok || opt != 3 {
		t.Errorf("question 3 = %v, want single option 3", responses[3].Options)
	}
	if !responses[4].None() {
		t.Errorf("question 4 = %v, want no selection", responses[4].Options)
	}
}

func TestEvaluateMarks_FillsRecorded(t *testing.T) {
	layout := Layout{Questions: 1, Options: 2, RowsPerBlock: 1, Blocks: 1}
	img := drawSheet(layout, map[int][]int{1: {0}})
	mask := maskFromImage(img)

	p := DefaultParams()
	candidates, err := DetectCandidates(mask, layout, p)
	if err != nil {
		t.Fatalf("DetectCandidates failed: %v", err)
	}
	cells, err := ResolveGrid(candidates, layout)
	if err != nil {
		t.Fatalf("ResolveGrid failed: %v", err)
	}

	resp := EvaluateMarks(mask, cells, p)[1]
	if len(resp.Fills) != 2 {
		t.Fatalf("recorded %d fills, want 2", len(resp.Fills))
	}
	if resp.Fills[0] <= resp.Fills[1] {
		t.Errorf("marked option fill %.2f not above empty option fill %.2f", resp.Fills[0], resp.Fills[1])
	}
}
