package sheet

import (
	"errors"
	"image"
	"math/rand"
	"testing"
)

// syntheticCandidates builds one candidate per grid position with a little
// positional jitter, returned in shuffled order.
func syntheticCandidates(layout Layout, jitter int, seed int64) []Candidate {
	rng := rand.New(rand.NewSource(seed))
	candidates := make([]Candidate, 0, layout.ExpectedCells())

	for row := 0; row < layout.RowsPerBlock; row++ {
		for block := 0; block < layout.Blocks; block++ {
			for opt := 0; opt < layout.Options; opt++ {
				cx, cy := bubbleCenter(layout, row, block, opt)
				if jitter > 0 {
					cx += rng.Intn(2*jitter+1) - jitter
					cy += rng.Intn(2*jitter+1) - jitter
				}
				candidates = append(candidates, Candidate{
					Bounds: image.Rect(cx-7, cy-7, cx+8, cy+8),
					Area:   150,
					Center: image.Point{X: cx, Y: cy},
				})
			}
		}
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return candidates
}

// checkGridInvariant verifies every question number in [1, Questions]
// appears exactly once per option index.
func checkGridInvariant(t *testing.T, cells []GridCell, layout Layout) {
	t.Helper()

	seen := make(map[int]map[int]bool)
	for _, cell := range cells {
		if cell.Question < 1 || cell.Question > layout.Questions {
			t.Errorf("question number %d outside [1, %d]", cell.Question, layout.Questions)
		}
		if cell.Option < 0 || cell.Option >= layout.Options {
			t.Errorf("option index %d outside [0, %d)", cell.Option, layout.Options)
		}
		if seen[cell.Question] == nil {
			seen[cell.Question] = make(map[int]bool)
		}
		if seen[cell.Question][cell.Option] {
			t.Errorf("duplicate cell for question %d option %d", cell.Question, cell.Option)
		}
		seen[cell.Question][cell.Option] = true
	}

	if len(seen) != layout.Questions {
		t.Errorf("resolved %d distinct questions, want %d", len(seen), layout.Questions)
	}
	for q, opts := range seen {
		if len(opts) != layout.Options {
			t.Errorf("question %d has %d options, want %d", q, len(opts), layout.Options)
		}
	}
}

func TestResolveGrid_ExactQuestionSet(t *testing.T) {
	layouts := []Layout{
		{Questions: 100, Options: 4, RowsPerBlock: 20, Blocks: 5},
		{Questions: 60, Options: 5, RowsPerBlock: 20, Blocks: 3},
		{Questions: 12, Options: 2, RowsPerBlock: 6, Blocks: 2},
		{Questions: 9, Options: 3, RowsPerBlock: 3, Blocks: 3, Numbering: NumberingRowMajor},
	}

	for _, layout := range layouts {
		candidates := syntheticCandidates(layout, 3, 42)

		cells, err := ResolveGrid(candidates, layout)
		if err != nil {
			t.Fatalf("ResolveGrid failed for %dx%d layout: %v", layout.RowsPerBlock, layout.Blocks, err)
		}
		if len(cells) != layout.ExpectedCells() {
			t.Fatalf("resolved %d cells, want %d", len(cells), layout.ExpectedCells())
		}
		checkGridInvariant(t, cells, layout)
	}
}

func TestResolveGrid_BlockMajorNumbering(t *testing.T) {
	layout := Layout{Questions: 4, Options: 2, RowsPerBlock: 2, Blocks: 2, Numbering: NumberingBlockMajor}
	cells, err := ResolveGrid(syntheticCandidates(layout, 0, 1), layout)
	if err != nil {
		t.Fatalf("ResolveGrid failed: %v", err)
	}

	// Block-major: left block carries questions 1-2, right block 3-4.
	for _, cell := range cells {
		row, block := questionPosition(layout, cell.Question)
		wantX, wantY := bubbleCenter(layout, row, block, cell.Option)
		if cell.Candidate.Center.X != wantX || cell.Candidate.Center.Y != wantY {
			t.Errorf("question %d option %d resolved to center (%d,%d), want (%d,%d)",
				cell.Question, cell.Option, cell.Candidate.Center.X, cell.Candidate.Center.Y, wantX, wantY)
		}
	}
}

func TestResolveGrid_RowMajorNumbering(t *testing.T) {
	layout := Layout{Questions: 4, Options: 2, RowsPerBlock: 2, Blocks: 2, Numbering: NumberingRowMajor}
	cells, err := ResolveGrid(syntheticCandidates(layout, 0, 1), layout)
	if err != nil {
		t.Fatalf("ResolveGrid failed: %v", err)
	}

	// Row-major: top row carries questions 1-2, second row 3-4.
	for _, cell := range cells {
		row, block := questionPosition(layout, cell.Question)
		wantX, wantY := bubbleCenter(layout, row, block, cell.Option)
		if cell.Candidate.Center.X != wantX || cell.Candidate.Center.Y != wantY {
			t.Errorf("question %d option %d resolved to center (%d,%d), want (%d,%d)",
				cell.Question, cell.Option, cell.Candidate.Center.X, cell.Candidate.Center.Y, wantX, wantY)
		}
	}
}

func TestResolveGrid_CountMismatch(t *testing.T) {
	layout := smallLayout()
	candidates := syntheticCandidates(layout, 0, 7)

	for _, n := range []int{len(candidates) - 1, len(candidates) + 1} {
		trimmed := make([]Candidate, n)
		for i := 0; i < n; i++ {
			trimmed[i] = candidates[i%len(candidates)]
		}

		_, err := ResolveGrid(trimmed, layout)
		if err == nil {
			t.Fatalf("expected mismatch error for %d candidates", n)
		}
		if !errors.Is(err, ErrLayoutMismatch) {
			t.Errorf("error %v does not wrap ErrLayoutMismatch", err)
		}
	}
}

func TestResolveGrid_InvalidLayout(t *testing.T) {
	bad := Layout{Questions: 10, Options: 4, RowsPerBlock: 3, Blocks: 3}
	_, err := ResolveGrid(nil, bad)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("non-factoring layout: error %v does not wrap ErrConfiguration", err)
	}

	bad = Layout{Questions: 4, Options: 1, RowsPerBlock: 2, Blocks: 2}
	_, err = ResolveGrid(nil, bad)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("single-option layout: error %v does not wrap ErrConfiguration", err)
	}
}
