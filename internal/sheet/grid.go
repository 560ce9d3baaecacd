package sheet

import (
	"fmt"
	"sort"
)

// GridCell is a candidate bound to its resolved question and option.
type GridCell struct {
	// Question is the 1-based question number.
	Question int `json:"question"`

	// Option is the 0-based option index within the question.
	Option int `json:"option"`

	// Candidate is the detected bubble occupying this cell.
	Candidate Candidate `json:"candidate"`
}

// ResolveGrid orders and groups candidates into a question-by-option grid.
//
// The resolver uses a two-level sort rather than exact coordinates:
//
//  1. Sort all candidates top-to-bottom by vertical center.
//  2. Partition the sorted sequence into consecutive physical rows of
//     Options*Blocks bubbles (one printed row spanning every column block).
//  3. Sort each physical row left-to-right by horizontal center.
//  4. Split the row into Blocks groups of Options consecutive bubbles; each
//     group is one question's option set, option 0 leftmost.
//  5. Assign question numbers from (row, block) via the layout's numbering
//     policy.
//
// Sorting by vertical order instead of expecting bubbles on exact pixel
// rows tolerates the small misalignments real scans have: the grid stays
// correct as long as row membership is stable under the vertical sort.
//
// Returns an error wrapping ErrLayoutMismatch when the candidate count is
// not exactly layout.ExpectedCells(); a surplus is as unresolvable as a
// shortage, since partitioning consumes candidates positionally.
func ResolveGrid(candidates []Candidate, layout Layout) ([]GridCell, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	expected := layout.ExpectedCells()
	if len(candidates) != expected {
		return nil, fmt.Errorf("%w: have %d candidates, layout expects exactly %d",
			ErrLayoutMismatch, len(candidates), expected)
	}

	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Center.Y < ordered[j].Center.Y
	})

	rowSize := layout.Options * layout.Blocks
	cells := make([]GridCell, 0, expected)

	for row := 0; row < layout.RowsPerBlock; row++ {
		physRow := ordered[row*rowSize : (row+1)*rowSize]
		sort.SliceStable(physRow, func(i, j int) bool {
			return physRow[i].Center.X < physRow[j].Center.X
		})

		for block := 0; block < layout.Blocks; block++ {
			question := layout.questionNumber(row, block)
			group := physRow[block*layout.Options : (block+1)*layout.Options]
			for opt, cand := range group {
				cells = append(cells, GridCell{
					Question:  question,
					Option:    opt,
					Candidate: cand,
				})
			}
		}
	}

	return cells, nil
}
