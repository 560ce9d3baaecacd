package sheet

import "fmt"

// Numbering selects how resolved grid positions map to question numbers.
//
// A sheet prints its questions in column blocks: each physical row of
// bubbles spans every block, and each block contributes one question per
// row. The numbering policy decides which block/row position carries which
// question number.
type Numbering string

const (
	// NumberingBlockMajor numbers questions down each column block before
	// moving to the next: block 0 covers questions 1..RowsPerBlock, block 1
	// covers RowsPerBlock+1..2*RowsPerBlock, and so on.
	NumberingBlockMajor Numbering = "block-major"

	// NumberingRowMajor numbers questions across each physical row before
	// moving down: row 0 covers questions 1..Blocks, row 1 covers
	// Blocks+1..2*Blocks, and so on.
	NumberingRowMajor Numbering = "row-major"
)

// Layout describes the logical arrangement of bubbles on a sheet.
//
// A layout is supplied by the caller for every pipeline run; nothing about
// the sheet geometry is baked into the pipeline itself.
type Layout struct {
	// Questions is the total number of questions on the sheet.
	Questions int `json:"questions"`

	// Options is the number of answer options per question. Must be >= 2.
	Options int `json:"options"`

	// RowsPerBlock is the number of physical bubble rows in one column block.
	RowsPerBlock int `json:"rows_per_block"`

	// Blocks is the number of column blocks printed side by side.
	Blocks int `json:"blocks"`

	// Numbering is the question numbering policy. Empty defaults to
	// NumberingBlockMajor, the most common printed convention.
	Numbering Numbering `json:"numbering,omitempty"`
}

// Validate checks the layout's internal consistency. It returns an error
// wrapping ErrConfiguration when the question count does not factor into
// rows and blocks, or when any dimension is out of range.
func (l Layout) Validate() error {
	if l.Questions < 1 {
		return fmt.Errorf("%w: layout needs at least one question, got %d", ErrConfiguration, l.Questions)
	}
	if l.Options < 2 {
		return fmt.Errorf("%w: layout needs at least two options per question, got %d", ErrConfiguration, l.Options)
	}
	if l.RowsPerBlock < 1 || l.Blocks < 1 {
		return fmt.Errorf("%w: layout needs positive rows per block and block count, got %dx%d", ErrConfiguration, l.RowsPerBlock, l.Blocks)
	}
	if l.RowsPerBlock*l.Blocks != l.Questions {
		return fmt.Errorf("%w: %d questions do not factor into %d rows x %d blocks", ErrConfiguration, l.Questions, l.RowsPerBlock, l.Blocks)
	}
	switch l.Numbering {
	case "", NumberingBlockMajor, NumberingRowMajor:
	default:
		return fmt.Errorf("%w: unknown numbering policy %q", ErrConfiguration, l.Numbering)
	}
	return nil
}

// ExpectedCells returns the number of bubbles the layout expects on a sheet.
func (l Layout) ExpectedCells() int {
	return l.Questions * l.Options
}

// questionNumber maps a (physical row, column block) position to a 1-based
// question number according to the numbering policy.
func (l Layout) questionNumber(row, block int) int {
	if l.Numbering == NumberingRowMajor {
		return row*l.Blocks + block + 1
	}
	return block*l.RowsPerBlock + row + 1
}

// DefaultLayout is the 100-question sheet the system was originally built
// for: 20 rows, 5 column blocks, 4 options, block-major numbering.
func DefaultLayout() Layout {
	return Layout{
		Questions:    100,
		Options:      4,
		RowsPerBlock: 20,
		Blocks:       5,
		Numbering:    NumberingBlockMajor,
	}
}
