package sheet

import (
	"fmt"
	"sort"
)

// AnswerKey maps 1-based question numbers to the correct 0-based option
// index. Keys may be dense or sparse; only listed questions are scored.
type AnswerKey map[int]int

// Status classifies one question's outcome against the answer key.
type Status string

const (
	StatusCorrect        Status = "correct"
	StatusIncorrect      Status = "incorrect"
	StatusNotAttempted   Status = "not_attempted"
	StatusMultipleMarked Status = "multiple_marked"
)

// QuestionResult is the per-question line of a score report.
type QuestionResult struct {
	// Question is the 1-based question number.
	Question int `json:"question"`

	// Status is the scoring outcome.
	Status Status `json:"status"`

	// Selected holds the marked option indices: empty for not attempted,
	// one entry for a decided mark, two or more for a multiple mark.
	Selected []int `json:"selected"`

	// Answer is the correct option index from the key.
	Answer int `json:"answer"`
}

// SubjectRange is a contiguous block of question numbers scored as its own
// subtotal.
type SubjectRange struct {
	Name string `json:"name"`
	From int    `json:"from"` // first question number, inclusive
	To   int    `json:"to"`   // last question number, inclusive
}

// SubjectScore is the computed subtotal of one subject range.
type SubjectScore struct {
	Name       string  `json:"name"`
	From       int     `json:"from"`
	To         int     `json:"to"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Report is the complete scoring outcome for one sheet.
type Report struct {
	TotalQuestions int `json:"total_questions"`
	Correct        int `json:"correct"`
	Incorrect      int `json:"incorrect"`
	NotAttempted   int `json:"not_attempted"`
	MultipleMarked int `json:"multiple_marked"`

	// Percentage is Correct/TotalQuestions*100 as a raw float; rounding
	// for display is the presentation layer's concern.
	Percentage float64 `json:"percentage"`

	// Questions holds one result per scored question, ordered by number.
	Questions []QuestionResult `json:"questions"`

	// Subjects holds the configured subject subtotals, in range order.
	// Empty when no subject ranges were supplied.
	Subjects []SubjectScore `json:"subjects,omitempty"`
}

// Score compares responses against an answer key.
//
// Every question present in the key is scored:
//   - missing from responses, or a no-selection response: not_attempted.
//   - an ambiguous response: multiple_marked, never silently resolved.
//   - a single option equal to the key: correct.
//   - a single option different from the key: incorrect.
//
// Questions present in responses but absent from the key are excluded from
// scoring entirely, neither penalized nor rewarded.
//
// Subject ranges, when supplied, must tile the key's question span with no
// overlaps and no gaps; a violation returns an error wrapping
// ErrConfiguration rather than a silently repaired report.
func Score(responses map[int]Response, key AnswerKey, subjects []SubjectRange) (*Report, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: answer key is empty", ErrConfiguration)
	}

	questions := make([]int, 0, len(key))
	for q := range key {
		questions = append(questions, q)
	}
	sort.Ints(questions)

	if err := validateSubjects(subjects, questions); err != nil {
		return nil, err
	}

	report := &Report{
		TotalQuestions: len(questions),
		Questions:      make([]QuestionResult, 0, len(questions)),
	}

	for _, q := range questions {
		answer := key[q]
		result := QuestionResult{Question: q, Answer: answer, Selected: []int{}}

		resp, ok := responses[q]
		switch {
		case !ok || resp.None():
			result.Status = StatusNotAttempted
			report.NotAttempted++
		case resp.Ambiguous():
			result.Status = StatusMultipleMarked
			result.Selected = resp.Options
			report.MultipleMarked++
		default:
			selected, _ := resp.Single()
			result.Selected = []int{selected}
			if selected == answer {
				result.Status = StatusCorrect
				report.Correct++
			} else {
				result.Status = StatusIncorrect
				report.Incorrect++
			}
		}

		report.Questions = append(report.Questions, result)
	}

	report.Percentage = float64(report.Correct) / float64(report.TotalQuestions) * 100

	for _, r := range subjects {
		score := SubjectScore{Name: r.Name, From: r.From, To: r.To}
		for _, qr := range report.Questions {
			if qr.Question < r.From || qr.Question > r.To {
				continue
			}
			score.Total++
			if qr.Status == StatusCorrect {
				score.Correct++
			}
		}
		if score.Total > 0 {
			score.Percentage = float64(score.Correct) / float64(score.Total) * 100
		}
		report.Subjects = append(report.Subjects, score)
	}

	return report, nil
}

// validateSubjects checks that the ranges are well-formed, non-overlapping,
// contiguous, and cover every scored question. questions must be sorted.
func validateSubjects(subjects []SubjectRange, questions []int) error {
	if len(subjects) == 0 {
		return nil
	}

	ordered := make([]SubjectRange, len(subjects))
	copy(ordered, subjects)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].From < ordered[j].From })

	for i, r := range ordered {
		if r.From > r.To {
			return fmt.Errorf("%w: subject %q range [%d, %d] is inverted", ErrConfiguration, r.Name, r.From, r.To)
		}
		if i == 0 {
			continue
		}
		prev := ordered[i-1]
		if r.From <= prev.To {
			return fmt.Errorf("%w: subject ranges %q and %q overlap", ErrConfiguration, prev.Name, r.Name)
		}
		if r.From != prev.To+1 {
			return fmt.Errorf("%w: gap between subject ranges %q and %q (questions %d-%d uncovered)",
				ErrConfiguration, prev.Name, r.Name, prev.To+1, r.From-1)
		}
	}

	lo := ordered[0].From
	hi := ordered[len(ordered)-1].To
	for _, q := range questions {
		if q < lo || q > hi {
			return fmt.Errorf("%w: question %d is outside every subject range", ErrConfiguration, q)
		}
	}

	return nil
}
