package sheet

import (
	"errors"
	"math"
	"testing"
)

func single(opt int) Response  { return Response{Options: []int{opt}} }
func multi(opts ...int) Response { return Response{Options: opts} }

func TestScore_Statuses(t *testing.T) {
	key := AnswerKey{1: 0, 2: 1, 3: 2, 4: 3, 5: 0}
	responses := map[int]Response{
		1: single(0),    // correct
		2: single(3),    // incorrect
		3: multi(1, 2),  // multiple marked
		4: {},           // no selection
		// question 5 missing entirely
	}

	report, err := Score(responses, key, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	want := map[int]Status{
		1: StatusCorrect,
		2: StatusIncorrect,
		3: StatusMultipleMarked,
		4: StatusNotAttempted,
		5: StatusNotAttempted,
	}
	for _, qr := range report.Questions {
		if qr.Status != want[qr.Question] {
			t.Errorf("question %d status = %q, want %q", qr.Question, qr.Status, want[qr.Question])
		}
	}

	if report.Correct != 1 || report.Incorrect != 1 || report.MultipleMarked != 1 || report.NotAttempted != 2 {
		t.Errorf("counts = %d/%d/%d/%d, want 1/1/1/2",
			report.Correct, report.Incorrect, report.MultipleMarked, report.NotAttempted)
	}
	if report.TotalQuestions != 5 {
		t.Errorf("total = %d, want 5", report.TotalQuestions)
	}
	if math.Abs(report.Percentage-20.0) > 1e-9 {
		t.Errorf("percentage = %v, want 20.0", report.Percentage)
	}
}

func TestScore_QuestionsOrdered(t *testing.T) {
	key := AnswerKey{7: 0, 2: 1, 11: 2}
	report, err := Score(nil, key, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	order := []int{2, 7, 11}
	for i, qr := range report.Questions {
		if qr.Question != order[i] {
			t.Errorf("position %d holds question %d, want %d", i, qr.Question, order[i])
		}
	}
}

func TestScore_ExtraResponsesIgnored(t *testing.T) {
	key := AnswerKey{1: 0}
	responses := map[int]Response{
		1:  single(0),
		99: single(2), // not in key: excluded, not penalized, not rewarded
	}

	report, err := Score(responses, key, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if report.TotalQuestions != 1 || report.Correct != 1 {
		t.Errorf("got %d/%d, want 1 correct of 1", report.Correct, report.TotalQuestions)
	}
	if math.Abs(report.Percentage-100.0) > 1e-9 {
		t.Errorf("percentage = %v, want 100.0", report.Percentage)
	}
}

func TestScore_MultipleMarkedNeverCorrect(t *testing.T) {
	key := AnswerKey{1: 1}
	// The ambiguous set contains the correct answer; the status must still
	// be multiple_marked.
	report, err := Score(map[int]Response{1: multi(0, 1)}, key, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if report.Questions[0].Status != StatusMultipleMarked {
		t.Errorf("status = %q, want %q", report.Questions[0].Status, StatusMultipleMarked)
	}
	if report.Correct != 0 {
		t.Errorf("correct = %d, want 0", report.Correct)
	}
}

func TestScore_SubjectSubtotalsTile(t *testing.T) {
	key := denseKey(20, 4)
	responses := make(map[int]Response, 20)
	for q := 1; q <= 20; q++ {
		if q <= 12 {
			responses[q] = single(key[q]) // correct
		} else {
			responses[q] = single((key[q] + 1) % 4) // incorrect
		}
	}

	subjects := []SubjectRange{
		{Name: "Math", From: 1, To: 10},
		{Name: "Physics", From: 11, To: 20},
	}

	report, err := Score(responses, key, subjects)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if len(report.Subjects) != 2 {
		t.Fatalf("got %d subject scores, want 2", len(report.Subjects))
	}

	sumCorrect := 0
	sumTotal := 0
	for _, s := range report.Subjects {
		sumCorrect += s.Correct
		sumTotal += s.Total
	}
	if sumCorrect != report.Correct {
		t.Errorf("subject correct sum %d != overall correct %d", sumCorrect, report.Correct)
	}
	if sumTotal != report.TotalQuestions {
		t.Errorf("subject total sum %d != overall total %d", sumTotal, report.TotalQuestions)
	}

	if report.Subjects[0].Correct != 10 || report.Subjects[1].Correct != 2 {
		t.Errorf("subject corrects = %d/%d, want 10/2", report.Subjects[0].Correct, report.Subjects[1].Correct)
	}
}

func TestScore_SubjectOverlapRejected(t *testing.T) {
	key := denseKey(20, 4)
	subjects := []SubjectRange{
		{Name: "A", From: 1, To: 12},
		{Name: "B", From: 10, To: 20},
	}

	_, err := Score(nil, key, subjects)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("overlapping ranges: error %v does not wrap ErrConfiguration", err)
	}
}

func TestScore_SubjectGapRejected(t *testing.T) {
	key := denseKey(20, 4)
	subjects := []SubjectRange{
		{Name: "A", From: 1, To: 8},
		{Name: "B", From: 12, To: 20},
	}

	_, err := Score(nil, key, subjects)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("gapped ranges: error %v does not wrap ErrConfiguration", err)
	}
}

func TestScore_QuestionOutsideSubjectsRejected(t *testing.T) {
	key := denseKey(20, 4)
	subjects := []SubjectRange{
		{Name: "A", From: 1, To: 10},
	}

	_, err := Score(nil, key, subjects)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("uncovered question: error %v does not wrap ErrConfiguration", err)
	}
}

func TestScore_EmptyKeyRejected(t *testing.T) {
	_, err := Score(nil, AnswerKey{}, nil)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("empty key: error %v does not wrap ErrConfiguration", err)
	}
}

func TestScore_RawPercentageNotRounded(t *testing.T) {
	key := denseKey(3, 4)
	responses := map[int]Response{1: single(key[1])}

	report, err := Score(responses, key, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	// Mirror the runtime evaluation order: constant folding of 1.0/3.0*100
	// yields a different last bit than dividing at runtime.
	correct, total := 1.0, 3.0
	want := correct / total * 100
	if report.Percentage != want {
		t.Errorf("percentage = %v, want the raw value %v", report.Percentage, want)
	}
	if math.Floor(report.Percentage) == report.Percentage {
		t.Errorf("percentage = %v looks rounded", report.Percentage)
	}
}
