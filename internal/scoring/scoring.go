// Package scoring grades a finished attempt. Score is a pure function:
// no clock, no store, identical inputs yield identical output.
package scoring

import "math"

// Question is the minimal view of a quiz question needed for grading.
type Question struct {
	ID           string
	Text         string
	CorrectIndex int // 0-based index of the correct option
}

// Answer is one submitted choice, matched against a question by id.
type Answer struct {
	QuestionID  string
	ChosenIndex int
}

// QuestionResult is the per-question feedback for a graded submission. It
// intentionally reveals the correct index: feedback is only produced once
// the attempt is closed.
type QuestionResult struct {
	QuestionID   string
	QuestionText string
	ChosenIndex  int
	CorrectIndex int
	IsCorrect    bool
}

// Result is the outcome of grading one submission.
type Result struct {
	// Score is the percentage of questions answered correctly, rounded to
	// two decimals. Zero when the question list is empty.
	Score          float64
	CorrectAnswers int
	TotalQuestions int
	PerQuestion    []QuestionResult
}

// Score grades answers against the quiz's question list. Answers that
// reference an unknown question id are dropped: they contribute nothing to
// the correct count and do not appear in PerQuestion. PerQuestion preserves
// submission order, not question order.
func Score(questions []Question, answers []Answer) Result {
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	res := Result{
		TotalQuestions: len(questions),
		PerQuestion:    make([]QuestionResult, 0, len(answers)),
	}
	for _, ans := range answers {
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}
		correct := ans.ChosenIndex == q.CorrectIndex
		if correct {
			res.CorrectAnswers++
		}
		res.PerQuestion = append(res.PerQuestion, QuestionResult{
			QuestionID:   ans.QuestionID,
			QuestionText: q.Text,
			ChosenIndex:  ans.ChosenIndex,
			CorrectIndex: q.CorrectIndex,
			IsCorrect:    correct,
		})
	}

	if res.TotalQuestions > 0 {
		res.Score = round2(100 * float64(res.CorrectAnswers) / float64(res.TotalQuestions))
	}
	return res
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
