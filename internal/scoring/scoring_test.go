package scoring

import (
	"reflect"
	"testing"
)

func questions() []Question {
	return []Question{
		{ID: "q1", Text: "first", CorrectIndex: 0},
		{ID: "q2", Text: "second", CorrectIndex: 2},
		{ID: "q3", Text: "third", CorrectIndex: 1},
	}
}

func TestScoreCountsCorrectAnswers(t *testing.T) {
	res := Score(questions(), []Answer{
		{QuestionID: "q1", ChosenIndex: 0},
		{QuestionID: "q2", ChosenIndex: 1},
		{QuestionID: "q3", ChosenIndex: 1},
	})
	if res.CorrectAnswers != 2 || res.TotalQuestions != 3 {
		t.Fatalf("correct/total = %d/%d, want 2/3", res.CorrectAnswers, res.TotalQuestions)
	}
	if res.Score != 66.67 {
		t.Fatalf("score = %v, want 66.67 (two decimals)", res.Score)
	}
	if !res.PerQuestion[0].IsCorrect || res.PerQuestion[1].IsCorrect {
		t.Fatalf("per-question flags wrong: %+v", res.PerQuestion)
	}
	if res.PerQuestion[1].CorrectIndex != 2 || res.PerQuestion[1].QuestionText != "second" {
		t.Fatalf("feedback must reveal the correct index and text: %+v", res.PerQuestion[1])
	}
}

func TestScoreDropsUnknownQuestions(t *testing.T) {
	res := Score(questions(), []Answer{
		{QuestionID: "ghost", ChosenIndex: 0},
		{QuestionID: "q1", ChosenIndex: 0},
	})
	if res.CorrectAnswers != 1 {
		t.Fatalf("correct = %d, want 1 (unknown id contributes nothing)", res.CorrectAnswers)
	}
	if len(res.PerQuestion) != 1 || res.PerQuestion[0].QuestionID != "q1" {
		t.Fatalf("unknown id must be excluded from feedback: %+v", res.PerQuestion)
	}
	if res.Score != 33.33 {
		t.Fatalf("score = %v, want 33.33", res.Score)
	}
}

func TestScorePreservesSubmissionOrder(t *testing.T) {
	res := Score(questions(), []Answer{
		{QuestionID: "q3", ChosenIndex: 1},
		{QuestionID: "q1", ChosenIndex: 2},
	})
	if res.PerQuestion[0].QuestionID != "q3" || res.PerQuestion[1].QuestionID != "q1" {
		t.Fatalf("feedback order must follow submission order: %+v", res.PerQuestion)
	}
}

func TestScoreEmptyQuiz(t *testing.T) {
	res := Score(nil, []Answer{{QuestionID: "q1", ChosenIndex: 0}})
	if res.Score != 0 {
		t.Fatalf("score = %v, want 0 for a quiz with no questions", res.Score)
	}
}

func TestScoreDeterministic(t *testing.T) {
	answers := []Answer{
		{QuestionID: "q2", ChosenIndex: 2},
		{QuestionID: "q1", ChosenIndex: 1},
	}
	first := Score(questions(), answers)
	second := Score(questions(), answers)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different results:\n%+v\n%+v", first, second)
	}
}
