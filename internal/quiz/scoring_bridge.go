package quiz

import "github.com/quizhub/quizhub/internal/scoring"

type scoreResult struct {
	Score          float64
	CorrectAnswers int
	PerQuestion    []QuestionResult
}

// score hands the quiz and answers to the scoring engine in its own view
// types and folds the outcome back into domain types.
func (s *Session) score(q Quiz, answers []Answer) scoreResult {
	questions := make([]scoring.Question, 0, len(q.Questions))
	for _, qq := range q.Questions {
		questions = append(questions, scoring.Question{
			ID:           qq.ID,
			Text:         qq.Text,
			CorrectIndex: qq.CorrectOptionIndex,
		})
	}
	submitted := make([]scoring.Answer, 0, len(answers))
	for _, a := range answers {
		submitted = append(submitted, scoring.Answer{QuestionID: a.QuestionID, ChosenIndex: a.ChosenIndex})
	}

	res := scoring.Score(questions, submitted)
	out := scoreResult{
		Score:          res.Score,
		CorrectAnswers: res.CorrectAnswers,
		PerQuestion:    make([]QuestionResult, 0, len(res.PerQuestion)),
	}
	for _, qr := range res.PerQuestion {
		out.PerQuestion = append(out.PerQuestion, QuestionResult(qr))
	}
	return out
}
