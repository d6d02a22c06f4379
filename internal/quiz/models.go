package quiz

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}

type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"` // 2..6 choices
	// 0-based index into Options. Omitted from student-facing views,
	// see QuizDetailFor.
	CorrectOptionIndex int `json:"correct_option_index"`
}

type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	Questions        []Question `json:"questions"`
	CreatedAt        int64      `json:"created_at,omitempty"`
}

// Answer is one submitted choice, matched against a question by id.
type Answer struct {
	QuestionID  string `json:"question_id"`
	ChosenIndex int    `json:"chosen_index"`
}

// Attempt is one user's occurrence of taking one quiz. StartTime is set
// exactly once at creation; a nil EndTime means the attempt is still in
// progress. Once EndTime is set the record is immutable.
type Attempt struct {
	ID        string     `json:"id"`
	QuizID    string     `json:"quiz_id"`
	UserID    string     `json:"user_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Answers   []Answer   `json:"answers"`
	Score     float64    `json:"score"`
}

// Open reports whether the attempt has not been finalized yet.
func (a Attempt) Open() bool { return a.EndTime == nil }

// StartInfo is what a student needs to run the countdown client-side.
type StartInfo struct {
	AttemptID        string    `json:"attempt_id"`
	StartTime        time.Time `json:"start_time"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
}

// QuestionResult is the per-question feedback for a graded attempt. It
// intentionally reveals the correct index: feedback is only produced after
// the attempt is closed.
type QuestionResult struct {
	QuestionID   string `json:"question_id"`
	QuestionText string `json:"question_text"`
	ChosenIndex  int    `json:"chosen_index"`
	CorrectIndex int    `json:"correct_index"`
	IsCorrect    bool   `json:"is_correct"`
}

type ResultDetail struct {
	ID              string           `json:"id"`
	QuizID          string           `json:"quiz_id"`
	QuizTitle       string           `json:"quiz_title"`
	UserID          string           `json:"user_id"`
	UserName        string           `json:"user_name"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	Score           float64          `json:"score"`
	TotalQuestions  int              `json:"total_questions"`
	CorrectAnswers  int              `json:"correct_answers"`
	QuestionResults []QuestionResult `json:"question_results"`
}

// QuestionView is a question as served to API clients. CorrectOptionIndex
// is nil for students and set for admins.
type QuestionView struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex *int     `json:"correct_option_index"`
}

type QuizDetail struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	TimeLimitMinutes int            `json:"time_limit_minutes"`
	Questions        []QuestionView `json:"questions"`
}

// QuizDetailFor renders q for the given viewer role, stripping answer keys
// from every question unless the viewer is an admin. This is the only place
// question content crosses toward an untrusted viewer pre-submission.
func QuizDetailFor(q Quiz, role Role) QuizDetail {
	d := QuizDetail{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		TimeLimitMinutes: q.TimeLimitMinutes,
		Questions:        make([]QuestionView, 0, len(q.Questions)),
	}
	for _, qq := range q.Questions {
		v := QuestionView{ID: qq.ID, Text: qq.Text, Options: qq.Options}
		if role == RoleAdmin {
			idx := qq.CorrectOptionIndex
			v.CorrectOptionIndex = &idx
		}
		d.Questions = append(d.Questions, v)
	}
	return d
}
