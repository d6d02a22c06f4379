package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizhub/quizhub/internal/quiz"
	"github.com/quizhub/quizhub/internal/rbac"
)

type questionReq struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

type quizReq struct {
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	TimeLimitMinutes int           `json:"time_limit_minutes"`
	Questions        []questionReq `json:"questions"`
}

// validate enforces the authoring invariants; in particular every
// correct_option_index must point inside its options list.
func (q quizReq) validate() string {
	if n := len(strings.TrimSpace(q.Title)); n < 3 || n > 200 {
		return "title must be 3-200 characters"
	}
	if len(q.Description) > 1000 {
		return "description must be at most 1000 characters"
	}
	if q.TimeLimitMinutes < 1 || q.TimeLimitMinutes > 180 {
		return "time_limit_minutes must be 1-180"
	}
	if len(q.Questions) == 0 {
		return "at least one question required"
	}
	for _, qq := range q.Questions {
		if len(strings.TrimSpace(qq.Text)) < 5 {
			return "question text must be at least 5 characters"
		}
		if len(qq.Options) < 2 || len(qq.Options) > 6 {
			return "questions must have 2-6 options"
		}
		if qq.CorrectOptionIndex < 0 || qq.CorrectOptionIndex >= len(qq.Options) {
			return "correct_option_index must be a valid option index"
		}
	}
	return ""
}

func (q quizReq) toQuiz(id string) quiz.Quiz {
	out := quiz.Quiz{
		ID:               id,
		Title:            q.Title,
		Description:      q.Description,
		TimeLimitMinutes: q.TimeLimitMinutes,
		Questions:        make([]quiz.Question, 0, len(q.Questions)),
	}
	for _, qq := range q.Questions {
		qid := qq.ID
		if qid == "" {
			qid = uuid.NewString()
		}
		out.Questions = append(out.Questions, quiz.Question{
			ID:                 qid,
			Text:               qq.Text,
			Options:            qq.Options,
			CorrectOptionIndex: qq.CorrectOptionIndex,
		})
	}
	return out
}

// quizSummary is the list view: no questions, so no answer keys to leak.
type quizSummary struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	TimeLimitMinutes int    `json:"time_limit_minutes"`
	QuestionCount    int    `json:"question_count"`
}

// GET /api/quizzes
func ListQuizzesHandler(store quiz.QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizzes, err := store.ListQuizzes(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]quizSummary, 0, len(quizzes))
		for _, q := range quizzes {
			out = append(out, quizSummary{
				ID:               q.ID,
				Title:            q.Title,
				Description:      q.Description,
				TimeLimitMinutes: q.TimeLimitMinutes,
				QuestionCount:    len(q.Questions),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /api/quizzes/{quizID} — students get questions with the answer key
// stripped; admins see the full quiz.
func GetQuizHandler(store quiz.QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		role := quiz.Role(rbac.RoleFromContext(r.Context()))
		writeJSON(w, http.StatusOK, quiz.QuizDetailFor(q, role))
	}
}

// POST /api/quizzes (admin only)
func CreateQuizHandler(store quiz.QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quizReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		if msg := req.validate(); msg != "" {
			badRequest(w, msg)
			return
		}
		q := req.toQuiz(uuid.NewString())
		if err := store.PutQuiz(r.Context(), q); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// PUT /api/quizzes/{quizID} (admin only) — full replacement, no partial
// updates.
func UpdateQuizHandler(store quiz.QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		if _, err := store.GetQuiz(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		var req quizReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		if msg := req.validate(); msg != "" {
			badRequest(w, msg)
			return
		}
		q := req.toQuiz(id)
		if err := store.PutQuiz(r.Context(), q); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// DELETE /api/quizzes/{quizID} (admin only)
func DeleteQuizHandler(store quiz.QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
