package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizhub/quizhub/internal/quiz"
)

// POST /api/quizzes/{quizID}/start — students only. Admins author and
// review, they do not take quizzes, so the wildcard admin permission does
// not get past this check.
func StartAttemptHandler(session *quiz.Session, users quiz.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r, users)
		if err != nil {
			writeError(w, err)
			return
		}
		if user.Role != quiz.RoleStudent {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "only students can take quizzes"})
			return
		}
		info, err := session.StartOrResume(r.Context(), chi.URLParam(r, "quizID"), user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// POST /api/quizzes/{quizID}/submit  { "attempt_id": "...", "answers": [...] }
func SubmitAttemptHandler(session *quiz.Session, users quiz.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r, users)
		if err != nil {
			writeError(w, err)
			return
		}
		var req struct {
			AttemptID string        `json:"attempt_id"`
			Answers   []quiz.Answer `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		if req.AttemptID == "" {
			badRequest(w, "attempt_id required")
			return
		}
		detail, err := session.Submit(r.Context(), chi.URLParam(r, "quizID"), req.AttemptID, user, req.Answers)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// GET /api/quizzes/{quizID}/results (admin only): every completed attempt.
func QuizResultsHandler(session *quiz.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := session.ResultsForQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

// GET /api/quizzes/{quizID}/my-result: the caller's latest completed attempt.
func MyResultHandler(session *quiz.Session, users quiz.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r, users)
		if err != nil {
			writeError(w, err)
			return
		}
		detail, err := session.OwnResult(r.Context(), chi.URLParam(r, "quizID"), user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// GET /api/results/{attemptID}: owner or admin.
func ResultHandler(session *quiz.Session, users quiz.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r, users)
		if err != nil {
			writeError(w, err)
			return
		}
		detail, err := session.Result(r.Context(), chi.URLParam(r, "attemptID"), user)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}
