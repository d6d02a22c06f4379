package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses. Unrecognized
// errors are reported as 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	var expired *quiz.ExpiredError
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound),
		errors.Is(err, quiz.ErrAttemptNotFound),
		errors.Is(err, quiz.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errBody(err))
	case errors.Is(err, quiz.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errBody(err))
	case errors.Is(err, quiz.ErrAlreadyCompleted):
		writeJSON(w, http.StatusConflict, errBody(err))
	case errors.As(err, &expired):
		writeJSON(w, http.StatusBadRequest, errBody(err))
	case errors.Is(err, auth.ErrEmailTaken):
		writeJSON(w, http.StatusBadRequest, errBody(err))
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errBody(err))
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func errBody(err error) map[string]string { return map[string]string{"error": err.Error()} }

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// currentUser resolves the authenticated subject to a full user record.
func currentUser(r *http.Request, users quiz.UserStore) (quiz.User, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return quiz.User{}, quiz.ErrUserNotFound
	}
	return users.GetUser(r.Context(), sub)
}
