package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/quiz"
)

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	User        quiz.User `json:"user"`
}

// POST /api/auth/signup  { "name": "...", "email": "...", "password": "...", "role": "student|admin" }
func SignupHandler(accounts *auth.Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		u, tok, err := accounts.Signup(r.Context(), auth.SignupInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     quiz.Role(req.Role),
		})
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				writeError(w, err)
				return
			}
			badRequest(w, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: tok, User: u})
	}
}

// POST /api/auth/login  { "email": "...", "password": "..." }
func LoginHandler(accounts *auth.Accounts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		u, tok, err := accounts.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok, User: u})
	}
}
