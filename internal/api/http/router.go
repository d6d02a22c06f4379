package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/quiz"
	"github.com/quizhub/quizhub/internal/rbac"
)

// Deps is everything the API surface needs wired in.
type Deps struct {
	Session  *quiz.Session
	Quizzes  quiz.QuizStore
	Users    quiz.UserStore
	Accounts *auth.Accounts
	Auth     *auth.AuthService
}

// Mount attaches all /api routes plus the health endpoints.
func Mount(r chi.Router, d Deps) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Quiz Application API"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", SignupHandler(d.Accounts))
		r.Post("/auth/login", LoginHandler(d.Accounts))

		// Quiz listing is public; everything else needs a token.
		r.Get("/quizzes", ListQuizzesHandler(d.Quizzes))

		r.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(d.Auth))

			pr.With(rbac.Require("quiz:view")).
				Get("/quizzes/{quizID}", GetQuizHandler(d.Quizzes))
			pr.With(rbac.Require("quiz:create")).
				Post("/quizzes", CreateQuizHandler(d.Quizzes))
			pr.With(rbac.Require("quiz:edit")).
				Put("/quizzes/{quizID}", UpdateQuizHandler(d.Quizzes))
			pr.With(rbac.Require("quiz:delete")).
				Delete("/quizzes/{quizID}", DeleteQuizHandler(d.Quizzes))

			pr.With(rbac.Require("attempt:start")).
				Post("/quizzes/{quizID}/start", StartAttemptHandler(d.Session, d.Users))
			pr.With(rbac.Require("attempt:submit")).
				Post("/quizzes/{quizID}/submit", SubmitAttemptHandler(d.Session, d.Users))

			pr.With(rbac.Require("results:view-all")).
				Get("/quizzes/{quizID}/results", QuizResultsHandler(d.Session))
			pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
				Get("/quizzes/{quizID}/my-result", MyResultHandler(d.Session, d.Users))
			pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
				Get("/results/{attemptID}", ResultHandler(d.Session, d.Users))
		})
	})
}
