package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizhub/quizhub/internal/config"
	"github.com/quizhub/quizhub/internal/quiz"
)

// seed creates the default admin (and, in offline mode, a sample quiz) on
// first boot so a fresh install is immediately usable.
func seed(ctx context.Context, cfg config.Config, users quiz.UserStore, quizzes quiz.QuizStore) error {
	n, err := users.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), 12)
	if err != nil {
		return err
	}
	admin := quiz.User{
		ID:           uuid.NewString(),
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         quiz.RoleAdmin,
	}
	if err := users.InsertUser(ctx, admin); err != nil {
		return err
	}
	log.Printf("seeded admin user %s", admin.Email)

	if !cfg.SeedSampleQuiz {
		return nil
	}
	sample := quiz.Quiz{
		ID:               uuid.NewString(),
		Title:            "Go Basics Quiz",
		Description:      "Test your knowledge of Go fundamentals",
		TimeLimitMinutes: 10,
		Questions: []quiz.Question{
			{
				ID:                 uuid.NewString(),
				Text:               "Which keyword declares a new variable with inferred type?",
				Options:            []string{"var", ":=", "let", "def"},
				CorrectOptionIndex: 1,
			},
			{
				ID:                 uuid.NewString(),
				Text:               "What is the zero value of a pointer?",
				Options:            []string{"0", "undefined", "nil", "empty struct"},
				CorrectOptionIndex: 2,
			},
			{
				ID:                 uuid.NewString(),
				Text:               "Which construct is used to start a concurrent function call?",
				Options:            []string{"spawn", "go", "async", "thread"},
				CorrectOptionIndex: 1,
			},
			{
				ID:                 uuid.NewString(),
				Text:               "Which type is mutable when passed by value?",
				Options:            []string{"array", "string", "slice", "int"},
				CorrectOptionIndex: 2,
			},
			{
				ID:                 uuid.NewString(),
				Text:               "How do you create a map ready for writes?",
				Options:            []string{"m := map[string]int{}", "var m map[string]int", "m := new(map[string]int)", "m := nil"},
				CorrectOptionIndex: 0,
			},
		},
	}
	if err := quizzes.PutQuiz(ctx, sample); err != nil {
		return err
	}
	log.Printf("seeded sample quiz %q", sample.Title)
	return nil
}
