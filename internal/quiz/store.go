package quiz

import "context"

// QuizStore holds authored quizzes. Read-only from the session manager's
// point of view; writes come from the admin CRUD surface.
type QuizStore interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	ListQuizzes(ctx context.Context) ([]Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
}

// AttemptStore persists attempt records. Each method is atomic per record;
// cross-record invariants (at most one open attempt per quiz/user) are the
// session manager's job, which serializes its read-modify-write cycles.
type AttemptStore interface {
	InsertAttempt(ctx context.Context, a Attempt) error
	// ReplaceAttempt overwrites the full record keyed by id.
	ReplaceAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	// AttemptsByQuiz returns every attempt for a quiz, any user.
	AttemptsByQuiz(ctx context.Context, quizID string) ([]Attempt, error)
}

type UserStore interface {
	InsertUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CountUsers(ctx context.Context) (int, error)
}
