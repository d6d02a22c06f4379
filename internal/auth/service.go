package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizhub/quizhub/internal/quiz"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const bcryptCost = 12

// Accounts handles signup and login on top of the user store.
type Accounts struct {
	users quiz.UserStore
	auth  *AuthService
}

func NewAccounts(users quiz.UserStore, auth *AuthService) *Accounts {
	return &Accounts{users: users, auth: auth}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     quiz.Role
}

func (in SignupInput) validate() error {
	if n := len(strings.TrimSpace(in.Name)); n < 2 || n > 100 {
		return errors.New("name must be 2-100 characters")
	}
	if !strings.Contains(in.Email, "@") || strings.ContainsAny(in.Email, " \t") {
		return errors.New("invalid email address")
	}
	if len(in.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if in.Role != quiz.RoleStudent && in.Role != quiz.RoleAdmin {
		return errors.New("role must be student or admin")
	}
	return nil
}

// Signup registers a user and returns it with a fresh token for immediate
// login.
func (a *Accounts) Signup(ctx context.Context, in SignupInput) (quiz.User, string, error) {
	if err := in.validate(); err != nil {
		return quiz.User{}, "", err
	}
	if _, err := a.users.GetUserByEmail(ctx, in.Email); err == nil {
		return quiz.User{}, "", ErrEmailTaken
	} else if !errors.Is(err, quiz.ErrUserNotFound) {
		return quiz.User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return quiz.User{}, "", err
	}
	u := quiz.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := a.users.InsertUser(ctx, u); err != nil {
		return quiz.User{}, "", fmt.Errorf("create user: %w", err)
	}
	tok, err := a.auth.IssueJWT(u.ID, string(u.Role))
	if err != nil {
		return quiz.User{}, "", err
	}
	return u, tok, nil
}

// Login verifies credentials and issues a token. Lookup and hash mismatches
// collapse into one error so callers cannot probe registered emails.
func (a *Accounts) Login(ctx context.Context, email, password string) (quiz.User, string, error) {
	u, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, quiz.ErrUserNotFound) {
			return quiz.User{}, "", ErrInvalidCredentials
		}
		return quiz.User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return quiz.User{}, "", ErrInvalidCredentials
	}
	tok, err := a.auth.IssueJWT(u.ID, string(u.Role))
	if err != nil {
		return quiz.User{}, "", err
	}
	return u, tok, nil
}
