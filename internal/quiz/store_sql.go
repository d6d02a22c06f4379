package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore implements all three stores over database/sql. `$1` placeholders
// work on both supported drivers (pgx and modernc sqlite). Timestamps are
// TEXT columns holding RFC3339 UTC instants with the Z marker; everything
// above this layer works with time.Time only.
type SQLStore struct {
	db    *sql.DB
	clock Clock
}

func NewSQLStore(db *sql.DB, clock Clock) *SQLStore {
	if clock == nil {
		clock = NewClock()
	}
	return &SQLStore{db: db, clock: clock}
}

var (
	_ QuizStore    = (*SQLStore)(nil)
	_ AttemptStore = (*SQLStore)(nil)
	_ UserStore    = (*SQLStore)(nil)
)

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = s.clock.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,title,description,time_limit_minutes,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
			time_limit_minutes=EXCLUDED.time_limit_minutes, questions_json=EXCLUDED.questions_json`,
		q.ID, q.Title, q.Description, q.TimeLimitMinutes, string(qj), q.CreatedAt)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,description,time_limit_minutes,questions_json,created_at
		FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *SQLStore) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,description,time_limit_minutes,questions_json,created_at
		FROM quizzes ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var q Quiz
	var qjson string
	if err := row.Scan(&q.ID, &q.Title, &q.Description, &q.TimeLimitMinutes, &qjson, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrQuizNotFound
		}
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, fmt.Errorf("decode questions for quiz %s: %w", q.ID, err)
	}
	return q, nil
}

func (s *SQLStore) InsertAttempt(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts (id,quiz_id,user_id,start_time,end_time,answers_json,score)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.QuizID, a.UserID, encodeTime(a.StartTime), encodeTimePtr(a.EndTime), string(aj), a.Score)
	return err
}

func (s *SQLStore) ReplaceAttempt(ctx context.Context, a Attempt) error {
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE attempts SET quiz_id=$1, user_id=$2, start_time=$3, end_time=$4,
		answers_json=$5, score=$6 WHERE id=$7`,
		a.QuizID, a.UserID, encodeTime(a.StartTime), encodeTimePtr(a.EndTime), string(aj), a.Score, a.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,user_id,start_time,end_time,answers_json,score
		FROM attempts WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, err
}

func (s *SQLStore) AttemptsByQuiz(ctx context.Context, quizID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,quiz_id,user_id,start_time,end_time,answers_json,score
		FROM attempts WHERE quiz_id=$1 ORDER BY start_time, id`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var start string
	var end sql.NullString
	var ajson string
	if err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &start, &end, &ajson, &a.Score); err != nil {
		return Attempt{}, err
	}
	var err error
	if a.StartTime, err = decodeTime(start); err != nil {
		return Attempt{}, fmt.Errorf("attempt %s start_time: %w", a.ID, err)
	}
	if end.Valid {
		t, err := decodeTime(end.String)
		if err != nil {
			return Attempt{}, fmt.Errorf("attempt %s end_time: %w", a.ID, err)
		}
		a.EndTime = &t
	}
	if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
		return Attempt{}, fmt.Errorf("decode answers for attempt %s: %w", a.ID, err)
	}
	return a, nil
}

func (s *SQLStore) InsertUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id,name,email,password_hash,role)
		VALUES ($1,$2,$3,$4,$5)`, u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role))
	return err
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT id,name,email,password_hash,role FROM users WHERE id=$1`, id))
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT id,name,email,password_hash,role FROM users WHERE lower(email)=lower($1)`, email))
}

func (s *SQLStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&n)
	return n, err
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	u.Role = Role(role)
	return u, nil
}

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func encodeTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

// decodeTime parses a stored RFC3339 instant. An unparsable value is a
// data-integrity fault surfaced as ErrMalformedTimestamp, never silently
// defaulted.
func decodeTime(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, v)
	}
	return t.UTC(), nil
}
