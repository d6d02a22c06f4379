package quiz

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// graceMinutes is the fixed tolerance added to a quiz's time limit before
// an attempt counts as expired. It absorbs clock skew and the network gap
// between the client timer firing and the submission arriving.
const graceMinutes = 0.5

// AuditLog records attempt lifecycle transitions. Implementations must be
// best-effort: a failed audit write never fails the operation.
type AuditLog interface {
	Record(ctx context.Context, typ, key string, data map[string]any)
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, string, string, map[string]any) {}

// Session is the attempt session manager. It owns lifecycle correctness:
// at most one open attempt per (quiz, user), idempotent resume, lazy expiry
// and single-shot submission. Expiry is detected inline on StartOrResume and
// Submit rather than by a background sweep, so an abandoned attempt stays
// open in storage until someone touches it again.
type Session struct {
	quizzes  QuizStore
	attempts AttemptStore
	users    UserStore
	clock    Clock
	audit    AuditLog

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSession(quizzes QuizStore, attempts AttemptStore, users UserStore, clock Clock, audit AuditLog) *Session {
	if clock == nil {
		clock = NewClock()
	}
	if audit == nil {
		audit = nopAudit{}
	}
	return &Session{
		quizzes:  quizzes,
		attempts: attempts,
		users:    users,
		clock:    clock,
		audit:    audit,
		locks:    map[string]*sync.Mutex{},
	}
}

// lockKey serializes every read-modify-write for one (quiz, user) pair.
// Entries are never evicted; the map is bounded by quizzes x users.
func (s *Session) lockKey(quizID, userID string) *sync.Mutex {
	key := quizID + "\x00" + userID
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// StartOrResume opens a timed attempt for user on the given quiz, or hands
// back the one already in flight. Resume is idempotent: the stored id and
// start time are returned unchanged, the timer never resets. An open attempt
// found past its window is finalized with end_time = start_time + limit and
// a fresh attempt is created. A previously completed attempt blocks any new
// one with ErrAlreadyCompleted.
func (s *Session) StartOrResume(ctx context.Context, quizID string, user User) (StartInfo, error) {
	q, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return StartInfo{}, err
	}

	l := s.lockKey(quizID, user.ID)
	l.Lock()
	defer l.Unlock()

	existing, err := s.attempts.AttemptsByQuiz(ctx, quizID)
	if err != nil {
		return StartInfo{}, err
	}
	for _, a := range existing {
		if a.UserID == user.ID && !a.Open() {
			return StartInfo{}, ErrAlreadyCompleted
		}
	}
	for _, a := range existing {
		if a.UserID != user.ID || !a.Open() {
			continue
		}
		elapsed := s.clock.Now().Sub(a.StartTime).Minutes()
		if elapsed <= float64(q.TimeLimitMinutes)+graceMinutes {
			s.audit.Record(ctx, "attempt_resumed", a.ID, map[string]any{
				"quiz_id": quizID, "user_id": user.ID, "elapsed_minutes": elapsed,
			})
			return StartInfo{AttemptID: a.ID, StartTime: a.StartTime, TimeLimitMinutes: q.TimeLimitMinutes}, nil
		}
		if err := s.expire(ctx, a, q); err != nil {
			return StartInfo{}, err
		}
	}

	now := s.clock.Now().UTC()
	a := Attempt{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		UserID:    user.ID,
		StartTime: now,
		Answers:   []Answer{},
	}
	if err := s.attempts.InsertAttempt(ctx, a); err != nil {
		return StartInfo{}, fmt.Errorf("insert attempt: %w", err)
	}
	s.audit.Record(ctx, "attempt_started", a.ID, map[string]any{
		"quiz_id": quizID, "user_id": user.ID,
	})
	return StartInfo{AttemptID: a.ID, StartTime: now, TimeLimitMinutes: q.TimeLimitMinutes}, nil
}

// expire finalizes an overdue open attempt. The closing instant is the end
// of the allowed window, not the moment of detection.
func (s *Session) expire(ctx context.Context, a Attempt, q Quiz) error {
	end := a.StartTime.Add(time.Duration(q.TimeLimitMinutes) * time.Minute)
	a.EndTime = &end
	if err := s.attempts.ReplaceAttempt(ctx, a); err != nil {
		return fmt.Errorf("finalize expired attempt %s: %w", a.ID, err)
	}
	s.audit.Record(ctx, "attempt_expired", a.ID, map[string]any{
		"quiz_id": a.QuizID, "user_id": a.UserID, "end_time": end.Format(time.RFC3339),
	})
	return nil
}

// Submit grades and closes an attempt. Accepted exactly once: a closed
// attempt, including one this call just finalized as expired, is never
// regraded.
func (s *Session) Submit(ctx context.Context, quizID, attemptID string, user User, answers []Answer) (ResultDetail, error) {
	q, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return ResultDetail{}, err
	}
	a, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return ResultDetail{}, err
	}
	if a.QuizID != quizID {
		return ResultDetail{}, ErrAttemptNotFound
	}
	if a.UserID != user.ID {
		return ResultDetail{}, ErrForbidden
	}

	l := s.lockKey(a.QuizID, a.UserID)
	l.Lock()
	defer l.Unlock()

	// Re-read under the lock; a concurrent Submit or StartOrResume may have
	// closed the record since the ownership check.
	a, err = s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return ResultDetail{}, err
	}
	if !a.Open() {
		return ResultDetail{}, ErrAlreadyCompleted
	}

	now := s.clock.Now().UTC()
	elapsed := now.Sub(a.StartTime).Minutes()
	if elapsed > float64(q.TimeLimitMinutes)+graceMinutes {
		if err := s.expire(ctx, a, q); err != nil {
			return ResultDetail{}, err
		}
		return ResultDetail{}, &ExpiredError{LimitMinutes: q.TimeLimitMinutes, ElapsedMinutes: elapsed}
	}

	res := s.score(q, answers)
	a.EndTime = &now
	a.Answers = answers
	a.Score = res.Score
	if err := s.attempts.ReplaceAttempt(ctx, a); err != nil {
		return ResultDetail{}, fmt.Errorf("persist submission: %w", err)
	}
	s.audit.Record(ctx, "attempt_submitted", a.ID, map[string]any{
		"quiz_id": quizID, "user_id": user.ID, "score": res.Score, "elapsed_minutes": elapsed,
	})
	return s.detail(q, a, user.Name, res), nil
}

// Result returns the detail view of one attempt. Students may only view
// their own; admins may view any.
func (s *Session) Result(ctx context.Context, attemptID string, viewer User) (ResultDetail, error) {
	a, err := s.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return ResultDetail{}, err
	}
	if viewer.Role != RoleAdmin && a.UserID != viewer.ID {
		return ResultDetail{}, ErrForbidden
	}
	q, err := s.quizzes.GetQuiz(ctx, a.QuizID)
	if err != nil {
		return ResultDetail{}, err
	}
	return s.detail(q, a, s.userName(ctx, a.UserID), s.score(q, a.Answers)), nil
}

// OwnResult returns the viewer's latest completed attempt for a quiz.
func (s *Session) OwnResult(ctx context.Context, quizID string, viewer User) (ResultDetail, error) {
	q, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return ResultDetail{}, err
	}
	attempts, err := s.attempts.AttemptsByQuiz(ctx, quizID)
	if err != nil {
		return ResultDetail{}, err
	}
	var latest *Attempt
	for i := range attempts {
		a := attempts[i]
		if a.UserID != viewer.ID || a.Open() {
			continue
		}
		if latest == nil || a.EndTime.After(*latest.EndTime) {
			latest = &attempts[i]
		}
	}
	if latest == nil {
		return ResultDetail{}, ErrAttemptNotFound
	}
	return s.detail(q, *latest, viewer.Name, s.score(q, latest.Answers)), nil
}

// ResultsForQuiz returns detail views for every completed attempt on a
// quiz, ordered by finish time. Open attempts are skipped.
func (s *Session) ResultsForQuiz(ctx context.Context, quizID string) ([]ResultDetail, error) {
	q, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attempts.AttemptsByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	out := make([]ResultDetail, 0, len(attempts))
	for _, a := range attempts {
		if a.Open() {
			continue
		}
		out = append(out, s.detail(q, a, s.userName(ctx, a.UserID), s.score(q, a.Answers)))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.Before(*out[j].EndTime) })
	return out, nil
}

func (s *Session) userName(ctx context.Context, userID string) string {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return "Unknown"
	}
	return u.Name
}

func (s *Session) detail(q Quiz, a Attempt, userName string, res scoreResult) ResultDetail {
	return ResultDetail{
		ID:              a.ID,
		QuizID:          a.QuizID,
		QuizTitle:       q.Title,
		UserID:          a.UserID,
		UserName:        userName,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Score:           a.Score,
		TotalQuestions:  len(q.Questions),
		CorrectAnswers:  res.CorrectAnswers,
		QuestionResults: res.PerQuestion,
	}
}
