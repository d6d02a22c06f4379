package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/quiz"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	handler http.Handler
	clock   *fakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := quiz.NewMemoryStore()
	clock := &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	authSvc := auth.NewAuthService("test-secret", time.Hour)
	accounts := auth.NewAccounts(store, authSvc)
	session := quiz.NewSession(store, store, store, clock, nil)

	r := chi.NewRouter()
	Mount(r, Deps{
		Session:  session,
		Quizzes:  store,
		Users:    store,
		Accounts: accounts,
		Auth:     authSvc,
	})
	return &testEnv{handler: r, clock: clock}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func (e *testEnv) signup(t *testing.T, name, email, role string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "secret1", "role": role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	return decode[tokenResponse](t, rec).AccessToken
}

var sampleQuiz = map[string]any{
	"title":              "Go Basics",
	"description":        "fundamentals",
	"time_limit_minutes": 10,
	"questions": []map[string]any{
		{"text": "What is a goroutine?", "options": []string{"thread", "lightweight routine"}, "correct_option_index": 1},
		{"text": "Zero value of a pointer?", "options": []string{"0", "nil", "undefined"}, "correct_option_index": 1},
	},
}

func (e *testEnv) createQuiz(t *testing.T, adminTok string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/quizzes", adminTok, sampleQuiz)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create quiz: status %d body %s", rec.Code, rec.Body.String())
	}
	return decode[quiz.Quiz](t, rec).ID
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	tok := env.signup(t, "Alice", "alice@example.com", "student")
	if tok == "" {
		t.Fatalf("signup returned no token")
	}

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Alice Two", "email": "alice@example.com", "password": "secret1", "role": "student",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup status = %d, want 400", rec.Code)
	}
}

func TestQuizVisibilityFilter(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.signup(t, "Root", "root@example.com", "admin")
	studentTok := env.signup(t, "Alice", "alice@example.com", "student")
	quizID := env.createQuiz(t, adminTok)

	rec := env.do(t, http.MethodGet, "/api/quizzes/"+quizID, studentTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("student detail status = %d", rec.Code)
	}
	detail := decode[quiz.QuizDetail](t, rec)
	for _, q := range detail.Questions {
		if q.CorrectOptionIndex != nil {
			t.Fatalf("student view leaked correct_option_index: %+v", q)
		}
	}

	rec = env.do(t, http.MethodGet, "/api/quizzes/"+quizID, adminTok, nil)
	detail = decode[quiz.QuizDetail](t, rec)
	for _, q := range detail.Questions {
		if q.CorrectOptionIndex == nil {
			t.Fatalf("admin view missing correct_option_index: %+v", q)
		}
	}

	// Listing is public and never includes questions at all.
	rec = env.do(t, http.MethodGet, "/api/quizzes", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public list status = %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("correct_option_index")) {
		t.Fatalf("quiz list leaked answer data: %s", rec.Body.String())
	}

	// Detail requires a token.
	rec = env.do(t, http.MethodGet, "/api/quizzes/"+quizID, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated detail status = %d, want 401", rec.Code)
	}
}

func TestQuizCRUDRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.signup(t, "Root", "root@example.com", "admin")
	studentTok := env.signup(t, "Alice", "alice@example.com", "student")

	rec := env.do(t, http.MethodPost, "/api/quizzes", studentTok, sampleQuiz)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student create status = %d, want 403", rec.Code)
	}

	quizID := env.createQuiz(t, adminTok)
	rec = env.do(t, http.MethodDelete, "/api/quizzes/"+quizID, studentTok, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student delete status = %d, want 403", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/api/quizzes/"+quizID, adminTok, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete status = %d, want 204", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/api/quizzes/"+quizID, adminTok, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing quiz status = %d, want 404", rec.Code)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.signup(t, "Root", "root@example.com", "admin")

	bad := map[string]any{
		"title":              "Go Basics",
		"description":        "x",
		"time_limit_minutes": 10,
		"questions": []map[string]any{
			{"text": "Valid question?", "options": []string{"a", "b"}, "correct_option_index": 2},
		},
	}
	rec := env.do(t, http.MethodPost, "/api/quizzes", adminTok, bad)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range answer index status = %d, want 400", rec.Code)
	}
}

func TestAttemptLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.signup(t, "Root", "root@example.com", "admin")
	studentTok := env.signup(t, "Alice", "alice@example.com", "student")
	quizID := env.createQuiz(t, adminTok)

	// Admins cannot take quizzes.
	rec := env.do(t, http.MethodPost, "/api/quizzes/"+quizID+"/start", adminTok, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin start status = %d, want 403", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/quizzes/"+quizID+"/start", studentTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d body %s", rec.Code, rec.Body.String())
	}
	start := decode[quiz.StartInfo](t, rec)

	// A second start within the window resumes the same attempt.
	rec = env.do(t, http.MethodPost, "/api/quizzes/"+quizID+"/start", studentTok, nil)
	if resumed := decode[quiz.StartInfo](t, rec); resumed.AttemptID != start.AttemptID {
		t.Fatalf("resume returned new attempt %s, want %s", resumed.AttemptID, start.AttemptID)
	}

	// Fetch the question ids the student is allowed to see.
	detail := decode[quiz.QuizDetail](t, env.do(t, http.MethodGet, "/api/quizzes/"+quizID, studentTok, nil))

	env.clock.Advance(5 * time.Minute)
	rec = env.do(t, http.MethodPost, "/api/quizzes/"+quizID+"/submit", studentTok, map[string]any{
		"attempt_id": start.AttemptID,
		"answers": []map[string]any{
			{"question_id": detail.Questions[0].ID, "chosen_index": 1},
			{"question_id": detail.Questions[1].ID, "chosen_index": 0},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d body %s", rec.Code, rec.Body.String())
	}
	result := decode[quiz.ResultDetail](t, rec)
	if result.Score != 50.00 || result.CorrectAnswers != 1 {
		t.Fatalf("result = %+v, want score 50 with 1 correct", result)
	}

	// Re-submission of the closed attempt is rejected.
	rec = env.do(t, http.MethodPost, "/api/quizzes/"+quizID+"/submit", studentTok, map[string]any{
		"attempt_id": start.AttemptID, "answers": []map[string]any{},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("resubmit status = %d, want 409", rec.Code)
	}

	// Starting again after completion is rejected.
	rec = env.do(t, http.MethodPost, "/api/quizzes/"+quizID+"/start", studentTok, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("start after completion status = %d, want 409", rec.Code)
	}

	// Result views.
	rec = env.do(t, http.MethodGet, "/api/quizzes/"+quizID+"/my-result", studentTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("my-result status = %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/results/"+start.AttemptID, studentTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("result by id status = %d", rec.Code)
	}

	otherTok := env.signup(t, "Bob", "bob@example.com", "student")
	rec = env.do(t, http.MethodGet, "/api/results/"+start.AttemptID, otherTok, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign result status = %d, want 403", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/quizzes/"+quizID+"/results", studentTok, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student results listing status = %d, want 403", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/quizzes/"+quizID+"/results", adminTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin results listing status = %d", rec.Code)
	}
	results := decode[[]quiz.ResultDetail](t, rec)
	if len(results) != 1 || results[0].UserName != "Alice" {
		t.Fatalf("admin results = %+v, want Alice's attempt", results)
	}
}

func TestSubmitPastGraceReturnsExpired(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.signup(t, "Root", "root@example.com", "admin")
	studentTok := env.signup(t, "Alice", "alice@example.com", "student")
	quizID := env.createQuiz(t, adminTok)

	start := decode[quiz.StartInfo](t, env.do(t, http.MethodPost, "/api/quizzes/"+quizID+"/start", studentTok, nil))

	env.clock.Advance(10*time.Minute + 31*time.Second)
	rec := env.do(t, http.MethodPost, "/api/quizzes/"+quizID+"/submit", studentTok, map[string]any{
		"attempt_id": start.AttemptID, "answers": []map[string]any{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expired submit status = %d, want 400", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("time limit exceeded")) {
		t.Fatalf("expired error lacks elapsed detail: %s", rec.Body.String())
	}
}

func TestTimestampsSerializedAsUTC(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.signup(t, "Root", "root@example.com", "admin")
	studentTok := env.signup(t, "Alice", "alice@example.com", "student")
	quizID := env.createQuiz(t, adminTok)

	rec := env.do(t, http.MethodPost, "/api/quizzes/"+quizID+"/start", studentTok, nil)
	var raw struct {
		StartTime string `json:"start_time"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw.StartTime) == 0 || raw.StartTime[len(raw.StartTime)-1] != 'Z' {
		t.Fatalf("start_time %q is not an explicit-UTC ISO-8601 string", raw.StartTime)
	}
	if _, err := time.Parse(time.RFC3339, raw.StartTime); err != nil {
		t.Fatalf("start_time %q unparsable: %v", raw.StartTime, err)
	}
}
