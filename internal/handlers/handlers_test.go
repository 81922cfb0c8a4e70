package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"smartspeak/internal/cache"
	"smartspeak/internal/content"
	"smartspeak/internal/database"
	"smartspeak/internal/dialogue"
	"smartspeak/internal/logger"
	"smartspeak/internal/repository"
	"smartspeak/internal/security"
	"smartspeak/internal/service"
)

const coachReply = "CORRECT: I like apples\nPRAISE: Well done!\nQUESTION: What else do you like?"

type stubSynth struct{}

func (stubSynth) Synthesize(_ context.Context, _ string, slow bool) (string, error) {
	if slow {
		return "/static/audio/slow.mp3", nil
	}
	return "/static/audio/normal.mp3", nil
}

type testServer struct {
	handler       http.Handler
	users         *repository.UserRepository
	conversations *repository.ConversationRepository
	startup       *StartupStatus
	logs          *observer.ObservedLogs
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "handlers_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.RunMigrations("../../migrations")
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	users := repository.NewUserRepository(db)
	teachers := repository.NewTeacherRepository(db)
	admins := repository.NewAdminRepository(db)

	email, err := service.NewEmailService(context.Background(), service.EmailConfig{}, log)
	require.NoError(t, err)

	generator := dialogue.GeneratorFunc(func(context.Context, dialogue.Request) (string, error) {
		return coachReply, nil
	})

	gamification := service.NewGamificationService(users, log)
	auth := service.NewAuthService(users, teachers, admins, gamification, email, log)
	_, _, err = auth.EnsureDefaultAdmin("admin", "admin123")
	require.NoError(t, err)

	conversations := repository.NewConversationRepository(db)
	contexts := service.NewContextService(conversations, cache.NewMemoryCache(16, 0), log)
	coach := service.NewCoachService(contexts, generator, stubSynth{}, gamification, log)
	practice := service.NewPracticeService(content.MustLoad(), generator, stubSynth{}, gamification, log)

	tokens := security.NewTokenService("test-secret", "smartspeak", time.Hour)
	csrf := security.NewCSRFGenerator("test-secret")
	startup := NewStartupStatus(StepDatabase, StepMigrations)

	router := &Router{
		Middleware: NewMiddleware(tokens, csrf, security.NewRateLimiter(1000, time.Minute), log),
		Auth:       NewAuthHandler(auth, contexts, tokens, csrf, log),
		Practice:   NewPracticeHandler(practice, coach, log),
		Progress:   NewProgressHandler(gamification, log),
		Teacher:    NewTeacherHandler(service.NewTeacherService(users, log), log),
		Admin:      NewAdminHandler(service.NewAdminService(users, teachers, email, log), service.NewBackupService(db, log), log),
		Startup:    startup,
	}

	return &testServer{
		handler:       router.Handler(log),
		users:         users,
		conversations: conversations,
		startup:       startup,
		logs:          logs,
	}
}

// session is a logged-in browser: the session cookie plus its CSRF token
type session struct {
	cookie *http.Cookie
	csrf   string
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, sess *session) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sess != nil {
		req.AddCookie(sess.cookie)
		req.Header.Set(security.CSRFHeader, sess.csrf)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

// login posts credentials and returns the resulting session
func (s *testServer) login(t *testing.T, path string, body interface{}) *session {
	t.Helper()
	rec, out := s.do(t, http.MethodPost, path, body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["success"], "login failed: %v", out["message"])

	for _, c := range rec.Result().Cookies() {
		if c.Name == security.SessionCookieName {
			return &session{cookie: c, csrf: out["csrf_token"].(string)}
		}
	}
	t.Fatalf("no session cookie in response to %s", path)
	return nil
}

func (s *testServer) signupStudent(t *testing.T, id string) *session {
	t.Helper()
	return s.login(t, "/signup", map[string]string{
		"user_id":  id,
		"password": "pass1",
		"name":     "Student " + id,
		"class":    "5",
		"division": "A",
	})
}

func (s *testServer) loginAdmin(t *testing.T) *session {
	t.Helper()
	return s.login(t, "/admin/login", map[string]string{"username": "admin", "password": "admin123"})
}
