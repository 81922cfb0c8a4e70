package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartspeak/internal/models"
	"smartspeak/internal/security"
)

func TestRoleGuards(t *testing.T) {
	srv := newTestServer(t)
	student := srv.signupStudent(t, "1234")
	admin := srv.loginAdmin(t)

	tests := []struct {
		name   string
		method string
		path   string
		sess   *session
		status int
	}{
		{"anonymous stats", http.MethodGet, "/get_user_stats", nil, http.StatusUnauthorized},
		{"anonymous session", http.MethodGet, "/api/session", nil, http.StatusUnauthorized},
		{"student on admin stats", http.MethodGet, "/api/admin/stats", student, http.StatusForbidden},
		{"student on class list", http.MethodGet, "/api/teacher/classes", student, http.StatusForbidden},
		{"admin on student stats", http.MethodGet, "/get_user_stats", admin, http.StatusForbidden},
		{"admin on class list", http.MethodGet, "/api/teacher/classes", admin, http.StatusOK},
		{"student stats", http.MethodGet, "/get_user_stats", student, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := srv.do(t, tt.method, tt.path, nil, tt.sess)
			assert.Equal(t, tt.status, rec.Code)
			switch tt.status {
			case http.StatusUnauthorized:
				assert.Equal(t, ErrNotLoggedIn, out["message"])
			case http.StatusForbidden:
				assert.Equal(t, ErrUnauthorized, out["message"])
			}
		})
	}
}

func TestCSRFProtect(t *testing.T) {
	srv := newTestServer(t)
	sess := srv.signupStudent(t, "1234")

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing header", "", http.StatusForbidden},
		{"wrong token", "not-the-token", http.StatusForbidden},
		{"valid token", sess.csrf, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := srv.do(t, http.MethodPost, "/api/update-challenge", map[string]string{"challenge_type": "practice"},
				&session{cookie: sess.cookie, csrf: tt.token})
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, ErrInvalidCSRFToken, out["message"])
			}
		})
	}

	// anonymous requests carry no session to forge
	rec, _ := srv.do(t, http.MethodPost, "/repeat_sentence", map[string]string{}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateClearsInvalidCookie(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == security.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestRateLimit(t *testing.T) {
	log, logs := observedLogger()
	m := NewMiddleware(nil, nil, security.NewRateLimiter(1, time.Minute), log)
	handler := m.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		respondSuccess(w, nil)
	})

	statuses := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.7:5000"
		rec := httptest.NewRecorder()
		handler(rec, req)
		statuses = append(statuses, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, statuses)
	require.Equal(t, 1, logs.FilterMessage("Rate limit exceeded").Len())
	assert.Equal(t, "10.0.0.7", logs.FilterMessage("Rate limit exceeded").All()[0].ContextMap()["ip"])
}

func TestRequireRoleAcceptsAnyListedRole(t *testing.T) {
	log, _ := observedLogger()
	m := NewMiddleware(nil, nil, nil, log)
	handler := m.RequireRole(func(w http.ResponseWriter, r *http.Request) {
		respondSuccess(w, nil)
	}, models.RoleTeacher, models.RoleAdmin)

	for _, role := range []string{models.RoleTeacher, models.RoleAdmin, models.RoleStudent} {
		t.Run(role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			claims := &security.Claims{UserID: "u1", Role: role}
			req = req.WithContext(context.WithValue(req.Context(), ClaimsContextKey, claims))
			rec := httptest.NewRecorder()
			handler(rec, req)

			want := http.StatusOK
			if role == models.RoleStudent {
				want = http.StatusForbidden
			}
			assert.Equal(t, want, rec.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec, out := srv.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, out["ready"])

	srv.startup.CompleteStep(StepDatabase)
	_, out = srv.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.EqualValues(t, 50, out["progress"])

	srv.startup.CompleteStep(StepMigrations)
	srv.startup.MarkReady()
	rec, out = srv.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["ready"])
	assert.Len(t, out["steps"], 2)

	srv.startup.SetHealthCheck(func() bool { return false })
	rec, out = srv.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, out["database"])
}

func TestAccessLog(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodGet, "/api/security-questions", nil, nil)

	entries := srv.logs.FilterMessage("HTTP request").All()
	require.NotEmpty(t, entries)
	fields := entries[len(entries)-1].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/security-questions", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}
