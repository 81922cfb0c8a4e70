package handlers

import (
	"context"
	"net/http"
	"time"

	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const ClaimsContextKey ContextKey = "claims"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  *security.TokenService
	csrf    *security.CSRFGenerator
	limiter *security.RateLimiter
	log     *logger.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.TokenService, csrf *security.CSRFGenerator, limiter *security.RateLimiter, log *logger.Logger) *Middleware {
	return &Middleware{
		tokens:  tokens,
		csrf:    csrf,
		limiter: limiter,
		log:     log,
	}
}

// Authenticate attaches the session claims to the request when the session
// cookie holds a valid token. Requests without one pass through anonymously.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokens.Validate(cookie.Value)
		if err != nil {
			// Clear invalid cookie
			http.SetCookie(w, security.ClearSessionCookie(r))
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth is middleware that requires a valid session of any role
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireRole(next)
}

// RequireRole requires a session whose role is one of roles. No roles means any role.
func (m *Middleware) RequireRole(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaimsFromContext(r.Context())
		if claims == nil {
			respondJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"message": ErrNotLoggedIn,
			})
			return
		}
		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			m.log.Warn("Role check failed", "user_id", claims.UserID, "role", claims.Role, "path", r.URL.Path)
			respondJSON(w, http.StatusForbidden, map[string]interface{}{
				"success": false,
				"message": ErrUnauthorized,
			})
			return
		}
		next(w, r)
	}
}

// RequireStudent requires a student session
func (m *Middleware) RequireStudent(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireRole(next, models.RoleStudent)
}

// RequireTeacher requires a teacher session
func (m *Middleware) RequireTeacher(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireRole(next, models.RoleTeacher)
}

// RequireAdmin requires an admin session
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireRole(next, models.RoleAdmin)
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CSRFProtect validates the CSRF header of state-changing requests made with
// a session. Anonymous requests carry no session to forge.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r)
			return
		}

		claims := GetClaimsFromContext(r.Context())
		if claims == nil {
			next(w, r)
			return
		}

		if !m.csrf.ValidateToken(claims.ID, r.Header.Get(security.CSRFHeader)) {
			m.log.Warn("CSRF validation failed", "user_id", claims.UserID, "path", r.URL.Path)
			respondJSON(w, http.StatusForbidden, map[string]interface{}{
				"success": false,
				"message": ErrInvalidCSRFToken,
			})
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			m.log.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			respondJSON(w, http.StatusTooManyRequests, map[string]interface{}{
				"success": false,
				"message": ErrTooManyRequests,
			})
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging middleware logs HTTP requests
func Logging(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// GetClaimsFromContext retrieves the session claims from the request context
func GetClaimsFromContext(ctx context.Context) *security.Claims {
	claims, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	if !ok {
		return nil
	}
	return claims
}

// studentID returns the id of a logged-in student, or "" for anyone else
func studentID(r *http.Request) string {
	claims := GetClaimsFromContext(r.Context())
	if claims == nil || claims.Role != models.RoleStudent {
		return ""
	}
	return claims.UserID
}
