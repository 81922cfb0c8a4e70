package handlers

import (
	"net/http"

	"smartspeak/internal/logger"
	"smartspeak/internal/models"
)

// Router groups the handlers that make up the HTTP API
type Router struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Practice   *PracticeHandler
	Progress   *ProgressHandler
	Teacher    *TeacherHandler
	Admin      *AdminHandler
	Startup    *StartupStatus
	StaticDir  string
}

// Handler registers every route and wraps the mux with session parsing and access logging
func (rt *Router) Handler(log *logger.Logger) http.Handler {
	m := rt.Middleware
	mux := http.NewServeMux()

	// Static files, including generated audio
	if rt.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(rt.StaticDir))))
	}

	if rt.Startup != nil {
		mux.Handle("GET /healthz", rt.Startup)
	}

	// Accounts
	mux.HandleFunc("POST /login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("POST /signup", m.RateLimit(rt.Auth.Signup))
	mux.HandleFunc("POST /admin/login", m.RateLimit(rt.Auth.AdminLogin))
	mux.HandleFunc("GET /logout", rt.Auth.Logout)
	mux.HandleFunc("GET /admin/logout", rt.Auth.Logout)
	mux.HandleFunc("GET /api/session", m.RequireAuth(rt.Auth.Session))
	mux.HandleFunc("GET /api/security-questions", rt.Auth.SecurityQuestions)
	mux.HandleFunc("POST /set-security-question", m.CSRFProtect(rt.Auth.SetSecurityQuestion))
	mux.HandleFunc("POST /forgot-password/get-question", m.RateLimit(rt.Auth.ForgotPasswordQuestion))
	mux.HandleFunc("POST /forgot-password/verify", m.RateLimit(rt.Auth.ForgotPasswordVerify))
	mux.HandleFunc("POST /teacher-forgot-password", m.RateLimit(rt.Auth.TeacherForgotPassword))

	// Practice
	mux.HandleFunc("POST /process", m.CSRFProtect(rt.Practice.Process))
	mux.HandleFunc("POST /api/reset-conversation", m.RequireStudent(m.CSRFProtect(rt.Practice.ResetConversation)))
	mux.HandleFunc("POST /repeat_sentence", m.CSRFProtect(rt.Practice.RepeatSentence))
	mux.HandleFunc("POST /check_repeat", m.CSRFProtect(rt.Practice.CheckRepeat))
	mux.HandleFunc("POST /spell_word", m.CSRFProtect(rt.Practice.SpellWord))
	mux.HandleFunc("POST /check_spelling", m.CSRFProtect(rt.Practice.CheckSpelling))
	mux.HandleFunc("POST /get_meaning", m.CSRFProtect(rt.Practice.GetMeaning))

	// Progress
	mux.HandleFunc("GET /get_user_stats", m.RequireStudent(rt.Progress.UserStats))
	mux.HandleFunc("POST /api/get-leaderboard", m.RequireAuth(m.CSRFProtect(rt.Progress.Leaderboard)))
	mux.HandleFunc("GET /api/get-daily-challenges", m.RequireStudent(rt.Progress.DailyChallenges))
	mux.HandleFunc("POST /api/update-challenge", m.RequireStudent(m.CSRFProtect(rt.Progress.UpdateChallenge)))
	mux.HandleFunc("POST /api/ensure-badges", m.RequireStudent(m.CSRFProtect(rt.Progress.EnsureBadges)))
	mux.HandleFunc("GET /api/get-achievements", m.RequireStudent(rt.Progress.Achievements))
	mux.HandleFunc("GET /api/get-mistakes", m.RequireStudent(rt.Progress.Mistakes))
	mux.HandleFunc("POST /api/admin/migrate-users", m.RequireRole(m.CSRFProtect(rt.Progress.MigrateUsers), models.RoleTeacher, models.RoleAdmin))

	// Teacher dashboard
	mux.HandleFunc("POST /get_class_students", m.RequireTeacher(m.CSRFProtect(rt.Teacher.ClassStudents)))
	mux.HandleFunc("GET /api/teacher/classes", m.RequireRole(rt.Teacher.Classes, models.RoleTeacher, models.RoleAdmin))

	// Admin console
	mux.HandleFunc("GET /api/admin/stats", m.RequireAdmin(rt.Admin.Stats))
	mux.HandleFunc("GET /api/admin/students", m.RequireAdmin(rt.Admin.Students))
	mux.HandleFunc("GET /api/admin/teachers", m.RequireAdmin(rt.Admin.Teachers))
	mux.HandleFunc("GET /api/admin/password-reset-requests", m.RequireAdmin(rt.Admin.PasswordResetRequests))
	mux.HandleFunc("POST /api/admin/approve-teacher", m.RequireAdmin(m.CSRFProtect(rt.Admin.ApproveTeacher)))
	mux.HandleFunc("POST /api/admin/reject-teacher", m.RequireAdmin(m.CSRFProtect(rt.Admin.RejectTeacher)))
	mux.HandleFunc("POST /api/admin/delete-teacher", m.RequireAdmin(m.CSRFProtect(rt.Admin.DeleteTeacher)))
	mux.HandleFunc("POST /api/admin/delete-student", m.RequireAdmin(m.CSRFProtect(rt.Admin.DeleteStudent)))
	mux.HandleFunc("POST /api/admin/reset-student-password", m.RequireAdmin(m.CSRFProtect(rt.Admin.ResetStudentPassword)))
	mux.HandleFunc("POST /api/admin/reset-teacher-password", m.RequireAdmin(m.CSRFProtect(rt.Admin.ResetTeacherPassword)))
	mux.HandleFunc("GET /api/admin/export", m.RequireAdmin(rt.Admin.ExportDatabase))
	mux.HandleFunc("POST /api/admin/import", m.RequireAdmin(m.CSRFProtect(rt.Admin.ImportDatabase)))

	return Logging(log, m.Authenticate(mux))
}
