package handlers

import (
	"errors"
	"net/http"
	"strings"

	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/security"
	"smartspeak/internal/service"
	"smartspeak/internal/validation"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	contexts    *service.ContextService
	tokens      *security.TokenService
	csrf        *security.CSRFGenerator
	log         *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, contexts *service.ContextService, tokens *security.TokenService, csrf *security.CSRFGenerator, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		contexts:    contexts,
		tokens:      tokens,
		csrf:        csrf,
		log:         log,
	}
}

type loginRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

type signupRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Class    string `json:"class"`
	Division string `json:"division"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

// startSession sets the session cookie and returns the CSRF token bound to it
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID, role, name string) (string, error) {
	token, claims, err := h.tokens.Issue(userID, role, name)
	if err != nil {
		return "", err
	}
	csrfToken, err := h.csrf.GenerateToken(claims.ID)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, security.SessionCookie(r, token, claims.ExpiresAt.Time))
	return csrfToken, nil
}

// Login handles student and teacher logins
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}

	if req.UserType == models.RoleTeacher {
		h.loginTeacher(w, r, req)
		return
	}

	student, err := h.authService.LoginStudent(req.UserID, req.Password)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		respondFailure(w, MsgMissingLogin)
		return
	case errors.Is(err, service.ErrUserNotFound):
		respondFailure(w, MsgStudentNotFound)
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		respondFailure(w, MsgIncorrectPassword)
		return
	case err != nil:
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Student login failed", err)
		return
	}

	csrfToken, err := h.startSession(w, r, student.UserID, models.RoleStudent, student.DisplayName())
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Failed to start session", err)
		return
	}
	respondSuccess(w, map[string]interface{}{"redirect": "/main", "csrf_token": csrfToken})
}

func (h *AuthHandler) loginTeacher(w http.ResponseWriter, r *http.Request, req loginRequest) {
	username := req.Username
	if username == "" {
		username = req.UserID
	}

	teacher, err := h.authService.LoginTeacher(username, req.Password)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		respondFailure(w, MsgMissingLogin)
		return
	case errors.Is(err, service.ErrTeacherNotFound):
		respondFailure(w, MsgTeacherNotFound)
		return
	case errors.Is(err, service.ErrTeacherPending):
		respondFailure(w, MsgTeacherPending)
		return
	case errors.Is(err, service.ErrTeacherRejected):
		respondFailure(w, MsgTeacherRejected)
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		respondFailure(w, MsgIncorrectPassword)
		return
	case err != nil:
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Teacher login failed", err)
		return
	}

	csrfToken, err := h.startSession(w, r, teacher.TeacherID, models.RoleTeacher, teacher.Name)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Failed to start session", err)
		return
	}
	respondSuccess(w, map[string]interface{}{"redirect": "/teacher-dashboard", "csrf_token": csrfToken})
}

// AdminLogin handles the admin console login
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}

	admin, err := h.authService.LoginAdmin(req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		respondFailure(w, MsgInvalidAdmin)
		return
	}
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Admin login failed", err)
		return
	}

	csrfToken, err := h.startSession(w, r, admin.AdminID, models.RoleAdmin, admin.Username)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Failed to start session", err)
		return
	}
	respondSuccess(w, map[string]interface{}{"redirect": "/admin/dashboard", "csrf_token": csrfToken})
}

// Signup registers a student (logged in straight away) or a pending teacher
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}

	if req.UserType == models.RoleTeacher {
		h.signupTeacher(w, r, req)
		return
	}

	student, err := h.authService.SignupStudent(service.StudentSignup{
		UserID:   req.UserID,
		Password: req.Password,
		Name:     req.Name,
		Class:    req.Class,
		Division: req.Division,
	})
	if msg, ok := signupFailure(err, MsgStudentExists); ok {
		respondFailure(w, msg)
		return
	}
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Student signup failed", err)
		return
	}

	csrfToken, err := h.startSession(w, r, student.UserID, models.RoleStudent, student.DisplayName())
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Failed to start session", err)
		return
	}
	respondSuccess(w, map[string]interface{}{"redirect": "/main", "csrf_token": csrfToken})
}

func (h *AuthHandler) signupTeacher(w http.ResponseWriter, r *http.Request, req signupRequest) {
	username := req.Username
	if username == "" {
		username = req.UserID
	}

	_, err := h.authService.SignupTeacher(r.Context(), service.TeacherSignup{
		Username: username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
	})
	if msg, ok := signupFailure(err, MsgTeacherExists); ok {
		respondFailure(w, msg)
		return
	}
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Teacher signup failed", err)
		return
	}

	respondSuccess(w, map[string]interface{}{
		"pending":  true,
		"message":  MsgTeacherSignupQueued,
		"redirect": nil,
	})
}

// signupFailure maps a registration error to its user message
func signupFailure(err error, existsMsg string) (string, bool) {
	if err == nil {
		return "", false
	}
	if errors.Is(err, service.ErrMissingFields) {
		return MsgFillAllFields, true
	}
	if errors.Is(err, service.ErrStudentExists) || errors.Is(err, service.ErrTeacherExists) {
		return existsMsg, true
	}
	return validationMessage(err)
}

// Logout clears the session and forgets the student's conversation memory
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := GetClaimsFromContext(r.Context()); claims != nil {
		if claims.Role == models.RoleStudent {
			h.contexts.ForgetUser(r.Context(), claims.UserID)
		}
		h.log.Info("Logged out", "user_id", claims.UserID, "role", claims.Role)
	}
	http.SetCookie(w, security.ClearSessionCookie(r))

	target := "/"
	if strings.HasPrefix(r.URL.Path, "/admin/") {
		target = "/admin/login"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Session describes the current session and re-issues its CSRF token
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r.Context())
	csrfToken, err := h.csrf.GenerateToken(claims.ID)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Failed to derive CSRF token", err)
		return
	}
	respondSuccess(w, map[string]interface{}{
		"user_id":    claims.UserID,
		"role":       claims.Role,
		"name":       claims.Name,
		"csrf_token": csrfToken,
	})
}

// SecurityQuestions lists the questions a student may choose from
func (h *AuthHandler) SecurityQuestions(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, map[string]interface{}{"questions": validation.SecurityQuestions})
}

type securityQuestionRequest struct {
	UserID      string `json:"user_id"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	NewPassword string `json:"new_password"`
	Username    string `json:"username"`
}

// SetSecurityQuestion stores the logged-in student's recovery question
func (h *AuthHandler) SetSecurityQuestion(w http.ResponseWriter, r *http.Request) {
	userID := studentID(r)
	if userID == "" {
		respondFailure(w, MsgLoginRequired)
		return
	}

	var req securityQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.Answer) == "" {
		respondFailure(w, MsgQuestionRequired)
		return
	}

	err := h.authService.SetSecurityQuestion(userID, req.Question, req.Answer)
	if msg, ok := validationMessage(err); ok {
		respondFailure(w, msg)
		return
	}
	if err != nil {
		h.log.Error("Failed to save security question", "user_id", userID, "error", err)
		respondFailure(w, MsgSecurityQuestionFail)
		return
	}
	respondSuccess(w, map[string]interface{}{"message": MsgSecurityQuestionSet})
}

// ForgotPasswordQuestion returns the recovery question of a student id
func (h *AuthHandler) ForgotPasswordQuestion(w http.ResponseWriter, r *http.Request) {
	var req securityQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}

	question, err := h.authService.SecurityQuestion(req.UserID)
	var verr validation.ValidationError
	switch {
	case errors.As(err, &verr):
		respondFailure(w, MsgEnterStudentID)
	case errors.Is(err, service.ErrUserNotFound):
		respondFailure(w, MsgUserIDNotFound)
	case errors.Is(err, service.ErrNoSecurityQuestion):
		respondFailure(w, MsgNoSecurityQuestion)
	case err != nil:
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Security question lookup failed", err)
	default:
		respondSuccess(w, map[string]interface{}{"question": question})
	}
}

// ForgotPasswordVerify resets a student's password after a correct answer
func (h *AuthHandler) ForgotPasswordVerify(w http.ResponseWriter, r *http.Request) {
	var req securityQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Question) == "" ||
		strings.TrimSpace(req.Answer) == "" || strings.TrimSpace(req.NewPassword) == "" {
		respondFailure(w, MsgAllFieldsRequired)
		return
	}

	err := h.authService.ResetPasswordWithSecurityAnswer(req.UserID, req.Question, req.Answer, strings.TrimSpace(req.NewPassword))
	var verr validation.ValidationError
	switch {
	case errors.As(err, &verr):
		respondFailure(w, MsgNewPasswordTooShort)
	case errors.Is(err, service.ErrSecurityAnswerMismatch):
		respondFailure(w, MsgIncorrectAnswer)
	case err != nil:
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Security answer reset failed", err)
	default:
		respondSuccess(w, map[string]interface{}{"message": MsgPasswordReset})
	}
}

// TeacherForgotPassword files a password reset request for the admin
func (h *AuthHandler) TeacherForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req securityQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidRequest, "", nil)
		return
	}

	err := h.authService.RequestTeacherPasswordReset(r.Context(), req.Username)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		respondFailure(w, MsgEnterUsername)
	case errors.Is(err, service.ErrTeacherNotFound):
		respondFailure(w, MsgUsernameNotFound)
	case errors.Is(err, service.ErrTeacherNotActive):
		respondFailure(w, MsgTeacherNotActive)
	case err != nil:
		h.log.Error("Teacher reset request failed", "username", req.Username, "error", err)
		respondFailure(w, MsgResetRequestFailed)
	default:
		respondSuccess(w, map[string]interface{}{"message": MsgResetRequested})
	}
}
