package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/repository"
	"smartspeak/internal/security"
	"smartspeak/internal/validation"
)

var (
	ErrMissingFields          = errors.New("required fields missing")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrStudentExists          = errors.New("student id already taken")
	ErrTeacherExists          = errors.New("teacher username already taken")
	ErrTeacherNotFound        = errors.New("teacher not found")
	ErrTeacherPending         = errors.New("teacher awaiting approval")
	ErrTeacherRejected        = errors.New("teacher registration rejected")
	ErrTeacherNotActive       = errors.New("teacher account not active")
	ErrNoSecurityQuestion     = errors.New("no security question set")
	ErrSecurityAnswerMismatch = errors.New("security answer does not match")
)

// DefaultAdminID is the id given to the admin created on an empty store
const DefaultAdminID = "admin_001"

// StudentSignup is the input of a student registration
type StudentSignup struct {
	UserID   string
	Password string
	Name     string
	Class    string
	Division string
}

// TeacherSignup is the input of a teacher registration
type TeacherSignup struct {
	Username string
	Password string
	Name     string
	Email    string
}

// AuthService handles accounts, logins and password recovery for all roles
type AuthService struct {
	userRepo     *repository.UserRepository
	teacherRepo  *repository.TeacherRepository
	adminRepo    *repository.AdminRepository
	gamification *GamificationService
	email        *EmailService
	log          *logger.Logger
	now          func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, teacherRepo *repository.TeacherRepository, adminRepo *repository.AdminRepository, gamification *GamificationService, email *EmailService, log *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		teacherRepo:  teacherRepo,
		adminRepo:    adminRepo,
		gamification: gamification,
		email:        email,
		log:          log,
		now:          time.Now,
	}
}

// SignupStudent registers a student with a fresh progress record
func (s *AuthService) SignupStudent(in StudentSignup) (*models.Student, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.Name = strings.TrimSpace(in.Name)
	if in.UserID == "" || in.Password == "" || in.Name == "" || strings.TrimSpace(in.Class) == "" || strings.TrimSpace(in.Division) == "" {
		return nil, ErrMissingFields
	}
	if err := validation.ValidateStudentID(in.UserID); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.StudentExists(in.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing student: %w", err)
	}
	if exists {
		return nil, ErrStudentExists
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	student := &models.Student{
		UserID:            in.UserID,
		Username:          in.Name,
		Name:              in.Name,
		PasswordHash:      passwordHash,
		Class:             strings.TrimSpace(in.Class),
		Division:          strings.TrimSpace(in.Division),
		UserType:          models.RoleStudent,
		Level:             1,
		ModeStats:         map[string]models.ModeStat{},
		Achievements:      models.NewAchievements(),
		Mistakes:          models.NewMistakes(),
		WeeklyXP:          map[string]int{},
		AchievementsState: models.FieldPresent,
		MistakesState:     models.FieldPresent,
		WeeklyXPState:     models.FieldPresent,
		CreatedAt:         now,
		LastActive:        &now,
	}
	if err := s.userRepo.CreateStudent(student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.log.Info("Student registered", "user_id", student.UserID, "class", student.Class, "division", student.Division)
	return student, nil
}

// LoginStudent verifies a student's password. A store failure is returned as
// an error so the login fails closed.
func (s *AuthService) LoginStudent(userID, password string) (*models.Student, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || password == "" {
		return nil, ErrMissingFields
	}

	student, err := s.userRepo.GetStudent(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil || student.IsTeacherRecord() {
		return nil, ErrUserNotFound
	}

	check := security.VerifyPassword(student.PasswordHash, password)
	if !check.Match {
		return nil, ErrInvalidCredentials
	}
	if check.Legacy {
		s.rehash("student", userID, password, s.userRepo.UpdatePassword)
	}

	if err := s.userRepo.TouchLastActive(userID, s.now()); err != nil {
		s.log.Warn("Failed to update last active", "user_id", userID, "error", err)
	}
	if err := s.gamification.UpdateLoginStreak(userID); err != nil {
		s.log.Warn("Failed to update login streak", "user_id", userID, "error", err)
	}
	if _, err := s.gamification.EnsureBadges(userID); err != nil {
		s.log.Warn("Failed to refresh badges", "user_id", userID, "error", err)
	}

	s.log.Info("Student logged in", "user_id", userID)
	return student, nil
}

func (s *AuthService) rehash(role, id, password string, update func(id, hash string) error) {
	hash, err := security.HashPassword(password)
	if err == nil {
		err = update(id, hash)
	}
	if err != nil {
		s.log.Warn("Failed to upgrade legacy password", "role", role, "id", id, "error", err)
		return
	}
	s.log.Info("Upgraded legacy password", "role", role, "id", id)
}

// SignupTeacher files a pending teacher registration and notifies the admin
func (s *AuthService) SignupTeacher(ctx context.Context, in TeacherSignup) (*models.Teacher, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Password == "" || in.Name == "" {
		return nil, ErrMissingFields
	}
	if err := validation.ValidateTeacherCredentials(in.Username, in.Password); err != nil {
		return nil, err
	}
	if in.Email != "" {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, err
		}
	}

	existing, err := s.teacherRepo.GetTeacherByUsername(in.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing teacher: %w", err)
	}
	if existing != nil {
		return nil, ErrTeacherExists
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	teacher := &models.Teacher{
		TeacherID:    "teacher_" + in.Username,
		Username:     in.Username,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Status:       models.TeacherPending,
		CreatedAt:    s.now(),
	}
	if err := s.teacherRepo.CreateTeacher(teacher); err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}
	s.log.Info("Teacher registration submitted", "teacher_id", teacher.TeacherID)

	if err := s.email.NotifyTeacherSignup(ctx, teacher); err != nil {
		s.log.Warn("Failed to notify admin of teacher signup", "teacher_id", teacher.TeacherID, "error", err)
	}
	return teacher, nil
}

// LoginTeacher verifies an approved teacher's password
func (s *AuthService) LoginTeacher(username, password string) (*models.Teacher, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	teacher, err := s.teacherRepo.GetTeacherByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	if teacher == nil {
		return nil, ErrTeacherNotFound
	}

	switch teacher.EffectiveStatus() {
	case models.TeacherPending:
		return nil, ErrTeacherPending
	case models.TeacherRejected:
		return nil, ErrTeacherRejected
	}

	check := security.VerifyPassword(teacher.PasswordHash, password)
	if !check.Match {
		return nil, ErrInvalidCredentials
	}
	if check.Legacy {
		s.rehash("teacher", teacher.TeacherID, password, s.teacherRepo.RehashPassword)
	}
	if err := s.teacherRepo.TouchLastActive(teacher.TeacherID, s.now()); err != nil {
		s.log.Warn("Failed to update last active", "teacher_id", teacher.TeacherID, "error", err)
	}

	s.log.Info("Teacher logged in", "teacher_id", teacher.TeacherID)
	return teacher, nil
}

// LoginAdmin verifies an admin's password
func (s *AuthService) LoginAdmin(username, password string) (*models.Admin, error) {
	admin, err := s.adminRepo.GetAdminByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}

	check := security.VerifyPassword(admin.PasswordHash, password)
	if !check.Match {
		return nil, ErrInvalidCredentials
	}
	if check.Legacy {
		s.rehash("admin", admin.AdminID, password, s.adminRepo.UpdatePassword)
	}

	s.log.Info("Admin logged in", "admin_id", admin.AdminID)
	return admin, nil
}

// EnsureDefaultAdmin creates the default admin on an empty store and rehashes
// any admin password still stored as plaintext. It reports whether an admin
// was created and how many passwords were upgraded.
func (s *AuthService) EnsureDefaultAdmin(username, password string) (bool, int, error) {
	count, err := s.adminRepo.CountAdmins()
	if err != nil {
		return false, 0, err
	}

	created := false
	if count == 0 {
		hash, err := security.HashPassword(password)
		if err != nil {
			return false, 0, fmt.Errorf("failed to hash password: %w", err)
		}
		err = s.adminRepo.CreateAdmin(&models.Admin{
			AdminID:      DefaultAdminID,
			Username:     username,
			Name:         "Administrator",
			PasswordHash: hash,
			CreatedAt:    s.now(),
		})
		if err != nil {
			return false, 0, err
		}
		created = true
		s.log.Info("Default admin created", "username", username)
	}

	admins, err := s.adminRepo.ListAdmins()
	if err != nil {
		return created, 0, err
	}
	rehashed := 0
	for _, a := range admins {
		if security.IsHashed(a.PasswordHash) {
			continue
		}
		hash, err := security.HashPassword(a.PasswordHash)
		if err != nil {
			return created, rehashed, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.adminRepo.UpdatePassword(a.AdminID, hash); err != nil {
			return created, rehashed, err
		}
		rehashed++
	}
	if rehashed > 0 {
		s.log.Info("Rehashed plaintext admin passwords", "count", rehashed)
	}
	return created, rehashed, nil
}

// SetSecurityQuestion stores a student's recovery question and hashed answer
func (s *AuthService) SetSecurityQuestion(userID, question, answer string) error {
	question = strings.TrimSpace(question)
	if err := validation.ValidateSecurityQuestion(question); err != nil {
		return err
	}
	if err := validation.ValidateSecurityAnswer(answer); err != nil {
		return err
	}

	answerHash, err := security.HashSecurityAnswer(answer)
	if err != nil {
		return fmt.Errorf("failed to hash answer: %w", err)
	}
	if err := s.userRepo.SetSecurityQuestion(userID, question, answerHash); err != nil {
		return err
	}
	s.log.Info("Security question set", "user_id", userID)
	return nil
}

// SecurityQuestion returns the recovery question of a student
func (s *AuthService) SecurityQuestion(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if err := validation.ValidateStudentID(userID); err != nil {
		return "", err
	}
	student, err := s.userRepo.GetStudent(userID)
	if err != nil {
		return "", fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return "", ErrUserNotFound
	}
	if student.SecurityQuestion == "" {
		return "", ErrNoSecurityQuestion
	}
	return student.SecurityQuestion, nil
}

// ResetPasswordWithSecurityAnswer sets a new password after the student answers
// their recovery question
func (s *AuthService) ResetPasswordWithSecurityAnswer(userID, question, answer, newPassword string) error {
	userID = strings.TrimSpace(userID)
	if err := validation.ValidateStudentPassword(newPassword); err != nil {
		return err
	}

	student, err := s.userRepo.GetStudent(userID)
	if err != nil {
		return fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil || student.SecurityAnswerHash == "" ||
		student.SecurityQuestion != strings.TrimSpace(question) {
		return ErrSecurityAnswerMismatch
	}
	if !security.VerifyPassword(student.SecurityAnswerHash, security.NormalizeSecurityAnswer(answer)).Match {
		return ErrSecurityAnswerMismatch
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(userID, passwordHash); err != nil {
		return err
	}
	s.log.Info("Student password reset by security question", "user_id", userID)
	return nil
}

// RequestTeacherPasswordReset flags an approved teacher for an admin reset and notifies the admin
func (s *AuthService) RequestTeacherPasswordReset(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrMissingFields
	}
	teacher, err := s.teacherRepo.GetTeacherByUsername(username)
	if err != nil {
		return fmt.Errorf("failed to get teacher: %w", err)
	}
	if teacher == nil {
		return ErrTeacherNotFound
	}
	if teacher.EffectiveStatus() != models.TeacherApproved {
		return ErrTeacherNotActive
	}

	ok, err := s.teacherRepo.RequestPasswordReset(teacher.TeacherID, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrTeacherNotFound
	}
	s.log.Info("Teacher password reset requested", "teacher_id", teacher.TeacherID)

	if err := s.email.NotifyPasswordResetRequest(ctx, teacher); err != nil {
		s.log.Warn("Failed to notify admin of reset request", "teacher_id", teacher.TeacherID, "error", err)
	}
	return nil
}
