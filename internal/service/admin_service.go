package service

import (
	"context"
	"fmt"
	"time"

	"smartspeak/internal/credentials"
	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/repository"
	"smartspeak/internal/security"
	"smartspeak/internal/validation"
)

// StudentSummary is one row of the admin student list
type StudentSummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Class      string     `json:"class"`
	Division   string     `json:"division"`
	Level      int        `json:"level"`
	TotalXP    int        `json:"total_xp"`
	LastActive *time.Time `json:"last_active"`
}

// TeacherSummary is one row of the admin teacher list
type TeacherSummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Username   string     `json:"username"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	LastActive *time.Time `json:"last_active"`
}

// ResetRequest is a teacher waiting for an admin password reset
type ResetRequest struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Username    string     `json:"username"`
	RequestedAt *time.Time `json:"requested_at"`
}

// AdminService backs the admin console
type AdminService struct {
	userRepo    *repository.UserRepository
	teacherRepo *repository.TeacherRepository
	email       *EmailService
	log         *logger.Logger
	now         func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo *repository.UserRepository, teacherRepo *repository.TeacherRepository, email *EmailService, log *logger.Logger) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		teacherRepo: teacherRepo,
		email:       email,
		log:         log,
		now:         time.Now,
	}
}

// Stats counts students and teachers by approval state
func (s *AdminService) Stats() (*models.AdminStats, error) {
	students, err := s.userRepo.CountStudents()
	if err != nil {
		return nil, err
	}
	byStatus, err := s.teacherRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	return &models.AdminStats{
		TotalStudents:    students,
		ApprovedTeachers: byStatus[models.TeacherApproved],
		PendingTeachers:  byStatus[models.TeacherPending],
		RejectedTeachers: byStatus[models.TeacherRejected],
	}, nil
}

// ListStudents returns every student, most recently active first
func (s *AdminService) ListStudents() ([]StudentSummary, error) {
	students, err := s.userRepo.ListStudents()
	if err != nil {
		return nil, err
	}
	out := make([]StudentSummary, 0, len(students))
	for _, st := range students {
		out = append(out, StudentSummary{
			ID:         st.UserID,
			Name:       st.Name,
			Class:      st.Class,
			Division:   st.Division,
			Level:      st.Level,
			TotalXP:    st.TotalXP,
			LastActive: st.LastActive,
		})
	}
	return out, nil
}

// ListTeachers returns every teacher, newest registration first
func (s *AdminService) ListTeachers() ([]TeacherSummary, error) {
	teachers, err := s.teacherRepo.ListTeachers()
	if err != nil {
		return nil, err
	}
	out := make([]TeacherSummary, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, TeacherSummary{
			ID:         t.TeacherID,
			Name:       t.Name,
			Username:   t.Username,
			Status:     t.EffectiveStatus(),
			CreatedAt:  t.CreatedAt,
			LastActive: t.LastActive,
		})
	}
	return out, nil
}

func (s *AdminService) setTeacherStatus(teacherID, status string) error {
	ok, err := s.teacherRepo.SetStatus(teacherID, status, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrTeacherNotFound
	}
	s.log.Info("Teacher status changed", "teacher_id", teacherID, "status", status)
	return nil
}

// ApproveTeacher lets a pending teacher log in
func (s *AdminService) ApproveTeacher(teacherID string) error {
	return s.setTeacherStatus(teacherID, models.TeacherApproved)
}

// RejectTeacher refuses a teacher registration
func (s *AdminService) RejectTeacher(teacherID string) error {
	return s.setTeacherStatus(teacherID, models.TeacherRejected)
}

// DeleteTeacher removes a teacher account
func (s *AdminService) DeleteTeacher(teacherID string) error {
	ok, err := s.teacherRepo.DeleteTeacher(teacherID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTeacherNotFound
	}
	s.log.Info("Teacher deleted", "teacher_id", teacherID)
	return nil
}

// DeleteStudent removes a student account
func (s *AdminService) DeleteStudent(userID string) error {
	ok, err := s.userRepo.DeleteStudent(userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	s.log.Info("Student deleted", "user_id", userID)
	return nil
}

// ResetStudentPassword sets a student's password. An empty password generates
// one; the password that was set is returned.
func (s *AdminService) ResetStudentPassword(userID, password string) (string, error) {
	if password == "" {
		generated, err := credentials.GenerateStudentPassword()
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		password = generated
	}
	if err := validation.ValidateStudentPassword(password); err != nil {
		return "", err
	}

	exists, err := s.userRepo.StudentExists(userID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrUserNotFound
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(userID, hash); err != nil {
		return "", err
	}
	s.log.Info("Student password reset by admin", "user_id", userID)
	return password, nil
}

// ResetTeacherPassword sets a teacher's password, clears any pending reset
// request and emails the teacher when a contact address is known
func (s *AdminService) ResetTeacherPassword(ctx context.Context, teacherID, password string) (string, error) {
	if password == "" {
		generated, err := credentials.GenerateTeacherPassword()
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		password = generated
	}
	if err := validation.ValidateTeacherPassword(password); err != nil {
		return "", err
	}

	teacher, err := s.teacherRepo.GetTeacher(teacherID)
	if err != nil {
		return "", err
	}
	if teacher == nil {
		return "", ErrTeacherNotFound
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.teacherRepo.UpdatePassword(teacherID, hash); err != nil {
		return "", err
	}
	s.log.Info("Teacher password reset by admin", "teacher_id", teacherID)

	if err := s.email.SendTeacherPasswordReset(ctx, teacher, password); err != nil {
		s.log.Warn("Failed to email new password", "teacher_id", teacherID, "error", err)
	}
	return password, nil
}

// PasswordResetRequests lists teachers waiting for a password reset
func (s *AdminService) PasswordResetRequests() ([]ResetRequest, error) {
	teachers, err := s.teacherRepo.ListPasswordResetRequests()
	if err != nil {
		return nil, err
	}
	out := make([]ResetRequest, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, ResetRequest{
			ID:          t.TeacherID,
			Name:        t.Name,
			Username:    t.Username,
			RequestedAt: t.PasswordResetAt,
		})
	}
	return out, nil
}
