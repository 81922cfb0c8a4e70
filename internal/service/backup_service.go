package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"smartspeak/internal/database"
	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version       string               `json:"version"`
	ExportedAt    time.Time            `json:"exported_at"`
	DatabaseType  string               `json:"database_type"`
	Students      []StudentBackup      `json:"students"`
	Teachers      []TeacherBackup      `json:"teachers"`
	Admins        []AdminBackup        `json:"admins"`
	Conversations []ConversationBackup `json:"conversations"`
}

// StudentBackup represents a student record for backup
type StudentBackup struct {
	UserID             string                     `json:"user_id"`
	Username           string                     `json:"username"`
	Name               string                     `json:"name"`
	PasswordHash       string                     `json:"password_hash"`
	Class              string                     `json:"class"`
	Division           string                     `json:"division"`
	UserType           string                     `json:"user_type"`
	TotalXP            int                        `json:"total_xp"`
	Level              int                        `json:"level"`
	TotalStars         int                        `json:"total_stars"`
	ModeStats          map[string]models.ModeStat `json:"mode_stats"`
	Achievements       models.Achievements        `json:"achievements"`
	Mistakes           models.Mistakes            `json:"mistakes"`
	WeeklyXP           map[string]int             `json:"weekly_xp"`
	Challenges         models.ChallengeSet        `json:"daily_challenges"`
	SecurityQuestion   string                     `json:"security_question"`
	SecurityAnswerHash string                     `json:"security_answer_hash"`
	CreatedAt          time.Time                  `json:"created_at"`
	LastActive         *time.Time                 `json:"last_active"`
}

// TeacherBackup represents a teacher record for backup
type TeacherBackup struct {
	TeacherID              string     `json:"teacher_id"`
	Username               string     `json:"username"`
	Name                   string     `json:"name"`
	Email                  string     `json:"email"`
	PasswordHash           string     `json:"password_hash"`
	Status                 string     `json:"status"`
	PasswordResetRequested bool       `json:"password_reset_requested"`
	PasswordResetAt        *time.Time `json:"password_reset_at"`
	CreatedAt              time.Time  `json:"created_at"`
	ApprovedAt             *time.Time `json:"approved_at"`
	LastActive             *time.Time `json:"last_active"`
}

// AdminBackup represents an admin record for backup
type AdminBackup struct {
	AdminID      string    `json:"admin_id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// ConversationBackup holds every transcript of one user
type ConversationBackup struct {
	UserID   string            `json:"user_id"`
	Contexts map[string]string `json:"contexts"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db          *database.DB
	userRepo    *repository.UserRepository
	teacherRepo *repository.TeacherRepository
	adminRepo   *repository.AdminRepository
	convRepo    *repository.ConversationRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log *logger.Logger) *BackupService {
	return &BackupService{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		teacherRepo: repository.NewTeacherRepository(db),
		adminRepo:   repository.NewAdminRepository(db),
		convRepo:    repository.NewConversationRepository(db),
		log:         log,
		now:         time.Now,
	}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) (*BackupData, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(file)
	if err != nil {
		return nil, err
	}
	s.log.Info("Database exported", "path", outputPath)
	return backup, nil
}

// ExportToWriter writes the backup as indented JSON and returns what was written
func (s *BackupService) ExportToWriter(w io.Writer) (*BackupData, error) {
	backup, err := s.collect()
	if err != nil {
		return nil, err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.Info("Export complete",
		"students", len(backup.Students),
		"teachers", len(backup.Teachers),
		"admins", len(backup.Admins),
		"conversations", len(backup.Conversations),
	)
	return backup, nil
}

func (s *BackupService) collect() (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   s.now(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	students, err := s.userRepo.ListStudents()
	if err != nil {
		return nil, fmt.Errorf("failed to export students: %w", err)
	}
	for _, st := range students {
		backup.Students = append(backup.Students, StudentBackup{
			UserID:             st.UserID,
			Username:           st.Username,
			Name:               st.Name,
			PasswordHash:       st.PasswordHash,
			Class:              st.Class,
			Division:           st.Division,
			UserType:           st.UserType,
			TotalXP:            st.TotalXP,
			Level:              st.Level,
			TotalStars:         st.TotalStars,
			ModeStats:          st.ModeStats,
			Achievements:       st.Achievements,
			Mistakes:           st.Mistakes,
			WeeklyXP:           st.WeeklyXP,
			Challenges:         st.Challenges,
			SecurityQuestion:   st.SecurityQuestion,
			SecurityAnswerHash: st.SecurityAnswerHash,
			CreatedAt:          st.CreatedAt,
			LastActive:         st.LastActive,
		})
	}

	teachers, err := s.teacherRepo.ListTeachers()
	if err != nil {
		return nil, fmt.Errorf("failed to export teachers: %w", err)
	}
	for _, t := range teachers {
		backup.Teachers = append(backup.Teachers, TeacherBackup{
			TeacherID:              t.TeacherID,
			Username:               t.Username,
			Name:                   t.Name,
			Email:                  t.Email,
			PasswordHash:           t.PasswordHash,
			Status:                 t.Status,
			PasswordResetRequested: t.PasswordResetRequested,
			PasswordResetAt:        t.PasswordResetAt,
			CreatedAt:              t.CreatedAt,
			ApprovedAt:             t.ApprovedAt,
			LastActive:             t.LastActive,
		})
	}

	admins, err := s.adminRepo.ListAdmins()
	if err != nil {
		return nil, fmt.Errorf("failed to export admins: %w", err)
	}
	for _, a := range admins {
		backup.Admins = append(backup.Admins, AdminBackup(a))
	}

	conversations, err := s.convRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to export conversations: %w", err)
	}
	userIDs := make([]string, 0, len(conversations))
	for userID := range conversations {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)
	for _, userID := range userIDs {
		backup.Conversations = append(backup.Conversations, ConversationBackup{UserID: userID, Contexts: conversations[userID]})
	}
	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string, clear bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	s.log.Info("Starting database import", "path", inputPath, "clear", clear)
	return s.ImportFromReader(file, clear)
}

// ImportFromReader restores a database from a backup reader. With clear set
// every existing row is removed first.
func (s *BackupService) ImportFromReader(reader io.Reader, clear bool) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	s.log.Info("Backup loaded", "version", backup.Version, "exported_at", backup.ExportedAt)

	if clear {
		if err := s.Clear(); err != nil {
			return err
		}
	}

	for _, b := range backup.Students {
		st := &models.Student{
			UserID:             b.UserID,
			Username:           b.Username,
			Name:               b.Name,
			PasswordHash:       b.PasswordHash,
			Class:              b.Class,
			Division:           b.Division,
			UserType:           b.UserType,
			TotalXP:            b.TotalXP,
			Level:              b.Level,
			TotalStars:         b.TotalStars,
			ModeStats:          b.ModeStats,
			Achievements:       b.Achievements,
			Mistakes:           b.Mistakes,
			WeeklyXP:           b.WeeklyXP,
			Challenges:         b.Challenges,
			SecurityQuestion:   b.SecurityQuestion,
			SecurityAnswerHash: b.SecurityAnswerHash,
			CreatedAt:          b.CreatedAt,
			LastActive:         b.LastActive,
		}
		if err := s.userRepo.CreateStudent(st); err != nil {
			return fmt.Errorf("failed to import student %s: %w", b.UserID, err)
		}
	}

	for _, b := range backup.Teachers {
		t := models.Teacher(b)
		if err := s.teacherRepo.CreateTeacher(&t); err != nil {
			return fmt.Errorf("failed to import teacher %s: %w", b.TeacherID, err)
		}
	}

	for _, b := range backup.Admins {
		a := models.Admin(b)
		if err := s.adminRepo.CreateAdmin(&a); err != nil {
			return fmt.Errorf("failed to import admin %s: %w", b.AdminID, err)
		}
	}

	for _, b := range backup.Conversations {
		if err := s.convRepo.ReplaceContexts(b.UserID, b.Contexts, s.now()); err != nil {
			return fmt.Errorf("failed to import conversations of %s: %w", b.UserID, err)
		}
	}

	s.log.Info("Database import completed",
		"students", len(backup.Students),
		"teachers", len(backup.Teachers),
		"admins", len(backup.Admins),
		"conversations", len(backup.Conversations),
	)
	return nil
}

// Clear deletes every account and transcript
func (s *BackupService) Clear() error {
	return s.db.WithTx(func(tx *database.Tx) error {
		for _, table := range []string{"conversations", "users", "teachers", "admins"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		s.log.Warn("Cleared existing data before import")
		return nil
	})
}
