package service

import (
	"strings"
	"time"

	"smartspeak/internal/logger"
	"smartspeak/internal/models"
	"smartspeak/internal/repository"
)

// ClassStudent is one row of a teacher's class view
type ClassStudent struct {
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Level      int        `json:"level"`
	TotalXP    int        `json:"total_xp"`
	TotalStars int        `json:"total_stars"`
	LastActive *time.Time `json:"last_active"`
}

// TeacherService backs the teacher dashboard
type TeacherService struct {
	userRepo *repository.UserRepository
	log      *logger.Logger
}

// NewTeacherService creates a new teacher service
func NewTeacherService(userRepo *repository.UserRepository, log *logger.Logger) *TeacherService {
	return &TeacherService{userRepo: userRepo, log: log}
}

// Classes lists each class with its divisions
func (s *TeacherService) Classes() ([]models.ClassSummary, error) {
	return s.userRepo.ListClasses()
}

// ClassStudents returns the students of a class and division, highest XP first
func (s *TeacherService) ClassStudents(class, division string) ([]ClassStudent, error) {
	if strings.TrimSpace(class) == "" {
		return nil, ErrMissingFields
	}
	students, err := s.userRepo.FindStudents(models.StudentFilter{Class: class, Division: division})
	if err != nil {
		return nil, err
	}
	out := make([]ClassStudent, 0, len(students))
	for _, st := range students {
		out = append(out, ClassStudent{
			UserID:     st.UserID,
			Name:       st.DisplayName(),
			Level:      st.Level,
			TotalXP:    st.TotalXP,
			TotalStars: st.TotalStars,
			LastActive: st.LastActive,
		})
	}
	return out, nil
}
