package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"smartspeak/internal/database"
	"smartspeak/internal/models"
)

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

const studentColumns = `user_id, username, name, password, class_name, division, user_type,
	total_xp, level, total_stars, mode_stats, achievements, mistakes, weekly_xp, daily_challenges,
	security_question, security_answer, created_at, last_active`

// UserRepository handles database operations for students
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanStudent(row scanner) (*models.Student, error) {
	var (
		s                                                     models.Student
		modeStats, achievements, mistakes, weekly, challenges sql.NullString
		lastActive                                            sql.NullTime
	)
	err := row.Scan(
		&s.UserID,
		&s.Username,
		&s.Name,
		&s.PasswordHash,
		&s.Class,
		&s.Division,
		&s.UserType,
		&s.TotalXP,
		&s.Level,
		&s.TotalStars,
		&modeStats,
		&achievements,
		&mistakes,
		&weekly,
		&challenges,
		&s.SecurityQuestion,
		&s.SecurityAnswerHash,
		&s.CreatedAt,
		&lastActive,
	)
	if err != nil {
		return nil, err
	}

	s.ModeStats, _ = models.DecodeField(modeStats, func() map[string]models.ModeStat { return map[string]models.ModeStat{} })
	s.Achievements, s.AchievementsState = models.DecodeField(achievements, models.NewAchievements)
	s.Mistakes, s.MistakesState = models.DecodeField(mistakes, models.NewMistakes)
	s.WeeklyXP, s.WeeklyXPState = models.DecodeField(weekly, func() map[string]int { return map[string]int{} })
	s.Challenges, s.ChallengesState = models.DecodeField(challenges, func() models.ChallengeSet { return models.ChallengeSet{} })
	if s.ModeStats == nil {
		s.ModeStats = map[string]models.ModeStat{}
	}
	if s.WeeklyXP == nil {
		s.WeeklyXP = map[string]int{}
	}
	if s.Achievements.BadgesEarned == nil {
		s.Achievements.BadgesEarned = []string{}
	}
	if lastActive.Valid {
		t := lastActive.Time
		s.LastActive = &t
	}
	return &s, nil
}

type studentDocs struct {
	modeStats, achievements, mistakes, weekly, challenges string
}

func encodeStudentDocs(s *models.Student) (studentDocs, error) {
	var d studentDocs
	var err error
	if d.modeStats, err = models.EncodeField(s.ModeStats); err != nil {
		return d, err
	}
	if d.achievements, err = models.EncodeField(s.Achievements); err != nil {
		return d, err
	}
	if d.mistakes, err = models.EncodeField(s.Mistakes); err != nil {
		return d, err
	}
	if d.weekly, err = models.EncodeField(s.WeeklyXP); err != nil {
		return d, err
	}
	d.challenges, err = models.EncodeField(s.Challenges)
	return d, err
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// CreateStudent inserts a complete student row
func (r *UserRepository) CreateStudent(s *models.Student) error {
	docs, err := encodeStudentDocs(s)
	if err != nil {
		return fmt.Errorf("failed to encode student: %w", err)
	}
	if s.UserType == "" {
		s.UserType = models.RoleStudent
	}

	query := `
		INSERT INTO users (user_id, username, name, password, class_name, division, user_type,
			total_xp, level, total_stars, mode_stats, achievements, mistakes, weekly_xp, daily_challenges,
			security_question, security_answer, created_at, last_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		s.UserID, s.Username, s.Name, s.PasswordHash, s.Class, s.Division, s.UserType,
		s.TotalXP, s.Level, s.TotalStars,
		docs.modeStats, docs.achievements, docs.mistakes, docs.weekly, docs.challenges,
		s.SecurityQuestion, s.SecurityAnswerHash, s.CreatedAt, nullTime(s.LastActive),
	)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// GetStudent retrieves a student by id
func (r *UserRepository) GetStudent(userID string) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM users WHERE user_id = ?"
	s, err := scanStudent(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return s, nil
}

// StudentExists reports whether the id is taken
func (r *UserRepository) StudentExists(userID string) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE user_id = ?", userID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check student: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) queryStudents(query string, args ...interface{}) ([]models.Student, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

// ListStudents returns every student, most recently active first
func (r *UserRepository) ListStudents() ([]models.Student, error) {
	return r.queryStudents("SELECT " + studentColumns + " FROM users WHERE user_type <> 'teacher' ORDER BY last_active IS NULL, last_active DESC, user_id")
}

// FindStudents returns the students of a class and, when set, a division
func (r *UserRepository) FindStudents(filter models.StudentFilter) ([]models.Student, error) {
	query := "SELECT " + studentColumns + " FROM users WHERE user_type <> 'teacher' AND LOWER(TRIM(class_name)) = LOWER(TRIM(?))"
	args := []interface{}{filter.Class}
	if division := filter.Division; strings.TrimSpace(division) != "" {
		query += " AND UPPER(TRIM(division)) = UPPER(TRIM(?))"
		args = append(args, division)
	}
	query += " ORDER BY total_xp DESC, user_id"
	return r.queryStudents(query, args...)
}

// ListClasses returns each class with the divisions present in it
func (r *UserRepository) ListClasses() ([]models.ClassSummary, error) {
	rows, err := r.db.Query("SELECT DISTINCT class_name, division FROM users WHERE user_type <> 'teacher' AND class_name <> '' ORDER BY class_name, division")
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	var classes []models.ClassSummary
	index := map[string]int{}
	for rows.Next() {
		var class, division string
		if err := rows.Scan(&class, &division); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		i, ok := index[class]
		if !ok {
			i = len(classes)
			index[class] = i
			classes = append(classes, models.ClassSummary{Class: class, Divisions: []string{}})
		}
		if division != "" {
			classes[i].Divisions = append(classes[i].Divisions, division)
		}
	}
	return classes, rows.Err()
}

// CountStudents returns the number of student rows
func (r *UserRepository) CountStudents() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE user_type <> 'teacher'").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// MutateStudent loads a student inside a transaction, applies fn and writes the
// result back. It returns nil, nil when the student does not exist. If fn
// returns an error nothing is written.
func (r *UserRepository) MutateStudent(userID string, fn func(s *models.Student) error) (*models.Student, error) {
	var result *models.Student
	err := r.db.WithTx(func(tx *database.Tx) error {
		query := "SELECT " + studentColumns + " FROM users WHERE user_id = ?" + tx.GetDialect().LockClause()
		s, err := scanStudent(tx.QueryRow(query, userID))
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load student: %w", err)
		}
		if err := fn(s); err != nil {
			return err
		}
		if err := writeStudent(tx, s); err != nil {
			return err
		}
		result = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func writeStudent(tx database.DBTX, s *models.Student) error {
	docs, err := encodeStudentDocs(s)
	if err != nil {
		return fmt.Errorf("failed to encode student: %w", err)
	}
	query := `
		UPDATE users SET username = ?, name = ?, password = ?, class_name = ?, division = ?,
			total_xp = ?, level = ?, total_stars = ?, mode_stats = ?, achievements = ?, mistakes = ?,
			weekly_xp = ?, daily_challenges = ?, security_question = ?, security_answer = ?, last_active = ?
		WHERE user_id = ?
	`
	_, err = tx.Exec(query,
		s.Username, s.Name, s.PasswordHash, s.Class, s.Division,
		s.TotalXP, s.Level, s.TotalStars, docs.modeStats, docs.achievements, docs.mistakes,
		docs.weekly, docs.challenges, s.SecurityQuestion, s.SecurityAnswerHash, nullTime(s.LastActive),
		s.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

// IncrementCounter adds amount to one activity counter of a student's
// achievements and runs then, when given, inside the same transaction.
// Missing or corrupt achievements restart from zero.
func (r *UserRepository) IncrementCounter(userID, activity string, amount int, then func(*models.Student)) (*models.Student, error) {
	return r.MutateStudent(userID, func(s *models.Student) error {
		if s.AchievementsState != models.FieldPresent {
			s.Achievements = models.NewAchievements()
			s.AchievementsState = models.FieldPresent
		}
		if !s.Achievements.AddActivity(activity, amount) {
			return fmt.Errorf("unknown activity %q", activity)
		}
		if then != nil {
			then(s)
		}
		return nil
	})
}

// UpdatePassword replaces a student's stored credential
func (r *UserRepository) UpdatePassword(userID, passwordHash string) error {
	_, err := r.db.Exec("UPDATE users SET password = ? WHERE user_id = ?", passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// TouchLastActive records activity time
func (r *UserRepository) TouchLastActive(userID string, at time.Time) error {
	_, err := r.db.Exec("UPDATE users SET last_active = ? WHERE user_id = ?", at, userID)
	if err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}

// SetSecurityQuestion stores a question and the hash of its answer
func (r *UserRepository) SetSecurityQuestion(userID, question, answerHash string) error {
	_, err := r.db.Exec("UPDATE users SET security_question = ?, security_answer = ? WHERE user_id = ?", question, answerHash, userID)
	if err != nil {
		return fmt.Errorf("failed to set security question: %w", err)
	}
	return nil
}

// DeleteStudent removes a student and their conversations
func (r *UserRepository) DeleteStudent(userID string) (bool, error) {
	var deleted bool
	err := r.db.WithTx(func(tx *database.Tx) error {
		if _, err := tx.Exec("DELETE FROM conversations WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("failed to delete conversations: %w", err)
		}
		res, err := tx.Exec("DELETE FROM users WHERE user_id = ?", userID)
		if err != nil {
			return fmt.Errorf("failed to delete student: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}
