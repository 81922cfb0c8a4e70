package repository

import (
	"database/sql"
	"fmt"
	"time"

	"smartspeak/internal/database"
	"smartspeak/internal/models"
)

const teacherColumns = `teacher_id, username, name, email, password, status,
	password_reset_requested, password_reset_at, created_at, approved_at, last_active`

// TeacherRepository handles database operations for teachers
type TeacherRepository struct {
	db *database.DB
}

// NewTeacherRepository creates a new teacher repository
func NewTeacherRepository(db *database.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

func scanTeacher(row scanner) (*models.Teacher, error) {
	var (
		t                               models.Teacher
		resetAt, approvedAt, lastActive sql.NullTime
	)
	err := row.Scan(
		&t.TeacherID,
		&t.Username,
		&t.Name,
		&t.Email,
		&t.PasswordHash,
		&t.Status,
		&t.PasswordResetRequested,
		&resetAt,
		&t.CreatedAt,
		&approvedAt,
		&lastActive,
	)
	if err != nil {
		return nil, err
	}
	t.PasswordResetAt = timePtr(resetAt)
	t.ApprovedAt = timePtr(approvedAt)
	t.LastActive = timePtr(lastActive)
	return &t, nil
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// CreateTeacher inserts a teacher row
func (r *TeacherRepository) CreateTeacher(t *models.Teacher) error {
	query := `
		INSERT INTO teachers (teacher_id, username, name, email, password, status,
			password_reset_requested, password_reset_at, created_at, approved_at, last_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		t.TeacherID, t.Username, t.Name, t.Email, t.PasswordHash, t.Status,
		t.PasswordResetRequested, nullTime(t.PasswordResetAt), t.CreatedAt, nullTime(t.ApprovedAt), nullTime(t.LastActive),
	)
	if err != nil {
		return fmt.Errorf("failed to create teacher: %w", err)
	}
	return nil
}

func (r *TeacherRepository) getOne(where string, arg interface{}) (*models.Teacher, error) {
	t, err := scanTeacher(r.db.QueryRow("SELECT "+teacherColumns+" FROM teachers WHERE "+where+" = ?", arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	return t, nil
}

// GetTeacher retrieves a teacher by id
func (r *TeacherRepository) GetTeacher(teacherID string) (*models.Teacher, error) {
	return r.getOne("teacher_id", teacherID)
}

// GetTeacherByUsername retrieves a teacher by username
func (r *TeacherRepository) GetTeacherByUsername(username string) (*models.Teacher, error) {
	return r.getOne("username", username)
}

func (r *TeacherRepository) queryTeachers(query string, args ...interface{}) ([]models.Teacher, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teachers: %w", err)
	}
	defer rows.Close()

	var teachers []models.Teacher
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan teacher: %w", err)
		}
		teachers = append(teachers, *t)
	}
	return teachers, rows.Err()
}

// ListTeachers returns all teachers, newest first
func (r *TeacherRepository) ListTeachers() ([]models.Teacher, error) {
	return r.queryTeachers("SELECT " + teacherColumns + " FROM teachers ORDER BY created_at DESC")
}

// ListPasswordResetRequests returns teachers waiting for an admin password reset
func (r *TeacherRepository) ListPasswordResetRequests() ([]models.Teacher, error) {
	query := "SELECT " + teacherColumns + " FROM teachers WHERE password_reset_requested = " +
		r.db.Dialect.BoolValue(true) + " ORDER BY password_reset_at DESC"
	return r.queryTeachers(query)
}

// CountByStatus returns the number of teachers per status; a blank status counts as approved
func (r *TeacherRepository) CountByStatus() (map[string]int, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM teachers GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count teachers: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan teacher count: %w", err)
		}
		t := models.Teacher{Status: status}
		counts[t.EffectiveStatus()] += n
	}
	return counts, rows.Err()
}

func (r *TeacherRepository) exec(action, query string, args ...interface{}) (bool, error) {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to %s: %w", action, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to %s: %w", action, err)
	}
	return n > 0, nil
}

// SetStatus moves a teacher to status; approving also stamps approved_at
func (r *TeacherRepository) SetStatus(teacherID, status string, at time.Time) (bool, error) {
	if status == models.TeacherApproved {
		return r.exec("update teacher status", "UPDATE teachers SET status = ?, approved_at = ? WHERE teacher_id = ?", status, at, teacherID)
	}
	return r.exec("update teacher status", "UPDATE teachers SET status = ? WHERE teacher_id = ?", status, teacherID)
}

// UpdatePassword replaces a teacher's credential and clears any reset request
func (r *TeacherRepository) UpdatePassword(teacherID, passwordHash string) (bool, error) {
	return r.exec("update teacher password",
		"UPDATE teachers SET password = ?, password_reset_requested = ?, password_reset_at = NULL WHERE teacher_id = ?",
		passwordHash, false, teacherID)
}

// RehashPassword replaces a legacy credential without touching reset state
func (r *TeacherRepository) RehashPassword(teacherID, passwordHash string) error {
	_, err := r.exec("rehash teacher password", "UPDATE teachers SET password = ? WHERE teacher_id = ?", passwordHash, teacherID)
	return err
}

// RequestPasswordReset flags a teacher for an admin password reset
func (r *TeacherRepository) RequestPasswordReset(teacherID string, at time.Time) (bool, error) {
	return r.exec("request password reset",
		"UPDATE teachers SET password_reset_requested = ?, password_reset_at = ? WHERE teacher_id = ?",
		true, at, teacherID)
}

// TouchLastActive records activity time
func (r *TeacherRepository) TouchLastActive(teacherID string, at time.Time) error {
	_, err := r.exec("update last active", "UPDATE teachers SET last_active = ? WHERE teacher_id = ?", at, teacherID)
	return err
}

// DeleteTeacher removes a teacher
func (r *TeacherRepository) DeleteTeacher(teacherID string) (bool, error) {
	return r.exec("delete teacher", "DELETE FROM teachers WHERE teacher_id = ?", teacherID)
}
