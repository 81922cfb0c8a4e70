package repository

import (
	"database/sql"
	"fmt"

	"smartspeak/internal/database"
	"smartspeak/internal/models"
)

// AdminRepository handles database operations for admins
type AdminRepository struct {
	db *database.DB
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// CreateAdmin inserts an admin
func (r *AdminRepository) CreateAdmin(a *models.Admin) error {
	query := "INSERT INTO admins (admin_id, username, name, password, created_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.Exec(query, a.AdminID, a.Username, a.Name, a.PasswordHash, a.CreatedAt); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// GetAdminByUsername retrieves an admin by username
func (r *AdminRepository) GetAdminByUsername(username string) (*models.Admin, error) {
	query := "SELECT admin_id, username, name, password, created_at FROM admins WHERE username = ?"
	a := &models.Admin{}
	err := r.db.QueryRow(query, username).Scan(&a.AdminID, &a.Username, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return a, nil
}

// ListAdmins returns every admin
func (r *AdminRepository) ListAdmins() ([]models.Admin, error) {
	rows, err := r.db.Query("SELECT admin_id, username, name, password, created_at FROM admins ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	var admins []models.Admin
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.AdminID, &a.Username, &a.Name, &a.PasswordHash, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// CountAdmins returns the number of admins
func (r *AdminRepository) CountAdmins() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM admins").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

// UpdatePassword replaces an admin's credential
func (r *AdminRepository) UpdatePassword(adminID, passwordHash string) error {
	if _, err := r.db.Exec("UPDATE admins SET password = ? WHERE admin_id = ?", passwordHash, adminID); err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	return nil
}
