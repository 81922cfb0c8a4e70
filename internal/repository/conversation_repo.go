package repository

import (
	"database/sql"
	"fmt"
	"time"

	"smartspeak/internal/database"
	"smartspeak/internal/models"
)

// ConversationRepository stores the per-mode transcripts of each user
type ConversationRepository struct {
	db *database.DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *database.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func loadContexts(q database.DBTX, userID string, lock bool) (map[string]string, error) {
	query := "SELECT contexts FROM conversations WHERE user_id = ?"
	if lock {
		query += q.GetDialect().LockClause()
	}
	var raw sql.NullString
	err := q.QueryRow(query, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	contexts, _ := models.DecodeField(raw, func() map[string]string { return map[string]string{} })
	if contexts == nil {
		contexts = map[string]string{}
	}
	return contexts, nil
}

// GetContexts returns every stored transcript of a user keyed by mode
func (r *ConversationRepository) GetContexts(userID string) (map[string]string, error) {
	contexts, err := loadContexts(r.db, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return contexts, nil
}

// GetContext returns the transcript of one mode, or "" when none exists
func (r *ConversationRepository) GetContext(userID, mode string) (string, error) {
	contexts, err := r.GetContexts(userID)
	if err != nil {
		return "", err
	}
	return contexts[mode], nil
}

// ReplaceContexts overwrites the whole contexts document of a user
func (r *ConversationRepository) ReplaceContexts(userID string, contexts map[string]string, at time.Time) error {
	encoded, err := models.EncodeField(contexts)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	if _, err := r.db.Exec(r.db.Dialect.UpsertConversationQuery(), userID, encoded, at); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// update applies fn to the contexts document of a user inside a transaction
func (r *ConversationRepository) update(userID string, at time.Time, fn func(map[string]string)) error {
	return r.db.WithTx(func(tx *database.Tx) error {
		contexts, err := loadContexts(tx, userID, true)
		if err != nil {
			return fmt.Errorf("failed to load conversation: %w", err)
		}
		fn(contexts)
		encoded, err := models.EncodeField(contexts)
		if err != nil {
			return fmt.Errorf("failed to encode conversation: %w", err)
		}
		if _, err := tx.Exec(tx.GetDialect().UpsertConversationQuery(), userID, encoded, at); err != nil {
			return fmt.Errorf("failed to save conversation: %w", err)
		}
		return nil
	})
}

// SaveContext stores the transcript of one mode, leaving other modes untouched
func (r *ConversationRepository) SaveContext(userID, mode, text string, at time.Time) error {
	return r.update(userID, at, func(contexts map[string]string) {
		contexts[mode] = text
	})
}

// DeleteContext removes the transcript of one mode
func (r *ConversationRepository) DeleteContext(userID, mode string, at time.Time) error {
	return r.update(userID, at, func(contexts map[string]string) {
		delete(contexts, mode)
	})
}

// ListAll returns the contexts documents of every user
func (r *ConversationRepository) ListAll() (map[string]map[string]string, error) {
	rows, err := r.db.Query("SELECT user_id, contexts FROM conversations ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	all := map[string]map[string]string{}
	for rows.Next() {
		var userID string
		var raw sql.NullString
		if err := rows.Scan(&userID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		contexts, _ := models.DecodeField(raw, func() map[string]string { return map[string]string{} })
		all[userID] = contexts
	}
	return all, rows.Err()
}
