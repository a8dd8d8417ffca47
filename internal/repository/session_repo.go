package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"familytravel/internal/database"
	"familytravel/internal/models"
)

// SessionRepository persists server-side sessions
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// SaveSession inserts the session or replaces the identity it carries
func (r *SessionRepository) SaveSession(ctx context.Context, s *models.Session) error {
	update := "UPDATE sessions SET user_id = ?, family_id = ?, expires_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, update, nullID(s.UserID), nullID(s.FamilyID), s.ExpiresAt.UTC(), s.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	insert := "INSERT INTO sessions (id, user_id, family_id, expires_at) VALUES (?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, insert, s.ID, nullID(s.UserID), nullID(s.FamilyID), s.ExpiresAt.UTC()); err != nil {
		// MySQL reports zero affected rows for an unchanged update
		if r.db.Dialect.IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID, or nil
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	query := "SELECT id, user_id, family_id, expires_at, created_at FROM sessions WHERE id = ?"

	var userID, familyID sql.NullInt64
	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&s.ID, &userID, &familyID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	s.UserID = userID.Int64
	s.FamilyID = familyID.Int64

	return s, nil
}

// DeleteSession removes a session
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions and returns how many
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
