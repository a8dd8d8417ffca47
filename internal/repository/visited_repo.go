package repository

import (
	"context"
	"errors"
	"fmt"

	"familytravel/internal/database"
	"familytravel/internal/models"
)

// ErrDuplicateVisit is returned when the (user, country) pair is already recorded
var ErrDuplicateVisit = errors.New("visit already recorded")

// VisitedRepository handles the visited countries ledger
type VisitedRepository struct {
	db *database.DB
}

// NewVisitedRepository creates a new visited countries repository
func NewVisitedRepository(db *database.DB) *VisitedRepository {
	return &VisitedRepository{db: db}
}

// AddVisit appends a ledger row
func (r *VisitedRepository) AddVisit(ctx context.Context, userID int64, countryCode string) error {
	query := "INSERT INTO visited_countries (country_code, user_id) VALUES (?, ?)"
	if _, err := r.db.ExecContext(ctx, query, countryCode, userID); err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return ErrDuplicateVisit
		}
		return fmt.Errorf("failed to add visit: %w", err)
	}
	return nil
}

// RemoveVisit deletes a ledger row and reports whether one existed
func (r *VisitedRepository) RemoveVisit(ctx context.Context, userID int64, countryCode string) (bool, error) {
	query := "DELETE FROM visited_countries WHERE user_id = ? AND country_code = ?"
	result, err := r.db.ExecContext(ctx, query, userID, countryCode)
	if err != nil {
		return false, fmt.Errorf("failed to remove visit: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read remove result: %w", err)
	}
	return n > 0, nil
}

// HasVisited reports whether the user already recorded the country
func (r *VisitedRepository) HasVisited(ctx context.Context, userID int64, countryCode string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM visited_countries WHERE user_id = ? AND country_code = ?"
	if err := r.db.QueryRowContext(ctx, query, userID, countryCode).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check visit: %w", err)
	}
	return count > 0, nil
}

// ListVisitedCodes returns the user's country codes in recording order
func (r *VisitedRepository) ListVisitedCodes(ctx context.Context, userID int64) ([]string, error) {
	query := "SELECT country_code FROM visited_countries WHERE user_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visited countries: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan visited country: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate visited countries: %w", err)
	}

	return codes, nil
}

// GetAllVisits returns every ledger row, used by backups
func (r *VisitedRepository) GetAllVisits(ctx context.Context) ([]models.VisitedCountry, error) {
	query := "SELECT user_id, country_code, created_at FROM visited_countries ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []models.VisitedCountry
	for rows.Next() {
		var v models.VisitedCountry
		if err := rows.Scan(&v.UserID, &v.CountryCode, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate visits: %w", err)
	}

	return visits, nil
}
