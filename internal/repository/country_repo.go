package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"familytravel/internal/database"
	"familytravel/internal/models"
)

// CountryRepository reads and loads the country catalog
type CountryRepository struct {
	db *database.DB
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(db *database.DB) *CountryRepository {
	return &CountryRepository{db: db}
}

// SearchByName returns every country whose lower-cased name contains the
// lower-cased fragment. Rows come back in catalog order; callers rank them.
func (r *CountryRepository) SearchByName(ctx context.Context, fragment string) ([]models.Country, error) {
	pattern := "%" + database.EscapeLike(strings.ToLower(fragment)) + "%"
	query := "SELECT country_code, country_name FROM countries WHERE LOWER(country_name) LIKE ? " +
		r.db.Dialect.LikeEscapeClause() + " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search countries: %w", err)
	}
	defer rows.Close()

	var countries []models.Country
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.Code, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate countries: %w", err)
	}

	return countries, nil
}

// GetByCode retrieves a catalog entry by code, or nil
func (r *CountryRepository) GetByCode(ctx context.Context, code string) (*models.Country, error) {
	query := "SELECT country_code, country_name FROM countries WHERE country_code = ?"
	c := &models.Country{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(&c.Code, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	return c, nil
}

// Count returns the number of catalog entries
func (r *CountryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM countries").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count countries: %w", err)
	}
	return count, nil
}

// Upsert loads catalog entries in one transaction. Existing codes get their
// name refreshed. It returns how many codes were new.
func (r *CountryRepository) Upsert(ctx context.Context, countries []models.Country) (int, error) {
	added := 0
	err := r.db.WithSerializableTx(ctx, func(tx *database.Tx) error {
		added = 0
		for _, c := range countries {
			result, err := tx.ExecContext(ctx,
				"UPDATE countries SET country_name = ? WHERE country_code = ?", c.Name, c.Code)
			if err != nil {
				return fmt.Errorf("failed to update country %s: %w", c.Code, err)
			}
			if n, err := result.RowsAffected(); err == nil && n > 0 {
				continue
			}

			// MySQL reports zero affected rows when the name is unchanged
			var exists int
			if err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM countries WHERE country_code = ?", c.Code).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check country %s: %w", c.Code, err)
			}
			if exists > 0 {
				continue
			}

			if _, err := tx.ExecContext(ctx,
				"INSERT INTO countries (country_code, country_name) VALUES (?, ?)", c.Code, c.Name); err != nil {
				return fmt.Errorf("failed to insert country %s: %w", c.Code, err)
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
