package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"familytravel/internal/database"
	"familytravel/internal/models"
)

const userColumns = "id, name, color, family_id, created_at"

// UserRepository handles database operations for users and their families
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUserByName retrieves the first user with exactly this name, or nil
func (r *UserRepository) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE name = ? ORDER BY id LIMIT 1"
	user, err := scanUser(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by name: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID, or nil when no such user exists
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return getUserByID(ctx, r.db, id)
}

// CreateUser inserts a user into an existing family
func (r *UserRepository) CreateUser(ctx context.Context, name, color string, familyID int64) (*models.User, error) {
	query := "INSERT INTO users (name, color, family_id) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, name, color, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err := r.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("created user %d not found", id)
	}
	return user, nil
}

// CreateUserInNewFamily inserts a user under family id MAX(family_id)+1.
// Allocation and insert are a single statement inside a serializable
// transaction, so concurrent sign-ups never share a family id.
func (r *UserRepository) CreateUserInNewFamily(ctx context.Context, name, color string) (*models.User, error) {
	var user *models.User
	err := r.db.WithSerializableTx(ctx, func(tx *database.Tx) error {
		query := `
			INSERT INTO users (name, color, family_id)
			SELECT ?, ?, COALESCE(MAX(family_id), 0) + 1 FROM users
		`
		id, err := tx.ExecReturningID(ctx, query, name, color)
		if err != nil {
			return err
		}

		user, err = getUserByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("created user %d not found", id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user in new family: %w", err)
	}
	return user, nil
}

// MaxFamilyID returns the largest allocated family id, or 0 when there are no users
func (r *UserRepository) MaxFamilyID(ctx context.Context) (int64, error) {
	var maxID int64
	query := "SELECT COALESCE(MAX(family_id), 0) FROM users"
	if err := r.db.QueryRowContext(ctx, query).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to get max family id: %w", err)
	}
	return maxID, nil
}

// GetFamilyMembers retrieves all users sharing familyID in storage order
func (r *UserRepository) GetFamilyMembers(ctx context.Context, familyID int64) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE family_id = ? ORDER BY id"
	return r.queryUsers(ctx, query, familyID)
}

// GetAllUsers retrieves every user ordered by family then id
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users ORDER BY family_id, id"
	return r.queryUsers(ctx, query)
}

// CountUsers returns the number of users
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Color, &user.FamilyID, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func getUserByID(ctx context.Context, q database.DBTX, id int64) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	user, err := scanUser(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// scanUser returns nil, nil when the row does not exist
func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Color, &user.FamilyID, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
