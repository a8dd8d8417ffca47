// Package databasetest opens migrated SQLite databases for tests.
package databasetest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"familytravel/internal/database"
)

// New returns a freshly migrated SQLite database in a temp directory.
// The database is closed when the test finishes.
func New(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), MigrationsPath(t)); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// MigrationsPath locates the repository's migrations directory by walking up
// from the working directory to the module root.
func MigrationsPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(ModuleRoot(t), "migrations")
}

// ModuleRoot returns the directory holding go.mod.
func ModuleRoot(t testing.TB) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found above working directory")
		}
		dir = parent
	}
}

// SeedCountries inserts catalog rows given as code, name pairs.
func SeedCountries(t testing.TB, db *database.DB, pairs ...string) {
	t.Helper()

	if len(pairs)%2 != 0 {
		t.Fatalf("SeedCountries needs code/name pairs, got %d values", len(pairs))
	}
	for i := 0; i < len(pairs); i += 2 {
		_, err := db.ExecContext(context.Background(),
			"INSERT INTO countries (country_code, country_name) VALUES (?, ?)", pairs[i], pairs[i+1])
		if err != nil {
			t.Fatalf("Failed to seed country %s: %v", pairs[i], err)
		}
	}
}
