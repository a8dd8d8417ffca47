package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"familytravel/internal/repository"
)

// BackupData is the portable export of all families and their ledgers
type BackupData struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Families   []FamilyBackup `json:"families"`
}

// FamilyBackup groups members under the family id they had at export time
type FamilyBackup struct {
	FamilyID int64        `json:"family_id"`
	Members  []UserBackup `json:"members"`
}

// UserBackup represents a user and their ledger
type UserBackup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	Visited   []string  `json:"visited"`
}

// ImportStats summarises an import
type ImportStats struct {
	Families int
	Users    int
	Visits   int
	Skipped  int
}

// DatabaseSummary describes the stored households after a backup operation
type DatabaseSummary struct {
	Users       int
	MaxFamilyID int64
}

// BackupService handles export and import of user data
type BackupService struct {
	userRepo    *repository.UserRepository
	visitedRepo *repository.VisitedRepository
}

// NewBackupService creates a new backup service
func NewBackupService(userRepo *repository.UserRepository, visitedRepo *repository.VisitedRepository) *BackupService {
	return &BackupService{
		userRepo:    userRepo,
		visitedRepo: visitedRepo,
	}
}

// Export writes every family, member and ledger as JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) error {
	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	visits, err := s.visitedRepo.GetAllVisits(ctx)
	if err != nil {
		return fmt.Errorf("failed to export visits: %w", err)
	}

	byUser := make(map[int64][]string)
	for _, v := range visits {
		byUser[v.UserID] = append(byUser[v.UserID], v.CountryCode)
	}

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
	}
	// users arrive ordered by family_id
	for _, u := range users {
		if n := len(backup.Families); n == 0 || backup.Families[n-1].FamilyID != u.FamilyID {
			backup.Families = append(backup.Families, FamilyBackup{FamilyID: u.FamilyID})
		}
		fam := &backup.Families[len(backup.Families)-1]
		visited := byUser[u.ID]
		if visited == nil {
			visited = []string{}
		}
		fam.Members = append(fam.Members, UserBackup{
			ID:        u.ID,
			Name:      u.Name,
			Color:     u.Color,
			CreatedAt: u.CreatedAt,
			Visited:   visited,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	slog.Info("export complete", "families", len(backup.Families), "users", len(users), "visits", len(visits))
	return nil
}

// ExportFile writes the backup to outputPath
func (s *BackupService) ExportFile(ctx context.Context, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	if err := s.Export(ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Import merges a backup into the database. Every family in the backup gets
// a freshly allocated family id so existing households are never merged.
// Visits to codes missing from the catalog are skipped.
func (s *BackupService) Import(ctx context.Context, r io.Reader) (*ImportStats, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}

	stats := &ImportStats{}
	for _, fam := range backup.Families {
		if len(fam.Members) == 0 {
			continue
		}

		var familyID int64
		for i, m := range fam.Members {
			var userID int64
			if i == 0 {
				user, err := s.userRepo.CreateUserInNewFamily(ctx, m.Name, m.Color)
				if err != nil {
					return stats, fmt.Errorf("failed to import user %q: %w", m.Name, err)
				}
				familyID, userID = user.FamilyID, user.ID
				stats.Families++
			} else {
				user, err := s.userRepo.CreateUser(ctx, m.Name, m.Color, familyID)
				if err != nil {
					return stats, fmt.Errorf("failed to import user %q: %w", m.Name, err)
				}
				userID = user.ID
			}
			stats.Users++

			for _, code := range m.Visited {
				if err := s.visitedRepo.AddVisit(ctx, userID, code); err != nil {
					slog.Warn("skipped visit during import", "user", m.Name, "country_code", code, "error", err)
					stats.Skipped++
					continue
				}
				stats.Visits++
			}
		}
	}

	slog.Info("import complete", "families", stats.Families, "users", stats.Users, "visits", stats.Visits, "skipped", stats.Skipped)
	return stats, nil
}

// ImportFile reads a backup from inputPath
func (s *BackupService) ImportFile(ctx context.Context, inputPath string) (*ImportStats, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()
	return s.Import(ctx, f)
}

// Summary counts stored users and reports the highest allocated family id
func (s *BackupService) Summary(ctx context.Context) (*DatabaseSummary, error) {
	users, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	maxFamilyID, err := s.userRepo.MaxFamilyID(ctx)
	if err != nil {
		return nil, err
	}
	return &DatabaseSummary{Users: users, MaxFamilyID: maxFamilyID}, nil
}
