package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"familytravel/internal/models"
	"familytravel/internal/repository"
)

// CatalogService loads the country catalog from CSV files
type CatalogService struct {
	countryRepo *repository.CountryRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(countryRepo *repository.CountryRepository) *CatalogService {
	return &CatalogService{countryRepo: countryRepo}
}

// ParseCatalog reads "country_code,country_name" rows. A header row whose
// first cell is country_code is skipped.
func ParseCatalog(r io.Reader) ([]models.Country, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var countries []models.Country
	seen := make(map[string]bool)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}

		code := strings.ToUpper(strings.TrimSpace(record[0]))
		name := strings.TrimSpace(record[1])
		if line == 1 && strings.EqualFold(code, "country_code") {
			continue
		}
		if code == "" || name == "" {
			return nil, fmt.Errorf("catalog line %d: code and name are required", line)
		}
		if seen[code] {
			return nil, fmt.Errorf("catalog line %d: duplicate code %s", line, code)
		}
		seen[code] = true

		countries = append(countries, models.Country{Code: code, Name: name})
	}

	return countries, nil
}

// LoadFile upserts the catalog from a CSV file and returns how many codes were new
func (s *CatalogService) LoadFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	countries, err := ParseCatalog(f)
	if err != nil {
		return 0, err
	}
	return s.countryRepo.Upsert(ctx, countries)
}

// SeedIfEmpty loads the catalog only when the countries table is empty
func (s *CatalogService) SeedIfEmpty(ctx context.Context, path string) error {
	count, err := s.countryRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	added, err := s.LoadFile(ctx, path)
	if err != nil {
		return err
	}
	slog.Info("seeded country catalog", "path", path, "countries", added)
	return nil
}
