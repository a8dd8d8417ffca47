package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"familytravel/internal/metrics"
	"familytravel/internal/models"
	"familytravel/internal/repository"
)

// LedgerService records and lists visited countries
type LedgerService struct {
	countryRepo *repository.CountryRepository
	visitedRepo *repository.VisitedRepository
}

// NewLedgerService creates a new ledger service
func NewLedgerService(countryRepo *repository.CountryRepository, visitedRepo *repository.VisitedRepository) *LedgerService {
	return &LedgerService{
		countryRepo: countryRepo,
		visitedRepo: visitedRepo,
	}
}

// RecordVisit resolves free text against the catalog and appends the best
// match to the user's ledger.
func (s *LedgerService) RecordVisit(ctx context.Context, userID int64, countryText string) (*models.Country, error) {
	matches, err := s.countryRepo.SearchByName(ctx, countryText)
	if err != nil {
		return nil, err
	}

	country, ok := bestMatch(matches, countryText)
	if !ok {
		metrics.VisitsRecorded.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%q: %w", countryText, ErrCountryNotFound)
	}

	visited, err := s.visitedRepo.HasVisited(ctx, userID, country.Code)
	if err != nil {
		return nil, err
	}
	if visited {
		metrics.VisitsRecorded.WithLabelValues("duplicate").Inc()
		return &country, ErrAlreadyVisited
	}

	if err := s.visitedRepo.AddVisit(ctx, userID, country.Code); err != nil {
		// A concurrent request for the same pair won the insert
		if errors.Is(err, repository.ErrDuplicateVisit) {
			metrics.VisitsRecorded.WithLabelValues("duplicate").Inc()
			return &country, ErrAlreadyVisited
		}
		return nil, err
	}

	metrics.VisitsRecorded.WithLabelValues("recorded").Inc()
	slog.Info("recorded visit", "user_id", userID, "country_code", country.Code, "matches", len(matches))
	return &country, nil
}

// ListVisitedCodes returns the user's country codes in recording order
func (s *LedgerService) ListVisitedCodes(ctx context.Context, userID int64) ([]string, error) {
	return s.visitedRepo.ListVisitedCodes(ctx, userID)
}

// RemoveVisit deletes a country from the user's ledger
func (s *LedgerService) RemoveVisit(ctx context.Context, userID int64, countryCode string) error {
	country, err := s.countryRepo.GetByCode(ctx, strings.ToUpper(countryCode))
	if err != nil {
		return err
	}
	if country == nil {
		return fmt.Errorf("%s: %w", countryCode, ErrCountryNotFound)
	}

	removed, err := s.visitedRepo.RemoveVisit(ctx, userID, country.Code)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%s: %w", countryCode, ErrCountryNotFound)
	}
	return nil
}

// bestMatch ranks substring matches: exact name, then prefix, then the
// shortest name, then alphabetical.
func bestMatch(matches []models.Country, query string) (models.Country, bool) {
	if len(matches) == 0 {
		return models.Country{}, false
	}

	q := strings.ToLower(strings.TrimSpace(query))
	rank := func(c models.Country) int {
		name := strings.ToLower(c.Name)
		switch {
		case name == q:
			return 0
		case strings.HasPrefix(name, q):
			return 1
		default:
			return 2
		}
	}

	ranked := make([]models.Country, len(matches))
	copy(ranked, matches)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := rank(ranked[i]), rank(ranked[j])
		if ri != rj {
			return ri < rj
		}
		if len(ranked[i].Name) != len(ranked[j].Name) {
			return len(ranked[i].Name) < len(ranked[j].Name)
		}
		return ranked[i].Name < ranked[j].Name
	})

	return ranked[0], true
}
