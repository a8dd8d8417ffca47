package service

import (
	"testing"

	"familytravel/internal/config"
	"familytravel/internal/database"
	"familytravel/internal/database/databasetest"
	"familytravel/internal/repository"
)

type fixture struct {
	db       *database.DB
	users    *repository.UserRepository
	family   *FamilyService
	ledger   *LedgerService
	workflow *WorkflowService
}

func newFixture(t *testing.T, switchMode string) *fixture {
	t.Helper()

	db := databasetest.New(t)
	databasetest.SeedCountries(t, db,
		"ES", "Spain",
		"FR", "France",
		"GF", "French Guiana",
		"NE", "Niger",
		"NG", "Nigeria",
		"GB", "United Kingdom",
		"US", "United States of America",
	)

	users := repository.NewUserRepository(db)
	family := NewFamilyService(users, "teal")
	ledger := NewLedgerService(repository.NewCountryRepository(db), repository.NewVisitedRepository(db))

	return &fixture{
		db:       db,
		users:    users,
		family:   family,
		ledger:   ledger,
		workflow: NewWorkflowService(family, ledger, switchMode),
	}
}

func newStrictFixture(t *testing.T) *fixture {
	return newFixture(t, config.SwitchModeStrict)
}
