package service

import (
	"context"
	"fmt"
	"log/slog"

	"familytravel/internal/config"
	"familytravel/internal/models"
)

// HomeData is everything the home view needs, fetched fresh per request
type HomeData struct {
	Current   *models.User
	Users     []models.User
	Countries []string
	Total     int
	Color     string
}

// WorkflowService sequences the resolver and ledger for each session action
type WorkflowService struct {
	familyService *FamilyService
	ledgerService *LedgerService
	switchMode    string
}

// NewWorkflowService creates a new workflow service. switchMode is one of
// config.SwitchModeStrict or config.SwitchModeTrusted.
func NewWorkflowService(familyService *FamilyService, ledgerService *LedgerService, switchMode string) *WorkflowService {
	return &WorkflowService{
		familyService: familyService,
		ledgerService: ledgerService,
		switchMode:    switchMode,
	}
}

// Login identifies the session by display name, creating a new family for
// names never seen before.
func (s *WorkflowService) Login(ctx context.Context, name string) (models.Identity, error) {
	user, _, err := s.familyService.ResolveOrCreateUser(ctx, name)
	if err != nil {
		return models.Identity{}, fmt.Errorf("login %q: %w", name, err)
	}
	return models.Identity{UserID: user.ID, FamilyID: user.FamilyID}, nil
}

// SwitchMember makes targetID the active user.
//
// In strict mode the family id is re-derived from the target's record and
// targets outside the current family are rejected. In trusted mode the
// session's family id is kept as is and the target is not looked up.
func (s *WorkflowService) SwitchMember(ctx context.Context, current models.Identity, targetID int64) (models.Identity, error) {
	if current.IsAnonymous() {
		return current, ErrNoIdentity
	}

	if s.switchMode == config.SwitchModeTrusted {
		return models.Identity{UserID: targetID, FamilyID: current.FamilyID}, nil
	}

	family, err := s.familyService.GetFamily(ctx, current.FamilyID)
	if err != nil {
		return current, fmt.Errorf("switch member: %w", err)
	}
	if family.HasMember(targetID) {
		return models.Identity{UserID: targetID, FamilyID: family.ID}, nil
	}

	target, err := s.familyService.GetUserByID(ctx, targetID)
	if err != nil {
		return current, fmt.Errorf("switch member: %w", err)
	}
	if target == nil {
		return current, ErrUserNotFound
	}
	slog.Warn("rejected switch to member of another family",
		"user_id", current.UserID, "family_id", current.FamilyID, "target_id", targetID)
	return current, ErrNotFamilyMember
}

// AddMember creates a user in the current family and makes them active
func (s *WorkflowService) AddMember(ctx context.Context, current models.Identity, name, color string) (models.Identity, error) {
	if current.IsAnonymous() {
		return current, ErrNoIdentity
	}

	user, err := s.familyService.AddFamilyMember(ctx, name, color, current.FamilyID)
	if err != nil {
		return current, fmt.Errorf("add member %q: %w", name, err)
	}
	return models.Identity{UserID: user.ID, FamilyID: current.FamilyID}, nil
}

// RecordVisit adds a country to the active user's ledger
func (s *WorkflowService) RecordVisit(ctx context.Context, current models.Identity, countryText string) (*models.Country, error) {
	if current.IsAnonymous() {
		return nil, ErrNoIdentity
	}
	return s.ledgerService.RecordVisit(ctx, current.UserID, countryText)
}

// RemoveVisit deletes a country from the active user's ledger
func (s *WorkflowService) RemoveVisit(ctx context.Context, current models.Identity, countryCode string) error {
	if current.IsAnonymous() {
		return ErrNoIdentity
	}
	return s.ledgerService.RemoveVisit(ctx, current.UserID, countryCode)
}

// Home loads the ledger, the active user and the family member list.
// ErrUserNotFound means the session points at a user that no longer exists.
func (s *WorkflowService) Home(ctx context.Context, current models.Identity) (*HomeData, error) {
	if current.IsAnonymous() {
		return nil, ErrNoIdentity
	}

	countries, err := s.ledgerService.ListVisitedCodes(ctx, current.UserID)
	if err != nil {
		return nil, err
	}

	user, err := s.familyService.GetUserByID(ctx, current.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	members, err := s.familyService.GetFamilyMembers(ctx, current.FamilyID)
	if err != nil {
		return nil, err
	}

	return &HomeData{
		Current:   user,
		Users:     members,
		Countries: countries,
		Total:     len(countries),
		Color:     user.Color,
	}, nil
}
