package service

import (
	"context"
	"fmt"
	"log/slog"

	"familytravel/internal/metrics"
	"familytravel/internal/models"
	"familytravel/internal/repository"
)

// FamilyService resolves users and the families they belong to
type FamilyService struct {
	userRepo     *repository.UserRepository
	defaultColor string
}

// NewFamilyService creates a new family service
func NewFamilyService(userRepo *repository.UserRepository, defaultColor string) *FamilyService {
	return &FamilyService{
		userRepo:     userRepo,
		defaultColor: defaultColor,
	}
}

// ResolveOrCreateUser returns the user with exactly this name. An unseen
// name starts a new family with the default color. created reports which
// path was taken.
func (s *FamilyService) ResolveOrCreateUser(ctx context.Context, name string) (user *models.User, created bool, err error) {
	user, err = s.userRepo.GetUserByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if user != nil {
		return user, false, nil
	}

	user, err = s.userRepo.CreateUserInNewFamily(ctx, name, s.defaultColor)
	if err != nil {
		return nil, false, err
	}

	metrics.UsersCreated.WithLabelValues("new_family").Inc()
	slog.Info("created user in new family", "user_id", user.ID, "family_id", user.FamilyID)
	return user, true, nil
}

// GetUserByID returns the user, or nil for a stale reference
func (s *FamilyService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, id)
}

// GetFamilyMembers returns every user sharing familyID
func (s *FamilyService) GetFamilyMembers(ctx context.Context, familyID int64) ([]models.User, error) {
	return s.userRepo.GetFamilyMembers(ctx, familyID)
}

// GetFamily returns the family with its members loaded
func (s *FamilyService) GetFamily(ctx context.Context, familyID int64) (*models.Family, error) {
	members, err := s.GetFamilyMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}
	return &models.Family{ID: familyID, Members: members}, nil
}

// AddFamilyMember creates a user under an existing family id
func (s *FamilyService) AddFamilyMember(ctx context.Context, name, color string, familyID int64) (*models.User, error) {
	if familyID == 0 {
		return nil, fmt.Errorf("add family member: %w", ErrNoIdentity)
	}
	if color == "" {
		color = s.defaultColor
	}

	user, err := s.userRepo.CreateUser(ctx, name, color, familyID)
	if err != nil {
		return nil, err
	}

	metrics.UsersCreated.WithLabelValues("existing_family").Inc()
	slog.Info("added family member", "user_id", user.ID, "family_id", familyID)
	return user, nil
}
