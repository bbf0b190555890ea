package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/asanalab/yogaflow-backend/internal/logger"
	"github.com/asanalab/yogaflow-backend/internal/repos"
	"github.com/asanalab/yogaflow-backend/internal/types"
)

type ProfileService interface {
	SaveProfile(ctx context.Context, userID uuid.UUID, profile *types.OnboardingProfile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.OnboardingProfile, error)
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo) ProfileService {
	serviceLog := log.With("service", "ProfileService")
	return &profileService{
		db:          db,
		log:         serviceLog,
		profileRepo: profileRepo,
	}
}

func (ps *profileService) SaveProfile(ctx context.Context, userID uuid.UUID, profile *types.OnboardingProfile) error {
	if profile == nil {
		return fmt.Errorf("profile payload required")
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, gErr := ps.profileRepo.GetByUserID(ctx, tx, userID)
		if gErr != nil {
			return fmt.Errorf("failed to load profile: %w", gErr)
		}
		row := existing
		if row == nil {
			row = &types.UserProfile{
				UserID:    userID,
				CreatedAt: time.Now(),
			}
		}
		row.ProfileJSON = datatypes.JSON(raw)
		row.UpdatedAt = time.Now()
		if sErr := ps.profileRepo.Save(ctx, tx, row); sErr != nil {
			return fmt.Errorf("failed to save profile: %w", sErr)
		}
		return nil
	})
}

// GetProfile returns nil when the user has not completed onboarding.
func (ps *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.OnboardingProfile, error) {
	row, err := ps.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	var profile types.OnboardingProfile
	if err := json.Unmarshal(row.ProfileJSON, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}
