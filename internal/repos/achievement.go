package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asanalab/yogaflow-backend/internal/logger"
	"github.com/asanalab/yogaflow-backend/internal/types"
)

type AchievementRepo interface {
	Create(ctx context.Context, tx *gorm.DB, achievements []*types.UserAchievement) ([]*types.UserAchievement, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	repoLog := baseLog.With("repo", "AchievementRepo")
	return &achievementRepo{db: db, log: repoLog}
}

// Create inserts unlocked achievements. The (user_id, achievement_id)
// unique index plus DoNothing makes re-delivery after a retry harmless.
func (ar *achievementRepo) Create(ctx context.Context, tx *gorm.DB, achievements []*types.UserAchievement) ([]*types.UserAchievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(achievements) == 0 {
		return []*types.UserAchievement{}, nil
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

func (ar *achievementRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserAchievement, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.UserAchievement
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
