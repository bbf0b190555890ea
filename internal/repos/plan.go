package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/asanalab/yogaflow-backend/internal/logger"
	"github.com/asanalab/yogaflow-backend/internal/types"
)

type PlanRepo interface {
	Create(ctx context.Context, tx *gorm.DB, plans []*types.PracticePlan) ([]*types.PracticePlan, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, planIDs []uuid.UUID) ([]*types.PracticePlan, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PracticePlan, error)
	Save(ctx context.Context, tx *gorm.DB, plan *types.PracticePlan) error
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	repoLog := baseLog.With("repo", "PlanRepo")
	return &planRepo{db: db, log: repoLog}
}

func (pr *planRepo) Create(ctx context.Context, tx *gorm.DB, plans []*types.PracticePlan) ([]*types.PracticePlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if len(plans) == 0 {
		return []*types.PracticePlan{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (pr *planRepo) GetByIDs(ctx context.Context, tx *gorm.DB, planIDs []uuid.UUID) ([]*types.PracticePlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.PracticePlan
	if len(planIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", planIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *planRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PracticePlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.PracticePlan
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *planRepo) Save(ctx context.Context, tx *gorm.DB, plan *types.PracticePlan) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).Save(plan).Error
}
