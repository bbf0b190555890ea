package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/asanalab/yogaflow-backend/internal/achievements"
	"github.com/asanalab/yogaflow-backend/internal/logger"
	"github.com/asanalab/yogaflow-backend/internal/repos"
	"github.com/asanalab/yogaflow-backend/internal/stats"
	"github.com/asanalab/yogaflow-backend/internal/types"
)

// Dashboard is the aggregate progress view: the derived snapshot, the
// stored running stats row and the annotated achievement catalog.
type Dashboard struct {
	Snapshot     stats.Snapshot         `json:"snapshot"`
	Stored       *types.UserStats       `json:"stored,omitempty"`
	Achievements []achievements.Status  `json:"achievements"`
	Recent       []*types.SessionRecord `json:"recent_sessions"`
}

type StatsService interface {
	GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
	GetAchievements(ctx context.Context, userID uuid.UUID) ([]achievements.Status, error)
}

type statsService struct {
	db              *gorm.DB
	log             *logger.Logger
	sessionRepo     repos.SessionRepo
	userStatsRepo   repos.UserStatsRepo
	achievementRepo repos.AchievementRepo
	profileRepo     repos.ProfileRepo
}

func NewStatsService(
	db *gorm.DB,
	log *logger.Logger,
	sessionRepo repos.SessionRepo,
	userStatsRepo repos.UserStatsRepo,
	achievementRepo repos.AchievementRepo,
	profileRepo repos.ProfileRepo,
) StatsService {
	serviceLog := log.With("service", "StatsService")
	return &statsService{
		db:              db,
		log:             serviceLog,
		sessionRepo:     sessionRepo,
		userStatsRepo:   userStatsRepo,
		achievementRepo: achievementRepo,
		profileRepo:     profileRepo,
	}
}

func (ss *statsService) GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	var (
		history  []*types.SessionRecord
		stored   *types.UserStats
		unlocked []*types.UserAchievement
		profile  *types.UserProfile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = ss.sessionRepo.GetByUserID(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		stored, err = ss.userStatsRepo.GetByUserID(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		unlocked, err = ss.achievementRepo.GetByUserID(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = ss.profileRepo.GetByUserID(gctx, nil, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := stats.Compute(history, time.Now())

	unlockedIDs := map[string]bool{}
	for _, a := range unlocked {
		unlockedIDs[a.AchievementID] = true
	}
	in := achievements.Input{
		Snapshot: snapshot,
		Goals:    goalsFromProfile(profile),
	}

	recent := history
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return &Dashboard{
		Snapshot:     snapshot,
		Stored:       stored,
		Achievements: achievements.StatusAll(in, unlockedIDs),
		Recent:       recent,
	}, nil
}

func (ss *statsService) GetAchievements(ctx context.Context, userID uuid.UUID) ([]achievements.Status, error) {
	dashboard, err := ss.GetDashboard(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dashboard.Achievements, nil
}

func goalsFromProfile(row *types.UserProfile) []string {
	if row == nil {
		return nil
	}
	var profile types.OnboardingProfile
	if err := json.Unmarshal(row.ProfileJSON, &profile); err != nil {
		return nil
	}
	return profile.Experience.Goals
}
