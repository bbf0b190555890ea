package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/asanalab/yogaflow-backend/internal/achievements"
	rediscache "github.com/asanalab/yogaflow-backend/internal/clients/redis"
	"github.com/asanalab/yogaflow-backend/internal/logger"
	"github.com/asanalab/yogaflow-backend/internal/repos"
	"github.com/asanalab/yogaflow-backend/internal/stats"
	"github.com/asanalab/yogaflow-backend/internal/types"
)

// SessionService persists completed sessions and runs everything that
// hangs off a save: the running stats row, achievement evaluation, plan
// completion and the cache mirror.
type SessionService interface {
	SaveSession(ctx context.Context, userID uuid.UUID, record *types.SessionRecord, planID *uuid.UUID) (*types.SessionRecord, []*types.UserAchievement, error)
	GetHistory(ctx context.Context, userID uuid.UUID) ([]*types.SessionRecord, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.SessionRecord, error)
}

type sessionService struct {
	db              *gorm.DB
	log             *logger.Logger
	sessionRepo     repos.SessionRepo
	userStatsRepo   repos.UserStatsRepo
	achievementRepo repos.AchievementRepo
	planRepo        repos.PlanRepo
	profileRepo     repos.ProfileRepo
	cache           rediscache.Cache
}

func NewSessionService(
	db *gorm.DB,
	log *logger.Logger,
	sessionRepo repos.SessionRepo,
	userStatsRepo repos.UserStatsRepo,
	achievementRepo repos.AchievementRepo,
	planRepo repos.PlanRepo,
	profileRepo repos.ProfileRepo,
	cache rediscache.Cache,
) SessionService {
	serviceLog := log.With("service", "SessionService")
	return &sessionService{
		db:              db,
		log:             serviceLog,
		sessionRepo:     sessionRepo,
		userStatsRepo:   userStatsRepo,
		achievementRepo: achievementRepo,
		planRepo:        planRepo,
		profileRepo:     profileRepo,
		cache:           cache,
	}
}

// SaveSession writes the record and the stats row in one transaction,
// then evaluates achievements. Achievement delivery is at-least-once:
// a failure after the record is committed logs and returns the record
// anyway, and the unique index makes redelivery harmless.
func (ss *sessionService) SaveSession(ctx context.Context, userID uuid.UUID, record *types.SessionRecord, planID *uuid.UUID) (*types.SessionRecord, []*types.UserAchievement, error) {
	if record == nil {
		return nil, nil, fmt.Errorf("session record required")
	}
	record.ID = uuid.New()
	record.UserID = userID
	record.PlanID = planID
	record.CreatedAt = time.Now()

	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cErr := ss.sessionRepo.Create(ctx, tx, []*types.SessionRecord{record}); cErr != nil {
			return fmt.Errorf("failed to persist session: %w", cErr)
		}
		if uErr := ss.updateUserStats(ctx, tx, userID, record); uErr != nil {
			return uErr
		}
		if planID != nil {
			if pErr := ss.markPlanCompleted(ctx, tx, userID, *planID); pErr != nil {
				return pErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	earned, aErr := ss.evaluateAchievements(ctx, userID, record)
	if aErr != nil {
		ss.log.Warn("Achievement evaluation failed after session save", "user_id", userID, "error", aErr)
	}

	ss.mirrorToCache(ctx, userID, record, earned)

	return record, earned, nil
}

func (ss *sessionService) GetHistory(ctx context.Context, userID uuid.UUID) ([]*types.SessionRecord, error) {
	return ss.sessionRepo.GetByUserID(ctx, nil, userID)
}

func (ss *sessionService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.SessionRecord, error) {
	found, err := ss.sessionRepo.GetByIDs(ctx, nil, []uuid.UUID{sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(found) == 0 || found[0].UserID != userID {
		return nil, fmt.Errorf("session not found")
	}
	return found[0], nil
}

func (ss *sessionService) updateUserStats(ctx context.Context, tx *gorm.DB, userID uuid.UUID, record *types.SessionRecord) error {
	row, gErr := ss.userStatsRepo.GetByUserID(ctx, tx, userID)
	if gErr != nil {
		return fmt.Errorf("failed to load user stats: %w", gErr)
	}
	if row == nil {
		row = &types.UserStats{UserID: userID}
	}

	row.TotalSessions++
	row.TotalPracticeMinutes += record.DurationMinutes()
	row.TotalCorrectMinutes += float64(record.TotalCorrectTimeSeconds) / 60.0
	// Zero-score sessions stay in the denominator.
	row.AvgScore = int(math.Round(stats.RunningAverage(float64(row.AvgScore), row.TotalSessions, float64(record.AvgScore))))
	if record.AvgScore > row.BestScore {
		row.BestScore = record.AvgScore
	}
	if record.BestScore > row.BestAccuracy {
		row.BestAccuracy = record.BestScore
	}
	row.LastSessionScore = record.AvgScore
	endTime := record.EndTime
	row.LastPracticeAt = &endTime
	row.UpdatedAt = time.Now()

	poseStats := map[string]types.PoseStat{}
	if len(row.PoseStats) > 0 {
		if err := json.Unmarshal(row.PoseStats, &poseStats); err != nil {
			ss.log.Warn("Resetting unreadable pose stats document", "user_id", userID, "error", err)
			poseStats = map[string]types.PoseStat{}
		}
	}
	for _, p := range record.PoseResults {
		key := types.PoseKey(p.Name)
		entry := poseStats[key]
		entry.Attempts += p.Attempts
		entry.TotalMinutes += p.TotalTimeSeconds / 60.0
		if p.Score > entry.BestScore {
			entry.BestScore = p.Score
		}
		poseStats[key] = entry
	}
	raw, mErr := json.Marshal(poseStats)
	if mErr != nil {
		return fmt.Errorf("failed to encode pose stats: %w", mErr)
	}
	row.PoseStats = datatypes.JSON(raw)

	if sErr := ss.userStatsRepo.Save(ctx, tx, row); sErr != nil {
		return fmt.Errorf("failed to save user stats: %w", sErr)
	}
	return nil
}

func (ss *sessionService) markPlanCompleted(ctx context.Context, tx *gorm.DB, userID, planID uuid.UUID) error {
	plans, err := ss.planRepo.GetByIDs(ctx, tx, []uuid.UUID{planID})
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}
	if len(plans) == 0 || plans[0].UserID != userID {
		return fmt.Errorf("plan not found")
	}
	plan := plans[0]
	if plan.CompletedAt != nil {
		return nil
	}
	now := time.Now()
	plan.CompletedAt = &now
	if sErr := ss.planRepo.Save(ctx, tx, plan); sErr != nil {
		return fmt.Errorf("failed to mark plan completed: %w", sErr)
	}
	return nil
}

func (ss *sessionService) evaluateAchievements(ctx context.Context, userID uuid.UUID, record *types.SessionRecord) ([]*types.UserAchievement, error) {
	history, hErr := ss.sessionRepo.GetByUserID(ctx, nil, userID)
	if hErr != nil {
		return nil, fmt.Errorf("failed to load session history: %w", hErr)
	}
	existing, eErr := ss.achievementRepo.GetByUserID(ctx, nil, userID)
	if eErr != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", eErr)
	}
	unlocked := map[string]bool{}
	for _, a := range existing {
		unlocked[a.AchievementID] = true
	}

	in := achievements.Input{
		Snapshot: stats.Compute(history, time.Now()),
		Goals:    ss.userGoals(ctx, userID),
	}

	newly := achievements.Evaluate(in, unlocked)
	if len(newly) == 0 {
		return nil, nil
	}

	sessionID := record.ID
	rows := make([]*types.UserAchievement, 0, len(newly))
	for _, def := range newly {
		rows = append(rows, &types.UserAchievement{
			ID:            uuid.New(),
			UserID:        userID,
			AchievementID: def.ID,
			Title:         def.Title,
			Description:   def.Description,
			Icon:          def.Icon,
			Reward:        def.Reward,
			EarnedAt:      time.Now(),
			SessionID:     &sessionID,
		})
	}
	if _, cErr := ss.achievementRepo.Create(ctx, nil, rows); cErr != nil {
		return nil, fmt.Errorf("failed to persist achievements: %w", cErr)
	}
	return rows, nil
}

func (ss *sessionService) userGoals(ctx context.Context, userID uuid.UUID) []string {
	row, err := ss.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil || row == nil {
		return nil
	}
	var profile types.OnboardingProfile
	if err := json.Unmarshal(row.ProfileJSON, &profile); err != nil {
		return nil
	}
	return profile.Experience.Goals
}

// mirrorToCache is best-effort; the database already holds the truth.
func (ss *sessionService) mirrorToCache(ctx context.Context, userID uuid.UUID, record *types.SessionRecord, earned []*types.UserAchievement) {
	if ss.cache == nil {
		return
	}
	uid := userID.String()
	if err := ss.cache.SetJSON(ctx, rediscache.LastSessionKey(uid), record, 24*time.Hour); err != nil {
		ss.log.Warn("Failed to mirror last session to cache", "user_id", uid, "error", err)
	}
	if len(earned) > 0 {
		ids := make([]string, 0, len(earned))
		for _, a := range earned {
			ids = append(ids, a.AchievementID)
		}
		if err := ss.cache.AddToSet(ctx, rediscache.AchievementsKey(uid), ids...); err != nil {
			ss.log.Warn("Failed to mirror achievements to cache", "user_id", uid, "error", err)
		}
	}
	if err := ss.cache.Delete(ctx, rediscache.LiveStatsKey(uid)); err != nil {
		ss.log.Warn("Failed to clear live stats cache", "user_id", uid, "error", err)
	}
}
