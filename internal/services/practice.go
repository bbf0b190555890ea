package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	rediscache "github.com/asanalab/yogaflow-backend/internal/clients/redis"
	"github.com/asanalab/yogaflow-backend/internal/logger"
	"github.com/asanalab/yogaflow-backend/internal/poses"
	"github.com/asanalab/yogaflow-backend/internal/requestdata"
	"github.com/asanalab/yogaflow-backend/internal/tracking"
	"github.com/asanalab/yogaflow-backend/internal/types"
)

// DetectionInput is one classifier tick from the browser. Accuracy is
// the target-class probability in [0,1].
type DetectionInput struct {
	Pose     string  `json:"pose"`
	Accuracy float64 `json:"accuracy"`
}

// DetectionFeedback tells the UI how to render the tick it just sent.
type DetectionFeedback struct {
	Pose            string     `json:"pose"`
	AccuracyPercent int        `json:"accuracy_percent"`
	Tier            poses.Tier `json:"tier"`
	SkeletonColor   string     `json:"skeleton_color"`
	IsCorrect       bool       `json:"is_correct"`
}

// PracticeService drives the per-user live tracker. One session per
// user at a time; persistence happens only on EndSession.
type PracticeService interface {
	StartSession(ctx context.Context, pose string) error
	StartPose(ctx context.Context, pose string) error
	EndPose(ctx context.Context) error
	IngestDetections(ctx context.Context, batch []DetectionInput) ([]DetectionFeedback, error)
	LiveStats(ctx context.Context) (tracking.LiveStats, bool, error)
	EndSession(ctx context.Context, planID *uuid.UUID) (*types.SessionRecord, []*types.UserAchievement, error)
	CancelSession(ctx context.Context) error
	RunLiveMirror(ctx context.Context)
}

type practiceService struct {
	log            *logger.Logger
	registry       *tracking.Registry
	sessionService SessionService
	cache          rediscache.Cache
	mirrorInterval time.Duration
}

func NewPracticeService(log *logger.Logger, registry *tracking.Registry, sessionService SessionService, cache rediscache.Cache) PracticeService {
	serviceLog := log.With("service", "PracticeService")
	return &practiceService{
		log:            serviceLog,
		registry:       registry,
		sessionService: sessionService,
		cache:          cache,
		mirrorInterval: time.Second,
	}
}

func (ps *practiceService) StartSession(ctx context.Context, pose string) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	if !poses.IsSupported(pose) {
		return fmt.Errorf("unsupported pose %q", pose)
	}
	return ps.registry.Acquire(userID).StartSession(pose)
}

func (ps *practiceService) StartPose(ctx context.Context, pose string) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	if !poses.IsSupported(pose) {
		return fmt.Errorf("unsupported pose %q", pose)
	}
	tracker, ok := ps.registry.Get(userID)
	if !ok {
		return fmt.Errorf("no open session")
	}
	return tracker.StartPose(pose)
}

func (ps *practiceService) EndPose(ctx context.Context) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	tracker, ok := ps.registry.Get(userID)
	if !ok {
		return fmt.Errorf("no open session")
	}
	tracker.EndPose()
	return nil
}

// IngestDetections folds a batch of classifier ticks into the tracker
// and returns per-tick rendering feedback. Detections only carry
// real-time feedback for poses the classifier was trained on.
func (ps *practiceService) IngestDetections(ctx context.Context, batch []DetectionInput) ([]DetectionFeedback, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	tracker, ok := ps.registry.Get(userID)
	if !ok {
		return nil, fmt.Errorf("no open session")
	}

	out := make([]DetectionFeedback, 0, len(batch))
	for _, d := range batch {
		if !poses.IsAISupported(d.Pose) {
			return nil, fmt.Errorf("pose %q has no classifier support", d.Pose)
		}
		pct := int(math.Round(d.Accuracy * 100))
		tier, color := poses.TierFor(pct)
		correct := tier.Correct()
		if lErr := tracker.LogDetection(d.Pose, d.Accuracy, correct); lErr != nil {
			return nil, lErr
		}
		out = append(out, DetectionFeedback{
			Pose:            d.Pose,
			AccuracyPercent: pct,
			Tier:            tier,
			SkeletonColor:   color,
			IsCorrect:       correct,
		})
	}
	return out, nil
}

func (ps *practiceService) LiveStats(ctx context.Context) (tracking.LiveStats, bool, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return tracking.LiveStats{}, false, err
	}
	tracker, ok := ps.registry.Get(userID)
	if !ok {
		return tracking.LiveStats{}, false, nil
	}
	stats, active := tracker.CurrentStats()
	return stats, active, nil
}

func (ps *practiceService) EndSession(ctx context.Context, planID *uuid.UUID) (*types.SessionRecord, []*types.UserAchievement, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, nil, err
	}
	tracker, ok := ps.registry.Get(userID)
	if !ok {
		return nil, nil, fmt.Errorf("no open session")
	}
	record, eErr := tracker.EndSession()
	if eErr != nil {
		return nil, nil, eErr
	}

	saved, earned, sErr := ps.sessionService.SaveSession(ctx, userID, record, planID)
	if sErr != nil {
		// Persistence is best-effort: the completed record still goes back
		// to the caller so the summary renders, and the tracker keeps the
		// session so the client can retry the end call without losing data.
		ps.log.Warn("Failed to persist session", "user_id", userID, "error", sErr)
		return record, nil, sErr
	}
	ps.registry.Discard(userID)
	return saved, earned, nil
}

// CancelSession throws the open session away without persisting.
func (ps *practiceService) CancelSession(ctx context.Context) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	ps.registry.Discard(userID)
	if ps.cache != nil {
		if dErr := ps.cache.Delete(ctx, rediscache.LiveStatsKey(userID.String())); dErr != nil {
			ps.log.Warn("Failed to clear live stats cache", "user_id", userID, "error", dErr)
		}
	}
	return nil
}

// RunLiveMirror periodically copies every active tracker's snapshot to
// redis so dashboards can poll without touching the trackers. Returns
// immediately; the loop stops when ctx is cancelled.
func (ps *practiceService) RunLiveMirror(ctx context.Context) {
	if ps.cache == nil {
		return
	}
	type liveEntry struct {
		userID uuid.UUID
		stats  tracking.LiveStats
	}
	loop := tracking.NewPeriodic(ps.mirrorInterval, func(now time.Time) {
		// Snapshot under the registry lock, write to redis after it
		// releases so a slow cache never stalls session starts.
		var entries []liveEntry
		ps.registry.Range(func(userID uuid.UUID, t *tracking.Tracker) {
			stats, active := t.CurrentStats()
			if !active {
				return
			}
			entries = append(entries, liveEntry{userID: userID, stats: stats})
		})
		for _, e := range entries {
			key := rediscache.LiveStatsKey(e.userID.String())
			if err := ps.cache.SetJSON(ctx, key, e.stats, 30*time.Second); err != nil {
				ps.log.Warn("Failed to mirror live stats", "user_id", e.userID, "error", err)
			}
		}
	})
	loop.Run(ctx)
}

func currentUserID(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("no authenticated user in context")
	}
	return rd.UserID, nil
}
