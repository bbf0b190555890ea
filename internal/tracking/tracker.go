package tracking

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/asanalab/yogaflow-backend/internal/types"
)

const (
	// DefaultPollInterval is the classifier tick period. Correct hold time
	// is approximated as correctDetections * pollInterval rather than
	// wall-clock deltas; keep the two in sync with the frontend loop.
	DefaultPollInterval = 100 * time.Millisecond

	// detectionTailSize bounds the raw sample log kept on the final record.
	detectionTailSize = 1000
)

// LiveStats is the non-mutating snapshot served to the UI every stats
// tick while a session is open.
type LiveStats struct {
	SessionTimeSeconds int    `json:"session_time_seconds"`
	PoseTimeSeconds    int    `json:"pose_time_seconds"`
	CurrentPose        string `json:"current_pose"`
	TotalDetections    int    `json:"total_detections"`
	CorrectDetections  int    `json:"correct_detections"`
	AccuracyRate       int    `json:"accuracy_rate"`
	AvgScore           int    `json:"avg_score"`
	BestScore          int    `json:"best_score"`
}

type poseAggregate struct {
	name        string
	attempts    int
	totalTime   float64
	correctTime float64

	detections   int
	accuracySum  int
	avgAccuracy  int
	bestAccuracy int

	// correct detections inside the currently open hold; folded into
	// correctTime on endPose.
	holdCorrect int
}

// Tracker accumulates live practice data for exactly one open session.
// All state is instance-local; handlers mutate it from multiple
// goroutines, so a single mutex replaces the browser event loop's
// implicit serialization.
type Tracker struct {
	mu sync.Mutex

	pollInterval time.Duration
	now          func() time.Time

	// onStats, when set, is invoked synchronously after every mutating
	// call with a fresh snapshot. It runs outside the tracker lock.
	onStats func(LiveStats)

	sessionStart time.Time
	poseStart    time.Time
	currentPose  string

	poseOrder []string
	poseData  map[string]*poseAggregate

	detectionLog  []types.DetectionSample
	correctCount  int
	bestAccuracy  int
	sessionScores []float64

	totalPoseTime    float64
	totalCorrectTime float64
}

type Option func(*Tracker)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithPollInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.pollInterval = d
		}
	}
}

// WithObserver registers a callback fired after each mutating call,
// replacing the UI framework reactivity of the original client.
func WithObserver(onStats func(LiveStats)) Option {
	return func(t *Tracker) { t.onStats = onStats }
}

func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		pollInterval: DefaultPollInterval,
		now:          time.Now,
		poseData:     map[string]*poseAggregate{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartSession resets all per-session state and records the start
// timestamp. Starting while a session is already open is a caller error.
func (t *Tracker) StartSession(pose string) error {
	t.mu.Lock()
	if !t.sessionStart.IsZero() {
		openSince := t.sessionStart
		t.mu.Unlock()
		return fmt.Errorf("session already open since %s", openSince.Format(time.RFC3339))
	}
	t.resetLocked()
	t.sessionStart = t.now()
	t.startPoseLocked(pose)
	snap := t.liveStatsLocked()
	t.mu.Unlock()
	t.notify(snap)
	return nil
}

// StartPose begins a hold of the named pose. An open hold of a different
// pose is flushed first, so switching never loses time.
func (t *Tracker) StartPose(pose string) error {
	t.mu.Lock()
	if t.sessionStart.IsZero() {
		t.mu.Unlock()
		return fmt.Errorf("no open session")
	}
	t.startPoseLocked(pose)
	snap := t.liveStatsLocked()
	t.mu.Unlock()
	t.notify(snap)
	return nil
}

func (t *Tracker) startPoseLocked(pose string) {
	if !t.poseStart.IsZero() && t.currentPose != "" {
		t.endPoseLocked()
	}
	t.poseStart = t.now()
	t.currentPose = pose

	agg := t.poseData[pose]
	if agg == nil {
		agg = &poseAggregate{name: pose}
		t.poseData[pose] = agg
		t.poseOrder = append(t.poseOrder, pose)
	}
	agg.attempts++
	agg.holdCorrect = 0
}

// LogDetection folds one classifier tick into the named pose's aggregate.
// accuracy is the target-class probability in [0,1]. A detection against
// a pose with no open hold implicitly starts one.
func (t *Tracker) LogDetection(pose string, accuracy float64, isCorrect bool) error {
	t.mu.Lock()
	if t.sessionStart.IsZero() {
		t.mu.Unlock()
		return fmt.Errorf("no open session")
	}
	if t.poseData[pose] == nil || t.currentPose != pose {
		t.startPoseLocked(pose)
	}

	pct := int(math.Round(accuracy * 100))
	sample := types.DetectionSample{
		Timestamp: t.now(),
		Pose:      pose,
		Accuracy:  pct,
		IsCorrect: isCorrect,
	}
	t.detectionLog = append(t.detectionLog, sample)

	agg := t.poseData[pose]
	agg.detections++
	agg.accuracySum += pct
	agg.avgAccuracy = int(math.Round(float64(agg.accuracySum) / float64(agg.detections)))
	if pct > agg.bestAccuracy {
		agg.bestAccuracy = pct
	}
	if pct > t.bestAccuracy {
		t.bestAccuracy = pct
	}

	if isCorrect {
		t.correctCount++
		agg.holdCorrect++
		t.sessionScores = append(t.sessionScores, accuracy*100)
	}
	snap := t.liveStatsLocked()
	t.mu.Unlock()
	t.notify(snap)
	return nil
}

// EndPose closes the current hold. Correct time is approximated from the
// fixed polling cadence, not wall-clock deltas. No-op without an open hold.
func (t *Tracker) EndPose() {
	t.mu.Lock()
	open := !t.sessionStart.IsZero()
	t.endPoseLocked()
	snap := t.liveStatsLocked()
	t.mu.Unlock()
	if open {
		t.notify(snap)
	}
}

func (t *Tracker) endPoseLocked() {
	if t.poseStart.IsZero() || t.currentPose == "" {
		return
	}
	agg := t.poseData[t.currentPose]
	holdTime := t.now().Sub(t.poseStart).Seconds()
	holdCorrectTime := float64(agg.holdCorrect) * t.pollInterval.Seconds()

	agg.totalTime += holdTime
	agg.correctTime += holdCorrectTime
	agg.holdCorrect = 0

	t.totalPoseTime += holdTime
	t.totalCorrectTime += holdCorrectTime
	t.poseStart = time.Time{}
}

// EndSession flushes any open hold and returns the completed session
// record. It never persists; callers own storage. Reset is required
// before the tracker can start another session.
func (t *Tracker) EndSession() (*types.SessionRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessionStart.IsZero() {
		return nil, fmt.Errorf("no open session")
	}
	t.endPoseLocked()

	end := t.now()
	record := &types.SessionRecord{
		StartTime:               t.sessionStart,
		EndTime:                 end,
		TotalTimeSeconds:        int(math.Round(end.Sub(t.sessionStart).Seconds())),
		TotalPoseTimeSeconds:    int(math.Round(t.totalPoseTime)),
		TotalCorrectTimeSeconds: int(math.Round(t.totalCorrectTime)),
		AvgScore:                roundMean(t.sessionScores),
		BestScore:               t.bestAccuracy,
		TotalDetections:         len(t.detectionLog),
		CorrectDetections:       t.correctCount,
		ImprovementLabel:        improvementLabel(mean(t.sessionScores)),
	}
	if len(t.detectionLog) > 0 {
		record.AccuracyRate = int(math.Round(float64(t.correctCount) / float64(len(t.detectionLog)) * 100))
	}
	if t.totalCorrectTime > 0 && record.TotalTimeSeconds > 0 {
		record.Efficiency = int(math.Round(t.totalCorrectTime / float64(record.TotalTimeSeconds) * 100))
	}

	for _, name := range t.poseOrder {
		agg := t.poseData[name]
		record.Poses = append(record.Poses, name)
		record.PoseResults = append(record.PoseResults, types.PoseResult{
			Name:               agg.name,
			Attempts:           agg.attempts,
			TotalTimeSeconds:   agg.totalTime,
			CorrectTimeSeconds: agg.correctTime,
			Accuracy:           agg.avgAccuracy,
			BestAccuracy:       agg.bestAccuracy,
			Score:              agg.avgAccuracy,
		})
		if agg.avgAccuracy >= 95 {
			record.PerfectPoseCount++
		}
	}
	record.PosesAttempted = len(record.Poses)

	tail := t.detectionLog
	if len(tail) > detectionTailSize {
		tail = tail[len(tail)-detectionTailSize:]
	}
	record.DetectionTail = append([]types.DetectionSample(nil), tail...)

	return record, nil
}

// CurrentStats is safe to call on every stats tick; it never mutates.
func (t *Tracker) CurrentStats() (LiveStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessionStart.IsZero() {
		return LiveStats{}, false
	}
	return t.liveStatsLocked(), true
}

func (t *Tracker) liveStatsLocked() LiveStats {
	now := t.now()
	stats := LiveStats{
		SessionTimeSeconds: int(math.Round(now.Sub(t.sessionStart).Seconds())),
		CurrentPose:        t.currentPose,
		TotalDetections:    len(t.detectionLog),
		CorrectDetections:  t.correctCount,
		AvgScore:           roundMean(t.sessionScores),
		BestScore:          t.bestAccuracy,
	}
	if !t.poseStart.IsZero() {
		stats.PoseTimeSeconds = int(math.Round(now.Sub(t.poseStart).Seconds()))
	}
	if len(t.detectionLog) > 0 {
		stats.AccuracyRate = int(math.Round(float64(t.correctCount) / float64(len(t.detectionLog)) * 100))
	}
	return stats
}

func (t *Tracker) notify(s LiveStats) {
	if t.onStats != nil {
		t.onStats(s)
	}
}

// Active reports whether a session is open.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.sessionStart.IsZero()
}

// Reset clears all state so the tracker can open a new session.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

func (t *Tracker) resetLocked() {
	t.sessionStart = time.Time{}
	t.poseStart = time.Time{}
	t.currentPose = ""
	t.poseOrder = nil
	t.poseData = map[string]*poseAggregate{}
	t.detectionLog = nil
	t.correctCount = 0
	t.bestAccuracy = 0
	t.sessionScores = nil
	t.totalPoseTime = 0
	t.totalCorrectTime = 0
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func roundMean(vals []float64) int {
	return int(math.Round(mean(vals)))
}

func improvementLabel(avgScore float64) string {
	switch {
	case avgScore >= 95:
		return "Excellent"
	case avgScore >= 85:
		return "Great"
	case avgScore >= 75:
		return "Good"
	case avgScore >= 65:
		return "Fair"
	default:
		return "Needs Practice"
	}
}
