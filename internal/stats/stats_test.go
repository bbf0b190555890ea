package stats

import (
	"math"
	"testing"
	"time"

	"github.com/asanalab/yogaflow-backend/internal/types"
)

func session(end time.Time, totalSecs, avgScore int, poseResults ...types.PoseResult) *types.SessionRecord {
	return &types.SessionRecord{
		StartTime:        end.Add(-time.Duration(totalSecs) * time.Second),
		EndTime:          end,
		TotalTimeSeconds: totalSecs,
		AvgScore:         avgScore,
		BestScore:        avgScore,
		PoseResults:      poseResults,
	}
}

func TestComputeEmptyHistory(t *testing.T) {
	snap := Compute(nil, time.Now())
	if snap.TotalSessions != 0 || snap.AvgScore != 0 || snap.CurrentStreak != 0 {
		t.Fatalf("empty history should yield zero snapshot, got %+v", snap)
	}
	if snap.FavoritePose != "None" {
		t.Fatalf("FavoritePose = %q, want None", snap.FavoritePose)
	}
}

func TestComputeCountsZeroScoreSessions(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	sessions := []*types.SessionRecord{
		session(now.Add(-2*time.Hour), 600, 80),
		session(now.Add(-1*time.Hour), 600, 0),
	}
	snap := Compute(sessions, now)
	if snap.TotalSessions != 2 {
		t.Fatalf("TotalSessions = %d, want 2", snap.TotalSessions)
	}
	if snap.AvgScore != 40 {
		t.Fatalf("AvgScore = %d, want 40 (zero sessions stay in the denominator)", snap.AvgScore)
	}
}

func TestCurrentStreakConsecutiveDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	var sessions []*types.SessionRecord
	for i := 0; i < 4; i++ {
		sessions = append(sessions, session(now.AddDate(0, 0, -i), 300, 70))
	}
	if got := CurrentStreak(sessions, now); got != 4 {
		t.Fatalf("CurrentStreak = %d, want 4", got)
	}
}

func TestCurrentStreakSurvivesNoSessionToday(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	sessions := []*types.SessionRecord{
		session(now.AddDate(0, 0, -1), 300, 70),
		session(now.AddDate(0, 0, -2), 300, 70),
	}
	if got := CurrentStreak(sessions, now); got != 2 {
		t.Fatalf("CurrentStreak = %d, want 2 (streak starts from yesterday)", got)
	}
}

func TestCurrentStreakBrokenByGap(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	sessions := []*types.SessionRecord{
		session(now, 300, 70),
		session(now.AddDate(0, 0, -2), 300, 70),
	}
	if got := CurrentStreak(sessions, now); got != 1 {
		t.Fatalf("CurrentStreak = %d, want 1", got)
	}
}

func TestLongestStreakFindsHistoricRun(t *testing.T) {
	now := time.Date(2026, 3, 20, 18, 0, 0, 0, time.UTC)
	var sessions []*types.SessionRecord
	// Five-day run two weeks back, then a lone recent day.
	for i := 0; i < 5; i++ {
		sessions = append(sessions, session(now.AddDate(0, 0, -14+i), 300, 70))
	}
	sessions = append(sessions, session(now, 300, 70))
	if got := LongestStreak(sessions, time.UTC); got != 5 {
		t.Fatalf("LongestStreak = %d, want 5", got)
	}
}

func TestCurrentStreakBackfillNeverDecreases(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	sessions := []*types.SessionRecord{
		session(now, 300, 70),
		session(now.AddDate(0, 0, -2), 300, 70),
	}
	before := CurrentStreak(sessions, now)
	// Filling the gap day must only ever lengthen the streak.
	sessions = append(sessions, session(now.AddDate(0, 0, -1), 300, 70))
	after := CurrentStreak(sessions, now)
	if after < before {
		t.Fatalf("streak dropped from %d to %d after backfilling the middle day", before, after)
	}
	if after != 3 {
		t.Fatalf("CurrentStreak = %d, want 3", after)
	}
}

func TestCurrentStreakNormalizesRecordLocations(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	west := time.FixedZone("UTC-10", -10*3600)
	sessions := []*types.SessionRecord{
		// 02:00 UTC today, carried in a UTC-10 clock reading of yesterday.
		session(time.Date(2026, 3, 9, 16, 0, 0, 0, west), 300, 70),
		session(now.AddDate(0, 0, -1), 300, 70),
	}
	if got := CurrentStreak(sessions, now); got != 2 {
		t.Fatalf("CurrentStreak = %d, want 2 with day keys in now's location", got)
	}
}

func TestWeeklyMinutesAcrossSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// The Monday after the 2026 spring-forward; Sunday was 23 hours long.
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, loc)
	sessions := []*types.SessionRecord{
		session(time.Date(2026, 3, 8, 10, 0, 0, 0, loc), 1800, 70),
	}
	snap := Compute(sessions, now)
	sunday := int(time.Sunday)
	if math.Abs(snap.WeeklyMinutes[sunday]-30) > 1e-9 {
		t.Fatalf("WeeklyMinutes[Sunday] = %v, want 30 despite the short day", snap.WeeklyMinutes[sunday])
	}
	if snap.WeeklyMinutes[int(time.Monday)] != 0 {
		t.Fatalf("session leaked into Monday's bucket: %v", snap.WeeklyMinutes)
	}
}

func TestRunningAverageMatchesBatchMean(t *testing.T) {
	scores := []float64{90, 0, 75, 60, 100, 0, 85}
	var incremental float64
	for i, s := range scores {
		incremental = RunningAverage(incremental, i+1, s)
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	batch := sum / float64(len(scores))
	if math.Abs(incremental-batch) > 1e-9 {
		t.Fatalf("incremental = %v, batch = %v", incremental, batch)
	}
}

func TestWeeklyMinutesBucketsToday(t *testing.T) {
	now := time.Date(2026, 3, 11, 20, 0, 0, 0, time.UTC) // Wednesday
	sessions := []*types.SessionRecord{
		session(now.Add(-1*time.Hour), 1800, 70),
		session(now.AddDate(0, 0, -8), 1800, 70), // outside the window
	}
	snap := Compute(sessions, now)
	idx := int(now.Weekday())
	if math.Abs(snap.WeeklyMinutes[idx]-30) > 1e-9 {
		t.Fatalf("WeeklyMinutes[%d] = %v, want 30", idx, snap.WeeklyMinutes[idx])
	}
	total := 0.0
	for _, m := range snap.WeeklyMinutes {
		total += m
	}
	if math.Abs(total-30) > 1e-9 {
		t.Fatalf("total weekly minutes = %v, want 30 (old session excluded)", total)
	}
}

func TestFavoritePoseByAttempts(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	sessions := []*types.SessionRecord{
		session(now, 600, 80,
			types.PoseResult{Name: "Tree", Attempts: 2, Score: 90},
			types.PoseResult{Name: "Chair", Attempts: 5, Score: 70},
		),
		session(now.Add(-time.Hour), 600, 80,
			types.PoseResult{Name: "Tree", Attempts: 2, Score: 96},
		),
	}
	snap := Compute(sessions, now)
	if snap.FavoritePose != "Chair" {
		t.Fatalf("FavoritePose = %q, want Chair", snap.FavoritePose)
	}
	if snap.PoseAttempts["Tree"] != 4 {
		t.Fatalf("PoseAttempts[Tree] = %d, want 4", snap.PoseAttempts["Tree"])
	}
	if snap.PosePerfections["Tree"] != 1 {
		t.Fatalf("PosePerfections[Tree] = %d, want 1", snap.PosePerfections["Tree"])
	}
}
