package tracking

import (
	"math"
	"testing"
	"time"
)

func fakeClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	current := start
	now := func() time.Time { return current }
	advance := func(d time.Duration) { current = current.Add(d) }
	return now, advance
}

func TestTrackerSingleposeSession(t *testing.T) {
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	now, advance := fakeClock(base)
	tr := NewTracker(WithClock(now))

	if err := tr.StartSession("Tree"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		advance(100 * time.Millisecond)
		if err := tr.LogDetection("Tree", 0.96, true); err != nil {
			t.Fatalf("LogDetection failed: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		advance(100 * time.Millisecond)
		if err := tr.LogDetection("Tree", 0.40, false); err != nil {
			t.Fatalf("LogDetection failed: %v", err)
		}
	}

	rec, err := tr.EndSession()
	if err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}

	if rec.TotalDetections != 12 || rec.CorrectDetections != 10 {
		t.Fatalf("detections = %d/%d, want 10/12", rec.CorrectDetections, rec.TotalDetections)
	}
	if rec.AvgScore != 96 {
		t.Fatalf("AvgScore = %d, want 96 (correct detections only)", rec.AvgScore)
	}
	if rec.BestScore != 96 {
		t.Fatalf("BestScore = %d, want 96", rec.BestScore)
	}
	if rec.AccuracyRate != 83 {
		t.Fatalf("AccuracyRate = %d, want 83", rec.AccuracyRate)
	}
	if rec.ImprovementLabel != "Excellent" {
		t.Fatalf("ImprovementLabel = %q, want Excellent", rec.ImprovementLabel)
	}

	if len(rec.PoseResults) != 1 {
		t.Fatalf("PoseResults len = %d, want 1", len(rec.PoseResults))
	}
	pose := rec.PoseResults[0]
	if pose.Name != "Tree" || pose.Attempts != 1 {
		t.Fatalf("pose = %q attempts %d, want Tree/1", pose.Name, pose.Attempts)
	}
	if math.Abs(pose.TotalTimeSeconds-1.2) > 1e-9 {
		t.Fatalf("pose total time = %v, want 1.2", pose.TotalTimeSeconds)
	}
	if math.Abs(pose.CorrectTimeSeconds-1.0) > 1e-9 {
		t.Fatalf("pose correct time = %v, want 1.0 (10 ticks * 100ms)", pose.CorrectTimeSeconds)
	}
	if pose.BestAccuracy != 96 {
		t.Fatalf("pose best accuracy = %d, want 96", pose.BestAccuracy)
	}
	if pose.Accuracy != 87 {
		t.Fatalf("pose avg accuracy = %d, want 87", pose.Accuracy)
	}
	if rec.PerfectPoseCount != 0 {
		t.Fatalf("PerfectPoseCount = %d, want 0", rec.PerfectPoseCount)
	}
}

func TestTrackerAllIncorrectScoresZero(t *testing.T) {
	now, advance := fakeClock(time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))
	tr := NewTracker(WithClock(now))

	if err := tr.StartSession("Chair"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		advance(100 * time.Millisecond)
		if err := tr.LogDetection("Chair", 0.30, false); err != nil {
			t.Fatalf("LogDetection failed: %v", err)
		}
	}
	rec, err := tr.EndSession()
	if err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if rec.AvgScore != 0 {
		t.Fatalf("AvgScore = %d, want 0 when no correct detections", rec.AvgScore)
	}
	if rec.TotalCorrectTimeSeconds != 0 {
		t.Fatalf("TotalCorrectTimeSeconds = %d, want 0", rec.TotalCorrectTimeSeconds)
	}
	if rec.ImprovementLabel != "Needs Practice" {
		t.Fatalf("ImprovementLabel = %q, want Needs Practice", rec.ImprovementLabel)
	}
}

func TestTrackerEmptySessionIsValid(t *testing.T) {
	now, advance := fakeClock(time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))
	tr := NewTracker(WithClock(now))

	if err := tr.StartSession("Tree"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	advance(2 * time.Second)
	rec, err := tr.EndSession()
	if err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if rec.AvgScore != 0 || rec.BestScore != 0 || rec.TotalDetections != 0 {
		t.Fatalf("expected zero scores on empty session, got avg=%d best=%d detections=%d",
			rec.AvgScore, rec.BestScore, rec.TotalDetections)
	}
	if rec.TotalTimeSeconds != 2 {
		t.Fatalf("TotalTimeSeconds = %d, want 2", rec.TotalTimeSeconds)
	}
	if rec.PosesAttempted != 1 {
		t.Fatalf("PosesAttempted = %d, want 1", rec.PosesAttempted)
	}
}

func TestTrackerRejectsDoubleStart(t *testing.T) {
	now, _ := fakeClock(time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))
	tr := NewTracker(WithClock(now))

	if err := tr.StartSession("Tree"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if err := tr.StartSession("Chair"); err == nil {
		t.Fatal("expected error starting a session while one is open")
	}
	tr.Reset()
	if err := tr.StartSession("Chair"); err != nil {
		t.Fatalf("StartSession after Reset failed: %v", err)
	}
}

func TestCurrentStatsDoesNotMutate(t *testing.T) {
	now, advance := fakeClock(time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))
	tr := NewTracker(WithClock(now))

	if err := tr.StartSession("Tree"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	advance(100 * time.Millisecond)
	if err := tr.LogDetection("Tree", 0.90, true); err != nil {
		t.Fatalf("LogDetection failed: %v", err)
	}

	first, active := tr.CurrentStats()
	if !active {
		t.Fatal("expected active session")
	}
	second, _ := tr.CurrentStats()
	if first != second {
		t.Fatalf("CurrentStats mutated state: %+v vs %+v", first, second)
	}
	if first.CorrectDetections != 1 || first.AvgScore != 90 {
		t.Fatalf("unexpected live stats: %+v", first)
	}
}

func TestTrackerPoseSwitchKeepsTime(t *testing.T) {
	now, advance := fakeClock(time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))
	tr := NewTracker(WithClock(now))

	if err := tr.StartSession("Tree"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	advance(500 * time.Millisecond)
	if err := tr.StartPose("Warrior"); err != nil {
		t.Fatalf("StartPose failed: %v", err)
	}
	advance(300 * time.Millisecond)
	rec, err := tr.EndSession()
	if err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if len(rec.PoseResults) != 2 {
		t.Fatalf("PoseResults len = %d, want 2", len(rec.PoseResults))
	}
	if rec.Poses[0] != "Tree" || rec.Poses[1] != "Warrior" {
		t.Fatalf("pose order = %v, want [Tree Warrior]", rec.Poses)
	}
	if math.Abs(rec.PoseResults[0].TotalTimeSeconds-0.5) > 1e-9 {
		t.Fatalf("Tree time = %v, want 0.5", rec.PoseResults[0].TotalTimeSeconds)
	}
	if math.Abs(rec.PoseResults[1].TotalTimeSeconds-0.3) > 1e-9 {
		t.Fatalf("Warrior time = %v, want 0.3", rec.PoseResults[1].TotalTimeSeconds)
	}
}

func TestObserverFiresOnMutation(t *testing.T) {
	now, advance := fakeClock(time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))
	var seen []LiveStats
	tr := NewTracker(WithClock(now), WithObserver(func(s LiveStats) {
		seen = append(seen, s)
	}))

	if err := tr.StartSession("Tree"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	advance(100 * time.Millisecond)
	if err := tr.LogDetection("Tree", 0.96, true); err != nil {
		t.Fatalf("LogDetection failed: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("observer fired %d times, want 2", len(seen))
	}
	if seen[1].CorrectDetections != 1 {
		t.Fatalf("last snapshot = %+v, want 1 correct detection", seen[1])
	}
}
