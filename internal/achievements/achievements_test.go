package achievements

import (
	"math"
	"testing"

	"github.com/asanalab/yogaflow-backend/internal/stats"
)

func TestEvaluateFirstSession(t *testing.T) {
	in := Input{Snapshot: stats.Snapshot{TotalSessions: 1}}
	earned := Evaluate(in, nil)
	if len(earned) != 1 || earned[0].ID != "first_session" {
		t.Fatalf("earned = %+v, want exactly first_session", earned)
	}
}

func TestEvaluateIsMonotonic(t *testing.T) {
	in := Input{Snapshot: stats.Snapshot{TotalSessions: 5, CurrentStreak: 3}}
	unlocked := map[string]bool{"first_session": true, "three_day_streak": true}
	earned := Evaluate(in, unlocked)
	for _, def := range earned {
		if unlocked[def.ID] {
			t.Fatalf("already unlocked %q was re-emitted", def.ID)
		}
	}
}

func TestStreakAchievementsUnlockInOrder(t *testing.T) {
	in := Input{Snapshot: stats.Snapshot{TotalSessions: 30, CurrentStreak: 7}}
	earned := Evaluate(in, map[string]bool{"first_session": true, "three_day_streak": true})
	found := map[string]bool{}
	for _, def := range earned {
		found[def.ID] = true
	}
	if !found["seven_day_streak"] {
		t.Fatal("seven_day_streak should unlock at streak 7")
	}
	if found["thirty_day_streak"] {
		t.Fatal("thirty_day_streak must not unlock at streak 7")
	}
}

func TestConsistentPerformerNeedsFiveScores(t *testing.T) {
	base := stats.Snapshot{TotalSessions: 4, RecentScores: []int{85, 90, 82, 88}}
	if Evaluate(Input{Snapshot: base}, map[string]bool{"first_session": true}) != nil {
		t.Fatal("four sessions must not unlock consistent_performer")
	}
	base.RecentScores = append(base.RecentScores, 81)
	base.TotalSessions = 5
	earned := Evaluate(Input{Snapshot: base}, map[string]bool{"first_session": true})
	found := false
	for _, def := range earned {
		if def.ID == "consistent_performer" {
			found = true
		}
	}
	if !found {
		t.Fatal("five 80+ sessions should unlock consistent_performer")
	}
}

func TestProgressForStreak(t *testing.T) {
	in := Input{Snapshot: stats.Snapshot{CurrentStreak: 1}}
	got := ProgressFor("three_day_streak", in)
	want := 1.0 / 3 * 100
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("progress = %v, want %v", got, want)
	}
}

func TestProgressIsCapped(t *testing.T) {
	in := Input{Snapshot: stats.Snapshot{CurrentStreak: 50}}
	if got := ProgressFor("three_day_streak", in); got != 100 {
		t.Fatalf("progress = %v, want capped at 100", got)
	}
}

func TestProgressForPoseAchievements(t *testing.T) {
	in := Input{Snapshot: stats.Snapshot{PosePerfections: map[string]int{"Tree": 5}}}
	if got := ProgressFor("balance_master", in); got != 50 {
		t.Fatalf("balance_master progress = %v, want 50", got)
	}
}

func TestGoalAchieverByGroupScores(t *testing.T) {
	in := Input{
		Snapshot: stats.Snapshot{
			RecentScores: []int{80, 80, 80, 80, 80},
			RecentPoseScores: map[string][]int{
				"Tree":    {80, 78, 82},
				"Warrior": {76, 79},
			},
		},
		Goals: []string{"Balance"},
	}
	if !goalProgressMet(in) {
		t.Fatal("five balance-pose scores averaging 75+ should satisfy the goal rule")
	}
}

func TestGoalAchieverByImprovement(t *testing.T) {
	in := Input{
		Snapshot: stats.Snapshot{
			// Newest first: recent five average 85, older five average 60.
			RecentScores: []int{85, 85, 85, 85, 85, 60, 60, 60, 60, 60},
		},
	}
	if !goalProgressMet(in) {
		t.Fatal("a 25-point improvement should satisfy the goal rule")
	}
	in.Snapshot.RecentScores = []int{65, 65, 65, 65, 65, 60, 60, 60, 60, 60}
	if goalProgressMet(in) {
		t.Fatal("a 5-point improvement must not satisfy the goal rule")
	}
}

func TestStatusAllMarksUnlockedComplete(t *testing.T) {
	in := Input{Snapshot: stats.Snapshot{}}
	statuses := StatusAll(in, map[string]bool{"first_session": true})
	for _, st := range statuses {
		if st.ID == "first_session" {
			if !st.Unlocked || st.Progress != 100 {
				t.Fatalf("unlocked achievement reported %+v", st)
			}
			return
		}
	}
	t.Fatal("first_session missing from catalog")
}
