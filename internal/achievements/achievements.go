// Package achievements evaluates the badge catalog against a derived
// statistics snapshot. Unlocks are monotonic: an id in the
// previously-unlocked set is never re-evaluated or emitted again.
package achievements

import (
	"math"

	"github.com/asanalab/yogaflow-backend/internal/stats"
)

// Input is everything a rule predicate may look at.
type Input struct {
	Snapshot stats.Snapshot
	// Goals are the user's stated practice goals from onboarding
	// ("Flexibility", "Strength", "Balance", ...).
	Goals []string
}

type Definition struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Type        string `json:"type"`
	Reward      string `json:"reward"`

	predicate func(Input) bool
}

// Status is a catalog entry annotated with the user's standing.
type Status struct {
	Definition
	Unlocked bool    `json:"unlocked"`
	Progress float64 `json:"progress"`
}

var flexibilityPoses = []string{"Bridge", "Cobra", "Cat-Cow", "Child"}
var strengthPoses = []string{"Plank", "Warrior", "Chair"}
var balancePoses = []string{"Tree", "Warrior"}

// Catalog is the fixed rule table, in display order.
var Catalog = []Definition{
	{
		ID: "first_session", Title: "First Steps", Type: "milestone", Icon: "🌱",
		Description: "Complete your first yoga session",
		Reward:      "Unlocked detailed progress tracking",
		predicate:   func(in Input) bool { return in.Snapshot.TotalSessions >= 1 },
	},
	{
		ID: "three_day_streak", Title: "Building Habits", Type: "streak", Icon: "🔥",
		Description: "Practice yoga for 3 consecutive days",
		Reward:      "Unlocked voice guidance feature",
		predicate:   func(in Input) bool { return in.Snapshot.CurrentStreak >= 3 },
	},
	{
		ID: "seven_day_streak", Title: "Week Warrior", Type: "streak", Icon: "⚡",
		Description: "Maintain a 7-day practice streak",
		Reward:      "Unlocked advanced pose variations",
		predicate:   func(in Input) bool { return in.Snapshot.CurrentStreak >= 7 },
	},
	{
		ID: "thirty_day_streak", Title: "Dedication Master", Type: "streak", Icon: "💎",
		Description: "Practice yoga for 30 days straight",
		Reward:      "Unlocked custom routine builder",
		predicate:   func(in Input) bool { return in.Snapshot.CurrentStreak >= 30 },
	},
	{
		ID: "perfect_session", Title: "Pose Perfect", Type: "performance", Icon: "⭐",
		Description: "Achieve 95%+ average score in a session",
		Reward:      "Unlocked precision analytics",
		predicate:   func(in Input) bool { return in.Snapshot.BestSessionScore >= 95 },
	},
	{
		ID: "consistent_performer", Title: "Steady Progress", Type: "performance", Icon: "📈",
		Description: "Maintain 80%+ average across 5 sessions",
		Reward:      "Unlocked performance insights",
		predicate: func(in Input) bool {
			recent := in.Snapshot.RecentScores
			if len(recent) < 5 {
				return false
			}
			for _, s := range recent[:5] {
				if s < 80 {
					return false
				}
			}
			return true
		},
	},
	{
		ID: "endurance_warrior", Title: "Endurance Warrior", Type: "time", Icon: "⏰",
		Description: "Complete a 60+ minute session",
		Reward:      "Unlocked extended practice plans",
		predicate:   func(in Input) bool { return in.Snapshot.LongestSessionSecs >= 3600 },
	},
	{
		ID: "century_hours", Title: "Century Club", Type: "time", Icon: "💯",
		Description: "Practice for 100+ total hours",
		Reward:      "Unlocked instructor mode",
		predicate:   func(in Input) bool { return in.Snapshot.TotalPracticeSeconds >= 360000 },
	},
	{
		ID: "balance_master", Title: "Balance Master", Type: "pose", Icon: "🌳",
		Description: "Perfect Tree pose 10 times",
		Reward:      "Unlocked advanced balance poses",
		predicate:   func(in Input) bool { return in.Snapshot.PosePerfections["Tree"] >= 10 },
	},
	{
		ID: "strength_builder", Title: "Strength Builder", Type: "pose", Icon: "💪",
		Description: "Perfect Plank pose 15 times",
		Reward:      "Unlocked strength-focused routines",
		predicate:   func(in Input) bool { return in.Snapshot.PosePerfections["Plank"] >= 15 },
	},
	{
		ID: "flexibility_guru", Title: "Flexibility Guru", Type: "pose", Icon: "🌉",
		Description: "Perfect Bridge pose 12 times",
		Reward:      "Unlocked flexibility enhancement guide",
		predicate:   func(in Input) bool { return in.Snapshot.PosePerfections["Bridge"] >= 12 },
	},
	{
		ID: "plan_completer", Title: "Plan Completer", Type: "ai_plan", Icon: "🤖",
		Description: "Complete your first AI-generated plan",
		Reward:      "Unlocked personalized plan variations",
		predicate:   func(in Input) bool { return in.Snapshot.CompletedPlans >= 1 },
	},
	{
		ID: "ai_student", Title: "AI Student", Type: "ai_plan", Icon: "🎓",
		Description: "Follow 5 different AI recommendations",
		Reward:      "Unlocked AI progress analysis",
		predicate:   func(in Input) bool { return in.Snapshot.CompletedPlans >= 5 },
	},
	{
		ID: "goal_achiever", Title: "Goal Achiever", Type: "goal", Icon: "🎯",
		Description: "Make significant progress towards your primary goal",
		Reward:      "Unlocked goal-specific insights",
		predicate:   goalProgressMet,
	},
	{
		ID: "mindful_practitioner", Title: "Mindful Practitioner", Type: "quality", Icon: "🧘",
		Description: "Complete 20 sessions with 70%+ mindfulness score",
		Reward:      "Unlocked meditation integration",
		predicate:   func(in Input) bool { return in.Snapshot.MindfulSessionCount >= 20 },
	},
}

// Evaluate returns the achievements newly qualifying in this pass, in
// catalog order. Previously unlocked ids are skipped entirely.
func Evaluate(in Input, unlocked map[string]bool) []Definition {
	var earned []Definition
	for _, def := range Catalog {
		if unlocked[def.ID] {
			continue
		}
		if def.predicate(in) {
			earned = append(earned, def)
		}
	}
	return earned
}

// ProgressFor reports a 0-100 completion percentage toward one
// achievement. Each id has its own numerator; unlisted ids are binary.
func ProgressFor(id string, in Input) float64 {
	snap := in.Snapshot
	switch id {
	case "three_day_streak":
		return capped(float64(snap.CurrentStreak) / 3 * 100)
	case "seven_day_streak":
		return capped(float64(snap.CurrentStreak) / 7 * 100)
	case "thirty_day_streak":
		return capped(float64(snap.CurrentStreak) / 30 * 100)
	case "perfect_session":
		return capped(float64(snap.BestSessionScore) / 95 * 100)
	case "endurance_warrior":
		return capped(float64(snap.LongestSessionSecs) / 3600 * 100)
	case "century_hours":
		return capped(float64(snap.TotalPracticeSeconds) / 360000 * 100)
	case "balance_master":
		return capped(float64(snap.PosePerfections["Tree"]) / 10 * 100)
	case "strength_builder":
		return capped(float64(snap.PosePerfections["Plank"]) / 15 * 100)
	case "flexibility_guru":
		return capped(float64(snap.PosePerfections["Bridge"]) / 12 * 100)
	case "plan_completer":
		return capped(float64(snap.CompletedPlans) / 1 * 100)
	case "ai_student":
		return capped(float64(snap.CompletedPlans) / 5 * 100)
	case "mindful_practitioner":
		return capped(float64(snap.MindfulSessionCount) / 20 * 100)
	default:
		for _, def := range Catalog {
			if def.ID == id {
				if def.predicate(in) {
					return 100
				}
				return 0
			}
		}
		return 0
	}
}

// StatusAll annotates the full catalog with unlock state and progress.
func StatusAll(in Input, unlocked map[string]bool) []Status {
	out := make([]Status, 0, len(Catalog))
	for _, def := range Catalog {
		st := Status{
			Definition: def,
			Unlocked:   unlocked[def.ID] || def.predicate(in),
			Progress:   ProgressFor(def.ID, in),
		}
		if unlocked[def.ID] {
			st.Progress = 100
		}
		out = append(out, st)
	}
	return out
}

func goalProgressMet(in Input) bool {
	snap := in.Snapshot
	if len(snap.RecentScores) < 5 {
		return false
	}
	for _, goal := range in.Goals {
		var group []string
		switch goal {
		case "Flexibility":
			group = flexibilityPoses
		case "Strength":
			group = strengthPoses
		case "Balance":
			group = balancePoses
		default:
			continue
		}
		scores := collectScores(snap.RecentPoseScores, group)
		if len(scores) >= 5 && intMean(scores) >= 75 {
			return true
		}
	}
	// General improvement: the five most recent sessions beat the five
	// before them by more than ten points.
	if len(snap.RecentScores) >= 10 {
		recent := intMean(snap.RecentScores[:5])
		older := intMean(snap.RecentScores[5:10])
		return recent > older+10
	}
	return false
}

func collectScores(byPose map[string][]int, group []string) []int {
	var out []int
	for _, name := range group {
		out = append(out, byPose[name]...)
	}
	return out
}

func intMean(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

func capped(v float64) float64 {
	return math.Min(100, v)
}
