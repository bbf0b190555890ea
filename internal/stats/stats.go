// Package stats derives cross-session statistics from the immutable
// session history. Everything here is a pure function of the records
// plus a reference instant; nothing is stored back.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/asanalab/yogaflow-backend/internal/types"
)

const dayLayout = "2006-01-02"

// Snapshot is the derived statistics view. It must always be
// reproducible from the session history and the "now" reference alone.
type Snapshot struct {
	TotalSessions        int        `json:"total_sessions"`
	TotalPracticeSeconds int        `json:"total_practice_seconds"`
	TotalCorrectSeconds  int        `json:"total_correct_seconds"`
	AvgScore             int        `json:"avg_score"`
	BestScore            int        `json:"best_score"`
	BestSessionScore     int        `json:"best_session_score"`
	LongestSessionSecs   int        `json:"longest_session_seconds"`
	CurrentStreak        int        `json:"current_streak"`
	LongestStreak        int        `json:"longest_streak"`
	WeeklyMinutes        [7]float64 `json:"weekly_minutes"`
	FavoritePose         string     `json:"favorite_pose"`

	PoseAttempts    map[string]int `json:"pose_attempts"`
	PoseBestScores  map[string]int `json:"pose_best_scores"`
	PosePerfections map[string]int `json:"pose_perfections"`

	CompletedPlans      int `json:"completed_plans"`
	MindfulSessionCount int `json:"mindful_session_count"`

	// RecentScores holds session average scores newest first, capped at
	// 20 entries, for rules that look at a trailing window.
	RecentScores []int `json:"recent_scores"`

	// RecentPoseScores holds per-pose scores from the 10 most recent
	// sessions, newest first.
	RecentPoseScores map[string][]int `json:"recent_pose_scores"`
}

// Compute maps the full session history to a snapshot. Empty input
// yields the documented zero snapshot (favorite pose "None").
func Compute(sessions []*types.SessionRecord, now time.Time) Snapshot {
	snap := Snapshot{
		FavoritePose:     "None",
		PoseAttempts:     map[string]int{},
		PoseBestScores:   map[string]int{},
		PosePerfections:  map[string]int{},
		RecentPoseScores: map[string][]int{},
	}
	if len(sessions) == 0 {
		return snap
	}

	sorted := make([]*types.SessionRecord, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EndTime.After(sorted[j].EndTime)
	})

	scoreSum := 0
	for _, s := range sorted {
		snap.TotalSessions++
		snap.TotalPracticeSeconds += s.TotalTimeSeconds
		snap.TotalCorrectSeconds += s.TotalCorrectTimeSeconds
		// Zero-score sessions still count toward the denominator.
		scoreSum += s.AvgScore
		if s.AvgScore > snap.BestSessionScore {
			snap.BestSessionScore = s.AvgScore
		}
		if s.BestScore > snap.BestScore {
			snap.BestScore = s.BestScore
		}
		if s.TotalTimeSeconds > snap.LongestSessionSecs {
			snap.LongestSessionSecs = s.TotalTimeSeconds
		}
		if s.PlanID != nil {
			snap.CompletedPlans++
		}
		if s.AvgScore >= 70 && s.TotalTimeSeconds >= 600 {
			snap.MindfulSessionCount++
		}
		if len(snap.RecentScores) < 20 {
			snap.RecentScores = append(snap.RecentScores, s.AvgScore)
		}
		for _, p := range s.PoseResults {
			snap.PoseAttempts[p.Name] += p.Attempts
			if p.BestAccuracy > snap.PoseBestScores[p.Name] {
				snap.PoseBestScores[p.Name] = p.BestAccuracy
			}
			if p.Score >= 95 {
				snap.PosePerfections[p.Name]++
			}
		}
	}
	snap.AvgScore = int(math.Round(float64(scoreSum) / float64(snap.TotalSessions)))

	for i, s := range sorted {
		if i >= 10 {
			break
		}
		for _, p := range s.PoseResults {
			snap.RecentPoseScores[p.Name] = append(snap.RecentPoseScores[p.Name], p.Score)
		}
	}

	snap.WeeklyMinutes = weeklyMinutes(sorted, now)
	snap.CurrentStreak = CurrentStreak(sorted, now)
	snap.LongestStreak = LongestStreak(sorted, now.Location())
	snap.FavoritePose = favoritePose(sorted)

	return snap
}

// RunningAverage is the incremental form of the session average:
// (prevAvg*(n-1) + newScore) / n. It must agree with recomputing the
// batch mean over the same scores; zero scores stay in the count.
func RunningAverage(prevAvg float64, n int, newScore float64) float64 {
	if n <= 0 {
		return 0
	}
	return (prevAvg*float64(n-1) + newScore) / float64(n)
}

// weeklyMinutes buckets the last seven calendar days by weekday index,
// so bucket i is the weekday i of the current week view. Day boundaries
// follow now's location.
func weeklyMinutes(sessions []*types.SessionRecord, now time.Time) [7]float64 {
	var buckets [7]float64
	for _, s := range sessions {
		daysDiff := calendarDaysBetween(s.EndTime.In(now.Location()), now)
		if daysDiff < 0 || daysDiff >= 7 {
			continue
		}
		idx := (int(now.Weekday()) - daysDiff + 7) % 7
		buckets[idx] += s.DurationMinutes()
	}
	return buckets
}

// calendarDaysBetween counts whole calendar days from t up to now. Both
// dates are re-anchored in UTC so DST-shortened days still count as one
// full day.
func calendarDaysBetween(t, now time.Time) int {
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	from := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	to := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// CurrentStreak counts consecutive practice days walking back from
// today, or from yesterday when today has no session yet.
func CurrentStreak(sessions []*types.SessionRecord, now time.Time) int {
	if len(sessions) == 0 {
		return 0
	}
	days := practiceDays(sessions, now.Location())
	cursor := midnight(now)
	if !days[cursor.Format(dayLayout)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	streak := 0
	for days[cursor.Format(dayLayout)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak scans the distinct practice dates, keyed in loc, for the
// longest run of exactly-one-day deltas.
func LongestStreak(sessions []*types.SessionRecord, loc *time.Location) int {
	if len(sessions) == 0 {
		return 0
	}
	days := practiceDays(sessions, loc)
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	longest := 0
	current := 1
	for i := 1; i < len(keys); i++ {
		prev, _ := time.Parse(dayLayout, keys[i-1])
		curr, _ := time.Parse(dayLayout, keys[i])
		if curr.Sub(prev) == 24*time.Hour {
			current++
		} else {
			if current > longest {
				longest = current
			}
			current = 1
		}
	}
	if current > longest {
		longest = current
	}
	return longest
}

// favoritePose is the argmax of accumulated attempts; ties keep the
// first pose seen walking the history newest first.
func favoritePose(sorted []*types.SessionRecord) string {
	best := "None"
	bestAttempts := 0
	counts := map[string]int{}
	for _, s := range sorted {
		for _, p := range s.PoseResults {
			counts[p.Name] += p.Attempts
			if counts[p.Name] > bestAttempts {
				bestAttempts = counts[p.Name]
				best = p.Name
			}
		}
	}
	return best
}

// practiceDays keys every session's calendar date in one location so a
// day never splits across the records' own zones.
func practiceDays(sessions []*types.SessionRecord, loc *time.Location) map[string]bool {
	days := map[string]bool{}
	for _, s := range sessions {
		days[s.EndTime.In(loc).Format(dayLayout)] = true
	}
	return days
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
