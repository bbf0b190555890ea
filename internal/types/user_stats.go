package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserStats is the per-user running statistics document. It is a
// read-modify-write row updated after every saved session; windowed
// metrics (streaks, weekly buckets) are derived from the session history
// instead and never stored here.
type UserStats struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	TotalSessions        int     `gorm:"column:total_sessions;not null;default:0" json:"total_sessions"`
	TotalPracticeMinutes float64 `gorm:"column:total_practice_minutes;not null;default:0" json:"total_practice_minutes"`
	TotalCorrectMinutes  float64 `gorm:"column:total_correct_minutes;not null;default:0" json:"total_correct_minutes"`

	AvgScore         int `gorm:"column:avg_score;not null;default:0" json:"avg_score"`
	BestScore        int `gorm:"column:best_score;not null;default:0" json:"best_score"`
	BestAccuracy     int `gorm:"column:best_accuracy;not null;default:0" json:"best_accuracy"`
	LastSessionScore int `gorm:"column:last_session_score;not null;default:0" json:"last_session_score"`

	LastPracticeAt *time.Time `gorm:"column:last_practice_at" json:"last_practice_at,omitempty"`

	// PoseStats holds map[poseKey]PoseStat.
	PoseStats datatypes.JSON `gorm:"column:pose_stats" json:"pose_stats"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserStats) TableName() string {
	return "user_stats"
}

// PoseStat is the accumulated per-pose entry inside UserStats.PoseStats.
type PoseStat struct {
	TotalMinutes float64 `json:"total_minutes"`
	Attempts     int     `json:"attempts"`
	BestScore    int     `json:"best_score"`
}

// PoseKey normalizes a pose name into the stable map key used inside the
// stats document: lowercased with non-alphanumerics stripped.
func PoseKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
