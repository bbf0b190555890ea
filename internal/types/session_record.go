package types

import (
	"time"

	"github.com/google/uuid"
)

// PoseResult is the per-pose summary folded into a session record when
// the session ends.
type PoseResult struct {
	Name               string  `json:"name"`
	Attempts           int     `json:"attempts"`
	TotalTimeSeconds   float64 `json:"total_time_seconds"`
	CorrectTimeSeconds float64 `json:"correct_time_seconds"`
	Accuracy           int     `json:"accuracy"`
	BestAccuracy       int     `json:"best_accuracy"`
	Score              int     `json:"score"`
}

// DetectionSample is one classifier inference result. Only a bounded tail
// is kept on the record for diagnostics.
type DetectionSample struct {
	Timestamp time.Time `json:"timestamp"`
	Pose      string    `json:"pose"`
	Accuracy  int       `json:"accuracy"`
	IsCorrect bool      `json:"is_correct"`
}

// SessionRecord is one completed practice session. Immutable once
// persisted; cross-session statistics are recomputed from the history,
// never written back.
type SessionRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	StartTime time.Time `gorm:"column:start_time;not null" json:"start_time"`
	EndTime   time.Time `gorm:"column:end_time;not null" json:"end_time"`

	TotalTimeSeconds        int `gorm:"column:total_time_seconds;not null;default:0" json:"total_time_seconds"`
	TotalPoseTimeSeconds    int `gorm:"column:total_pose_time_seconds;not null;default:0" json:"total_pose_time_seconds"`
	TotalCorrectTimeSeconds int `gorm:"column:total_correct_time_seconds;not null;default:0" json:"total_correct_time_seconds"`

	AvgScore     int `gorm:"column:avg_score;not null;default:0" json:"avg_score"`
	BestScore    int `gorm:"column:best_score;not null;default:0" json:"best_score"`
	AccuracyRate int `gorm:"column:accuracy_rate;not null;default:0" json:"accuracy_rate"`
	Efficiency   int `gorm:"column:efficiency;not null;default:0" json:"efficiency"`

	Poses            []string          `gorm:"serializer:json;column:poses" json:"poses"`
	PosesAttempted   int               `gorm:"column:poses_attempted;not null;default:0" json:"poses_attempted"`
	PoseResults      []PoseResult      `gorm:"serializer:json;column:pose_results" json:"pose_results"`
	PerfectPoseCount int               `gorm:"column:perfect_pose_count;not null;default:0" json:"perfect_pose_count"`
	DetectionTail    []DetectionSample `gorm:"serializer:json;column:detection_tail" json:"detection_tail,omitempty"`

	TotalDetections   int    `gorm:"column:total_detections;not null;default:0" json:"total_detections"`
	CorrectDetections int    `gorm:"column:correct_detections;not null;default:0" json:"correct_detections"`
	ImprovementLabel  string `gorm:"column:improvement_label" json:"improvement_label"`

	PlanID *uuid.UUID `gorm:"type:uuid;column:plan_id" json:"plan_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (SessionRecord) TableName() string {
	return "session_record"
}

// DurationMinutes mirrors the stored seconds as fractional minutes,
// rounded to two decimals.
func (s *SessionRecord) DurationMinutes() float64 {
	return float64(int(float64(s.TotalTimeSeconds)/60.0*100+0.5)) / 100
}
