package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PlanPose is one pose entry of a generated or fallback session plan.
type PlanPose struct {
	Name            string `json:"name"`
	DurationSeconds int    `json:"duration_seconds"`
	Benefits        string `json:"benefits"`
	Modifications   string `json:"modifications,omitempty"`
	Type            string `json:"type"` // "AI" or "Manual"
}

// SessionPlan is the validated plan shape handed to the frontend.
type SessionPlan struct {
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_minutes"`
	Intention       string     `json:"intention"`
	Poses           []PlanPose `json:"poses"`
	Tips            []string   `json:"tips"`
}

// DailyChallenge is a single-pose suggestion derived from the
// recommendation API.
type DailyChallenge struct {
	Pose            string `json:"pose"`
	DurationSeconds int    `json:"duration_seconds"`
	Description     string `json:"description"`
	Type            string `json:"type"`
}

const (
	PlanSourceGenerated = "generated"
	PlanSourceFallback  = "fallback"
)

// PracticePlan is a stored plan. Completing a session against a plan
// counts toward the AI-plan achievements.
type PracticePlan struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	Title           string         `gorm:"column:title;not null" json:"title"`
	DurationMinutes int            `gorm:"column:duration_minutes;not null;default:0" json:"duration_minutes"`
	Intention       string         `gorm:"column:intention" json:"intention"`
	Source          string         `gorm:"column:source;not null" json:"source"`
	PlanJSON        datatypes.JSON `gorm:"column:plan_json" json:"plan_json"`

	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
}

func (PracticePlan) TableName() string {
	return "practice_plan"
}
