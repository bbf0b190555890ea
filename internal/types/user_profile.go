package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OnboardingProfile is the questionnaire payload collected after signup.
// It feeds the recommendation prompt and the fallback plan generator.
type OnboardingProfile struct {
	BasicInfo struct {
		Age    int    `json:"age"`
		Gender string `json:"gender"`
	} `json:"basic_info"`
	Experience struct {
		Level     string   `json:"level"` // beginner | intermediate | advanced
		Frequency string   `json:"frequency"`
		Goals     []string `json:"goals"`
	} `json:"experience"`
	Health struct {
		Routine    string   `json:"routine"`
		Conditions []string `json:"conditions"`
		Injuries   string   `json:"injuries"`
	} `json:"health"`
	Preferences struct {
		SessionDuration int      `json:"session_duration"`
		Difficulty      string   `json:"difficulty"`
		FocusAreas      []string `json:"focus_areas"`
	} `json:"preferences"`
}

type UserProfile struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	ProfileJSON datatypes.JSON `gorm:"column:profile_json" json:"profile_json"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profile"
}
