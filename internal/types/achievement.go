package types

import (
	"time"

	"github.com/google/uuid"
)

// UserAchievement is a permanently unlocked badge. Rows are append-only:
// once earned an achievement is never re-evaluated or removed.
type UserAchievement struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_achievement,unique" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	AchievementID string `gorm:"column:achievement_id;not null;index:idx_user_achievement,unique" json:"achievement_id"`
	Title         string `gorm:"column:title;not null" json:"title"`
	Description   string `gorm:"column:description" json:"description"`
	Icon          string `gorm:"column:icon" json:"icon"`
	Reward        string `gorm:"column:reward" json:"reward"`

	EarnedAt  time.Time  `gorm:"column:earned_at;not null" json:"earned_at"`
	SessionID *uuid.UUID `gorm:"type:uuid;column:session_id" json:"session_id,omitempty"`
}

func (UserAchievement) TableName() string {
	return "user_achievement"
}
