package user

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is created lazily for an external identity on first scoring or
// first share. Slug is the public, globally unique handle.
type UserProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Identity    string    `gorm:"column:identity;not null;uniqueIndex" json:"-"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	Email       string    `gorm:"column:email" json:"-"`

	// Onboarding answers reused when a user retakes the quiz.
	Role            string `gorm:"column:role" json:"role,omitempty"`
	Industry        string `gorm:"column:industry" json:"industry,omitempty"`
	ExperienceLevel string `gorm:"column:experience_level" json:"experience_level,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }
