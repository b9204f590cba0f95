package quiz

import (
	"time"

	"github.com/google/uuid"
)

// Quiz is seeded content and is never mutated by request handling.
type Quiz struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Version     int       `gorm:"column:version;not null" json:"version"`

	Sections []*Section `gorm:"-" json:"sections,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Quiz) TableName() string { return "quiz" }

// Section groups the questions measuring one trait dimension.
type Section struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID       uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	Description  string    `gorm:"column:description" json:"description"`
	Dimension    string    `gorm:"column:dimension;not null" json:"dimension"`
	DisplayOrder int       `gorm:"column:display_order;not null" json:"display_order"`

	Questions []*Question `gorm:"-" json:"questions,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Section) TableName() string { return "quiz_section" }

type Question struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID       uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	SectionID    uuid.UUID `gorm:"type:uuid;not null;index" json:"section_id"`
	Statement    string    `gorm:"column:statement;not null" json:"statement"`
	DisplayOrder int       `gorm:"column:display_order;not null" json:"display_order"`
	// IsReversed questions are phrased against the section's positive pole.
	IsReversed bool `gorm:"column:is_reversed;not null;default:false" json:"is_reversed"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Question) TableName() string { return "quiz_question" }
