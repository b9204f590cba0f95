package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MinResponseValue = -2
	MaxResponseValue = 2
)

// Session is one attempt at a quiz. Identity is nil for anonymous attempts.
type Session struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Identity          *string    `gorm:"column:identity;index" json:"-"`
	RetakeOfSessionID *uuid.UUID `gorm:"type:uuid;column:retake_of_session_id;index" json:"retake_of_session_id,omitempty"`

	StartedAt   time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	ClientMetadata datatypes.JSON `gorm:"column:client_metadata" json:"client_metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Session) TableName() string { return "quiz_session" }

func (s *Session) IdentityValue() string {
	if s == nil || s.Identity == nil {
		return ""
	}
	return *s.Identity
}

// Response is unique per (session, question); resubmission updates Value.
type Response struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_quiz_response_session_question,priority:1" json:"session_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_quiz_response_session_question,priority:2" json:"question_id"`
	Value      int       `gorm:"column:value;not null" json:"value"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Response) TableName() string { return "quiz_response" }

func ValidResponseValue(v int) bool {
	return v >= MinResponseValue && v <= MaxResponseValue
}
