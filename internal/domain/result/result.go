package result

import (
	"time"

	"github.com/google/uuid"
)

// Result is the scored outcome of one quiz session. At most one row exists per
// session and at most one row per profile has IsPublic set.
type Result struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	ProfileID *uuid.UUID `gorm:"type:uuid;column:profile_id;index" json:"profile_id,omitempty"`

	WorkStyleScore          float64 `gorm:"column:work_style_score;not null" json:"work_style_score"`
	DecisionProcessScore    float64 `gorm:"column:decision_process_score;not null" json:"decision_process_score"`
	CommunicationStyleScore float64 `gorm:"column:communication_style_score;not null" json:"communication_style_score"`
	FocusOrientationScore   float64 `gorm:"column:focus_orientation_score;not null" json:"focus_orientation_score"`

	WorkStyleTrait          string `gorm:"column:work_style_trait;not null" json:"work_style_trait"`
	WorkStyleLabel          string `gorm:"column:work_style_label;not null" json:"work_style_label"`
	DecisionProcessTrait    string `gorm:"column:decision_process_trait;not null" json:"decision_process_trait"`
	DecisionProcessLabel    string `gorm:"column:decision_process_label;not null" json:"decision_process_label"`
	CommunicationStyleTrait string `gorm:"column:communication_style_trait;not null" json:"communication_style_trait"`
	CommunicationStyleLabel string `gorm:"column:communication_style_label;not null" json:"communication_style_label"`
	FocusOrientationTrait   string `gorm:"column:focus_orientation_trait;not null" json:"focus_orientation_trait"`
	FocusOrientationLabel   string `gorm:"column:focus_orientation_label;not null" json:"focus_orientation_label"`

	// PersonalityCode is derived from the four traits; PersonalityTypeCode is the
	// catalog entry actually matched (nil only when the catalog was empty).
	PersonalityCode     string  `gorm:"column:personality_code;not null" json:"personality_code"`
	PersonalityTypeCode *string `gorm:"column:personality_type_code" json:"personality_type_code,omitempty"`
	CatalogVersion      int     `gorm:"column:catalog_version;not null" json:"catalog_version"`

	Confidence int `gorm:"column:confidence;not null" json:"confidence"`
	Fit        int `gorm:"column:fit;not null" json:"fit"`

	// ComputedAt moves only when the session is scored; sharing leaves it alone.
	ComputedAt time.Time `gorm:"column:computed_at;index" json:"computed_at"`

	IsPublic     bool       `gorm:"column:is_public;not null;default:false;index" json:"is_public"`
	PasscodeHash *string    `gorm:"column:passcode_hash" json:"-"`
	SharedAt     *time.Time `gorm:"column:shared_at" json:"shared_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Result) TableName() string { return "result" }

func (r *Result) HasPasscode() bool {
	return r != nil && r.PasscodeHash != nil && *r.PasscodeHash != ""
}

// LatestResult points an identity at its most recently computed result.
type LatestResult struct {
	Identity  string    `gorm:"column:identity;primaryKey" json:"-"`
	ResultID  uuid.UUID `gorm:"type:uuid;not null;index" json:"result_id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null" json:"session_id"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LatestResult) TableName() string { return "latest_result" }
