package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/essay-auditor-api/internal/auditor"
)

// Correction is the immutable outcome of one essay audit.
type Correction struct {
	ID             string                                `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         uint                                  `gorm:"not null;index:idx_corrections_user_created,priority:1" json:"user_id"`
	EssayText      string                                `gorm:"type:text;not null" json:"essay_text"`
	TotalScore     int                                   `gorm:"not null" json:"total_score"`
	Breakdown      datatypes.JSONType[auditor.Breakdown] `gorm:"not null" json:"breakdown"`
	StrictFeedback string                                `gorm:"type:text" json:"strict_feedback"`
	ActionPlan     string                                `gorm:"type:text" json:"action_plan"`
	Provider       string                                `gorm:"size:32" json:"provider"`
	Model          string                                `gorm:"size:64" json:"model"`
	CreatedAt      time.Time                             `gorm:"index:idx_corrections_user_created,priority:2,sort:desc" json:"created_at"`
	User           User                                  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns the record identifier.
func (c *Correction) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// NewCorrection maps an audit result onto a new record owned by userID.
func NewCorrection(userID uint, essay string, result auditor.AuditResult) Correction {
	return Correction{
		UserID:         userID,
		EssayText:      essay,
		TotalScore:     result.TotalScore,
		Breakdown:      datatypes.NewJSONType(result.Competencies),
		StrictFeedback: result.StrictFeedback,
		ActionPlan:     result.ActionPlan,
	}
}

// Result rebuilds the audit result stored in the record.
func (c Correction) Result() auditor.AuditResult {
	return auditor.AuditResult{
		TotalScore:     c.TotalScore,
		Competencies:   c.Breakdown.Data(),
		StrictFeedback: c.StrictFeedback,
		ActionPlan:     c.ActionPlan,
	}
}
