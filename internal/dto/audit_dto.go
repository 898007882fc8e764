package dto

import "github.com/noah-isme/essay-auditor-api/internal/auditor"

// AuditRequest is the JSON body accepted by the audit endpoint.
type AuditRequest struct {
	Essay string `json:"essay" form:"essay"`
}

// AuditResponse mirrors the structured grading returned to the caller.
type AuditResponse struct {
	CorrectionID   string            `json:"correction_id"`
	TotalScore     int               `json:"total_score"`
	Competencies   auditor.Breakdown `json:"competencies"`
	StrictFeedback string            `json:"strict_feedback"`
	ActionPlan     string            `json:"action_plan"`
}

// NewAuditResponse maps an accepted audit onto the response payload.
func NewAuditResponse(correctionID string, result auditor.AuditResult) AuditResponse {
	return AuditResponse{
		CorrectionID:   correctionID,
		TotalScore:     result.TotalScore,
		Competencies:   result.Competencies,
		StrictFeedback: result.StrictFeedback,
		ActionPlan:     result.ActionPlan,
	}
}
