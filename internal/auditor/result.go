package auditor

// GrammarAssessment grades C1 and lists the grammar errors found.
type GrammarAssessment struct {
	Score  Score  `json:"score"`
	Errors string `json:"errors"`
}

// ThemeAssessment grades C2 with the thematic analysis.
type ThemeAssessment struct {
	Score    Score  `json:"score"`
	Analysis string `json:"analysis"`
}

// ArgumentAssessment grades C3 with the argumentative gaps detected.
type ArgumentAssessment struct {
	Score Score  `json:"score"`
	Gaps  string `json:"gaps"`
}

// CohesionAssessment grades C4 with notes on connectives.
type CohesionAssessment struct {
	Score       Score  `json:"score"`
	Connectives string `json:"connectives"`
}

// ProposalAssessment grades C5 with the intervention proposal elements.
type ProposalAssessment struct {
	Score   Score  `json:"score"`
	Details string `json:"details"`
}

// Breakdown holds exactly one assessment per competency.
type Breakdown struct {
	C1 GrammarAssessment  `json:"c1"`
	C2 ThemeAssessment    `json:"c2"`
	C3 ArgumentAssessment `json:"c3"`
	C4 CohesionAssessment `json:"c4"`
	C5 ProposalAssessment `json:"c5"`
}

// Score returns the grade of a competency.
func (b Breakdown) Score(c Competency) Score {
	switch c {
	case C1:
		return b.C1.Score
	case C2:
		return b.C2.Score
	case C3:
		return b.C3.Score
	case C4:
		return b.C4.Score
	case C5:
		return b.C5.Score
	default:
		return 0
	}
}

// Rationale returns the free-text justification of a competency.
func (b Breakdown) Rationale(c Competency) string {
	switch c {
	case C1:
		return b.C1.Errors
	case C2:
		return b.C2.Analysis
	case C3:
		return b.C3.Gaps
	case C4:
		return b.C4.Connectives
	case C5:
		return b.C5.Details
	default:
		return ""
	}
}

// Sum adds the five competency grades.
func (b Breakdown) Sum() int {
	total := 0
	for _, c := range Competencies {
		total += int(b.Score(c))
	}
	return total
}

// AuditResult is the structured grading returned by the model.
type AuditResult struct {
	TotalScore     int       `json:"total_score"`
	Competencies   Breakdown `json:"competencies"`
	StrictFeedback string    `json:"strict_feedback"`
	ActionPlan     string    `json:"action_plan"`
}
