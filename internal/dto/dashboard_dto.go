package dto

import (
	"math"
	"time"

	"github.com/noah-isme/essay-auditor-api/internal/auditor"
	"github.com/noah-isme/essay-auditor-api/internal/models"
)

// Radar chart geometry on a 200x200 canvas.
const (
	RadarCenterX = 100.0
	RadarCenterY = 100.0
	RadarRadius  = 80.0
)

// CompetencyView is a display-ready competency grade.
type CompetencyView struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Band      string `json:"band"`
	Rationale string `json:"rationale"`
}

// RadarPoint is one vertex of the competency radar chart.
type RadarPoint struct {
	Competency string  `json:"competency"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// CorrectionResponse is the presentation of a stored correction.
type CorrectionResponse struct {
	ID             string           `json:"id"`
	TotalScore     int              `json:"total_score"`
	TotalBand      string           `json:"total_band"`
	Competencies   []CompetencyView `json:"competencies"`
	Radar          []RadarPoint     `json:"radar"`
	StrictFeedback string           `json:"strict_feedback"`
	ActionPlan     string           `json:"action_plan"`
	EssayText      string           `json:"essay_text,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// CorrectionSummary is a compact history row.
type CorrectionSummary struct {
	ID         string    `json:"id"`
	TotalScore int       `json:"total_score"`
	TotalBand  string    `json:"total_band"`
	Scores     []int     `json:"scores"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryStats summarises every correction of the user.
type HistoryStats struct {
	Count        int64   `json:"count"`
	AverageScore float64 `json:"average_score"`
}

// DashboardResponse holds the latest correction, or nil when the user has
// never been audited.
type DashboardResponse struct {
	Latest *CorrectionResponse `json:"latest"`
	Stats  HistoryStats        `json:"stats"`
}

// NewCorrectionResponse builds the presentation of a stored correction.
func NewCorrectionResponse(correction models.Correction, includeEssay bool) CorrectionResponse {
	breakdown := correction.Breakdown.Data()

	views := make([]CompetencyView, 0, len(auditor.Competencies))
	for _, c := range auditor.Competencies {
		score := breakdown.Score(c)
		views = append(views, CompetencyView{
			ID:        c.Key(),
			Label:     c.String(),
			Name:      c.Name(),
			Score:     int(score),
			Band:      score.Band(),
			Rationale: breakdown.Rationale(c),
		})
	}

	response := CorrectionResponse{
		ID:             correction.ID,
		TotalScore:     correction.TotalScore,
		TotalBand:      auditor.TotalBand(correction.TotalScore),
		Competencies:   views,
		Radar:          RadarPoints(breakdown),
		StrictFeedback: correction.StrictFeedback,
		ActionPlan:     correction.ActionPlan,
		CreatedAt:      correction.CreatedAt,
	}
	if includeEssay {
		response.EssayText = correction.EssayText
	}
	return response
}

// NewCorrectionSummary builds a history row.
func NewCorrectionSummary(correction models.Correction) CorrectionSummary {
	breakdown := correction.Breakdown.Data()
	scores := make([]int, 0, len(auditor.Competencies))
	for _, c := range auditor.Competencies {
		scores = append(scores, int(breakdown.Score(c)))
	}

	return CorrectionSummary{
		ID:         correction.ID,
		TotalScore: correction.TotalScore,
		TotalBand:  auditor.TotalBand(correction.TotalScore),
		Scores:     scores,
		CreatedAt:  correction.CreatedAt,
	}
}

// RadarPoints places the five scores on the radar chart. Axis i sits at
// i*72-90 degrees so C1 points straight up.
func RadarPoints(breakdown auditor.Breakdown) []RadarPoint {
	points := make([]RadarPoint, 0, len(auditor.Competencies))
	for i, c := range auditor.Competencies {
		angle := (float64(i)*72 - 90) * math.Pi / 180
		r := float64(breakdown.Score(c)) / 200 * RadarRadius
		points = append(points, RadarPoint{
			Competency: c.Key(),
			X:          round2(RadarCenterX + r*math.Cos(angle)),
			Y:          round2(RadarCenterY + r*math.Sin(angle)),
		})
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
