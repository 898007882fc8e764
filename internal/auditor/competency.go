package auditor

import "fmt"

// Competency identifies one of the five ENEM scoring dimensions.
type Competency int

// The five competencies. No other values are valid.
const (
	C1 Competency = iota + 1
	C2
	C3
	C4
	C5
)

// Competencies lists every competency in rubric order.
var Competencies = [5]Competency{C1, C2, C3, C4, C5}

var competencyNames = map[Competency]string{
	C1: "Domínio da Norma Culta",
	C2: "Compreensão do Tema",
	C3: "Argumentação",
	C4: "Coesão Textual",
	C5: "Proposta de Intervenção",
}

// Key returns the wire identifier ("c1".."c5").
func (c Competency) Key() string {
	return fmt.Sprintf("c%d", int(c))
}

// Name returns the display name of the competency.
func (c Competency) Name() string {
	return competencyNames[c]
}

func (c Competency) String() string {
	return fmt.Sprintf("C%d", int(c))
}

// Score is a competency grade. Only the values in ScoreValues are valid.
type Score int

// ScoreValues enumerates the grades a competency may receive.
var ScoreValues = [6]Score{0, 40, 80, 120, 160, 200}

// MaxTotalScore is the best possible essay grade.
const MaxTotalScore = 1000

// Valid reports whether s is one of the permitted grades.
func (s Score) Valid() bool {
	for _, allowed := range ScoreValues {
		if s == allowed {
			return true
		}
	}
	return false
}

// Band classifies a competency score for display.
func (s Score) Band() string {
	switch {
	case s >= 160:
		return BandStrong
	case s >= 120:
		return BandFair
	case s >= 80:
		return BandWeak
	default:
		return BandCritical
	}
}

// Display bands shared by competency and total scores.
const (
	BandStrong   = "strong"
	BandFair     = "fair"
	BandWeak     = "weak"
	BandCritical = "critical"
)

// TotalBand classifies a total essay score for display.
func TotalBand(total int) string {
	switch {
	case total >= 800:
		return BandStrong
	case total >= 600:
		return BandFair
	case total >= 400:
		return BandWeak
	default:
		return BandCritical
	}
}
