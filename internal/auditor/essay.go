package auditor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMinLines is the smallest essay, in non-blank lines, worth grading.
// The rubric prompt scores anything shorter as zero, so it is also the floor
// for configured values.
const DefaultMinLines = 7

// EssayRules bounds the essays accepted for auditing.
type EssayRules struct {
	MinLines      int
	MinCharacters int
	MaxCharacters int
}

// DefaultEssayRules returns the rules used when none are configured.
func DefaultEssayRules() EssayRules {
	return EssayRules{MinLines: DefaultMinLines}
}

// CountLines returns the number of lines that are not blank after trimming.
func CountLines(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// ValidateEssay checks the essay against the rules and returns a
// *ValidationError describing the first rule it breaks. MinLines below
// DefaultMinLines is raised to it.
func ValidateEssay(text string, rules EssayRules) error {
	minLines := max(rules.MinLines, DefaultMinLines)

	lines := CountLines(text)
	characters := utf8.RuneCountInString(strings.TrimSpace(text))

	if lines < minLines {
		return &ValidationError{
			Message:    fmt.Sprintf("Texto muito curto. Mínimo de %d linhas para uma análise válida.", minLines),
			Lines:      lines,
			Characters: characters,
		}
	}

	if rules.MinCharacters > 0 && characters < rules.MinCharacters {
		return &ValidationError{
			Message:    fmt.Sprintf("Texto muito curto. Mínimo de %d caracteres para uma análise válida.", rules.MinCharacters),
			Lines:      lines,
			Characters: characters,
		}
	}

	if rules.MaxCharacters > 0 && characters > rules.MaxCharacters {
		return &ValidationError{
			Message:    fmt.Sprintf("Texto muito longo. Máximo de %d caracteres.", rules.MaxCharacters),
			Lines:      lines,
			Characters: characters,
		}
	}

	return nil
}
