package auditor

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountLinesIgnoresBlankLines(t *testing.T) {
	text := "primeira linha\n\n   \n\tsegunda linha\r\nterceira\n"
	require.Equal(t, 3, CountLines(text))
	require.Equal(t, 0, CountLines(""))
	require.Equal(t, 0, CountLines(" \n\t\n"))
}

func TestValidateEssayRejectsShortEssays(t *testing.T) {
	err := ValidateEssay("uma\nduas\ntrês", DefaultEssayRules())

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Equal(t, "Texto muito curto. Mínimo de 7 linhas para uma análise válida.", validationErr.Message)
	require.Equal(t, 3, validationErr.Lines)
}

func TestValidateEssayAcceptsSevenNonBlankLines(t *testing.T) {
	lines := make([]string, 0, 14)
	for i := 0; i < 7; i++ {
		lines = append(lines, "A desigualdade educacional persiste no Brasil contemporâneo.", "")
	}
	require.NoError(t, ValidateEssay(strings.Join(lines, "\n"), DefaultEssayRules()))
}

func TestValidateEssayAppliesCharacterBounds(t *testing.T) {
	short := strings.Repeat("ab\n", 7)
	err := ValidateEssay(short, EssayRules{MinLines: 7, MinCharacters: 140})

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Message, "140 caracteres")

	long := strings.Repeat(strings.Repeat("x", 50)+"\n", 10)
	err = ValidateEssay(long, EssayRules{MinLines: 7, MaxCharacters: 100})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Message, "Máximo de 100")
}

func TestValidateEssayNeverGoesBelowSevenLines(t *testing.T) {
	essay := "primeira linha da redação\nsegunda linha da redação\nterceira linha da redação"

	for _, minLines := range []int{-1, 0, 3} {
		err := ValidateEssay(essay, EssayRules{MinLines: minLines})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Equal(t, 3, validationErr.Lines)
		require.Contains(t, validationErr.Message, "Mínimo de 7 linhas")
	}
}
