package inference

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/essay-auditor-api/internal/config"
	"github.com/noah-isme/essay-auditor-api/pkg/ai"
)

func TestGenerationConfigForcesJSON(t *testing.T) {
	got := GenerationConfig(config.Config{Temperature: 0.1, TopP: 0.8, TopK: 40, MaxOutputTokens: 8192})

	require.Equal(t, ai.GenerationConfig{
		Temperature:     0.1,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 8192,
		ResponseFormat:  ai.ResponseFormatJSON,
	}, got)
}

func TestNewGeneratorSelectsProvider(t *testing.T) {
	generator, release, err := NewGenerator(context.Background(), config.Config{
		AIProvider:   config.AIProviderOpenAI,
		OpenAIAPIKey: "sk-test",
		OpenAIModel:  "gpt-test",
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(release)

	require.Equal(t, "openai", generator.Provider())
	require.Equal(t, "gpt-test", generator.Model())

	_, _, err = NewGenerator(context.Background(), config.Config{AIProvider: config.AIProviderGemini}, zerolog.Nop())
	require.Error(t, err)
}
