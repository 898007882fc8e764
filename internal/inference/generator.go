package inference

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/essay-auditor-api/internal/config"
	"github.com/noah-isme/essay-auditor-api/pkg/ai"
)

// GenerationConfig maps the configured sampling settings onto the generator
// options. Replies are always requested as JSON.
func GenerationConfig(cfg config.Config) ai.GenerationConfig {
	return ai.GenerationConfig{
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		TopK:            cfg.TopK,
		MaxOutputTokens: cfg.MaxOutputTokens,
		ResponseFormat:  ai.ResponseFormatJSON,
	}
}

// NewGenerator builds the configured inference client and returns its
// release function.
func NewGenerator(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ai.Generator, func(), error) {
	switch cfg.AIProvider {
	case config.AIProviderOpenAI:
		generator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Logger:  logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return generator, func() {}, nil
	default:
		generator, err := ai.NewGeminiGenerator(ctx, ai.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return generator, func() { _ = generator.Close() }, nil
	}
}
