package ai

import (
	"context"
	"errors"
)

// ResponseFormat constrains the shape of the model reply.
type ResponseFormat string

// Supported response formats.
const (
	ResponseFormatText ResponseFormat = "text"
	ResponseFormatJSON ResponseFormat = "json"
)

// ErrEmptyResponse indicates the provider answered without any text candidate.
var ErrEmptyResponse = errors.New("empty model response")

// GenerationConfig carries the sampling parameters of a single generation.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
	ResponseFormat  ResponseFormat
}

// Generator describes a hosted language model that turns a system prompt and
// user content into raw text.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userContent string, cfg GenerationConfig) (string, error)
	Provider() string
	Model() string
}
