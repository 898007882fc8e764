package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

const providerGemini = "gemini"

// GeminiConfig defines configuration options for the Gemini generator.
type GeminiConfig struct {
	APIKey string
	Model  string
	Logger zerolog.Logger
}

// GeminiGenerator implements Generator against the Google Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	cfg    GeminiConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGeminiGenerator dials the Gemini API. Close must be called on shutdown.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("initialise gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/essay-auditor-api/pkg/ai/gemini"),
		logger: cfg.Logger.With().Str("component", "gemini_generator").Logger(),
	}, nil
}

// Provider reports the provider name.
func (g *GeminiGenerator) Provider() string { return providerGemini }

// Model reports the configured model.
func (g *GeminiGenerator) Model() string { return g.cfg.Model }

// Close releases the underlying client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// Generate runs a single content generation and concatenates the text parts
// of the first candidate.
func (g *GeminiGenerator) Generate(parent context.Context, systemPrompt, userContent string, cfg GenerationConfig) (string, error) {
	ctx, span := g.tracer.Start(parent, "gemini.generate", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	// GenerativeModel is mutable; build one per call so concurrent requests
	// never share sampling settings.
	model := g.client.GenerativeModel(g.cfg.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.SetTemperature(cfg.Temperature)
	if cfg.TopP > 0 {
		model.SetTopP(cfg.TopP)
	}
	if cfg.TopK > 0 {
		model.SetTopK(cfg.TopK)
	}
	if cfg.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	}
	if cfg.ResponseFormat == ResponseFormatJSON {
		model.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(userContent))
	generationDuration.WithLabelValues(providerGemini, g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", g.fail(span, fmt.Errorf("gemini generate: %w", err))
	}

	text := responseText(resp)
	if text == "" {
		return "", g.fail(span, fmt.Errorf("gemini generate: %w", ErrEmptyResponse))
	}

	if resp.UsageMetadata != nil {
		g.logger.Debug().
			Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount).
			Int32("candidate_tokens", resp.UsageMetadata.CandidatesTokenCount).
			Msg("gemini generation completed")
	}

	return text, nil
}

func (g *GeminiGenerator) fail(span trace.Span, err error) error {
	generationFailures.WithLabelValues(providerGemini, g.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	return strings.TrimSpace(builder.String())
}
