package auditor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/essay-auditor-api/pkg/ai"
)

// DefaultTimeout bounds a single grading call when none is configured.
const DefaultTimeout = 60 * time.Second

// StrictMode returns the low-variance generation settings used for grading.
func StrictMode() ai.GenerationConfig {
	return ai.GenerationConfig{
		Temperature:     0.1,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 8192,
		ResponseFormat:  ai.ResponseFormatJSON,
	}
}

// Requester grades essays through a language model.
type Requester struct {
	generator ai.Generator
	config    ai.GenerationConfig
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewRequester builds a requester. The response format is always forced to
// JSON regardless of the supplied config.
func NewRequester(generator ai.Generator, cfg ai.GenerationConfig, timeout time.Duration, logger zerolog.Logger) *Requester {
	cfg.ResponseFormat = ai.ResponseFormatJSON
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Requester{
		generator: generator,
		config:    cfg,
		timeout:   timeout,
		logger:    logger.With().Str("component", "audit_requester").Logger(),
	}
}

// Provider names the model backing the requester.
func (r *Requester) Provider() string {
	return r.generator.Provider()
}

// Model names the configured model.
func (r *Requester) Model() string {
	return r.generator.Model()
}

// Request makes exactly one inference call for the essay and parses the
// reply. Transport failures wrap ErrInferenceTransport; unusable replies are
// returned as *ContractError.
func (r *Requester) Request(ctx context.Context, essay string) (AuditResult, error) {
	prompt := BuildPrompt(essay)

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.generator.Generate(callCtx, prompt.System, prompt.User, r.config)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return AuditResult{}, fmt.Errorf("%w: timed out after %s: %v", ErrInferenceTransport, r.timeout, err)
		}
		return AuditResult{}, fmt.Errorf("%w: %v", ErrInferenceTransport, err)
	}

	result, err := ParseResult(raw)
	if err != nil {
		return AuditResult{}, err
	}

	r.logger.Debug().
		Int("total_score", result.TotalScore).
		Int("competency_sum", result.Competencies.Sum()).
		Msg("grading reply accepted")

	return result, nil
}
