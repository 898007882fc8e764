package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/essay-auditor-api/internal/auditor"
	"github.com/noah-isme/essay-auditor-api/internal/dto"
	"github.com/noah-isme/essay-auditor-api/internal/models"
	"github.com/noah-isme/essay-auditor-api/internal/observability"
	"github.com/noah-isme/essay-auditor-api/internal/repository"
)

// Audit outcome labels.
const (
	outcomeUnauthenticated    = "unauthenticated"
	outcomeSessionUnavailable = "session_unavailable"
	outcomeInvalid            = "invalid"
	outcomeInferenceTransport = "inference_transport"
	outcomeInferenceContract  = "inference_contract"
	outcomePersistenceFailed  = "persistence_failed"
	outcomeSucceeded          = "succeeded"
)

// SessionResolver resolves the signed-in user. A zero userID means nobody
// is signed in.
type SessionResolver interface {
	CurrentUser(ctx context.Context, userID uint) (models.User, error)
}

// EssayGrader grades an essay with a single inference call.
type EssayGrader interface {
	Request(ctx context.Context, essay string) (auditor.AuditResult, error)
	Provider() string
	Model() string
}

// DashboardInvalidator drops cached dashboard data after a new correction.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, userID uint) error
}

// CorrectionPublisher announces stored corrections.
type CorrectionPublisher interface {
	PublishCreated(ctx context.Context, correction models.Correction) error
}

// AuditService runs the essay audit pipeline.
type AuditService interface {
	Audit(ctx context.Context, userID uint, essay string) (dto.AuditResponse, error)
}

// AuditDependencies groups the collaborators of the audit pipeline.
// Dashboard and Events are optional.
type AuditDependencies struct {
	Sessions    SessionResolver
	Grader      EssayGrader
	Corrections repository.CorrectionRepository
	Dashboard   DashboardInvalidator
	Events      CorrectionPublisher
	Rules       auditor.EssayRules
}

type auditService struct {
	deps   AuditDependencies
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewAuditService constructs the audit pipeline.
func NewAuditService(deps AuditDependencies, logger zerolog.Logger) AuditService {
	if deps.Rules.MinLines <= 0 {
		deps.Rules.MinLines = auditor.DefaultMinLines
	}

	return &auditService{
		deps:   deps,
		logger: logger.With().Str("component", "audit_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/essay-auditor-api/internal/service/audit"),
		now:    time.Now,
	}
}

// Audit authenticates the caller, validates the essay, grades it and stores
// the result. Each stage fails closed: nothing after a failed stage runs and
// nothing is stored unless grading succeeded.
func (s *auditService) Audit(ctx context.Context, userID uint, essay string) (dto.AuditResponse, error) {
	ctx, span := s.tracer.Start(ctx, "audits.run", trace.WithAttributes(
		attribute.Int("audit.user_id", int(userID)),
	))
	defer span.End()

	user, err := s.authenticate(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSessionUnavailable) {
			return s.fail(span, outcomeSessionUnavailable, err)
		}
		return s.fail(span, outcomeUnauthenticated, err)
	}
	logger := s.logger.With().Uint("user_id", user.ID).Logger()

	if err := auditor.ValidateEssay(essay, s.deps.Rules); err != nil {
		return s.fail(span, outcomeInvalid, newAuditError(ErrValidation, err.Error(), err))
	}

	started := s.now()
	result, err := s.deps.Grader.Request(ctx, essay)
	observability.AuditDuration().Observe(s.now().Sub(started).Seconds())
	if err != nil {
		var contractErr *auditor.ContractError
		if errors.As(err, &contractErr) {
			logger.Error().
				Err(contractErr.Reason).
				Str("raw_reply", contractErr.Raw).
				Str("provider", s.deps.Grader.Provider()).
				Msg("grading reply rejected")
			return s.fail(span, outcomeInferenceContract, newAuditError(ErrInferenceContract, MessageAuditFailed, err))
		}

		logger.Error().Err(err).Str("provider", s.deps.Grader.Provider()).Msg("grading request failed")
		return s.fail(span, outcomeInferenceTransport, newAuditError(ErrInferenceTransport, MessageAuditFailed, err))
	}

	correction := models.NewCorrection(user.ID, essay, result)
	correction.Provider = s.deps.Grader.Provider()
	correction.Model = s.deps.Grader.Model()
	if err := s.deps.Corrections.Create(ctx, &correction); err != nil {
		logger.Error().Err(err).Msg("failed to persist correction")
		return s.fail(span, outcomePersistenceFailed, newAuditError(ErrPersistence, MessagePersistenceFailed, err))
	}

	s.afterPersist(ctx, logger, correction)

	observability.AuditOutcomes().WithLabelValues(outcomeSucceeded).Inc()
	span.SetAttributes(
		attribute.String("audit.correction_id", correction.ID),
		attribute.Int("audit.total_score", correction.TotalScore),
	)
	logger.Info().
		Str("correction_id", correction.ID).
		Int("total_score", correction.TotalScore).
		Msg("essay audited")

	return dto.NewAuditResponse(correction.ID, result), nil
}

func (s *auditService) authenticate(ctx context.Context, userID uint) (models.User, error) {
	if userID == 0 || s.deps.Sessions == nil {
		return models.User{}, newAuditError(ErrAuthentication, MessageAuthenticationRequired, nil)
	}

	user, err := s.deps.Sessions.CurrentUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, newAuditError(ErrAuthentication, MessageAuthenticationRequired, err)
		}
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to resolve session")
		return models.User{}, newAuditError(ErrSessionUnavailable, MessageSessionUnavailable, err)
	}
	return user, nil
}

// afterPersist runs side effects that must never fail an audit whose result
// is already stored.
func (s *auditService) afterPersist(ctx context.Context, logger zerolog.Logger, correction models.Correction) {
	if s.deps.Dashboard != nil {
		if err := s.deps.Dashboard.Invalidate(ctx, correction.UserID); err != nil {
			logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
		}
	}
	if s.deps.Events != nil {
		if err := s.deps.Events.PublishCreated(ctx, correction); err != nil {
			logger.Warn().Err(err).Msg("failed to publish correction event")
		}
	}
}

func (s *auditService) fail(span trace.Span, outcome string, err error) (dto.AuditResponse, error) {
	observability.AuditOutcomes().WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("audit.outcome", outcome))
	span.SetStatus(codes.Error, outcome)
	return dto.AuditResponse{}, err
}
