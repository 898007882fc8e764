package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/essay-auditor-api/internal/models"
)

// CorrectionCreatedEvent is published after a correction is stored.
type CorrectionCreatedEvent struct {
	Source       string    `json:"source"`
	CorrectionID string    `json:"correction_id"`
	UserID       uint      `json:"user_id"`
	TotalScore   int       `json:"total_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// CorrectionEventPublisher fans correction events out over NATS. A nil
// publisher, or one without a connection, drops events silently.
type CorrectionEventPublisher struct {
	nats    *nats.Conn
	subject string
	nodeID  string
	logger  zerolog.Logger
}

// NewCorrectionEventPublisher builds a publisher for <subjectBase>.correction.created.
func NewCorrectionEventPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) *CorrectionEventPublisher {
	return &CorrectionEventPublisher{
		nats:    conn,
		subject: correctionCreatedSubject(subjectBase),
		nodeID:  uuid.NewString(),
		logger:  logger.With().Str("component", "correction_events").Logger(),
	}
}

// Subject returns the NATS subject events are published on.
func (p *CorrectionEventPublisher) Subject() string {
	if p == nil {
		return ""
	}
	return p.subject
}

// PublishCreated announces a stored correction.
func (p *CorrectionEventPublisher) PublishCreated(_ context.Context, correction models.Correction) error {
	if p == nil || p.nats == nil || p.subject == "" {
		return nil
	}

	payload, err := json.Marshal(p.newCreatedEvent(correction))
	if err != nil {
		return err
	}

	return p.nats.Publish(p.subject, payload)
}

func (p *CorrectionEventPublisher) newCreatedEvent(correction models.Correction) CorrectionCreatedEvent {
	return CorrectionCreatedEvent{
		Source:       p.nodeID,
		CorrectionID: correction.ID,
		UserID:       correction.UserID,
		TotalScore:   correction.TotalScore,
		CreatedAt:    correction.CreatedAt.UTC(),
	}
}

func correctionCreatedSubject(base string) string {
	base = strings.Trim(strings.ReplaceAll(strings.TrimSpace(base), ":", "."), ".")
	if base == "" {
		return ""
	}
	return base + ".correction.created"
}
