package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/essay-auditor-api/internal/models"
)

func TestCorrectionEventSubject(t *testing.T) {
	require.Equal(t, "auditor.correction.created", correctionCreatedSubject("auditor"))
	require.Equal(t, "essay.auditor.correction.created", correctionCreatedSubject("essay:auditor"))
	require.Equal(t, "", correctionCreatedSubject("  "))
}

func TestCorrectionEventPublisherWithoutConnectionIsNoop(t *testing.T) {
	publisher := NewCorrectionEventPublisher(nil, "auditor", zerolog.Nop())
	require.Equal(t, "auditor.correction.created", publisher.Subject())
	require.NoError(t, publisher.PublishCreated(context.Background(), models.Correction{ID: "c-1"}))

	var missing *CorrectionEventPublisher
	require.NoError(t, missing.PublishCreated(context.Background(), models.Correction{ID: "c-1"}))
	require.Equal(t, "", missing.Subject())
}

func TestCorrectionCreatedEventPayload(t *testing.T) {
	publisher := NewCorrectionEventPublisher(nil, "auditor", zerolog.Nop())
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	event := publisher.newCreatedEvent(models.Correction{ID: "c-9", UserID: 4, TotalScore: 880, CreatedAt: createdAt})
	require.Equal(t, "c-9", event.CorrectionID)
	require.Equal(t, uint(4), event.UserID)
	require.Equal(t, 880, event.TotalScore)
	require.Equal(t, time.UTC, event.CreatedAt.Location())
	require.Len(t, event.Source, 36)
}
