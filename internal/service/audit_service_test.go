package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/essay-auditor-api/internal/auditor"
	"github.com/noah-isme/essay-auditor-api/internal/models"
	"github.com/noah-isme/essay-auditor-api/internal/repository"
	"github.com/noah-isme/essay-auditor-api/pkg/ai"
)

const gradingReply = `{
  "total_score": 560,
  "competencies": {
    "c1": {"score": 120, "errors": "Truncamento no segundo parágrafo"},
    "c2": {"score": 120, "analysis": "Tema compreendido, repertório improdutivo"},
    "c3": {"score": 80, "gaps": "Argumento sem aprofundamento"},
    "c4": {"score": 120, "connectives": "Quebra de paralelismo"},
    "c5": {"score": 120, "details": "Falta detalhamento do meio"}
  },
  "strict_feedback": "O texto não sustenta a tese.",
  "action_plan": "Estude proposta de intervenção completa."
}`

type stubSessions struct {
	users map[uint]models.User
	err   error
	calls int
}

func (s *stubSessions) CurrentUser(_ context.Context, userID uint) (models.User, error) {
	s.calls++
	if s.err != nil {
		return models.User{}, s.err
	}
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

type stubGenerator struct {
	replies []string
	err     error
	calls   int
}

func (s *stubGenerator) Generate(_ context.Context, _, _ string, _ ai.GenerationConfig) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return reply, nil
}

func (s *stubGenerator) Provider() string { return "stub" }
func (s *stubGenerator) Model() string    { return "stub-model" }

type stubCorrectionRepo struct {
	created   []models.Correction
	createErr error
}

func (s *stubCorrectionRepo) Create(_ context.Context, correction *models.Correction) error {
	if s.createErr != nil {
		return s.createErr
	}
	if correction.ID == "" {
		correction.ID = fmt.Sprintf("correction-%d", len(s.created)+1)
	}
	s.created = append(s.created, *correction)
	return nil
}

func (s *stubCorrectionRepo) ListByUser(context.Context, uint, int) ([]models.Correction, error) {
	return s.created, nil
}

func (s *stubCorrectionRepo) LatestByUser(context.Context, uint) (*models.Correction, error) {
	if len(s.created) == 0 {
		return nil, nil
	}
	latest := s.created[len(s.created)-1]
	return &latest, nil
}

func (s *stubCorrectionRepo) StatsByUser(context.Context, uint) (repository.CorrectionStats, error) {
	return repository.CorrectionStats{Count: int64(len(s.created))}, nil
}

type recordingSideEffects struct {
	invalidated []uint
	published   []string
	err         error
}

func (r *recordingSideEffects) Invalidate(_ context.Context, userID uint) error {
	r.invalidated = append(r.invalidated, userID)
	return r.err
}

func (r *recordingSideEffects) PublishCreated(_ context.Context, correction models.Correction) error {
	r.published = append(r.published, correction.ID)
	return r.err
}

type auditFixture struct {
	service   AuditService
	sessions  *stubSessions
	generator *stubGenerator
	repo      *stubCorrectionRepo
	effects   *recordingSideEffects
}

func newAuditFixture(t *testing.T, generator *stubGenerator) auditFixture {
	t.Helper()
	sessions := &stubSessions{users: map[uint]models.User{1: {ID: 1, Name: "Ana", Email: "ana@example.com"}}}
	repo := &stubCorrectionRepo{}
	effects := &recordingSideEffects{}
	requester := auditor.NewRequester(generator, auditor.StrictMode(), time.Second, zerolog.Nop())

	svc := NewAuditService(AuditDependencies{
		Sessions:    sessions,
		Grader:      requester,
		Corrections: repo,
		Dashboard:   effects,
		Events:      effects,
		Rules:       auditor.DefaultEssayRules(),
	}, zerolog.Nop())

	return auditFixture{service: svc, sessions: sessions, generator: generator, repo: repo, effects: effects}
}

func essayWithLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "A persistência da desigualdade educacional compromete a cidadania plena no país."
	}
	return strings.Join(lines, "\n")
}

func requireAuditError(t *testing.T, err error, kind error, message string) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	require.Equal(t, message, err.Error())

	var auditErr *AuditError
	require.True(t, errors.As(err, &auditErr))
	require.Equal(t, message, auditErr.Message)
}

func TestAuditStoresAndReturnsValidResult(t *testing.T) {
	f := newAuditFixture(t, &stubGenerator{replies: []string{gradingReply}})
	essay := essayWithLines(10)

	response, err := f.service.Audit(context.Background(), 1, essay)
	require.NoError(t, err)

	require.Equal(t, 560, response.TotalScore)
	require.Equal(t, auditor.Score(80), response.Competencies.C3.Score)
	require.Equal(t, "O texto não sustenta a tese.", response.StrictFeedback)
	require.NotEmpty(t, response.CorrectionID)

	require.Equal(t, 1, f.generator.calls)
	require.Len(t, f.repo.created, 1)
	stored := f.repo.created[0]
	require.Equal(t, uint(1), stored.UserID)
	require.Equal(t, essay, stored.EssayText)
	require.Equal(t, 560, stored.TotalScore)
	require.Equal(t, "stub", stored.Provider)
	require.Equal(t, "stub-model", stored.Model)
	require.Equal(t, response.CorrectionID, stored.ID)

	require.Equal(t, []uint{1}, f.effects.invalidated)
	require.Equal(t, []string{stored.ID}, f.effects.published)
}

func TestAuditRejectsShortEssayBeforeInference(t *testing.T) {
	f := newAuditFixture(t, &stubGenerator{replies: []string{gradingReply}})

	_, err := f.service.Audit(context.Background(), 1, essayWithLines(5))
	requireAuditError(t, err, ErrValidation, "Texto muito curto. Mínimo de 7 linhas para uma análise válida.")

	var validationErr *auditor.ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Equal(t, 5, validationErr.Lines)

	require.Zero(t, f.generator.calls)
	require.Empty(t, f.repo.created)
}

func TestAuditBlankLinesDoNotCount(t *testing.T) {
	f := newAuditFixture(t, &stubGenerator{replies: []string{gradingReply}})

	essay := strings.Join([]string{essayWithLines(6), "", "   ", "\t", ""}, "\n")
	_, err := f.service.Audit(context.Background(), 1, essay)
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, f.generator.calls)
}

func TestAuditRequiresAuthenticatedUser(t *testing.T) {
	f := newAuditFixture(t, &stubGenerator{replies: []string{gradingReply}})

	_, err := f.service.Audit(context.Background(), 0, essayWithLines(10))
	requireAuditError(t, err, ErrAuthentication, MessageAuthenticationRequired)
	require.Zero(t, f.sessions.calls)

	_, err = f.service.Audit(context.Background(), 99, essayWithLines(10))
	requireAuditError(t, err, ErrAuthentication, MessageAuthenticationRequired)
	require.ErrorIs(t, err, ErrUserNotFound)

	require.Zero(t, f.generator.calls)
	require.Empty(t, f.repo.created)
}

func TestAuditSessionStoreFailureIsNotReportedAsSignedOut(t *testing.T) {
	f := newAuditFixture(t, &stubGenerator{replies: []string{gradingReply}})
	f.sessions.err = errors.New("session store down")

	_, err := f.service.Audit(context.Background(), 1, essayWithLines(10))
	requireAuditError(t, err, ErrSessionUnavailable, MessageSessionUnavailable)
	require.NotErrorIs(t, err, ErrAuthentication)
	var auditErr *AuditError
	require.ErrorAs(t, err, &auditErr)
	require.EqualError(t, auditErr.Cause, "session store down")

	require.Zero(t, f.generator.calls)
	require.Empty(t, f.repo.created)
}

func TestNewAuditServiceKeepsCharacterRulesWhenDefaultingLines(t *testing.T) {
	sessions := &stubSessions{users: map[uint]models.User{1: {ID: 1}}}
	generator := &stubGenerator{replies: []string{gradingReply}}
	svc := NewAuditService(AuditDependencies{
		Sessions:    sessions,
		Grader:      auditor.NewRequester(generator, auditor.StrictMode(), time.Second, zerolog.Nop()),
		Corrections: &stubCorrectionRepo{},
		Rules:       auditor.EssayRules{MaxCharacters: 200},
	}, zerolog.Nop())

	_, err := svc.Audit(context.Background(), 1, essayWithLines(10))
	requireAuditError(t, err, ErrValidation, "Texto muito longo. Máximo de 200 caracteres.")
	require.Zero(t, generator.calls)

	_, err = svc.Audit(context.Background(), 1, essayWithLines(5))
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "Mínimo de 7 linhas")
}

func TestAuditAuthenticationPrecedesValidation(t *testing.T) {
	f := newAuditFixture(t, &stubGenerator{replies: []string{gradingReply}})

	_, err := f.service.Audit(context.Background(), 0, "curto")
	require.ErrorIs(t, err, ErrAuthentication)
	require.NotErrorIs(t, err, ErrValidation)
}

func TestAuditContractViolationPersistsNothing(t *testing.T) {
	replies := []string{
		"```json\n" + gradingReply + "\n```",
		strings.Replace(gradingReply, `"score": 80`, `"score": 90`, 1),
		strings.Replace(gradingReply, `"c5": {"score": 120, "details": "Falta detalhamento do meio"}`, `"c6": {"score": 120, "details": "x"}`, 1),
		`{"total_score": 560}`,
	}

	for _, reply := range replies {
		f := newAuditFixture(t, &stubGenerator{replies: []string{reply}})

		_, err := f.service.Audit(context.Background(), 1, essayWithLines(10))
		requireAuditError(t, err, ErrInferenceContract, MessageAuditFailed)
		require.NotErrorIs(t, err, ErrInferenceTransport)
		require.Equal(t, 1, f.generator.calls)
		require.Empty(t, f.repo.created)
		require.Empty(t, f.effects.invalidated)
		require.Empty(t, f.effects.published)
	}
}

func TestAuditTransportFailureIsNotRetried(t *testing.T) {
	f := newAuditFixture(t, &stubGenerator{err: errors.New("connection reset")})

	_, err := f.service.Audit(context.Background(), 1, essayWithLines(10))
	requireAuditError(t, err, ErrInferenceTransport, MessageAuditFailed)
	require.NotContains(t, err.Error(), "connection reset")
	require.Equal(t, 1, f.generator.calls)
	require.Empty(t, f.repo.created)
}

func TestAuditPersistenceFailureDiscardsResult(t *testing.T) {
	f := newAuditFixture(t, &stubGenerator{replies: []string{gradingReply}})
	f.repo.createErr = errors.New("disk full")

	response, err := f.service.Audit(context.Background(), 1, essayWithLines(10))
	requireAuditError(t, err, ErrPersistence, MessagePersistenceFailed)
	require.Zero(t, response.TotalScore)
	require.Empty(t, f.effects.invalidated)
	require.Empty(t, f.effects.published)
}

func TestAuditSideEffectFailuresDoNotFailAudit(t *testing.T) {
	f := newAuditFixture(t, &stubGenerator{replies: []string{gradingReply}})
	f.effects.err = errors.New("redis down")

	response, err := f.service.Audit(context.Background(), 1, essayWithLines(10))
	require.NoError(t, err)
	require.Equal(t, 560, response.TotalScore)
	require.Len(t, f.repo.created, 1)
}

func TestAuditDashboardShowsNewestOfTwoCorrections(t *testing.T) {
	dsn := fmt.Sprintf("file:audit_pipeline_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Correction{}))

	user := models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: []byte("x")}
	require.NoError(t, db.Create(&user).Error)

	mini := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	corrections := repository.NewCorrectionRepository(db)
	dashboard := NewDashboardService(corrections, redisClient, time.Minute, zerolog.Nop())
	second := strings.Replace(gradingReply, `"total_score": 560`, `"total_score": 720`, 1)
	generator := &stubGenerator{replies: []string{gradingReply, second}}

	svc := NewAuditService(AuditDependencies{
		Sessions:    &stubSessions{users: map[uint]models.User{user.ID: user}},
		Grader:      auditor.NewRequester(generator, auditor.StrictMode(), time.Second, zerolog.Nop()),
		Corrections: corrections,
		Dashboard:   dashboard,
	}, zerolog.Nop())

	ctx := context.Background()
	first, err := svc.Audit(ctx, user.ID, essayWithLines(10))
	require.NoError(t, err)

	view, hit, err := dashboard.GetDashboard(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, first.CorrectionID, view.Latest.ID)

	_, hit, err = dashboard.GetDashboard(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, hit)

	time.Sleep(10 * time.Millisecond)
	latest, err := svc.Audit(ctx, user.ID, essayWithLines(12))
	require.NoError(t, err)

	view, hit, err = dashboard.GetDashboard(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, hit)
	require.NotNil(t, view.Latest)
	require.Equal(t, latest.CorrectionID, view.Latest.ID)
	require.Equal(t, 720, view.Latest.TotalScore)
	require.Equal(t, int64(2), view.Stats.Count)
	require.InDelta(t, 640.0, view.Stats.AverageScore, 0.01)
}
