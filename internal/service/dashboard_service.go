package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/essay-auditor-api/internal/dto"
	"github.com/noah-isme/essay-auditor-api/internal/observability"
	"github.com/noah-isme/essay-auditor-api/internal/repository"
)

// MaxHistoryLimit caps the number of corrections returned by ListHistory.
const MaxHistoryLimit = 50

// DashboardService reads a user's stored corrections for display.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, bool, error)
	ListHistory(ctx context.Context, userID uint, limit int) ([]dto.CorrectionSummary, error)
	Invalidate(ctx context.Context, userID uint) error
}

type dashboardService struct {
	corrections repository.CorrectionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewDashboardService builds the dashboard reader. cache may be nil.
func NewDashboardService(corrections repository.CorrectionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		corrections: corrections,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func dashboardCacheKey(userID uint) string {
	return fmt.Sprintf("dashboard:corrections:%d", userID)
}

// dashboardGenerationKey holds a counter bumped by every invalidation. A
// dashboard built from reads that started before a bump is never cached.
func dashboardGenerationKey(userID uint) string {
	return fmt.Sprintf("dashboard:generation:%d", userID)
}

// GetDashboard returns the newest correction of the user and history stats.
// A user without corrections gets a nil Latest, not an error.
func (s *dashboardService) GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, bool, error) {
	cacheKey := dashboardCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.DashboardCacheLookups().WithLabelValues("hit").Inc()
				s.logger.Debug().Uint("user_id", userID).Msg("dashboard cache hit")
				return response, true, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.DashboardCacheLookups().WithLabelValues("miss").Inc()
	}

	generation, cacheable := s.generation(ctx, userID)

	latest, err := s.corrections.LatestByUser(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, false, err
	}

	stats, err := s.corrections.StatsByUser(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, false, err
	}

	response := dto.DashboardResponse{
		Stats: dto.HistoryStats{
			Count:        stats.Count,
			AverageScore: stats.AverageScore,
		},
	}
	if latest != nil {
		view := dto.NewCorrectionResponse(*latest, true)
		response.Latest = &view
	}

	if cacheable {
		s.store(ctx, userID, generation, response)
	}

	return response, false, nil
}

// generation reports the user's invalidation counter and whether a view
// built from the following reads may be cached.
func (s *dashboardService) generation(ctx context.Context, userID uint) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, err := s.cache.Get(ctx, dashboardGenerationKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Msg("failed to read dashboard generation")
		return "", false
	}
	return value, true
}

// store caches the response unless the user's dashboard was invalidated
// after generation was read.
func (s *dashboardService) store(ctx context.Context, userID uint, generation string, response dto.DashboardResponse) {
	payload, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode dashboard cache")
		return
	}

	generationKey := dashboardGenerationKey(userID)
	err = s.cache.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			s.logger.Debug().Uint("user_id", userID).Msg("dashboard invalidated during read; not caching")
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, dashboardCacheKey(userID), payload, s.cacheTTL)
			return nil
		})
		return err
	}, generationKey)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		s.logger.Debug().Uint("user_id", userID).Msg("dashboard invalidated during write; not caching")
	case err != nil:
		s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
	}
}

func (s *dashboardService) ListHistory(ctx context.Context, userID uint, limit int) ([]dto.CorrectionSummary, error) {
	if limit <= 0 {
		limit = repository.DefaultCorrectionListLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	corrections, err := s.corrections.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.CorrectionSummary, 0, len(corrections))
	for _, correction := range corrections {
		summaries = append(summaries, dto.NewCorrectionSummary(correction))
	}
	return summaries, nil
}

// Invalidate drops the cached dashboard so the next read sees new corrections.
func (s *dashboardService) Invalidate(ctx context.Context, userID uint) error {
	if s.cache == nil {
		return nil
	}
	_, err := s.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, dashboardGenerationKey(userID))
		pipe.Del(ctx, dashboardCacheKey(userID))
		return nil
	})
	return err
}
