package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/essay-auditor-api/internal/models"
)

// DefaultCorrectionListLimit is used when a caller passes a non-positive limit.
const DefaultCorrectionListLimit = 10

// CorrectionStats summarises a user's audit history.
type CorrectionStats struct {
	Count        int64
	AverageScore float64
}

// CorrectionRepository persists audit results. Records are append-only.
type CorrectionRepository interface {
	Create(ctx context.Context, correction *models.Correction) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Correction, error)
	LatestByUser(ctx context.Context, userID uint) (*models.Correction, error)
	StatsByUser(ctx context.Context, userID uint) (CorrectionStats, error)
}

// NewCorrectionRepository constructs a correction repository.
func NewCorrectionRepository(db *gorm.DB) CorrectionRepository {
	return &correctionRepository{db: db}
}

type correctionRepository struct {
	db *gorm.DB
}

func (r *correctionRepository) Create(ctx context.Context, correction *models.Correction) error {
	return r.db.WithContext(ctx).Omit("User").Create(correction).Error
}

func (r *correctionRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Correction, error) {
	if limit <= 0 {
		limit = DefaultCorrectionListLimit
	}

	var corrections []models.Correction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&corrections).Error
	if err != nil {
		return nil, err
	}
	return corrections, nil
}

// LatestByUser returns nil without error when the user has no corrections.
func (r *correctionRepository) LatestByUser(ctx context.Context, userID uint) (*models.Correction, error) {
	var correction models.Correction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&correction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &correction, nil
}

func (r *correctionRepository) StatsByUser(ctx context.Context, userID uint) (CorrectionStats, error) {
	var row struct {
		Count   int64
		Average *float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Correction{}).
		Select("COUNT(*) AS count, AVG(total_score) AS average").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return CorrectionStats{}, err
	}

	stats := CorrectionStats{Count: row.Count}
	if row.Average != nil {
		stats.AverageScore = *row.Average
	}
	return stats, nil
}
