package postgres

import (
	"context"

	"github.com/dom/orianna-bot/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type deltaRepository struct {
	db *gorm.DB
}

func NewDeltaRepository(db *gorm.DB) *deltaRepository {
	return &deltaRepository{db: db}
}

func (r *deltaRepository) CreateMany(ctx context.Context, deltas []*domain.UserMasteryDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(deltas).Error
}

func (r *deltaRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.UserMasteryDelta, error) {
	var deltas []*domain.UserMasteryDelta
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&deltas).Error
	if err != nil {
		return nil, err
	}
	return deltas, nil
}
