package postgres

import (
	"context"

	"github.com/dom/orianna-bot/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type rankRepository struct {
	db *gorm.DB
}

func NewRankRepository(db *gorm.DB) *rankRepository {
	return &rankRepository{db: db}
}

func (r *rankRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.UserRank, error) {
	var ranks []*domain.UserRank
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("queue ASC").
		Find(&ranks).Error
	if err != nil {
		return nil, err
	}
	return ranks, nil
}

func (r *rankRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.UserRank{}, "user_id = ?", userID).Error
}

func (r *rankRepository) CreateMany(ctx context.Context, ranks []*domain.UserRank) error {
	if len(ranks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(ranks).Error
}
