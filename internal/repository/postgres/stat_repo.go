package postgres

import (
	"context"

	"github.com/dom/orianna-bot/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) *statRepository {
	return &statRepository{db: db}
}

func (r *statRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.UserChampionStat, error) {
	var stats []*domain.UserChampionStat
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("champion_id ASC").
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *statRepository) Create(ctx context.Context, stat *domain.UserChampionStat) error {
	return r.db.WithContext(ctx).Create(stat).Error
}

func (r *statRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.UserChampionStat{}, "id = ?", id).Error
}

func (r *statRepository) UpdateGamesPlayed(ctx context.Context, id uuid.UUID, gamesPlayed int) error {
	return r.db.WithContext(ctx).
		Model(&domain.UserChampionStat{}).
		Where("id = ?", id).
		Update("games_played", gamesPlayed).Error
}
