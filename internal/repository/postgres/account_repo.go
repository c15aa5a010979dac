package postgres

import (
	"context"

	"github.com/dom/orianna-bot/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.LeagueAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.LeagueAccount, error) {
	var accounts []*domain.LeagueAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account *domain.LeagueAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.LeagueAccount{}, "id = ?", id).Error
}
