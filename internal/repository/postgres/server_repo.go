package postgres

import (
	"context"

	"github.com/dom/orianna-bot/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type serverRepository struct {
	db *gorm.DB
}

func NewServerRepository(db *gorm.DB) *serverRepository {
	return &serverRepository{db: db}
}

func (r *serverRepository) Create(ctx context.Context, server *domain.Server) error {
	return r.db.WithContext(ctx).Create(server).Error
}

func (r *serverRepository) GetBySnowflake(ctx context.Context, snowflake string) (*domain.Server, error) {
	var server domain.Server
	err := r.db.WithContext(ctx).
		Preload("Roles.Conditions").
		First(&server, "snowflake = ?", snowflake).Error
	if err != nil {
		return nil, err
	}
	return &server, nil
}

func (r *serverRepository) GetAll(ctx context.Context) ([]*domain.Server, error) {
	var servers []*domain.Server
	err := r.db.WithContext(ctx).
		Preload("Roles.Conditions").
		Order("name ASC").
		Find(&servers).Error
	if err != nil {
		return nil, err
	}
	return servers, nil
}

func (r *serverRepository) Update(ctx context.Context, server *domain.Server) error {
	return r.db.WithContext(ctx).Save(server).Error
}

func (r *serverRepository) CreateRole(ctx context.Context, role *domain.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *serverRepository) GetRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).
		Preload("Conditions").
		First(&role, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *serverRepository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.Condition{}, "role_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Role{}, "id = ?", id).Error
	})
}
