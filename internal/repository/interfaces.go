package repository

import (
	"context"
	"time"

	"github.com/dom/orianna-bot/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetBySnowflake(ctx context.Context, snowflake string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// ListStalest returns users ordered by least recently refreshed,
	// used by the scheduler to pick refresh batches.
	ListStalest(ctx context.Context, limit int) ([]*domain.User, error)
	TouchRefreshed(ctx context.Context, id uuid.UUID, at time.Time) error
}

type AccountRepository interface {
	Create(ctx context.Context, account *domain.LeagueAccount) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.LeagueAccount, error)
	Update(ctx context.Context, account *domain.LeagueAccount) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type StatRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.UserChampionStat, error)
	Create(ctx context.Context, stat *domain.UserChampionStat) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateGamesPlayed(ctx context.Context, id uuid.UUID, gamesPlayed int) error
}

type RankRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.UserRank, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	CreateMany(ctx context.Context, ranks []*domain.UserRank) error
}

type DeltaRepository interface {
	CreateMany(ctx context.Context, deltas []*domain.UserMasteryDelta) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.UserMasteryDelta, error)
}

type ServerRepository interface {
	Create(ctx context.Context, server *domain.Server) error
	// GetBySnowflake loads the server with its roles and their conditions.
	GetBySnowflake(ctx context.Context, snowflake string) (*domain.Server, error)
	GetAll(ctx context.Context) ([]*domain.Server, error)
	Update(ctx context.Context, server *domain.Server) error
	CreateRole(ctx context.Context, role *domain.Role) error
	GetRoleByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error
}

type ChampionRepository interface {
	UpsertMany(ctx context.Context, champions []*domain.Champion) error
	GetByKey(ctx context.Context, key int) (*domain.Champion, error)
	GetAll(ctx context.Context) ([]*domain.Champion, error)
}

type Repositories struct {
	User     UserRepository
	Account  AccountRepository
	Stat     StatRepository
	Rank     RankRepository
	Delta    DeltaRepository
	Server   ServerRepository
	Champion ChampionRepository
}
