package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dom/orianna-bot/internal/domain"
	"github.com/dom/orianna-bot/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fakes bundles in-memory repository implementations. Write counters let
// tests assert on persistence churn, not just final state.
type Fakes struct {
	User     *FakeUserRepo
	Account  *FakeAccountRepo
	Stat     *FakeStatRepo
	Rank     *FakeRankRepo
	Delta    *FakeDeltaRepo
	Server   *FakeServerRepo
	Champion *FakeChampionRepo
}

func NewFakes() *Fakes {
	return &Fakes{
		User:     &FakeUserRepo{users: map[uuid.UUID]*domain.User{}},
		Account:  &FakeAccountRepo{accounts: map[uuid.UUID]*domain.LeagueAccount{}},
		Stat:     &FakeStatRepo{stats: map[uuid.UUID]*domain.UserChampionStat{}},
		Rank:     &FakeRankRepo{},
		Delta:    &FakeDeltaRepo{},
		Server:   &FakeServerRepo{servers: map[string]*domain.Server{}},
		Champion: &FakeChampionRepo{champions: map[int]*domain.Champion{}},
	}
}

// Repositories adapts the fakes to the wiring struct services expect
func (f *Fakes) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:     f.User,
		Account:  f.Account,
		Stat:     f.Stat,
		Rank:     f.Rank,
		Delta:    f.Delta,
		Server:   f.Server,
		Champion: f.Champion,
	}
}

type FakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	TouchCalls int
}

func (r *FakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *FakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *FakeUserRepo) GetBySnowflake(_ context.Context, snowflake string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Snowflake == snowflake {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *FakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *FakeUserRepo) ListStalest(_ context.Context, limit int) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].LastRefreshAt.Before(users[j].LastRefreshAt)
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *FakeUserRepo) TouchRefreshed(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TouchCalls++
	if u, ok := r.users[id]; ok {
		u.LastRefreshAt = at
	}
	return nil
}

type FakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.LeagueAccount

	Deletes int
	Updates int
}

func (r *FakeAccountRepo) Create(_ context.Context, account *domain.LeagueAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	r.accounts[account.ID] = account
	return nil
}

func (r *FakeAccountRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]*domain.LeagueAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.LeagueAccount
	for _, a := range r.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *FakeAccountRepo) Update(_ context.Context, account *domain.LeagueAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Updates++
	r.accounts[account.ID] = account
	return nil
}

func (r *FakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deletes++
	delete(r.accounts, id)
	return nil
}

type FakeStatRepo struct {
	mu    sync.Mutex
	stats map[uuid.UUID]*domain.UserChampionStat

	Creates      int
	Deletes      int
	GamesUpdates int
}

func (r *FakeStatRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]*domain.UserChampionStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.UserChampionStat
	for _, s := range r.stats {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChampionID < out[j].ChampionID })
	return out, nil
}

func (r *FakeStatRepo) Create(_ context.Context, stat *domain.UserChampionStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Creates++
	if stat.ID == uuid.Nil {
		stat.ID = uuid.New()
	}
	r.stats[stat.ID] = stat
	return nil
}

func (r *FakeStatRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deletes++
	delete(r.stats, id)
	return nil
}

func (r *FakeStatRepo) UpdateGamesPlayed(_ context.Context, id uuid.UUID, gamesPlayed int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GamesUpdates++
	if s, ok := r.stats[id]; ok {
		s.GamesPlayed = gamesPlayed
	}
	return nil
}

type FakeRankRepo struct {
	mu    sync.Mutex
	ranks []*domain.UserRank

	DeleteCalls int
	CreateCalls int
}

func (r *FakeRankRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]*domain.UserRank, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.UserRank
	for _, rank := range r.ranks {
		if rank.UserID == userID {
			out = append(out, rank)
		}
	}
	return out, nil
}

func (r *FakeRankRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DeleteCalls++
	kept := r.ranks[:0]
	for _, rank := range r.ranks {
		if rank.UserID != userID {
			kept = append(kept, rank)
		}
	}
	r.ranks = kept
	return nil
}

func (r *FakeRankRepo) CreateMany(_ context.Context, ranks []*domain.UserRank) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CreateCalls++
	for _, rank := range ranks {
		if rank.ID == uuid.Nil {
			rank.ID = uuid.New()
		}
		r.ranks = append(r.ranks, rank)
	}
	return nil
}

type FakeDeltaRepo struct {
	mu     sync.Mutex
	deltas []*domain.UserMasteryDelta
}

func (r *FakeDeltaRepo) CreateMany(_ context.Context, deltas []*domain.UserMasteryDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deltas = append(r.deltas, deltas...)
	return nil
}

func (r *FakeDeltaRepo) GetByUserID(_ context.Context, userID uuid.UUID, limit int) ([]*domain.UserMasteryDelta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.UserMasteryDelta
	for _, d := range r.deltas {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// All returns every recorded delta
func (r *FakeDeltaRepo) All() []*domain.UserMasteryDelta {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.UserMasteryDelta(nil), r.deltas...)
}

type FakeServerRepo struct {
	mu      sync.Mutex
	servers map[string]*domain.Server
}

func (r *FakeServerRepo) Create(_ context.Context, server *domain.Server) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if server.ID == uuid.Nil {
		server.ID = uuid.New()
	}
	r.servers[server.Snowflake] = server
	return nil
}

func (r *FakeServerRepo) GetBySnowflake(_ context.Context, snowflake string) (*domain.Server, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.servers[snowflake]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *FakeServerRepo) GetAll(_ context.Context) ([]*domain.Server, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Server, 0, len(r.servers))
	for _, s := range r.servers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Snowflake < out[j].Snowflake })
	return out, nil
}

func (r *FakeServerRepo) Update(_ context.Context, server *domain.Server) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.servers[server.Snowflake] = server
	return nil
}

func (r *FakeServerRepo) CreateRole(_ context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	for _, c := range role.Conditions {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		c.RoleID = role.ID
	}
	for _, s := range r.servers {
		if s.ID == role.ServerID {
			s.Roles = append(s.Roles, role)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *FakeServerRepo) GetRoleByID(_ context.Context, id uuid.UUID) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.servers {
		for _, role := range s.Roles {
			if role.ID == id {
				return role, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *FakeServerRepo) DeleteRole(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.servers {
		for i, role := range s.Roles {
			if role.ID == id {
				s.Roles = append(s.Roles[:i], s.Roles[i+1:]...)
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

type FakeChampionRepo struct {
	mu        sync.Mutex
	champions map[int]*domain.Champion

	Upserts int
}

func (r *FakeChampionRepo) UpsertMany(_ context.Context, champions []*domain.Champion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Upserts++
	for _, c := range champions {
		r.champions[c.Key] = c
	}
	return nil
}

func (r *FakeChampionRepo) GetByKey(_ context.Context, key int) (*domain.Champion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.champions[key]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *FakeChampionRepo) GetAll(_ context.Context) ([]*domain.Champion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Champion, 0, len(r.champions))
	for _, c := range r.champions {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
