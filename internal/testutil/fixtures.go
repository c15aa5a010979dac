package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dom/orianna-bot/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	snowflake       string
	username        string
	treatAsUnranked bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		snowflake: fmt.Sprintf("snowflake_%s", suffix),
		username:  fmt.Sprintf("testuser_%s", suffix),
	}
}

func (b *UserBuilder) WithSnowflake(snowflake string) *UserBuilder {
	b.snowflake = snowflake
	return b
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) TreatAsUnranked() *UserBuilder {
	b.treatAsUnranked = true
	return b
}

// Build creates the user in the fake repository
func (b *UserBuilder) Build(t *testing.T, fakes *Fakes) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:              uuid.New(),
		Snowflake:       b.snowflake,
		Username:        b.username,
		TreatAsUnranked: b.treatAsUnranked,
	}
	if err := fakes.User.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// LinkAccount attaches a game account to a user in the fake repository
func LinkAccount(t *testing.T, fakes *Fakes, user *domain.User, region, username, summonerID, accountID string) *domain.LeagueAccount {
	t.Helper()

	account := &domain.LeagueAccount{
		ID:         uuid.New(),
		UserID:     user.ID,
		Region:     region,
		Username:   username,
		SummonerID: summonerID,
		AccountID:  accountID,
	}
	if err := fakes.Account.Create(context.Background(), account); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return account
}

// MustOptions encodes condition options, failing the test on error
func MustOptions(t *testing.T, opts domain.ConditionOptions) datatypes.JSON {
	t.Helper()

	raw, err := domain.EncodeConditionOptions(opts)
	if err != nil {
		t.Fatalf("failed to encode condition options: %v", err)
	}
	return raw
}

// NewServer registers a configured server with roles in the fake repository
func NewServer(t *testing.T, fakes *Fakes, snowflake, announcementChannel string, roles ...*domain.Role) *domain.Server {
	t.Helper()

	server := &domain.Server{
		ID:                  uuid.New(),
		Snowflake:           snowflake,
		Name:                "guild " + snowflake,
		AnnouncementChannel: announcementChannel,
		Roles:               roles,
	}
	for _, role := range roles {
		role.ServerID = server.ID
		if role.ID == uuid.Nil {
			role.ID = uuid.New()
		}
	}
	if err := fakes.Server.Create(context.Background(), server); err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server
}
