package service

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dom/orianna-bot/internal/discord"
	"github.com/dom/orianna-bot/internal/domain"
	"github.com/dom/orianna-bot/internal/errtrack"
	"github.com/dom/orianna-bot/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Audit log reasons attached to role mutations
const (
	reasonMeetsRequirements       = "User meets requirements for role."
	reasonDoesNotMeetRequirements = "User does not meet requirements for role."
)

// RoleSyncService recomputes and applies role membership from persisted
// state. It never fetches game data.
type RoleSyncService struct {
	servers   repository.ServerRepository
	gateway   discord.Gateway
	announcer *Announcer
	sink      errtrack.Sink
}

func NewRoleSyncService(servers repository.ServerRepository, gateway discord.Gateway, announcer *Announcer, sink errtrack.Sink) *RoleSyncService {
	return &RoleSyncService{
		servers:   servers,
		gateway:   gateway,
		announcer: announcer,
		sink:      sink,
	}
}

// UpdateUser reconciles the user's roles on every guild the bot shares
// with them. Guild reconciliations run concurrently; the first failure is
// propagated to the caller (the per-user containment above this layer).
func (s *RoleSyncService) UpdateUser(ctx context.Context, snapshot *domain.UserSnapshot) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, guildID := range s.gateway.GuildIDs() {
		guildID := guildID
		g.Go(func() error {
			return s.UpdateUserOnGuild(gctx, snapshot, guildID)
		})
	}
	return g.Wait()
}

// UpdateUserOnGuild diffs the user's desired role set against the roles
// they actually hold and issues the minimal add/remove operations. A guild
// without a Server row, or a guild the user is not a member of, is a
// silent no-op.
func (s *RoleSyncService) UpdateUserOnGuild(ctx context.Context, snapshot *domain.UserSnapshot, guildID string) error {
	server, err := s.servers.GetBySnowflake(ctx, guildID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return errors.Wrapf(err, "load server %s", guildID)
	}

	member, err := s.gateway.IsMember(guildID, snapshot.User.Snowflake)
	if err != nil {
		return err
	}
	if !member {
		return nil
	}

	memberRoles, err := s.gateway.MemberRoleIDs(guildID, snapshot.User.Snowflake)
	if err != nil {
		return err
	}
	userHas := make(map[string]struct{}, len(memberRoles))
	for _, id := range memberRoles {
		userHas[id] = struct{}{}
	}

	existingRoles, err := s.gateway.GuildRoleIDs(guildID)
	if err != nil {
		return err
	}

	for _, role := range server.Roles {
		// Role definitions pointing at roles the platform no longer
		// knows about are skipped, not errors.
		if _, ok := existingRoles[role.Snowflake]; !ok {
			continue
		}

		_, has := userHas[role.Snowflake]
		shouldHave := role.Test(snapshot)

		switch {
		case has && !shouldHave:
			s.applyRoleChange(snapshot, server, role, guildID, false)
		case !has && shouldHave:
			if s.applyRoleChange(snapshot, server, role, guildID, true) {
				s.announcer.AnnouncePromotion(ctx, snapshot, role, server)
			}
		}
	}
	return nil
}

// applyRoleChange issues a single add or remove. Failures (usually missing
// permissions) are reported but do not abort the sibling operations.
func (s *RoleSyncService) applyRoleChange(snapshot *domain.UserSnapshot, server *domain.Server, role *domain.Role, guildID string, add bool) bool {
	var err error
	if add {
		err = s.gateway.AddRole(guildID, snapshot.User.Snowflake, role.Snowflake, reasonMeetsRequirements)
	} else {
		err = s.gateway.RemoveRole(guildID, snapshot.User.Snowflake, role.Snowflake, reasonDoesNotMeetRequirements)
	}
	if err != nil {
		log.Warn().
			Err(err).
			Str("user", snapshot.User.Snowflake).
			Str("guild", server.Name).
			Str("role", role.Name).
			Bool("add", add).
			Msg("role mutation failed")
		s.sink.Capture(err, map[string]string{
			"user":  snapshot.User.Snowflake,
			"guild": guildID,
			"role":  role.Snowflake,
		})
		return false
	}
	return true
}
