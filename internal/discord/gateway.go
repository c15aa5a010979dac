package discord

import (
	"bytes"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
)

// Gateway is the chat-platform collaborator consumed by the pipeline. It
// narrows discordgo to the primitives role reconciliation and announcements
// need, so services can be tested against a fake.
type Gateway interface {
	// GuildIDs lists every guild the bot is currently connected to.
	GuildIDs() []string
	IsMember(guildID, userID string) (bool, error)
	MemberRoleIDs(guildID, userID string) ([]string, error)
	// GuildRoleIDs returns the role ids the platform still recognizes,
	// used to skip stale role definitions.
	GuildRoleIDs(guildID string) (map[string]struct{}, error)
	AddRole(guildID, userID, roleID, reason string) error
	RemoveRole(guildID, userID, roleID, reason string) error
	SendDM(userID, content string) error
	// TextChannelExists reports whether the channel exists in the guild
	// and can receive messages.
	TextChannelExists(guildID, channelID string) (bool, error)
	SendEmbedWithImage(channelID string, embed *discordgo.MessageEmbed, filename string, image []byte) error
}

type gateway struct {
	session *discordgo.Session
}

func NewGateway(session *discordgo.Session) Gateway {
	return &gateway{session: session}
}

func (g *gateway) GuildIDs() []string {
	guilds := g.session.State.Guilds
	ids := make([]string, 0, len(guilds))
	for _, guild := range guilds {
		ids = append(ids, guild.ID)
	}
	return ids
}

func (g *gateway) IsMember(guildID, userID string) (bool, error) {
	_, err := g.session.GuildMember(guildID, userID)
	if err != nil {
		if isDiscordCode(err, discordgo.ErrCodeUnknownMember) {
			return false, nil
		}
		return false, errors.Wrapf(err, "fetch member %s in guild %s", userID, guildID)
	}
	return true, nil
}

func (g *gateway) MemberRoleIDs(guildID, userID string) ([]string, error) {
	member, err := g.session.GuildMember(guildID, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch member %s in guild %s", userID, guildID)
	}
	return member.Roles, nil
}

func (g *gateway) GuildRoleIDs(guildID string) (map[string]struct{}, error) {
	roles, err := g.session.GuildRoles(guildID)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch roles of guild %s", guildID)
	}
	ids := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		ids[role.ID] = struct{}{}
	}
	return ids, nil
}

func (g *gateway) AddRole(guildID, userID, roleID, reason string) error {
	err := g.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithAuditLogReason(reason))
	return errors.Wrapf(err, "add role %s to %s in guild %s", roleID, userID, guildID)
}

func (g *gateway) RemoveRole(guildID, userID, roleID, reason string) error {
	err := g.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithAuditLogReason(reason))
	return errors.Wrapf(err, "remove role %s from %s in guild %s", roleID, userID, guildID)
}

func (g *gateway) SendDM(userID, content string) error {
	channel, err := g.session.UserChannelCreate(userID)
	if err != nil {
		return errors.Wrapf(err, "open DM channel with %s", userID)
	}
	_, err = g.session.ChannelMessageSend(channel.ID, content)
	return errors.Wrapf(err, "send DM to %s", userID)
}

func (g *gateway) TextChannelExists(guildID, channelID string) (bool, error) {
	channel, err := g.session.Channel(channelID)
	if err != nil {
		if isDiscordCode(err, discordgo.ErrCodeUnknownChannel) {
			return false, nil
		}
		return false, errors.Wrapf(err, "fetch channel %s", channelID)
	}
	if channel.GuildID != guildID {
		return false, nil
	}
	switch channel.Type {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews:
		return true, nil
	}
	return false, nil
}

func (g *gateway) SendEmbedWithImage(channelID string, embed *discordgo.MessageEmbed, filename string, image []byte) error {
	send := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if len(image) > 0 {
		send.Files = []*discordgo.File{{
			Name:        filename,
			ContentType: "image/gif",
			Reader:      bytes.NewReader(image),
		}}
	}
	_, err := g.session.ChannelMessageSendComplex(channelID, send)
	return errors.Wrapf(err, "send embed to channel %s", channelID)
}

func isDiscordCode(err error, code int) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == code
	}
	return false
}
