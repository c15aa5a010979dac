package testutil

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// RoleChange records one role mutation issued through the fake gateway
type RoleChange struct {
	GuildID string
	UserID  string
	RoleID  string
	Reason  string
}

// SentEmbed records one embed posted through the fake gateway
type SentEmbed struct {
	ChannelID string
	Embed     *discordgo.MessageEmbed
	Filename  string
	Image     []byte
}

// FakeGateway is an in-memory chat platform. Configure guild state up
// front, then assert on the recorded mutations.
type FakeGateway struct {
	mu sync.Mutex

	Guilds      []string
	Members     map[string]map[string]bool     // guild -> user -> is member
	MemberRoles map[string][]string            // guild|user -> role ids held
	GuildRoles  map[string]map[string]struct{} // guild -> existing role ids
	Channels    map[string]string              // channel -> owning guild

	IsMemberErr error
	AddErr      error
	RemoveErr   error
	DMErr       error

	Added   []RoleChange
	Removed []RoleChange
	DMs     map[string][]string // user -> messages
	Embeds  []SentEmbed
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		Members:     map[string]map[string]bool{},
		MemberRoles: map[string][]string{},
		GuildRoles:  map[string]map[string]struct{}{},
		Channels:    map[string]string{},
		DMs:         map[string][]string{},
	}
}

// AddGuild registers a guild with its known role ids and members
func (g *FakeGateway) AddGuild(guildID string, roleIDs []string, memberIDs ...string) {
	g.Guilds = append(g.Guilds, guildID)
	g.GuildRoles[guildID] = map[string]struct{}{}
	for _, id := range roleIDs {
		g.GuildRoles[guildID][id] = struct{}{}
	}
	g.Members[guildID] = map[string]bool{}
	for _, id := range memberIDs {
		g.Members[guildID][id] = true
	}
}

// SetMemberRoles records the roles a member currently holds in a guild
func (g *FakeGateway) SetMemberRoles(guildID, userID string, roleIDs ...string) {
	g.MemberRoles[guildID+"|"+userID] = roleIDs
}

func (g *FakeGateway) GuildIDs() []string {
	return g.Guilds
}

func (g *FakeGateway) IsMember(guildID, userID string) (bool, error) {
	if g.IsMemberErr != nil {
		return false, g.IsMemberErr
	}
	return g.Members[guildID][userID], nil
}

func (g *FakeGateway) MemberRoleIDs(guildID, userID string) ([]string, error) {
	return g.MemberRoles[guildID+"|"+userID], nil
}

func (g *FakeGateway) GuildRoleIDs(guildID string) (map[string]struct{}, error) {
	return g.GuildRoles[guildID], nil
}

func (g *FakeGateway) AddRole(guildID, userID, roleID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.AddErr != nil {
		return g.AddErr
	}
	g.Added = append(g.Added, RoleChange{GuildID: guildID, UserID: userID, RoleID: roleID, Reason: reason})
	return nil
}

func (g *FakeGateway) RemoveRole(guildID, userID, roleID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.RemoveErr != nil {
		return g.RemoveErr
	}
	g.Removed = append(g.Removed, RoleChange{GuildID: guildID, UserID: userID, RoleID: roleID, Reason: reason})
	return nil
}

func (g *FakeGateway) SendDM(userID, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.DMErr != nil {
		return g.DMErr
	}
	g.DMs[userID] = append(g.DMs[userID], content)
	return nil
}

func (g *FakeGateway) TextChannelExists(guildID, channelID string) (bool, error) {
	return g.Channels[channelID] == guildID, nil
}

func (g *FakeGateway) SendEmbedWithImage(channelID string, embed *discordgo.MessageEmbed, filename string, image []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Embeds = append(g.Embeds, SentEmbed{ChannelID: channelID, Embed: embed, Filename: filename, Image: image})
	return nil
}
