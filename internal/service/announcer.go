package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dom/orianna-bot/internal/discord"
	"github.com/dom/orianna-bot/internal/domain"
	"github.com/dom/orianna-bot/internal/render"
	"github.com/dom/orianna-bot/internal/staticdata"
	"github.com/rs/zerolog/log"
)

const promotionImageName = "promotion.gif"

// Announcer posts a promotion graphic when a user is granted an announced
// role. Every failure in this path is swallowed: an announcement can never
// roll back the role grant that triggered it.
type Announcer struct {
	static   *staticdata.Provider
	renderer render.Renderer
	gateway  discord.Gateway
}

func NewAnnouncer(static *staticdata.Provider, renderer render.Renderer, gateway discord.Gateway) *Announcer {
	return &Announcer{
		static:   static,
		renderer: renderer,
		gateway:  gateway,
	}
}

// AnnouncePromotion posts the promotion embed for a freshly granted role.
// No-op unless the role is marked for announcement and the owning server
// has a configured announcement channel that still exists.
func (a *Announcer) AnnouncePromotion(ctx context.Context, snapshot *domain.UserSnapshot, role *domain.Role, server *domain.Server) {
	if !role.Announce || server.AnnouncementChannel == "" {
		return
	}

	ok, err := a.gateway.TextChannelExists(server.Snowflake, server.AnnouncementChannel)
	if err != nil {
		log.Warn().Err(err).Str("guild", server.Name).Msg("could not verify announcement channel")
		return
	}
	if !ok {
		return
	}

	iconURL, splashURL := a.static.PromotionArt(ctx, role)

	image, err := a.renderer.RenderPromotion(ctx, render.PromotionRequest{
		Username:      snapshot.User.Username,
		RoleName:      role.Name,
		IconURL:       iconURL,
		BackgroundURL: splashURL,
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("user", snapshot.User.Snowflake).
			Str("role", role.Name).
			Msg("promotion render failed, falling back to plain embed")
		image = nil
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    fmt.Sprintf("%s just got promoted to %s!", snapshot.User.Username, role.Name),
			IconURL: iconURL,
		},
		Color:     0x49bd1a,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if image != nil {
		embed.Image = &discordgo.MessageEmbedImage{
			URL: "attachment://" + promotionImageName,
		}
	}

	if err := a.gateway.SendEmbedWithImage(server.AnnouncementChannel, embed, promotionImageName, image); err != nil {
		log.Warn().
			Err(err).
			Str("guild", server.Name).
			Str("role", role.Name).
			Msg("could not post promotion announcement")
	}
}
