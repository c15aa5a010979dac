package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dom/orianna-bot/internal/api"
	"github.com/dom/orianna-bot/internal/cache"
	"github.com/dom/orianna-bot/internal/config"
	"github.com/dom/orianna-bot/internal/discord"
	"github.com/dom/orianna-bot/internal/errtrack"
	"github.com/dom/orianna-bot/internal/render"
	"github.com/dom/orianna-bot/internal/repository/postgres"
	"github.com/dom/orianna-bot/internal/riot"
	"github.com/dom/orianna-bot/internal/service"
	"github.com/dom/orianna-bot/internal/staticdata"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setupLogging(cfg)

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Error tracking
	sink := errtrack.Sink(errtrack.Noop{})
	if cfg.SentryDSN != "" {
		sink, err = errtrack.NewSentry(cfg.SentryDSN, cfg.Environment)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize error tracking")
		}
	}
	defer sink.Flush()

	// Discord session
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	session.StateEnabled = true
	if err := session.Open(); err != nil {
		log.Fatal().Err(err).Msg("failed to open discord connection")
	}
	defer session.Close()
	gateway := discord.NewGateway(session)

	// Static data, cache-backed
	cacheManager := cache.NewManager(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheEnabled)
	static := staticdata.NewProvider(repos.Champion, cacheManager, cfg.DataDragonVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if count, version, err := static.Sync(ctx); err != nil {
		log.Warn().Err(err).Msg("initial champion sync failed, continuing with persisted data")
	} else {
		log.Info().Int("champions", count).Str("version", version).Msg("champion data synced")
	}

	// Promotion renderer
	var renderer render.Renderer = render.Disabled{}
	if cfg.RendererURL != "" {
		renderer = render.NewClient(cfg.RendererURL)
	}

	riotClient := riot.NewClient(cfg.RiotAPIKey)

	// Initialize services
	services, err := service.NewServices(repos, cfg, riotClient, gateway, renderer, static, sink)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}

	services.Scheduler.Start(ctx)

	// Ops API
	router := api.NewRouter(services, repos, cfg)
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.APIPort).Msg("ops API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ops API failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	// Stop before canceling the root context so in-flight refreshes finish
	// instead of aborting into the error sink.
	services.Scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops API forced to shut down")
	}

	log.Info().Msg("stopped")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
