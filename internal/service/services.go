package service

import (
	"github.com/dom/orianna-bot/internal/config"
	"github.com/dom/orianna-bot/internal/discord"
	"github.com/dom/orianna-bot/internal/errtrack"
	"github.com/dom/orianna-bot/internal/render"
	"github.com/dom/orianna-bot/internal/repository"
	"github.com/dom/orianna-bot/internal/riot"
	"github.com/dom/orianna-bot/internal/staticdata"
)

// Services holds all service instances
type Services struct {
	Update    *UpdateService
	RoleSync  *RoleSyncService
	Announcer *Announcer
	Scheduler *Scheduler
}

// NewServices creates and wires all services
func NewServices(
	repos *repository.Repositories,
	cfg *config.Config,
	riotClient riot.Client,
	gateway discord.Gateway,
	renderer render.Renderer,
	static *staticdata.Provider,
	sink errtrack.Sink,
) (*Services, error) {
	announcer := NewAnnouncer(static, renderer, gateway)
	roleSync := NewRoleSyncService(repos.Server, gateway, announcer, sink)
	update := NewUpdateService(repos, riotClient, gateway, roleSync, sink)

	scheduler, err := NewScheduler(repos.User, update, SchedulerConfig{
		MasteryInterval:  cfg.MasteryInterval,
		MasteryBatchSize: cfg.MasteryBatchSize,
		RankedInterval:   cfg.RankedInterval,
		RankedBatchSize:  cfg.RankedBatchSize,
		AccountInterval:  cfg.AccountInterval,
		AccountBatchSize: cfg.AccountBatchSize,
		WorkerCount:      cfg.WorkerCount,
		RefreshTimeout:   cfg.RefreshTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &Services{
		Update:    update,
		RoleSync:  roleSync,
		Announcer: announcer,
		Scheduler: scheduler,
	}, nil
}
