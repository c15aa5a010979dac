package service

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dom/orianna-bot/internal/domain"
	"github.com/dom/orianna-bot/internal/repository"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
)

// SchedulerConfig tunes the independent refresh loops
type SchedulerConfig struct {
	MasteryInterval  time.Duration
	MasteryBatchSize int
	RankedInterval   time.Duration
	RankedBatchSize  int
	AccountInterval  time.Duration
	AccountBatchSize int
	WorkerCount      int
	RefreshTimeout   time.Duration
}

// Scheduler drives the fetch+reconcile pipeline: one ticker loop per
// refresh kind, each picking a batch of the stalest users and handing them
// to a bounded worker pool. Per-user runs are serialized: overlapping
// triggers for the same user coalesce instead of interleaving the
// delete-and-reinsert sequences on stats and ranks.
type Scheduler struct {
	users  repository.UserRepository
	update *UpdateService
	cfg    SchedulerConfig

	pool  *ants.Pool
	locks userLocks

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewScheduler(users repository.UserRepository, update *UpdateService, cfg SchedulerConfig) (*Scheduler, error) {
	pool, err := ants.NewPool(cfg.WorkerCount)
	if err != nil {
		return nil, errors.Wrap(err, "create refresh worker pool")
	}
	return &Scheduler{
		users:  users,
		update: update,
		cfg:    cfg,
		pool:   pool,
		locks:  userLocks{held: map[uuid.UUID]struct{}{}},
		stop:   make(chan struct{}),
	}, nil
}

// Start launches the refresh loops. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.loop(ctx, RefreshMastery, s.cfg.MasteryInterval, s.cfg.MasteryBatchSize)
	s.loop(ctx, RefreshRanked, s.cfg.RankedInterval, s.cfg.RankedBatchSize)
	s.loop(ctx, RefreshAccounts, s.cfg.AccountInterval, s.cfg.AccountBatchSize)
	log.Info().
		Dur("mastery", s.cfg.MasteryInterval).
		Dur("ranked", s.cfg.RankedInterval).
		Dur("accounts", s.cfg.AccountInterval).
		Int("workers", s.cfg.WorkerCount).
		Msg("refresh scheduler started")
}

// Stop halts the loops and waits for in-flight refreshes to finish
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	s.pool.Release()
}

// TriggerRefresh runs a full refresh for one user outside the scheduled
// loops (e.g. right after an account link). It reports false when a
// refresh for that user is already in flight.
func (s *Scheduler) TriggerRefresh(ctx context.Context, user *domain.User) bool {
	return s.submit(ctx, user, RefreshFull)
}

func (s *Scheduler) loop(ctx context.Context, kind RefreshKind, interval time.Duration, batchSize int) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.runBatch(ctx, kind, batchSize)
			}
		}
	}()
}

func (s *Scheduler) runBatch(ctx context.Context, kind RefreshKind, batchSize int) {
	users, err := s.users.ListStalest(ctx, batchSize)
	if err != nil {
		log.Error().Err(err).Str("kind", string(kind)).Msg("could not load refresh batch")
		return
	}
	for _, user := range users {
		s.submit(ctx, user, kind)
	}
}

// submit hands one user refresh to the pool, skipping users that already
// have a run in flight
func (s *Scheduler) submit(ctx context.Context, user *domain.User, kind RefreshKind) bool {
	if !s.locks.tryAcquire(user.ID) {
		log.Debug().
			Str("user", user.Snowflake).
			Str("kind", string(kind)).
			Msg("refresh already in flight, skipping")
		return false
	}

	s.wg.Add(1)
	err := s.pool.Submit(func() {
		defer s.wg.Done()
		defer s.locks.release(user.ID)
		// The run outlives the trigger's context: an HTTP request context
		// is canceled as soon as the handler returns, and a half-canceled
		// refresh would leave the delete-and-reinsert sequences partially
		// applied. Only the per-run timeout bounds it.
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RefreshTimeout)
		defer cancel()
		s.update.Refresh(runCtx, user, kind)
	})
	if err != nil {
		s.wg.Done()
		s.locks.release(user.ID)
		log.Error().Err(err).Str("user", user.Snowflake).Msg("could not submit refresh")
		return false
	}
	return true
}

// userLocks is a keyed try-lock guarding the single-writer-per-user
// invariant the delete-and-reinsert persistence policy depends on
type userLocks struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func (l *userLocks) tryAcquire(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[id]; taken {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

func (l *userLocks) release(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}
