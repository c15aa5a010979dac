package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dom/orianna-bot/internal/discord"
	"github.com/dom/orianna-bot/internal/domain"
	"github.com/dom/orianna-bot/internal/errtrack"
	"github.com/dom/orianna-bot/internal/repository"
	"github.com/dom/orianna-bot/internal/riot"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// RefreshKind selects which part of the fetch stage a scheduled run executes
type RefreshKind string

const (
	RefreshAccounts RefreshKind = "accounts"
	RefreshMastery  RefreshKind = "mastery"
	RefreshRanked   RefreshKind = "ranked"
	RefreshFull     RefreshKind = "full"
)

// UpdateService runs the fetch stage: it pulls fresh data from the Riot API
// and reconciles it into persisted state for one user. It never computes
// role assignments itself; that is RoleSyncService's job.
type UpdateService struct {
	users    repository.UserRepository
	accounts repository.AccountRepository
	stats    repository.StatRepository
	ranks    repository.RankRepository
	deltas   repository.DeltaRepository
	riot     riot.Client
	gateway  discord.Gateway
	roleSync *RoleSyncService
	sink     errtrack.Sink
}

func NewUpdateService(repos *repository.Repositories, riotClient riot.Client, gateway discord.Gateway, roleSync *RoleSyncService, sink errtrack.Sink) *UpdateService {
	return &UpdateService{
		users:    repos.User,
		accounts: repos.Account,
		stats:    repos.Stat,
		ranks:    repos.Rank,
		deltas:   repos.Delta,
		riot:     riotClient,
		gateway:  gateway,
		roleSync: roleSync,
		sink:     sink,
	}
}

// Snapshot loads the user aggregate the pipeline stages operate on
func (s *UpdateService) Snapshot(ctx context.Context, user *domain.User) (*domain.UserSnapshot, error) {
	accounts, err := s.accounts.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load accounts")
	}
	stats, err := s.stats.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load stats")
	}
	ranks, err := s.ranks.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load ranks")
	}
	return &domain.UserSnapshot{
		User:     user,
		Accounts: accounts,
		Stats:    stats,
		Ranks:    ranks,
	}, nil
}

// Refresh runs one scheduled refresh of the given kind for a user,
// followed by role reconciliation. Errors are contained here: they are
// logged and reported, never propagated, so one user's failure cannot
// abort another user's run.
func (s *UpdateService) Refresh(ctx context.Context, user *domain.User, kind RefreshKind) {
	if err := s.refresh(ctx, user, kind); err != nil {
		log.Error().
			Err(err).
			Str("user", user.Snowflake).
			Str("kind", string(kind)).
			Msg("refresh failed")
		s.sink.Capture(err, map[string]string{
			"user": user.Snowflake,
			"kind": string(kind),
		})
		return
	}
	if err := s.users.TouchRefreshed(ctx, user.ID, time.Now()); err != nil {
		log.Warn().Err(err).Str("user", user.Snowflake).Msg("could not mark user refreshed")
	}
}

func (s *UpdateService) refresh(ctx context.Context, user *domain.User, kind RefreshKind) error {
	snapshot, err := s.Snapshot(ctx, user)
	if err != nil {
		return err
	}

	switch kind {
	case RefreshAccounts:
		if err := s.FetchAccounts(ctx, snapshot); err != nil {
			return err
		}
	case RefreshMastery:
		if err := s.FetchMasteryScores(ctx, snapshot); err != nil {
			return err
		}
	case RefreshRanked:
		if err := s.FetchRanked(ctx, snapshot); err != nil {
			return err
		}
	case RefreshFull:
		// Accounts and games played must complete first: a detected
		// transfer changes which accounts the later fetches query.
		if err := s.FetchAccounts(ctx, snapshot); err != nil {
			return err
		}
		if err := s.FetchGamesPlayed(ctx, snapshot); err != nil {
			return err
		}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return s.FetchMasteryScores(gctx, snapshot) })
		g.Go(func() error { return s.FetchRanked(gctx, snapshot) })
		if err := g.Wait(); err != nil {
			return err
		}
	default:
		return errors.Newf("unknown refresh kind %q", kind)
	}

	return s.roleSync.UpdateUser(ctx, snapshot)
}

// FetchAccounts verifies each linked account still resolves. A summoner
// that no longer exists is treated as a transfer: the account row is
// removed and the user notified. A changed name is a rename and is
// persisted in place.
func (s *UpdateService) FetchAccounts(ctx context.Context, snapshot *domain.UserSnapshot) error {
	kept := snapshot.Accounts[:0]
	for _, account := range snapshot.Accounts {
		summoner, err := s.riot.SummonerByID(ctx, account.Region, account.SummonerID)
		if errors.Is(err, riot.ErrNotFound) {
			log.Info().
				Str("user", snapshot.User.Snowflake).
				Str("account", account.Username).
				Str("region", account.Region).
				Msg("account no longer resolves, treating as transfer")
			if err := s.accounts.Delete(ctx, account.ID); err != nil {
				return errors.Wrap(err, "delete transferred account")
			}
			s.notifyTransfer(snapshot.User, account)
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "look up summoner %s on %s", account.Username, account.Region)
		}

		if summoner.Name != account.Username {
			account.Username = summoner.Name
			if err := s.accounts.Update(ctx, account); err != nil {
				return errors.Wrap(err, "persist account rename")
			}
		}
		kept = append(kept, account)
	}
	snapshot.Accounts = kept
	return nil
}

// FetchMasteryScores merges champion mastery across all linked accounts:
// score is summed, level is the max. Unchanged stats produce zero writes;
// changed stats are replaced wholesale, carrying games played forward and
// appending delta history rows.
func (s *UpdateService) FetchMasteryScores(ctx context.Context, snapshot *domain.UserSnapshot) error {
	type merged struct {
		level int
		score int
	}
	byChampion := map[int]*merged{}

	for _, account := range snapshot.Accounts {
		masteries, err := s.riot.ChampionMasteries(ctx, account.Region, account.SummonerID)
		if err != nil {
			return errors.Wrapf(err, "fetch mastery for %s on %s", account.Username, account.Region)
		}
		for _, m := range masteries {
			entry, ok := byChampion[m.ChampionID]
			if !ok {
				entry = &merged{}
				byChampion[m.ChampionID] = entry
			}
			entry.score += m.ChampionPoints
			if m.ChampionLevel > entry.level {
				entry.level = m.ChampionLevel
			}
		}
	}

	existing := map[int]*domain.UserChampionStat{}
	for _, st := range snapshot.Stats {
		existing[st.ChampionID] = st
	}

	var fresh []*domain.UserChampionStat
	var deltas []*domain.UserMasteryDelta
	for championID, m := range byChampion {
		old := existing[championID]
		if old != nil && old.Level == m.level && old.Score == m.score {
			fresh = append(fresh, old)
			continue
		}

		gamesPlayed := 0
		if old != nil {
			// games_played is tracked independently of mastery and
			// must survive the replace.
			gamesPlayed = old.GamesPlayed
			if err := s.stats.Delete(ctx, old.ID); err != nil {
				return errors.Wrap(err, "delete stale stat")
			}
			deltas = append(deltas, statDeltas(snapshot.User.ID, old, m.level, m.score)...)
		}

		stat := &domain.UserChampionStat{
			UserID:      snapshot.User.ID,
			ChampionID:  championID,
			Level:       m.level,
			Score:       m.score,
			GamesPlayed: gamesPlayed,
		}
		if err := s.stats.Create(ctx, stat); err != nil {
			return errors.Wrap(err, "insert stat")
		}
		fresh = append(fresh, stat)
	}

	if err := s.deltas.CreateMany(ctx, deltas); err != nil {
		return errors.Wrap(err, "record mastery deltas")
	}

	// Stat rows for champions absent from every account's mastery list
	// are left alone; mastery lists always cover played champions.
	for championID, st := range existing {
		if _, ok := byChampion[championID]; !ok {
			fresh = append(fresh, st)
		}
	}
	snapshot.Stats = fresh
	return nil
}

// FetchRanked merges league positions across accounts per queue, keeping
// the highest tier, then replaces all rank rows. A queue absent from the
// new fetch ends up with no row: the user is no longer ranked there.
func (s *UpdateService) FetchRanked(ctx context.Context, snapshot *domain.UserSnapshot) error {
	byQueue := map[domain.Queue]domain.Tier{}
	for _, account := range snapshot.Accounts {
		entries, err := s.riot.LeaguePositions(ctx, account.Region, account.SummonerID)
		if err != nil {
			return errors.Wrapf(err, "fetch ranked for %s on %s", account.Username, account.Region)
		}
		for _, entry := range entries {
			queue := domain.Queue(entry.QueueType)
			tier := domain.Tier(entry.Tier)
			if !tier.IsValid() {
				continue
			}
			byQueue[queue] = domain.MaxTier(byQueue[queue], tier)
		}
	}

	if err := s.ranks.DeleteByUserID(ctx, snapshot.User.ID); err != nil {
		return errors.Wrap(err, "clear ranks")
	}
	ranks := make([]*domain.UserRank, 0, len(byQueue))
	for queue, tier := range byQueue {
		ranks = append(ranks, &domain.UserRank{
			UserID: snapshot.User.ID,
			Queue:  queue,
			Tier:   tier,
		})
	}
	if err := s.ranks.CreateMany(ctx, ranks); err != nil {
		return errors.Wrap(err, "insert ranks")
	}
	snapshot.Ranks = ranks
	return nil
}

// FetchGamesPlayed recounts ranked games per champion over the full match
// history of every account and stores the totals in place. Champions with
// games but no stat row get a minimal row; mastery will fill it in later.
func (s *UpdateService) FetchGamesPlayed(ctx context.Context, snapshot *domain.UserSnapshot) error {
	counts := map[int]int{}
	for _, account := range snapshot.Accounts {
		// Baseline stays at zero for now: every run is a full recount.
		matches, err := s.riot.RankedMatchesSince(ctx, account.Region, account.AccountID, time.Time{})
		if err != nil {
			return errors.Wrapf(err, "fetch matches for %s on %s", account.Username, account.Region)
		}
		for _, match := range matches {
			counts[match.Champion]++
		}
	}

	existing := map[int]*domain.UserChampionStat{}
	for _, st := range snapshot.Stats {
		existing[st.ChampionID] = st
	}

	for championID, games := range counts {
		if st, ok := existing[championID]; ok {
			if st.GamesPlayed == games {
				continue
			}
			st.GamesPlayed = games
			if err := s.stats.UpdateGamesPlayed(ctx, st.ID, games); err != nil {
				return errors.Wrap(err, "update games played")
			}
			continue
		}

		stat := &domain.UserChampionStat{
			UserID:      snapshot.User.ID,
			ChampionID:  championID,
			GamesPlayed: games,
		}
		if err := s.stats.Create(ctx, stat); err != nil {
			return errors.Wrap(err, "insert games-only stat")
		}
		snapshot.Stats = append(snapshot.Stats, stat)
	}
	return nil
}

// notifyTransfer sends a best-effort DM; delivery failure is logged only
func (s *UpdateService) notifyTransfer(user *domain.User, account *domain.LeagueAccount) {
	msg := fmt.Sprintf(
		"Your linked account **%s** (%s) no longer exists, so I have unlinked it. "+
			"If the account was transferred, you can link it again on its new region.",
		account.Username, account.Region,
	)
	if err := s.gateway.SendDM(user.Snowflake, msg); err != nil {
		log.Warn().
			Err(err).
			Str("user", user.Snowflake).
			Msg("could not notify user about unlinked account")
	}
}

func statDeltas(userID uuid.UUID, old *domain.UserChampionStat, newLevel, newScore int) []*domain.UserMasteryDelta {
	var deltas []*domain.UserMasteryDelta
	if old.Level != newLevel {
		deltas = append(deltas, &domain.UserMasteryDelta{
			UserID:     userID,
			ChampionID: old.ChampionID,
			Field:      "level",
			OldValue:   old.Level,
			NewValue:   newLevel,
		})
	}
	if old.Score != newScore {
		deltas = append(deltas, &domain.UserMasteryDelta{
			UserID:     userID,
			ChampionID: old.ChampionID,
			Field:      "score",
			OldValue:   old.Score,
			NewValue:   newScore,
		})
	}
	return deltas
}
