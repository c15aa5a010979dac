package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a Discord user known to the bot. It is created on the first
// account link and never deleted by the refresh pipeline.
type User struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Snowflake       string    `json:"snowflake" gorm:"uniqueIndex;not null"`
	Username        string    `json:"username"`
	TreatAsUnranked bool      `json:"treatAsUnranked" gorm:"not null;default:false"`
	HideAccounts    bool      `json:"hideAccounts" gorm:"not null;default:false"`
	LastRefreshAt   time.Time `json:"lastRefreshAt" gorm:"index"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// LeagueAccount is one linked game account. It is deleted when the
// underlying summoner no longer resolves (account transfer).
type LeagueAccount struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Region     string    `json:"region" gorm:"not null"`
	Username   string    `json:"username" gorm:"not null"`
	SummonerID string    `json:"summonerId" gorm:"not null"`
	AccountID  string    `json:"accountId" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UserChampionStat is the per-(user, champion) aggregate merged across all
// linked accounts: level is the max, score the sum. At most one row exists
// per (user, champion); the fetch stage replaces rows instead of patching
// them so delta tracking can key off row churn.
type UserChampionStat struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;not null;index:idx_stat_user_champion,unique"`
	ChampionID  int       `json:"championId" gorm:"not null;index:idx_stat_user_champion,unique"`
	Level       int       `json:"level" gorm:"not null"`
	Score       int       `json:"score" gorm:"not null"`
	GamesPlayed int       `json:"gamesPlayed" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UserRank is the current tier for one ranked queue, merged across accounts
// by taking the highest tier. Queues the user is not ranked in have no row.
type UserRank struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID uuid.UUID `json:"userId" gorm:"type:uuid;not null;index:idx_rank_user_queue,unique"`
	Queue  Queue     `json:"queue" gorm:"not null;index:idx_rank_user_queue,unique"`
	Tier   Tier      `json:"tier" gorm:"not null"`
}

// UserMasteryDelta records one observed change to a champion stat. Rows are
// appended whenever the fetch stage replaces a stat row.
type UserMasteryDelta struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	ChampionID int       `json:"championId" gorm:"not null"`
	Field      string    `json:"field" gorm:"not null"` // "score" or "level"
	OldValue   int       `json:"oldValue" gorm:"not null"`
	NewValue   int       `json:"newValue" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserSnapshot is the fully loaded aggregate the reconciliation stage and
// condition evaluation read from. It is built once per pipeline run and
// passed through the stages instead of lazily hydrating relations on the
// entity.
type UserSnapshot struct {
	User     *User
	Accounts []*LeagueAccount
	Stats    []*UserChampionStat
	Ranks    []*UserRank
}

// TierFor returns the user's tier in the given queue, or UNRANKED when the
// user has no rank row for it or is flagged treat-as-unranked.
func (s *UserSnapshot) TierFor(queue Queue) Tier {
	if s.User != nil && s.User.TreatAsUnranked {
		return TierUnranked
	}
	for _, r := range s.Ranks {
		if r.Queue == queue {
			return r.Tier
		}
	}
	return TierUnranked
}

// HighestTier returns the user's best tier across all queues
func (s *UserSnapshot) HighestTier() Tier {
	best := TierUnranked
	if s.User != nil && s.User.TreatAsUnranked {
		return best
	}
	for _, r := range s.Ranks {
		best = MaxTier(best, r.Tier)
	}
	return best
}

// StatFor returns the stat row for a champion, or nil
func (s *UserSnapshot) StatFor(championID int) *UserChampionStat {
	for _, st := range s.Stats {
		if st.ChampionID == championID {
			return st
		}
	}
	return nil
}
