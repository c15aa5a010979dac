package domain

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConditionKind discriminates the condition variants
type ConditionKind string

const (
	ConditionRankedTier   ConditionKind = "ranked_tier"
	ConditionMasteryLevel ConditionKind = "mastery_level"
	ConditionMasteryScore ConditionKind = "mastery_score"
	ConditionGamesPlayed  ConditionKind = "games_played"
	ConditionHasAccount   ConditionKind = "has_account"
)

// ConditionOptions is the payload stored in the options JSON column. Which
// fields are meaningful depends on the kind.
type ConditionOptions struct {
	Queue      Queue  `json:"queue,omitempty"`      // ranked_tier
	Tier       Tier   `json:"tier,omitempty"`       // ranked_tier: minimum tier
	ChampionID int    `json:"championId,omitempty"` // mastery_*, games_played: 0 means any champion
	Threshold  int    `json:"threshold,omitempty"`  // mastery_*, games_played: minimum value
	Region     string `json:"region,omitempty"`     // has_account: empty means any region
}

// Condition is one predicate attached to a role, evaluated against a user
// snapshot. All conditions on a role must hold for the role to apply.
type Condition struct {
	ID      uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RoleID  uuid.UUID      `json:"roleId" gorm:"type:uuid;not null;index"`
	Kind    ConditionKind  `json:"kind" gorm:"not null"`
	Options datatypes.JSON `json:"options" gorm:"type:jsonb"`
}

// IsValid checks if the condition kind is known
func (k ConditionKind) IsValid() bool {
	switch k {
	case ConditionRankedTier, ConditionMasteryLevel, ConditionMasteryScore,
		ConditionGamesPlayed, ConditionHasAccount:
		return true
	}
	return false
}

// DecodeOptions unmarshals the options column
func (c *Condition) DecodeOptions() (ConditionOptions, error) {
	var opts ConditionOptions
	if len(c.Options) == 0 {
		return opts, nil
	}
	err := json.Unmarshal(c.Options, &opts)
	return opts, err
}

// EncodeConditionOptions marshals options for storage
func EncodeConditionOptions(opts ConditionOptions) (datatypes.JSON, error) {
	raw, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// Evaluate runs the predicate against a read-only user snapshot. Malformed
// options or unknown kinds evaluate to false rather than erroring, so a bad
// condition can never grant a role.
func (c *Condition) Evaluate(snapshot *UserSnapshot) bool {
	opts, err := c.DecodeOptions()
	if err != nil {
		return false
	}

	switch c.Kind {
	case ConditionRankedTier:
		if !opts.Tier.IsValid() {
			return false
		}
		if opts.Queue == "" {
			return snapshot.HighestTier().AtLeast(opts.Tier)
		}
		return snapshot.TierFor(opts.Queue).AtLeast(opts.Tier)

	case ConditionMasteryLevel:
		return bestStatValue(snapshot, opts.ChampionID, func(s *UserChampionStat) int {
			return s.Level
		}) >= opts.Threshold

	case ConditionMasteryScore:
		return bestStatValue(snapshot, opts.ChampionID, func(s *UserChampionStat) int {
			return s.Score
		}) >= opts.Threshold

	case ConditionGamesPlayed:
		return bestStatValue(snapshot, opts.ChampionID, func(s *UserChampionStat) int {
			return s.GamesPlayed
		}) >= opts.Threshold

	case ConditionHasAccount:
		for _, a := range snapshot.Accounts {
			if opts.Region == "" || a.Region == opts.Region {
				return true
			}
		}
		return false
	}

	return false
}

// ChampionID returns the champion the condition is scoped to, if any
func (c *Condition) ChampionID() (int, bool) {
	opts, err := c.DecodeOptions()
	if err != nil || opts.ChampionID == 0 {
		return 0, false
	}
	return opts.ChampionID, true
}

// bestStatValue extracts a value from the matching champion stat, or the
// maximum over all stats when championID is 0
func bestStatValue(snapshot *UserSnapshot, championID int, value func(*UserChampionStat) int) int {
	if championID != 0 {
		if st := snapshot.StatFor(championID); st != nil {
			return value(st)
		}
		return 0
	}
	best := 0
	for _, st := range snapshot.Stats {
		if v := value(st); v > best {
			best = v
		}
	}
	return best
}
