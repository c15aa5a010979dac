package domain_test

import (
	"testing"

	"github.com/dom/orianna-bot/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func condition(t *testing.T, kind domain.ConditionKind, opts domain.ConditionOptions) *domain.Condition {
	t.Helper()
	raw, err := domain.EncodeConditionOptions(opts)
	require.NoError(t, err)
	return &domain.Condition{ID: uuid.New(), Kind: kind, Options: raw}
}

func snapshot(user *domain.User) *domain.UserSnapshot {
	if user == nil {
		user = &domain.User{ID: uuid.New(), Snowflake: "123"}
	}
	return &domain.UserSnapshot{User: user}
}

func TestRankedTierCondition(t *testing.T) {
	atLeastGold := condition(t, domain.ConditionRankedTier, domain.ConditionOptions{
		Queue: domain.QueueRankedSolo,
		Tier:  domain.TierGold,
	})

	tests := []struct {
		name string
		tier domain.Tier
		want bool
	}{
		{"below threshold", domain.TierSilver, false},
		{"at threshold", domain.TierGold, true},
		{"above threshold", domain.TierDiamond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snapshot(nil)
			s.Ranks = []*domain.UserRank{{UserID: s.User.ID, Queue: domain.QueueRankedSolo, Tier: tt.tier}}
			require.Equal(t, tt.want, atLeastGold.Evaluate(s))
		})
	}

	t.Run("no rank row means unranked", func(t *testing.T) {
		require.False(t, atLeastGold.Evaluate(snapshot(nil)))
	})

	t.Run("other queue does not count", func(t *testing.T) {
		s := snapshot(nil)
		s.Ranks = []*domain.UserRank{{UserID: s.User.ID, Queue: domain.QueueRankedFlex, Tier: domain.TierDiamond}}
		require.False(t, atLeastGold.Evaluate(s))
	})

	t.Run("empty queue takes the highest across queues", func(t *testing.T) {
		anyQueue := condition(t, domain.ConditionRankedTier, domain.ConditionOptions{Tier: domain.TierGold})
		s := snapshot(nil)
		s.Ranks = []*domain.UserRank{
			{UserID: s.User.ID, Queue: domain.QueueRankedSolo, Tier: domain.TierSilver},
			{UserID: s.User.ID, Queue: domain.QueueRankedFlex, Tier: domain.TierPlatinum},
		}
		require.True(t, anyQueue.Evaluate(s))
	})

	t.Run("treat as unranked masks real ranks", func(t *testing.T) {
		s := snapshot(&domain.User{ID: uuid.New(), Snowflake: "123", TreatAsUnranked: true})
		s.Ranks = []*domain.UserRank{{UserID: s.User.ID, Queue: domain.QueueRankedSolo, Tier: domain.TierChallenger}}
		require.False(t, atLeastGold.Evaluate(s))
	})

	t.Run("invalid tier option never matches", func(t *testing.T) {
		bad := condition(t, domain.ConditionRankedTier, domain.ConditionOptions{Queue: domain.QueueRankedSolo, Tier: "WOOD"})
		s := snapshot(nil)
		s.Ranks = []*domain.UserRank{{UserID: s.User.ID, Queue: domain.QueueRankedSolo, Tier: domain.TierChallenger}}
		require.False(t, bad.Evaluate(s))
	})
}

func TestMasteryConditions(t *testing.T) {
	s := snapshot(nil)
	s.Stats = []*domain.UserChampionStat{
		{UserID: s.User.ID, ChampionID: 61, Level: 7, Score: 250000, GamesPlayed: 40},
		{UserID: s.User.ID, ChampionID: 103, Level: 4, Score: 30000, GamesPlayed: 12},
	}

	t.Run("level on a specific champion", func(t *testing.T) {
		c := condition(t, domain.ConditionMasteryLevel, domain.ConditionOptions{ChampionID: 61, Threshold: 5})
		require.True(t, c.Evaluate(s))
		c = condition(t, domain.ConditionMasteryLevel, domain.ConditionOptions{ChampionID: 103, Threshold: 5})
		require.False(t, c.Evaluate(s))
	})

	t.Run("champion zero means best over all champions", func(t *testing.T) {
		c := condition(t, domain.ConditionMasteryScore, domain.ConditionOptions{Threshold: 200000})
		require.True(t, c.Evaluate(s))
		c = condition(t, domain.ConditionMasteryScore, domain.ConditionOptions{Threshold: 300000})
		require.False(t, c.Evaluate(s))
	})

	t.Run("unknown champion evaluates against zero", func(t *testing.T) {
		c := condition(t, domain.ConditionMasteryScore, domain.ConditionOptions{ChampionID: 999, Threshold: 1})
		require.False(t, c.Evaluate(s))
	})

	t.Run("games played", func(t *testing.T) {
		c := condition(t, domain.ConditionGamesPlayed, domain.ConditionOptions{ChampionID: 61, Threshold: 40})
		require.True(t, c.Evaluate(s))
		c = condition(t, domain.ConditionGamesPlayed, domain.ConditionOptions{ChampionID: 61, Threshold: 41})
		require.False(t, c.Evaluate(s))
	})
}

func TestHasAccountCondition(t *testing.T) {
	s := snapshot(nil)
	s.Accounts = []*domain.LeagueAccount{{UserID: s.User.ID, Region: "euw1", Username: "a"}}

	anyRegion := condition(t, domain.ConditionHasAccount, domain.ConditionOptions{})
	require.True(t, anyRegion.Evaluate(s))
	require.False(t, anyRegion.Evaluate(snapshot(nil)))

	euw := condition(t, domain.ConditionHasAccount, domain.ConditionOptions{Region: "euw1"})
	require.True(t, euw.Evaluate(s))
	na := condition(t, domain.ConditionHasAccount, domain.ConditionOptions{Region: "na1"})
	require.False(t, na.Evaluate(s))
}

func TestMalformedConditionNeverGrants(t *testing.T) {
	s := snapshot(nil)
	s.Ranks = []*domain.UserRank{{UserID: s.User.ID, Queue: domain.QueueRankedSolo, Tier: domain.TierChallenger}}

	malformed := &domain.Condition{Kind: domain.ConditionRankedTier, Options: datatypes.JSON(`{not json`)}
	require.False(t, malformed.Evaluate(s))

	unknown := condition(t, domain.ConditionKind("lp_gained"), domain.ConditionOptions{Threshold: 1})
	require.False(t, unknown.Evaluate(s))
}

func TestRoleTest(t *testing.T) {
	s := snapshot(nil)
	s.Ranks = []*domain.UserRank{{UserID: s.User.ID, Queue: domain.QueueRankedSolo, Tier: domain.TierPlatinum}}
	s.Stats = []*domain.UserChampionStat{{UserID: s.User.ID, ChampionID: 61, Level: 6, Score: 100000}}

	t.Run("all conditions must hold", func(t *testing.T) {
		role := &domain.Role{Name: "orianna mains", Conditions: []*domain.Condition{
			condition(t, domain.ConditionRankedTier, domain.ConditionOptions{Queue: domain.QueueRankedSolo, Tier: domain.TierGold}),
			condition(t, domain.ConditionMasteryLevel, domain.ConditionOptions{ChampionID: 61, Threshold: 5}),
		}}
		require.True(t, role.Test(s))

		role.Conditions = append(role.Conditions,
			condition(t, domain.ConditionMasteryScore, domain.ConditionOptions{ChampionID: 61, Threshold: 500000}))
		require.False(t, role.Test(s))
	})

	t.Run("role with no conditions matches nobody", func(t *testing.T) {
		role := &domain.Role{Name: "empty"}
		require.False(t, role.Test(s))
	})
}

func TestRoleFindChampion(t *testing.T) {
	role := &domain.Role{Conditions: []*domain.Condition{
		condition(t, domain.ConditionRankedTier, domain.ConditionOptions{Tier: domain.TierGold}),
		condition(t, domain.ConditionMasteryLevel, domain.ConditionOptions{ChampionID: 61, Threshold: 5}),
	}}
	id, ok := role.FindChampion()
	require.True(t, ok)
	require.Equal(t, 61, id)

	generic := &domain.Role{Conditions: []*domain.Condition{
		condition(t, domain.ConditionRankedTier, domain.ConditionOptions{Tier: domain.TierGold}),
	}}
	_, ok = generic.FindChampion()
	require.False(t, ok)
}
