package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dom/orianna-bot/internal/riot"
)

// FakeRiotClient serves canned game data keyed by region and id
type FakeRiotClient struct {
	mu sync.Mutex

	Summoners    map[string]*riot.Summoner     // region|summonerID
	SummonerErrs map[string]error              // region|summonerID
	Masteries    map[string][]riot.Mastery     // region|summonerID
	Leagues      map[string][]riot.LeagueEntry // region|summonerID
	Matches      map[string][]riot.MatchRef    // region|accountID

	MasteryCalls int
	LeagueCalls  int
}

func NewFakeRiotClient() *FakeRiotClient {
	return &FakeRiotClient{
		Summoners:    map[string]*riot.Summoner{},
		SummonerErrs: map[string]error{},
		Masteries:    map[string][]riot.Mastery{},
		Leagues:      map[string][]riot.LeagueEntry{},
		Matches:      map[string][]riot.MatchRef{},
	}
}

func key(region, id string) string { return region + "|" + id }

func (c *FakeRiotClient) SummonerByID(_ context.Context, region, summonerID string) (*riot.Summoner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.SummonerErrs[key(region, summonerID)]; err != nil {
		return nil, err
	}
	if s, ok := c.Summoners[key(region, summonerID)]; ok {
		return s, nil
	}
	return nil, riot.ErrNotFound
}

func (c *FakeRiotClient) ChampionMasteries(_ context.Context, region, summonerID string) ([]riot.Mastery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MasteryCalls++
	return c.Masteries[key(region, summonerID)], nil
}

func (c *FakeRiotClient) LeaguePositions(_ context.Context, region, summonerID string) ([]riot.LeagueEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LeagueCalls++
	return c.Leagues[key(region, summonerID)], nil
}

func (c *FakeRiotClient) RankedMatchesSince(_ context.Context, region, accountID string, _ time.Time) ([]riot.MatchRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Matches[key(region, accountID)], nil
}
