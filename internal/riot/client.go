package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

const platformSchema = "https://%s.api.riotgames.com"

// Riot API routes
const (
	routeSummonerByID = "/lol/summoner/v4/summoners/%s"
	routeMasteries    = "/lol/champion-mastery/v4/champion-masteries/by-summoner/%s"
	routeLeague       = "/lol/league/v4/entries/by-summoner/%s"
	routeMatchlist    = "/lol/match/v4/matchlists/by-account/%s"
)

// ErrNotFound distinguishes "the resource does not exist" from an empty
// result list. The fetch stage maps it to account-transfer handling.
var ErrNotFound = errors.New("riot: not found")

// ErrRateLimited is returned after the retry budget for a 429 is spent.
// The scheduler treats it as transient and picks the user up next cycle.
var ErrRateLimited = errors.New("riot: rate limited")

// Client is the game-data collaborator consumed by the fetch stage
type Client interface {
	SummonerByID(ctx context.Context, region, summonerID string) (*Summoner, error)
	ChampionMasteries(ctx context.Context, region, summonerID string) ([]Mastery, error)
	LeaguePositions(ctx context.Context, region, summonerID string) ([]LeagueEntry, error)
	RankedMatchesSince(ctx context.Context, region, accountID string, since time.Time) ([]MatchRef, error)
}

type httpClient struct {
	apiKey     string
	client     *http.Client
	baseURL    string // overrides the per-region platform host when set (tests)
	maxRetries int
}

type Option func(*httpClient)

// WithBaseURL points the client at a fixed host instead of the regional
// platform hosts. Used by tests.
func WithBaseURL(base string) Option {
	return func(c *httpClient) { c.baseURL = base }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.client = hc }
}

func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey: apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SummonerByID(ctx context.Context, region, summonerID string) (*Summoner, error) {
	var summoner Summoner
	path := fmt.Sprintf(routeSummonerByID, url.PathEscape(summonerID))
	if err := c.get(ctx, region, path, nil, &summoner); err != nil {
		return nil, err
	}
	return &summoner, nil
}

func (c *httpClient) ChampionMasteries(ctx context.Context, region, summonerID string) ([]Mastery, error) {
	var masteries []Mastery
	path := fmt.Sprintf(routeMasteries, url.PathEscape(summonerID))
	if err := c.get(ctx, region, path, nil, &masteries); err != nil {
		return nil, err
	}
	return masteries, nil
}

func (c *httpClient) LeaguePositions(ctx context.Context, region, summonerID string) ([]LeagueEntry, error) {
	var entries []LeagueEntry
	path := fmt.Sprintf(routeLeague, url.PathEscape(summonerID))
	if err := c.get(ctx, region, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RankedMatchesSince pages through the matchlist endpoint and returns every
// ranked game with a timestamp at or after since.
func (c *httpClient) RankedMatchesSince(ctx context.Context, region, accountID string, since time.Time) ([]MatchRef, error) {
	path := fmt.Sprintf(routeMatchlist, url.PathEscape(accountID))

	var all []MatchRef
	beginIndex := 0
	for {
		params := url.Values{}
		params.Set("beginIndex", strconv.Itoa(beginIndex))
		if !since.IsZero() && since.UnixMilli() > 0 {
			params.Set("beginTime", strconv.FormatInt(since.UnixMilli(), 10))
		}
		for _, q := range rankedQueueIDs {
			params.Add("queue", strconv.Itoa(q))
		}

		var page matchlistResponse
		err := c.get(ctx, region, path, params, &page)
		if errors.Is(err, ErrNotFound) {
			// An account with no matching games reports 404 here.
			return all, nil
		}
		if err != nil {
			return nil, err
		}

		all = append(all, page.Matches...)
		if page.EndIndex >= page.TotalGames || len(page.Matches) == 0 {
			return all, nil
		}
		beginIndex = page.EndIndex
	}
}

func (c *httpClient) get(ctx context.Context, region, path string, params url.Values, out any) error {
	base := c.baseURL
	if base == "" {
		base = fmt.Sprintf(platformSchema, region)
	}
	endpoint := base + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return errors.Wrap(err, "build riot request")
		}
		req.Header.Set("X-Riot-Token", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return errors.Wrap(err, "riot request")
		}

		switch resp.StatusCode {
		case http.StatusOK:
			err = json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return errors.Wrapf(err, "decode riot response for %s", path)
			}
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusTooManyRequests:
			wait := retryAfter(resp)
			resp.Body.Close()
			if attempt >= c.maxRetries {
				return ErrRateLimited
			}
			log.Warn().
				Str("path", path).
				Dur("wait", wait).
				Msg("riot rate limit hit, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}

		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return errors.Newf("riot API error: %s - %s", resp.Status, string(body))
		}
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Second
}
