package staticdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dom/orianna-bot/internal/cache"
	"github.com/dom/orianna-bot/internal/domain"
	"github.com/dom/orianna-bot/internal/repository"
	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://ddragon.leagueoflegends.com"

// Generic art used when a role is not champion-specific
const (
	GenericIconURL   = "https://ddragon.leagueoflegends.com/cdn/img/profileicon/29.png"
	GenericSplashURL = "https://ddragon.leagueoflegends.com/cdn/img/champion/splash/Ryze_0.jpg"
)

const (
	versionCacheTTL  = time.Hour
	championCacheTTL = 6 * time.Hour
)

// Provider serves champion static data from Data Dragon, persisting the
// index through ChampionRepository and fronting lookups with redis.
type Provider struct {
	championRepo  repository.ChampionRepository
	cache         *cache.Manager
	httpClient    *http.Client
	baseURL       string
	pinnedVersion string
}

func NewProvider(championRepo repository.ChampionRepository, cacheManager *cache.Manager, pinnedVersion string) *Provider {
	return &Provider{
		championRepo: championRepo,
		cache:        cacheManager,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:       defaultBaseURL,
		pinnedVersion: pinnedVersion,
	}
}

// WithBaseURL redirects Data Dragon requests. Used by tests.
func (p *Provider) WithBaseURL(base string) *Provider {
	p.baseURL = base
	return p
}

type versionsResponse []string

type championsResponse struct {
	Type    string                     `json:"type"`
	Format  string                     `json:"format"`
	Version string                     `json:"version"`
	Data    map[string]ddragonChampion `json:"data"`
}

type ddragonChampion struct {
	ID    string   `json:"id"`
	Key   string   `json:"key"`
	Name  string   `json:"name"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
	Image struct {
		Full string `json:"full"`
	} `json:"image"`
}

// Sync refreshes the persisted champion index from Data Dragon and returns
// the number of champions and the version synced.
func (p *Provider) Sync(ctx context.Context) (int, string, error) {
	version, err := p.latestVersion(ctx)
	if err != nil {
		return 0, "", errors.Wrap(err, "resolve data dragon version")
	}

	championsURL := fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json", p.baseURL, version)
	resp, err := p.httpClient.Get(championsURL)
	if err != nil {
		return 0, "", errors.Wrap(err, "fetch champions")
	}
	defer resp.Body.Close()

	var championsResp championsResponse
	if err := json.NewDecoder(resp.Body).Decode(&championsResp); err != nil {
		return 0, "", errors.Wrap(err, "decode champions")
	}

	champions := make([]*domain.Champion, 0, len(championsResp.Data))
	for _, c := range championsResp.Data {
		key, err := strconv.Atoi(c.Key)
		if err != nil {
			log.Warn().Str("champion", c.ID).Str("key", c.Key).Msg("skipping champion with non-numeric key")
			continue
		}
		tagsJSON, _ := json.Marshal(c.Tags)
		champions = append(champions, &domain.Champion{
			Key:          key,
			ID:           c.ID,
			Name:         c.Name,
			Title:        c.Title,
			IconURL:      fmt.Sprintf("%s/cdn/%s/img/champion/%s", p.baseURL, version, c.Image.Full),
			SplashURL:    fmt.Sprintf("%s/cdn/img/champion/splash/%s_0.jpg", p.baseURL, c.ID),
			Tags:         tagsJSON,
			LastSyncedAt: time.Now(),
		})
	}

	if err := p.championRepo.UpsertMany(ctx, champions); err != nil {
		return 0, "", errors.Wrap(err, "upsert champions")
	}

	return len(champions), version, nil
}

// ChampionByKey resolves a champion by its numeric id, cache first
func (p *Provider) ChampionByKey(ctx context.Context, key int) (*domain.Champion, error) {
	cacheKey := p.cache.Key("champion", strconv.Itoa(key))

	var cached domain.Champion
	if err := p.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	champion, err := p.championRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrChampionNotFound, "key %d", key)
	}

	if err := p.cache.Set(ctx, cacheKey, champion, championCacheTTL); err != nil {
		log.Warn().Err(err).Int("champion", key).Msg("could not cache champion")
	}
	return champion, nil
}

// PromotionArt resolves the icon/background pair for a role's announcement
// graphic, falling back to generic art when the role is not champion-specific
// or the champion is unknown.
func (p *Provider) PromotionArt(ctx context.Context, role *domain.Role) (iconURL, splashURL string) {
	iconURL, splashURL = GenericIconURL, GenericSplashURL

	championID, ok := role.FindChampion()
	if !ok {
		return iconURL, splashURL
	}
	champion, err := p.ChampionByKey(ctx, championID)
	if err != nil {
		log.Warn().Err(err).Int("champion", championID).Msg("falling back to generic promotion art")
		return iconURL, splashURL
	}
	return champion.IconURL, champion.SplashURL
}

func (p *Provider) latestVersion(ctx context.Context) (string, error) {
	if p.pinnedVersion != "" {
		return p.pinnedVersion, nil
	}

	cacheKey := p.cache.Key("ddragon", "version")
	var cached string
	if err := p.cache.Get(ctx, cacheKey, &cached); err == nil && cached != "" {
		return cached, nil
	}

	resp, err := p.httpClient.Get(p.baseURL + "/api/versions.json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var versions versionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&versions); err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", errors.New("no versions available")
	}

	if err := p.cache.Set(ctx, cacheKey, versions[0], versionCacheTTL); err != nil {
		log.Warn().Err(err).Msg("could not cache data dragon version")
	}
	return versions[0], nil
}
