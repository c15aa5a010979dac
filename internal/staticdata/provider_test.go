package staticdata_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/orianna-bot/internal/cache"
	"github.com/dom/orianna-bot/internal/domain"
	"github.com/dom/orianna-bot/internal/staticdata"
	"github.com/dom/orianna-bot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDataDragonServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/versions.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"14.1.1", "14.0.1"})
	})
	mux.HandleFunc("/cdn/14.1.1/data/en_US/champion.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"type":    "champion",
			"version": "14.1.1",
			"data": map[string]any{
				"Orianna": map[string]any{
					"id":    "Orianna",
					"key":   "61",
					"name":  "Orianna",
					"title": "the Lady of Clockwork",
					"tags":  []string{"Mage", "Support"},
					"image": map[string]any{"full": "Orianna.png"},
				},
				"Broken": map[string]any{
					"id":  "Broken",
					"key": "not-a-number",
				},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func disabledCache() *cache.Manager {
	return cache.NewManager("", "", 0, false)
}

func TestSync(t *testing.T) {
	srv := newDataDragonServer(t)
	fakes := testutil.NewFakes()
	provider := staticdata.NewProvider(fakes.Champion, disabledCache(), "").WithBaseURL(srv.URL)

	count, version, err := provider.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count, "entries with non-numeric keys are skipped")
	assert.Equal(t, "14.1.1", version)

	champion, err := provider.ChampionByKey(context.Background(), 61)
	require.NoError(t, err)
	assert.Equal(t, "Orianna", champion.Name)
	assert.Contains(t, champion.IconURL, "Orianna.png")
	assert.Contains(t, champion.SplashURL, "Orianna_0.jpg")
}

func TestSyncWithPinnedVersionSkipsVersionLookup(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/versions.json", func(w http.ResponseWriter, r *http.Request) {
		t.Error("version endpoint should not be queried when a version is pinned")
	})
	mux.HandleFunc("/cdn/14.1.1/data/en_US/champion.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	fakes := testutil.NewFakes()
	provider := staticdata.NewProvider(fakes.Champion, disabledCache(), "14.1.1").WithBaseURL(srv.URL)

	_, version, err := provider.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "14.1.1", version)
}

func TestChampionByKeyUnknown(t *testing.T) {
	fakes := testutil.NewFakes()
	provider := staticdata.NewProvider(fakes.Champion, disabledCache(), "14.1.1")

	_, err := provider.ChampionByKey(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrChampionNotFound)
}

func TestPromotionArt(t *testing.T) {
	srv := newDataDragonServer(t)
	fakes := testutil.NewFakes()
	provider := staticdata.NewProvider(fakes.Champion, disabledCache(), "").WithBaseURL(srv.URL)
	_, _, err := provider.Sync(context.Background())
	require.NoError(t, err)

	t.Run("champion role uses champion art", func(t *testing.T) {
		role := &domain.Role{Conditions: []*domain.Condition{{
			Kind:    domain.ConditionMasteryLevel,
			Options: testutil.MustOptions(t, domain.ConditionOptions{ChampionID: 61, Threshold: 5}),
		}}}
		icon, splash := provider.PromotionArt(context.Background(), role)
		assert.Contains(t, icon, "Orianna.png")
		assert.Contains(t, splash, "Orianna_0.jpg")
	})

	t.Run("generic role falls back to generic art", func(t *testing.T) {
		role := &domain.Role{Conditions: []*domain.Condition{{
			Kind:    domain.ConditionRankedTier,
			Options: testutil.MustOptions(t, domain.ConditionOptions{Tier: domain.TierGold}),
		}}}
		icon, splash := provider.PromotionArt(context.Background(), role)
		assert.Equal(t, staticdata.GenericIconURL, icon)
		assert.Equal(t, staticdata.GenericSplashURL, splash)
	})

	t.Run("unknown champion falls back to generic art", func(t *testing.T) {
		role := &domain.Role{Conditions: []*domain.Condition{{
			Kind:    domain.ConditionMasteryLevel,
			Options: testutil.MustOptions(t, domain.ConditionOptions{ChampionID: 9999, Threshold: 5}),
		}}}
		icon, _ := provider.PromotionArt(context.Background(), role)
		assert.Equal(t, staticdata.GenericIconURL, icon)
	})
}
