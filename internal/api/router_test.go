package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/orianna-bot/internal/api"
	"github.com/dom/orianna-bot/internal/api/handlers"
	"github.com/dom/orianna-bot/internal/cache"
	"github.com/dom/orianna-bot/internal/config"
	"github.com/dom/orianna-bot/internal/domain"
	"github.com/dom/orianna-bot/internal/errtrack"
	"github.com/dom/orianna-bot/internal/render"
	"github.com/dom/orianna-bot/internal/service"
	"github.com/dom/orianna-bot/internal/staticdata"
	"github.com/dom/orianna-bot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "ops-secret"

type opsServer struct {
	*httptest.Server
	fakes *testutil.Fakes
}

func newOpsServer(t *testing.T) *opsServer {
	t.Helper()

	fakes := testutil.NewFakes()
	cfg := &config.Config{
		APISecret:        testSecret,
		MasteryInterval:  time.Hour,
		MasteryBatchSize: 10,
		RankedInterval:   time.Hour,
		RankedBatchSize:  10,
		AccountInterval:  time.Hour,
		AccountBatchSize: 10,
		WorkerCount:      2,
		RefreshTimeout:   5 * time.Second,
	}

	static := staticdata.NewProvider(fakes.Champion, cache.NewManager("", "", 0, false), "14.1.1")
	services, err := service.NewServices(
		fakes.Repositories(), cfg,
		testutil.NewFakeRiotClient(), testutil.NewFakeGateway(),
		render.Disabled{}, static, errtrack.Noop{},
	)
	require.NoError(t, err)
	t.Cleanup(services.Scheduler.Stop)

	srv := httptest.NewServer(api.NewRouter(services, fakes.Repositories(), cfg))
	t.Cleanup(srv.Close)
	return &opsServer{Server: srv, fakes: fakes}
}

func (s *opsServer) do(t *testing.T, method, path string, body any, secret string) *http.Response {
	t.Helper()

	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.URL+path, payload)
	require.NoError(t, err)
	if secret != "" {
		req.Header.Set("X-Orianna-Secret", secret)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthNeedsNoSecret(t *testing.T) {
	s := newOpsServer(t)
	resp := s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRequiresSecret(t *testing.T) {
	s := newOpsServer(t)

	resp := s.do(t, http.MethodGet, "/api/v1/servers", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/v1/servers", nil, "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/v1/servers", nil, testSecret)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestManualRefresh(t *testing.T) {
	s := newOpsServer(t)
	user := testutil.NewUserBuilder().WithSnowflake("111222333").Build(t, s.fakes)

	t.Run("unknown user", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/v1/users/999/refresh", nil, testSecret)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("queues a refresh", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/v1/users/111222333/refresh", nil, testSecret)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)

		// The queued run eventually marks the user refreshed
		require.Eventually(t, func() bool {
			got, err := s.fakes.User.GetByID(context.Background(), user.ID)
			return err == nil && !got.LastRefreshAt.IsZero()
		}, 3*time.Second, 10*time.Millisecond)
	})
}

func TestRoleManagement(t *testing.T) {
	s := newOpsServer(t)
	testutil.NewServer(t, s.fakes, "guild1", "")

	t.Run("create role", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/v1/servers/guild1/roles", handlers.CreateRoleRequest{
			Snowflake: "role1",
			Name:      "Gold Club",
			Announce:  true,
			Conditions: []handlers.ConditionRequest{{
				Kind:    domain.ConditionRankedTier,
				Options: domain.ConditionOptions{Queue: domain.QueueRankedSolo, Tier: domain.TierGold},
			}},
		}, testSecret)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created domain.Role
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.Equal(t, "Gold Club", created.Name)
		require.Len(t, created.Conditions, 1)

		server, err := s.fakes.Server.GetBySnowflake(context.Background(), "guild1")
		require.NoError(t, err)
		require.Len(t, server.Roles, 1)
	})

	t.Run("unknown condition kind", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/v1/servers/guild1/roles", handlers.CreateRoleRequest{
			Snowflake:  "role2",
			Name:       "Bad",
			Conditions: []handlers.ConditionRequest{{Kind: "lp_gained"}},
		}, testSecret)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown server", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/v1/servers/nope/roles", handlers.CreateRoleRequest{
			Snowflake: "role3",
			Name:      "Lost",
		}, testSecret)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("delete role", func(t *testing.T) {
		server, err := s.fakes.Server.GetBySnowflake(context.Background(), "guild1")
		require.NoError(t, err)
		require.NotEmpty(t, server.Roles)
		roleID := server.Roles[0].ID

		resp := s.do(t, http.MethodDelete, "/api/v1/roles/"+roleID.String(), nil, testSecret)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = s.do(t, http.MethodDelete, "/api/v1/roles/"+roleID.String(), nil, testSecret)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = s.do(t, http.MethodDelete, "/api/v1/roles/not-a-uuid", nil, testSecret)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestListServers(t *testing.T) {
	s := newOpsServer(t)
	testutil.NewServer(t, s.fakes, "g1", "chan1")
	testutil.NewServer(t, s.fakes, "g2", "")

	resp := s.do(t, http.MethodGet, "/api/v1/servers", nil, testSecret)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.ServersResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Servers, 2)
}
