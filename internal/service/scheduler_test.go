package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/orianna-bot/internal/riot"
	"github.com/dom/orianna-bot/internal/service"
	"github.com/dom/orianna-bot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingRiot stalls summoner lookups until released, keeping a refresh
// in flight for as long as the test needs
type blockingRiot struct {
	*testutil.FakeRiotClient
	release chan struct{}
}

func (b *blockingRiot) SummonerByID(ctx context.Context, region, summonerID string) (*riot.Summoner, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.release:
	}
	return b.FakeRiotClient.SummonerByID(ctx, region, summonerID)
}

func testSchedulerConfig() service.SchedulerConfig {
	return service.SchedulerConfig{
		MasteryInterval:  time.Hour,
		MasteryBatchSize: 10,
		RankedInterval:   time.Hour,
		RankedBatchSize:  10,
		AccountInterval:  time.Hour,
		AccountBatchSize: 10,
		WorkerCount:      4,
		RefreshTimeout:   5 * time.Second,
	}
}

func TestTriggerRefreshCoalescesPerUser(t *testing.T) {
	fakes := testutil.NewFakes()
	rc := &blockingRiot{FakeRiotClient: testutil.NewFakeRiotClient(), release: make(chan struct{})}
	gw := testutil.NewFakeGateway()
	update := newUpdateService(fakes, rc, gw)

	sched, err := service.NewScheduler(fakes.User, update, testSchedulerConfig())
	require.NoError(t, err)
	defer sched.Stop()

	user := testutil.NewUserBuilder().Build(t, fakes)
	testutil.LinkAccount(t, fakes, user, "euw1", "main", "s1", "a1")
	rc.Summoners["euw1|s1"] = &riot.Summoner{ID: "s1", Name: "main"}

	ctx := context.Background()
	require.True(t, sched.TriggerRefresh(ctx, user), "first trigger is accepted")
	assert.False(t, sched.TriggerRefresh(ctx, user), "overlapping trigger for the same user is rejected")

	close(rc.release)
	// Once the in-flight run completes, the user can be refreshed again
	require.Eventually(t, func() bool {
		return sched.TriggerRefresh(ctx, user)
	}, 3*time.Second, 10*time.Millisecond)
}

func TestTriggerRefreshOutlivesCallerContext(t *testing.T) {
	fakes := testutil.NewFakes()
	rc := &blockingRiot{FakeRiotClient: testutil.NewFakeRiotClient(), release: make(chan struct{})}
	gw := testutil.NewFakeGateway()
	update := newUpdateService(fakes, rc, gw)

	sched, err := service.NewScheduler(fakes.User, update, testSchedulerConfig())
	require.NoError(t, err)
	defer sched.Stop()

	user := testutil.NewUserBuilder().Build(t, fakes)
	testutil.LinkAccount(t, fakes, user, "euw1", "main", "s1", "a1")
	rc.Summoners["euw1|s1"] = &riot.Summoner{ID: "s1", Name: "main"}

	// A manual trigger carries a request-scoped context that dies as soon
	// as the caller returns; the queued run must not die with it.
	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, sched.TriggerRefresh(ctx, user))
	cancel()
	close(rc.release)

	require.Eventually(t, func() bool {
		got, err := fakes.User.GetByID(context.Background(), user.ID)
		return err == nil && !got.LastRefreshAt.IsZero()
	}, 3*time.Second, 10*time.Millisecond, "refresh should complete after the trigger context is canceled")

	accounts, err := fakes.Account.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, accounts, 1, "the run completed normally, no spurious failure handling")
}

func TestTriggerRefreshLocksAreKeyedPerUser(t *testing.T) {
	fakes := testutil.NewFakes()
	rc := &blockingRiot{FakeRiotClient: testutil.NewFakeRiotClient(), release: make(chan struct{})}
	gw := testutil.NewFakeGateway()
	update := newUpdateService(fakes, rc, gw)

	sched, err := service.NewScheduler(fakes.User, update, testSchedulerConfig())
	require.NoError(t, err)
	defer sched.Stop()

	blocked := testutil.NewUserBuilder().Build(t, fakes)
	testutil.LinkAccount(t, fakes, blocked, "euw1", "main", "s1", "a1")
	rc.Summoners["euw1|s1"] = &riot.Summoner{ID: "s1", Name: "main"}
	other := testutil.NewUserBuilder().Build(t, fakes)

	ctx := context.Background()
	require.True(t, sched.TriggerRefresh(ctx, blocked))
	assert.True(t, sched.TriggerRefresh(ctx, other), "one user's run does not lock out another")

	close(rc.release)
}
