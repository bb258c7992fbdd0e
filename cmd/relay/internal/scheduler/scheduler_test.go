package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/protocol"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/scheduler"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/testutils"
	"github.com/shubham-shewale/options-relay/pkg/models"
)

func TestTask_StopIsSynchronous(t *testing.T) {
	clock := testutils.NewFakeClock(time.Unix(0, 0))
	var calls atomic.Int32
	task := scheduler.Start(context.Background(), clock, "count", time.Second, func(context.Context) {
		calls.Add(1)
	})
	require.Equal(t, "count", task.Name())

	clock.Advance(time.Second)
	testutils.WaitFor(t, time.Second, func() bool { return calls.Load() == 1 }, "first tick")

	task.Stop()
	select {
	case <-task.Done():
	default:
		t.Fatal("Done should be closed once Stop returns")
	}
	require.Zero(t, clock.ActiveTickers())

	clock.Advance(10 * time.Second)
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 1, calls.Load())

	// Stop twice is safe.
	task.Stop()
}

func TestTask_ParentCancelStops(t *testing.T) {
	clock := testutils.NewFakeClock(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	task := scheduler.Start(ctx, clock, "noop", time.Second, func(context.Context) {})

	cancel()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not exit after parent cancel")
	}
}

func TestTask_StopWaitsForRunningTick(t *testing.T) {
	clock := testutils.NewFakeClock(time.Unix(0, 0))
	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	task := scheduler.Start(context.Background(), clock, "slow", time.Second, func(context.Context) {
		close(entered)
		<-release
		finished.Store(true)
	})
	clock.Advance(time.Second)
	<-entered

	stopped := make(chan struct{})
	go func() {
		task.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a tick was still running")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	<-stopped
	require.True(t, finished.Load())
}

func TestScheduler_Attach(t *testing.T) {
	clock := testutils.NewFakeClock(time.Unix(0, 0))
	market := testutils.StaticMarket{Items: []models.MarketDataItem{{Symbol: "AAPL", Price: 173.5}}}
	portfolio := testutils.StaticPortfolio{Summary: models.PortfolioSummary{TotalValue: 1}}
	s := scheduler.New(clock, scheduler.Intervals{Portfolio: 5 * time.Second, Market: 10 * time.Second}, market, portfolio, zap.NewNop())

	e := &testutils.MockEmitter{IDVal: "s1"}
	tasks := s.Attach(context.Background(), e)
	require.Len(t, tasks, 2)
	defer func() {
		for _, task := range tasks {
			task.Stop()
		}
	}()

	clock.Advance(5 * time.Second)
	testutils.WaitFor(t, time.Second, func() bool { return len(e.Events()) == 2 }, "portfolio tick")
	require.Equal(t, []string{protocol.EventPortfolioUpdate, protocol.EventPositionsUpdate}, e.Events())

	clock.Advance(5 * time.Second)
	testutils.WaitFor(t, time.Second, func() bool { return len(e.Events()) == 5 }, "both cadences")
	require.Contains(t, e.Events(), protocol.EventMarketDataUpdate)
}

func TestScheduler_SkipsPositionsWhenClosed(t *testing.T) {
	clock := testutils.NewFakeClock(time.Unix(0, 0))
	var snapshots atomic.Int32
	portfolio := countingPortfolio{n: &snapshots}
	s := scheduler.New(clock, scheduler.Intervals{Portfolio: time.Second, Market: time.Hour}, testutils.StaticMarket{}, portfolio, zap.NewNop())

	e := &testutils.MockEmitter{IDVal: "s1", Closed: true}
	tasks := s.Attach(context.Background(), e)
	defer func() {
		for _, task := range tasks {
			task.Stop()
		}
	}()

	clock.Advance(time.Second)
	testutils.WaitFor(t, time.Second, func() bool { return snapshots.Load() == 1 }, "tick")
	require.Empty(t, e.Events())
}

func TestScheduler_EmptyMarketIsNotEmitted(t *testing.T) {
	clock := testutils.NewFakeClock(time.Unix(0, 0))
	var calls atomic.Int32
	market := countingMarket{n: &calls}
	s := scheduler.New(clock, scheduler.Intervals{Portfolio: time.Hour, Market: time.Second}, market, testutils.StaticPortfolio{}, zap.NewNop())

	e := &testutils.MockEmitter{IDVal: "s1"}
	tasks := s.Attach(context.Background(), e)
	defer func() {
		for _, task := range tasks {
			task.Stop()
		}
	}()

	clock.Advance(time.Second)
	testutils.WaitFor(t, time.Second, func() bool { return calls.Load() == 1 }, "tick")
	require.Empty(t, e.Events())
}

type countingPortfolio struct{ n *atomic.Int32 }

func (c countingPortfolio) Snapshot() (models.PortfolioSummary, []models.Position) {
	c.n.Add(1)
	return models.PortfolioSummary{}, nil
}

type countingMarket struct{ n *atomic.Int32 }

func (c countingMarket) MarketData() []models.MarketDataItem {
	c.n.Add(1)
	return nil
}
