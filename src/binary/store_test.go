package binary

import (
	"context"
	"sync"
	"testing"
	"time"

	"binarytrader/src/connectors"
	"binarytrader/src/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.init(t)
	require.NoError(t, h.store.Init(context.Background()))

	assert.Equal(t, 1, h.backend.durationHit)
	assert.Equal(t, 1, h.backend.marketHit)
	assert.Equal(t, "BTC/USDT", h.store.CurrentSymbol(), "first tradable market is selected")
	assert.Equal(t, "777", h.store.Balances().Real.String())
	assert.Equal(t, "10000", h.store.Balance().String())
	assert.ElementsMatch(t, []string{"order:BTC/USDT", "ticker:BTC/USDT"}, h.push.symbols())
	assert.Equal(t, []string{"BTC/USDT"}, h.tracker.symbols)
	assert.True(t, h.store.Initialized())
}

func TestInitConcurrentCallsShareOneLoad(t *testing.T) {
	h := newHarness(t)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.store.Init(context.Background())
		}()
	}
	wg.Wait()
	h.drain()
	assert.Equal(t, 1, h.backend.durationHit)
}

func TestInitAppliesPreferences(t *testing.T) {
	h := newHarness(t)
	h.prefs.row = &model.Preference{
		Profile:       "default",
		Symbol:        "SOL/USDT",
		TradingMode:   "real",
		DemoBalance:   decimal.NewFromInt(500),
		ExpiryMinutes: 2,
		OrderType:     "TURBO",
		Timeframe:     "5m",
	}
	h.init(t)

	snap := h.store.Snapshot()
	assert.Equal(t, "SOL/USDT", snap.Symbol)
	assert.Equal(t, model.TradingModeReal, snap.Mode)
	assert.Equal(t, "500", snap.Balances.Demo.String())
	assert.Equal(t, "777", snap.Balance.String())
	assert.Equal(t, Selection{OrderType: model.OrderTypeTurbo, ExpiryMinutes: 2, Timeframe: "5m"}, snap.Selection)
}

func TestTeardownIsIdempotentAndClears(t *testing.T) {
	h := newHarness(t)
	h.init(t)
	h.store.every("extra", time.Hour, func(time.Time) {})
	require.Equal(t, 2, h.push.count())
	require.NotNil(t, h.store.Settings.Settings())

	h.store.Teardown()
	h.store.Teardown()

	assert.Equal(t, 0, h.push.count())
	assert.Equal(t, 0, h.store.TimerCount())
	assert.Nil(t, h.store.Settings.Settings())
	assert.Nil(t, h.store.Settings.Durations())
	assert.False(t, h.store.Initialized())
	assert.Empty(t, h.store.Snapshot().Active)

	h.init(t)
	assert.Equal(t, 2, h.backend.durationHit, "fresh session refetches reference data")
}

func TestTimersDoNotStack(t *testing.T) {
	h := newHarness(t)
	h.store.every("tracker", time.Hour, func(time.Time) {})
	h.store.every("tracker", time.Hour, func(time.Time) {})
	assert.Equal(t, 1, h.store.TimerCount())
}

func TestSymbolSwitchDiscardsLateResponse(t *testing.T) {
	h := newHarness(t)
	h.init(t)

	future := connectors.Timestamp{Time: t0.Add(5 * time.Minute)}
	h.backend.open["ETH"] = []connectors.OrderPayload{{ID: "eth-1", Symbol: "ETH/USDT", Side: "RISE", Type: "RISE_FALL", Status: "PENDING", Amount: decimal.NewFromInt(1), ClosedAt: future}}
	h.backend.open["SOL"] = []connectors.OrderPayload{{ID: "sol-1", Symbol: "SOL/USDT", Side: "FALL", Type: "RISE_FALL", Status: "PENDING", Amount: decimal.NewFromInt(1), ClosedAt: future}}

	ethStarted := make(chan struct{})
	releaseEth := make(chan struct{})
	var once sync.Once
	h.backend.mu.Lock()
	h.backend.listHook = func(q connectors.OrderQuery) {
		if q.Currency == "ETH" && q.Status == connectors.OrderQueryOpen {
			once.Do(func() { close(ethStarted) })
			<-releaseEth
		}
	}
	h.backend.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = h.store.SetCurrentSymbol(context.Background(), "ETH/USDT")
		close(done)
	}()
	<-ethStarted

	require.NoError(t, h.store.SetCurrentSymbol(context.Background(), "SOL/USDT"))
	close(releaseEth)
	<-done

	active := h.store.ActiveOrders()
	require.Len(t, active, 1)
	assert.Equal(t, "sol-1", active[0].ID)
	assert.Equal(t, "SOL/USDT", h.store.CurrentSymbol())
	assert.ElementsMatch(t, []string{"order:SOL/USDT", "ticker:SOL/USDT"}, h.push.symbols())
	assert.Equal(t, "SOL/USDT", h.prefs.last().Symbol)
}

func TestLoadMoreCompletedOrders(t *testing.T) {
	h := newHarness(t, func(c *Config, d *Deps) { c.PageSize = 2 })
	h.backend.setClosed("BTC",
		connectors.OrderPayload{ID: "c1", Symbol: "BTC/USDT", Status: "WIN", Amount: decimal.NewFromInt(10)},
		connectors.OrderPayload{ID: "c2", Symbol: "BTC/USDT", Status: "LOSS", Amount: decimal.NewFromInt(10)},
		connectors.OrderPayload{ID: "c3", Symbol: "BTC/USDT", Status: "CANCELED", Amount: decimal.NewFromInt(10)},
	)
	h.init(t)
	require.Len(t, h.store.CompletedOrders(), 2)
	require.True(t, h.store.HasMoreCompleted())

	require.NoError(t, h.store.LoadMoreCompletedOrders(context.Background()))
	history := h.store.CompletedOrders()
	require.Len(t, history, 3)
	assert.Equal(t, model.OrderStatusCancelled, history[2].Status)
	assert.False(t, h.store.HasMoreCompleted())

	calls := h.backend.closedLists()
	before := h.store.Snapshot()
	for i := 0; i < 3; i++ {
		require.NoError(t, h.store.LoadMoreCompletedOrders(context.Background()))
	}
	assert.Equal(t, calls, h.backend.closedLists(), "no request once history is exhausted")
	assert.Equal(t, before.Completed, h.store.Snapshot().Completed)
}

func TestSetTradingModeSyncsWallet(t *testing.T) {
	h := newHarness(t)
	h.init(t)
	hits := h.backend.walletCount()
	h.backend.mu.Lock()
	h.backend.wallet = decimal.NewFromInt(1500)
	h.backend.mu.Unlock()

	h.store.SetTradingMode(context.Background(), model.TradingModeReal)
	h.drain()

	assert.Equal(t, hits+1, h.backend.walletCount())
	assert.Equal(t, "1500", h.store.Balance().String())
	assert.Equal(t, "real", h.prefs.last().TradingMode)
}

func TestSnapshotReturnsCopies(t *testing.T) {
	h := newHarness(t)
	h.init(t)
	h.store.UpdatePrice("BTC/USDT", 50000)
	h.place(t, riseOrder(100))

	snap := h.store.Snapshot()
	require.Len(t, snap.Active, 1)
	snap.Active[0].ProfitPercentage = 1
	snap.Active = nil

	again := h.store.Snapshot()
	require.Len(t, again.Active, 1)
	assert.Equal(t, 85.0, again.Active[0].ProfitPercentage)
}
