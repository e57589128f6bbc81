package binary

import (
	"context"
	"testing"
	"time"

	"binarytrader/src/connectors"
	"binarytrader/src/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiseFallEndToEnd(t *testing.T) {
	h := newHarness(t)
	h.init(t)
	h.store.UpdatePrice("BTC/USDT", 50000)
	o := h.place(t, riseOrder(100))
	require.Equal(t, 50000.0, o.EntryPrice)
	require.Equal(t, 85.0, o.ProfitPercentage)

	h.push.emit(connectors.PushMessage{Type: connectors.PushTicker, Symbol: "BTC/USDT", Price: 50100})
	h.store.Tick(t0.Add(time.Second))

	active := h.store.ActiveOrders()
	require.Len(t, active, 1)
	assert.Equal(t, "85", active[0].PnL.String())
	assert.True(t, active[0].Winning)
	assert.Equal(t, 50100.0, active[0].CurrentPrice)

	closePrice := 50100.0
	h.push.emit(connectors.PushMessage{Type: connectors.PushOrderCompleted, Order: &connectors.OrderPayload{
		ID: o.ID, Symbol: "BTC/USDT", Status: "WIN", ClosePrice: &closePrice, Amount: decimal.NewFromInt(100),
	}})
	h.drain()

	assert.Empty(t, h.store.ActiveOrders())
	history := h.store.CompletedOrders()
	require.Len(t, history, 1)
	assert.Equal(t, model.OrderStatusWin, history[0].Status)
	assert.Equal(t, "85", history[0].Profit.String())
	assert.Equal(t, 50100.0, history[0].ClosePrice)
	assert.Equal(t, "10085", h.store.Balance().String(), "demo win credits stake plus profit")
}

func TestHigherLowerEndToEnd(t *testing.T) {
	h := newHarness(t)
	h.init(t)
	h.store.UpdatePrice("BTC/USDT", 49500)
	o := h.place(t, PlaceOrderInput{
		Type:          model.OrderTypeHigherLower,
		Side:          model.SideLower,
		Amount:        decimal.NewFromInt(50),
		ExpiryMinutes: 1,
		Barrier:       ptr(49000),
	})

	h.store.UpdatePrice("BTC/USDT", 48900)
	h.store.Tick(t0.Add(time.Second))
	active := h.store.ActiveOrders()
	require.Len(t, active, 1)
	assert.Equal(t, "42.5", active[0].PnL.String())
	assert.True(t, active[0].Winning)

	h.clock.Set(o.ExpiryTime.Add(-5 * time.Second))
	_, err := h.store.CancelOrder(context.Background(), o.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCancelWindow)
	assert.Equal(t, 0, h.backend.cancels)
	assert.Len(t, h.store.ActiveOrders(), 1)
}

func TestTickCountdownAndSoundCues(t *testing.T) {
	h := newHarness(t)
	h.init(t)
	o := h.place(t, riseOrder(10))
	expiry := o.ExpiryTime

	steps := []time.Duration{
		-10 * time.Second,
		-5500 * time.Millisecond,
		-5100 * time.Millisecond,
		-4 * time.Second,
		-3 * time.Second,
		-2500 * time.Millisecond,
		-2 * time.Second,
		-1500 * time.Millisecond,
		-1200 * time.Millisecond,
		-500 * time.Millisecond,
	}
	var countdowns []string
	for _, d := range steps {
		h.store.Tick(expiry.Add(d))
		h.clock.Set(expiry.Add(d))
		countdowns = append(countdowns, h.store.ActiveOrders()[0].Countdown)
	}

	assert.Equal(t, []SoundCue{SoundTick, SoundTick, SoundTick, SoundTick, SoundFinal}, h.sound.cues)
	assert.Equal(t, "00:10", countdowns[0])
	assert.Equal(t, "00:05", countdowns[1])
	assert.Equal(t, "00:00", countdowns[len(countdowns)-1])
}

func TestSoundDisabled(t *testing.T) {
	h := newHarness(t, func(c *Config, d *Deps) { c.SoundEnabled = false })
	h.init(t)
	o := h.place(t, riseOrder(10))
	h.store.Tick(o.ExpiryTime.Add(-3 * time.Second))
	assert.Empty(t, h.sound.cues)
}

func TestTickHistoryAndTrending(t *testing.T) {
	h := newHarness(t, func(c *Config, d *Deps) { c.HistorySize = 3 })
	h.init(t)
	h.store.UpdatePrice("BTC/USDT", 50000)
	h.place(t, riseOrder(100))

	now := t0
	tick := func(price float64) ActiveOrder {
		now = now.Add(time.Second)
		h.store.UpdatePrice("BTC/USDT", price)
		h.store.Tick(now)
		h.clock.Set(now)
		return h.store.ActiveOrders()[0]
	}

	a := tick(49900)
	assert.Equal(t, "-100", a.PnL.String())
	assert.False(t, a.Trending)

	a = tick(50100)
	assert.True(t, a.Trending, "moving into profit sets the flag")

	a = tick(50200)
	assert.False(t, a.Trending, "flag clears one second later")

	a = tick(50300)
	require.Len(t, a.History, 3)
	assert.Equal(t, []string{"85", "85", "85"}, []string{a.History[0].String(), a.History[1].String(), a.History[2].String()})
}

func TestTickFallsBackToLastGlobalPrice(t *testing.T) {
	h := newHarness(t)
	h.init(t)
	o := h.place(t, riseOrder(100))
	require.Equal(t, 50000.0, o.EntryPrice)

	h.store.UpdatePrice("XRPUSDT", 50500)
	h.store.Tick(t0.Add(time.Second))
	assert.Equal(t, 50500.0, h.store.ActiveOrders()[0].CurrentPrice)
}

func TestSnapshotEligibilityFlags(t *testing.T) {
	h := newHarness(t)
	h.init(t)
	o := h.place(t, riseOrder(100))

	h.clock.Set(o.CreatedAt.Add(29 * time.Second))
	a := h.store.ActiveOrders()[0]
	assert.True(t, a.CanCancel)
	assert.False(t, a.CanCashOut)

	h.clock.Set(o.CreatedAt.Add(30 * time.Second))
	a = h.store.ActiveOrders()[0]
	assert.True(t, a.CanCashOut)
	assert.Equal(t, 10*time.Second, a.Remaining)

	h.clock.Set(o.ExpiryTime.Add(-9999 * time.Millisecond))
	a = h.store.ActiveOrders()[0]
	assert.False(t, a.CanCancel)
	assert.False(t, a.CanCashOut)
}
