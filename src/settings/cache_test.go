package settings

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"binarytrader/src/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettingsSource struct {
	readyAfter int32
	calls      atomic.Int32
	value      *model.BinarySettings
	started    chan struct{}
	once       sync.Once
}

func (f *fakeSettingsSource) BinarySettings() (*model.BinarySettings, bool) {
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	n := f.calls.Add(1)
	if f.readyAfter < 0 || n < f.readyAfter {
		return nil, false
	}
	return f.value, true
}

type fakeCatalog struct {
	mu           sync.Mutex
	durations    []model.Duration
	markets      []model.Market
	durationErrs []error
	marketErr    error
	durationHits int
	marketHits   int
}

func (f *fakeCatalog) GetDurations(ctx context.Context) ([]model.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durationHits++
	if len(f.durationErrs) > 0 {
		err := f.durationErrs[0]
		f.durationErrs = f.durationErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.durations, nil
}

func (f *fakeCatalog) GetMarkets(ctx context.Context) ([]model.Market, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marketHits++
	if f.marketErr != nil {
		return nil, f.marketErr
	}
	return f.markets, nil
}

func testSettings() *model.BinarySettings {
	return &model.BinarySettings{
		OrderTypes: map[model.OrderType]model.OrderTypeConfig{
			model.OrderTypeRiseFall: {Enabled: true, ProfitPercentage: 85, MinAmount: decimal.NewFromInt(1), MaxAmount: decimal.NewFromInt(1000)},
			model.OrderTypeHigherLower: {Enabled: true, ProfitPercentage: 80, BarrierLevels: []model.BarrierLevel{
				{ID: "near", ProfitPercentage: 90, Enabled: true},
				{ID: "far", ProfitPercentage: 120, Enabled: false},
			}},
			model.OrderTypeTouchNoTouch: {Enabled: false, ProfitPercentage: 150},
			model.OrderTypeCallPut: {Enabled: true, ProfitPercentage: 75, StrikeLevels: []model.StrikeLevel{
				{ID: "atm", ProfitPercentage: 78, Enabled: true},
			}},
			model.OrderTypeTurbo: {Enabled: true, ProfitPercentage: 70, BarrierLevels: []model.BarrierLevel{
				{ID: "t1", ProfitPercentage: 95, Enabled: true},
			}},
		},
	}
}

func fastConfig() Config {
	return Config{TTL: time.Minute, PollInterval: time.Millisecond, PollTimeout: 200 * time.Millisecond}
}

func TestFetchSettingsPollsUntilAvailable(t *testing.T) {
	src := &fakeSettingsSource{readyAfter: 4, value: testSettings()}
	c := NewCache(fastConfig(), src, &fakeCatalog{}, nil)

	s := c.FetchSettings(context.Background())
	require.NotNil(t, s)
	assert.GreaterOrEqual(t, src.calls.Load(), int32(4))

	before := src.calls.Load()
	assert.Same(t, s, c.FetchSettings(context.Background()), "fresh cache must be served")
	assert.Equal(t, before, src.calls.Load())
}

func TestFetchSettingsTimeoutLeavesNil(t *testing.T) {
	src := &fakeSettingsSource{readyAfter: -1}
	cfg := fastConfig()
	cfg.PollTimeout = 20 * time.Millisecond
	c := NewCache(cfg, src, &fakeCatalog{}, nil)

	assert.Nil(t, c.FetchSettings(context.Background()))
	assert.Nil(t, c.Settings())
	assert.Empty(t, c.EnabledOrderTypes())
}

func TestFetchSettingsConcurrentCallIsNoop(t *testing.T) {
	src := &fakeSettingsSource{readyAfter: -1, started: make(chan struct{})}
	cfg := fastConfig()
	cfg.PollTimeout = 300 * time.Millisecond
	c := NewCache(cfg, src, &fakeCatalog{}, nil)

	done := make(chan struct{})
	go func() {
		c.FetchSettings(context.Background())
		close(done)
	}()
	<-src.started

	start := time.Now()
	assert.Nil(t, c.FetchSettings(context.Background()))
	assert.Less(t, time.Since(start), 150*time.Millisecond)
	<-done
}

func TestFetchDurationsCacheAndLatch(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cat := &fakeCatalog{
		durations:    []model.Duration{{ID: "d1", Duration: 1, Enabled: true}, {ID: "d5", Duration: 5, Enabled: false}},
		durationErrs: []error{errors.New("license invalid"), nil},
	}
	c := NewCache(fastConfig(), nil, cat, func() time.Time { return now })

	_, err := c.FetchDurations(context.Background())
	require.Error(t, err)
	assert.True(t, c.Failed(KeyDurations))

	_, err = c.FetchDurations(context.Background())
	assert.ErrorIs(t, err, ErrFetchSuppressed)
	assert.Equal(t, 1, cat.durationHits)

	ds, err := c.ForceRefreshDurations(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds, 2)
	assert.False(t, c.Failed(KeyDurations))
	assert.Equal(t, 2, cat.durationHits)

	_, err = c.FetchDurations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, cat.durationHits, "fresh entry served from cache")

	now = now.Add(time.Minute)
	_, err = c.FetchDurations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, cat.durationHits, "expired entry refetched")

	d, ok := c.FindDuration(1)
	assert.True(t, ok)
	assert.Equal(t, "d1", d.ID)
	_, ok = c.FindDuration(5)
	assert.False(t, ok, "disabled duration is not selectable")
}

func TestFetchMarketsLatchAndClear(t *testing.T) {
	cat := &fakeCatalog{marketErr: errors.New("down")}
	c := NewCache(fastConfig(), nil, cat, nil)

	_, err := c.FetchMarkets(context.Background())
	require.Error(t, err)
	_, err = c.FetchMarkets(context.Background())
	assert.ErrorIs(t, err, ErrFetchSuppressed)

	c.Clear()
	assert.False(t, c.Failed(KeyMarkets))
	cat.marketErr = nil
	cat.markets = []model.Market{{Symbol: "BTC/USDT", Status: true}}
	ms, err := c.FetchMarkets(context.Background())
	require.NoError(t, err)
	assert.Len(t, ms, 1)
	assert.Len(t, c.Markets(), 1)
}

func TestDerivedAccessors(t *testing.T) {
	src := &fakeSettingsSource{readyAfter: 1, value: testSettings()}
	c := NewCache(fastConfig(), src, &fakeCatalog{}, nil)
	require.NotNil(t, c.FetchSettings(context.Background()))

	assert.Equal(t, []model.OrderType{
		model.OrderTypeRiseFall, model.OrderTypeHigherLower, model.OrderTypeCallPut, model.OrderTypeTurbo,
	}, c.EnabledOrderTypes())

	levels := c.EnabledBarrierLevels(model.OrderTypeHigherLower)
	require.Len(t, levels, 1)
	assert.Equal(t, "near", levels[0].ID)
	assert.Nil(t, c.EnabledBarrierLevels(model.OrderTypeCallPut))
	assert.Len(t, c.EnabledStrikeLevels(), 1)

	cases := []struct {
		name    string
		t       model.OrderType
		barrier string
		strike  string
		want    float64
	}{
		{"base rise fall", model.OrderTypeRiseFall, "", "", 85},
		{"barrier override", model.OrderTypeHigherLower, "near", "", 90},
		{"disabled barrier ignored", model.OrderTypeHigherLower, "far", "", 80},
		{"strike override", model.OrderTypeCallPut, "", "atm", 78},
		{"strike not applicable to turbo", model.OrderTypeTurbo, "", "atm", 70},
		{"turbo barrier", model.OrderTypeTurbo, "t1", "", 95},
		{"barrier not applicable to call put", model.OrderTypeCallPut, "near", "", 75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.ProfitForSelection(tc.t, tc.barrier, tc.strike))
		})
	}

	off := false
	c.Settings().Global.Enabled = &off
	assert.Empty(t, c.EnabledOrderTypes())
}

func TestStaleKeys(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cat := &fakeCatalog{marketErr: errors.New("down")}
	src := &fakeSettingsSource{readyAfter: 1, value: testSettings()}
	c := NewCache(fastConfig(), src, cat, clock)

	assert.ElementsMatch(t, []string{KeySettings, KeyDurations, KeyMarkets}, c.StaleKeys())

	require.NotNil(t, c.FetchSettings(context.Background()))
	_, err := c.FetchDurations(context.Background())
	require.NoError(t, err)
	_, err = c.FetchMarkets(context.Background())
	require.Error(t, err)
	assert.Empty(t, c.StaleKeys(), "fresh entries and latched failures are skipped")

	now = now.Add(time.Minute)
	assert.ElementsMatch(t, []string{KeySettings, KeyDurations}, c.StaleKeys())
}

type reloadingSource struct {
	mu      sync.Mutex
	value   *model.BinarySettings
	next    *model.BinarySettings
	resets  int
	reloads int
}

func (r *reloadingSource) BinarySettings() (*model.BinarySettings, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.value != nil
}

func (r *reloadingSource) Reset() {
	r.mu.Lock()
	r.resets++
	r.value = nil
	r.mu.Unlock()
}

func (r *reloadingSource) LoadAsync(ctx context.Context) {
	r.mu.Lock()
	r.reloads++
	r.value = r.next
	r.mu.Unlock()
}

func TestFetchSettingsReloadsSourceAfterExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := testSettings()
	second := testSettings()
	src := &reloadingSource{value: first, next: second}
	c := NewCache(fastConfig(), src, &fakeCatalog{}, func() time.Time { return now })

	assert.Same(t, first, c.FetchSettings(context.Background()))
	assert.Equal(t, 0, src.reloads, "first load reads what the source already has")

	now = now.Add(time.Minute)
	assert.Same(t, second, c.FetchSettings(context.Background()))
	assert.Equal(t, 1, src.resets)
	assert.Equal(t, 1, src.reloads)

	now = now.Add(time.Minute)
	src.next = nil
	assert.Same(t, second, c.FetchSettings(context.Background()), "failed reload keeps the last value")
	assert.Equal(t, 2, src.reloads)

	assert.Nil(t, c.ForceRefreshSettings(context.Background()), "force refresh drops the entry")
	assert.Equal(t, 3, src.reloads)
}
