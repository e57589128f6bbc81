package binary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"binarytrader/src/connectors"
	"binarytrader/src/model"
	"binarytrader/src/settings"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 20, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type placed struct {
	req connectors.PlaceOrderRequest
	key string
}

type fakeBackend struct {
	mu sync.Mutex

	markets   []model.Market
	durations []model.Duration
	open      map[string][]connectors.OrderPayload // by currency
	closed    map[string][]connectors.OrderPayload
	wallet    decimal.Decimal

	entryPrice float64
	ackSide    string
	placeErr   error
	cancelErr  error
	closeErr   error
	cancelFee  decimal.Decimal
	cashout    decimal.Decimal

	// listHook runs before ListOrders answers, outside the lock.
	listHook func(q connectors.OrderQuery)
	// placeGate, when set, holds PlaceOrder until it is closed.
	placeGate chan struct{}

	placed      []placed
	lists       []connectors.OrderQuery
	cancels     int
	closes      int
	walletHits  int
	durationHit int
	marketHit   int
	nextID      int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		markets: []model.Market{
			{ID: "m0", Symbol: "ETH/USDT", Currency: "ETH", Pair: "USDT", Status: false},
			{ID: "m1", Symbol: "BTC/USDT", Currency: "BTC", Pair: "USDT", Status: true},
			{ID: "m2", Symbol: "SOL/USDT", Currency: "SOL", Pair: "USDT", Status: true},
		},
		durations: []model.Duration{
			{ID: "d1", Duration: 1, Enabled: true, ProfitPercentageRiseFall: 85, ProfitPercentageHigherLower: 85,
				ProfitPercentageTouchNoTouch: 150, ProfitPercentageCallPut: 80, ProfitPercentageTurbo: 70},
			{ID: "d2", Duration: 2, Enabled: true, ProfitPercentageRiseFall: 82, ProfitPercentageHigherLower: 82},
			{ID: "d5", Duration: 5, Enabled: false, ProfitPercentageRiseFall: 90},
		},
		open:       map[string][]connectors.OrderPayload{},
		closed:     map[string][]connectors.OrderPayload{},
		wallet:     decimal.NewFromInt(777),
		entryPrice: 50000,
	}
}

func (f *fakeBackend) GetMarkets(ctx context.Context) ([]model.Market, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marketHit++
	return f.markets, nil
}

func (f *fakeBackend) GetDurations(ctx context.Context) ([]model.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durationHit++
	return append([]model.Duration(nil), f.durations...), nil
}

func (f *fakeBackend) PlaceOrder(ctx context.Context, req connectors.PlaceOrderRequest, key string) (*connectors.OrderPayload, error) {
	f.mu.Lock()
	gate := f.placeGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, placed{req: req, key: key})
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	f.nextID++
	side := req.Side
	if f.ackSide != "" {
		side = f.ackSide
	}
	return &connectors.OrderPayload{
		ID:             fmt.Sprintf("o-%d", f.nextID),
		Symbol:         req.Currency + "/" + req.Pair,
		Side:           side,
		Type:           req.Type,
		Amount:         decimal.NewFromFloat(req.Amount),
		Price:          f.entryPrice,
		Barrier:        req.Barrier,
		StrikePrice:    req.StrikePrice,
		PayoutPerPoint: req.PayoutPerPoint,
		ClosedAt:       req.ClosedAt,
	}, nil
}

func (f *fakeBackend) ListOrders(ctx context.Context, q connectors.OrderQuery) (*connectors.OrderList, error) {
	f.mu.Lock()
	f.lists = append(f.lists, q)
	hook := f.listHook
	f.mu.Unlock()
	if hook != nil {
		hook(q)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	src := f.open[q.Currency]
	if q.Status == connectors.OrderQueryClosed {
		src = f.closed[q.Currency]
	}
	total := len(src)
	start := q.Offset
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	page := append([]connectors.OrderPayload(nil), src[start:end]...)
	return &connectors.OrderList{
		Orders:     page,
		Pagination: connectors.Pagination{Total: total, Limit: q.Limit, Offset: q.Offset, HasMore: end < total},
	}, nil
}

func (f *fakeBackend) CancelOrder(ctx context.Context, id string, isDemo bool) (*connectors.CancelResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	return &connectors.CancelResult{RefundAmount: decimal.Zero, CancellationFee: f.cancelFee}, nil
}

func (f *fakeBackend) CloseOrder(ctx context.Context, id string, isDemo bool, currentPrice float64) (*connectors.CashOutResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	if f.closeErr != nil {
		return nil, f.closeErr
	}
	return &connectors.CashOutResult{CashoutAmount: f.cashout}, nil
}

func (f *fakeBackend) GetWalletBalance(ctx context.Context, walletType, currency string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.walletHits++
	return f.wallet, nil
}

func (f *fakeBackend) setDurationEnabled(id string, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.durations {
		if f.durations[i].ID == id {
			f.durations[i].Enabled = enabled
		}
	}
}

func (f *fakeBackend) durationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.durationHit
}

func (f *fakeBackend) placedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.placed)
}

func (f *fakeBackend) walletCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.walletHits
}

func (f *fakeBackend) closedLists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.lists {
		if q.Status == connectors.OrderQueryClosed {
			n++
		}
	}
	return n
}

func (f *fakeBackend) setClosed(currency string, orders ...connectors.OrderPayload) {
	f.mu.Lock()
	f.closed[currency] = orders
	f.mu.Unlock()
}

type staticSettings struct{ s *model.BinarySettings }

func (st staticSettings) BinarySettings() (*model.BinarySettings, bool) { return st.s, st.s != nil }

func testBinarySettings() *model.BinarySettings {
	return &model.BinarySettings{
		OrderTypes: map[model.OrderType]model.OrderTypeConfig{
			model.OrderTypeRiseFall:     {Enabled: true, ProfitPercentage: 85, MinAmount: decimal.NewFromInt(1), MaxAmount: decimal.NewFromInt(1000)},
			model.OrderTypeHigherLower:  {Enabled: true, ProfitPercentage: 85},
			model.OrderTypeTouchNoTouch: {Enabled: false, ProfitPercentage: 150},
			model.OrderTypeCallPut:      {Enabled: true, ProfitPercentage: 80},
			model.OrderTypeTurbo:        {Enabled: true, ProfitPercentage: 70},
		},
	}
}

type fakeListener struct {
	sub connectors.Subscription
	h   connectors.PushHandler
}

type fakeMessenger struct {
	mu       sync.Mutex
	handlers map[int]fakeListener
	next     int
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{handlers: map[int]fakeListener{}}
}

func (m *fakeMessenger) Subscribe(sub connectors.Subscription, h connectors.PushHandler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.handlers[id] = fakeListener{sub: sub, h: h}
	return func() {
		m.mu.Lock()
		delete(m.handlers, id)
		m.mu.Unlock()
	}
}

func (m *fakeMessenger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

func (m *fakeMessenger) symbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.handlers {
		out = append(out, e.sub.Type+":"+e.sub.Symbol)
	}
	return out
}

// emit delivers msg to listeners of the matching kind, like the push channel does.
func (m *fakeMessenger) emit(msg connectors.PushMessage) {
	kind := connectors.SubscriptionOrder
	if msg.Type == connectors.PushTicker {
		kind = connectors.SubscriptionTicker
	}
	m.mu.Lock()
	var hs []connectors.PushHandler
	for _, e := range m.handlers {
		if e.sub.Type == kind {
			hs = append(hs, e.h)
		}
	}
	m.mu.Unlock()
	for _, h := range hs {
		h(msg)
	}
}

type fakePrefs struct {
	mu    sync.Mutex
	row   *model.Preference
	saves int
	err   error
}

func (p *fakePrefs) Load(ctx context.Context, profile string) (*model.Preference, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	if p.row == nil {
		return nil, nil
	}
	cp := *p.row
	return &cp, nil
}

func (p *fakePrefs) Save(ctx context.Context, pref *model.Preference) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	cp := *pref
	p.row = &cp
	return nil
}

func (p *fakePrefs) last() model.Preference {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.row == nil {
		return model.Preference{}
	}
	return *p.row
}

type recordingPlayer struct {
	mu   sync.Mutex
	cues []SoundCue
}

func (r *recordingPlayer) Play(c SoundCue) {
	r.mu.Lock()
	r.cues = append(r.cues, c)
	r.mu.Unlock()
}

type recordingTracker struct {
	mu      sync.Mutex
	symbols []string
}

func (r *recordingTracker) Track(symbols ...string) {
	r.mu.Lock()
	r.symbols = append([]string(nil), symbols...)
	r.mu.Unlock()
}

type harness struct {
	store   *Store
	backend *fakeBackend
	push    *fakeMessenger
	prefs   *fakePrefs
	sound   *recordingPlayer
	tracker *recordingTracker
	clock   *testClock
}

func newHarness(t *testing.T, mutate ...func(*Config, *Deps)) *harness {
	t.Helper()
	h := &harness{
		backend: newFakeBackend(),
		push:    newFakeMessenger(),
		prefs:   &fakePrefs{},
		sound:   &recordingPlayer{},
		tracker: &recordingTracker{},
		clock:   &testClock{t: t0},
	}
	cfg := DefaultConfig()
	cfg.TickInterval = 0
	cfg.UserID = "u-1"
	deps := Deps{
		Backend:        h.backend,
		Settings:       staticSettings{testBinarySettings()},
		Messenger:      h.push,
		Preferences:    h.prefs,
		Sound:          h.sound,
		Poller:         h.tracker,
		Now:            h.clock.Now,
		SettingsConfig: settings.Config{TTL: time.Minute, PollInterval: time.Millisecond, PollTimeout: 20 * time.Millisecond},
	}
	for _, m := range mutate {
		m(&cfg, &deps)
	}
	h.store = New(cfg, deps)
	t.Cleanup(h.store.Teardown)
	return h
}

func (h *harness) init(t *testing.T) {
	t.Helper()
	require.NoError(t, h.store.Init(context.Background()))
	h.drain()
}

// drain waits for background work kicked off by the store.
func (h *harness) drain() {
	h.store.bg.Wait()
}

func (h *harness) place(t *testing.T, in PlaceOrderInput) model.Order {
	t.Helper()
	o, err := h.store.PlaceOrder(context.Background(), in)
	require.NoError(t, err)
	h.drain()
	return o
}

func ptr(v float64) *float64 { return &v }

func riseOrder(amount int64) PlaceOrderInput {
	return PlaceOrderInput{
		Type:          model.OrderTypeRiseFall,
		Side:          model.SideRise,
		Amount:        decimal.NewFromInt(amount),
		ExpiryMinutes: 1,
	}
}

var errBoom = errors.New("boom")

func keyParts(key string) []string {
	return strings.Split(key, "-")
}
