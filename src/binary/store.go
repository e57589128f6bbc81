package binary

import (
	"context"
	"sync"
	"time"

	"binarytrader/src/connectors"
	"binarytrader/src/market"
	"binarytrader/src/model"
	"binarytrader/src/settings"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Backend is the REST contract the store depends on.
type Backend interface {
	GetMarkets(ctx context.Context) ([]model.Market, error)
	GetDurations(ctx context.Context) ([]model.Duration, error)
	PlaceOrder(ctx context.Context, req connectors.PlaceOrderRequest, idempotencyKey string) (*connectors.OrderPayload, error)
	ListOrders(ctx context.Context, q connectors.OrderQuery) (*connectors.OrderList, error)
	CancelOrder(ctx context.Context, id string, isDemo bool) (*connectors.CancelResult, error)
	CloseOrder(ctx context.Context, id string, isDemo bool, currentPrice float64) (*connectors.CashOutResult, error)
	GetWalletBalance(ctx context.Context, walletType, currency string) (decimal.Decimal, error)
}

// Messenger is the push channel.
type Messenger interface {
	Subscribe(sub connectors.Subscription, handler connectors.PushHandler) func()
}

// PreferenceStore persists the UI preference subset.
type PreferenceStore interface {
	Load(ctx context.Context, profile string) (*model.Preference, error)
	Save(ctx context.Context, pref *model.Preference) error
}

// PriceTracker is told which symbols to poll prices for.
type PriceTracker interface {
	Track(symbols ...string)
}

type Deps struct {
	Backend     Backend
	Settings    settings.SettingsSource
	Messenger   Messenger
	Preferences PreferenceStore
	Sound       SoundPlayer
	Poller      PriceTracker
	Now         func() time.Time

	// SettingsConfig overrides the SETTINGS_* env values when non-zero.
	SettingsConfig settings.Config
}

// Selection is the order form state that survives restarts.
type Selection struct {
	OrderType     model.OrderType `json:"orderType"`
	ExpiryMinutes int             `json:"expiryMinutes"`
	Timeframe     string          `json:"timeframe"`
}

type pendingSettlement struct {
	order   model.Order
	expired time.Time
}

// Store owns every piece of binary trading state for one session. All
// mutation goes through its methods; network calls run outside the lock and
// apply their results atomically when they return.
type Store struct {
	cfg       Config
	backend   Backend
	messenger Messenger
	prefs     PreferenceStore
	sound     SoundPlayer
	poller    PriceTracker
	now       func() time.Time
	log       *logger.Entry

	Settings *settings.Cache
	Markets  *market.Resolver
	Prices   *market.PriceBook

	refetch *rate.Limiter
	bg      sync.WaitGroup

	mu           sync.Mutex
	runCtx       context.Context
	runCancel    context.CancelFunc
	initialized  bool
	initializing bool
	tearingDown  bool
	refreshing   bool

	symbol    string
	mode      model.TradingMode
	balances  model.Balances
	selection Selection

	active     []*trackedOrder
	pending    map[string]pendingSettlement
	lastPlayed map[string]int

	completed       []model.CompletedOrder
	completedTotal  int
	completedLoaded int
	hasMore         bool
	loadingMore     bool

	fetchGen uint64
	cleanups map[string]func()
	timers   map[string]context.CancelFunc
}

func New(cfg Config, deps Deps) *Store {
	def := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = def.HistorySize
	}
	if cfg.ExpiryBoundary <= 0 {
		cfg.ExpiryBoundary = def.ExpiryBoundary
	}
	if cfg.SettlementRefetch <= 0 {
		cfg.SettlementRefetch = def.SettlementRefetch
	}
	if cfg.WalletType == "" {
		cfg.WalletType = def.WalletType
	}
	if cfg.Profile == "" {
		cfg.Profile = def.Profile
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	sound := deps.Sound
	if sound == nil {
		sound = NewLogPlayer()
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	s := &Store{
		cfg:        cfg,
		backend:    deps.Backend,
		messenger:  deps.Messenger,
		prefs:      deps.Preferences,
		sound:      sound,
		poller:     deps.Poller,
		now:        now,
		log:        logger.WithField("component", "binary_store"),
		Markets:    market.NewResolver(nil),
		Prices:     market.NewPriceBook(),
		refetch:    rate.NewLimiter(rate.Every(cfg.SettlementRefetch), 1),
		runCtx:     runCtx,
		runCancel:  runCancel,
		mode:       model.TradingModeDemo,
		balances:   model.Balances{Demo: cfg.DemoBalance},
		selection:  Selection{OrderType: model.OrderTypeRiseFall, ExpiryMinutes: 1},
		pending:    map[string]pendingSettlement{},
		lastPlayed: map[string]int{},
		cleanups:   map[string]func(){},
		timers:     map[string]context.CancelFunc{},
	}
	settingsCfg := deps.SettingsConfig
	if settingsCfg == (settings.Config{}) {
		settingsCfg = settings.GetConfig()
	}
	s.Settings = settings.NewCache(settingsCfg, deps.Settings, deps.Backend, now)
	return s
}

// Init loads preferences, reference data and the current symbol's orders,
// subscribes to the push channel and starts the tracker. Calls after the
// first, or while the first is running, are no-ops.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized || s.initializing {
		s.mu.Unlock()
		return nil
	}
	s.initializing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.initializing = false
		s.mu.Unlock()
	}()

	s.loadPreferences(ctx)

	var markets []model.Market
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Settings.FetchSettings(gctx)
		return nil
	})
	g.Go(func() error {
		if _, err := s.Settings.FetchDurations(gctx); err != nil {
			s.log.WithError(err).Warn("durations unavailable")
		}
		return nil
	})
	g.Go(func() error {
		ms, err := s.Settings.FetchMarkets(gctx)
		if err != nil {
			s.log.WithError(err).Warn("markets unavailable")
		}
		markets = ms
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.Markets.SetMarkets(markets)

	s.mu.Lock()
	if s.symbol == "" {
		if best := market.SelectBestMarket(markets); best != nil {
			s.symbol = best.Symbol
		}
	}
	symbol := s.symbol
	s.fetchGen++
	gen := s.fetchGen
	s.mu.Unlock()

	s.subscribe(symbol)
	if symbol != "" {
		s.loadSymbolOrders(ctx, symbol, gen)
	}
	if err := s.SyncWallet(ctx); err != nil {
		s.log.WithError(err).Warn("wallet sync failed")
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	if s.cfg.TickInterval > 0 {
		s.every("tracker", s.cfg.TickInterval, s.Tick)
	}

	s.log.WithFields(map[string]interface{}{
		"symbol":  symbol,
		"mode":    s.Mode(),
		"markets": len(markets),
	}).Info("binary store initialized")
	return nil
}

// Teardown stops timers, drops push listeners and clears caches. It is idempotent.
func (s *Store) Teardown() {
	s.mu.Lock()
	if s.tearingDown {
		s.mu.Unlock()
		return
	}
	s.tearingDown = true
	cleanups := s.cleanups
	s.cleanups = map[string]func(){}
	timers := s.timers
	s.timers = map[string]context.CancelFunc{}
	cancel := s.runCancel
	s.mu.Unlock()

	for _, stop := range timers {
		stop()
	}
	for _, fn := range cleanups {
		fn()
	}
	cancel()
	s.bg.Wait()

	s.Settings.Clear()
	s.Prices.Clear()
	s.Markets.SetMarkets(nil)

	s.mu.Lock()
	s.runCtx, s.runCancel = context.WithCancel(context.Background())
	s.active = nil
	s.pending = map[string]pendingSettlement{}
	s.lastPlayed = map[string]int{}
	s.completed = nil
	s.completedTotal = 0
	s.completedLoaded = 0
	s.hasMore = false
	s.loadingMore = false
	s.fetchGen++
	s.initialized = false
	s.tearingDown = false
	s.mu.Unlock()

	s.log.Info("binary store torn down")
}

// register replaces the cleanup stored under name, running the old one first.
func (s *Store) register(name string, fn func()) {
	s.mu.Lock()
	old := s.cleanups[name]
	s.cleanups[name] = fn
	s.mu.Unlock()
	if old != nil {
		old()
	}
}

func (s *Store) release(name string) {
	s.mu.Lock()
	fn := s.cleanups[name]
	delete(s.cleanups, name)
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// every runs fn on a fixed interval. An existing timer with the same name is
// stopped first, so re-registering never stacks tickers.
func (s *Store) every(name string, interval time.Duration, fn func(time.Time)) {
	s.mu.Lock()
	if stop, ok := s.timers[name]; ok {
		stop()
	}
	ctx, cancel := context.WithCancel(s.runCtx)
	s.timers[name] = cancel
	s.mu.Unlock()

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(s.now())
			}
		}
	}()
}

// TimerCount reports the running named timers.
func (s *Store) TimerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// async runs fn in the background, bound to the store's run context.
func (s *Store) async(fn func(ctx context.Context)) {
	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn(ctx)
	}()
}

func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Store) CurrentSymbol() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.symbol
}

func (s *Store) Mode() model.TradingMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// UpdatePrice feeds one price observation into the book.
func (s *Store) UpdatePrice(symbol string, price float64) {
	s.Prices.Update(symbol, price, s.now())
}

func (s *Store) Config() Config {
	return s.cfg
}
