package settings

import (
	"context"
	"errors"
	"sync"
	"time"

	"binarytrader/src/cache"
	"binarytrader/src/model"

	logger "github.com/sirupsen/logrus"
)

const (
	KeySettings  = "binary_settings"
	KeyDurations = "binary_durations"
	KeyMarkets   = "binary_markets"
)

var (
	// ErrFetchSuppressed means an earlier fetch failed and only a force refresh retries it.
	ErrFetchSuppressed = errors.New("fetch suppressed after earlier failure")
	// ErrFetchInFlight means another caller is already fetching the resource.
	ErrFetchInFlight = errors.New("fetch already in flight")
)

// SettingsSource exposes the asynchronously loaded shared app config.
type SettingsSource interface {
	BinarySettings() (*model.BinarySettings, bool)
}

// reloadable sources can be asked to drop and re-read their document.
type reloadable interface {
	Reset()
	LoadAsync(ctx context.Context)
}

// CatalogSource serves durations and markets.
type CatalogSource interface {
	GetDurations(ctx context.Context) ([]model.Duration, error)
	GetMarkets(ctx context.Context) ([]model.Market, error)
}

// Cache holds the binary settings, durations and markets behind one TTL store.
type Cache struct {
	cfg      Config
	store    *cache.TTL
	settings SettingsSource
	catalog  CatalogSource
	log      *logger.Entry

	mu      sync.Mutex
	loading map[string]bool
	failed  map[string]bool
	tried   map[string]bool
}

func NewCache(cfg Config, settings SettingsSource, catalog CatalogSource, now func() time.Time) *Cache {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = def.PollTimeout
	}
	return &Cache{
		cfg:      cfg,
		store:    cache.NewTTL(cfg.TTL, now),
		settings: settings,
		catalog:  catalog,
		log:      logger.WithField("component", "settings_cache"),
		loading:  map[string]bool{},
		failed:   map[string]bool{},
		tried:    map[string]bool{},
	}
}

func (c *Cache) begin(key string, latch bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading[key] {
		return ErrFetchInFlight
	}
	if latch && c.failed[key] {
		return ErrFetchSuppressed
	}
	c.loading[key] = true
	return nil
}

func (c *Cache) end(key string, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading[key] = false
	c.tried[key] = true
	if failed {
		c.failed[key] = true
	}
}

// FetchSettings waits for the shared app config, polling every PollInterval
// up to PollTimeout. A concurrent call while one is waiting returns at once.
// When the config never shows up the result is nil with no error. After the
// first attempt a reloadable source is asked to read its document again.
func (c *Cache) FetchSettings(ctx context.Context) *model.BinarySettings {
	if v, ok := c.store.Get(KeySettings); ok {
		return v.(*model.BinarySettings)
	}
	if err := c.begin(KeySettings, false); err != nil {
		return c.Settings()
	}
	c.mu.Lock()
	again := c.tried[KeySettings]
	c.mu.Unlock()
	if r, ok := c.settings.(reloadable); ok && again {
		r.Reset()
		r.LoadAsync(ctx)
	}

	s := c.pollSettings(ctx)
	c.end(KeySettings, false)
	if s == nil {
		c.log.WithField("timeout", c.cfg.PollTimeout.String()).Warn("binary settings unavailable")
		return c.Settings()
	}
	c.store.Set(KeySettings, s)
	return s
}

func (c *Cache) pollSettings(ctx context.Context) *model.BinarySettings {
	if c.settings == nil {
		return nil
	}
	if s, ok := c.settings.BinarySettings(); ok {
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.PollTimeout)
	defer cancel()
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if s, ok := c.settings.BinarySettings(); ok {
				return s
			}
		}
	}
}

// FetchDurations returns the cached list while fresh, otherwise fetches it.
func (c *Cache) FetchDurations(ctx context.Context) ([]model.Duration, error) {
	if v, ok := c.store.Get(KeyDurations); ok {
		return v.([]model.Duration), nil
	}
	if err := c.begin(KeyDurations, true); err != nil {
		return c.Durations(), err
	}

	durations, err := c.catalog.GetDurations(ctx)
	c.end(KeyDurations, err != nil && ctx.Err() == nil)
	if err != nil {
		c.log.WithError(err).Error("fetch durations failed")
		return c.Durations(), err
	}
	c.store.Set(KeyDurations, durations)
	return durations, nil
}

// FetchMarkets behaves like FetchDurations for the market list.
func (c *Cache) FetchMarkets(ctx context.Context) ([]model.Market, error) {
	if v, ok := c.store.Get(KeyMarkets); ok {
		return v.([]model.Market), nil
	}
	if err := c.begin(KeyMarkets, true); err != nil {
		return c.Markets(), err
	}

	markets, err := c.catalog.GetMarkets(ctx)
	c.end(KeyMarkets, err != nil && ctx.Err() == nil)
	if err != nil {
		c.log.WithError(err).Error("fetch markets failed")
		return c.Markets(), err
	}
	c.store.Set(KeyMarkets, markets)
	return markets, nil
}

func (c *Cache) reset(key string) {
	c.store.Delete(key)
	c.mu.Lock()
	delete(c.failed, key)
	c.mu.Unlock()
}

// ForceRefreshSettings always re-reads the source document.
func (c *Cache) ForceRefreshSettings(ctx context.Context) *model.BinarySettings {
	c.reset(KeySettings)
	c.mu.Lock()
	c.tried[KeySettings] = true
	c.mu.Unlock()
	return c.FetchSettings(ctx)
}

func (c *Cache) ForceRefreshDurations(ctx context.Context) ([]model.Duration, error) {
	c.reset(KeyDurations)
	return c.FetchDurations(ctx)
}

func (c *Cache) ForceRefreshMarkets(ctx context.Context) ([]model.Market, error) {
	c.reset(KeyMarkets)
	return c.FetchMarkets(ctx)
}

// Clear drops every entry and failure latch.
func (c *Cache) Clear() {
	c.store.Clear()
	c.mu.Lock()
	c.failed = map[string]bool{}
	c.tried = map[string]bool{}
	c.mu.Unlock()
}

// Settings returns the last loaded settings, fresh or not.
func (c *Cache) Settings() *model.BinarySettings {
	if v, ok := c.store.Peek(KeySettings); ok {
		return v.(*model.BinarySettings)
	}
	return nil
}

func (c *Cache) Durations() []model.Duration {
	if v, ok := c.store.Peek(KeyDurations); ok {
		return v.([]model.Duration)
	}
	return nil
}

func (c *Cache) Markets() []model.Market {
	if v, ok := c.store.Peek(KeyMarkets); ok {
		return v.([]model.Market)
	}
	return nil
}

// StaleKeys lists the resources whose lifetime ran out, or that never loaded,
// and that are not latched or already loading.
func (c *Cache) StaleKeys() []string {
	var out []string
	for _, key := range []string{KeySettings, KeyDurations, KeyMarkets} {
		if _, ok := c.store.Get(key); ok {
			continue
		}
		c.mu.Lock()
		skip := c.loading[key] || c.failed[key]
		c.mu.Unlock()
		if !skip {
			out = append(out, key)
		}
	}
	return out
}

// Failed reports whether the failure latch for key is set.
func (c *Cache) Failed(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed[key]
}
