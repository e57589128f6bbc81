package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"binarytrader/src/model"

	logger "github.com/sirupsen/logrus"
)

// BinarySettingsKey is the entry of the shared app config that carries the binary trading rules.
const BinarySettingsKey = "binarySettings"

var ErrSettingsMissing = errors.New("binary settings not present in app config")

type rawFetcher interface {
	GetRaw(ctx context.Context, path string) (json.RawMessage, error)
}

// AppConfig is the app-wide settings document. It loads in the background
// and readers poll BinarySettings until it becomes available.
type AppConfig struct {
	source rawFetcher
	path   string

	mu       sync.RWMutex
	settings *model.BinarySettings
	loaded   bool
	loading  bool
	lastErr  error
}

func NewAppConfig(source rawFetcher, path string) *AppConfig {
	if path == "" {
		path = "/settings"
	}
	return &AppConfig{source: source, path: path}
}

// Load fetches the document once. Concurrent calls while a load is running return nil immediately.
func (a *AppConfig) Load(ctx context.Context) error {
	a.mu.Lock()
	if a.loading {
		a.mu.Unlock()
		return nil
	}
	a.loading = true
	a.mu.Unlock()

	settings, err := a.fetch(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = false
	a.lastErr = err
	if err != nil {
		return err
	}
	a.settings = settings
	a.loaded = true
	return nil
}

// LoadAsync starts Load in its own goroutine.
func (a *AppConfig) LoadAsync(ctx context.Context) {
	go func() {
		if err := a.Load(ctx); err != nil {
			logger.WithError(err).Warn("app config load failed")
		}
	}()
}

func (a *AppConfig) fetch(ctx context.Context) (*model.BinarySettings, error) {
	raw, err := a.source.GetRaw(ctx, a.path)
	if err != nil {
		return nil, fmt.Errorf("fetch app config: %w", err)
	}
	return ParseBinarySettings(raw)
}

// BinarySettings returns the parsed settings once the document has loaded.
func (a *AppConfig) BinarySettings() (*model.BinarySettings, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.loaded || a.settings == nil {
		return nil, false
	}
	return a.settings, true
}

// Err is the outcome of the last load attempt.
func (a *AppConfig) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastErr
}

// Reset drops the loaded document.
func (a *AppConfig) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settings = nil
	a.loaded = false
	a.lastErr = nil
}

// ParseBinarySettings accepts the config as an object map or as a list of {key,value}
// entries. The binary settings value itself may be an object or a JSON-encoded string.
func ParseBinarySettings(doc []byte) (*model.BinarySettings, error) {
	doc = bytes.TrimSpace(doc)
	if len(doc) == 0 {
		return nil, ErrSettingsMissing
	}

	var value json.RawMessage
	switch doc[0] {
	case '{':
		var asMap map[string]json.RawMessage
		if err := json.Unmarshal(doc, &asMap); err != nil {
			return nil, fmt.Errorf("decode app config: %w", err)
		}
		value = asMap[BinarySettingsKey]
	case '[':
		var entries []struct {
			Key   string          `json:"key"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(doc, &entries); err != nil {
			return nil, fmt.Errorf("decode app config: %w", err)
		}
		for _, e := range entries {
			if e.Key == BinarySettingsKey {
				value = e.Value
				break
			}
		}
	default:
		return nil, fmt.Errorf("decode app config: unexpected document")
	}

	value = bytes.TrimSpace(value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return nil, ErrSettingsMissing
	}

	if value[0] == '"' {
		var embedded string
		if err := json.Unmarshal(value, &embedded); err != nil {
			return nil, fmt.Errorf("decode embedded binary settings: %w", err)
		}
		if embedded == "" {
			return nil, ErrSettingsMissing
		}
		value = []byte(embedded)
	}

	var settings model.BinarySettings
	if err := json.Unmarshal(value, &settings); err != nil {
		return nil, fmt.Errorf("decode binary settings: %w", err)
	}
	if settings.OrderTypes == nil {
		settings.OrderTypes = map[model.OrderType]model.OrderTypeConfig{}
	}
	return &settings, nil
}
