package binary

import (
	"context"

	"binarytrader/src/model"
)

// loadPreferences applies the persisted UI subset. A missing row keeps the defaults.
func (s *Store) loadPreferences(ctx context.Context) {
	if s.prefs == nil {
		return
	}
	pref, err := s.prefs.Load(ctx, s.cfg.Profile)
	if err != nil {
		s.log.WithError(err).Warn("load preferences failed")
		return
	}
	if pref == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if pref.Symbol != "" {
		s.symbol = pref.Symbol
	}
	s.mode = model.ParseTradingMode(pref.TradingMode)
	if !pref.DemoBalance.IsNegative() && !pref.DemoBalance.IsZero() {
		s.balances.Demo = pref.DemoBalance
	}
	if t, ok := model.ParseOrderType(pref.OrderType); ok {
		s.selection.OrderType = t
	}
	if pref.ExpiryMinutes > 0 {
		s.selection.ExpiryMinutes = pref.ExpiryMinutes
	}
	if pref.Timeframe != "" {
		s.selection.Timeframe = pref.Timeframe
	}
}

func (s *Store) savePreferences(ctx context.Context) {
	if s.prefs == nil {
		return
	}
	s.mu.Lock()
	pref := &model.Preference{
		Profile:       s.cfg.Profile,
		Symbol:        s.symbol,
		Timeframe:     s.selection.Timeframe,
		DemoBalance:   s.balances.Demo,
		TradingMode:   string(s.mode),
		ExpiryMinutes: s.selection.ExpiryMinutes,
		OrderType:     string(s.selection.OrderType),
	}
	s.mu.Unlock()

	if err := s.prefs.Save(ctx, pref); err != nil {
		s.log.WithError(err).Warn("save preferences failed")
	}
}

// SetSelection updates the order form preferences.
func (s *Store) SetSelection(ctx context.Context, sel Selection) {
	s.mu.Lock()
	if sel.OrderType != "" {
		s.selection.OrderType = sel.OrderType
	}
	if sel.ExpiryMinutes > 0 {
		s.selection.ExpiryMinutes = sel.ExpiryMinutes
	}
	if sel.Timeframe != "" {
		s.selection.Timeframe = sel.Timeframe
	}
	s.mu.Unlock()
	s.savePreferences(ctx)
}

func (s *Store) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}
