package settings

import "binarytrader/src/model"

// EnabledOrderTypes lists the enabled products in display order. An empty
// result means binary trading is unavailable.
func (c *Cache) EnabledOrderTypes() []model.OrderType {
	s := c.Settings()
	if s == nil || !s.Global.TradingEnabled() {
		return nil
	}
	var out []model.OrderType
	for _, t := range model.OrderTypes {
		if cfg, ok := s.OrderTypes[t]; ok && cfg.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// OrderTypeConfig returns the rules for t, if configured.
func (c *Cache) OrderTypeConfig(t model.OrderType) (model.OrderTypeConfig, bool) {
	s := c.Settings()
	if s == nil {
		return model.OrderTypeConfig{}, false
	}
	cfg, ok := s.OrderTypes[t]
	return cfg, ok
}

// EnabledBarrierLevels applies to HIGHER_LOWER, TOUCH_NO_TOUCH and TURBO only.
func (c *Cache) EnabledBarrierLevels(t model.OrderType) []model.BarrierLevel {
	if !t.UsesBarrier() {
		return nil
	}
	cfg, ok := c.OrderTypeConfig(t)
	if !ok {
		return nil
	}
	var out []model.BarrierLevel
	for _, l := range cfg.BarrierLevels {
		if l.Enabled {
			out = append(out, l)
		}
	}
	return out
}

// EnabledStrikeLevels returns the CALL_PUT strike presets.
func (c *Cache) EnabledStrikeLevels() []model.StrikeLevel {
	cfg, ok := c.OrderTypeConfig(model.OrderTypeCallPut)
	if !ok {
		return nil
	}
	var out []model.StrikeLevel
	for _, l := range cfg.StrikeLevels {
		if l.Enabled {
			out = append(out, l)
		}
	}
	return out
}

// ProfitForSelection returns the payout percentage shown for the current
// selection. A selected barrier or strike level overrides the type's base
// percentage when it applies to t.
func (c *Cache) ProfitForSelection(t model.OrderType, barrierLevelID, strikeLevelID string) float64 {
	cfg, ok := c.OrderTypeConfig(t)
	if !ok {
		return 0
	}
	if barrierLevelID != "" && t.UsesBarrier() {
		for _, l := range c.EnabledBarrierLevels(t) {
			if l.ID == barrierLevelID {
				return l.ProfitPercentage
			}
		}
	}
	if strikeLevelID != "" && t.UsesStrike() {
		for _, l := range c.EnabledStrikeLevels() {
			if l.ID == strikeLevelID {
				return l.ProfitPercentage
			}
		}
	}
	return cfg.ProfitPercentage
}

// FindDuration returns the enabled duration of the given length in minutes.
func (c *Cache) FindDuration(minutes int) (model.Duration, bool) {
	for _, d := range c.Durations() {
		if d.Duration == minutes && d.Enabled {
			return d, true
		}
	}
	return model.Duration{}, false
}
