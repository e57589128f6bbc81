package binary

import (
	"context"
	"fmt"

	"binarytrader/src/model"
	"binarytrader/src/settings"
)

// refreshStale re-fetches the reference data whose cache lifetime ran out.
func (s *Store) refreshStale(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	for _, key := range s.Settings.StaleKeys() {
		switch key {
		case settings.KeySettings:
			s.Settings.FetchSettings(ctx)
		case settings.KeyDurations:
			if _, err := s.Settings.FetchDurations(ctx); err != nil {
				s.log.WithError(err).Warn("durations refresh failed")
			}
		case settings.KeyMarkets:
			ms, err := s.Settings.FetchMarkets(ctx)
			if err != nil {
				s.log.WithError(err).Warn("markets refresh failed")
				continue
			}
			s.Markets.SetMarkets(ms)
		}
	}
}

// RefreshReferenceData drops the cached settings, durations and markets,
// clears their failure latches and loads them again.
func (s *Store) RefreshReferenceData(ctx context.Context) error {
	s.Settings.ForceRefreshSettings(ctx)
	if _, err := s.Settings.ForceRefreshDurations(ctx); err != nil {
		return fmt.Errorf("refresh durations: %w", err)
	}
	ms, err := s.Settings.ForceRefreshMarkets(ctx)
	if err != nil {
		return fmt.Errorf("refresh markets: %w", err)
	}
	s.Markets.SetMarkets(ms)

	s.log.WithFields(map[string]interface{}{
		"settings": s.Settings.Settings() != nil,
		"markets":  len(ms),
	}).Info("reference data refreshed")
	return nil
}

// SettingsView is what the order form needs to render the current selection.
type SettingsView struct {
	Available     bool                 `json:"available"`
	OrderTypes    []model.OrderType    `json:"orderTypes"`
	Durations     []model.Duration     `json:"durations"`
	BarrierLevels []model.BarrierLevel `json:"barrierLevels"`
	StrikeLevels  []model.StrikeLevel  `json:"strikeLevels"`
	Selection     Selection            `json:"selection"`
	Profit        float64              `json:"profitPercentage"`
}

// SettingsView resolves the enabled products and levels for the selection.
// barrierLevelID and strikeLevelID pick the payout override when set.
func (s *Store) SettingsView(barrierLevelID, strikeLevelID string) SettingsView {
	sel := s.Selection()
	types := s.Settings.EnabledOrderTypes()

	var durations []model.Duration
	for _, d := range s.Settings.Durations() {
		if d.Enabled {
			durations = append(durations, d)
		}
	}
	return SettingsView{
		Available:     len(types) > 0,
		OrderTypes:    types,
		Durations:     durations,
		BarrierLevels: s.Settings.EnabledBarrierLevels(sel.OrderType),
		StrikeLevels:  strikeLevelsFor(s.Settings, sel.OrderType),
		Selection:     sel,
		Profit:        s.Settings.ProfitForSelection(sel.OrderType, barrierLevelID, strikeLevelID),
	}
}

func strikeLevelsFor(c *settings.Cache, t model.OrderType) []model.StrikeLevel {
	if !t.UsesStrike() {
		return nil
	}
	return c.EnabledStrikeLevels()
}
