package model

import "github.com/shopspring/decimal"

// BinarySettings is the binary trading section of the shared app configuration.
type BinarySettings struct {
	Global     GlobalSettings                `json:"global"`
	OrderTypes map[OrderType]OrderTypeConfig `json:"orderTypes"`
}

// GlobalSettings holds platform-wide toggles. An absent toggle means enabled.
type GlobalSettings struct {
	Enabled               *bool   `json:"enabled,omitempty"`
	PracticeEnabled       *bool   `json:"practiceEnabled,omitempty"`
	CashOutEnabled        *bool   `json:"cashOutEnabled,omitempty"`
	CashOutPenaltyPercent float64 `json:"cashOutPenaltyPercent"`
	CancellationEnabled   *bool   `json:"cancellationEnabled,omitempty"`
	SafeZoneSeconds       int     `json:"safeZoneSeconds"`
}

func enabled(b *bool) bool {
	return b == nil || *b
}

// TradingEnabled reports the global kill switch.
func (g GlobalSettings) TradingEnabled() bool { return enabled(g.Enabled) }

func (g GlobalSettings) PracticeAllowed() bool { return enabled(g.PracticeEnabled) }

func (g GlobalSettings) CashOutAllowed() bool { return enabled(g.CashOutEnabled) }

func (g GlobalSettings) CancellationAllowed() bool { return enabled(g.CancellationEnabled) }

// OrderTypeConfig holds the per-type rules.
type OrderTypeConfig struct {
	Enabled          bool            `json:"enabled"`
	MinAmount        decimal.Decimal `json:"minAmount"`
	MaxAmount        decimal.Decimal `json:"maxAmount"`
	ProfitPercentage float64         `json:"profitPercentage"`
	BarrierLevels    []BarrierLevel  `json:"barrierLevels,omitempty"`
	StrikeLevels     []StrikeLevel   `json:"strikeLevels,omitempty"`
}

// BarrierLevel is a preset barrier distance from the current price.
type BarrierLevel struct {
	ID               string  `json:"id"`
	Label            string  `json:"label"`
	Distance         float64 `json:"distance"` // percent of current price
	ProfitPercentage float64 `json:"profitPercentage"`
	Enabled          bool    `json:"enabled"`
}

// StrikeLevel is a preset strike distance for CALL_PUT.
type StrikeLevel struct {
	ID               string  `json:"id"`
	Label            string  `json:"label"`
	Distance         float64 `json:"distance"`
	ProfitPercentage float64 `json:"profitPercentage"`
	Enabled          bool    `json:"enabled"`
}
