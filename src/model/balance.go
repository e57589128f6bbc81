package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type TradingMode string

const (
	TradingModeDemo TradingMode = "demo"
	TradingModeReal TradingMode = "real"
)

// ParseTradingMode defaults to demo for anything that is not "real".
func ParseTradingMode(s string) TradingMode {
	if strings.EqualFold(strings.TrimSpace(s), string(TradingModeReal)) {
		return TradingModeReal
	}
	return TradingModeDemo
}

// Balances tracks one balance per trading mode. Real is synced from the wallet, Demo is local.
type Balances struct {
	Demo decimal.Decimal `json:"demo"`
	Real decimal.Decimal `json:"real"`
}

func (b Balances) For(mode TradingMode) decimal.Decimal {
	if mode == TradingModeReal {
		return b.Real
	}
	return b.Demo
}
