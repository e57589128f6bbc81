package model

import "time"

// Duration is a selectable expiry length with one payout percentage per order type.
type Duration struct {
	ID                           string  `json:"id"`
	Duration                     int     `json:"duration"` // minutes
	ProfitPercentageRiseFall     float64 `json:"profitPercentageRiseFall"`
	ProfitPercentageHigherLower  float64 `json:"profitPercentageHigherLower"`
	ProfitPercentageTouchNoTouch float64 `json:"profitPercentageTouchNoTouch"`
	ProfitPercentageCallPut      float64 `json:"profitPercentageCallPut"`
	ProfitPercentageTurbo        float64 `json:"profitPercentageTurbo"`
	Enabled                      bool    `json:"status"`
}

// Length converts the minute count to a time.Duration.
func (d Duration) Length() time.Duration {
	return time.Duration(d.Duration) * time.Minute
}

// ProfitFor returns the percentage configured for the given order type.
func (d Duration) ProfitFor(t OrderType) float64 {
	switch t {
	case OrderTypeRiseFall:
		return d.ProfitPercentageRiseFall
	case OrderTypeHigherLower:
		return d.ProfitPercentageHigherLower
	case OrderTypeTouchNoTouch:
		return d.ProfitPercentageTouchNoTouch
	case OrderTypeCallPut:
		return d.ProfitPercentageCallPut
	case OrderTypeTurbo:
		return d.ProfitPercentageTurbo
	}
	return 0
}
