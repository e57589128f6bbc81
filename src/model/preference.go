package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Preference is the persisted UI subset. Barrier, strike, payout and stake are never stored here.
type Preference struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Profile       string          `gorm:"size:100;uniqueIndex;not null" json:"profile"`
	Symbol        string          `gorm:"size:50" json:"symbol"`
	Timeframe     string          `gorm:"size:10" json:"timeframe"`
	DemoBalance   decimal.Decimal `gorm:"type:decimal(20,8)" json:"demo_balance"`
	TradingMode   string          `gorm:"size:10;not null;default:demo" json:"trading_mode"`
	ExpiryMinutes int             `json:"expiry_minutes"`
	OrderType     string          `gorm:"size:30" json:"order_type"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Preference) TableName() string {
	return "binary_preferences"
}
