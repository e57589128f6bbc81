package binary

import (
	"fmt"
	"time"

	"binarytrader/src/risk"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	UserID  string `envconfig:"BINARY_USER_ID"`
	Profile string `envconfig:"BINARY_PROFILE" default:"default"`

	TickInterval          time.Duration `envconfig:"BINARY_TICK_INTERVAL" default:"1s"`
	SafeZone              time.Duration `envconfig:"BINARY_SAFE_ZONE" default:"15s"`
	ExpiryBoundary        time.Duration `envconfig:"BINARY_EXPIRY_BOUNDARY" default:"1m"`
	CancelWindow          time.Duration `envconfig:"BINARY_CANCEL_WINDOW" default:"10s"`
	CashOutMinAge         time.Duration `envconfig:"BINARY_CASHOUT_MIN_AGE" default:"30s"`
	CashOutPenaltyPercent float64       `envconfig:"BINARY_CASHOUT_PENALTY_PERCENT" default:"20"`
	TouchThresholdPercent float64       `envconfig:"BINARY_TOUCH_THRESHOLD_PERCENT" default:"0.1"`

	PageSize     int             `envconfig:"BINARY_PAGE_SIZE" default:"20"`
	HistorySize  int             `envconfig:"BINARY_PNL_HISTORY" default:"20"`
	DemoBalance  decimal.Decimal `envconfig:"BINARY_DEMO_BALANCE" default:"10000"`
	WalletType   string          `envconfig:"BINARY_WALLET_TYPE" default:"SPOT"`
	SoundEnabled bool            `envconfig:"BINARY_SOUND_ENABLED" default:"true"`

	SettlementRefetch time.Duration `envconfig:"BINARY_SETTLEMENT_REFETCH" default:"3s"`
	SettlementGiveUp  time.Duration `envconfig:"BINARY_SETTLEMENT_GIVE_UP" default:"2m"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// DefaultConfig mirrors the env defaults.
func DefaultConfig() Config {
	return Config{
		Profile:               "default",
		TickInterval:          time.Second,
		SafeZone:              risk.DefaultSafeZone,
		ExpiryBoundary:        risk.DefaultExpiryBoundary,
		CancelWindow:          10 * time.Second,
		CashOutMinAge:         30 * time.Second,
		CashOutPenaltyPercent: risk.DefaultCashOutPenaltyPercent,
		TouchThresholdPercent: risk.DefaultTouchThresholdPercent,
		PageSize:              20,
		HistorySize:           20,
		DemoBalance:           decimal.NewFromInt(10000),
		WalletType:            "SPOT",
		SoundEnabled:          true,
		SettlementRefetch:     3 * time.Second,
		SettlementGiveUp:      2 * time.Minute,
	}
}

func (c Config) windows() risk.Windows {
	return risk.Windows{
		CancelMinRemaining:  c.CancelWindow,
		CashOutMinAge:       c.CashOutMinAge,
		CashOutMinRemaining: c.CancelWindow,
	}
}
