package risk

import (
	"time"

	"binarytrader/src/model"
)

// Windows are the timing rules for manual early exits.
type Windows struct {
	CancelMinRemaining  time.Duration
	CashOutMinAge       time.Duration
	CashOutMinRemaining time.Duration
}

func DefaultWindows() Windows {
	return Windows{
		CancelMinRemaining:  10 * time.Second,
		CashOutMinAge:       30 * time.Second,
		CashOutMinRemaining: 10 * time.Second,
	}
}

// CanCancel holds while at least CancelMinRemaining is left before expiry (inclusive).
func CanCancel(o model.Order, now time.Time, w Windows) bool {
	return o.ExpiryTime.Sub(now) >= w.CancelMinRemaining
}

// CanCashOut needs the order to be at least CashOutMinAge old and CashOutMinRemaining away from expiry.
func CanCashOut(o model.Order, now time.Time, w Windows) bool {
	return now.Sub(o.CreatedAt) >= w.CashOutMinAge && o.ExpiryTime.Sub(now) >= w.CashOutMinRemaining
}
