package risk

import (
	"time"

	"binarytrader/src/model"

	"github.com/shopspring/decimal"
)

// DefaultCashOutPenaltyPercent is the penalty applied to the profit of a freshly placed order.
const DefaultCashOutPenaltyPercent = 20.0

// CashOutQuote is the advisory early-close value. The server's figure is authoritative.
type CashOutQuote struct {
	Value   decimal.Decimal
	Penalty decimal.Decimal
	Winning bool
}

// QuoteCashOut values an early close at price.
// A winning order returns stake plus profit minus a penalty that decays linearly with elapsed lifetime;
// the penalty never eats into the stake. A losing order returns max(0, amount + unrealized loss).
func QuoteCashOut(o model.Order, price float64, now time.Time, basePenaltyPercent, touchThresholdPercent float64) CashOutQuote {
	if !IsWinning(o, price, touchThresholdPercent) {
		value := o.Amount.Add(UnrealizedPnL(o, price, touchThresholdPercent))
		if value.IsNegative() {
			value = decimal.Zero
		}
		return CashOutQuote{Value: value, Penalty: decimal.Zero}
	}

	profit := WinProfit(o.Amount, o.ProfitPercentage)
	rate := basePenaltyPercent * (1 - ElapsedFraction(o, now))
	if rate < 0 {
		rate = 0
	}
	penalty := profit.Mul(decimal.NewFromFloat(rate)).Div(hundred)
	if penalty.GreaterThan(profit) {
		penalty = profit
	}

	return CashOutQuote{
		Value:   o.Amount.Add(profit).Sub(penalty),
		Penalty: penalty,
		Winning: true,
	}
}

// ElapsedFraction is min(1, (now - createdAt) / (expiry - createdAt)), floored at 0.
func ElapsedFraction(o model.Order, now time.Time) float64 {
	total := o.ExpiryTime.Sub(o.CreatedAt)
	if total <= 0 {
		return 1
	}
	f := float64(now.Sub(o.CreatedAt)) / float64(total)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
