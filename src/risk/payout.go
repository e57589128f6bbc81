package risk

import (
	"math"

	"binarytrader/src/model"

	"github.com/shopspring/decimal"
)

// DefaultTouchThresholdPercent is the distance from the barrier, in percent, that counts as a touch.
const DefaultTouchThresholdPercent = 0.1

var hundred = decimal.NewFromInt(100)

// IsWinning applies the per-type win rule to the current price.
// A price equal to the reference level wins for neither side.
func IsWinning(o model.Order, price, touchThresholdPercent float64) bool {
	switch o.Type {
	case model.OrderTypeRiseFall:
		return directional(o.Side, model.SideRise, model.SideFall, price, o.EntryPrice)
	case model.OrderTypeHigherLower:
		return directional(o.Side, model.SideHigher, model.SideLower, price, levelOrEntry(o.Barrier, o.EntryPrice))
	case model.OrderTypeTouchNoTouch:
		touched := Touched(price, levelOrEntry(o.Barrier, o.EntryPrice), touchThresholdPercent)
		if o.Side == model.SideTouch {
			return touched
		}
		return o.Side == model.SideNoTouch && !touched
	case model.OrderTypeCallPut:
		return directional(o.Side, model.SideCall, model.SidePut, price, levelOrEntry(o.StrikePrice, o.EntryPrice))
	case model.OrderTypeTurbo:
		return directional(o.Side, model.SideUp, model.SideDown, price, levelOrEntry(o.Barrier, o.EntryPrice))
	}
	return false
}

// Touched reports whether price is within thresholdPercent of barrier.
func Touched(price, barrier, thresholdPercent float64) bool {
	if barrier == 0 {
		return false
	}
	return math.Abs(price-barrier)/math.Abs(barrier)*100 <= thresholdPercent
}

// WinProfit is amount * profitPercentage / 100.
func WinProfit(amount decimal.Decimal, profitPercentage float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(profitPercentage)).Div(hundred)
}

// UnrealizedPnL is the profit if the order settled at price now: +WinProfit when winning, -amount otherwise.
func UnrealizedPnL(o model.Order, price, touchThresholdPercent float64) decimal.Decimal {
	if IsWinning(o, price, touchThresholdPercent) {
		return WinProfit(o.Amount, o.ProfitPercentage)
	}
	return o.Amount.Neg()
}

func directional(side, upSide, downSide model.Side, price, level float64) bool {
	switch side {
	case upSide:
		return price > level
	case downSide:
		return price < level
	}
	return false
}

func levelOrEntry(level *float64, entry float64) float64 {
	if level != nil && *level > 0 {
		return *level
	}
	return entry
}
