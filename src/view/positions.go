package view

import (
	"binarytrader/src/binary"
	"binarytrader/src/model"

	"github.com/shopspring/decimal"
)

// ActivePosition is one row of the open positions list.
type ActivePosition struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Type         model.OrderType `json:"type"`
	Side         model.Side      `json:"side"`
	Amount       string          `json:"amount"`
	EntryPrice   float64         `json:"entryPrice"`
	CurrentPrice *float64        `json:"currentPrice,omitempty"`
	Barrier      *float64        `json:"barrier,omitempty"`
	StrikePrice  *float64        `json:"strikePrice,omitempty"`
	Payout       float64         `json:"profitPercentage"`
	PnL          string          `json:"pnl"`
	Winning      bool            `json:"winning"`
	Trending     bool            `json:"trending"`
	Countdown    string          `json:"countdown"`
	Sparkline    []float64       `json:"sparkline"`
	CanCancel    bool            `json:"canCancel"`
	CanCashOut   bool            `json:"canCashOut"`
	IsDemo       bool            `json:"isDemo"`
}

// CompletedPosition is one row of the trade history.
type CompletedPosition struct {
	ID         string            `json:"id"`
	Symbol     string            `json:"symbol"`
	Type       model.OrderType   `json:"type"`
	Side       model.Side        `json:"side"`
	Status     model.OrderStatus `json:"status"`
	Amount     string            `json:"amount"`
	EntryPrice float64           `json:"entryPrice"`
	ClosePrice float64           `json:"closePrice"`
	PnL        string            `json:"pnl"`
	Won        bool              `json:"won"`
	ClosedAt   int64             `json:"closedAt"`
	IsDemo     bool              `json:"isDemo"`
}

// FormatPnL renders a signed amount with two decimals: +85.00, -100.00, 0.00.
func FormatPnL(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.Round(2).IsPositive() {
		return "+" + s
	}
	return s
}

func NewActivePosition(o binary.ActiveOrder) ActivePosition {
	p := ActivePosition{
		ID:          o.ID,
		Symbol:      o.Symbol,
		Type:        o.Type,
		Side:        o.Side,
		Amount:      o.Amount.StringFixed(2),
		EntryPrice:  o.EntryPrice,
		Barrier:     o.Barrier,
		StrikePrice: o.StrikePrice,
		Payout:      o.ProfitPercentage,
		Winning:     o.Winning,
		Trending:    o.Trending,
		Countdown:   o.Countdown,
		Sparkline:   Sparkline(o.History),
		CanCancel:   o.CanCancel,
		CanCashOut:  o.CanCashOut,
		IsDemo:      o.IsDemo,
	}
	if o.HasPrice {
		price := o.CurrentPrice
		p.CurrentPrice = &price
		p.PnL = FormatPnL(o.PnL)
	} else {
		p.PnL = "-"
	}
	return p
}

func NewCompletedPosition(c model.CompletedOrder) CompletedPosition {
	return CompletedPosition{
		ID:         c.ID,
		Symbol:     c.Symbol,
		Type:       c.Type,
		Side:       c.Side,
		Status:     c.Status,
		Amount:     c.Amount.StringFixed(2),
		EntryPrice: c.EntryPrice,
		ClosePrice: c.ClosePrice,
		PnL:        FormatPnL(c.Profit),
		Won:        c.Status == model.OrderStatusWin,
		ClosedAt:   c.ClosedAt.UnixMilli(),
		IsDemo:     c.IsDemo,
	}
}

func ActivePositions(orders []binary.ActiveOrder) []ActivePosition {
	out := make([]ActivePosition, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewActivePosition(o))
	}
	return out
}

func CompletedPositions(orders []model.CompletedOrder) []CompletedPosition {
	out := make([]CompletedPosition, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewCompletedPosition(o))
	}
	return out
}

// Sparkline scales the P/L history into [0,1]. A flat series sits at 0.5.
func Sparkline(history []decimal.Decimal) []float64 {
	out := make([]float64, len(history))
	if len(history) == 0 {
		return out
	}
	lo, hi := history[0], history[0]
	for _, v := range history[1:] {
		lo = decimal.Min(lo, v)
		hi = decimal.Max(hi, v)
	}
	span := hi.Sub(lo)
	for i, v := range history {
		if span.IsZero() {
			out[i] = 0.5
			continue
		}
		out[i] = v.Sub(lo).Div(span).InexactFloat64()
	}
	return out
}
