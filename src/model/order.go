package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType identifies one of the five binary option products.
type OrderType string

const (
	OrderTypeRiseFall     OrderType = "RISE_FALL"
	OrderTypeHigherLower  OrderType = "HIGHER_LOWER"
	OrderTypeTouchNoTouch OrderType = "TOUCH_NO_TOUCH"
	OrderTypeCallPut      OrderType = "CALL_PUT"
	OrderTypeTurbo        OrderType = "TURBO"
)

// OrderTypes lists every product in display order.
var OrderTypes = []OrderType{
	OrderTypeRiseFall,
	OrderTypeHigherLower,
	OrderTypeTouchNoTouch,
	OrderTypeCallPut,
	OrderTypeTurbo,
}

// Side is the direction a trader bets on. The valid set depends on the OrderType.
type Side string

const (
	SideRise    Side = "RISE"
	SideFall    Side = "FALL"
	SideHigher  Side = "HIGHER"
	SideLower   Side = "LOWER"
	SideTouch   Side = "TOUCH"
	SideNoTouch Side = "NO_TOUCH"
	SideCall    Side = "CALL"
	SidePut     Side = "PUT"
	SideUp      Side = "UP"
	SideDown    Side = "DOWN"
)

var allowedSides = map[OrderType][]Side{
	OrderTypeRiseFall:     {SideRise, SideFall},
	OrderTypeHigherLower:  {SideHigher, SideLower},
	OrderTypeTouchNoTouch: {SideTouch, SideNoTouch},
	OrderTypeCallPut:      {SideCall, SidePut},
	OrderTypeTurbo:        {SideUp, SideDown},
}

// ParseOrderType accepts the canonical names case-insensitively.
func ParseOrderType(s string) (OrderType, bool) {
	t := OrderType(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := allowedSides[t]
	return t, ok
}

// AllowedSides returns the sides a trader may pick for this type.
func (t OrderType) AllowedSides() []Side {
	return allowedSides[t]
}

// Allows reports whether side belongs to this type's side set.
func (t OrderType) Allows(side Side) bool {
	for _, s := range allowedSides[t] {
		if s == side {
			return true
		}
	}
	return false
}

// UsesBarrier is true for the products settled against a barrier price.
func (t OrderType) UsesBarrier() bool {
	return t == OrderTypeHigherLower || t == OrderTypeTouchNoTouch || t == OrderTypeTurbo
}

// UsesStrike is true for CALL_PUT only.
func (t OrderType) UsesStrike() bool {
	return t == OrderTypeCallPut
}

// UsesPayoutPerPoint is true for TURBO only.
func (t OrderType) UsesPayoutPerPoint() bool {
	return t == OrderTypeTurbo
}

// OrderStatus is the single authoritative lifecycle enum for both active and completed orders.
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "PENDING"
	OrderStatusWin         OrderStatus = "WIN"
	OrderStatusLoss        OrderStatus = "LOSS"
	OrderStatusCancelled   OrderStatus = "CANCELLED"
	OrderStatusClosedEarly OrderStatus = "CLOSED_EARLY"
)

// ParseOrderStatus normalizes server wording. Unknown values report ok=false.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING", "OPEN":
		return OrderStatusPending, true
	case "WIN", "WON":
		return OrderStatusWin, true
	case "LOSS", "LOST", "LOSE":
		return OrderStatusLoss, true
	case "CANCELLED", "CANCELED":
		return OrderStatusCancelled, true
	case "CLOSED_EARLY", "CLOSED":
		return OrderStatusClosedEarly, true
	}
	return "", false
}

// IsTerminal is true for every status except PENDING.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusWin, OrderStatusLoss, OrderStatusCancelled, OrderStatusClosedEarly:
		return true
	}
	return false
}

// Order is an open position. It only lives while Status is PENDING and ExpiryTime is in the future.
// ProfitPercentage is captured at placement and never changes afterwards.
type Order struct {
	ID               string          `json:"id"`
	Symbol           string          `json:"symbol"`
	Side             Side            `json:"side"`
	Type             OrderType       `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	EntryPrice       float64         `json:"entryPrice"`
	CreatedAt        time.Time       `json:"createdAt"`
	ExpiryTime       time.Time       `json:"expiryTime"`
	ProfitPercentage float64         `json:"profitPercentage"`
	Barrier          *float64        `json:"barrier,omitempty"`
	StrikePrice      *float64        `json:"strikePrice,omitempty"`
	PayoutPerPoint   *float64        `json:"payoutPerPoint,omitempty"`
	IsDemo           bool            `json:"isDemo"`
	Status           OrderStatus     `json:"status"`
}

// Complete produces the terminal record for this order.
func (o Order) Complete(status OrderStatus, closePrice float64, profit decimal.Decimal, closedAt time.Time) CompletedOrder {
	return CompletedOrder{
		ID:               o.ID,
		Symbol:           o.Symbol,
		Side:             o.Side,
		Type:             o.Type,
		Amount:           o.Amount,
		EntryPrice:       o.EntryPrice,
		ClosePrice:       closePrice,
		CreatedAt:        o.CreatedAt,
		ExpiryTime:       o.ExpiryTime,
		ClosedAt:         closedAt,
		ProfitPercentage: o.ProfitPercentage,
		Barrier:          o.Barrier,
		StrikePrice:      o.StrikePrice,
		PayoutPerPoint:   o.PayoutPerPoint,
		IsDemo:           o.IsDemo,
		Status:           status,
		Profit:           profit,
	}
}

// CompletedOrder is immutable once created. Profit is signed.
type CompletedOrder struct {
	ID               string          `json:"id"`
	Symbol           string          `json:"symbol"`
	Side             Side            `json:"side"`
	Type             OrderType       `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	EntryPrice       float64         `json:"entryPrice"`
	ClosePrice       float64         `json:"closePrice"`
	CreatedAt        time.Time       `json:"createdAt"`
	ExpiryTime       time.Time       `json:"expiryTime"`
	ClosedAt         time.Time       `json:"closedAt"`
	ProfitPercentage float64         `json:"profitPercentage"`
	Barrier          *float64        `json:"barrier,omitempty"`
	StrikePrice      *float64        `json:"strikePrice,omitempty"`
	PayoutPerPoint   *float64        `json:"payoutPerPoint,omitempty"`
	IsDemo           bool            `json:"isDemo"`
	Status           OrderStatus     `json:"status"`
	Profit           decimal.Decimal `json:"profit"`
}
