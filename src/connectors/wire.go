package connectors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"binarytrader/src/utils"

	"github.com/shopspring/decimal"
)

// Timestamp accepts RFC3339 strings and epoch milliseconds.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			t.Time = utils.FromMillis(ms)
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}
	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %s: %w", string(b), err)
	}
	t.Time = utils.FromMillis(int64(ms))
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// PlaceOrderRequest is the POST /orders body.
type PlaceOrderRequest struct {
	Currency       string    `json:"currency"`
	Pair           string    `json:"pair"`
	Amount         float64   `json:"amount"`
	Side           string    `json:"side"`
	ClosedAt       Timestamp `json:"closedAt"`
	DurationID     string    `json:"durationId"`
	Type           string    `json:"type"`
	DurationType   string    `json:"durationType"`
	IsDemo         bool      `json:"isDemo"`
	Barrier        *float64  `json:"barrier,omitempty"`
	BarrierLevelID string    `json:"barrierLevelId,omitempty"`
	StrikePrice    *float64  `json:"strikePrice,omitempty"`
	StrikeLevelID  string    `json:"strikeLevelId,omitempty"`
	PayoutPerPoint *float64  `json:"payoutPerPoint,omitempty"`
}

// OrderPayload is an order as the backend reports it, in REST answers and push messages.
type OrderPayload struct {
	ID               string           `json:"id"`
	Symbol           string           `json:"symbol"`
	Side             string           `json:"side"`
	Type             string           `json:"type"`
	Status           string           `json:"status"`
	Amount           decimal.Decimal  `json:"amount"`
	Price            float64          `json:"price"`
	ClosePrice       *float64         `json:"closePrice,omitempty"`
	Profit           *decimal.Decimal `json:"profit,omitempty"`
	ProfitPercentage *float64         `json:"profitPercentage,omitempty"`
	Barrier          *float64         `json:"barrier,omitempty"`
	StrikePrice      *float64         `json:"strikePrice,omitempty"`
	PayoutPerPoint   *float64         `json:"payoutPerPoint,omitempty"`
	IsDemo           bool             `json:"isDemo"`
	CreatedAt        Timestamp        `json:"createdAt"`
	ClosedAt         Timestamp        `json:"closedAt"`
}

// OrderQuery filters GET /orders.
type OrderQuery struct {
	Currency string
	Pair     string
	Status   string // OPEN or CLOSED
	Limit    int
	Offset   int
}

const (
	OrderQueryOpen   = "OPEN"
	OrderQueryClosed = "CLOSED"
)

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type OrderList struct {
	Orders     []OrderPayload `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

type CancelResult struct {
	RefundAmount    decimal.Decimal `json:"refundAmount"`
	CancellationFee decimal.Decimal `json:"cancellationFee"`
}

type CashOutResult struct {
	CashoutAmount decimal.Decimal `json:"cashoutAmount"`
	Penalty       decimal.Decimal `json:"penalty"`
}
