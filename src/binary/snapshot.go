package binary

import (
	"binarytrader/src/model"

	"github.com/shopspring/decimal"
)

// Snapshot is a consistent copy of the store for readers.
type Snapshot struct {
	Initialized       bool                   `json:"initialized"`
	Symbol            string                 `json:"symbol"`
	Mode              model.TradingMode      `json:"mode"`
	Balances          model.Balances         `json:"balances"`
	Balance           decimal.Decimal        `json:"balance"`
	Selection         Selection              `json:"selection"`
	Active            []ActiveOrder          `json:"active"`
	Completed         []model.CompletedOrder `json:"completed"`
	CompletedTotal    int                    `json:"completedTotal"`
	HasMore           bool                   `json:"hasMore"`
	PendingSettlement int                    `json:"pendingSettlement"`
	EnabledOrderTypes []model.OrderType      `json:"enabledOrderTypes"`
}

func (s *Store) Snapshot() Snapshot {
	enabled := s.Settings.EnabledOrderTypes()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	active := make([]ActiveOrder, 0, len(s.active))
	for _, t := range s.active {
		active = append(active, s.view(t, now))
	}
	return Snapshot{
		Initialized:       s.initialized,
		Symbol:            s.symbol,
		Mode:              s.mode,
		Balances:          s.balances,
		Balance:           s.balances.For(s.mode),
		Selection:         s.selection,
		Active:            active,
		Completed:         append([]model.CompletedOrder(nil), s.completed...),
		CompletedTotal:    s.completedTotal,
		HasMore:           s.hasMore,
		PendingSettlement: len(s.pending),
		EnabledOrderTypes: enabled,
	}
}

// ActiveOrders is Snapshot().Active.
func (s *Store) ActiveOrders() []ActiveOrder {
	return s.Snapshot().Active
}
