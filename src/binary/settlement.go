package binary

import (
	"context"

	"binarytrader/src/connectors"
	"binarytrader/src/model"
)

// settle moves a completed order from the active or pending set into history.
// Unknown orders for the current symbol are recorded as well; repeats are ignored.
func (s *Store) settle(p connectors.OrderPayload, fromPush bool) {
	s.mu.Lock()
	if s.symbol == "" || (p.Symbol != "" && connectors.NormalizeSymbol(p.Symbol) != connectors.NormalizeSymbol(s.symbol)) {
		s.mu.Unlock()
		return
	}
	if s.hasCompleted(p.ID) {
		s.mu.Unlock()
		return
	}

	var order model.Order
	found := false
	if i, t := s.findActive(p.ID); t != nil {
		order = t.order
		found = true
		s.removeActive(i)
	} else if pend, ok := s.pending[p.ID]; ok {
		order = pend.order
		found = true
	}
	delete(s.pending, p.ID)

	if !found {
		if !fromPush {
			s.mu.Unlock()
			return
		}
		order = s.fromPayload(p, s.symbol)
	}

	done := s.complete(order, p)
	s.prependCompleted(done)

	if done.IsDemo && done.Status == model.OrderStatusWin {
		s.credit(model.TradingModeDemo, done.Amount.Add(done.Profit))
	}
	s.mu.Unlock()

	s.log.WithFields(map[string]interface{}{
		"order_id": done.ID,
		"status":   done.Status,
		"profit":   done.Profit.String(),
		"push":     fromPush,
	}).Info("order settled")

	if done.IsDemo {
		s.async(s.savePreferences)
	} else {
		s.async(s.syncWalletQuiet)
	}
}

// reconcileExpired re-fetches completed orders for the current symbol and
// settles those still waiting for a push event.
func (s *Store) reconcileExpired(ctx context.Context) {
	s.mu.Lock()
	if len(s.pending) == 0 || s.symbol == "" {
		s.mu.Unlock()
		return
	}
	symbol := s.symbol
	gen := s.fetchGen
	s.mu.Unlock()

	currency, pair := s.currencyPair(symbol)
	list, err := s.backend.ListOrders(ctx, connectors.OrderQuery{
		Currency: currency,
		Pair:     pair,
		Status:   connectors.OrderQueryClosed,
		Limit:    s.cfg.PageSize,
	})
	if err != nil {
		s.log.WithField("symbol", symbol).WithError(err).Warn("settlement refetch failed")
		return
	}

	s.mu.Lock()
	stale := !s.isCurrent(gen)
	s.mu.Unlock()
	if stale {
		return
	}

	for _, p := range list.Orders {
		if p.Symbol == "" {
			p.Symbol = symbol
		}
		s.settle(p, false)
	}
}

// PendingSettlements is the number of expired orders still awaiting a result.
func (s *Store) PendingSettlements() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// must run under s.mu
func (s *Store) hasCompleted(id string) bool {
	for _, c := range s.completed {
		if c.ID == id {
			return true
		}
	}
	return false
}

// must run under s.mu
func (s *Store) prependCompleted(c model.CompletedOrder) {
	s.completed = append([]model.CompletedOrder{c}, s.completed...)
	s.completedTotal++
	s.completedLoaded++
}
