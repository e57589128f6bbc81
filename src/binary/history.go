package binary

import (
	"context"

	"binarytrader/src/connectors"
	"binarytrader/src/model"
)

// LoadMoreCompletedOrders appends the next history page. It does nothing once
// the history is exhausted or while another page is loading.
func (s *Store) LoadMoreCompletedOrders(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasMore || s.loadingMore || s.symbol == "" {
		s.mu.Unlock()
		return nil
	}
	s.loadingMore = true
	symbol := s.symbol
	offset := s.completedLoaded
	gen := s.fetchGen
	s.mu.Unlock()

	currency, pair := s.currencyPair(symbol)
	list, err := s.backend.ListOrders(ctx, connectors.OrderQuery{
		Currency: currency,
		Pair:     pair,
		Status:   connectors.OrderQueryClosed,
		Limit:    s.cfg.PageSize,
		Offset:   offset,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrent(gen) {
		return nil
	}
	s.loadingMore = false
	if err != nil {
		s.log.WithField("offset", offset).WithError(err).Warn("load more completed orders failed")
		return err
	}

	for _, p := range list.Orders {
		if s.hasCompleted(p.ID) {
			continue
		}
		s.completed = append(s.completed, s.completedFromPayload(p, symbol))
	}
	s.completedLoaded += len(list.Orders)
	if list.Pagination.Total > 0 {
		s.completedTotal = list.Pagination.Total
	}
	s.hasMore = len(list.Orders) > 0 && s.completedLoaded < s.completedTotal
	return nil
}

// CompletedOrders returns a copy of the history, most recent first.
func (s *Store) CompletedOrders() []model.CompletedOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CompletedOrder(nil), s.completed...)
}

func (s *Store) HasMoreCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}
