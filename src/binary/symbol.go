package binary

import (
	"context"
	"math"
	"strings"
	"time"

	"binarytrader/src/connectors"
	"binarytrader/src/model"

	"github.com/shopspring/decimal"
)

// SetCurrentSymbol switches the session to symbol. Orders fetched for a
// previously selected symbol are discarded when they arrive late.
func (s *Store) SetCurrentSymbol(ctx context.Context, symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return invalid(ErrNoSymbol, "")
	}
	if m := s.Markets.ResolveMarket(symbol); m != nil {
		symbol = m.Symbol
	}

	s.mu.Lock()
	if s.symbol == symbol {
		s.mu.Unlock()
		return nil
	}
	s.symbol = symbol
	s.fetchGen++
	gen := s.fetchGen
	s.active = nil
	s.pending = map[string]pendingSettlement{}
	s.lastPlayed = map[string]int{}
	s.completed = nil
	s.completedTotal = 0
	s.completedLoaded = 0
	s.hasMore = false
	s.loadingMore = false
	s.mu.Unlock()

	s.subscribe(symbol)
	s.savePreferences(ctx)
	s.loadSymbolOrders(ctx, symbol, gen)
	return ctx.Err()
}

func (s *Store) isCurrent(gen uint64) bool {
	return s.fetchGen == gen
}

// subscribe swaps the push listeners over to symbol.
func (s *Store) subscribe(symbol string) {
	if s.poller != nil {
		if symbol == "" {
			s.poller.Track()
		} else {
			s.poller.Track(symbol)
		}
	}
	if s.messenger == nil {
		return
	}
	if symbol == "" {
		s.release("push:order")
		s.release("push:ticker")
		return
	}
	s.register("push:order", s.messenger.Subscribe(connectors.Subscription{
		Type:   connectors.SubscriptionOrder,
		Symbol: symbol,
		UserID: s.cfg.UserID,
	}, s.handlePush))
	s.register("push:ticker", s.messenger.Subscribe(connectors.Subscription{
		Type:   connectors.SubscriptionTicker,
		Symbol: symbol,
	}, s.handlePush))
}

func (s *Store) handlePush(msg connectors.PushMessage) {
	switch msg.Type {
	case connectors.PushOrderCompleted:
		if msg.Order != nil {
			s.settle(*msg.Order, true)
		}
	case connectors.PushTicker:
		s.UpdatePrice(msg.Symbol, msg.Price)
	}
}

// loadSymbolOrders fetches the open orders and the first completed page for symbol.
func (s *Store) loadSymbolOrders(ctx context.Context, symbol string, gen uint64) {
	currency, pair := s.currencyPair(symbol)

	open, err := s.backend.ListOrders(ctx, connectors.OrderQuery{
		Currency: currency,
		Pair:     pair,
		Status:   connectors.OrderQueryOpen,
	})
	if err != nil {
		s.log.WithField("symbol", symbol).WithError(err).Warn("fetch open orders failed")
	} else {
		now := s.now()
		var tracked []*trackedOrder
		for _, p := range open.Orders {
			o := s.fromPayload(p, symbol)
			if o.Status != model.OrderStatusPending || !o.ExpiryTime.After(now) {
				continue
			}
			tracked = append(tracked, newTracked(o))
		}
		s.mu.Lock()
		if s.isCurrent(gen) {
			s.active = tracked
		}
		s.mu.Unlock()
	}

	closed, err := s.backend.ListOrders(ctx, connectors.OrderQuery{
		Currency: currency,
		Pair:     pair,
		Status:   connectors.OrderQueryClosed,
		Limit:    s.cfg.PageSize,
	})
	if err != nil {
		s.log.WithField("symbol", symbol).WithError(err).Warn("fetch completed orders failed")
		return
	}
	history := make([]model.CompletedOrder, 0, len(closed.Orders))
	for _, p := range closed.Orders {
		history = append(history, s.completedFromPayload(p, symbol))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrent(gen) {
		return
	}
	s.completed = history
	s.completedLoaded = len(closed.Orders)
	s.completedTotal = closed.Pagination.Total
	if s.completedTotal < s.completedLoaded {
		s.completedTotal = s.completedLoaded
	}
	s.hasMore = s.completedLoaded < s.completedTotal
}

func (s *Store) currencyPair(symbol string) (string, string) {
	return s.Markets.ExtractBaseCurrency(symbol), s.Markets.ExtractQuoteCurrency(symbol)
}

// fromPayload maps a backend order. fallbackSymbol fills an empty symbol.
func (s *Store) fromPayload(p connectors.OrderPayload, fallbackSymbol string) model.Order {
	status, ok := model.ParseOrderStatus(p.Status)
	if !ok {
		status = model.OrderStatusPending
	}
	symbol := p.Symbol
	if symbol == "" {
		symbol = fallbackSymbol
	}
	t, _ := model.ParseOrderType(p.Type)
	if t == "" {
		t = model.OrderTypeRiseFall
	}
	o := model.Order{
		ID:             p.ID,
		Symbol:         symbol,
		Side:           model.Side(strings.ToUpper(p.Side)),
		Type:           t,
		Amount:         p.Amount,
		EntryPrice:     p.Price,
		CreatedAt:      p.CreatedAt.Time,
		ExpiryTime:     p.ClosedAt.Time,
		Barrier:        p.Barrier,
		StrikePrice:    p.StrikePrice,
		PayoutPerPoint: p.PayoutPerPoint,
		IsDemo:         p.IsDemo,
		Status:         status,
	}
	if p.ProfitPercentage != nil {
		o.ProfitPercentage = *p.ProfitPercentage
	} else {
		o.ProfitPercentage = s.profitFor(o.Type, o.ExpiryTime.Sub(o.CreatedAt))
	}
	return o
}

func (s *Store) completedFromPayload(p connectors.OrderPayload, fallbackSymbol string) model.CompletedOrder {
	o := s.fromPayload(p, fallbackSymbol)
	return s.complete(o, p)
}

// complete turns o into its terminal record using whatever the backend reported.
func (s *Store) complete(o model.Order, p connectors.OrderPayload) model.CompletedOrder {
	closePrice := o.EntryPrice
	if p.ClosePrice != nil {
		closePrice = *p.ClosePrice
	}
	closedAt := p.ClosedAt.Time
	if closedAt.IsZero() {
		closedAt = o.ExpiryTime
	}

	status, ok := model.ParseOrderStatus(p.Status)
	if !ok || !status.IsTerminal() {
		status = settledStatus(o, closePrice, s.cfg.TouchThresholdPercent)
	}

	var profit decimal.Decimal
	switch {
	case p.Profit != nil:
		profit = *p.Profit
	case status == model.OrderStatusWin:
		profit = winProfit(o)
	case status == model.OrderStatusLoss:
		profit = o.Amount.Neg()
	}
	return o.Complete(status, closePrice, profit, closedAt)
}

// profitFor looks the percentage up from the duration closest to length.
func (s *Store) profitFor(t model.OrderType, length time.Duration) float64 {
	minutes := int(math.Ceil(length.Minutes()))
	if d, ok := s.Settings.FindDuration(minutes); ok {
		return d.ProfitFor(t)
	}
	if cfg, ok := s.Settings.OrderTypeConfig(t); ok {
		return cfg.ProfitPercentage
	}
	return 0
}
