package binary

import (
	"context"
	"fmt"

	"binarytrader/src/connectors"
	"binarytrader/src/model"
	"binarytrader/src/risk"
)

// CancelOrder cancels an order with at least the cancel window left. The stake
// minus the cancellation fee goes back to the order's balance.
func (s *Store) CancelOrder(ctx context.Context, id string) (model.CompletedOrder, error) {
	s.mu.Lock()
	_, t := s.findActive(id)
	if t == nil {
		s.mu.Unlock()
		return model.CompletedOrder{}, invalid(ErrOrderNotFound, id)
	}
	order := t.order
	now := s.now()
	s.mu.Unlock()

	if cfgs := s.Settings.Settings(); cfgs != nil && !cfgs.Global.CancellationAllowed() {
		return model.CompletedOrder{}, invalid(ErrCancellationDisabled, "")
	}
	if !risk.CanCancel(order, now, s.cfg.windows()) {
		return model.CompletedOrder{}, invalid(ErrCancelWindow, fmt.Sprintf("%s left", order.ExpiryTime.Sub(now)))
	}

	res, err := s.backend.CancelOrder(ctx, id, order.IsDemo)
	if err != nil {
		s.dropIfGone(id, err)
		return model.CompletedOrder{}, fmt.Errorf("cancel order: %w", err)
	}

	fee := res.CancellationFee
	price, ok := s.Prices.Lookup(order.Symbol, s.Markets.ResolveMarket(order.Symbol))
	if !ok {
		price = order.EntryPrice
	}
	done := order.Complete(model.OrderStatusCancelled, price, fee.Neg(), s.now())

	s.mu.Lock()
	if i, t := s.findActive(id); t != nil {
		s.removeActive(i)
		s.credit(modeOf(order.IsDemo), order.Amount.Sub(fee))
		s.prependCompleted(done)
	}
	s.mu.Unlock()

	s.log.WithFields(map[string]interface{}{
		"order_id": id,
		"fee":      fee.String(),
	}).Info("order cancelled")
	s.afterExit(order)
	return done, nil
}

// QuoteCashOut is the advisory early-close value at the current price.
func (s *Store) QuoteCashOut(id string) (risk.CashOutQuote, error) {
	s.mu.Lock()
	_, t := s.findActive(id)
	if t == nil {
		s.mu.Unlock()
		return risk.CashOutQuote{}, invalid(ErrOrderNotFound, id)
	}
	order := t.order
	now := s.now()
	s.mu.Unlock()

	price, ok := s.Prices.Lookup(order.Symbol, s.Markets.ResolveMarket(order.Symbol))
	if !ok {
		return risk.CashOutQuote{}, invalid(ErrNoPrice, order.Symbol)
	}
	return risk.QuoteCashOut(order, price, now, s.penaltyPercent(), s.cfg.TouchThresholdPercent), nil
}

// CashOut closes an order early at the backend's cash-out amount.
func (s *Store) CashOut(ctx context.Context, id string) (model.CompletedOrder, error) {
	s.mu.Lock()
	_, t := s.findActive(id)
	if t == nil {
		s.mu.Unlock()
		return model.CompletedOrder{}, invalid(ErrOrderNotFound, id)
	}
	order := t.order
	now := s.now()
	s.mu.Unlock()

	if cfgs := s.Settings.Settings(); cfgs != nil && !cfgs.Global.CashOutAllowed() {
		return model.CompletedOrder{}, invalid(ErrCashOutDisabled, "")
	}
	if !risk.CanCashOut(order, now, s.cfg.windows()) {
		return model.CompletedOrder{}, invalid(ErrCashOutWindow, "")
	}
	price, ok := s.Prices.Lookup(order.Symbol, s.Markets.ResolveMarket(order.Symbol))
	if !ok {
		return model.CompletedOrder{}, invalid(ErrNoPrice, order.Symbol)
	}
	quote := risk.QuoteCashOut(order, price, now, s.penaltyPercent(), s.cfg.TouchThresholdPercent)

	res, err := s.backend.CloseOrder(ctx, id, order.IsDemo, price)
	if err != nil {
		s.dropIfGone(id, err)
		return model.CompletedOrder{}, fmt.Errorf("cash out order: %w", err)
	}

	amount := res.CashoutAmount
	if amount.IsZero() && res.Penalty.IsZero() {
		amount = quote.Value
	}
	if !amount.Equal(quote.Value) {
		s.log.WithFields(map[string]interface{}{
			"order_id": id,
			"quoted":   quote.Value.String(),
			"server":   amount.String(),
		}).Debug("cash-out amount differs from local quote")
	}
	done := order.Complete(model.OrderStatusClosedEarly, price, amount.Sub(order.Amount), s.now())

	s.mu.Lock()
	if i, t := s.findActive(id); t != nil {
		s.removeActive(i)
		s.credit(modeOf(order.IsDemo), amount)
		s.prependCompleted(done)
	}
	s.mu.Unlock()

	s.log.WithFields(map[string]interface{}{
		"order_id": id,
		"amount":   amount.String(),
		"penalty":  res.Penalty.String(),
	}).Info("order cashed out")
	s.afterExit(order)
	return done, nil
}

func (s *Store) penaltyPercent() float64 {
	if cfgs := s.Settings.Settings(); cfgs != nil && cfgs.Global.CashOutPenaltyPercent > 0 {
		return cfgs.Global.CashOutPenaltyPercent
	}
	return s.cfg.CashOutPenaltyPercent
}

// dropIfGone removes an order the backend no longer knows about.
func (s *Store) dropIfGone(id string, err error) {
	if !connectors.IsNotFound(err) {
		return
	}
	s.mu.Lock()
	if i, t := s.findActive(id); t != nil {
		s.removeActive(i)
	}
	delete(s.pending, id)
	s.mu.Unlock()
	s.log.WithField("order_id", id).Info("order unknown to backend, removed locally")
}

func (s *Store) afterExit(o model.Order) {
	if o.IsDemo {
		s.async(s.savePreferences)
		return
	}
	s.async(s.syncWalletQuiet)
}
