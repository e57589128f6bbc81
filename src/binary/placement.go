package binary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"binarytrader/src/connectors"
	"binarytrader/src/model"
	"binarytrader/src/risk"
	"binarytrader/src/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const durationTypeTime = "TIME"

// PlaceOrderInput is one user-initiated submission.
type PlaceOrderInput struct {
	Type           model.OrderType `json:"type"`
	Side           model.Side      `json:"side"`
	Amount         decimal.Decimal `json:"amount"`
	ExpiryMinutes  int             `json:"expiryMinutes"`
	Barrier        *float64        `json:"barrier,omitempty"`
	BarrierLevelID string          `json:"barrierLevelId,omitempty"`
	StrikePrice    *float64        `json:"strikePrice,omitempty"`
	StrikeLevelID  string          `json:"strikeLevelId,omitempty"`
	PayoutPerPoint *float64        `json:"payoutPerPoint,omitempty"`
}

type placementContext struct {
	now      time.Time
	symbol   string
	mode     model.TradingMode
	balance  decimal.Decimal
	price    float64
	hasPrice bool
}

// PlaceOrder validates in, submits it with a fresh idempotency key and tracks
// the order the backend acknowledges. Nothing changes locally on failure.
func (s *Store) PlaceOrder(ctx context.Context, in PlaceOrderInput) (model.Order, error) {
	pc := s.placementContext()
	if pc.symbol == "" {
		return model.Order{}, invalid(ErrNoSymbol, "")
	}

	duration, err := s.validate(in, pc)
	if err != nil {
		s.log.WithFields(map[string]interface{}{
			"symbol": pc.symbol,
			"type":   in.Type,
			"side":   in.Side,
			"amount": in.Amount.String(),
		}).WithError(err).Info("order rejected")
		return model.Order{}, err
	}

	profit := duration.ProfitFor(in.Type)
	expiry := risk.ExpiryFor(pc.now, duration.Length(), s.cfg.ExpiryBoundary)
	currency, pair := s.currencyPair(pc.symbol)
	key := IdempotencyKey(pc.now, pc.symbol, in.Side, in.Amount)

	req := connectors.PlaceOrderRequest{
		Currency:       currency,
		Pair:           pair,
		Amount:         in.Amount.InexactFloat64(),
		Side:           string(in.Side),
		ClosedAt:       connectors.Timestamp{Time: expiry},
		DurationID:     duration.ID,
		Type:           string(in.Type),
		DurationType:   durationTypeTime,
		IsDemo:         pc.mode == model.TradingModeDemo,
		BarrierLevelID: in.BarrierLevelID,
		StrikeLevelID:  in.StrikeLevelID,
	}
	if in.Type.UsesBarrier() {
		req.Barrier = in.Barrier
	}
	if in.Type.UsesStrike() {
		req.StrikePrice = in.StrikePrice
	}
	if in.Type.UsesPayoutPerPoint() {
		req.PayoutPerPoint = in.PayoutPerPoint
	}

	if req.IsDemo && !s.reserve(in.Amount) {
		return model.Order{}, invalid(ErrInsufficientBalance, "stake already committed to an order in flight")
	}

	ack, err := s.backend.PlaceOrder(ctx, req, key)
	if err != nil {
		if req.IsDemo {
			s.mu.Lock()
			s.credit(model.TradingModeDemo, in.Amount)
			s.mu.Unlock()
		}
		s.log.WithFields(map[string]interface{}{
			"symbol":          pc.symbol,
			"idempotency_key": key,
		}).WithError(err).Warn("place order failed")
		return model.Order{}, fmt.Errorf("place order: %w", err)
	}

	order := reconcilePlacement(*ack, model.Order{
		Symbol:           pc.symbol,
		Side:             in.Side,
		Type:             in.Type,
		Amount:           in.Amount,
		EntryPrice:       pc.price,
		CreatedAt:        pc.now,
		ExpiryTime:       expiry,
		ProfitPercentage: profit,
		Barrier:          req.Barrier,
		StrikePrice:      req.StrikePrice,
		PayoutPerPoint:   req.PayoutPerPoint,
		IsDemo:           req.IsDemo,
		Status:           model.OrderStatusPending,
	})

	s.mu.Lock()
	if req.IsDemo && !order.Amount.Equal(in.Amount) {
		s.adjust(model.TradingModeDemo, in.Amount.Sub(order.Amount))
	}
	if connectors.NormalizeSymbol(order.Symbol) == connectors.NormalizeSymbol(s.symbol) {
		if _, existing := s.findActive(order.ID); existing == nil {
			s.active = append(s.active, newTracked(order))
		}
	}
	s.mu.Unlock()

	s.log.WithFields(map[string]interface{}{
		"order_id": order.ID,
		"symbol":   order.Symbol,
		"type":     order.Type,
		"side":     order.Side,
		"amount":   order.Amount.String(),
		"expiry":   order.ExpiryTime.Format(time.RFC3339),
	}).Info("order placed")

	if order.IsDemo {
		s.async(s.savePreferences)
	}
	s.async(s.syncWalletQuiet)
	return order, nil
}

// reserve takes the demo stake before the request goes out, so overlapping
// placements cannot spend the same balance twice.
func (s *Store) reserve(amount decimal.Decimal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debit(model.TradingModeDemo, amount)
}

func (s *Store) placementContext() placementContext {
	s.mu.Lock()
	pc := placementContext{
		now:     s.now(),
		symbol:  s.symbol,
		mode:    s.mode,
		balance: s.balances.For(s.mode),
	}
	s.mu.Unlock()
	pc.price, pc.hasPrice = s.Prices.Lookup(pc.symbol, s.Markets.ResolveMarket(pc.symbol))
	return pc
}

// validate runs the fail-fast checks in their fixed order.
func (s *Store) validate(in PlaceOrderInput, pc placementContext) (model.Duration, error) {
	if !in.Amount.IsPositive() {
		return model.Duration{}, invalid(ErrInvalidAmount, "")
	}
	if in.Amount.GreaterThan(pc.balance) {
		return model.Duration{}, invalid(ErrInsufficientBalance, fmt.Sprintf("balance %s", pc.balance.String()))
	}

	cfgs := s.Settings.Settings()
	safeZone := s.cfg.SafeZone
	if cfgs != nil && cfgs.Global.SafeZoneSeconds > 0 {
		safeZone = time.Duration(cfgs.Global.SafeZoneSeconds) * time.Second
	}
	if risk.InSafeZone(pc.now, s.cfg.ExpiryBoundary, safeZone) {
		return model.Duration{}, invalid(ErrSafeZone, "")
	}

	if in.Type.UsesBarrier() && !validLevel(in.Barrier, pc) {
		return model.Duration{}, invalid(ErrBarrierRequired, "")
	}
	if in.Type.UsesStrike() && !validLevel(in.StrikePrice, pc) {
		return model.Duration{}, invalid(ErrStrikeRequired, "")
	}
	if in.Type.UsesPayoutPerPoint() && (in.PayoutPerPoint == nil || *in.PayoutPerPoint <= 0) {
		return model.Duration{}, invalid(ErrPayoutRequired, "")
	}

	if !in.Type.Allows(in.Side) {
		return model.Duration{}, invalid(ErrSideNotAllowed, fmt.Sprintf("%s for %s", in.Side, in.Type))
	}

	duration, ok := s.Settings.FindDuration(in.ExpiryMinutes)
	if !ok {
		return model.Duration{}, invalid(ErrUnknownDuration, fmt.Sprintf("%d minutes", in.ExpiryMinutes))
	}

	if cfgs == nil || !cfgs.Global.TradingEnabled() {
		return model.Duration{}, invalid(ErrOrderTypeDisabled, string(in.Type))
	}
	typeCfg, ok := cfgs.OrderTypes[in.Type]
	if !ok || !typeCfg.Enabled {
		return model.Duration{}, invalid(ErrOrderTypeDisabled, string(in.Type))
	}
	if pc.mode == model.TradingModeDemo && !cfgs.Global.PracticeAllowed() {
		return model.Duration{}, invalid(ErrPracticeDisabled, "")
	}
	if typeCfg.MinAmount.IsPositive() && in.Amount.LessThan(typeCfg.MinAmount) ||
		typeCfg.MaxAmount.IsPositive() && in.Amount.GreaterThan(typeCfg.MaxAmount) {
		return model.Duration{}, invalid(ErrAmountOutOfRange, fmt.Sprintf("%s..%s", typeCfg.MinAmount.String(), typeCfg.MaxAmount.String()))
	}
	return duration, nil
}

// validLevel needs a positive level that differs from the current price when one is known.
func validLevel(level *float64, pc placementContext) bool {
	if level == nil || *level <= 0 {
		return false
	}
	return !pc.hasPrice || *level != pc.price
}

// IdempotencyKey is unique per submission: millis, symbol, side, amount and a random suffix.
func IdempotencyKey(now time.Time, symbol string, side model.Side, amount decimal.Decimal) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s-%s-%s-%s", utils.ToMillis(now), connectors.NormalizeSymbol(symbol), side, amount.String(), suffix)
}

// reconcilePlacement prefers every field the backend echoed over what was sent.
func reconcilePlacement(ack connectors.OrderPayload, local model.Order) model.Order {
	o := local
	o.ID = ack.ID
	if ack.Symbol != "" {
		o.Symbol = ack.Symbol
	}
	if ack.Side != "" {
		o.Side = model.Side(strings.ToUpper(ack.Side))
	}
	if t, ok := model.ParseOrderType(ack.Type); ok {
		o.Type = t
	}
	if ack.Amount.IsPositive() {
		o.Amount = ack.Amount
	}
	if ack.Price > 0 {
		o.EntryPrice = ack.Price
	}
	if !ack.CreatedAt.IsZero() {
		o.CreatedAt = ack.CreatedAt.Time
	}
	if !ack.ClosedAt.IsZero() {
		o.ExpiryTime = ack.ClosedAt.Time
	}
	if ack.ProfitPercentage != nil && *ack.ProfitPercentage > 0 {
		o.ProfitPercentage = *ack.ProfitPercentage
	}
	if ack.Barrier != nil {
		o.Barrier = ack.Barrier
	}
	if ack.StrikePrice != nil {
		o.StrikePrice = ack.StrikePrice
	}
	if ack.PayoutPerPoint != nil {
		o.PayoutPerPoint = ack.PayoutPerPoint
	}
	o.Status = model.OrderStatusPending
	return o
}
