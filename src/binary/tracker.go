package binary

import (
	"time"

	"binarytrader/src/model"
	"binarytrader/src/risk"
	"binarytrader/src/utils"

	"github.com/shopspring/decimal"
)

// trendingFor is how long the favorable-move flag stays on.
const trendingFor = time.Second

type trackedOrder struct {
	order         model.Order
	price         float64
	hasPrice      bool
	pnl           decimal.Decimal
	history       []decimal.Decimal
	trending      bool
	trendingUntil time.Time
	countdown     string
}

func newTracked(o model.Order) *trackedOrder {
	return &trackedOrder{order: o}
}

// ActiveOrder is a read-only view of one tracked order.
type ActiveOrder struct {
	model.Order
	CurrentPrice float64           `json:"currentPrice"`
	HasPrice     bool              `json:"hasPrice"`
	PnL          decimal.Decimal   `json:"pnl"`
	Winning      bool              `json:"winning"`
	History      []decimal.Decimal `json:"history"`
	Trending     bool              `json:"trending"`
	Countdown    string            `json:"countdown"`
	Remaining    time.Duration     `json:"remaining"`
	CanCancel    bool              `json:"canCancel"`
	CanCashOut   bool              `json:"canCashOut"`
}

func winProfit(o model.Order) decimal.Decimal {
	return risk.WinProfit(o.Amount, o.ProfitPercentage)
}

func settledStatus(o model.Order, closePrice, touchThreshold float64) model.OrderStatus {
	if risk.IsWinning(o, closePrice, touchThreshold) {
		return model.OrderStatusWin
	}
	return model.OrderStatusLoss
}

// Tick advances every active order to now: price, P/L, history, countdown and
// sound cues. Orders past expiry leave the active set and wait for settlement.
func (s *Store) Tick(now time.Time) {
	var cues []SoundCue
	refetch := false

	s.mu.Lock()
	kept := s.active[:0]
	for _, t := range s.active {
		if !now.Before(t.order.ExpiryTime) {
			s.pending[t.order.ID] = pendingSettlement{order: t.order, expired: now}
			delete(s.lastPlayed, t.order.ID)
			continue
		}
		s.track(t, now)
		if cue, ok := s.cueFor(t.order, now); ok {
			cues = append(cues, cue)
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = kept

	for id, p := range s.pending {
		if s.cfg.SettlementGiveUp > 0 && now.Sub(p.expired) >= s.cfg.SettlementGiveUp {
			delete(s.pending, id)
			s.log.WithFields(map[string]interface{}{
				"order_id": id,
				"symbol":   p.order.Symbol,
			}).Warn("no settlement received, giving up on order")
		}
	}
	if len(s.pending) > 0 && s.refetch.AllowN(now, 1) {
		refetch = true
	}
	refresh := false
	if s.initialized && !s.refreshing && len(s.Settings.StaleKeys()) > 0 {
		s.refreshing = true
		refresh = true
	}
	s.mu.Unlock()

	if s.cfg.SoundEnabled {
		for _, c := range cues {
			s.sound.Play(c)
		}
	}
	if refetch {
		s.async(s.reconcileExpired)
	}
	if refresh {
		s.async(s.refreshStale)
	}
}

// track must run under s.mu.
func (s *Store) track(t *trackedOrder, now time.Time) {
	t.countdown = utils.FormatCountdown(t.order.ExpiryTime.Sub(now))
	if t.trending && !now.Before(t.trendingUntil) {
		t.trending = false
	}

	price, ok := s.Prices.Lookup(t.order.Symbol, s.Markets.ResolveMarket(t.order.Symbol))
	if !ok {
		return
	}
	pnl := risk.UnrealizedPnL(t.order, price, s.cfg.TouchThresholdPercent)
	if len(t.history) > 0 && pnl.GreaterThan(t.history[len(t.history)-1]) {
		t.trending = true
		t.trendingUntil = now.Add(trendingFor)
	}
	t.price = price
	t.hasPrice = true
	t.pnl = pnl
	t.history = append(t.history, pnl)
	if over := len(t.history) - s.cfg.HistorySize; over > 0 {
		t.history = append([]decimal.Decimal(nil), t.history[over:]...)
	}
}

// cueFor plays each countdown second at most once per order. Must run under s.mu.
func (s *Store) cueFor(o model.Order, now time.Time) (SoundCue, bool) {
	left := utils.SecondsLeft(o.ExpiryTime.Sub(now))
	var cue SoundCue
	switch {
	case left == 1:
		cue = SoundFinal
	case left >= 2 && left <= 5:
		cue = SoundTick
	default:
		return "", false
	}
	if last, ok := s.lastPlayed[o.ID]; ok && last == left {
		return "", false
	}
	s.lastPlayed[o.ID] = left
	return cue, true
}

func (s *Store) view(t *trackedOrder, now time.Time) ActiveOrder {
	w := s.cfg.windows()
	countdown := t.countdown
	if countdown == "" {
		countdown = utils.FormatCountdown(t.order.ExpiryTime.Sub(now))
	}
	return ActiveOrder{
		Order:        t.order,
		CurrentPrice: t.price,
		HasPrice:     t.hasPrice,
		PnL:          t.pnl,
		Winning:      t.hasPrice && t.pnl.IsPositive(),
		History:      append([]decimal.Decimal(nil), t.history...),
		Trending:     t.trending,
		Countdown:    countdown,
		Remaining:    t.order.ExpiryTime.Sub(now),
		CanCancel:    risk.CanCancel(t.order, now, w),
		CanCashOut:   risk.CanCashOut(t.order, now, w),
	}
}

func (s *Store) findActive(id string) (int, *trackedOrder) {
	for i, t := range s.active {
		if t.order.ID == id {
			return i, t
		}
	}
	return -1, nil
}

func (s *Store) removeActive(i int) {
	id := s.active[i].order.ID
	s.active = append(s.active[:i], s.active[i+1:]...)
	delete(s.lastPlayed, id)
}
