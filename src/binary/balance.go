package binary

import (
	"context"
	"fmt"

	"binarytrader/src/model"

	"github.com/shopspring/decimal"
)

// Balances returns both balances.
func (s *Store) Balances() model.Balances {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances
}

// Balance is the balance of the active trading mode.
func (s *Store) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances.For(s.mode)
}

// credit adds v to mode's balance. Must run under s.mu.
func (s *Store) credit(mode model.TradingMode, v decimal.Decimal) {
	if v.IsZero() {
		return
	}
	s.adjust(mode, v)
}

// debit refuses to take a balance below zero. Must run under s.mu.
func (s *Store) debit(mode model.TradingMode, v decimal.Decimal) bool {
	return s.adjust(mode, v.Neg())
}

func (s *Store) adjust(mode model.TradingMode, delta decimal.Decimal) bool {
	cur := s.balances.For(mode)
	next := cur.Add(delta)
	if next.IsNegative() {
		s.log.WithFields(map[string]interface{}{
			"mode":    mode,
			"balance": cur.String(),
			"delta":   delta.String(),
		}).Warn("balance mutation rejected, would go negative")
		return false
	}
	if mode == model.TradingModeReal {
		s.balances.Real = next
	} else {
		s.balances.Demo = next
	}
	return true
}

func modeOf(isDemo bool) model.TradingMode {
	if isDemo {
		return model.TradingModeDemo
	}
	return model.TradingModeReal
}

// SyncWallet refreshes the real balance from the backend wallet. On failure the
// last known value stays and the next trigger retries.
func (s *Store) SyncWallet(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	s.mu.Lock()
	symbol := s.symbol
	s.mu.Unlock()

	currency := s.Markets.ExtractQuoteCurrency(symbol)
	if symbol == "" {
		currency = "USDT"
	}
	bal, err := s.backend.GetWalletBalance(ctx, s.cfg.WalletType, currency)
	if err != nil {
		return fmt.Errorf("sync wallet %s/%s: %w", s.cfg.WalletType, currency, err)
	}

	s.mu.Lock()
	s.balances.Real = bal
	s.mu.Unlock()
	return nil
}

func (s *Store) syncWalletQuiet(ctx context.Context) {
	if err := s.SyncWallet(ctx); err != nil {
		s.log.WithError(err).Debug("wallet sync failed, keeping last balance")
	}
}

// SetTradingMode switches between demo and real and re-syncs the wallet.
func (s *Store) SetTradingMode(ctx context.Context, mode model.TradingMode) {
	s.mu.Lock()
	changed := s.mode != mode
	s.mode = mode
	s.mu.Unlock()

	if changed {
		s.savePreferences(ctx)
	}
	s.async(s.syncWalletQuiet)
}
