package market

import (
	"strings"
	"sync"

	"binarytrader/src/model"
)

const (
	fallbackBaseLength = 3
	fallbackQuote      = "USDT"
)

// Resolver maps trading symbols to market metadata using the locally cached market list.
type Resolver struct {
	mu      sync.RWMutex
	markets []model.Market
}

func NewResolver(markets []model.Market) *Resolver {
	r := &Resolver{}
	r.SetMarkets(markets)
	return r
}

// SetMarkets replaces the cached list.
func (r *Resolver) SetMarkets(markets []model.Market) {
	cp := make([]model.Market, len(markets))
	copy(cp, markets)

	r.mu.Lock()
	r.markets = cp
	r.mu.Unlock()
}

// Markets returns a copy of the cached list.
func (r *Resolver) Markets() []model.Market {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make([]model.Market, len(r.markets))
	copy(cp, r.markets)
	return cp
}

// ResolveMarket matches symbol against each market's symbol, label, BASEQUOTE and BASE/QUOTE.
// Returns nil when nothing matches.
func (r *Resolver) ResolveMarket(symbol string) *model.Market {
	if symbol == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.markets {
		m := r.markets[i]
		if m.Symbol == symbol ||
			(m.Label != "" && m.Label == symbol) ||
			(m.Currency != "" && m.Pair != "" && (m.Joined() == symbol || m.Slashed() == symbol)) {
			return &m
		}
	}
	return nil
}

// ExtractBaseCurrency prefers the resolved market, then falls back to SplitSymbol.
func (r *Resolver) ExtractBaseCurrency(symbol string) string {
	if m := r.ResolveMarket(symbol); m != nil && m.Currency != "" {
		return m.Currency
	}
	base, _ := SplitSymbol(symbol)
	return base
}

// ExtractQuoteCurrency prefers the resolved market, then falls back to SplitSymbol.
func (r *Resolver) ExtractQuoteCurrency(symbol string) string {
	if m := r.ResolveMarket(symbol); m != nil && m.Pair != "" {
		return m.Pair
	}
	_, quote := SplitSymbol(symbol)
	return quote
}

// SplitSymbol is the degraded path used when no market list is available:
// BASE/QUOTE splits on the slash, anything else takes the first three characters as base and USDT as quote.
func SplitSymbol(symbol string) (base, quote string) {
	if parts := strings.SplitN(symbol, "/", 2); len(parts) == 2 {
		return parts[0], parts[1]
	}
	if len(symbol) <= fallbackBaseLength {
		return symbol, fallbackQuote
	}
	return symbol[:fallbackBaseLength], fallbackQuote
}

// SelectBestMarket returns the first tradable market, else the first market, else nil.
func SelectBestMarket(markets []model.Market) *model.Market {
	for i := range markets {
		if markets[i].Status {
			m := markets[i]
			return &m
		}
	}
	if len(markets) > 0 {
		m := markets[0]
		return &m
	}
	return nil
}
