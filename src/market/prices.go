package market

import (
	"strings"
	"sync"
	"time"

	"binarytrader/src/model"
)

// Tick is the latest streamed price for one feed key.
type Tick struct {
	Symbol string
	Price  float64
	At     time.Time
}

// PriceBook keeps the most recent tick per feed key plus the last tick seen globally.
type PriceBook struct {
	mu     sync.RWMutex
	prices map[string]Tick
	last   *Tick
}

func NewPriceBook() *PriceBook {
	return &PriceBook{prices: make(map[string]Tick)}
}

// Update records a tick. Non-positive prices are ignored.
func (b *PriceBook) Update(symbol string, price float64, at time.Time) {
	if symbol == "" || price <= 0 {
		return
	}
	t := Tick{Symbol: symbol, Price: price, At: at}

	b.mu.Lock()
	b.prices[symbol] = t
	b.last = &t
	b.mu.Unlock()
}

// Lookup resolves the price for symbol: exact key, then slash/no-slash/case variants,
// then the market's currency+pair reconstruction, then the last globally known price.
func (b *PriceBook) Lookup(symbol string, m *model.Market) (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, key := range candidateKeys(symbol, m) {
		if t, ok := b.prices[key]; ok {
			return t.Price, true
		}
	}
	if b.last != nil {
		return b.last.Price, true
	}
	return 0, false
}

// Clear forgets every tick.
func (b *PriceBook) Clear() {
	b.mu.Lock()
	b.prices = make(map[string]Tick)
	b.last = nil
	b.mu.Unlock()
}

func candidateKeys(symbol string, m *model.Market) []string {
	noSlash := strings.ReplaceAll(symbol, "/", "")
	keys := []string{
		symbol,
		noSlash,
		strings.ToUpper(symbol),
		strings.ToLower(symbol),
		strings.ToUpper(noSlash),
		strings.ToLower(noSlash),
	}
	upper := strings.ToUpper(symbol)
	if !strings.Contains(symbol, "/") && len(upper) > len(fallbackQuote) && strings.HasSuffix(upper, fallbackQuote) {
		keys = append(keys, strings.TrimSuffix(upper, fallbackQuote)+"/"+fallbackQuote)
	}
	if m != nil {
		keys = append(keys, m.Symbol, m.Joined(), m.Slashed(), strings.ToUpper(m.Joined()), strings.ToLower(m.Joined()))
	}
	return keys
}
