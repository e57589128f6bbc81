package connectors

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	logger "github.com/sirupsen/logrus"
)

var knownQuotes = []string{"USDT", "USDC", "BUSD", "BTC", "ETH", "EUR", "USD"}

// TickerSource is the slice of goex.API the poller needs.
type TickerSource interface {
	GetTicker(pair goex.CurrencyPair) (*goex.Ticker, error)
}

// PriceSink receives one observed last price.
type PriceSink func(symbol string, price float64)

// TickerPoller polls last prices for the tracked symbols. It backs up the push
// channel's TICKER frames when the backend does not stream prices.
type TickerPoller struct {
	source   TickerSource
	interval time.Duration
	log      *logger.Entry

	mu      sync.Mutex
	symbols map[string]struct{}
}

// NewBinanceTickerSource returns a goex binance client on endpoint.
func NewBinanceTickerSource(endpoint string) TickerSource {
	if endpoint == "" {
		endpoint = binance.GLOBAL_API_BASE_URL
	}
	return binance.NewWithConfig(&goex.APIConfig{
		HttpClient: &http.Client{Timeout: 10 * time.Second},
		Endpoint:   endpoint,
	})
}

func NewTickerPoller(source TickerSource, interval time.Duration) *TickerPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &TickerPoller{
		source:   source,
		interval: interval,
		log:      logger.WithField("component", "ticker_poller"),
		symbols:  map[string]struct{}{},
	}
}

// Track replaces the polled symbol set.
func (p *TickerPoller) Track(symbols ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.symbols = make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if s = strings.TrimSpace(s); s != "" {
			p.symbols[s] = struct{}{}
		}
	}
}

func (p *TickerPoller) tracked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.symbols))
	for s := range p.symbols {
		out = append(out, s)
	}
	return out
}

// PollOnce fetches every tracked symbol and forwards positive prices to sink.
func (p *TickerPoller) PollOnce(sink PriceSink) {
	for _, symbol := range p.tracked() {
		pair, ok := CurrencyPairFor(symbol)
		if !ok {
			continue
		}
		ticker, err := p.source.GetTicker(pair)
		if err != nil {
			p.log.WithFields(map[string]interface{}{"symbol": symbol}).WithError(err).Debug("ticker poll failed")
			continue
		}
		if ticker == nil || ticker.Last <= 0 {
			continue
		}
		sink(symbol, ticker.Last)
	}
}

// Run polls until ctx ends.
func (p *TickerPoller) Run(ctx context.Context, sink PriceSink) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		p.PollOnce(sink)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// CurrencyPairFor maps BTC/USDT or BTCUSDT to a goex pair.
func CurrencyPairFor(symbol string) (goex.CurrencyPair, bool) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	var base, quote string
	if i := strings.IndexAny(s, "/-_"); i > 0 {
		base, quote = s[:i], s[i+1:]
	} else {
		for _, q := range knownQuotes {
			if strings.HasSuffix(s, q) && len(s) > len(q) {
				base, quote = strings.TrimSuffix(s, q), q
				break
			}
		}
	}
	if base == "" || quote == "" {
		return goex.CurrencyPair{}, false
	}
	return goex.NewCurrencyPair(goex.Currency{Symbol: base}, goex.Currency{Symbol: quote}), true
}
