package markets

import (
	"context"
	"fmt"
	"io"

	"binarytrader/src/market"
	"binarytrader/src/model"
)

type marketSource interface {
	GetMarkets(ctx context.Context) ([]model.Market, error)
}

// Print writes the backend's markets and the one a new session would select.
func Print(ctx context.Context, src marketSource, w io.Writer) error {
	markets, err := src.GetMarkets(ctx)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	resolver := market.NewResolver(markets)
	for _, m := range markets {
		status := "inactive"
		if m.Status {
			status = "active"
		}
		if _, err := fmt.Fprintf(w, "%-16s %-6s %-6s %s\n", m.Symbol,
			resolver.ExtractBaseCurrency(m.Symbol), resolver.ExtractQuoteCurrency(m.Symbol), status); err != nil {
			return err
		}
	}
	if best := market.SelectBestMarket(markets); best != nil {
		_, err = fmt.Fprintf(w, "default: %s\n", best.Symbol)
	}
	return err
}
