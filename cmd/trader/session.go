package trader

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"binarytrader/src/binary"
	"binarytrader/src/connectors"
	"binarytrader/src/database"
	"binarytrader/src/repository"
	"binarytrader/src/server"
	"binarytrader/src/view"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Session runs one trading store against the backend until SIGINT/SIGTERM.
type Session struct {
	Log *logrus.Entry
	// Serve also exposes the HTTP API.
	Serve bool
}

func (s *Session) Start() error {
	if s.Log == nil {
		s.Log = logrus.WithField("cmd", "trader")
	}
	config := GetConfig()
	conn := connectors.GetConfig()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	var prefs binary.PreferenceStore
	if database.GetConfig().EnableDB {
		if err := database.InitMainDB(); err != nil {
			s.Log.WithError(err).Error("Failed to connect to main database")
			return err
		}
		prefs = repository.NewPreferenceRepository()
	}

	client := connectors.NewClient(conn.APIURL, conn.APIToken, conn.RequestTimeout)
	appConfig := connectors.NewAppConfig(client, conn.SettingsPath)
	appConfig.LoadAsync(ctx)

	header := http.Header{}
	if conn.APIToken != "" {
		header.Set("Authorization", "Bearer "+conn.APIToken)
	}
	push := connectors.NewPushClient(connectors.PushConfig{URL: conn.WSURL, Header: header})
	defer push.Close()

	deps := binary.Deps{
		Backend:     client,
		Settings:    appConfig,
		Messenger:   push,
		Preferences: prefs,
	}
	var poller *connectors.TickerPoller
	if conn.PricePollEnabled {
		poller = connectors.NewTickerPoller(connectors.NewBinanceTickerSource(conn.PricePollEndpoint), conn.PricePollInterval)
		deps.Poller = poller
	}

	store := binary.New(binary.GetConfig(), deps)
	defer store.Teardown()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := push.Run(gctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, connectors.ErrPushClosed) {
			return nil
		}
		return err
	})
	if poller != nil {
		g.Go(func() error {
			poller.Run(gctx, store.UpdatePrice)
			return nil
		})
	}

	if err := store.Init(gctx); err != nil {
		s.Log.WithError(err).Error("Failed to initialize trading store")
		stop()
		_ = g.Wait()
		return err
	}
	if config.Symbol != "" {
		if err := store.SetCurrentSymbol(gctx, config.Symbol); err != nil {
			s.Log.WithError(err).WithField("symbol", config.Symbol).Warn("Failed to select symbol")
		}
	}
	s.Log.WithField("symbol", store.CurrentSymbol()).Info("Trading store ready")

	if s.Serve {
		srvCfg := server.GetConfig()
		g.Go(func() error {
			return server.StartServer(gctx, srvCfg, server.NewRouter(store))
		})
	}
	g.Go(func() error {
		s.reportEvents(gctx, store, config.EventInterval)
		return nil
	})

	return g.Wait()
}

// reportEvents logs newly completed orders and a periodic summary.
func (s *Session) reportEvents(ctx context.Context, store *binary.Store, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	seen := map[string]struct{}{}
	for _, c := range store.CompletedOrders() {
		seen[c.ID] = struct{}{}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snap := store.Snapshot()
		for _, c := range snap.Completed {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			p := view.NewCompletedPosition(c)
			s.Log.WithFields(map[string]interface{}{
				"order_id": p.ID,
				"status":   p.Status,
				"pnl":      p.PnL,
			}).Info("Order completed")
		}
		s.Log.WithFields(map[string]interface{}{
			"symbol":  snap.Symbol,
			"mode":    snap.Mode,
			"balance": snap.Balance.StringFixed(2),
			"active":  len(snap.Active),
			"pending": snap.PendingSettlement,
		}).Info("Session state")
	}
}
