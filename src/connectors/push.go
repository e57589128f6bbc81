package connectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

const (
	PushOrderCompleted = "ORDER_COMPLETED"
	PushTicker         = "TICKER"

	SubscriptionOrder  = "order"
	SubscriptionTicker = "ticker"

	pushWriteWait         = 10 * time.Second
	pushHandshakeTimeout  = 10 * time.Second
	defaultPushMinBackoff = time.Second
	defaultPushMaxBackoff = 30 * time.Second
)

var ErrPushClosed = errors.New("push client closed")

// Subscription scopes a listener. Empty Symbol matches every symbol.
type Subscription struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol,omitempty"`
	UserID string `json:"userId,omitempty"`
}

type subscriptionFrame struct {
	Action string `json:"action"`
	Subscription
}

// PushMessage is one frame from the push channel.
type PushMessage struct {
	Type   string        `json:"type"`
	Order  *OrderPayload `json:"order,omitempty"`
	Symbol string        `json:"symbol,omitempty"`
	Price  float64       `json:"price,omitempty"`
}

type PushHandler func(PushMessage)

type PushConfig struct {
	URL        string
	Header     http.Header
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

type pushListener struct {
	sub     Subscription
	handler PushHandler
}

// PushClient keeps one websocket open, re-dialing with exponential backoff,
// and fans incoming frames out to matching listeners.
type PushClient struct {
	cfg    PushConfig
	dialer websocket.Dialer
	log    *logger.Entry

	mu        sync.Mutex
	listeners map[int]pushListener
	nextID    int
	conn      *websocket.Conn
	closed    bool
	done      chan struct{}

	writeMu sync.Mutex
}

func NewPushClient(cfg PushConfig) *PushClient {
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = defaultPushMinBackoff
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = defaultPushMaxBackoff
	}
	return &PushClient{
		cfg:       cfg,
		dialer:    websocket.Dialer{HandshakeTimeout: pushHandshakeTimeout},
		log:       logger.WithField("component", "push_client"),
		listeners: map[int]pushListener{},
		done:      make(chan struct{}),
	}
}

// Subscribe registers handler for frames matching sub. The returned func
// removes the listener and is safe to call more than once.
func (p *PushClient) Subscribe(sub Subscription, handler PushHandler) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = pushListener{sub: sub, handler: handler}
	conn := p.conn
	p.mu.Unlock()

	if conn != nil {
		if err := p.send(conn, subscriptionFrame{Action: "subscribe", Subscription: sub}); err != nil {
			p.log.WithError(err).Debug("subscribe frame not sent, will be replayed on reconnect")
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			_, ok := p.listeners[id]
			delete(p.listeners, id)
			conn := p.conn
			p.mu.Unlock()
			if ok && conn != nil {
				_ = p.send(conn, subscriptionFrame{Action: "unsubscribe", Subscription: sub})
			}
		})
	}
}

// Listeners reports how many listeners are registered.
func (p *PushClient) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

// Run dials and reads until ctx ends or Close is called.
func (p *PushClient) Run(ctx context.Context) error {
	backoff := p.cfg.MinBackoff
	for {
		if err := p.stopped(ctx); err != nil {
			return err
		}

		conn, _, err := p.dialer.DialContext(ctx, p.cfg.URL, p.cfg.Header)
		if err != nil {
			p.log.WithFields(map[string]interface{}{
				"url":     p.cfg.URL,
				"backoff": backoff.String(),
			}).WithError(err).Warn("push dial failed")
			if !p.wait(ctx, backoff) {
				return p.stopped(ctx)
			}
			backoff = nextBackoff(backoff, p.cfg.MaxBackoff)
			continue
		}

		backoff = p.cfg.MinBackoff
		if !p.attach(conn) {
			_ = conn.Close()
			return ErrPushClosed
		}
		p.replaySubscriptions(conn)

		readErr := p.readLoop(ctx, conn)
		p.detach(conn)
		if err := p.stopped(ctx); err != nil {
			return err
		}
		p.log.WithError(readErr).Info("push connection lost, reconnecting")
		if !p.wait(ctx, backoff) {
			return p.stopped(ctx)
		}
		backoff = nextBackoff(backoff, p.cfg.MaxBackoff)
	}
}

// Close stops Run and drops the connection.
func (p *PushClient) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.done)
	conn := p.conn
	p.conn = nil
	p.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (p *PushClient) stopped(ctx context.Context) error {
	select {
	case <-p.done:
		return ErrPushClosed
	default:
	}
	return ctx.Err()
}

func (p *PushClient) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-p.done:
		return false
	case <-timer.C:
		return true
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

func (p *PushClient) attach(conn *websocket.Conn) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.conn = conn
	return true
}

func (p *PushClient) detach(conn *websocket.Conn) {
	p.mu.Lock()
	if p.conn == conn {
		p.conn = nil
	}
	p.mu.Unlock()
	_ = conn.Close()
}

func (p *PushClient) replaySubscriptions(conn *websocket.Conn) {
	p.mu.Lock()
	subs := make([]Subscription, 0, len(p.listeners))
	for _, l := range p.listeners {
		subs = append(subs, l.sub)
	}
	p.mu.Unlock()

	for _, sub := range subs {
		if err := p.send(conn, subscriptionFrame{Action: "subscribe", Subscription: sub}); err != nil {
			p.log.WithError(err).Warn("replay subscription failed")
			return
		}
	}
}

func (p *PushClient) send(conn *websocket.Conn, v any) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(pushWriteWait))
	return conn.WriteJSON(v)
}

func (p *PushClient) readLoop(ctx context.Context, conn *websocket.Conn) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg PushMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			p.log.WithError(err).Debug("push frame ignored")
			continue
		}
		p.dispatch(msg)
	}
}

func (p *PushClient) dispatch(msg PushMessage) {
	p.mu.Lock()
	handlers := make([]PushHandler, 0, len(p.listeners))
	for _, l := range p.listeners {
		if l.sub.matches(msg) {
			handlers = append(handlers, l.handler)
		}
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
}

func (s Subscription) matches(msg PushMessage) bool {
	var symbol string
	switch msg.Type {
	case PushOrderCompleted:
		if s.Type != SubscriptionOrder || msg.Order == nil {
			return false
		}
		// settlements that omit the symbol reach every order listener
		if msg.Order.Symbol == "" {
			return true
		}
		symbol = msg.Order.Symbol
	case PushTicker:
		if s.Type != SubscriptionTicker {
			return false
		}
		symbol = msg.Symbol
	default:
		return false
	}
	if s.Symbol == "" {
		return true
	}
	return NormalizeSymbol(s.Symbol) == NormalizeSymbol(symbol)
}

// NormalizeSymbol folds BTC/USDT, btcusdt and BTC-USDT to BTCUSDT.
func NormalizeSymbol(symbol string) string {
	r := strings.NewReplacer("/", "", "-", "", "_", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(symbol)))
}

func (m PushMessage) String() string {
	if m.Order != nil {
		return fmt.Sprintf("%s order=%s", m.Type, m.Order.ID)
	}
	return fmt.Sprintf("%s %s=%v", m.Type, m.Symbol, m.Price)
}
