// REST client for the binary options backend.
// RESTY ONLY + INTERNAL RETRY
package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"binarytrader/src/model"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

// -----------------------------
// CONFIG
// -----------------------------
const (
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 300 * time.Millisecond
	defaultRetryMaxBackoff = 3 * time.Second
	defaultTimeout         = 15 * time.Second

	IdempotencyHeader = "idempotency-key"
)

// -----------------------------
// CLIENT
// -----------------------------
type Client struct {
	baseURL string
	http    *resty.Client
	log     *logger.Entry
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == http.StatusTooManyRequests {
		return true
	}
	if code == http.StatusRequestTimeout {
		return true
	}
	return false
}

// NewClient builds a client against baseURL. token, when set, is sent as a bearer token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(defaultRetryAttempts-1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp).
		SetHeader("Accept", "application/json")
	if token != "" {
		httpClient.SetAuthToken(token)
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		log:     logger.WithField("component", "binary_client"),
	}
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, headers map[string]string, body any, out any) error {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req = req.SetQueryParams(query)
	}
	for k, v := range headers {
		req = req.SetHeader(k, v)
	}
	if body != nil {
		req = req.SetBody(body).SetHeader("Content-Type", "application/json")
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode()/100 != 2 {
		apiErr := newAPIError(resp.StatusCode(), resp.Body())
		c.log.WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode(),
		}).WithError(apiErr).Warn("backend request failed")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// -----------------------------
// REFERENCE DATA
// -----------------------------
func (c *Client) GetMarkets(ctx context.Context) ([]model.Market, error) {
	var markets []model.Market
	if err := c.do(ctx, http.MethodGet, "/markets", nil, nil, nil, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

func (c *Client) GetDurations(ctx context.Context) ([]model.Duration, error) {
	var durations []model.Duration
	if err := c.do(ctx, http.MethodGet, "/durations", nil, nil, nil, &durations); err != nil {
		return nil, err
	}
	return durations, nil
}

// GetRaw fetches an arbitrary JSON document; used for the shared app settings, which may live outside baseURL.
func (c *Client) GetRaw(ctx context.Context, path string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// -----------------------------
// ORDERS
// -----------------------------

// PlaceOrder submits an order. Retried attempts reuse idempotencyKey so the backend creates at most one order.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest, idempotencyKey string) (*OrderPayload, error) {
	var out struct {
		Order OrderPayload `json:"order"`
	}
	headers := map[string]string{IdempotencyHeader: idempotencyKey}
	if err := c.do(ctx, http.MethodPost, "/orders", nil, headers, req, &out); err != nil {
		return nil, err
	}
	if out.Order.ID == "" {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "order response carried no order id"}
	}
	return &out.Order, nil
}

func (c *Client) ListOrders(ctx context.Context, q OrderQuery) (*OrderList, error) {
	query := map[string]string{
		"currency": q.Currency,
		"pair":     q.Pair,
		"type":     q.Status,
	}
	if q.Limit > 0 {
		query["limit"] = strconv.Itoa(q.Limit)
	}
	if q.Offset > 0 {
		query["offset"] = strconv.Itoa(q.Offset)
	}

	var out OrderList
	if err := c.do(ctx, http.MethodGet, "/orders", query, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelOrder(ctx context.Context, id string, isDemo bool) (*CancelResult, error) {
	var out CancelResult
	path := "/orders/" + url.PathEscape(id) + "/cancel"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, map[string]any{"isDemo": isDemo}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CloseOrder(ctx context.Context, id string, isDemo bool, currentPrice float64) (*CashOutResult, error) {
	var out CashOutResult
	path := "/orders/" + url.PathEscape(id) + "/close"
	body := map[string]any{"isDemo": isDemo, "currentPrice": currentPrice}
	if err := c.do(ctx, http.MethodPost, path, nil, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// -----------------------------
// WALLET
// -----------------------------
func (c *Client) GetWalletBalance(ctx context.Context, walletType, currency string) (decimal.Decimal, error) {
	var out struct {
		Balance decimal.Decimal `json:"balance"`
	}
	path := fmt.Sprintf("/wallet/%s/%s", url.PathEscape(walletType), url.PathEscape(currency))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, nil, &out); err != nil {
		return decimal.Zero, err
	}
	return out.Balance, nil
}
