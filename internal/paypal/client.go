// Package paypal предоставляет клиент REST API PayPal: получение
// OAuth2-токена и чтение заказов Checkout.
package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	tokenPath      = "/v1/oauth2/token"
	ordersPath     = "/v2/checkout/orders/"
	grantTypeBody  = "grant_type=client_credentials"
	defaultTimeout = 10 * time.Second

	// tokenExpiryMargin вычитается из срока жизни токена при кешировании.
	tokenExpiryMargin = 60 * time.Second
	maxErrorBody      = 4 << 10
)

var (
	// ErrNotConfigured возвращается, если не заданы идентификатор клиента или секрет.
	ErrNotConfigured = errors.New("paypal credentials are not configured")
	// ErrAccessToken возвращается при любой ошибке получения токена доступа.
	ErrAccessToken = errors.New("could not generate paypal access token")
	// ErrOrderFetch возвращается при любой ошибке получения заказа PayPal.
	ErrOrderFetch = errors.New("could not fetch paypal order")
)

// TokenCache хранит токен доступа между запросами.
type TokenCache interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string, ttl time.Duration) error
}

// Config содержит параметры подключения к PayPal.
type Config struct {
	ClientID string
	Secret   string
	BaseURL  string
	Timeout  time.Duration
}

// Client инкапсулирует HTTP-взаимодействие с PayPal.
type Client struct {
	clientID   string
	secret     string
	baseURL    string
	httpClient *http.Client
	cache      TokenCache
	logger     *zap.Logger
}

// Option настраивает Client.
type Option func(*Client)

// WithTokenCache включает кеширование токена доступа.
func WithTokenCache(cache TokenCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithHTTPClient подменяет HTTP-клиент.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient создаёт клиент PayPal по указанной конфигурации.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	c := &Client{
		clientID: cfg.ClientID,
		secret:   cfg.Secret,
		baseURL:  base,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("paypal"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientID возвращает публичный идентификатор приложения PayPal.
func (c *Client) ClientID() string {
	return c.clientID
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AccessToken возвращает bearer-токен для обращений к API.
// Детали ошибок PayPal пишутся в лог и не возвращаются вызывающему.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.secret == "" {
		c.logger.Error("paypal client id or secret is not set")
		return "", ErrNotConfigured
	}

	if c.cache != nil {
		token, ok, err := c.cache.Get(ctx)
		if err != nil {
			c.logger.Warn("read cached paypal token", zap.Error(err))
		} else if ok {
			return token, nil
		}
	}

	tr, err := c.requestToken(ctx)
	if err != nil {
		c.logger.Error("paypal access token request failed", zap.Error(err))
		return "", ErrAccessToken
	}

	if c.cache != nil {
		ttl := time.Duration(tr.ExpiresIn)*time.Second - tokenExpiryMargin
		if ttl > 0 {
			if err := c.cache.Set(ctx, tr.AccessToken, ttl); err != nil {
				c.logger.Warn("cache paypal token", zap.Error(err))
			}
		}
	}

	return tr.AccessToken, nil
}

func (c *Client) requestToken(ctx context.Context) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(grantTypeBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, errors.New("empty access_token in response")
	}

	return &tr, nil
}

// GetOrder запрашивает заказ Checkout по его идентификатору в PayPal.
func (c *Client) GetOrder(ctx context.Context, accessToken, orderID string) (*Order, error) {
	order, err := c.getOrder(ctx, accessToken, orderID)
	if err != nil {
		c.logger.Error("paypal order request failed", zap.Error(err), zap.String("paypalOrderId", orderID))
		return nil, ErrOrderFetch
	}
	return order, nil
}

func (c *Client) getOrder(ctx context.Context, accessToken, orderID string) (*Order, error) {
	endpoint := c.baseURL + ordersPath + url.PathEscape(orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &order, nil
}

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}
