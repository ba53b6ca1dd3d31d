package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/five82/prefsync/internal/metrics"
)

// Backend is the set of wallet API calls the preferences controller makes.
// It is implemented by *Client and can be faked in tests.
type Backend interface {
	SetToken(token string)
	Token() string

	FetchUser(ctx context.Context) (*User, error)
	FetchPastOrders(ctx context.Context) ([]PaymentOrder, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (json.RawMessage, error)
	RecordLogin(ctx context.Context, record LoginRecord) error
	UpdateTheme(ctx context.Context, theme string) error
	UpdatePermissions(ctx context.Context, permission Permission) error
	UpdateLocale(ctx context.Context, locale string) error
	UpdateCurrency(ctx context.Context, currency string) error
	UpdateVerifier(ctx context.Context, req VerifierRequest) error
	FetchTokenBalances(ctx context.Context) (json.RawMessage, error)
	FetchBillboard(ctx context.Context) ([]BillboardEvent, error)
	AddContact(ctx context.Context, req ContactRequest) (Contact, error)
	DeleteContact(ctx context.Context, id int64) (DeletedContact, error)
	RevokeDiscord(ctx context.Context, idToken string) error
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

const (
	defaultUserAgent  = "prefsync/0.1"
	defaultTimeout    = 15 * time.Second
	defaultRateLimit  = 10
	defaultRateBurst  = 5
	defaultOrdersPath = "/transaction"
	maxErrorBody      = 64 << 10
	contentTypeJSON   = "application/json; charset=utf-8"
)

// Options configure a Client.
type Options struct {
	// BaseURL is the wallet API root, e.g. https://api.example.com.
	BaseURL string
	// OrdersURL is the full past-orders endpoint. Empty uses BaseURL + /transaction.
	OrdersURL string
	Timeout   time.Duration
	// RateLimit caps outbound requests per second. Zero uses the default;
	// negative disables limiting.
	RateLimit  float64
	RateBurst  int
	HTTPClient *http.Client
	UserAgent  string
}

// Client talks to the wallet backend over HTTP.
type Client struct {
	baseURL   *url.URL
	ordersURL *url.URL
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter

	mu    sync.RWMutex
	token string
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	orders := base.JoinPath(defaultOrdersPath)
	if strings.TrimSpace(opts.OrdersURL) != "" {
		orders, err = parseBaseURL(opts.OrdersURL)
		if err != nil {
			return nil, fmt.Errorf("orders url: %w", err)
		}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:   base,
		ordersURL: orders,
		http:      httpClient,
		userAgent: userAgent,
		limiter:   newLimiter(opts.RateLimit, opts.RateBurst),
	}, nil
}

// SetToken replaces the bearer token attached to requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// FetchUser retrieves the signed-in user's profile.
func (c *Client) FetchUser(ctx context.Context) (*User, error) {
	var payload envelope[*User]
	if err := c.do(ctx, http.MethodGet, "/user", "/user", nil, &payload); err != nil {
		return nil, err
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("GET /user: %w", ErrEmptyResponse)
	}
	return payload.Data, nil
}

// FetchPastOrders retrieves payment orders from the orders endpoint.
func (c *Client) FetchPastOrders(ctx context.Context) ([]PaymentOrder, error) {
	var payload envelope[[]PaymentOrder]
	if err := c.doURL(ctx, http.MethodGet, "orders", c.ordersURL, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// CreateUser registers a new user record and returns the raw response body.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/user", "/user", req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// RecordLogin stores a login event.
func (c *Client) RecordLogin(ctx context.Context, record LoginRecord) error {
	return c.do(ctx, http.MethodPost, "/user/recordLogin", "/user/recordLogin", record, nil)
}

// UpdateTheme persists the user's theme.
func (c *Client) UpdateTheme(ctx context.Context, theme string) error {
	body := map[string]string{"theme": theme}
	return c.do(ctx, http.MethodPatch, "/user/theme", "/user/theme", body, nil)
}

// UpdatePermissions persists a permission grant.
func (c *Client) UpdatePermissions(ctx context.Context, permission Permission) error {
	return c.do(ctx, http.MethodPost, "/permissions", "/permissions", permission, nil)
}

// UpdateLocale persists the user's locale.
func (c *Client) UpdateLocale(ctx context.Context, locale string) error {
	body := map[string]string{"locale": locale}
	return c.do(ctx, http.MethodPatch, "/user/locale", "/user/locale", body, nil)
}

// UpdateCurrency persists the user's default currency.
func (c *Client) UpdateCurrency(ctx context.Context, currency string) error {
	body := map[string]string{"default_currency": currency}
	return c.do(ctx, http.MethodPatch, "/user", "/user", body, nil)
}

// UpdateVerifier persists the verifier binding for the user.
func (c *Client) UpdateVerifier(ctx context.Context, req VerifierRequest) error {
	return c.do(ctx, http.MethodPatch, "/user/verifier", "/user/verifier", req, nil)
}

// FetchTokenBalances returns the token balance payload untouched.
func (c *Client) FetchTokenBalances(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/tokenbalances", "/tokenbalances", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// FetchBillboard retrieves announcement events.
func (c *Client) FetchBillboard(ctx context.Context) ([]BillboardEvent, error) {
	var payload envelope[[]BillboardEvent]
	if err := c.do(ctx, http.MethodGet, "/billboard", "/billboard", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// AddContact creates a contact and returns the stored record.
func (c *Client) AddContact(ctx context.Context, req ContactRequest) (Contact, error) {
	var payload envelope[Contact]
	if err := c.do(ctx, http.MethodPost, "/contact", "/contact", req, &payload); err != nil {
		return Contact{}, err
	}
	return payload.Data, nil
}

// DeleteContact removes a contact by id and returns the deleted id.
func (c *Client) DeleteContact(ctx context.Context, id int64) (DeletedContact, error) {
	path := "/contact/" + strconv.FormatInt(id, 10)
	var payload envelope[DeletedContact]
	if err := c.do(ctx, http.MethodDelete, "/contact/{id}", path, nil, &payload); err != nil {
		return DeletedContact{}, err
	}
	return payload.Data, nil
}

// RevokeDiscord revokes a Discord-linked id token.
func (c *Client) RevokeDiscord(ctx context.Context, idToken string) error {
	body := map[string]string{"token": idToken}
	return c.do(ctx, http.MethodPost, "/revoke/discord", "/revoke/discord", body, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint, path string, body, dest any) error {
	return c.doURL(ctx, method, endpoint, c.baseURL.JoinPath(path), body, dest)
}

func (c *Client) doURL(ctx context.Context, method, endpoint string, target *url.URL, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordRequest(method, endpoint, 0, time.Since(start))
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordRequest(method, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		return newError(method, endpoint, resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newLimiter(limit float64, burst int) *rate.Limiter {
	if limit < 0 {
		return nil
	}
	if limit == 0 {
		limit = defaultRateLimit
	}
	if burst <= 0 {
		burst = defaultRateBurst
	}
	return rate.NewLimiter(rate.Limit(limit), burst)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("api url is required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
