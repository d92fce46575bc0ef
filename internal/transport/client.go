package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

const guestCookieName = "cart_session"

// Client talks to the cart backend over HTTP JSON. Requests carry either the
// authenticated user id or a client-minted guest session cookie, and all of
// them pass through a circuit breaker so a flapping backend fails fast.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	userID     string
	guestToken string
	online     atomic.Bool
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserID authenticates requests as the given user instead of a guest.
func WithUserID(userID string) Option {
	return func(c *Client) { c.userID = userID }
}

// WithGuestToken reuses a previously persisted guest session token.
func WithGuestToken(token string) Option {
	return func(c *Client) { c.guestToken = token }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "cart-api",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	c.online.Store(true)
	return c
}

// GuestToken returns the guest session token, minting one when absent.
func (c *Client) GuestToken() string {
	if c.guestToken == "" {
		c.guestToken = uuid.NewString()
	}
	return c.guestToken
}

// SetOnline marks the client online or offline. While offline every call
// fails fast with ErrOffline instead of touching the network.
func (c *Client) SetOnline(online bool) {
	c.online.Store(online)
}

func (c *Client) Online() bool {
	return c.online.Load()
}

type cartPayload struct {
	Items     []domain.CartItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  int64             `json:"subtotal"`
	Total     int64             `json:"total"`
}

type itemPayload struct {
	Item domain.CartItem `json:"item"`
}

type statusPayload struct {
	Success bool `json:"success"`
}

type errorPayload struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (c *Client) FetchCart(ctx context.Context) (*domain.Cart, error) {
	var out cartPayload
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &out); err != nil {
		return nil, err
	}
	return &domain.Cart{Items: out.Items}, nil
}

func (c *Client) AddItem(ctx context.Context, req AddItemRequest) (*domain.CartItem, error) {
	var out itemPayload
	if err := c.do(ctx, http.MethodPost, "/api/cart/items", req, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (c *Client) UpdateQuantity(ctx context.Context, itemID string, quantity int) (*domain.CartItem, error) {
	var out itemPayload
	path := "/api/cart/items/" + itemID
	if err := c.do(ctx, http.MethodPatch, path, updateQuantityRequest{Quantity: quantity}, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) error {
	var out statusPayload
	return c.do(ctx, http.MethodDelete, "/api/cart/items/"+itemID, nil, &out)
}

func (c *Client) ClearCart(ctx context.Context) error {
	var out statusPayload
	return c.do(ctx, http.MethodDelete, "/api/cart", nil, &out)
}

func (c *Client) InvalidateCache(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/cart/cache-invalidate", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if !c.online.Load() {
		return ErrOffline
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	} else {
		req.AddCookie(&http.Cookie{Name: guestCookieName, Value: c.GuestToken()})
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope errorPayload
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr != nil {
			envelope.Error = resp.Status
		}
		return &ServerError{
			Status:  resp.StatusCode,
			Code:    envelope.Code,
			Message: envelope.Error,
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
