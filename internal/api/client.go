package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"storefront-client/internal/domain"
)

// CredentialSource supplies the bearer token attached to authenticated
// requests. The session store implements it.
type CredentialSource interface {
	Credential() (string, bool)
}

// Client talks to the storefront REST backend and converts transport
// failures into the error taxonomy the stores branch on.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	logger  zerolog.Logger
}

// New builds a Client for the given base URL.
func New(baseURL string, timeout time.Duration, creds CredentialSource, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		creds:   creds,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.creds.Credential(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Keep the sentinel matchable via errors.Is while preserving the
		// server's message for display.
		if msg := readErrorMessage(resp.Body); msg != "" {
			return fmt.Errorf("%s: %w", msg, domain.ErrUnauthorized)
		}
		return domain.ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ServerError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.ServerError{Status: resp.StatusCode, Message: "malformed response body"}
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	var body errorBody
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

// Register signs up a new user. referralCode is forwarded as-is when present;
// the backend decides validity.
func (c *Client) Register(ctx context.Context, username, email, password, referralCode string) (domain.AuthResponse, error) {
	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	if referralCode != "" {
		payload["referralCode"] = referralCode
	}
	var out domain.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, payload, &out)
	return out, err
}

// Logout tells the backend to drop the session. Callers treat failures as
// best-effort.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// CartEntry is the minimal line shape sent on full-cart replacement.
type CartEntry struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// GetCart fetches the server-side cart.
func (c *Client) GetCart(ctx context.Context) ([]domain.LineItem, error) {
	var out []domain.LineItem
	err := c.do(ctx, http.MethodGet, "/cart", nil, nil, &out)
	return out, err
}

// ReplaceCart PUTs the entire proposed line set; the server recomputes
// authoritative names and prices in its response.
func (c *Client) ReplaceCart(ctx context.Context, entries []CartEntry) ([]domain.LineItem, error) {
	var out []domain.LineItem
	err := c.do(ctx, http.MethodPut, "/cart", nil, entries, &out)
	return out, err
}

// RemoveCartItem deletes one product and returns the updated cart.
func (c *Client) RemoveCartItem(ctx context.Context, productID string) ([]domain.LineItem, error) {
	var out []domain.LineItem
	err := c.do(ctx, http.MethodDelete, "/cart/remove/"+url.PathEscape(productID), nil, nil, &out)
	return out, err
}

// ClearCart empties the server-side cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart/clear", nil, nil, nil)
}

// ValidatePromo asks the backend whether a promo code is applicable.
func (c *Client) ValidatePromo(ctx context.Context, code string) (domain.PromoDiscount, error) {
	var out domain.PromoDiscount
	err := c.do(ctx, http.MethodPost, "/promocodes/validate", nil, map[string]string{"code": code}, &out)
	if err == nil {
		out.Code = code
	}
	return out, err
}

// CreateOrder submits the checkout draft as a single order-creation request.
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, http.MethodPost, "/orders", nil, req, &out)
	return out, err
}
