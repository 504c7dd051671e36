package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

var (
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	// ErrUnavailable wraps transport and response failures talking to the
	// gateway. Non-2xx answers are reported as *APIError instead.
	ErrUnavailable = errors.New("payment gateway unavailable")
)

type Config struct {
	BaseURL    string
	KeyID      string
	KeySecret  string
	HTTPClient *http.Client
}

// Client talks to the payment gateway's order API. Orders are created with
// basic auth; payment confirmation is verified locally with the key secret.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("payment base url is required")
	}
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("payment key id and secret are required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		httpClient: httpClient,
	}, nil
}

func (c *Client) KeyID() string { return c.keyID }

type OrderRequest struct {
	AmountMinor int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Receipt     string            `json:"receipt"`
	Notes       map[string]string `json:"notes,omitempty"`
}

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// APIError is a non-2xx gateway response.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("payment gateway error %d (%s): %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("payment gateway error %d", e.StatusCode)
}

func (c *Client) CreateOrder(ctx context.Context, in OrderRequest) (Order, error) {
	if in.AmountMinor <= 0 {
		return Order{}, fmt.Errorf("order amount must be > 0")
	}
	if strings.TrimSpace(in.Currency) == "" {
		return Order{}, fmt.Errorf("order currency is required")
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return Order{}, fmt.Errorf("marshal order request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return Order{}, fmt.Errorf("create payment order request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("execute payment order request: %w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Order{}, fmt.Errorf("read payment order response: %w: %w", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed struct {
			Error struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &parsed) == nil {
			apiErr.Code = parsed.Error.Code
			apiErr.Description = parsed.Error.Description
		}
		return Order{}, apiErr
	}
	var out Order
	if err := json.Unmarshal(body, &out); err != nil {
		return Order{}, fmt.Errorf("decode payment order response: %w: %w", ErrUnavailable, err)
	}
	if out.ID == "" {
		return Order{}, fmt.Errorf("order without id: %w", ErrUnavailable)
	}
	return out, nil
}

// VerifySignature checks the hex HMAC-SHA256 of "orderID|paymentID".
func (c *Client) VerifySignature(orderID, paymentID, signature string) error {
	expected := Sign(c.keySecret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return ErrSignatureMismatch
	}
	return nil
}

func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// MinorUnits converts a decimal amount to the smallest currency unit.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
