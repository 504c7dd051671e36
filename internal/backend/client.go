package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saadjs/fitfuel/internal/logger"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
	"github.com/saadjs/fitfuel/internal/session"
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     session.TokenStore
	// OnSessionExpired runs after a 401 has cleared the stored token.
	OnSessionExpired func()
}

// Client calls a fitfuel server with the stored bearer token. Requests are
// never retried.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    session.TokenStore
	onExpired func()
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend base url is required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("backend token store is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, http: httpClient, tokens: cfg.Tokens, onExpired: cfg.OnSessionExpired}, nil
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Me is the signed-in user with their profiles.
type Me struct {
	User     model.User      `json:"user"`
	Profiles []model.Profile `json:"profiles"`
}

func (c *Client) Register(ctx context.Context, email, password string) (model.User, error) {
	return c.authenticate(ctx, "register", "/auth/register", email, password)
}

// Login stores the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	return c.authenticate(ctx, "login", "/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, op, path, email, password string) (model.User, error) {
	var out authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, op, http.MethodPost, path, false, body, &out); err != nil {
		return model.User{}, err
	}
	if err := c.tokens.SetToken(out.Token); err != nil {
		return model.User{}, err
	}
	return out.User, nil
}

func (c *Client) Logout() error {
	return c.tokens.Clear()
}

func (c *Client) Me(ctx context.Context) (Me, error) {
	var out Me
	err := c.do(ctx, "me", http.MethodGet, "/me", true, nil, &out)
	return out, err
}

func (c *Client) DayLog(ctx context.Context, profileID, date string) (service.DayLog, error) {
	var out service.DayLog
	err := c.do(ctx, "day log", http.MethodGet, profilePath(profileID, "/logs")+"?date="+url.QueryEscape(date), true, nil, &out)
	return out, err
}

func (c *Client) Summary(ctx context.Context, profileID, date string) (service.DaySummary, error) {
	var out service.DaySummary
	err := c.do(ctx, "summary", http.MethodGet, profilePath(profileID, "/summary")+"?date="+url.QueryEscape(date), true, nil, &out)
	return out, err
}

type FoodRequest struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fats     float64   `json:"fats"`
	Meal     string    `json:"meal"`
	LoggedAt time.Time `json:"loggedAt"`
}

func (c *Client) AddFood(ctx context.Context, profileID string, in FoodRequest) (model.FoodLogEntry, error) {
	var out model.FoodLogEntry
	err := c.do(ctx, "add food", http.MethodPost, profilePath(profileID, "/food"), true, in, &out)
	return out, err
}

func (c *Client) RemoveFood(ctx context.Context, profileID, entryID string) error {
	return c.do(ctx, "remove food", http.MethodDelete, profilePath(profileID, "/food/"+url.PathEscape(entryID)), true, nil, nil)
}

type WorkoutRequest struct {
	ID              string    `json:"id,omitempty"`
	ExerciseID      string    `json:"exerciseId"`
	Reps            int       `json:"reps,omitempty"`
	Sets            int       `json:"sets,omitempty"`
	DurationMinutes float64   `json:"durationMinutes,omitempty"`
	At              time.Time `json:"timestamp"`
}

func (c *Client) LogWorkout(ctx context.Context, profileID string, in WorkoutRequest) (model.WorkoutLogEntry, error) {
	var out model.WorkoutLogEntry
	err := c.do(ctx, "log workout", http.MethodPost, profilePath(profileID, "/workouts"), true, in, &out)
	return out, err
}

// AddWater adds ml to the day and returns the new total.
func (c *Client) AddWater(ctx context.Context, profileID, date string, ml float64) (float64, error) {
	var out struct {
		Water float64 `json:"water"`
	}
	err := c.do(ctx, "add water", http.MethodPost, profilePath(profileID, "/water"), true, map[string]any{"date": date, "ml": ml}, &out)
	return out.Water, err
}

func (c *Client) SetGoals(ctx context.Context, profileID string, g model.Goals) error {
	return c.do(ctx, "set goals", http.MethodPut, profilePath(profileID, "/goals"), true, g, nil)
}

func (c *Client) Cart(ctx context.Context) (service.CartView, error) {
	var out service.CartView
	err := c.do(ctx, "view cart", http.MethodGet, "/cart", true, nil, &out)
	return out, err
}

func (c *Client) AddToCart(ctx context.Context, menuItemID string) (service.CartView, error) {
	var out service.CartView
	err := c.do(ctx, "add to cart", http.MethodPost, "/cart/items", true, map[string]string{"menuItemId": menuItemID}, &out)
	return out, err
}

type CheckoutResponse struct {
	Order model.Order `json:"order"`
	KeyID string      `json:"keyId"`
}

func (c *Client) Checkout(ctx context.Context, currency string) (CheckoutResponse, error) {
	var out CheckoutResponse
	err := c.do(ctx, "checkout", http.MethodPost, "/checkout", true, map[string]string{"currency": currency}, &out)
	return out, err
}

func (c *Client) VerifyPayment(ctx context.Context, gatewayOrderID, paymentID, signature string) (model.Order, error) {
	var out model.Order
	body := map[string]string{"gatewayOrderId": gatewayOrderID, "paymentId": paymentID, "signature": signature}
	err := c.do(ctx, "verify payment", http.MethodPost, "/checkout/verify", true, body, &out)
	return out, err
}

func profilePath(profileID, suffix string) string {
	return "/profiles/" + url.PathEscape(profileID) + suffix
}

func (c *Client) do(ctx context.Context, op, method, path string, authed bool, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if authed {
		tok, err := c.tokens.Token()
		if errors.Is(err, session.ErrNoToken) {
			return ErrNotLoggedIn
		}
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized && authed {
		c.expireSession(op)
		return &SessionExpiredError{Op: op}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
		var parsed struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &parsed) == nil {
			apiErr.Message = parsed.Error
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) expireSession(op string) {
	if err := c.tokens.Clear(); err != nil {
		logger.Warn("clear expired session token", "error", err)
	}
	logger.Info("session expired", "op", op)
	if c.onExpired != nil {
		c.onExpired()
	}
}
