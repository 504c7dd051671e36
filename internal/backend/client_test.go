package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/saadjs/fitfuel/internal/backend"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/service"
	"github.com/saadjs/fitfuel/internal/session"
)

func TestMain(m *testing.M) {
	gokeyring.MockInit()
	os.Exit(m.Run())
}

func newClient(t *testing.T, h http.Handler, onExpired func()) (*backend.Client, *session.Keyring) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	tokens := session.NewKeyring(t.Name())
	t.Cleanup(func() { _ = tokens.Clear() })
	c, err := backend.New(backend.Config{BaseURL: ts.URL + "/", HTTPClient: ts.Client(), Tokens: tokens, OnSessionExpired: onExpired})
	require.NoError(t, err)
	return c, tokens
}

func TestLoginStoresTokenAndSendsBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-123", "user": model.User{ID: "u1", Email: "a@example.com"}})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(backend.Me{User: model.User{ID: "u1"}, Profiles: []model.Profile{{ID: "p1", Name: "me"}}})
	})
	c, tokens := newClient(t, mux, nil)
	ctx := context.Background()

	_, err := c.Me(ctx)
	require.ErrorIs(t, err, backend.ErrNotLoggedIn)

	u, err := c.Login(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	tok, err := tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.Len(t, me.Profiles, 1)
	assert.Equal(t, "p1", me.Profiles[0].ID)

	require.NoError(t, c.Logout())
	_, err = tokens.Token()
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestUnauthorizedClearsTokenAndFiresHook(t *testing.T) {
	var fired int32
	c, tokens := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}), func() { atomic.AddInt32(&fired, 1) })
	require.NoError(t, tokens.SetToken("stale"))

	_, err := c.Summary(context.Background(), "p1", "2026-02-20")
	var expired *backend.SessionExpiredError
	require.True(t, errors.As(err, &expired), "got %v", err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	_, err = tokens.Token()
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestFailedLoginDoesNotExpireSession(t *testing.T) {
	var fired int32
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid email or password"}`))
	}), func() { atomic.AddInt32(&fired, 1) })

	_, err := c.Login(context.Background(), "a@example.com", "nope-nope")
	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid email or password", apiErr.Message)
	assert.Zero(t, atomic.LoadInt32(&fired))
}

func TestNetworkErrorIsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
	}))
	defer ts.Close()
	tokens := session.NewKeyring(t.Name())
	require.NoError(t, tokens.SetToken("tok"))
	defer tokens.Clear()
	c, err := backend.New(backend.Config{BaseURL: ts.URL, HTTPClient: ts.Client(), Tokens: tokens})
	require.NoError(t, err)

	_, err = c.Cart(context.Background())
	var netErr *backend.NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.Equal(t, "view cart", netErr.Op)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	c, tokens := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"calories must be >= 0"}`))
	}), nil)
	require.NoError(t, tokens.SetToken("tok"))

	_, err := c.AddFood(context.Background(), "p1", backend.FoodRequest{Name: "x", Calories: -1, Meal: "lunch"})
	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "calories must be >= 0", apiErr.Message)
}

func TestDayCacheLoadRefreshInvalidate(t *testing.T) {
	var fetches int32
	c, tokens := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&fetches, 1)
		assert.Equal(t, "/profiles/p1/logs", r.URL.Path)
		_ = json.NewEncoder(w).Encode(service.DayLog{Date: r.URL.Query().Get("date"), WaterMl: float64(n * 100)})
	}), nil)
	require.NoError(t, tokens.SetToken("tok"))
	cache := backend.NewDayCache(c)
	ctx := context.Background()

	day, err := cache.Load(ctx, "p1", "2026-02-20")
	require.NoError(t, err)
	assert.Equal(t, 100.0, day.WaterMl)

	day, err = cache.Load(ctx, "p1", "2026-02-20")
	require.NoError(t, err)
	assert.Equal(t, 100.0, day.WaterMl, "second load is served from cache")
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))

	day, err = cache.Refresh(ctx, "p1", "2026-02-20")
	require.NoError(t, err)
	assert.Equal(t, 200.0, day.WaterMl)

	cache.Invalidate("p1", "2026-02-20")
	day, err = cache.Load(ctx, "p1", "2026-02-20")
	require.NoError(t, err)
	assert.Equal(t, 300.0, day.WaterMl)
	assert.Equal(t, int32(3), atomic.LoadInt32(&fetches))
}

func TestDayCachePersistsAcrossOpens(t *testing.T) {
	var fetches int32
	c, tokens := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&fetches, 1)
		_ = json.NewEncoder(w).Encode(service.DayLog{Date: r.URL.Query().Get("date"), WaterMl: float64(n * 100)})
	}), nil)
	require.NoError(t, tokens.SetToken("tok"))
	path := filepath.Join(t.TempDir(), "cache", "days.json")
	ctx := context.Background()

	first := backend.OpenDayCache(c, path)
	_, err := first.Load(ctx, "p1", "2026-02-20")
	require.NoError(t, err)
	_, err = first.Load(ctx, "p1", "2026-02-21")
	require.NoError(t, err)
	_, err = first.Load(ctx, "p2", "2026-02-20")
	require.NoError(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(&fetches))

	second := backend.OpenDayCache(c, path)
	day, err := second.Load(ctx, "p1", "2026-02-20")
	require.NoError(t, err)
	assert.Equal(t, 100.0, day.WaterMl, "served from the file")
	assert.Equal(t, int32(3), atomic.LoadInt32(&fetches))

	second.Invalidate("p1", "")
	third := backend.OpenDayCache(c, path)
	_, err = third.Load(ctx, "p2", "2026-02-20")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&fetches), "other profiles survive a profile-wide invalidate")
	_, err = third.Load(ctx, "p1", "2026-02-21")
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&fetches))

	third.Reset()
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "reset removes the cache file")
}

func TestDayCacheIgnoresCorruptFile(t *testing.T) {
	c, tokens := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(service.DayLog{Date: "2026-02-20", WaterMl: 750})
	}), nil)
	require.NoError(t, tokens.SetToken("tok"))
	path := filepath.Join(t.TempDir(), "days.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	day, err := backend.OpenDayCache(c, path).Load(context.Background(), "p1", "2026-02-20")
	require.NoError(t, err)
	assert.Equal(t, 750.0, day.WaterMl)
}
