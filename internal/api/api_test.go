package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saadjs/fitfuel/internal/api"
	"github.com/saadjs/fitfuel/internal/auth"
	"github.com/saadjs/fitfuel/internal/db"
	"github.com/saadjs/fitfuel/internal/payment"
	"github.com/saadjs/fitfuel/internal/service"
	"github.com/saadjs/fitfuel/internal/storage"
)

const gatewaySecret = "gw-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	t      *testing.T
	db     *sql.DB
	server *api.Server
	http   *httptest.Server
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	sqldb, err := db.Open(filepath.Join(t.TempDir(), "fitfuel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })
	require.NoError(t, db.ApplyMigrations(sqldb))

	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in payment.OrderRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(payment.Order{ID: "order_" + in.Receipt, Amount: in.AmountMinor, Currency: in.Currency, Receipt: in.Receipt, Status: "created"})
	}))
	t.Cleanup(gw.Close)
	gateway, err := payment.New(payment.Config{BaseURL: gw.URL, KeyID: "key_test", KeySecret: gatewaySecret, HTTPClient: gw.Client()})
	require.NoError(t, err)

	issuer, err := auth.NewIssuer("test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	srv, err := api.New(api.Options{
		DB:           sqldb,
		Store:        storage.NewSQLite(sqldb),
		Issuer:       issuer,
		Gateway:      gateway,
		Currency:     "INR",
		PaymentKeyID: gateway.KeyID(),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testEnv{t: t, db: sqldb, server: srv, http: ts}
}

func (e *testEnv) do(method, path, token string, body any, out any) int {
	e.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.http.URL+path, rdr)
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.http.Client().Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type registered struct {
	Token string `json:"token"`
	User  struct {
		ID      string `json:"id"`
		IsAdmin bool   `json:"isAdmin"`
	} `json:"user"`
}

func (e *testEnv) register(email string) registered {
	e.t.Helper()
	var out registered
	status := e.do(http.MethodPost, "/auth/register", "", map[string]string{"email": email, "password": "password123"}, &out)
	require.Equal(e.t, http.StatusCreated, status)
	return out
}

func (e *testEnv) firstProfile(token string) string {
	e.t.Helper()
	var profiles []struct {
		ID string `json:"id"`
	}
	require.Equal(e.t, http.StatusOK, e.do(http.MethodGet, "/profiles", token, nil, &profiles))
	require.Len(e.t, profiles, 1)
	return profiles[0].ID
}

func TestRegisterLoginAndMe(t *testing.T) {
	t.Parallel()
	env := newEnv(t)

	admin := env.register("admin@example.com")
	assert.True(t, admin.User.IsAdmin, "first user should be admin")
	member := env.register("member@example.com")
	assert.False(t, member.User.IsAdmin)

	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "member@example.com", "password": "password123"}, nil))
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "member@example.com", "password": "wrong-password"}, nil))

	var login registered
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "MEMBER@example.com", "password": "password123"}, &login))
	assert.Equal(t, member.User.ID, login.User.ID)

	var me struct {
		Profiles []struct {
			Name string `json:"name"`
		} `json:"profiles"`
	}
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/me", login.Token, nil, &me))
	require.Len(t, me.Profiles, 1)
	assert.Equal(t, service.DefaultProfileName, me.Profiles[0].Name)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/me", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/me", "garbage", nil, nil))
}

func TestFoodWorkoutAndSummaryFlow(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	user := env.register("a@example.com")
	pid := env.firstProfile(user.Token)
	base := "/profiles/" + pid
	date := "2026-02-20"
	at := time.Date(2026, 2, 20, 12, 0, 0, 0, time.Local)

	require.Equal(t, http.StatusOK, env.do(http.MethodPut, base+"/goals", user.Token, map[string]float64{"calories": 500, "protein": 100, "carbs": 200, "fats": 60, "water": 2000}, nil))
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, base+"/food", user.Token, map[string]any{"id": "f1", "name": "Lunch", "calories": 900, "protein": 40, "meal": "lunch", "loggedAt": at}, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, base+"/food", user.Token, map[string]any{"id": "f1", "name": "Dup", "calories": 10, "meal": "lunch", "loggedAt": at}, nil), "duplicate id on the same day")
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, base+"/food", user.Token, map[string]any{"name": "Neg", "calories": -5, "meal": "lunch", "loggedAt": at}, nil))

	var w struct {
		CaloriesBurned float64 `json:"caloriesBurned"`
	}
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, base+"/workouts", user.Token, map[string]any{"exerciseId": "push-ups", "reps": 12, "sets": 2, "timestamp": at}, &w))
	assert.InDelta(t, 9.6, w.CaloriesBurned, 1e-9)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, base+"/water", user.Token, map[string]any{"date": date, "ml": 250}, nil))

	var sum struct {
		NetCalories float64 `json:"netCalories"`
		Remaining   float64 `json:"remaining"`
		HasGoals    bool    `json:"hasGoals"`
	}
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, base+"/summary?date="+date, user.Token, nil, &sum))
	assert.True(t, sum.HasGoals)
	assert.InDelta(t, 890.4, sum.NetCalories, 1e-9)
	assert.InDelta(t, -390.4, sum.Remaining, 1e-9)

	var day service.DayLog
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, base+"/logs?date="+date, user.Token, nil, &day))
	assert.Len(t, day.Food, 1)
	assert.Len(t, day.Workouts, 1)
	assert.Equal(t, 250.0, day.WaterMl)

	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, base+"/food/f1", user.Token, nil, nil))
	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, base+"/food/f1", user.Token, nil, nil), "removing an absent entry is a no-op")

	other := env.register("b@example.com")
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, base+"/summary", other.Token, nil, nil), "profiles of other users are hidden")

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, base+"/workouts", user.Token, map[string]any{"id": "w-shared", "exerciseId": "running", "durationMinutes": 10, "timestamp": at}, nil))
	otherBase := "/profiles/" + env.firstProfile(other.Token)
	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, otherBase+"/workouts", other.Token, map[string]any{"id": "w-shared", "exerciseId": "running", "durationMinutes": 10, "timestamp": at}, nil), "workout ids of other accounts are not overwritten")
	var otherDay service.DayLog
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, otherBase+"/logs?date="+date, other.Token, nil, &otherDay))
	assert.Empty(t, otherDay.Workouts)
}

func TestSessionToggleKeepsOneEntryPerTask(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	user := env.register("s@example.com")
	base := "/profiles/" + env.firstProfile(user.Token) + "/sessions/" + service.Today()

	var task struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, base+"/tasks", user.Token, map[string]any{
		"exerciseId": "squats",
		"sets":       []map[string]int{{"reps": 10}, {"reps": 12}},
	}, &task))

	type toggleResp struct {
		Change string `json:"change"`
		Log    []struct {
			ID string `json:"id"`
		} `json:"log"`
	}
	var r toggleResp
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, base+"/tasks/"+task.ID+"/sets/0/toggle", user.Token, nil, &r))
	assert.Equal(t, "upsert", r.Change)
	require.Len(t, r.Log, 1)
	assert.Equal(t, task.ID, r.Log[0].ID)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, base+"/tasks/"+task.ID+"/sets/1/toggle", user.Token, nil, &r))
	assert.Len(t, r.Log, 1)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, base+"/tasks/"+task.ID+"/sets/0/toggle", user.Token, nil, &r))
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, base+"/tasks/"+task.ID+"/sets/1/toggle", user.Token, nil, &r))
	assert.Equal(t, "delete", r.Change)
	assert.Empty(t, r.Log)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, base+"/tasks/"+task.ID+"/sets/x/toggle", user.Token, nil, nil))
}

func TestAdminRoutesAndCheckout(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	admin := env.register("admin@example.com")
	member := env.register("member@example.com")

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/admin/restaurants", member.Token, map[string]string{"name": "Nope"}, nil))

	var rest struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/admin/restaurants", admin.Token, map[string]string{"name": "Greens & Co", "cuisine": "salad"}, &rest))
	var bowl, juice struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/admin/restaurants/"+rest.ID+"/menu", admin.Token, map[string]any{"name": "Protein bowl", "price": 100}, &bowl))
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/admin/restaurants/"+rest.ID+"/menu", admin.Token, map[string]any{"name": "Green juice", "price": 50}, &juice))

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/checkout", member.Token, nil, nil), "empty cart")
	for _, id := range []string{bowl.ID, bowl.ID, juice.ID} {
		require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/cart/items", member.Token, map[string]string{"menuItemId": id}, nil))
	}
	var view service.CartView
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/cart", member.Token, nil, &view))
	assert.Equal(t, 250.0, view.Breakdown.Subtotal)
	assert.InDelta(t, 262.5, view.Breakdown.Total, 1e-9)

	var co struct {
		Order struct {
			GatewayOrderID string `json:"gatewayOrderId"`
			AmountMinor    int64  `json:"amountMinor"`
		} `json:"order"`
		KeyID string `json:"keyId"`
	}
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/checkout", member.Token, nil, &co))
	assert.Equal(t, int64(26250), co.Order.AmountMinor)
	assert.Equal(t, "key_test", co.KeyID)

	verify := map[string]string{"gatewayOrderId": co.Order.GatewayOrderID, "paymentId": "pay_1", "signature": "bad"}
	assert.Equal(t, http.StatusPaymentRequired, env.do(http.MethodPost, "/checkout/verify", member.Token, verify, nil))
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/cart", member.Token, nil, &view))
	assert.Len(t, view.Items, 2, "cart is kept after a failed payment")

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/checkout/verify", admin.Token, verify, nil), "another account's order")

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/checkout", member.Token, nil, &co))
	verify = map[string]string{
		"gatewayOrderId": co.Order.GatewayOrderID,
		"paymentId":      "pay_2",
		"signature":      payment.Sign(gatewaySecret, co.Order.GatewayOrderID, "pay_2"),
	}
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/checkout/verify", member.Token, verify, nil))
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/cart", member.Token, nil, &view))
	assert.Empty(t, view.Items)

	var orders []struct {
		Status string `json:"status"`
	}
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/orders", member.Token, nil, &orders))
	assert.Len(t, orders, 2)
}

func TestCartQuantityModes(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	admin := env.register("admin@example.com")
	var rest, bowl struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/admin/restaurants", admin.Token, map[string]string{"name": "Bowls"}, &rest))
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/admin/restaurants/"+rest.ID+"/menu", admin.Token, map[string]any{"name": "Bowl", "price": 10}, &bowl))
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/cart/items", admin.Token, map[string]string{"menuItemId": bowl.ID}, nil))

	var view service.CartView
	require.Equal(t, http.StatusOK, env.do(http.MethodPatch, "/cart/items/"+bowl.ID, admin.Token, map[string]any{"delta": -1}, &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)

	require.Equal(t, http.StatusOK, env.do(http.MethodPatch, "/cart/items/"+bowl.ID, admin.Token, map[string]any{"delta": -1, "step": true}, &view))
	assert.Empty(t, view.Items)
}

func TestWebsocketReceivesSummaryPush(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	user := env.register("ws@example.com")
	pid := env.firstProfile(user.Token)

	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws?token=" + user.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return env.server.Hub().Connections(user.User.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/profiles/"+pid+"/water", user.Token, map[string]any{"ml": 300}, nil))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var ev api.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "summary", ev.Type)
	assert.Equal(t, pid, ev.ProfileID)
	require.NotNil(t, ev.Summary)
	assert.Equal(t, 300.0, ev.Summary.Totals.Water)
}

func TestWebsocketSummariesArriveInMutationOrder(t *testing.T) {
	t.Parallel()
	env := newEnv(t)
	user := env.register("order@example.com")
	pid := env.firstProfile(user.Token)

	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws?token=" + user.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return env.server.Hub().Connections(user.User.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	const mutations = 6
	for i := 0; i < mutations; i++ {
		require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/profiles/"+pid+"/water", user.Token, map[string]any{"ml": 100}, nil))
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for i := 1; i <= mutations; i++ {
		var ev api.Event
		require.NoError(t, conn.ReadJSON(&ev))
		require.NotNil(t, ev.Summary)
		assert.Equal(t, float64(100*i), ev.Summary.Totals.Water, "event %d", i)
	}
}
