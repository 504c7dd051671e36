package fitfuel

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/saadjs/fitfuel/internal/payment"
	"github.com/saadjs/fitfuel/internal/service"
)

const day = "2026-02-20"

func TestLocalDayFlow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fitfuel.db")

	mustRun(t, "--db", db, "init")
	mustRun(t, "--db", db, "profile", "update", "--weight", "70")
	mustRun(t, "--db", db, "goal", "set", "--calories", "2000", "--protein", "150", "--carbs", "200", "--fats", "60", "--water", "2500")
	mustRun(t, "--db", db, "food", "add", "--name", "Chicken bowl", "--calories", "550", "--protein", "45", "--carbs", "40", "--fats", "18",
		"--meal", "lunch", "--date", day, "--time", "13:00")
	mustRun(t, "--db", db, "water", "add", "500", "--date", day)

	out := mustRun(t, "--db", db, "workout", "log", "squats", "--reps", "10", "--sets", "3", "--date", day)
	if !strings.Contains(out, "9.6 kcal") {
		t.Fatalf("expected 9.6 kcal for 30 squats, got %q", out)
	}

	out = mustRun(t, "--db", db, "workout", "session", "start", "squats", "--reps", "10,12", "--date", day)
	taskID := idFrom(t, out)

	out = mustRun(t, "--db", db, "workout", "session", "toggle", taskID, "1", "--date", day)
	if !strings.Contains(out, "Logged Squats: 3.2 kcal") || !strings.Contains(out, "[x] 1: 10 reps") {
		t.Fatalf("expected first set logged, got %q", out)
	}
	out = mustRun(t, "--db", db, "workout", "session", "toggle", taskID, "1", "--date", day)
	if !strings.Contains(out, "Removed log entry") {
		t.Fatalf("expected log entry removed when no sets are done, got %q", out)
	}
	if _, err := run(t, "--db", db, "workout", "session", "toggle", taskID, "3", "--date", day); err == nil {
		t.Fatalf("expected out-of-range set to fail")
	}
	mustRun(t, "--db", db, "workout", "session", "toggle", taskID, "2", "--date", day)

	out = mustRun(t, "--db", db, "today", "--date", day, "--json")
	var s service.DaySummary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decode today json: %v\n%s", err, out)
	}
	// 30 squats logged directly plus 12 from the session.
	if s.Totals.Calories != 550 || math.Abs(s.Totals.CaloriesBurned-13.44) > 1e-9 || s.Totals.Water != 500 {
		t.Fatalf("unexpected totals: %+v", s.Totals)
	}
	if !s.HasGoals || math.Abs(s.NetCalories-536.56) > 1e-9 {
		t.Fatalf("unexpected summary: %+v", s)
	}

	out = mustRun(t, "--db", db, "history", "week", "--date", day)
	if !strings.Contains(out, "Week 2026-02-16 to 2026-02-22") || !strings.Contains(out, "Days logged: 1") {
		t.Fatalf("unexpected week output %q", out)
	}

	mustRun(t, "--db", db, "workout", "session", "delete", taskID, "--date", day)
	out = mustRun(t, "--db", db, "workout", "list", "--date", day)
	if strings.Count(out, "Squats") != 1 {
		t.Fatalf("expected only the direct squats entry to remain, got %q", out)
	}
}

func TestCartDoctorAndBackupFlow(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "fitfuel.db")

	mustRun(t, "--db", db, "restaurant", "add", "Greens", "--cuisine", "salad")
	bowl := idFrom(t, mustRun(t, "--db", db, "restaurant", "menu", "add", "greens", "--name", "Protein bowl", "--price", "100"))
	juice := idFrom(t, mustRun(t, "--db", db, "restaurant", "menu", "add", "greens", "--name", "Green juice", "--price", "50"))

	mustRun(t, "--db", db, "cart", "add", bowl)
	mustRun(t, "--db", db, "cart", "add", bowl)
	out := mustRun(t, "--db", db, "cart", "add", juice)
	if !strings.Contains(out, "Subtotal: 250.00") || !strings.Contains(out, "Total: 262.50") {
		t.Fatalf("unexpected cart pricing %q", out)
	}

	out = mustRun(t, "--db", db, "cart", "update", "--", juice, "-1")
	if !strings.Contains(out, "Green juice") {
		t.Fatalf("update must not remove a line, got %q", out)
	}
	out = mustRun(t, "--db", db, "cart", "step", "--", juice, "-1")
	if strings.Contains(out, "Green juice") {
		t.Fatalf("step to zero must remove the line, got %q", out)
	}

	if _, err := run(t, "--db", db, "checkout"); err == nil || !strings.Contains(err.Error(), "payments are not configured") {
		t.Fatalf("expected checkout without payment config to fail, got %v", err)
	}

	mustRun(t, "--db", db, "doctor")

	backup := filepath.Join(dir, "snap.db")
	out = mustRun(t, "--db", db, "backup", "create", "--out", backup)
	if !strings.Contains(out, "Checksum: ") {
		t.Fatalf("unexpected backup output %q", out)
	}
	out = mustRun(t, "--db", db, "backup", "list", "--dir", dir)
	if !strings.Contains(out, "snap.db") {
		t.Fatalf("expected backup listed, got %q", out)
	}
	if _, err := run(t, "--db", db, "backup", "restore", "--file", backup); err == nil {
		t.Fatalf("expected restore over existing db without --force to fail")
	}
	mustRun(t, "--db", db, "backup", "restore", "--file", backup, "--force")
}

var gatewayOrderLine = regexp.MustCompile(`Gateway order: (\S+)`)

func TestCheckoutAndVerifyWithGateway(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in payment.OrderRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(payment.Order{ID: "order_" + in.Receipt, Amount: in.AmountMinor, Currency: in.Currency, Receipt: in.Receipt, Status: "created"})
	}))
	defer gw.Close()
	t.Setenv("FITFUEL_PAYMENT_BASE_URL", gw.URL)
	t.Setenv("FITFUEL_PAYMENT_KEY_ID", "key_test")
	t.Setenv("FITFUEL_PAYMENT_KEY_SECRET", "secret")

	db := filepath.Join(t.TempDir(), "fitfuel.db")
	mustRun(t, "--db", db, "restaurant", "add", "Greens")
	bowl := idFrom(t, mustRun(t, "--db", db, "restaurant", "menu", "add", "Greens", "--name", "Protein bowl", "--price", "100"))
	mustRun(t, "--db", db, "cart", "add", bowl)

	out := mustRun(t, "--db", db, "checkout", "--currency", "USD")
	if !strings.Contains(out, "Amount: 105.00 USD (10500 minor units)") {
		t.Fatalf("unexpected checkout output %q", out)
	}
	m := gatewayOrderLine.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no gateway order in %q", out)
	}
	orderID := m[1]

	if _, err := run(t, "--db", db, "checkout", "verify", orderID, "pay_1", "forged"); err == nil {
		t.Fatalf("expected forged signature to fail")
	}
	out = mustRun(t, "--db", db, "cart", "show")
	if !strings.Contains(out, "Protein bowl") {
		t.Fatalf("cart must survive a failed verification, got %q", out)
	}

	out = mustRun(t, "--db", db, "checkout", "verify", orderID, "pay_1", payment.Sign("secret", orderID, "pay_1"))
	if !strings.Contains(out, "paid") {
		t.Fatalf("expected paid order, got %q", out)
	}
	out = mustRun(t, "--db", db, "cart", "show")
	if !strings.Contains(out, "Cart is empty") {
		t.Fatalf("expected cart cleared after payment, got %q", out)
	}
	out = mustRun(t, "--db", db, "orders")
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected one order row, got %q", out)
	}
}

func TestFoodAddCoercesInvalidNumbersToZero(t *testing.T) {
	db := filepath.Join(t.TempDir(), "fitfuel.db")
	out := mustRun(t, "--db", db, "food", "add", "--name", "Mystery snack", "--calories", "lots", "--protein", "4")
	if !strings.Contains(out, "Logged Mystery snack (0 kcal, snack)") {
		t.Fatalf("expected invalid calories coerced to 0, got %q", out)
	}
	if _, err := run(t, "--db", db, "food", "add", "--name", "Bad", "--calories", "-5"); err == nil {
		t.Fatalf("expected negative calories to be rejected")
	}
}
