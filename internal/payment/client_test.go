package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateOrderSendsBasicAuthAndMinorUnits(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key_1" || pass != "secret" {
			t.Errorf("missing basic auth: %q %q", user, pass)
		}
		var in OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if in.AmountMinor != 26250 || in.Currency != "INR" {
			t.Errorf("unexpected order body: %+v", in)
		}
		_, _ = w.Write([]byte(`{"id":"order_abc","amount":26250,"currency":"INR","receipt":"r1","status":"created"}`))
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL, KeyID: "key_1", KeySecret: "secret", HTTPClient: ts.Client()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	order, err := c.CreateOrder(context.Background(), OrderRequest{AmountMinor: MinorUnits(262.5), Currency: "INR", Receipt: "r1"})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "order_abc" || order.Amount != 26250 {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCreateOrderSurfacesGatewayError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer ts.Close()

	c, err := New(Config{BaseURL: ts.URL, KeyID: "k", KeySecret: "s", HTTPClient: ts.Client()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.CreateOrder(context.Background(), OrderRequest{AmountMinor: 1, Currency: "INR"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "BAD_REQUEST_ERROR" {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestCreateOrderWrapsTransportFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c, err := New(Config{BaseURL: url, KeyID: "k", KeySecret: "s"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.CreateOrder(context.Background(), OrderRequest{AmountMinor: 100, Currency: "INR"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure must not look like a gateway answer: %v", err)
	}
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	c, err := New(Config{BaseURL: "http://gateway.invalid", KeyID: "k", KeySecret: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	sig := Sign("secret", "order_1", "pay_1")
	if err := c.VerifySignature("order_1", "pay_1", sig); err != nil {
		t.Fatalf("expected valid signature: %v", err)
	}
	if err := c.VerifySignature("order_1", "pay_2", sig); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected mismatch for other payment, got %v", err)
	}
	if err := c.VerifySignature("order_1", "pay_1", Sign("other", "order_1", "pay_1")); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected mismatch for other secret, got %v", err)
	}
}

func TestMinorUnitsRounds(t *testing.T) {
	t.Parallel()

	cases := map[float64]int64{262.5: 26250, 0.1 + 0.2: 30, 19.999: 2000}
	for in, want := range cases {
		if got := MinorUnits(in); got != want {
			t.Fatalf("MinorUnits(%v) = %d, want %d", in, got, want)
		}
	}
}
