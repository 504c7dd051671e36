package cart_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/saadjs/fitfuel/internal/cart"
	"github.com/saadjs/fitfuel/internal/model"
)

var (
	bowl   = cart.Item{ID: "bowl", Name: "Protein bowl", Price: 100}
	juice  = cart.Item{ID: "juice", Name: "Green juice", Price: 50}
	greens = cart.Source{ID: "r1", Name: "Greens & Co"}
)

func TestAddIncrementsExistingLine(t *testing.T) {
	t.Parallel()

	c := cart.Add(nil, bowl, greens)
	c = cart.Add(c, bowl, cart.Source{ID: "other", Name: "Other"})
	if len(c) != 1 || c[0].Quantity != 2 {
		t.Fatalf("expected single line with quantity 2, got %+v", c)
	}
	if c[0].RestaurantID != "r1" || c[0].Price != 100 {
		t.Fatalf("repeat add must not change identity or price: %+v", c[0])
	}
}

func TestPricing(t *testing.T) {
	t.Parallel()

	c := cart.Add(nil, bowl, greens)
	c = cart.Add(c, bowl, greens)
	c = cart.Add(c, juice, greens)
	if got := cart.Total(c); got != 250 {
		t.Fatalf("expected cart total 250, got %v", got)
	}
	if got := cart.CheckoutTotal(cart.Total(c)); math.Abs(got-262.5) > 1e-9 {
		t.Fatalf("expected checkout total 262.5, got %v", got)
	}
	b := cart.Price(c)
	if b.Units != 3 || math.Abs(b.Tax-12.5) > 1e-9 {
		t.Fatalf("unexpected breakdown: %+v", b)
	}
}

func TestUpdateQuantityNeverDeletes(t *testing.T) {
	t.Parallel()

	c := cart.Add(nil, bowl, greens)
	c = cart.UpdateQuantity(c, "bowl", -1)
	if len(c) != 1 || c[0].Quantity != 1 {
		t.Fatalf("decrement to zero must leave the line untouched, got %+v", c)
	}
	c = cart.UpdateQuantity(c, "bowl", 4)
	if c[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", c[0].Quantity)
	}
}

func TestStepRemovesAtZero(t *testing.T) {
	t.Parallel()

	c := cart.Add(nil, bowl, greens)
	c = cart.Add(c, juice, greens)
	c = cart.Step(c, "bowl", -1)
	if len(c) != 1 || c[0].ID != "juice" {
		t.Fatalf("expected bowl removed, got %+v", c)
	}
	c = cart.Step(c, "juice", 2)
	if c[0].Quantity != 3 {
		t.Fatalf("expected juice quantity 3, got %+v", c)
	}
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()

	c := cart.Add(nil, bowl, greens)
	c = cart.Add(c, bowl, greens)
	c = cart.Remove(c, "bowl")
	if len(c) != 0 {
		t.Fatalf("remove must delete regardless of quantity, got %+v", c)
	}
	if got := cart.Clear(); got == nil || len(got) != 0 {
		t.Fatalf("clear must return an empty non-nil cart")
	}
}

func TestQuantityInvariantUnderRandomOperations(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	items := []cart.Item{bowl, juice, {ID: "bar", Name: "Bar", Price: 3}}
	var c []model.CartItem
	for i := 0; i < 2000; i++ {
		it := items[rng.Intn(len(items))]
		switch rng.Intn(4) {
		case 0:
			c = cart.Add(c, it, greens)
		case 1:
			c = cart.UpdateQuantity(c, it.ID, rng.Intn(7)-3)
		case 2:
			c = cart.Step(c, it.ID, rng.Intn(7)-3)
		case 3:
			c = cart.Remove(c, it.ID)
		}
		for _, line := range c {
			if line.Quantity < 1 {
				t.Fatalf("step %d produced line with quantity %d", i, line.Quantity)
			}
		}
	}
}

type memStore map[string][]byte

func (m memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return v, nil
}

func (m memStore) Set(_ context.Context, key string, value []byte) error {
	m[key] = value
	return nil
}

func (m memStore) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func TestLoadMalformedStorageYieldsEmptyCart(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{`{"id":"bowl"}`, `42`, `null`, `not json`, `"[]"`} {
		store := memStore{cart.StorageKey: []byte(raw)}
		c, err := cart.Load(context.Background(), store, cart.StorageKey)
		if err != nil {
			t.Fatalf("load %q returned error: %v", raw, err)
		}
		if c == nil || len(c) != 0 {
			t.Fatalf("expected empty cart for %q, got %+v", raw, c)
		}
	}
}

func TestDecodeReportsCorruption(t *testing.T) {
	t.Parallel()

	_, err := cart.Decode(cart.StorageKey, []byte(`{"items":[]}`))
	var corrupt *cart.PersistenceCorruptionError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected PersistenceCorruptionError, got %v", err)
	}
}

func TestSaveLoadRoundTripDropsInvalidLines(t *testing.T) {
	t.Parallel()

	store := memStore{}
	ctx := context.Background()
	c := cart.Add(cart.Add(nil, bowl, greens), juice, greens)
	if err := cart.Save(ctx, store, cart.StorageKey, c); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := cart.Load(ctx, store, cart.StorageKey)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || cart.Total(loaded) != 150 {
		t.Fatalf("unexpected loaded cart: %+v", loaded)
	}

	store[cart.StorageKey] = []byte(`[{"id":"bowl","price":100,"quantity":0},{"id":"juice","price":50,"quantity":2}]`)
	loaded, err = cart.Load(ctx, store, cart.StorageKey)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "juice" {
		t.Fatalf("expected zero-quantity line dropped, got %+v", loaded)
	}

	missing, err := cart.Load(ctx, memStore{}, cart.StorageKey)
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected empty cart for missing key, got %+v, %v", missing, err)
	}
}
