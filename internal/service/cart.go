package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/saadjs/fitfuel/internal/cart"
	"github.com/saadjs/fitfuel/internal/model"
)

// CartView is a cart with its recomputed pricing.
type CartView struct {
	Key       string           `json:"-"`
	Items     []model.CartItem `json:"items"`
	Breakdown cart.Breakdown   `json:"breakdown"`
}

// CartKey is the storage key of an owner's cart. An empty owner maps to the
// single local cart.
func CartKey(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return cart.StorageKey
	}
	return cart.StorageKey + ":" + owner
}

func ViewCart(ctx context.Context, store cart.Store, key string) (CartView, error) {
	items, err := cart.Load(ctx, store, key)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(key, items), nil
}

// AddMenuItemToCart adds one unit of an available menu item, stamped with its
// restaurant.
func AddMenuItemToCart(ctx context.Context, db *sql.DB, store cart.Store, key, menuItemID string) (CartView, error) {
	item, err := GetMenuItem(db, menuItemID)
	if err != nil {
		return CartView{}, err
	}
	if !item.Available {
		return CartView{}, invalidf("menu item %q is not available", item.Name)
	}
	r, err := GetRestaurant(db, item.RestaurantID)
	if err != nil {
		return CartView{}, err
	}
	return mutateCart(ctx, store, key, func(c []model.CartItem) []model.CartItem {
		return cart.Add(c, cart.Item{ID: item.ID, Name: item.Name, Price: item.Price}, cart.Source{ID: r.ID, Name: r.Name})
	})
}

func RemoveFromCart(ctx context.Context, store cart.Store, key, itemID string) (CartView, error) {
	return mutateCart(ctx, store, key, func(c []model.CartItem) []model.CartItem {
		return cart.Remove(c, itemID)
	})
}

// UpdateCartQuantity never deletes a line; see StepCartItem.
func UpdateCartQuantity(ctx context.Context, store cart.Store, key, itemID string, delta int) (CartView, error) {
	return mutateCart(ctx, store, key, func(c []model.CartItem) []model.CartItem {
		return cart.UpdateQuantity(c, itemID, delta)
	})
}

// StepCartItem removes the line when the quantity would drop to zero.
func StepCartItem(ctx context.Context, store cart.Store, key, itemID string, delta int) (CartView, error) {
	return mutateCart(ctx, store, key, func(c []model.CartItem) []model.CartItem {
		return cart.Step(c, itemID, delta)
	})
}

func ClearCart(ctx context.Context, store cart.Store, key string) (CartView, error) {
	return mutateCart(ctx, store, key, func([]model.CartItem) []model.CartItem {
		return cart.Clear()
	})
}

func mutateCart(ctx context.Context, store cart.Store, key string, fn func([]model.CartItem) []model.CartItem) (CartView, error) {
	items, err := cart.Load(ctx, store, key)
	if err != nil {
		return CartView{}, err
	}
	items = fn(items)
	if err := cart.Save(ctx, store, key, items); err != nil {
		return CartView{}, err
	}
	return newCartView(key, items), nil
}

func newCartView(key string, items []model.CartItem) CartView {
	return CartView{Key: key, Items: items, Breakdown: cart.Price(items)}
}
