package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/fitfuel/internal/cart"
	"github.com/saadjs/fitfuel/internal/logger"
	"github.com/saadjs/fitfuel/internal/model"
	"github.com/saadjs/fitfuel/internal/payment"
)

const DefaultCurrency = "INR"

var ErrEmptyCart = errors.New("cart is empty")

// PaymentGateway creates gateway orders and verifies payment signatures.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, in payment.OrderRequest) (payment.Order, error)
	VerifySignature(orderID, paymentID, signature string) error
}

type ConfirmPaymentInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// Checkout creates a gateway order for the cart's checkout total and records
// a snapshot of the cart. The cart itself is left untouched.
func Checkout(ctx context.Context, db *sql.DB, store cart.Store, gw PaymentGateway, key, currency string) (model.Order, error) {
	items, err := cart.Load(ctx, store, key)
	if err != nil {
		return model.Order{}, err
	}
	if len(items) == 0 {
		return model.Order{}, ErrEmptyCart
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	b := cart.Price(items)
	now := time.Now()
	order := model.Order{
		ID:          newID(),
		CartKey:     key,
		Subtotal:    b.Subtotal,
		Total:       b.Total,
		AmountMinor: payment.MinorUnits(b.Total),
		Currency:    currency,
		Status:      model.OrderCreated,
		Items:       items,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	gwOrder, err := gw.CreateOrder(ctx, payment.OrderRequest{
		AmountMinor: order.AmountMinor,
		Currency:    currency,
		Receipt:     order.ID,
		Notes:       map[string]string{"units": fmt.Sprint(b.Units)},
	})
	if err != nil {
		return model.Order{}, fmt.Errorf("create payment order: %w", err)
	}
	order.GatewayOrderID = gwOrder.ID

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return model.Order{}, fmt.Errorf("marshal order items: %w", err)
	}
	_, err = db.Exec(`
INSERT INTO orders(id, cart_key, gateway_order_id, subtotal, total, amount_minor, currency, status, items_json, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, order.ID, key, order.GatewayOrderID, order.Subtotal, order.Total, order.AmountMinor, currency, string(order.Status), string(itemsJSON), formatTime(now), formatTime(now))
	if err != nil {
		return model.Order{}, fmt.Errorf("insert order: %w", err)
	}
	logger.Info("order created", "order_id", order.ID, "gateway_order_id", order.GatewayOrderID, "amount_minor", order.AmountMinor)
	return order, nil
}

// ConfirmPayment verifies the gateway signature. On success the order is
// marked paid and its cart cleared; on failure the order is marked failed,
// the cart is retained, and the verification error is returned.
func ConfirmPayment(ctx context.Context, db *sql.DB, store cart.Store, gw PaymentGateway, in ConfirmPaymentInput) (model.Order, error) {
	order, err := GetOrderByGatewayID(db, in.GatewayOrderID)
	if err != nil {
		return model.Order{}, err
	}
	if order.Status == model.OrderPaid {
		if order.PaymentID == in.PaymentID {
			return order, nil
		}
		return order, invalidf("order %s is already paid", order.ID)
	}
	if strings.TrimSpace(in.PaymentID) == "" {
		return order, invalidf("payment id is required")
	}

	if verr := gw.VerifySignature(order.GatewayOrderID, in.PaymentID, in.Signature); verr != nil {
		if err := setOrderStatus(db, order.ID, model.OrderFailed, ""); err != nil {
			return order, err
		}
		order.Status = model.OrderFailed
		logger.Warn("payment verification failed", "order_id", order.ID, "error", verr)
		return order, fmt.Errorf("verify payment for order %s: %w", order.ID, verr)
	}

	if err := setOrderStatus(db, order.ID, model.OrderPaid, in.PaymentID); err != nil {
		return order, err
	}
	order.Status = model.OrderPaid
	order.PaymentID = in.PaymentID
	if err := cart.Save(ctx, store, order.CartKey, cart.Clear()); err != nil {
		return order, fmt.Errorf("clear cart after payment: %w", err)
	}
	logger.Info("order paid", "order_id", order.ID, "payment_id", in.PaymentID)
	return order, nil
}

const orderColumns = `id, cart_key, gateway_order_id, IFNULL(payment_id, ''), subtotal, total, amount_minor, currency, status, items_json, created_at, updated_at`

func GetOrder(db *sql.DB, id string) (model.Order, error) {
	return getOrderWhere(db, "id", id)
}

func GetOrderByGatewayID(db *sql.DB, gatewayOrderID string) (model.Order, error) {
	return getOrderWhere(db, "gateway_order_id", gatewayOrderID)
}

// ListOrders returns the orders placed from a cart key, newest first.
func ListOrders(db *sql.DB, cartKey string, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`SELECT `+orderColumns+` FROM orders WHERE cart_key = ? ORDER BY created_at DESC LIMIT ?`, cartKey, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	out := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return out, nil
}

func getOrderWhere(db *sql.DB, column, value string) (model.Order, error) {
	value, err := requireID("order", value)
	if err != nil {
		return model.Order{}, err
	}
	o, err := scanOrder(db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE `+column+` = ?`, value))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, fmt.Errorf("order %q: %w", value, ErrNotFound)
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("get order %q: %w", value, err)
	}
	return o, nil
}

func setOrderStatus(db *sql.DB, id string, status model.OrderStatus, paymentID string) error {
	_, err := db.Exec(`UPDATE orders SET status = ?, payment_id = COALESCE(NULLIF(?, ''), payment_id), updated_at = ? WHERE id = ?`,
		string(status), paymentID, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update order %s status: %w", id, err)
	}
	return nil
}

func scanOrder(row rowScanner) (model.Order, error) {
	var o model.Order
	var status, itemsJSON, created, updated string
	if err := row.Scan(&o.ID, &o.CartKey, &o.GatewayOrderID, &o.PaymentID, &o.Subtotal, &o.Total, &o.AmountMinor, &o.Currency, &status, &itemsJSON, &created, &updated); err != nil {
		return model.Order{}, err
	}
	o.Status = model.OrderStatus(status)
	if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
		return model.Order{}, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	o.CreatedAt = parseDBTime(created)
	o.UpdatedAt = parseDBTime(updated)
	return o, nil
}
