package service

import (
	"context"
	"log/slog"

	"github.com/foodfit/foodfitbot/core/logger"
	"github.com/foodfit/foodfitbot/internal/models"
	"github.com/foodfit/foodfitbot/internal/storage"
)

type cartStore interface {
	AddToCart(ctx context.Context, userID, dishID int64) error
	CartContents(ctx context.Context, userID int64) ([]models.CartLine, error)
	CartQuantity(ctx context.Context, userID, dishID int64) (int, bool, error)
	SetCartQuantity(ctx context.Context, userID, dishID int64, quantity int) error
	RemoveFromCart(ctx context.Context, userID, dishID int64) error
	ClearCart(ctx context.Context, userID int64) error
	WithinTx(ctx context.Context, fn func(tx storage.Tx) error) error
}

// Cart mutates per-user cart lines and turns them into orders.
type Cart struct {
	store cartStore
}

// NewCart constructs the cart service.
func NewCart(store cartStore) *Cart {
	return &Cart{store: store}
}

// Add puts one more unit of a dish into the user's cart. Repeat adds
// increment the existing line; at most one line exists per (user, dish).
func (c *Cart) Add(ctx context.Context, userID, dishID int64) error {
	return c.store.AddToCart(ctx, userID, dishID)
}

// Contents returns the cart joined with live menu data.
func (c *Cart) Contents(ctx context.Context, userID int64) ([]models.CartLine, error) {
	return c.store.CartContents(ctx, userID)
}

// Totals sums money and calories over cart lines.
func Totals(lines []models.CartLine) (amount, calories int) {
	for _, l := range lines {
		amount += l.Total()
		calories += l.Calories * l.Quantity
	}
	return amount, calories
}

// SetQuantity changes the quantity of an existing line and returns the
// resulting quantity. Values below 1 are rejected as a no-op: the current
// quantity is returned unchanged. A missing line also reports ok=false.
func (c *Cart) SetQuantity(ctx context.Context, userID, dishID int64, quantity int) (int, bool, error) {
	current, found, err := c.store.CartQuantity(ctx, userID, dishID)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, nil
	}
	if quantity < 1 {
		return current, false, nil
	}
	if err := c.store.SetCartQuantity(ctx, userID, dishID, quantity); err != nil {
		return current, false, err
	}
	return quantity, true, nil
}

// ChangeQuantity adjusts a line's quantity by delta, subject to the same
// floor as SetQuantity.
func (c *Cart) ChangeQuantity(ctx context.Context, userID, dishID int64, delta int) (int, bool, error) {
	current, found, err := c.store.CartQuantity(ctx, userID, dishID)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, nil
	}
	return c.SetQuantity(ctx, userID, dishID, current+delta)
}

// Remove deletes a line regardless of its quantity.
func (c *Cart) Remove(ctx context.Context, userID, dishID int64) error {
	return c.store.RemoveFromCart(ctx, userID, dishID)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context, userID int64) error {
	return c.store.ClearCart(ctx, userID)
}

// Checkout snapshots the cart into a new order: reads the cart with its
// live prices, computes the total, creates the order in status accepted,
// copies every line with its price at this instant, and empties the
// cart — all inside one transaction, so the snapshot is consistent and
// a partial failure leaves no visible order. Returns ErrEmptyCart when
// there is nothing to order.
func (c *Cart) Checkout(ctx context.Context, userID int64) (int64, []models.CartLine, error) {
	var (
		orderID int64
		lines   []models.CartLine
		total   int
	)
	err := c.store.WithinTx(ctx, func(tx storage.Tx) error {
		var err error
		lines, err = tx.CartContents(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		total, _ = Totals(lines)

		id, err := tx.InsertOrder(ctx, userID, total, string(models.StatusAccepted))
		if err != nil {
			return err
		}
		for _, l := range lines {
			if err := tx.InsertOrderLine(ctx, id, l.DishID, l.Quantity, l.Price); err != nil {
				return err
			}
		}
		if err := tx.ClearCart(ctx, userID); err != nil {
			return err
		}
		orderID = id
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	logger.Info(ctx, "service.cart", "checkout",
		slog.Int64("user_id", userID),
		slog.Int64("order_id", orderID),
		slog.Int("total", total),
		slog.Int("lines", len(lines)),
	)
	return orderID, lines, nil
}
