package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/foodfit/foodfitbot/core/logger"
	"github.com/foodfit/foodfitbot/internal/models"
)

type orderStore interface {
	UserOrders(ctx context.Context, userID int64, limit int) ([]models.Order, error)
	GetOrder(ctx context.Context, orderID int64) (models.Order, error)
	OrderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error)
	ActiveOrders(ctx context.Context) ([]models.Order, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (bool, error)
	LastOrderedDishes(ctx context.Context, userID int64, limit int) ([]string, error)
}

// Orders serves order history, staff views, and status updates.
type Orders struct {
	store orderStore
}

// NewOrders constructs the order service.
func NewOrders(store orderStore) *Orders {
	return &Orders{store: store}
}

// UserOrders returns the user's most recent orders.
func (o *Orders) UserOrders(ctx context.Context, userID int64, limit int) ([]models.Order, error) {
	return o.store.UserOrders(ctx, userID, limit)
}

// Details returns an order with its composition.
func (o *Orders) Details(ctx context.Context, orderID int64) (models.OrderDetails, error) {
	order, err := o.store.GetOrder(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.OrderDetails{}, ErrOrderNotFound
	}
	if err != nil {
		return models.OrderDetails{}, err
	}
	lines, err := o.store.OrderLines(ctx, orderID)
	if err != nil {
		return models.OrderDetails{}, err
	}
	return models.OrderDetails{Order: order, Lines: lines}, nil
}

// Active returns every open order for the staff view.
func (o *Orders) Active(ctx context.Context) ([]models.Order, error) {
	return o.store.ActiveOrders(ctx)
}

// Recent returns the latest orders across all users.
func (o *Orders) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	return o.store.RecentOrders(ctx, limit)
}

// UpdateStatus sets an order's status. Any status may be set at any time;
// an unknown order id reports false without an error.
func (o *Orders) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) (bool, error) {
	ok, err := o.store.UpdateOrderStatus(ctx, orderID, string(status))
	if err != nil {
		return false, err
	}
	if ok {
		logger.Info(ctx, "service.orders", "status.updated",
			slog.Int64("order_id", orderID),
			slog.String("order_status", string(status)),
		)
	}
	return ok, nil
}

// LastOrderedDishes returns the names of recently ordered dishes for the
// profile view.
func (o *Orders) LastOrderedDishes(ctx context.Context, userID int64, limit int) ([]string, error) {
	return o.store.LastOrderedDishes(ctx, userID, limit)
}
