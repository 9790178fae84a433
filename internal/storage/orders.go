package storage

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/foodfit/foodfitbot/internal/models"
)

// InsertOrder creates the order row inside a checkout transaction and
// returns the new order id.
func (t sqlTx) InsertOrder(ctx context.Context, userID int64, total int, status string) (int64, error) {
	var id int64
	err := t.tx.GetContext(ctx, &id, `
		INSERT INTO orders (user_id, order_date, total_amount, status)
		VALUES ($1, NOW(), $2, $3)
		RETURNING order_id`,
		userID, total, status)
	if err != nil {
		return 0, wrapErr(fmt.Sprintf("insert order for %d", userID), err)
	}
	return id, nil
}

// InsertOrderLine copies one cart line into order_items with its
// price-at-purchase.
func (t sqlTx) InsertOrderLine(ctx context.Context, orderID, dishID int64, quantity, price int) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO order_items (order_id, dish_id, quantity, price)
		VALUES ($1, $2, $3, $4)`,
		orderID, dishID, quantity, price)
	if err != nil {
		return wrapErr(fmt.Sprintf("insert order line %d/%d", orderID, dishID), err)
	}
	return nil
}

// UserOrders returns the user's most recent orders, newest first.
func (s *Store) UserOrders(ctx context.Context, userID int64, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, `
		SELECT order_id, user_id, order_date, total_amount, status, '' AS customer_name
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("orders of %d", userID), err)
	}
	return orders, nil
}

// GetOrder returns an order joined with the customer's name, or
// sql.ErrNoRows when the id is unknown.
func (s *Store) GetOrder(ctx context.Context, orderID int64) (models.Order, error) {
	var o models.Order
	err := s.db.GetContext(ctx, &o, `
		SELECT o.order_id, o.user_id, o.order_date, o.total_amount, o.status,
		       u.full_name AS customer_name
		FROM orders o
		JOIN users u ON o.user_id = u.user_id
		WHERE o.order_id = $1`, orderID)
	if err != nil {
		return models.Order{}, wrapErr(fmt.Sprintf("get order %d", orderID), err)
	}
	return o, nil
}

// OrderLines returns the composition of an order with prices at purchase.
func (s *Store) OrderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := s.db.SelectContext(ctx, &lines, `
		SELECT oi.dish_id, m.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN menu m ON oi.dish_id = m.dish_id
		WHERE oi.order_id = $1`, orderID)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("lines of order %d", orderID), err)
	}
	return lines, nil
}

// ActiveOrders returns every order still in an open status, newest first.
func (s *Store) ActiveOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, `
		SELECT o.order_id, o.user_id, o.order_date, o.total_amount, o.status,
		       u.full_name AS customer_name
		FROM orders o
		JOIN users u ON o.user_id = u.user_id
		WHERE o.status = ANY($1)
		ORDER BY o.order_date DESC`,
		statusArray(models.ActiveStatuses))
	if err != nil {
		return nil, wrapErr("active orders", err)
	}
	return orders, nil
}

// RecentOrders returns the latest orders across all users for the admin view.
func (s *Store) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, `
		SELECT o.order_id, o.user_id, o.order_date, o.total_amount, o.status,
		       u.full_name AS customer_name
		FROM orders o
		JOIN users u ON o.user_id = u.user_id
		ORDER BY o.order_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, wrapErr("recent orders", err)
	}
	return orders, nil
}

// UpdateOrderStatus sets the status of an order. It reports false, not an
// error, when the order id does not exist.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE order_id = $1`,
		orderID, status)
	if err != nil {
		return false, wrapErr(fmt.Sprintf("update status of order %d", orderID), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// LastOrderedDishes returns the names of the dishes the user ordered most
// recently, for the profile view.
func (s *Store) LastOrderedDishes(ctx context.Context, userID int64, limit int) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names, `
		SELECT m.name
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.order_id
		JOIN menu m ON oi.dish_id = m.dish_id
		WHERE o.user_id = $1
		ORDER BY o.order_date DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("last ordered dishes of %d", userID), err)
	}
	return names, nil
}

func statusArray(statuses []models.OrderStatus) interface{} {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return pq.Array(out)
}
