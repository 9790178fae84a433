package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/foodfit/foodfitbot/internal/models"
)

// AddToCart inserts a cart line with quantity 1, or bumps the quantity by
// one when the (user, dish) line already exists.
func (s *Store) AddToCart(ctx context.Context, userID, dishID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart (user_id, dish_id, quantity)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, dish_id) DO UPDATE
		SET quantity = cart.quantity + 1`,
		userID, dishID)
	if err != nil {
		return wrapErr(fmt.Sprintf("add dish %d to cart of %d", dishID, userID), err)
	}
	return nil
}

const cartContentsQuery = `
	SELECT c.dish_id, m.name, m.price, c.quantity, m.calories
	FROM cart c
	JOIN menu m ON c.dish_id = m.dish_id
	WHERE c.user_id = $1
	ORDER BY m.name`

// CartContents returns the user's cart joined with live menu prices,
// ordered by dish name.
func (s *Store) CartContents(ctx context.Context, userID int64) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := s.db.SelectContext(ctx, &lines, cartContentsQuery, userID); err != nil {
		return nil, wrapErr(fmt.Sprintf("cart contents of %d", userID), err)
	}
	return lines, nil
}

// CartQuantity returns the quantity of a dish in the user's cart, with
// found=false when the line does not exist.
func (s *Store) CartQuantity(ctx context.Context, userID, dishID int64) (int, bool, error) {
	var qty int
	err := s.db.GetContext(ctx, &qty,
		`SELECT quantity FROM cart WHERE user_id = $1 AND dish_id = $2`,
		userID, dishID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrapErr(fmt.Sprintf("cart quantity of %d/%d", userID, dishID), err)
	}
	return qty, true, nil
}

// SetCartQuantity overwrites the quantity of an existing cart line.
func (s *Store) SetCartQuantity(ctx context.Context, userID, dishID int64, quantity int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE cart SET quantity = $3 WHERE user_id = $1 AND dish_id = $2`,
		userID, dishID, quantity)
	if err != nil {
		return wrapErr(fmt.Sprintf("set cart quantity of %d/%d", userID, dishID), err)
	}
	return nil
}

// RemoveFromCart deletes a single cart line.
func (s *Store) RemoveFromCart(ctx context.Context, userID, dishID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cart WHERE user_id = $1 AND dish_id = $2`,
		userID, dishID)
	if err != nil {
		return wrapErr(fmt.Sprintf("remove dish %d from cart of %d", dishID, userID), err)
	}
	return nil
}

// ClearCart deletes every cart line of the user.
func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cart WHERE user_id = $1`, userID)
	if err != nil {
		return wrapErr(fmt.Sprintf("clear cart of %d", userID), err)
	}
	return nil
}

// CartContents within a checkout transaction, so the prices snapshotted
// into the order are the ones read under the same transaction.
func (t sqlTx) CartContents(ctx context.Context, userID int64) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := t.tx.SelectContext(ctx, &lines, cartContentsQuery, userID); err != nil {
		return nil, wrapErr(fmt.Sprintf("cart contents of %d", userID), err)
	}
	return lines, nil
}

// ClearCart within a checkout transaction.
func (t sqlTx) ClearCart(ctx context.Context, userID int64) error {
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM cart WHERE user_id = $1`, userID)
	if err != nil {
		return wrapErr(fmt.Sprintf("clear cart of %d", userID), err)
	}
	return nil
}
