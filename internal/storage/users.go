package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/foodfit/foodfitbot/internal/models"
)

// UpsertUser registers a user on first contact; repeat calls refresh the
// username and full name without touching preferences.
func (s *Store) UpsertUser(ctx context.Context, userID int64, username, fullName string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, username, full_name, registration_date)
		VALUES ($1, NULLIF($2, ''), $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET username = NULLIF($2, ''), full_name = $3`,
		userID, username, fullName)
	if err != nil {
		return wrapErr(fmt.Sprintf("upsert user %d", userID), err)
	}
	return nil
}

// GetUser returns the stored user row, or sql.ErrNoRows if unknown.
func (s *Store) GetUser(ctx context.Context, userID int64) (models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `
		SELECT user_id, username, full_name, diet_preferences, registration_date
		FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return models.User{}, wrapErr(fmt.Sprintf("get user %d", userID), err)
	}
	return u, nil
}

// SetDietPreferences updates the free-text diet preference for a user.
func (s *Store) SetDietPreferences(ctx context.Context, userID int64, prefs string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET diet_preferences = NULLIF($2, '') WHERE user_id = $1`,
		userID, prefs)
	if err != nil {
		return wrapErr(fmt.Sprintf("set diet preferences for %d", userID), err)
	}
	return nil
}

// CountUserOrders returns how many orders the user has ever placed.
func (s *Store) CountUserOrders(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, wrapErr(fmt.Sprintf("count orders for %d", userID), err)
	}
	return n, nil
}
