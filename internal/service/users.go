package service

import (
	"context"

	"github.com/foodfit/foodfitbot/internal/models"
)

type userStore interface {
	UpsertUser(ctx context.Context, userID int64, username, fullName string) error
	GetUser(ctx context.Context, userID int64) (models.User, error)
	SetDietPreferences(ctx context.Context, userID int64, prefs string) error
	CountUserOrders(ctx context.Context, userID int64) (int, error)
}

// Users registers Telegram users and serves their profiles.
type Users struct {
	store userStore
}

// NewUsers constructs the user service.
func NewUsers(store userStore) *Users {
	return &Users{store: store}
}

// Register records a user on first contact and refreshes their name.
func (u *Users) Register(ctx context.Context, userID int64, username, fullName string) error {
	return u.store.UpsertUser(ctx, userID, username, fullName)
}

// GetUserByTelegramID resolves a Telegram user id to the stored profile.
func (u *Users) GetUserByTelegramID(ctx context.Context, userID int64) (models.User, error) {
	return u.store.GetUser(ctx, userID)
}

// SetDiet updates the user's free-text diet preference.
func (u *Users) SetDiet(ctx context.Context, userID int64, prefs string) error {
	return u.store.SetDietPreferences(ctx, userID, prefs)
}

// OrderCount returns the lifetime number of orders the user placed.
func (u *Users) OrderCount(ctx context.Context, userID int64) (int, error) {
	return u.store.CountUserOrders(ctx, userID)
}
