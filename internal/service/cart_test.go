package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodfit/foodfitbot/internal/models"
	"github.com/foodfit/foodfitbot/internal/storage"
)

type fakeCartStore struct {
	lines map[int64]models.CartLine // keyed by dish id

	tx      *fakeTx
	lineErr error // injected InsertOrderLine failure
}

type fakeTx struct {
	store       *fakeCartStore
	orderUserID int64
	orderTotal  int
	orderStatus string
	lines       []models.OrderLine
	cleared     bool
	lineErr     error
}

func (t *fakeTx) CartContents(ctx context.Context, userID int64) ([]models.CartLine, error) {
	return t.store.CartContents(ctx, userID)
}

func (t *fakeTx) InsertOrder(_ context.Context, userID int64, total int, status string) (int64, error) {
	t.orderUserID, t.orderTotal, t.orderStatus = userID, total, status
	return 77, nil
}

func (t *fakeTx) InsertOrderLine(_ context.Context, orderID, dishID int64, quantity, price int) error {
	if t.lineErr != nil {
		return t.lineErr
	}
	t.lines = append(t.lines, models.OrderLine{Quantity: quantity, Price: price})
	return nil
}

func (t *fakeTx) ClearCart(context.Context, int64) error {
	t.cleared = true
	return nil
}

func (f *fakeCartStore) AddToCart(_ context.Context, _, dishID int64) error {
	l := f.lines[dishID]
	l.DishID = dishID
	l.Quantity++
	f.lines[dishID] = l
	return nil
}

func (f *fakeCartStore) CartContents(context.Context, int64) ([]models.CartLine, error) {
	out := make([]models.CartLine, 0, len(f.lines))
	for _, l := range f.lines {
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeCartStore) CartQuantity(_ context.Context, _, dishID int64) (int, bool, error) {
	l, ok := f.lines[dishID]
	return l.Quantity, ok, nil
}

func (f *fakeCartStore) SetCartQuantity(_ context.Context, _, dishID int64, quantity int) error {
	l := f.lines[dishID]
	l.Quantity = quantity
	f.lines[dishID] = l
	return nil
}

func (f *fakeCartStore) RemoveFromCart(_ context.Context, _, dishID int64) error {
	delete(f.lines, dishID)
	return nil
}

func (f *fakeCartStore) ClearCart(context.Context, int64) error {
	f.lines = map[int64]models.CartLine{}
	return nil
}

// WithinTx applies the clear only on success: an error from fn rolls
// everything back and the cart survives untouched.
func (f *fakeCartStore) WithinTx(_ context.Context, fn func(tx storage.Tx) error) error {
	f.tx = &fakeTx{store: f, lineErr: f.lineErr}
	if err := fn(f.tx); err != nil {
		return err
	}
	if f.tx.cleared {
		f.lines = map[int64]models.CartLine{}
	}
	return nil
}

func newFakeCartStore(lines ...models.CartLine) *fakeCartStore {
	f := &fakeCartStore{lines: map[int64]models.CartLine{}}
	for _, l := range lines {
		f.lines[l.DishID] = l
	}
	return f
}

func TestTotals(t *testing.T) {
	amount, calories := Totals([]models.CartLine{
		{Price: 100, Quantity: 2, Calories: 300},
		{Price: 50, Quantity: 1, Calories: 120},
	})
	assert.Equal(t, 250, amount)
	assert.Equal(t, 720, calories)
}

func TestCheckout(t *testing.T) {
	store := newFakeCartStore(
		models.CartLine{DishID: 1, Name: "Борщ", Price: 100, Quantity: 2},
		models.CartLine{DishID: 2, Name: "Чай", Price: 50, Quantity: 1},
	)
	cart := NewCart(store)

	orderID, lines, err := cart.Checkout(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(77), orderID)
	assert.Len(t, lines, 2)

	require.NotNil(t, store.tx)
	assert.Equal(t, int64(10), store.tx.orderUserID)
	assert.Equal(t, 250, store.tx.orderTotal)
	assert.Equal(t, string(models.StatusAccepted), store.tx.orderStatus)
	assert.Len(t, store.tx.lines, 2)
	assert.True(t, store.tx.cleared)
	assert.Empty(t, store.lines, "cart must be empty after checkout")
}

func TestCheckoutEmptyCart(t *testing.T) {
	cart := NewCart(newFakeCartStore())
	_, _, err := cart.Checkout(context.Background(), 10)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

// A failure while copying lines must roll the whole checkout back: the
// error propagates and the cart keeps every line.
func TestCheckoutRollsBackOnFailure(t *testing.T) {
	store := newFakeCartStore(
		models.CartLine{DishID: 1, Name: "Борщ", Price: 100, Quantity: 2},
		models.CartLine{DishID: 2, Name: "Чай", Price: 50, Quantity: 1},
	)
	store.lineErr = errors.New("order_items insert failed")
	cart := NewCart(store)

	orderID, _, err := cart.Checkout(context.Background(), 10)
	require.ErrorIs(t, err, store.lineErr)
	assert.Zero(t, orderID)
	assert.Len(t, store.lines, 2, "cart must survive a failed checkout")
	assert.Equal(t, 2, store.lines[1].Quantity)
}

func TestSetQuantityFloor(t *testing.T) {
	store := newFakeCartStore(models.CartLine{DishID: 1, Quantity: 1})
	cart := NewCart(store)
	ctx := context.Background()

	// Below 1 is a no-op, not a removal.
	qty, ok, err := cart.SetQuantity(ctx, 10, 1, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, qty)
	assert.Equal(t, 1, store.lines[1].Quantity)

	qty, ok, err = cart.SetQuantity(ctx, 10, 1, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, qty)
}

func TestChangeQuantity(t *testing.T) {
	store := newFakeCartStore(models.CartLine{DishID: 1, Quantity: 2})
	cart := NewCart(store)
	ctx := context.Background()

	qty, ok, err := cart.ChangeQuantity(ctx, 10, 1, -1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, qty)

	// Dropping below one keeps the line at its current quantity.
	qty, ok, err = cart.ChangeQuantity(ctx, 10, 1, -1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, qty)

	_, ok, err = cart.ChangeQuantity(ctx, 10, 99, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddIncrementsLine(t *testing.T) {
	store := newFakeCartStore()
	cart := NewCart(store)
	ctx := context.Background()

	require.NoError(t, cart.Add(ctx, 10, 1))
	require.NoError(t, cart.Add(ctx, 10, 1))
	assert.Equal(t, 2, store.lines[1].Quantity)
	assert.Len(t, store.lines, 1)
}
