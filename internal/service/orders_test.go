package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodfit/foodfitbot/internal/models"
)

type fakeOrderStore struct {
	orders map[int64]models.Order
	lines  map[int64][]models.OrderLine

	updatedID     int64
	updatedStatus string
}

func (f *fakeOrderStore) UserOrders(context.Context, int64, int) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) GetOrder(_ context.Context, orderID int64) (models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return models.Order{}, sql.ErrNoRows
	}
	return o, nil
}

func (f *fakeOrderStore) OrderLines(_ context.Context, orderID int64) ([]models.OrderLine, error) {
	return f.lines[orderID], nil
}

func (f *fakeOrderStore) ActiveOrders(context.Context) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) RecentOrders(context.Context, int) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) UpdateOrderStatus(_ context.Context, orderID int64, status string) (bool, error) {
	if _, ok := f.orders[orderID]; !ok {
		return false, nil
	}
	f.updatedID, f.updatedStatus = orderID, status
	return true, nil
}

func (f *fakeOrderStore) LastOrderedDishes(context.Context, int64, int) ([]string, error) {
	return nil, nil
}

func TestOrderDetails(t *testing.T) {
	store := &fakeOrderStore{
		orders: map[int64]models.Order{
			5: {ID: 5, TotalAmount: 300, Status: models.StatusAccepted, CustomerName: "Анна"},
		},
		lines: map[int64][]models.OrderLine{
			5: {{Name: "Борщ", Quantity: 2, Price: 150}},
		},
	}
	orders := NewOrders(store)

	details, err := orders.Details(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), details.Order.ID)
	assert.Len(t, details.Lines, 1)

	_, err = orders.Details(context.Background(), 6)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatus(t *testing.T) {
	store := &fakeOrderStore{orders: map[int64]models.Order{
		5: {ID: 5, Status: models.StatusAccepted},
	}}
	orders := NewOrders(store)
	ctx := context.Background()

	ok, err := orders.UpdateStatus(ctx, 5, models.StatusCompleted)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "completed", store.updatedStatus)

	// Any transition is allowed, including backwards.
	ok, err = orders.UpdateStatus(ctx, 5, models.StatusAccepted)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = orders.UpdateStatus(ctx, 99, models.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "принят", models.StatusAccepted.Label())
	assert.Equal(t, "готовится", models.StatusPreparing.Label())
	assert.Equal(t, "в доставке", models.StatusInDelivery.Label())
	assert.Equal(t, "завершен", models.StatusCompleted.Label())
	assert.Equal(t, "unknown", models.OrderStatus("unknown").Label())
}
