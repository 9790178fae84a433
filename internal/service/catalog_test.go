package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodfit/foodfitbot/internal/models"
)

type fakeCatalogStore struct {
	mu     sync.Mutex
	dishes map[int64]models.Dish
	count  int

	lastQuery    string
	lastPatterns []string
	lastLimit    int
	lastOffset   int

	insertedDish models.NewDish
	updatedField string
	updatedValue interface{}
	deletedID    int64
	ratedID      int64
}

func (f *fakeCatalogStore) GetDish(_ context.Context, dishID int64) (models.Dish, error) {
	d, ok := f.dishes[dishID]
	if !ok {
		return models.Dish{}, sql.ErrNoRows
	}
	return d, nil
}

func (f *fakeCatalogStore) CountDishes(context.Context) (int, error) {
	return f.count, nil
}

func (f *fakeCatalogStore) ListDishes(_ context.Context, limit, offset int) ([]models.Dish, error) {
	f.lastLimit, f.lastOffset = limit, offset
	return []models.Dish{{ID: 1, Name: "Борщ"}}, nil
}

func (f *fakeCatalogStore) SearchDishes(_ context.Context, query string, patterns []string, limit int) ([]models.Dish, error) {
	f.lastQuery, f.lastPatterns, f.lastLimit = query, patterns, limit
	return nil, nil
}

func (f *fakeCatalogStore) InsertDish(_ context.Context, d models.NewDish) (int64, error) {
	f.insertedDish = d
	return 42, nil
}

func (f *fakeCatalogStore) UpdateDishField(_ context.Context, dishID int64, field string, value interface{}) (bool, error) {
	f.updatedField, f.updatedValue = field, value
	_, ok := f.dishes[dishID]
	return ok, nil
}

func (f *fakeCatalogStore) DeleteDish(_ context.Context, dishID int64) (bool, error) {
	f.deletedID = dishID
	_, ok := f.dishes[dishID]
	return ok, nil
}

// ApplyDishVote mirrors the store's single-statement fold: atomic with
// respect to other votes.
func (f *fakeCatalogStore) ApplyDishVote(_ context.Context, dishID int64, score int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.dishes[dishID]
	if !ok {
		return false, nil
	}
	d.Rating = (d.Rating*float64(d.Votes) + float64(score)) / float64(d.Votes+1)
	d.Votes++
	f.dishes[dishID] = d
	f.ratedID = dishID
	return true, nil
}

func TestParseFilter(t *testing.T) {
	f, ok := ParseFilter("  VEGAN ")
	assert.True(t, ok)
	assert.Equal(t, FilterVegan, f)

	f, ok = ParseFilter("reset")
	assert.True(t, ok)
	assert.Equal(t, FilterReset, f)

	_, ok = ParseFilter("sweet")
	assert.False(t, ok)
}

func TestCatalogPage(t *testing.T) {
	store := &fakeCatalogStore{count: 7}
	catalog := NewCatalog(store)
	ctx := context.Background()

	dishes, totalPages, err := catalog.Page(ctx, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, totalPages)
	assert.Len(t, dishes, 1)
	assert.Equal(t, 5, store.lastLimit)
	assert.Equal(t, 5, store.lastOffset)

	dishes, totalPages, err = catalog.Page(ctx, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, totalPages)
	assert.Empty(t, dishes)

	_, _, err = catalog.Page(ctx, 1, 0)
	assert.Error(t, err)
}

func TestCatalogSearchFilters(t *testing.T) {
	store := &fakeCatalogStore{}
	catalog := NewCatalog(store)
	ctx := context.Background()

	_, err := catalog.Search(ctx, " паста ", []Filter{FilterVegan, FilterSpicy})
	require.NoError(t, err)
	assert.Equal(t, "паста", store.lastQuery)
	assert.Equal(t, []string{"веган", "острое"}, store.lastPatterns)
	assert.Equal(t, SearchPageSize, store.lastLimit)

	_, err = catalog.Search(ctx, "", []Filter{FilterVegan, FilterReset})
	require.NoError(t, err)
	assert.Nil(t, store.lastPatterns)
}

func TestCatalogDishNotFound(t *testing.T) {
	catalog := NewCatalog(&fakeCatalogStore{dishes: map[int64]models.Dish{}})
	_, err := catalog.Dish(context.Background(), 99)
	assert.ErrorIs(t, err, ErrDishNotFound)
}

func TestCreateDishValidation(t *testing.T) {
	store := &fakeCatalogStore{}
	catalog := NewCatalog(store)
	ctx := context.Background()

	_, err := catalog.CreateDish(ctx, models.NewDish{Name: " ", Price: 100})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = catalog.CreateDish(ctx, models.NewDish{Name: "Суп", Price: 0})
	assert.Error(t, err)

	id, err := catalog.CreateDish(ctx, models.NewDish{Name: "Суп", Price: 150, Calories: 200})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "Суп", store.insertedDish.Name)
}

func TestRateDish(t *testing.T) {
	store := &fakeCatalogStore{dishes: map[int64]models.Dish{
		7: {ID: 7},
	}}
	catalog := NewCatalog(store)
	ctx := context.Background()

	err := catalog.RateDish(ctx, 7, 3)
	assert.Error(t, err)
	assert.Zero(t, store.ratedID)

	require.NoError(t, catalog.RateDish(ctx, 7, ScoreGood))
	assert.InDelta(t, 5.0, store.dishes[7].Rating, 1e-9)
	assert.Equal(t, 1, store.dishes[7].Votes)

	require.NoError(t, catalog.RateDish(ctx, 7, ScoreBad))
	assert.InDelta(t, 3.0, store.dishes[7].Rating, 1e-9)
	assert.Equal(t, 2, store.dishes[7].Votes)

	err = catalog.RateDish(ctx, 99, ScoreGood)
	assert.ErrorIs(t, err, ErrDishNotFound)
}

// Concurrent votes on the same dish must all count: the fold is a single
// store operation, never a read-modify-write in the service.
func TestRateDishConcurrent(t *testing.T) {
	store := &fakeCatalogStore{dishes: map[int64]models.Dish{
		7: {ID: 7},
	}}
	catalog := NewCatalog(store)

	const voters = 50
	var wg sync.WaitGroup
	wg.Add(voters)
	for i := 0; i < voters; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, catalog.RateDish(context.Background(), 7, ScoreGood))
		}()
	}
	wg.Wait()

	assert.Equal(t, voters, store.dishes[7].Votes)
	assert.InDelta(t, 5.0, store.dishes[7].Rating, 1e-9)
}

func TestUpdateDishFieldMissing(t *testing.T) {
	catalog := NewCatalog(&fakeCatalogStore{dishes: map[int64]models.Dish{}})
	err := catalog.UpdateDishField(context.Background(), 5, "price", 200)
	assert.ErrorIs(t, err, ErrDishNotFound)
}
