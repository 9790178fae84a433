package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foodfit/foodfitbot/core/logger"
	"github.com/foodfit/foodfitbot/internal/models"
)

// SearchPageSize caps search results to bound response size.
const SearchPageSize = 20

// Filter narrows a menu search to dishes carrying certain tags.
type Filter string

const (
	FilterVegan      Filter = "vegan"
	FilterGlutenFree Filter = "gluten_free"
	FilterSpicy      Filter = "spicy"
	FilterMeat       Filter = "meat"
	// FilterReset clears all active filters.
	FilterReset Filter = "reset"
)

// filterTags maps each filter to the tag substrings the menu actually
// stores, including the Russian spellings.
var filterTags = map[Filter][]string{
	FilterVegan:      {"веган"},
	FilterGlutenFree: {"без глютена"},
	FilterSpicy:      {"острое"},
	FilterMeat:       {"мясо"},
}

// ParseFilter converts a callback payload into a known Filter.
func ParseFilter(raw string) (Filter, bool) {
	f := Filter(strings.ToLower(strings.TrimSpace(raw)))
	if f == FilterReset {
		return f, true
	}
	_, ok := filterTags[f]
	return f, ok
}

// Rating vote scores.
const (
	ScoreGood = 5
	ScoreBad  = 1
)

type catalogStore interface {
	GetDish(ctx context.Context, dishID int64) (models.Dish, error)
	CountDishes(ctx context.Context) (int, error)
	ListDishes(ctx context.Context, limit, offset int) ([]models.Dish, error)
	SearchDishes(ctx context.Context, query string, tagPatterns []string, limit int) ([]models.Dish, error)
	InsertDish(ctx context.Context, d models.NewDish) (int64, error)
	UpdateDishField(ctx context.Context, dishID int64, field string, value interface{}) (bool, error)
	DeleteDish(ctx context.Context, dishID int64) (bool, error)
	ApplyDishVote(ctx context.Context, dishID int64, score int) (bool, error)
}

// Catalog serves menu reads, admin CRUD, and dish ratings.
type Catalog struct {
	store catalogStore
}

// NewCatalog constructs the catalog service.
func NewCatalog(store catalogStore) *Catalog {
	return &Catalog{store: store}
}

// Dish is a point lookup by id.
func (c *Catalog) Dish(ctx context.Context, dishID int64) (models.Dish, error) {
	d, err := c.store.GetDish(ctx, dishID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Dish{}, ErrDishNotFound
	}
	return d, err
}

// Search finds dishes whose name contains query (case-insensitive),
// restricted to the given filters. FilterReset drops every filter.
// An empty query matches all dishes. Results are capped at SearchPageSize.
func (c *Catalog) Search(ctx context.Context, query string, filters []Filter) ([]models.Dish, error) {
	var patterns []string
	for _, f := range filters {
		if f == FilterReset {
			patterns = nil
			break
		}
		patterns = append(patterns, filterTags[f]...)
	}
	return c.store.SearchDishes(ctx, strings.TrimSpace(query), patterns, SearchPageSize)
}

// Page returns one 1-based page of the menu and the total page count.
// Out-of-range pages yield an empty slice.
func (c *Catalog) Page(ctx context.Context, page, size int) ([]models.Dish, int, error) {
	if size < 1 {
		return nil, 0, fmt.Errorf("invalid page size %d", size)
	}
	total, err := c.store.CountDishes(ctx)
	if err != nil {
		return nil, 0, err
	}
	totalPages := (total + size - 1) / size
	if page < 1 || page > totalPages {
		return nil, totalPages, nil
	}
	dishes, err := c.store.ListDishes(ctx, size, (page-1)*size)
	if err != nil {
		return nil, 0, err
	}
	return dishes, totalPages, nil
}

// CreateDish validates and persists a dish collected by the add-dish flow.
func (c *Catalog) CreateDish(ctx context.Context, d models.NewDish) (int64, error) {
	if strings.TrimSpace(d.Name) == "" {
		return 0, NewValidationError("name", "must not be empty")
	}
	if d.Price <= 0 {
		return 0, NewValidationError("price", "must be positive")
	}
	if d.Calories < 0 {
		return 0, NewValidationError("calories", "must not be negative")
	}
	id, err := c.store.InsertDish(ctx, d)
	if err != nil {
		return 0, err
	}
	logger.Info(ctx, "service.catalog", "dish.created",
		slog.Int64("dish_id", id),
		slog.String("name", logger.SanitizeLimit(d.Name, 64)),
	)
	return id, nil
}

// UpdateDishField sets one editable dish column.
func (c *Catalog) UpdateDishField(ctx context.Context, dishID int64, field string, value interface{}) error {
	ok, err := c.store.UpdateDishField(ctx, dishID, field, value)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDishNotFound
	}
	logger.Info(ctx, "service.catalog", "dish.updated",
		slog.Int64("dish_id", dishID),
		slog.String("field", field),
	)
	return nil
}

// DeleteDish removes a dish from the menu.
func (c *Catalog) DeleteDish(ctx context.Context, dishID int64) error {
	ok, err := c.store.DeleteDish(ctx, dishID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDishNotFound
	}
	logger.Info(ctx, "service.catalog", "dish.deleted",
		slog.Int64("dish_id", dishID),
	)
	return nil
}

// RateDish folds a good/bad vote into the dish's running average
// rating' = (rating*votes + score)/(votes+1). The fold happens in the
// store as one statement, so concurrent votes all count.
func (c *Catalog) RateDish(ctx context.Context, dishID int64, score int) error {
	if score != ScoreGood && score != ScoreBad {
		return NewValidationError("score", "must be a good or bad vote")
	}
	ok, err := c.store.ApplyDishVote(ctx, dishID, score)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDishNotFound
	}
	logger.Info(ctx, "service.catalog", "dish.rated",
		slog.Int64("dish_id", dishID),
		slog.Int("score", score),
	)
	return nil
}
