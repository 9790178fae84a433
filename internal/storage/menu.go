package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodfit/foodfitbot/internal/models"
)

const dishColumns = `dish_id, name, description, calories, price, photo, tags, rating, votes`

// GetDish returns a dish by id, or sql.ErrNoRows if it does not exist.
func (s *Store) GetDish(ctx context.Context, dishID int64) (models.Dish, error) {
	var d models.Dish
	err := s.db.GetContext(ctx, &d,
		`SELECT `+dishColumns+` FROM menu WHERE dish_id = $1`, dishID)
	if err != nil {
		return models.Dish{}, wrapErr(fmt.Sprintf("get dish %d", dishID), err)
	}
	return d, nil
}

// CountDishes returns the total number of menu rows.
func (s *Store) CountDishes(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM menu`); err != nil {
		return 0, wrapErr("count dishes", err)
	}
	return n, nil
}

// ListDishes returns one page of the menu ordered by name.
func (s *Store) ListDishes(ctx context.Context, limit, offset int) ([]models.Dish, error) {
	var dishes []models.Dish
	err := s.db.SelectContext(ctx, &dishes,
		`SELECT `+dishColumns+` FROM menu ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, wrapErr("list dishes", err)
	}
	return dishes, nil
}

// SearchDishes performs a case-insensitive substring search on dish names,
// intersected with tag substring patterns. An empty query matches all rows.
func (s *Store) SearchDishes(ctx context.Context, query string, tagPatterns []string, limit int) ([]models.Dish, error) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(`SELECT ` + dishColumns + ` FROM menu WHERE name ILIKE $1`)
	args = append(args, "%"+query+"%")

	for _, pattern := range tagPatterns {
		args = append(args, "%"+pattern+"%")
		fmt.Fprintf(&sb, " AND tags ILIKE $%d", len(args))
	}

	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))

	var dishes []models.Dish
	if err := s.db.SelectContext(ctx, &dishes, sb.String(), args...); err != nil {
		return nil, wrapErr(fmt.Sprintf("search dishes %q", query), err)
	}
	return dishes, nil
}

// InsertDish adds a new menu row and returns its id.
func (s *Store) InsertDish(ctx context.Context, d models.NewDish) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `
		INSERT INTO menu (name, description, price, calories, tags, photo)
		VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		RETURNING dish_id`,
		d.Name, d.Description, d.Price, d.Calories, d.Tags, d.Photo)
	if err != nil {
		return 0, wrapErr(fmt.Sprintf("insert dish %q", d.Name), err)
	}
	return id, nil
}

// dishFields whitelists columns an administrator may edit by name.
var dishFields = map[string]struct{}{
	"name":        {},
	"description": {},
	"price":       {},
	"calories":    {},
	"tags":        {},
	"photo":       {},
}

// UpdateDishField sets a single whitelisted column on a dish. Returns
// false when the dish does not exist.
func (s *Store) UpdateDishField(ctx context.Context, dishID int64, field string, value interface{}) (bool, error) {
	if _, ok := dishFields[field]; !ok {
		return false, fmt.Errorf("update dish: unknown field %q", field)
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE menu SET %s = $2 WHERE dish_id = $1`, field),
		dishID, value)
	if err != nil {
		return false, wrapErr(fmt.Sprintf("update dish %d field %s", dishID, field), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteDish removes a menu row. Returns false when nothing was deleted.
func (s *Store) DeleteDish(ctx context.Context, dishID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM menu WHERE dish_id = $1`, dishID)
	if err != nil {
		return false, wrapErr(fmt.Sprintf("delete dish %d", dishID), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ApplyDishVote folds one vote into the dish's running average and vote
// count in a single statement, so concurrent votes never lose updates.
// Returns false when the dish does not exist.
func (s *Store) ApplyDishVote(ctx context.Context, dishID int64, score int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE menu
		SET rating = (rating * votes + $2) / (votes + 1),
		    votes  = votes + 1
		WHERE dish_id = $1`,
		dishID, score)
	if err != nil {
		return false, wrapErr(fmt.Sprintf("rate dish %d", dishID), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
