package app

import (
	"context"
	"fmt"

	"github.com/foodfit/foodfitbot/core/bootstrap"
	"github.com/foodfit/foodfitbot/core/logger"
	"github.com/foodfit/foodfitbot/internal/models"
	"github.com/foodfit/foodfitbot/internal/storage"

	"log/slog"
)

// defaultMenu is inserted on first start so the bot is usable before an
// administrator adds real dishes.
var defaultMenu = []models.NewDish{
	{Name: "Борщ", Description: "Наваристый борщ на говядине со сметаной.", Price: 250, Calories: 320, Tags: "мясо"},
	{Name: "Овощное рагу", Description: "Тушёные сезонные овощи с травами.", Price: 210, Calories: 180, Tags: "веган, без глютена"},
	{Name: "Том Ям", Description: "Острый тайский суп с креветками и кокосовым молоком.", Price: 390, Calories: 290, Tags: "острое"},
	{Name: "Гречка с грибами", Description: "Гречневая каша с жареными шампиньонами и луком.", Price: 190, Calories: 260, Tags: "веган, без глютена"},
	{Name: "Куриная котлета", Description: "Котлета из куриного филе с картофельным пюре.", Price: 280, Calories: 430, Tags: "мясо"},
}

// menuSeeder populates the menu once, only when it is empty.
func menuSeeder() bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, st bootstrap.Storage) error {
		store, ok := st.(*storage.Store)
		if !ok {
			return fmt.Errorf("seed: unexpected storage type %T", st)
		}
		count, err := store.CountDishes(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, d := range defaultMenu {
			if _, err := store.InsertDish(ctx, d); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "menu.seeded",
			slog.Int("dishes", len(defaultMenu)),
		)
		return nil
	})
}
