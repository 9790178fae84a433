package bot

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/foodfit/foodfitbot/internal/models"
	"github.com/foodfit/foodfitbot/internal/service"
)

func TestRenderCart(t *testing.T) {
	assert.Equal(t, "🛒 Корзина пуста.", renderCart(nil))

	got := renderCart([]models.CartLine{
		{Name: "Борщ", Price: 100, Quantity: 2, Calories: 300},
		{Name: "Чай <зелёный>", Price: 50, Quantity: 1, Calories: 0},
	})
	assert.Contains(t, got, "Борщ — 2 × 100 ₽ = 200 ₽")
	assert.Contains(t, got, "<b>250 ₽</b>")
	assert.Contains(t, got, "600 ккал")
	assert.Contains(t, got, "Чай &lt;зелёный&gt;", "user text must be HTML-escaped")
}

func TestRenderDishCard(t *testing.T) {
	got := renderDishCard(models.Dish{
		Name:        "Том Ям",
		Description: sql.NullString{String: "Острый суп.", Valid: true},
		Price:       390,
		Calories:    290,
		Tags:        sql.NullString{String: "острое", Valid: true},
	})
	assert.Contains(t, got, "<b>Том Ям</b>")
	assert.Contains(t, got, "Острый суп.")
	assert.Contains(t, got, "390 ₽")
	assert.Contains(t, got, "нет оценок")

	rated := renderDishCard(models.Dish{Name: "Борщ", Price: 250, Rating: 4.5, Votes: 12})
	assert.Contains(t, rated, "4.5 (12)")
}

func TestRenderOrderList(t *testing.T) {
	assert.Equal(t, "Заказов нет.", renderOrderList("t", nil, false))

	orders := []models.Order{{
		ID:           3,
		OrderDate:    time.Date(2026, 8, 30, 12, 45, 0, 0, time.UTC),
		TotalAmount:  480,
		Status:       models.StatusPreparing,
		CustomerName: "Анна",
	}}
	got := renderOrderList("📦 Ваши заказы", orders, false)
	assert.Contains(t, got, "Заказ #3 от 30.08 12:45 — 480 ₽, готовится")
	assert.NotContains(t, got, "Анна")

	withCustomer := renderOrderList("📊 Последние заказы", orders, true)
	assert.Contains(t, withCustomer, "(Анна)")
}

func TestRenderOrderDetails(t *testing.T) {
	got := renderOrderDetails(models.OrderDetails{
		Order: models.Order{
			ID: 7, TotalAmount: 300, Status: models.StatusAccepted,
			OrderDate:    time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
			CustomerName: "Иван",
		},
		Lines: []models.OrderLine{{Name: "Борщ", Quantity: 2, Price: 150}},
	})
	assert.Contains(t, got, "<b>Заказ #7</b>")
	assert.Contains(t, got, "Клиент: Иван")
	assert.Contains(t, got, "Борщ ×2 — 300 ₽")
	assert.Contains(t, got, "<b>300 ₽</b>")
}

func TestRenderProfile(t *testing.T) {
	user := models.User{
		FullName:         "Анна Иванова",
		Username:         sql.NullString{String: "anna", Valid: true},
		RegistrationDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	got := renderProfile(user, 4, []string{"Борщ", "Том Ям"})
	assert.Contains(t, got, "Анна Иванова")
	assert.Contains(t, got, "@anna")
	assert.Contains(t, got, "Предпочтения: не указаны")
	assert.Contains(t, got, "Заказов: 4")
	assert.Contains(t, got, "15.01.2026")
	assert.Contains(t, got, "• Том Ям")
}

func TestRenderSearchResults(t *testing.T) {
	assert.Contains(t, renderSearchResults(nil), "Ничего не найдено")

	got := renderSearchResults([]models.Dish{{Name: "Борщ", Price: 250, Calories: 320}})
	assert.Contains(t, got, "Борщ — 250 ₽, 320 ккал")
}

func TestRenderDelivery(t *testing.T) {
	got := renderDelivery(models.Delivery{
		Address: "Тверская, 1",
		Time:    "18:30",
		Contact: "+79990001122",
	})
	assert.Contains(t, got, "Тверская, 1")
	assert.Contains(t, got, "18:30")
	assert.Contains(t, got, "+79990001122")
}

func TestRenderFilters(t *testing.T) {
	assert.Contains(t, renderFilters(nil), "не заданы")
	got := renderFilters([]service.Filter{service.FilterVegan, service.FilterSpicy})
	assert.Contains(t, got, "Веган")
	assert.Contains(t, got, "Острое")
}
