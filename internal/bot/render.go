package bot

import (
	"fmt"
	"strings"

	"github.com/foodfit/foodfitbot/core/telegram/format"
	"github.com/foodfit/foodfitbot/internal/models"
	"github.com/foodfit/foodfitbot/internal/service"
)

// Renderers build Telegram HTML out of domain values. They are pure so
// the views can be asserted in tests without a transport.

func renderDishCard(d models.Dish) string {
	var b strings.Builder
	b.WriteString(format.Bold(d.Name))
	b.WriteString("\n\n")
	if d.Description.Valid && d.Description.String != "" {
		b.WriteString(format.EscapeHTML(d.Description.String))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "💰 Цена: %d ₽\n", d.Price)
	fmt.Fprintf(&b, "🔥 Калории: %d ккал\n", d.Calories)
	if d.Tags.Valid && d.Tags.String != "" {
		fmt.Fprintf(&b, "🏷 Теги: %s\n", format.EscapeHTML(d.Tags.String))
	}
	if d.Votes > 0 {
		fmt.Fprintf(&b, "⭐️ Рейтинг: %.1f (%d)", d.Rating, d.Votes)
	} else {
		b.WriteString("⭐️ Рейтинг: нет оценок")
	}
	return b.String()
}

func renderMenuHeader(page, totalPages int) string {
	if totalPages == 0 {
		return "Меню пока пустое."
	}
	return fmt.Sprintf("%s (стр. %d из %d)", format.Bold("🍽 Меню"), page, totalPages)
}

func renderCart(lines []models.CartLine) string {
	if len(lines) == 0 {
		return "🛒 Корзина пуста."
	}
	var b strings.Builder
	b.WriteString(format.Bold("🛒 Ваша корзина"))
	b.WriteString("\n\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "• %s — %d × %d ₽ = %d ₽\n",
			format.EscapeHTML(l.Name), l.Quantity, l.Price, l.Total())
	}
	amount, calories := service.Totals(lines)
	fmt.Fprintf(&b, "\nИтого: %s\n", format.Bold(fmt.Sprintf("%d ₽", amount)))
	fmt.Fprintf(&b, "Калорийность: %d ккал", calories)
	return b.String()
}

func renderCheckout(orderID int64, lines []models.CartLine) string {
	amount, _ := service.Totals(lines)
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Заказ %s оформлен!\n\n", format.Bold(fmt.Sprintf("#%d", orderID)))
	for _, l := range lines {
		fmt.Fprintf(&b, "• %s ×%d — %d ₽\n", format.EscapeHTML(l.Name), l.Quantity, l.Total())
	}
	fmt.Fprintf(&b, "\nСумма: %s", format.Bold(fmt.Sprintf("%d ₽", amount)))
	return b.String()
}

func renderOrderList(title string, orders []models.Order, withCustomer bool) string {
	if len(orders) == 0 {
		return "Заказов нет."
	}
	var b strings.Builder
	b.WriteString(format.Bold(title))
	b.WriteString("\n\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "• Заказ #%d от %s — %d ₽, %s",
			o.ID, o.OrderDate.Format("02.01 15:04"), o.TotalAmount,
			format.EscapeHTML(o.Status.Label()))
		if withCustomer && o.CustomerName != "" {
			fmt.Fprintf(&b, " (%s)", format.EscapeHTML(o.CustomerName))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderOrderDetails(d models.OrderDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", format.Bold(fmt.Sprintf("Заказ #%d", d.Order.ID)))
	if d.Order.CustomerName != "" {
		fmt.Fprintf(&b, "Клиент: %s\n", format.EscapeHTML(d.Order.CustomerName))
	}
	fmt.Fprintf(&b, "Статус: %s\n", format.EscapeHTML(d.Order.Status.Label()))
	fmt.Fprintf(&b, "Дата: %s\n\n", d.Order.OrderDate.Format("02.01.2006 15:04"))
	for _, l := range d.Lines {
		fmt.Fprintf(&b, "• %s ×%d — %d ₽\n", format.EscapeHTML(l.Name), l.Quantity, l.Total())
	}
	fmt.Fprintf(&b, "\nИтого: %s", format.Bold(fmt.Sprintf("%d ₽", d.Order.TotalAmount)))
	return b.String()
}

func renderProfile(u models.User, orderCount int, lastDishes []string) string {
	var b strings.Builder
	b.WriteString(format.Bold("👤 Профиль"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Имя: %s\n", format.EscapeHTML(u.FullName))
	if u.Username.Valid && u.Username.String != "" {
		fmt.Fprintf(&b, "Username: @%s\n", format.EscapeHTML(u.Username.String))
	}
	diet := "не указаны"
	if u.DietPreferences.Valid && u.DietPreferences.String != "" {
		diet = u.DietPreferences.String
	}
	fmt.Fprintf(&b, "Предпочтения: %s\n", format.EscapeHTML(diet))
	fmt.Fprintf(&b, "Заказов: %d\n", orderCount)
	fmt.Fprintf(&b, "С нами с: %s", u.RegistrationDate.Format("02.01.2006"))
	if len(lastDishes) > 0 {
		b.WriteString("\n\nПоследние блюда:\n")
		for _, name := range lastDishes {
			fmt.Fprintf(&b, "• %s\n", format.EscapeHTML(name))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSearchResults(dishes []models.Dish) string {
	if len(dishes) == 0 {
		return "Ничего не найдено. Попробуйте изменить запрос или фильтры."
	}
	var b strings.Builder
	b.WriteString(format.Bold("🔍 Найдено"))
	b.WriteString("\n\n")
	for _, d := range dishes {
		fmt.Fprintf(&b, "• %s — %d ₽, %d ккал\n",
			format.EscapeHTML(d.Name), d.Price, d.Calories)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDelivery(d models.Delivery) string {
	var b strings.Builder
	b.WriteString(format.Bold("🚚 Доставка оформлена"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Адрес: %s\n", format.EscapeHTML(d.Address))
	fmt.Fprintf(&b, "Время: %s\n", format.EscapeHTML(d.Time))
	fmt.Fprintf(&b, "Контакт: %s", format.EscapeHTML(d.Contact))
	return b.String()
}

func renderFilters(active []service.Filter) string {
	if len(active) == 0 {
		return "⚙️ Фильтры не заданы. Выберите, что показывать в поиске:"
	}
	labels := make([]string, 0, len(active))
	for _, f := range active {
		for _, fb := range filterButtons {
			if fb.Filter == f {
				labels = append(labels, fb.Label)
			}
		}
	}
	return "⚙️ Активные фильтры: " + format.EscapeHTML(strings.Join(labels, ", "))
}
