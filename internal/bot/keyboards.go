package bot

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/foodfit/foodfitbot/core/telegram/keyboard"
	"github.com/foodfit/foodfitbot/internal/models"
	"github.com/foodfit/foodfitbot/internal/service"
)

// Reply keyboard labels. They double as routing keys for text messages,
// so changing a label changes the route.
const (
	btnMenu    = "🍽 Меню"
	btnCart    = "🛒 Корзина"
	btnProfile = "👤 Профиль"
	btnFilters = "⚙️ Фильтры"

	btnAdminAddDish  = "📝 Добавить блюдо"
	btnAdminOrders   = "📊 Список заказов"
	btnAdminEditDish = "✏️ Редактировать блюдо"
	btnAdminDelete   = "❌ Удалить блюдо"
	btnAdminStaff    = "👥 Режим официанта"
	btnAdminExit     = "🔙 Выход"

	btnStaffSearch   = "🔍 Поиск блюда"
	btnStaffOpen     = "📊 Открытые заказы"
	btnStaffComplete = "✅ Завершить заказ"
	btnStaffRefresh  = "🔄 Обновить список"
	btnStaffExit     = "🔙 Главное меню"
)

// Callback unique keys.
const (
	cbAddToCart    = "cart"
	cbDishDetail   = "dish_detail"
	cbMenuPage     = "menu_page"
	cbFilter       = "filter"
	cbRateGood     = "rate_good"
	cbRateBad      = "rate_bad"
	cbIncrease     = "increase"
	cbDecrease     = "decrease"
	cbRemoveLine   = "remove"
	cbClearCart    = "clear_cart"
	cbCheckout     = "checkout"
	cbEditDish     = "editdish"
	cbEditField    = "editfield"
	cbDeleteDish   = "delete"
	cbConfirmDel   = "confirm_delete"
	cbCancelDel    = "cancel_delete"
	cbCompleteOrd  = "complete_order"
	cbToDelivery   = "to_delivery"
	cbOrderDetails = "order_details"
	cbSetDiet      = "set_diet"
)

func mainMenuKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnMenu, btnCart},
		[]string{btnProfile, btnFilters},
	)
}

func adminKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnAdminAddDish, btnAdminOrders},
		[]string{btnAdminEditDish, btnAdminDelete},
		[]string{btnAdminStaff, btnAdminExit},
	)
}

func staffKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnStaffSearch, btnStaffOpen},
		[]string{btnStaffComplete, btnStaffRefresh},
		[]string{btnStaffExit},
	)
}

// menuPageMarkup lists one page of dishes plus pagination arrows.
func menuPageMarkup(dishes []models.Dish, page, totalPages int) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	for _, d := range dishes {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   fmt.Sprintf("%s — %d ₽", d.Name, d.Price),
			Unique: cbDishDetail,
			Data:   strconv.FormatInt(d.ID, 10),
		}})
	}
	var nav []keyboard.InlineBtn
	if page > 1 {
		nav = append(nav, keyboard.InlineBtn{
			Text: "⬅️", Unique: cbMenuPage, Data: strconv.Itoa(page - 1),
		})
	}
	if page < totalPages {
		nav = append(nav, keyboard.InlineBtn{
			Text: "➡️", Unique: cbMenuPage, Data: strconv.Itoa(page + 1),
		})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	return keyboard.InlineButtonsRows(rows...)
}

// dishCardMarkup offers add-to-cart and rating votes for one dish.
func dishCardMarkup(dishID int64) *tele.ReplyMarkup {
	id := strconv.FormatInt(dishID, 10)
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "🛒 В корзину", Unique: cbAddToCart, Data: id}},
		[]keyboard.InlineBtn{
			{Text: "👍", Unique: cbRateGood, Data: id},
			{Text: "👎", Unique: cbRateBad, Data: id},
		},
	)
}

// cartMarkup shows per-line quantity controls and checkout actions.
func cartMarkup(lines []models.CartLine) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	for _, l := range lines {
		id := strconv.FormatInt(l.DishID, 10)
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "➖", Unique: cbDecrease, Data: id},
			{Text: fmt.Sprintf("%s ×%d", l.Name, l.Quantity), Unique: cbDishDetail, Data: id},
			{Text: "➕", Unique: cbIncrease, Data: id},
			{Text: "❌", Unique: cbRemoveLine, Data: id},
		})
	}
	rows = append(rows, []keyboard.InlineBtn{
		{Text: "✅ Оформить заказ", Unique: cbCheckout, Data: "go"},
	})
	rows = append(rows, []keyboard.InlineBtn{
		{Text: "🗑 Очистить корзину", Unique: cbClearCart, Data: "all"},
	})
	return keyboard.InlineButtonsRows(rows...)
}

var filterButtons = []struct {
	Label  string
	Filter service.Filter
}{
	{"🥦 Веган", service.FilterVegan},
	{"🌾 Без глютена", service.FilterGlutenFree},
	{"🌶 Острое", service.FilterSpicy},
	{"🥩 Мясо", service.FilterMeat},
}

// filtersMarkup marks active filters with a check.
func filtersMarkup(active []service.Filter) *tele.ReplyMarkup {
	on := make(map[service.Filter]bool, len(active))
	for _, f := range active {
		on[f] = true
	}
	var buttons []keyboard.InlineBtn
	for _, fb := range filterButtons {
		label := fb.Label
		if on[fb.Filter] {
			label = "✅ " + label
		}
		buttons = append(buttons, keyboard.InlineBtn{
			Text: label, Unique: cbFilter, Data: string(fb.Filter),
		})
	}
	rows := [][]keyboard.InlineBtn{
		buttons[:2], buttons[2:],
		{{Text: "♻️ Сбросить", Unique: cbFilter, Data: string(service.FilterReset)}},
	}
	return keyboard.InlineButtonsRows(rows...)
}

// orderControlMarkup is the staff per-order action row.
func orderControlMarkup(order models.Order) *tele.ReplyMarkup {
	id := strconv.FormatInt(order.ID, 10)
	row := []keyboard.InlineBtn{
		{Text: "📋 Состав", Unique: cbOrderDetails, Data: id},
	}
	if order.Status == models.StatusAccepted || order.Status == models.StatusPreparing {
		row = append(row, keyboard.InlineBtn{Text: "🚚 В доставку", Unique: cbToDelivery, Data: id})
	}
	if order.Status != models.StatusCompleted {
		row = append(row, keyboard.InlineBtn{Text: "✅ Завершить", Unique: cbCompleteOrd, Data: id})
	}
	return keyboard.InlineButtonsRows(row)
}

// dishPickerMarkup lists dishes for the admin edit/delete selectors.
func dishPickerMarkup(dishes []models.Dish, unique string) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(dishes))
	for _, d := range dishes {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   d.Name,
			Unique: unique,
			Data:   strconv.FormatInt(d.ID, 10),
		})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 2)
}

var editableFields = []struct {
	Label string
	Field string
}{
	{"Название", "name"},
	{"Описание", "description"},
	{"Цена", "price"},
	{"Калории", "calories"},
	{"Теги", "tags"},
}

func editFieldMarkup() *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(editableFields))
	for _, f := range editableFields {
		buttons = append(buttons, keyboard.InlineBtn{
			Text: f.Label, Unique: cbEditField, Data: f.Field,
		})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 2)
}

func deleteConfirmMarkup(dishID int64) *tele.ReplyMarkup {
	id := strconv.FormatInt(dishID, 10)
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "🗑 Да, удалить", Unique: cbConfirmDel, Data: id},
		{Text: "❌ Отмена", Unique: cbCancelDel, Data: id},
	})
}

// ratingMarkup offers a good/bad vote for every dish of a finished order.
func ratingMarkup(lines []models.OrderLine) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	for _, l := range lines {
		id := strconv.FormatInt(l.DishID, 10)
		rows = append(rows, []keyboard.InlineBtn{
			{Text: l.Name + " 👍", Unique: cbRateGood, Data: id},
			{Text: "👎", Unique: cbRateBad, Data: id},
		})
	}
	return keyboard.InlineButtonsRows(rows...)
}

func profileMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "🥗 Изменить предпочтения", Unique: cbSetDiet, Data: "start"},
	})
}
