package bot

import (
	"errors"
	"strconv"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/foodfit/foodfitbot/core/telegram/helpers"
	"github.com/foodfit/foodfitbot/internal/service"
)

func (h *Handlers) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	if err := h.users.Register(ctx, sender.ID, sender.Username, senderFullName(sender)); err != nil {
		return err
	}
	h.setMode(sender.ID, modeCustomer)
	return tghelpers.SendHTML(c,
		"Привет! Я помогу выбрать блюда, собрать корзину и оформить заказ.\n"+
			"Пользуйтесь кнопками ниже или пишите название блюда для поиска.",
		mainMenuKeyboard())
}

func (h *Handlers) handleHelp(c tele.Context) error {
	return tghelpers.SendHTML(c,
		"🍽 Меню — список блюд по страницам\n"+
			"🛒 Корзина — состав и оформление заказа\n"+
			"👤 Профиль — ваши данные и история заказов\n"+
			"⚙️ Фильтры — ограничить поиск по тегам\n\n"+
			"Просто напишите название блюда, чтобы найти его.",
		h.keyboardFor(c.Sender().ID))
}

func (h *Handlers) handleMenu(c tele.Context) error {
	return h.sendMenuPage(c, 1, false)
}

func (h *Handlers) cbMenuPage(c tele.Context) error {
	page, err := strconv.Atoi(callbackData(c))
	if err != nil || page < 1 {
		page = 1
	}
	return h.sendMenuPage(c, page, true)
}

// sendMenuPage renders one page of the menu; edit switches pages in
// place instead of stacking messages.
func (h *Handlers) sendMenuPage(c tele.Context, page int, edit bool) error {
	ctx := tghelpers.BuildContext(c)
	dishes, totalPages, err := h.catalog.Page(ctx, page, h.cfg.Bot.MenuPageSize)
	if err != nil {
		return err
	}
	if totalPages == 0 {
		return tghelpers.SendHTML(c, renderMenuHeader(0, 0))
	}
	if len(dishes) == 0 {
		// Out-of-range page, fall back to the first one.
		dishes, totalPages, err = h.catalog.Page(ctx, 1, h.cfg.Bot.MenuPageSize)
		if err != nil {
			return err
		}
		page = 1
	}
	text := renderMenuHeader(page, totalPages)
	markup := menuPageMarkup(dishes, page, totalPages)
	if edit {
		return tghelpers.EditOrSendHTML(c, text, markup)
	}
	return tghelpers.SendHTML(c, text, markup)
}

func (h *Handlers) cbDishDetail(c tele.Context) error {
	dishID, err := callbackID(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	dish, err := h.catalog.Dish(ctx, dishID)
	if errors.Is(err, service.ErrDishNotFound) {
		return tghelpers.SendHTML(c, "Это блюдо уже недоступно.")
	}
	if err != nil {
		return err
	}
	card := renderDishCard(dish)
	markup := dishCardMarkup(dish.ID)
	if dish.Photo.Valid && dish.Photo.String != "" {
		return tghelpers.SendPhotoHTML(c, dish.Photo.String, card, markup)
	}
	return tghelpers.SendHTML(c, card, markup)
}

func (h *Handlers) rateHandler(score int) tele.HandlerFunc {
	return func(c tele.Context) error {
		dishID, err := callbackID(c)
		if err != nil {
			return err
		}
		ctx := tghelpers.BuildContext(c)
		if err := h.catalog.RateDish(ctx, dishID, score); err != nil {
			if errors.Is(err, service.ErrDishNotFound) {
				return tghelpers.SendHTML(c, "Это блюдо уже недоступно.")
			}
			return err
		}
		return tghelpers.SendHTML(c, "Спасибо за оценку!")
	}
}

func (h *Handlers) handleFilters(c tele.Context) error {
	active := h.activeFilters(c.Sender().ID)
	return tghelpers.SendHTML(c, renderFilters(active), filtersMarkup(active))
}

func (h *Handlers) cbFilter(c tele.Context) error {
	f, ok := service.ParseFilter(callbackData(c))
	if !ok {
		return tghelpers.SendHTML(c, "Неизвестный фильтр.")
	}
	active := h.toggleFilter(c.Sender().ID, f)
	return tghelpers.EditOrSendHTML(c, renderFilters(active), filtersMarkup(active))
}

// handleTextSearch treats free text outside a dialog as a menu search
// restricted by the user's active filters.
func (h *Handlers) handleTextSearch(c tele.Context) error {
	query := c.Text()
	if query == "" {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	dishes, err := h.catalog.Search(ctx, query, h.activeFilters(c.Sender().ID))
	if err != nil {
		return err
	}
	if len(dishes) == 0 {
		return tghelpers.SendHTML(c, renderSearchResults(nil))
	}
	return tghelpers.SendHTML(c, renderSearchResults(dishes),
		dishPickerMarkup(dishes, cbDishDetail))
}

func senderFullName(u *tele.User) string {
	if u == nil {
		return ""
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}
