package bot

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/foodfit/foodfitbot/core/telegram/format"
	tghelpers "github.com/foodfit/foodfitbot/core/telegram/helpers"
	"github.com/foodfit/foodfitbot/core/telegram/state"
	"github.com/foodfit/foodfitbot/internal/flow"
	"github.com/foodfit/foodfitbot/internal/models"
	"github.com/foodfit/foodfitbot/internal/service"
)

const (
	flowAddDish  = "admin.add_dish"
	flowEditDish = "admin.edit_dish"

	editDishKey = "admin.edit.dish_id"

	skipLabel = "пропустить"
)

func (h *Handlers) handleAdminEnter(c tele.Context) error {
	h.setMode(c.Sender().ID, modeAdmin)
	return tghelpers.SendHTML(c, "🔧 Режим администратора.", adminKeyboard())
}

func (h *Handlers) handleModeExit(c tele.Context) error {
	h.setMode(c.Sender().ID, modeCustomer)
	return tghelpers.SendHTML(c, "Главное меню.", mainMenuKeyboard())
}

func (h *Handlers) handleAddDish(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return h.flows.Start(ctx, responder{c: c}, c.Sender().ID, flowAddDish)
}

func (h *Handlers) addDishFlow() *flow.Flow {
	return &flow.Flow{
		Name:       flowAddDish,
		CancelText: "Добавление блюда отменено.",
		Steps: []flow.Step{
			{
				State:    state.State("admin.add.name"),
				Key:      "name",
				Prompt:   "Введите название блюда:",
				Validate: flow.NonEmptyText("Название не может быть пустым."),
			},
			{
				State:    state.State("admin.add.price"),
				Key:      "price",
				Prompt:   "Введите цену в рублях:",
				Validate: flow.PositiveInt("Цена должна быть целым числом больше нуля."),
				// The generated description is shown together with the
				// next prompt, so the calories step carries no prompt
				// of its own.
				After: func(ctx context.Context, out flow.Responder, userID int64, bag flow.Bag) error {
					desc := h.describe.Describe(ctx, bag["name"])
					bag["description"] = desc
					return out.Prompt("📝 Описание:\n" + desc + "\n\nВведите калорийность (ккал):")
				},
			},
			{
				State:    state.State("admin.add.calories"),
				Key:      "calories",
				Validate: flow.NonNegativeInt("Калорийность — целое число не меньше нуля."),
			},
			{
				State:    state.State("admin.add.tags"),
				Key:      "tags",
				Prompt:   "Введите теги через запятую (например: острое, мясо):",
				Validate: flow.NonEmptyText("Укажите хотя бы один тег."),
			},
			{
				State:    state.State("admin.add.photo"),
				Key:      "photo",
				Prompt:   "Отправьте фото блюда или напишите «пропустить»:",
				Validate: flow.PhotoOrSkip(skipLabel, "Нужно фото или слово «пропустить»."),
			},
		},
		Done: func(ctx context.Context, out flow.Responder, userID int64, bag flow.Bag) error {
			id, err := h.catalog.CreateDish(ctx, models.NewDish{
				Name:        bag["name"],
				Description: bag["description"],
				Price:       bag.Int("price"),
				Calories:    bag.Int("calories"),
				Tags:        bag["tags"],
				Photo:       bag["photo"],
			})
			if err != nil {
				var verr *service.ValidationError
				if errors.As(err, &verr) {
					return out.Prompt("Не удалось сохранить блюдо: проверьте введённые данные.")
				}
				return err
			}
			return out.Prompt("✅ Блюдо добавлено (#" + strconv.FormatInt(id, 10) + ").")
		},
	}
}

func (h *Handlers) handleRecentOrders(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	orders, err := h.orders.Recent(ctx, 10)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return tghelpers.SendHTML(c, renderOrderList("📊 Последние заказы", nil, true))
	}
	if err := tghelpers.SendHTML(c, renderOrderList("📊 Последние заказы", orders, true)); err != nil {
		return err
	}
	for _, o := range orders {
		text := "Заказ #" + strconv.FormatInt(o.ID, 10) + " — " + o.Status.Label()
		if err := tghelpers.SendHTML(c, text, orderControlMarkup(o)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) handleEditDishPicker(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	dishes, err := h.catalog.Search(ctx, "", nil)
	if err != nil {
		return err
	}
	if len(dishes) == 0 {
		return tghelpers.SendHTML(c, "Меню пока пустое, редактировать нечего.")
	}
	return tghelpers.SendHTML(c, "Выберите блюдо для редактирования:",
		dishPickerMarkup(dishes, cbEditDish))
}

func (h *Handlers) cbEditDish(c tele.Context) error {
	dishID, err := callbackID(c)
	if err != nil {
		return err
	}
	h.sessions.SetTemp(c.Sender().ID, editDishKey, dishID)
	return tghelpers.EditOrSendHTML(c, "Что изменить?", editFieldMarkup())
}

func (h *Handlers) cbEditField(c tele.Context) error {
	field := callbackData(c)
	userID := c.Sender().ID
	dishID, ok := h.sessions.GetTempInt64(userID, editDishKey)
	if !ok {
		return tghelpers.SendHTML(c, "Сначала выберите блюдо через «"+btnAdminEditDish+"».")
	}
	ctx := tghelpers.BuildContext(c)
	if err := h.flows.Start(ctx, responder{c: c}, userID, flowEditDish); err != nil {
		return err
	}
	h.flows.Seed(userID, "dish_id", strconv.FormatInt(dishID, 10))
	h.flows.Seed(userID, "field", field)
	return nil
}

func (h *Handlers) editDishFlow() *flow.Flow {
	return &flow.Flow{
		Name:       flowEditDish,
		CancelText: "Редактирование отменено.",
		Steps: []flow.Step{
			{
				State:    state.State("admin.edit.value"),
				Key:      "value",
				Prompt:   "Введите новое значение:",
				Validate: flow.NonEmptyText("Значение не может быть пустым."),
			},
		},
		Done: func(ctx context.Context, out flow.Responder, userID int64, bag flow.Bag) error {
			dishID, err := strconv.ParseInt(bag["dish_id"], 10, 64)
			if err != nil {
				return out.Prompt("Не удалось определить блюдо, начните заново.")
			}
			field := bag["field"]
			value, perr := parseFieldValue(field, bag["value"])
			if perr != "" {
				return out.Prompt(perr)
			}
			if err := h.catalog.UpdateDishField(ctx, dishID, field, value); err != nil {
				if errors.Is(err, service.ErrDishNotFound) {
					return out.Prompt("Блюдо не найдено — возможно, его уже удалили.")
				}
				return err
			}
			return out.Prompt("✅ Сохранено.")
		},
	}
}

// parseFieldValue converts the typed value to the column's type; the
// second return is a user-facing complaint when the input is unusable.
func parseFieldValue(field, raw string) (interface{}, string) {
	switch field {
	case "price":
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, "Цена должна быть целым числом больше нуля."
		}
		return n, ""
	case "calories":
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, "Калорийность — целое число не меньше нуля."
		}
		return n, ""
	case "description":
		return sql.NullString{String: raw, Valid: raw != ""}, ""
	default:
		return raw, ""
	}
}

func (h *Handlers) handleDeleteDishPicker(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	dishes, err := h.catalog.Search(ctx, "", nil)
	if err != nil {
		return err
	}
	if len(dishes) == 0 {
		return tghelpers.SendHTML(c, "Меню пока пустое, удалять нечего.")
	}
	return tghelpers.SendHTML(c, "Выберите блюдо для удаления:",
		dishPickerMarkup(dishes, cbDeleteDish))
}

func (h *Handlers) cbDeleteDish(c tele.Context) error {
	dishID, err := callbackID(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	dish, err := h.catalog.Dish(ctx, dishID)
	if errors.Is(err, service.ErrDishNotFound) {
		return tghelpers.EditOrSendHTML(c, "Блюдо уже удалено.")
	}
	if err != nil {
		return err
	}
	return tghelpers.EditOrSendHTML(c,
		"Удалить «"+format.EscapeHTML(dish.Name)+"»? Действие необратимо.",
		deleteConfirmMarkup(dish.ID))
}

func (h *Handlers) cbConfirmDelete(c tele.Context) error {
	dishID, err := callbackID(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	if err := h.catalog.DeleteDish(ctx, dishID); err != nil {
		if errors.Is(err, service.ErrDishNotFound) {
			return tghelpers.EditOrSendHTML(c, "Блюдо уже удалено.")
		}
		return err
	}
	return tghelpers.EditOrSendHTML(c, "🗑 Блюдо удалено.")
}

func (h *Handlers) cbCancelDelete(c tele.Context) error {
	return tghelpers.EditOrSendHTML(c, "Удаление отменено.")
}
