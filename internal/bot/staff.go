package bot

import (
	"context"
	"strconv"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/foodfit/foodfitbot/core/telegram/helpers"
	"github.com/foodfit/foodfitbot/core/telegram/state"
	"github.com/foodfit/foodfitbot/internal/flow"
	"github.com/foodfit/foodfitbot/internal/models"
)

const (
	flowStaffSearch   = "staff.search"
	flowCompleteOrder = "staff.complete_order"
)

func (h *Handlers) handleStaffEnter(c tele.Context) error {
	h.setMode(c.Sender().ID, modeStaff)
	return tghelpers.SendHTML(c, "👥 Режим официанта.", staffKeyboard())
}

// handleOpenOrders sends every open order as its own message so staff
// can act on each one independently.
func (h *Handlers) handleOpenOrders(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	orders, err := h.orders.Active(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return tghelpers.SendHTML(c, "Открытых заказов нет ✅")
	}
	for _, o := range orders {
		text := "Заказ #" + strconv.FormatInt(o.ID, 10) +
			" — " + strconv.Itoa(o.TotalAmount) + " ₽, " + o.Status.Label()
		if err := tghelpers.SendHTML(c, text, orderControlMarkup(o)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) handleStaffSearch(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return h.flows.Start(ctx, responder{c: c}, c.Sender().ID, flowStaffSearch)
}

func (h *Handlers) handleCompleteOrder(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return h.flows.Start(ctx, responder{c: c}, c.Sender().ID, flowCompleteOrder)
}

// completeOrderFlow closes an order by its typed number and then asks
// the customer for dish ratings.
func (h *Handlers) completeOrderFlow() *flow.Flow {
	return &flow.Flow{
		Name:       flowCompleteOrder,
		CancelText: "Завершение заказа отменено.",
		Steps: []flow.Step{
			{
				State:    state.State("staff.complete.order_id"),
				Key:      "order_id",
				Prompt:   "✅ Введите номер заказа:",
				Validate: flow.PositiveInt("Номер заказа — целое число больше нуля."),
			},
		},
		Done: func(ctx context.Context, out flow.Responder, userID int64, bag flow.Bag) error {
			orderID := int64(bag.Int("order_id"))
			ok, err := h.orders.UpdateStatus(ctx, orderID, models.StatusCompleted)
			if err != nil {
				return err
			}
			if !ok {
				return out.Prompt("Заказ с таким номером не найден.")
			}
			if r, isTele := out.(responder); isTele {
				h.solicitRating(ctx, r.c.Bot(), orderID)
			}
			return out.Prompt("Заказ #" + strconv.FormatInt(orderID, 10) + " завершён.")
		},
	}
}

func (h *Handlers) staffSearchFlow() *flow.Flow {
	return &flow.Flow{
		Name:       flowStaffSearch,
		CancelText: "Поиск отменён.",
		Steps: []flow.Step{
			{
				State:    state.State("staff.search.query"),
				Key:      "query",
				Prompt:   "🔍 Введите название блюда:",
				Validate: flow.NonEmptyText("Напишите название текстом."),
			},
		},
		Done: func(ctx context.Context, out flow.Responder, userID int64, bag flow.Bag) error {
			dishes, err := h.catalog.Search(ctx, bag["query"], nil)
			if err != nil {
				return err
			}
			return out.Prompt(renderSearchResults(dishes))
		},
	}
}
