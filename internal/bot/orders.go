package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/foodfit/foodfitbot/core/logger"
	tghelpers "github.com/foodfit/foodfitbot/core/telegram/helpers"
	"github.com/foodfit/foodfitbot/core/telegram/state"
	"github.com/foodfit/foodfitbot/internal/flow"
	"github.com/foodfit/foodfitbot/internal/models"
	"github.com/foodfit/foodfitbot/internal/service"
)

const flowDiet = "profile.diet"

func (h *Handlers) handleOrders(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	orders, err := h.orders.UserOrders(ctx, c.Sender().ID, h.cfg.Bot.OrdersLimit)
	if err != nil {
		return err
	}
	return tghelpers.SendHTML(c, renderOrderList("📦 Ваши заказы", orders, false))
}

func (h *Handlers) handleProfile(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	user, err := tghelpers.CurrentUser[models.User](ctx, h.users, userID)
	if err != nil {
		return err
	}
	count, err := h.users.OrderCount(ctx, userID)
	if err != nil {
		return err
	}
	last, err := h.orders.LastOrderedDishes(ctx, userID, h.cfg.Bot.LastDishesLimit)
	if err != nil {
		return err
	}
	return tghelpers.SendHTML(c, renderProfile(user, count, last), profileMarkup())
}

func (h *Handlers) cbSetDiet(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return h.flows.Start(ctx, responder{c: c}, c.Sender().ID, flowDiet)
}

func (h *Handlers) dietFlow() *flow.Flow {
	return &flow.Flow{
		Name: flowDiet,
		Steps: []flow.Step{
			{
				State:    state.State("profile.diet.value"),
				Key:      "diet",
				Prompt:   "🥗 Опишите ваши предпочтения (например: без мяса, поменьше острого):",
				Validate: flow.NonEmptyText("Напишите предпочтения текстом."),
			},
		},
		Done: func(ctx context.Context, out flow.Responder, userID int64, bag flow.Bag) error {
			if err := h.users.SetDiet(ctx, userID, bag["diet"]); err != nil {
				return err
			}
			return out.Prompt("Предпочтения сохранены ✅")
		},
	}
}

// cbOrderDetails shows the composition of one order to staff.
func (h *Handlers) cbOrderDetails(c tele.Context) error {
	orderID, err := callbackID(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	details, err := h.orders.Details(ctx, orderID)
	if errors.Is(err, service.ErrOrderNotFound) {
		return tghelpers.SendHTML(c, "Заказ не найден.")
	}
	if err != nil {
		return err
	}
	return tghelpers.SendHTML(c, renderOrderDetails(details))
}

// statusHandler moves an order into the given status.
func (h *Handlers) statusHandler(status models.OrderStatus) tele.HandlerFunc {
	return func(c tele.Context) error {
		orderID, err := callbackID(c)
		if err != nil {
			return err
		}
		ctx := tghelpers.BuildContext(c)
		ok, err := h.orders.UpdateStatus(ctx, orderID, status)
		if err != nil {
			return err
		}
		if !ok {
			return tghelpers.SendHTML(c, "Заказ не найден.")
		}
		if status == models.StatusCompleted {
			h.solicitRating(ctx, c.Bot(), orderID)
		}
		return tghelpers.SendHTML(c,
			fmt.Sprintf("Заказ #%d: статус — %s.", orderID, status.Label()))
	}
}

// solicitRating asks the customer to rate the dishes of a finished
// order. Delivery failures are logged, never surfaced to staff.
func (h *Handlers) solicitRating(ctx context.Context, b tele.API, orderID int64) {
	details, err := h.orders.Details(ctx, orderID)
	if err != nil || len(details.Lines) == 0 {
		return
	}
	text := fmt.Sprintf("✅ Ваш заказ #%d завершён!\nОцените блюда:", orderID)
	_, err = b.Send(&tele.User{ID: details.Order.UserID}, text, &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: ratingMarkup(details.Lines),
	})
	if err != nil {
		logger.Warn(ctx, "tg", "rating.request.fail",
			slog.Int64("order_id", orderID),
			slog.Int64("user_id", details.Order.UserID),
			slog.String("err", err.Error()),
		)
	}
}
