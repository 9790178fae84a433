package bot

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/foodfit/foodfitbot/core/telegram/helpers"
	"github.com/foodfit/foodfitbot/core/telegram/state"
	"github.com/foodfit/foodfitbot/internal/flow"
	"github.com/foodfit/foodfitbot/internal/models"
	"github.com/foodfit/foodfitbot/internal/service"
)

const flowDelivery = "order.delivery"

func (h *Handlers) handleCart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	lines, err := h.cart.Contents(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return tghelpers.SendHTML(c, renderCart(nil))
	}
	return tghelpers.SendHTML(c, renderCart(lines), cartMarkup(lines))
}

func (h *Handlers) cbAddToCart(c tele.Context) error {
	dishID, err := callbackID(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	if _, err := h.catalog.Dish(ctx, dishID); err != nil {
		if errors.Is(err, service.ErrDishNotFound) {
			return tghelpers.SendHTML(c, "Это блюдо уже недоступно.")
		}
		return err
	}
	if err := h.cart.Add(ctx, c.Sender().ID, dishID); err != nil {
		return err
	}
	return tghelpers.SendHTML(c, "Добавлено в корзину ✅")
}

func (h *Handlers) quantityHandler(delta int) tele.HandlerFunc {
	return func(c tele.Context) error {
		dishID, err := callbackID(c)
		if err != nil {
			return err
		}
		ctx := tghelpers.BuildContext(c)
		if _, _, err := h.cart.ChangeQuantity(ctx, c.Sender().ID, dishID, delta); err != nil {
			return err
		}
		return h.refreshCart(c)
	}
}

func (h *Handlers) cbRemoveLine(c tele.Context) error {
	dishID, err := callbackID(c)
	if err != nil {
		return err
	}
	ctx := tghelpers.BuildContext(c)
	if err := h.cart.Remove(ctx, c.Sender().ID, dishID); err != nil {
		return err
	}
	return h.refreshCart(c)
}

func (h *Handlers) cbClearCart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if err := h.cart.Clear(ctx, c.Sender().ID); err != nil {
		return err
	}
	return tghelpers.EditOrSendHTML(c, renderCart(nil))
}

// refreshCart redraws the cart message in place after a mutation.
func (h *Handlers) refreshCart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	lines, err := h.cart.Contents(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return tghelpers.EditOrSendHTML(c, renderCart(nil))
	}
	return tghelpers.EditOrSendHTML(c, renderCart(lines), cartMarkup(lines))
}

// cbCheckout turns the cart into an order and starts the delivery
// dialog for the address, time, and contact.
func (h *Handlers) cbCheckout(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID
	orderID, lines, err := h.cart.Checkout(ctx, userID)
	if errors.Is(err, service.ErrEmptyCart) {
		return tghelpers.EditOrSendHTML(c, renderCart(nil))
	}
	if err != nil {
		return err
	}
	if err := tghelpers.SendHTML(c, renderCheckout(orderID, lines)); err != nil {
		return err
	}
	return h.flows.Start(ctx, responder{c: c}, userID, flowDelivery)
}

func (h *Handlers) deliveryFlow() *flow.Flow {
	return &flow.Flow{
		Name:       flowDelivery,
		CancelText: "Оформление доставки отменено. Заказ остаётся в работе, с вами свяжутся.",
		Steps: []flow.Step{
			{
				State:    state.State("delivery.address"),
				Key:      "address",
				Prompt:   "📍 Введите адрес доставки:",
				Validate: flow.NonEmptyText("Пожалуйста, напишите адрес текстом."),
			},
			{
				State:    state.State("delivery.time"),
				Key:      "time",
				Prompt:   "🕒 К какому времени доставить? Например: 18:30",
				Validate: timeOfDay("Не понял время. Укажите в формате ЧЧ:ММ, например 18:30."),
			},
			{
				State:    state.State("delivery.contact"),
				Key:      "contact",
				Prompt:   "📞 Отправьте контакт кнопкой или напишите номер телефона:",
				Validate: flow.TextOrContact("Нужен номер телефона или контакт."),
			},
		},
		Done: func(ctx context.Context, out flow.Responder, userID int64, bag flow.Bag) error {
			return out.Prompt(renderDelivery(models.Delivery{
				Address: bag["address"],
				Time:    bag["time"],
				Contact: bag["contact"],
			}))
		},
	}
}

// timeOfDay normalizes a typed delivery time to HH:MM.
func timeOfDay(errMsg string) flow.ValidateFunc {
	return func(in flow.Input) (string, error) {
		hour, min, ok := tghelpers.ParseTimeOfDay(in.Text)
		if !ok {
			return "", fmt.Errorf("%s", errMsg)
		}
		return fmt.Sprintf("%02d:%02d", hour, min), nil
	}
}
