package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/foodfit/foodfitbot/core/telegram/helpers"
	"github.com/foodfit/foodfitbot/core/telegram/ui"
)

var _ ui.FallbackProvider = (*Handlers)(nil)

// UnknownText is the last resort when no dialog, button, command, or
// registry fallback claimed a text message.
func (h *Handlers) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c,
			"Не понял запрос. Пользуйтесь кнопками ниже или напишите название блюда.",
			h.keyboardFor(c.Sender().ID))
	}
}

// UnknownPhoto reacts to a photo sent outside the add-dish dialog.
func (h *Handlers) UnknownPhoto() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c, "Фото сейчас ни к чему — сначала выберите действие.")
	}
}

// UnknownCallback answers presses of buttons from outdated messages.
func (h *Handlers) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Кнопка устарела, откройте меню заново."})
	}
}
