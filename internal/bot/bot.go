// Package bot wires Telegram updates to the food-ordering services:
// command and button routing, callback handlers, and the multi-step
// conversations for checkout and dish administration.
package bot

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"

	tg "github.com/foodfit/foodfitbot/core/telegram"
	"github.com/foodfit/foodfitbot/core/telegram/callbacks"
	"github.com/foodfit/foodfitbot/core/telegram/commands"
	tghelpers "github.com/foodfit/foodfitbot/core/telegram/helpers"
	"github.com/foodfit/foodfitbot/core/telegram/state"
	"github.com/foodfit/foodfitbot/internal/ai"
	"github.com/foodfit/foodfitbot/internal/config"
	"github.com/foodfit/foodfitbot/internal/flow"
	"github.com/foodfit/foodfitbot/internal/models"
	"github.com/foodfit/foodfitbot/internal/service"
)

// uiMode selects which reply keyboard a privileged user currently sees.
type uiMode int

const (
	modeCustomer uiMode = iota
	modeAdmin
	modeStaff
)

// Handlers owns every Telegram-facing handler of the bot.
type Handlers struct {
	cfg     *config.Config
	users   *service.Users
	catalog *service.Catalog
	cart    *service.Cart
	orders  *service.Orders

	flows    *flow.Runner
	sessions state.Manager
	describe *ai.Describer

	mu      sync.RWMutex
	modes   map[int64]uiMode
	filters map[int64][]service.Filter
}

// New builds the handler set and registers its conversation flows.
func New(
	cfg *config.Config,
	users *service.Users,
	catalog *service.Catalog,
	cart *service.Cart,
	orders *service.Orders,
	sessions state.Manager,
	describe *ai.Describer,
) (*Handlers, error) {
	h := &Handlers{
		cfg:      cfg,
		users:    users,
		catalog:  catalog,
		cart:     cart,
		orders:   orders,
		flows:    flow.NewRunner(sessions),
		sessions: sessions,
		describe: describe,
		modes:    make(map[int64]uiMode),
		filters:  make(map[int64][]service.Filter),
	}
	for _, f := range []*flow.Flow{
		h.addDishFlow(),
		h.editDishFlow(),
		h.deliveryFlow(),
		h.staffSearchFlow(),
		h.completeOrderFlow(),
		h.dietFlow(),
	} {
		if err := h.flows.Register(f); err != nil {
			return nil, fmt.Errorf("bot: %w", err)
		}
	}
	return h, nil
}

// Conversations exposes the dialog dispatcher for the message router.
func (h *Handlers) Conversations() *conversationGateway {
	return &conversationGateway{h: h}
}

type conversationGateway struct {
	h *Handlers
}

func (g *conversationGateway) InProgress(userID int64) bool {
	return g.h.flows.InProgress(userID)
}

func (g *conversationGateway) Handle(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return g.h.flows.Process(ctx, responder{c: c}, c.Sender().ID, flowInput(c))
}

// responder adapts the transport context to the conversation engine.
type responder struct {
	c tele.Context
}

func (r responder) Prompt(text string) error {
	if text == "" {
		return nil
	}
	return tghelpers.SendHTML(r.c, text)
}

func flowInput(c tele.Context) flow.Input {
	in := flow.Input{Text: c.Text()}
	if msg := c.Message(); msg != nil {
		if msg.Photo != nil {
			in.PhotoID = msg.Photo.FileID
		}
		if msg.Contact != nil {
			in.Contact = msg.Contact.PhoneNumber
		}
	}
	return in
}

// Register binds every command, reply button, and callback.
func (h *Handlers) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.handleStart,
		Description: "Начать работу с ботом",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.handleHelp,
		Description: "Справка по командам",
	})
	reg.RegisterCommand("/menu", commands.Command{
		Handler:     h.handleMenu,
		Description: "Показать меню",
	})
	reg.RegisterCommand("/cart", commands.Command{
		Handler:     h.handleCart,
		Description: "Показать корзину",
	})
	reg.RegisterCommand("/orders", commands.Command{
		Handler:     h.handleOrders,
		Description: "Мои заказы",
	})
	reg.RegisterCommand("/profile", commands.Command{
		Handler:     h.handleProfile,
		Description: "Мой профиль",
	})
	reg.RegisterCommand("/filters", commands.Command{
		Handler:     h.handleFilters,
		Description: "Фильтры поиска",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     h.handleAdminEnter,
		Description: "Режим администратора",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/staff", commands.Command{
		Handler:     h.handleStaffEnter,
		Description: "Режим официанта",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.RegisterButton(btnMenu, h.handleMenu)
	reg.RegisterButton(btnCart, h.handleCart)
	reg.RegisterButton(btnProfile, h.handleProfile)
	reg.RegisterButton(btnFilters, h.handleFilters)

	reg.RegisterButton(btnAdminAddDish, h.adminOnly(h.handleAddDish))
	reg.RegisterButton(btnAdminOrders, h.adminOnly(h.handleRecentOrders))
	reg.RegisterButton(btnAdminEditDish, h.adminOnly(h.handleEditDishPicker))
	reg.RegisterButton(btnAdminDelete, h.adminOnly(h.handleDeleteDishPicker))
	reg.RegisterButton(btnAdminStaff, h.adminOnly(h.handleStaffEnter))
	reg.RegisterButton(btnAdminExit, h.handleModeExit)

	reg.RegisterButton(btnStaffSearch, h.adminOnly(h.handleStaffSearch))
	reg.RegisterButton(btnStaffOpen, h.adminOnly(h.handleOpenOrders))
	reg.RegisterButton(btnStaffComplete, h.adminOnly(h.handleCompleteOrder))
	reg.RegisterButton(btnStaffRefresh, h.adminOnly(h.handleOpenOrders))
	reg.RegisterButton(btnStaffExit, h.handleModeExit)

	callbacks := map[string]tele.HandlerFunc{
		cbAddToCart:    h.cbAddToCart,
		cbDishDetail:   h.cbDishDetail,
		cbMenuPage:     h.cbMenuPage,
		cbFilter:       h.cbFilter,
		cbRateGood:     h.rateHandler(service.ScoreGood),
		cbRateBad:      h.rateHandler(service.ScoreBad),
		cbIncrease:     h.quantityHandler(+1),
		cbDecrease:     h.quantityHandler(-1),
		cbRemoveLine:   h.cbRemoveLine,
		cbClearCart:    h.cbClearCart,
		cbCheckout:     h.cbCheckout,
		cbEditDish:     h.adminOnly(h.cbEditDish),
		cbEditField:    h.adminOnly(h.cbEditField),
		cbDeleteDish:   h.adminOnly(h.cbDeleteDish),
		cbConfirmDel:   h.adminOnly(h.cbConfirmDelete),
		cbCancelDel:    h.adminOnly(h.cbCancelDelete),
		cbCompleteOrd:  h.adminOnly(h.statusHandler(models.StatusCompleted)),
		cbToDelivery:   h.adminOnly(h.statusHandler(models.StatusInDelivery)),
		cbOrderDetails: h.adminOnly(h.cbOrderDetails),
		cbSetDiet:      h.cbSetDiet,
	}
	for key, handler := range callbacks {
		if err := reg.RegisterCallback(key, handler); err != nil {
			return err
		}
	}

	// Free text outside a dialog is treated as a menu search.
	reg.SetTextFallback(h.handleTextSearch)
	return nil
}

// adminOnly guards handlers reachable through reply buttons and
// callbacks, which bypass the command middleware chain.
func (h *Handlers) adminOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !h.cfg.Telegram.IsAdmin(c.Sender().ID) {
			return tghelpers.SendHTML(c, "Недостаточно прав.")
		}
		return next(c)
	}
}

func (h *Handlers) mode(userID int64) uiMode {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.modes[userID]
}

func (h *Handlers) setMode(userID int64, m uiMode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m == modeCustomer {
		delete(h.modes, userID)
		return
	}
	h.modes[userID] = m
}

func (h *Handlers) activeFilters(userID int64) []service.Filter {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.filters[userID]
}

// toggleFilter flips one filter for the user; FilterReset drops them all.
func (h *Handlers) toggleFilter(userID int64, f service.Filter) []service.Filter {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f == service.FilterReset {
		delete(h.filters, userID)
		return nil
	}
	current := h.filters[userID]
	for i, active := range current {
		if active == f {
			current = append(current[:i], current[i+1:]...)
			h.filters[userID] = current
			return current
		}
	}
	current = append(current, f)
	h.filters[userID] = current
	return current
}

func (h *Handlers) keyboardFor(userID int64) *tele.ReplyMarkup {
	switch h.mode(userID) {
	case modeAdmin:
		return adminKeyboard()
	case modeStaff:
		return staffKeyboard()
	}
	return mainMenuKeyboard()
}

// callbackID parses the numeric payload of the pressed inline button.
func callbackID(c tele.Context) (int64, error) {
	id, err := strconv.ParseInt(callbackData(c), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bot: bad callback payload: %w", err)
	}
	return id, nil
}

func callbackData(c tele.Context) string {
	if cb := c.Callback(); cb != nil && cb.Unique != "" {
		return strings.TrimSpace(cb.Data)
	}
	return strings.TrimSpace(callbacks.CallbackPayload(c))
}
