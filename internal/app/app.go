// Package app assembles the bot: configuration, infrastructure,
// services, and the Telegram runtime options.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/foodfit/foodfitbot/core/bootstrap"
	"github.com/foodfit/foodfitbot/core/cmd"
	tg "github.com/foodfit/foodfitbot/core/telegram"
	tghelpers "github.com/foodfit/foodfitbot/core/telegram/helpers"
	"github.com/foodfit/foodfitbot/core/telegram/router"
	"github.com/foodfit/foodfitbot/core/telegram/state"
	"github.com/foodfit/foodfitbot/internal/ai"
	"github.com/foodfit/foodfitbot/internal/bot"
	"github.com/foodfit/foodfitbot/internal/config"
	"github.com/foodfit/foodfitbot/internal/service"
	"github.com/foodfit/foodfitbot/internal/storage"

	tele "gopkg.in/telebot.v4"
)

// App holds everything needed to run the bot.
type App struct {
	cfg      *config.Config
	registry *tg.Registry
	handlers *bot.Handlers
	db       *sqlx.DB
}

// LoadConfig adapts config.Load to the runner's carrier interface.
func LoadConfig(path string) (cmd.ConfigCarrier, error) {
	return config.Load(path)
}

// Bootstrap initializes infrastructure and wires the domain together.
func Bootstrap(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.New(res.DB)
	users := service.NewUsers(store)
	catalog := service.NewCatalog(store)
	cart := service.NewCart(store)
	orders := service.NewOrders(store)

	sessions := state.NewMemoryManager()
	describe := ai.NewDescriber(ai.Config{
		URL:     cfg.AI.URL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})

	handlers, err := bot.New(cfg, users, catalog, cart, orders, sessions, describe)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}

	registry := tg.NewRegistry()
	if err := handlers.Register(registry); err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	registry.SetCallbackNotFound(handlers.UnknownCallback())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := menuSeeder().Seed(ctx, store); err != nil {
		_ = res.DB.Close()
		return nil, fmt.Errorf("app: menu seed failed: %w", err)
	}

	return &App{
		cfg:      cfg,
		registry: registry,
		handlers: handlers,
		db:       res.DB,
	}, nil
}

// TelegramRunOptions builds the runtime wiring for the core runner.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	onLimited := func(c tele.Context) error {
		return tghelpers.SendText(c, "Слишком часто. Подождите секунду и повторите.")
	}
	onAdminReject := func(c tele.Context) error {
		return tghelpers.SendHTML(c, "Недостаточно прав.")
	}

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		IsAdmin:       a.cfg.Telegram.IsAdmin,
		OnAdminReject: onAdminReject,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{
		NotFound: a.handlers.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(a.handlers.Conversations(), a.registry, router.TextOptions{
		UnknownText:  a.handlers.UnknownText(),
		UnknownPhoto: a.handlers.UnknownPhoto(),
	})...)

	return tg.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(a.cfg.CoreConfig(), onLimited),
		Routes:      routes,
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
