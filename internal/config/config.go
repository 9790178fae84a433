// Package config assembles the application configuration: the reusable
// core sections plus database, AI, and bot-specific knobs.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/foodfit/foodfitbot/core/config"
	"github.com/foodfit/foodfitbot/core/database"
)

// AIConfig wires the optional dish-description generator.
type AIConfig struct {
	URL            string `yaml:"url" envconfig:"AI_API_URL"`
	APIKey         string `yaml:"api_key" envconfig:"AI_API_KEY"`
	Model          string `yaml:"model" envconfig:"AI_MODEL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"AI_TIMEOUT_SECONDS"`
}

// BotConfig holds presentation limits.
type BotConfig struct {
	// MenuPageSize is the number of dishes shown per menu page.
	MenuPageSize int `yaml:"menu_page_size" envconfig:"BOT_MENU_PAGE_SIZE"`
	// OrdersLimit caps the order-history view.
	OrdersLimit int `yaml:"orders_limit" envconfig:"BOT_ORDERS_LIMIT"`
	// LastDishesLimit caps the recently-ordered list in the profile.
	LastDishesLimit int `yaml:"last_dishes_limit" envconfig:"BOT_LAST_DISHES_LIMIT"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database database.Config `yaml:"database"`
	AI       AIConfig        `yaml:"ai"`
	Bot      BotConfig       `yaml:"bot"`
}

// CoreConfig exposes the embedded core sections to the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads the YAML file, overlays environment variables, and validates.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}

	if cfg.Bot.MenuPageSize <= 0 {
		cfg.Bot.MenuPageSize = 5
	}
	if cfg.Bot.OrdersLimit <= 0 {
		cfg.Bot.OrdersLimit = 5
	}
	if cfg.Bot.LastDishesLimit <= 0 {
		cfg.Bot.LastDishesLimit = 3
	}

	return &cfg, nil
}
