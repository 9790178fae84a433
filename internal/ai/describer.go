// Package ai generates dish descriptions through a chat-completion API.
// The call is best-effort: bounded timeout, a few retries, and a static
// placeholder when the service is unavailable.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/foodfit/foodfitbot/core/logger"
	"github.com/foodfit/foodfitbot/core/telegram/netutil"
)

// Placeholder is used when no description could be generated.
const Placeholder = "Описание появится позже."

const (
	defaultTimeout  = 10 * time.Second
	defaultAttempts = 3
	retryBackoff    = time.Second
)

// Config wires the external chat-completion endpoint.
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Describer calls the completion endpoint to describe dishes.
type Describer struct {
	cfg    Config
	client *http.Client
}

// NewDescriber builds a Describer; a zero timeout gets a default.
func NewDescriber(cfg Config) *Describer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Describer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether an endpoint is configured at all.
func (d *Describer) Enabled() bool {
	return d != nil && d.cfg.URL != "" && d.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

var junkRe = regexp.MustCompile(`<[^>]+>|Хорошо,|Итак,|Давай|\.\.\.`)

// Describe returns a menu description for the dish. On any persistent
// failure it degrades to Placeholder; it never returns an error to the
// caller because dish creation must not depend on the AI service.
func (d *Describer) Describe(ctx context.Context, dishName string) string {
	if !d.Enabled() {
		return Placeholder
	}

	prompt := fmt.Sprintf(
		"Сгенерируй описание блюда для меню ресторана.\n"+
			"Требования:\n"+
			"1. Только факты о блюде\n"+
			"2. Без вводных слов\n"+
			"3. Конкретные детали приготовления\n\n"+
			"Блюдо: %s\nОписание:", dishName)

	req := chatRequest{
		Model: d.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "Ты шеф-повар, составляешь описания блюд. Начинай сразу с описания, без вводных конструкций и общих фраз."},
			{Role: "user", Content: prompt},
		},
	}

	for attempt := 1; attempt <= defaultAttempts; attempt++ {
		desc, err := d.request(ctx, req)
		if err == nil {
			if cleaned := cleanDescription(desc); cleaned != "" {
				return cleaned
			}
			logger.Debug(ctx, "ai", "describe.too_short",
				slog.String("dish", logger.SanitizeLimit(dishName, 64)),
				slog.Int("attempt", attempt),
			)
		} else {
			logger.Warn(ctx, "ai", "describe.fail",
				slog.String("dish", logger.SanitizeLimit(dishName, 64)),
				slog.Int("attempt", attempt),
				slog.String("err", err.Error()),
			)
			if !netutil.ShouldRetry(err) {
				break
			}
		}
		if attempt < defaultAttempts {
			select {
			case <-ctx.Done():
				return Placeholder
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}
	}
	return Placeholder
}

func (d *Describer) request(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+d.cfg.APIKey)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("completion status: %s", resp.Status)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// cleanDescription strips model artifacts and rejects answers too short
// to be a real description.
func cleanDescription(raw string) string {
	cleaned := strings.TrimSpace(junkRe.ReplaceAllString(raw, ""))
	if len(strings.Fields(cleaned)) < 6 || !strings.Contains(cleaned, ".") {
		return ""
	}
	return cleaned
}
