package notify

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/notexe/tab-reminder/internal/config"
	"github.com/notexe/tab-reminder/internal/host"
	"github.com/notexe/tab-reminder/internal/ui"
)

// NewFromConfig creates the notification backend named by cfg.Backend.
// Terminal notifications are written to out.
func NewFromConfig(cfg config.NotifyConfig, out io.Writer, formatter *ui.Formatter, logger zerolog.Logger) (host.NotificationService, error) {
	switch cfg.Backend {
	case config.BackendTerminal, "":
		return NewTerminal(out, formatter, logger), nil

	case config.BackendTelegram:
		return NewTelegram(nil, TelegramConfig{
			BotToken:    cfg.Telegram.BotToken,
			ChatID:      cfg.Telegram.ChatID,
			BaseURL:     cfg.Telegram.BaseURL,
			RatePerSec:  cfg.Telegram.RatePerSec,
			PollTimeout: cfg.Telegram.PollTimeout,
		}, logger), nil

	default:
		return nil, fmt.Errorf("unknown notification backend: %s (supported: %s, %s)",
			cfg.Backend, config.BackendTerminal, config.BackendTelegram)
	}
}
