package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Notification backends.
const (
	BackendTerminal = "terminal"
	BackendTelegram = "telegram"
)

const envPrefix = "TABREMINDER_"

type Config struct {
	Reminder ReminderConfig `koanf:"reminder"`
	Search   SearchConfig   `koanf:"search"`
	Tabs     TabsConfig     `koanf:"tabs"`
	Notify   NotifyConfig   `koanf:"notify"`
	UI       UIConfig       `koanf:"ui"`
	Log      LogConfig      `koanf:"log"`
}

type ReminderConfig struct {
	DelayMS        int    `koanf:"delay_ms" validate:"gt=0"`
	IconURL        string `koanf:"icon_url"`
	DismissIconURL string `koanf:"dismiss_icon_url"`
}

// Delay returns the reminder delay as a duration.
func (r ReminderConfig) Delay() time.Duration {
	return time.Duration(r.DelayMS) * time.Millisecond
}

type SearchConfig struct {
	APIKey   string `koanf:"api_key"`
	EngineID string `koanf:"engine_id"`
	BaseURL  string `koanf:"base_url" validate:"required,url"`
	Timeout  int    `koanf:"timeout" validate:"gt=0"`
}

type TabsConfig struct {
	DevToolsURL string `koanf:"devtools_url" validate:"required,url"`
	Timeout     int    `koanf:"timeout" validate:"gt=0"`
}

type NotifyConfig struct {
	Backend  string         `koanf:"backend" validate:"oneof=terminal telegram"`
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	BotToken    string `koanf:"bot_token"`
	ChatID      string `koanf:"chat_id"`
	BaseURL     string `koanf:"base_url" validate:"omitempty,url"`
	RatePerSec  int    `koanf:"rate_per_sec" validate:"gte=0"`
	PollTimeout int    `koanf:"poll_timeout" validate:"gte=0,lte=50"`
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
	ShowStatus    bool `koanf:"show_status"`
}

type LogConfig struct {
	Level   string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error off disabled"`
	Console bool   `koanf:"console"`
}

// Load merges defaults, the YAML file at configPath (if it exists) and
// environment variables. TABREMINDER_SECTION__KEY maps to section.key.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Well-known credential variables
	for envKey, key := range map[string]string{
		"GOOGLE_API_KEY":     "search.api_key",
		"GOOGLE_CSE_ID":      "search.engine_id",
		"TELEGRAM_BOT_TOKEN": "notify.telegram.bot_token",
		"TELEGRAM_CHAT_ID":   "notify.telegram.chat_id",
	} {
		if v := os.Getenv(envKey); v != "" {
			k.Set(key, v)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(expandPath(path)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Notify.Backend == BackendTelegram {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("telegram bot token is required (set TELEGRAM_BOT_TOKEN or notify.telegram.bot_token)")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("telegram chat id is required (set TELEGRAM_CHAT_ID or notify.telegram.chat_id)")
		}
		// button presses are matched against the numeric chat id
		if _, err := strconv.ParseInt(c.Notify.Telegram.ChatID, 10, 64); err != nil {
			return fmt.Errorf("telegram chat id must be numeric, got %q", c.Notify.Telegram.ChatID)
		}
	}

	return nil
}

// HasSearchCredentials reports whether image search can be used.
func (c *Config) HasSearchCredentials() bool {
	return c.Search.APIKey != "" && c.Search.EngineID != ""
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
