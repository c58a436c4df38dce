package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"reminder": map[string]interface{}{
			"delay_ms":         1000,
			"icon_url":         "icon.png",
			"dismiss_icon_url": "x.png",
		},
		"search": map[string]interface{}{
			"api_key":   "",
			"engine_id": "",
			"base_url":  "https://www.googleapis.com/customsearch/v1",
			"timeout":   30,
		},
		"tabs": map[string]interface{}{
			"devtools_url": "http://localhost:9222",
			"timeout":      5,
		},
		"notify": map[string]interface{}{
			"backend": BackendTerminal,
			"telegram": map[string]interface{}{
				"bot_token":    "",
				"chat_id":      "",
				"base_url":     "https://api.telegram.org",
				"rate_per_sec": 1,
				"poll_timeout": 30,
			},
		},
		"ui": map[string]interface{}{
			"colored_output": true,
			"show_status":    true,
		},
		"log": map[string]interface{}{
			"level":   "warn",
			"console": true,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.tab-reminder/config.yaml"
}

func GetDefaultDotEnvPath() string {
	return ".env"
}
