// Command mcp-reminder serves the reminder popup's operations over MCP.
//
// Usage:
//
//	./mcp-reminder          # Start MCP server (stdio)
//	./mcp-reminder --help   # Show help
//
// Terminal notifications go to stderr so they never mix with the protocol
// stream on stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/tab-reminder/internal/alarms"
	"github.com/notexe/tab-reminder/internal/config"
	"github.com/notexe/tab-reminder/internal/imagesearch"
	"github.com/notexe/tab-reminder/internal/logging"
	"github.com/notexe/tab-reminder/internal/mcpserver"
	"github.com/notexe/tab-reminder/internal/notify"
	"github.com/notexe/tab-reminder/internal/reminder"
	"github.com/notexe/tab-reminder/internal/tabs"
	"github.com/notexe/tab-reminder/internal/ui"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	if err := config.LoadDotEnv(config.GetDefaultDotEnvPath()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	configPath := os.Getenv("TABREMINDER_CONFIG")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level}, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	timer := alarms.New(logger)
	defer timer.Close()

	notifier, err := notify.NewFromConfig(cfg.Notify, os.Stderr, ui.NewFormatter(false), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create notifier: %v\n", err)
		os.Exit(1)
	}
	if tg, ok := notifier.(*notify.Telegram); ok {
		go tg.Poll(ctx)
	}

	scheduler := reminder.NewScheduler(timer, notifier, reminder.Options{
		Delay:          cfg.Reminder.Delay(),
		IconURL:        cfg.Reminder.IconURL,
		DismissIconURL: cfg.Reminder.DismissIconURL,
	}, logger)
	scheduler.Bind()

	lookup := tabs.NewLookup(tabs.NewDevTools(nil, cfg.Tabs.DevToolsURL, cfg.Tabs.Timeout))

	var search mcpserver.ImageSearcher
	if cfg.HasSearchCredentials() {
		search = imagesearch.NewClient(nil, imagesearch.Config{
			APIKey:   cfg.Search.APIKey,
			EngineID: cfg.Search.EngineID,
			BaseURL:  cfg.Search.BaseURL,
			Timeout:  cfg.Search.Timeout,
		})
	}

	s := mcpserver.NewServer(scheduler, lookup, search)

	logger.Info().Str("notify", cfg.Notify.Backend).Msg("serving MCP over stdio")
	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Tab Reminder Server - one-shot reminders via MCP protocol

USAGE:
    mcp-reminder          Start MCP server (communicates via stdio)
    mcp-reminder --help   Show this help

ENVIRONMENT:
    TABREMINDER_CONFIG    Path to config file
                          Default: ~/.tab-reminder/config.yaml
    GOOGLE_API_KEY        Custom Search API key (enables search_image)
    GOOGLE_CSE_ID         Custom Search engine id
    TELEGRAM_BOT_TOKEN    Bot token for the telegram backend
    TELEGRAM_CHAT_ID      Chat to notify

TOOLS:
    schedule_reminder     Schedule a reminder (label)
    list_alarms           List reminders that have not fired
    dismiss_notification  Press a notification button (id, button)
    current_tab_url       URL of the active browser tab
    search_image          Thumbnail for a search term (term)

CONFIGURATION:
    Add to your MCP client config:
    {
      "mcpServers": {
        "tab-reminder": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}
