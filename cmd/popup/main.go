// Command popup is a terminal reminder popup: type a label, and a
// notification with a Dismiss button appears a moment later.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/notexe/tab-reminder/internal/alarms"
	"github.com/notexe/tab-reminder/internal/config"
	"github.com/notexe/tab-reminder/internal/imagesearch"
	"github.com/notexe/tab-reminder/internal/logging"
	"github.com/notexe/tab-reminder/internal/notify"
	"github.com/notexe/tab-reminder/internal/reminder"
	"github.com/notexe/tab-reminder/internal/repl"
	"github.com/notexe/tab-reminder/internal/tabs"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	envFile := flag.String("env-file", config.GetDefaultDotEnvPath(), "Path to a .env file")
	backend := flag.String("notify", "", "Notification backend (terminal, telegram)")
	delay := flag.Duration("delay", 0, "Reminder delay (overrides config)")
	devtools := flag.String("devtools", "", "Browser remote debugging URL (overrides config)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Apply CLI flag overrides
	if *backend != "" {
		cfg.Notify.Backend = *backend
	}
	if *delay > 0 {
		cfg.Reminder.DelayMS = int(delay.Milliseconds())
	}
	if *devtools != "" {
		cfg.Tabs.DevToolsURL = *devtools
	}
	if *noColor {
		cfg.UI.ColoredOutput = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	replInstance, err := repl.NewREPL(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating REPL: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Console: cfg.Log.Console}, replInstance.Stdout())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	timer := alarms.New(logger)
	defer timer.Close()

	notifier, err := notify.NewFromConfig(cfg.Notify, replInstance.Stdout(), replInstance.Formatter(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating notifier: %v\n", err)
		os.Exit(1)
	}

	scheduler := reminder.NewScheduler(timer, notifier, reminder.Options{
		Delay:          cfg.Reminder.Delay(),
		IconURL:        cfg.Reminder.IconURL,
		DismissIconURL: cfg.Reminder.DismissIconURL,
	}, logger)
	scheduler.Bind()

	deps := repl.Deps{
		Scheduler: scheduler,
		Tabs:      tabs.NewLookup(tabs.NewDevTools(nil, cfg.Tabs.DevToolsURL, cfg.Tabs.Timeout)),
	}

	switch n := notifier.(type) {
	case *notify.Terminal:
		deps.Clicker = n
	case *notify.Telegram:
		go func() {
			if err := n.Poll(ctx); err != nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	if cfg.HasSearchCredentials() {
		deps.Search = imagesearch.NewClient(nil, imagesearch.Config{
			APIKey:   cfg.Search.APIKey,
			EngineID: cfg.Search.EngineID,
			BaseURL:  cfg.Search.BaseURL,
			Timeout:  cfg.Search.Timeout,
		})
	}

	replInstance.Attach(deps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
		replInstance.Stop()
	}()

	if err := replInstance.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
