package repl

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chzyer/readline"

	"github.com/notexe/tab-reminder/internal/config"
	"github.com/notexe/tab-reminder/internal/host"
	"github.com/notexe/tab-reminder/internal/reminder"
	"github.com/notexe/tab-reminder/internal/ui"
)

// Scheduler is the part of reminder.Scheduler the prompt drives.
type Scheduler interface {
	Schedule(label string) reminder.Reminder
	Pending() []host.Alarm
}

// TabLookup resolves the active tab's URL, blocking or through callbacks.
type TabLookup interface {
	CurrentTabURL(ctx context.Context) (string, error)
	GetCurrentTabURL(ctx context.Context, callback func(url string), onError func(err error))
}

// ImageSearcher looks up a thumbnail for a term.
type ImageSearcher interface {
	GetImageURL(ctx context.Context, term string, onFound func(url string, width, height int), onError func(reason string))
}

// Clicker presses a notification button. Only the terminal backend has one.
type Clicker interface {
	Click(id string, index int) error
}

// Deps are the collaborators behind the prompt. Search and Clicker may be nil.
type Deps struct {
	Scheduler Scheduler
	Tabs      TabLookup
	Search    ImageSearcher
	Clicker   Clicker
}

type REPL struct {
	deps      Deps
	config    *config.Config
	rl        *readline.Instance
	out       io.Writer
	formatter *ui.Formatter
	status    *ui.StatusDisplay
	now       func() time.Time
}

// NewREPL sets up the terminal. Call Attach before Start: the notifier
// needs Stdout, and the scheduler needs the notifier.
func NewREPL(cfg *config.Config) (*REPL, error) {
	rl, err := setupReadline(ui.NewFormatter(cfg.UI.ColoredOutput).FormatPrompt())
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	r := newREPL(Deps{}, cfg, rl.Stdout())
	r.rl = rl
	return r, nil
}

// Attach sets the collaborators behind the prompt.
func (r *REPL) Attach(deps Deps) {
	r.deps = deps
}

func newREPL(deps Deps, cfg *config.Config, out io.Writer) *REPL {
	formatter := ui.NewFormatter(cfg.UI.ColoredOutput)
	return &REPL{
		deps:      deps,
		config:    cfg,
		out:       out,
		formatter: formatter,
		status:    ui.NewStatusDisplay(formatter, out, cfg.UI.ShowStatus),
		now:       time.Now,
	}
}

// Stdout is where output must go so it does not clobber the prompt.
func (r *REPL) Stdout() io.Writer {
	return r.out
}

// Formatter returns the formatter the prompt renders with.
func (r *REPL) Formatter() *ui.Formatter {
	return r.formatter
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	if r.deps.Scheduler == nil || r.deps.Tabs == nil {
		return fmt.Errorf("repl started without a scheduler or tab lookup")
	}

	r.displayWelcome(ctx)

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		quit, err := r.handleLine(ctx, input)
		if err != nil {
			r.displayError(err)
		}
		if quit {
			return nil
		}
	}
}

func (r *REPL) Stop() {
	if r.rl != nil {
		r.rl.Close()
	}
}

// handleLine processes one submitted line and reports whether to exit.
func (r *REPL) handleLine(ctx context.Context, input string) (bool, error) {
	if input == "" {
		return false, nil
	}

	isCommand, command, args := parseCommand(input)
	if isCommand {
		return command == "/quit", r.handleCommand(ctx, command, args)
	}

	r.handleReminder(input)
	return false, nil
}

// handleReminder is the form submit: schedule and report.
func (r *REPL) handleReminder(label string) {
	rem := r.deps.Scheduler.Schedule(label)
	r.status.Render(fmt.Sprintf("Reminder %q set for %s", rem.Label, rem.FireAt.Local().Format("15:04:05")))
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "/help":
		r.displayHelp()
		return nil

	case "/tab":
		url, err := r.deps.Tabs.CurrentTabURL(ctx)
		if err != nil {
			return fmt.Errorf("could not read the active tab: %w", err)
		}
		r.displayInfo(url)
		return nil

	case "/image":
		return r.handleImageCommand(ctx, args)

	case "/pending":
		fmt.Fprintln(r.out, r.formatter.FormatAlarms(r.deps.Scheduler.Pending(), r.now()))
		return nil

	case "/dismiss":
		if args == "" {
			return fmt.Errorf("usage: /dismiss <id>")
		}
		if r.deps.Clicker == nil {
			return fmt.Errorf("dismiss is only available with the %s notification backend", config.BackendTerminal)
		}
		return r.deps.Clicker.Click(args, reminder.DismissButton)

	case "/quit":
		fmt.Fprintln(r.out, "\nGoodbye!")
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

func (r *REPL) handleImageCommand(ctx context.Context, term string) error {
	if term == "" {
		return fmt.Errorf("usage: /image <search term>")
	}
	if r.deps.Search == nil {
		return fmt.Errorf("image search is not configured (set GOOGLE_API_KEY and GOOGLE_CSE_ID)")
	}

	r.status.Show("Searching...")

	type result struct {
		url           string
		width, height int
		reason        string
	}
	done := make(chan result, 1)
	r.deps.Search.GetImageURL(ctx, term, func(url string, width, height int) {
		done <- result{url: url, width: width, height: height}
	}, func(reason string) {
		done <- result{reason: reason}
	})

	select {
	case res := <-done:
		r.status.Hide()
		// a failure is reported on the status line only
		if res.reason != "" {
			r.status.Render(res.reason)
			return nil
		}
		fmt.Fprintln(r.out, r.formatter.FormatImage(res.url, res.width, res.height))
		return nil
	case <-ctx.Done():
		r.status.Hide()
		return ctx.Err()
	}
}
