package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/notexe/tab-reminder/internal/host"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Medium gray
			Italic(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")). // Soft blue border
			Padding(0, 1)
)

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

func (f *Formatter) FormatError(err error) string {
	prefix := "Error: "
	if f.colored {
		prefix = ErrorStyle.Render("Error: ")
	}
	return prefix + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	if f.colored {
		return InfoStyle.Render(info)
	}
	return info
}

func (f *Formatter) FormatSystem(msg string) string {
	if f.colored {
		return SystemStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) FormatStatus(msg string) string {
	if f.colored {
		return StatusStyle.Render(msg)
	}
	return msg
}

// FormatWelcome renders the popup header with the current tab, if known.
func (f *Formatter) FormatWelcome(tabURL string) string {
	if tabURL == "" {
		tabURL = "(unknown)"
	}

	if f.colored {
		body := strings.Join([]string{
			HeaderStyle.Render("Tab Reminder"),
			DimStyle.Render("Tab: ") + InfoStyle.Render(tabURL),
			"",
			StatusStyle.Render("Type a reminder and press Enter. /help for commands"),
		}, "\n")
		return "\n" + CardStyle.Render(body) + "\n"
	}

	lines := []string{
		"",
		"Tab Reminder",
		fmt.Sprintf("Tab: %s", tabURL),
		"Type a reminder and press Enter. /help for commands",
		"",
	}
	return strings.Join(lines, "\n")
}

const helpMarkdown = `# Commands

| Command | Description |
|---|---|
| *text* | Remind me about *text* in a second |
| /tab | Show the active tab's URL |
| /image <term> | Look up a thumbnail for a term |
| /pending | List alarms that have not fired |
| /dismiss <id> | Press Dismiss on a notification |
| /help | Show this help |
| /quit | Exit |

Ctrl+C or Ctrl+D to exit.
`

// FormatHelp renders the command reference. Colored output goes through
// glamour; plain output is the raw markdown.
func (f *Formatter) FormatHelp() string {
	if !f.colored {
		return helpMarkdown
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return helpMarkdown
	}

	rendered, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return rendered
}

// FormatPrompt returns the reminder input prompt.
func (f *Formatter) FormatPrompt() string {
	if f.colored {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Bold(true).
			Render("Remind me about: ")
	}
	return "Remind me about: "
}

// FormatNotification renders a notification card with its buttons
// numbered by index.
func (f *Formatter) FormatNotification(id string, opts host.NotificationOptions) string {
	when := ""
	if !opts.EventTime.IsZero() {
		when = opts.EventTime.Local().Format("15:04:05")
	}

	if f.colored {
		lines := []string{HeaderStyle.Render(opts.Title)}
		if opts.Message != "" && opts.Message != opts.Title {
			lines = append(lines, opts.Message)
		}
		if when != "" {
			lines = append(lines, DimStyle.Render(when+" • "+id))
		}
		if len(opts.Buttons) > 0 {
			buttons := make([]string, 0, len(opts.Buttons))
			for i, b := range opts.Buttons {
				buttons = append(buttons, ButtonStyle.Render(fmt.Sprintf("%d %s", i, b.Title)))
			}
			lines = append(lines, "", strings.Join(buttons, " "))
		}
		return CardStyle.Render(strings.Join(lines, "\n"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", id, opts.Title)
	if opts.Message != "" && opts.Message != opts.Title {
		fmt.Fprintf(&b, ": %s", opts.Message)
	}
	if when != "" {
		fmt.Fprintf(&b, " (%s)", when)
	}
	for i, btn := range opts.Buttons {
		fmt.Fprintf(&b, " [%d %s]", i, btn.Title)
	}
	return b.String()
}

// FormatAlarms lists pending alarms with their remaining time.
func (f *Formatter) FormatAlarms(alarms []host.Alarm, now time.Time) string {
	if len(alarms) == 0 {
		return f.FormatInfo("No pending reminders.")
	}

	lines := make([]string, 0, len(alarms))
	for _, a := range alarms {
		left := a.ScheduledTime.Sub(now).Round(time.Millisecond)
		if left < 0 {
			left = 0
		}
		name := a.Name
		if f.colored {
			name = SuccessStyle.Render(name)
		}
		lines = append(lines, fmt.Sprintf("  %s in %s", name, left))
	}
	return strings.Join(lines, "\n")
}

// FormatImage describes an image search hit.
func (f *Formatter) FormatImage(url string, width, height int) string {
	size := fmt.Sprintf("%dx%d", width, height)
	if f.colored {
		return InfoStyle.Render(url) + " " + DimStyle.Render(size)
	}
	return url + " " + size
}
