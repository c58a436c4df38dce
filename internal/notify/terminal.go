package notify

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/notexe/tab-reminder/internal/host"
	"github.com/notexe/tab-reminder/internal/ui"
)

// Terminal prints notifications as cards. Button presses come in through
// Click, typically from the REPL's /dismiss command.
type Terminal struct {
	out       io.Writer
	formatter *ui.Formatter
	logger    zerolog.Logger

	mu     sync.Mutex
	active map[string]host.NotificationOptions

	listeners listeners
}

var _ host.NotificationService = (*Terminal)(nil)

func NewTerminal(out io.Writer, formatter *ui.Formatter, logger zerolog.Logger) *Terminal {
	return &Terminal{
		out:       out,
		formatter: formatter,
		logger:    logger.With().Str("component", "notify.terminal").Logger(),
		active:    make(map[string]host.NotificationOptions),
	}
}

// Create shows a notification. An existing notification with the same id
// is replaced.
func (t *Terminal) Create(_ context.Context, id string, opts host.NotificationOptions) (string, error) {
	id = newID(id)

	t.mu.Lock()
	t.active[id] = opts
	t.mu.Unlock()

	if _, err := fmt.Fprintln(t.out, t.formatter.FormatNotification(id, opts)); err != nil {
		return "", fmt.Errorf("failed to render notification: %w", err)
	}
	return id, nil
}

// Clear removes a notification and reports whether it was showing.
func (t *Terminal) Clear(_ context.Context, id string) (bool, error) {
	t.mu.Lock()
	_, ok := t.active[id]
	delete(t.active, id)
	t.mu.Unlock()

	if ok {
		fmt.Fprintln(t.out, t.formatter.FormatSystem(fmt.Sprintf("Dismissed %q", id)))
	}
	return ok, nil
}

func (t *Terminal) OnButtonClicked(listener host.ButtonListener) {
	t.listeners.add(listener)
}

// Click presses button index on notification id.
func (t *Terminal) Click(id string, index int) error {
	t.mu.Lock()
	opts, ok := t.active[id]
	t.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNotification, id)
	}
	if index < 0 || index >= len(opts.Buttons) {
		return fmt.Errorf("%w: %d", ErrUnknownButton, index)
	}

	t.logger.Debug().Str("notification_id", id).Int("button", index).Msg("button clicked")
	t.listeners.dispatch(id, index)
	return nil
}

// Active returns the ids of notifications currently showing.
func (t *Terminal) Active() []string {
	t.mu.Lock()
	ids := make([]string, 0, len(t.active))
	for id := range t.active {
		ids = append(ids, id)
	}
	t.mu.Unlock()

	sort.Strings(ids)
	return ids
}
