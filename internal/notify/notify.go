// Package notify implements host.NotificationService for a terminal and
// for a Telegram chat.
package notify

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/notexe/tab-reminder/internal/host"
)

var (
	ErrUnknownNotification = errors.New("notify: unknown notification")
	ErrUnknownButton       = errors.New("notify: unknown button")
)

// listeners is the button-click fan-out shared by the backends.
type listeners struct {
	mu  sync.Mutex
	fns []host.ButtonListener
}

func (l *listeners) add(fn host.ButtonListener) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.fns = append(l.fns, fn)
	l.mu.Unlock()
}

func (l *listeners) dispatch(id string, index int) {
	l.mu.Lock()
	fns := make([]host.ButtonListener, len(l.fns))
	copy(fns, l.fns)
	l.mu.Unlock()

	for _, fn := range fns {
		fn(id, index)
	}
}

// newID returns id, or a fresh one when id is empty.
func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
