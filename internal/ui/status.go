package ui

import (
	"fmt"
	"io"
	"sync"
)

// StatusDisplay is the popup's single status line.
type StatusDisplay struct {
	formatter *Formatter
	enabled   bool
	out       io.Writer

	mu   sync.Mutex
	text string
}

func NewStatusDisplay(formatter *Formatter, out io.Writer, enabled bool) *StatusDisplay {
	return &StatusDisplay{
		formatter: formatter,
		enabled:   enabled,
		out:       out,
	}
}

// Render replaces the status text and prints it on its own line.
func (s *StatusDisplay) Render(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()

	if !s.enabled {
		return
	}
	fmt.Fprintln(s.out, s.formatter.FormatStatus(text))
}

// Show prints a transient status without a newline.
func (s *StatusDisplay) Show(message string) {
	if !s.enabled {
		return
	}
	fmt.Fprint(s.out, "\r\033[K")
	fmt.Fprint(s.out, s.formatter.FormatStatus(message))
}

// Hide erases a transient status.
func (s *StatusDisplay) Hide() {
	if !s.enabled {
		return
	}
	fmt.Fprint(s.out, "\r\033[K")
}

// Text returns the last rendered status.
func (s *StatusDisplay) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}
