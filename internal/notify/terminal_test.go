package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/notexe/tab-reminder/internal/host"
	"github.com/notexe/tab-reminder/internal/ui"
)

func dismissOpts(label string) host.NotificationOptions {
	return host.NotificationOptions{
		Type:    host.NotificationBasic,
		Title:   label,
		Message: label,
		Buttons: []host.Button{{Title: "Dismiss"}},
	}
}

func TestTerminalCreateAndClear(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, ui.NewFormatter(false), zerolog.Nop())

	id, err := term.Create(context.Background(), "tea", dismissOpts("tea"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "tea" {
		t.Fatalf("expected id tea, got %q", id)
	}
	if !strings.Contains(buf.String(), "[tea] tea [0 Dismiss]") {
		t.Fatalf("unexpected output: %q", buf.String())
	}

	ok, err := term.Clear(context.Background(), "tea")
	if err != nil || !ok {
		t.Fatalf("expected clear to succeed, got ok=%v err=%v", ok, err)
	}
	if ok, _ := term.Clear(context.Background(), "tea"); ok {
		t.Fatal("expected second clear to report nothing")
	}
	if len(term.Active()) != 0 {
		t.Fatalf("expected no active notifications, got %v", term.Active())
	}
}

func TestTerminalGeneratesIDWhenEmpty(t *testing.T) {
	term := NewTerminal(&bytes.Buffer{}, ui.NewFormatter(false), zerolog.Nop())

	id, err := term.Create(context.Background(), "", dismissOpts("x"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}
	if active := term.Active(); len(active) != 1 || active[0] != id {
		t.Fatalf("expected %q active, got %v", id, active)
	}
}

func TestTerminalClickDispatches(t *testing.T) {
	term := NewTerminal(&bytes.Buffer{}, ui.NewFormatter(false), zerolog.Nop())

	type click struct {
		id    string
		index int
	}
	var clicks []click
	term.OnButtonClicked(func(id string, index int) { clicks = append(clicks, click{id, index}) })

	if _, err := term.Create(context.Background(), "nap", dismissOpts("nap")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := term.Click("nap", 0); err != nil {
		t.Fatalf("click: %v", err)
	}
	if len(clicks) != 1 || clicks[0] != (click{"nap", 0}) {
		t.Fatalf("unexpected clicks: %+v", clicks)
	}

	if err := term.Click("nap", 1); !errors.Is(err, ErrUnknownButton) {
		t.Fatalf("expected ErrUnknownButton, got %v", err)
	}
	if err := term.Click("missing", 0); !errors.Is(err, ErrUnknownNotification) {
		t.Fatalf("expected ErrUnknownNotification, got %v", err)
	}
}
