// Package host defines the services the reminder popup consumes from its
// environment: alarms, notifications, tabs and outbound HTTP.
//
// Every collaborator is an interface so the scheduler can run against the
// in-process implementations in this module or against test fakes.
package host

import (
	"context"
	"net/http"
	"time"
)

// Alarm is a named, time-triggered registration.
type Alarm struct {
	Name          string    `json:"name"`
	ScheduledTime time.Time `json:"scheduled_time"`
}

// AlarmInfo holds alarm creation options.
type AlarmInfo struct {
	When time.Time
}

// AlarmListener receives fired alarms.
type AlarmListener func(Alarm)

// TimerService schedules named one-shot alarms. Creating an alarm with a
// name that is already pending replaces the pending one.
type TimerService interface {
	Create(name string, info AlarmInfo) error
	Get(name string) (Alarm, bool)
	GetAll() []Alarm
	Clear(name string) bool
	OnAlarm(listener AlarmListener)
}

// Notification types.
const (
	NotificationBasic = "basic"
)

// Button is a notification action button.
type Button struct {
	Title   string `json:"title"`
	IconURL string `json:"icon_url,omitempty"`
}

// NotificationOptions describes a notification to display.
type NotificationOptions struct {
	Type      string    `json:"type"`
	IconURL   string    `json:"icon_url,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	EventTime time.Time `json:"event_time"`
	Buttons   []Button  `json:"buttons,omitempty"`
}

// ButtonListener receives button clicks as (notification id, button index).
type ButtonListener func(notificationID string, buttonIndex int)

// NotificationService displays and clears user-facing alerts.
type NotificationService interface {
	// Create displays a notification and returns its id. An empty id asks
	// the service to generate one.
	Create(ctx context.Context, id string, opts NotificationOptions) (string, error)
	Clear(ctx context.Context, id string) (bool, error)
	OnButtonClicked(listener ButtonListener)
}

// Tab is a browser tab as reported by the host.
type Tab struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

// QueryInfo filters a tab query.
type QueryInfo struct {
	Active        bool
	CurrentWindow bool
}

// TabService answers tab queries.
type TabService interface {
	Query(ctx context.Context, q QueryInfo) ([]Tab, error)
}

// HTTPDoer is the outbound HTTP capability. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
