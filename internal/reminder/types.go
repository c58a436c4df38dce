package reminder

import "time"

// DefaultDelay is how far in the future a submitted reminder fires.
const DefaultDelay = time.Second

// DismissButton is the index of the only action button on a reminder
// notification.
const DismissButton = 0

// Reminder is a label waiting on its alarm. The label doubles as the alarm
// name and the notification id.
type Reminder struct {
	Label  string    `json:"label"`
	FireAt time.Time `json:"fire_at"`
}

// Options configures a Scheduler.
type Options struct {
	Delay          time.Duration
	IconURL        string
	DismissIconURL string
}
