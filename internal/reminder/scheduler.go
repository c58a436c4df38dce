// Package reminder turns a label into a one-shot alarm and, once the alarm
// fires, into a dismissible notification.
package reminder

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/notexe/tab-reminder/internal/host"
)

// Scheduler wires the timer and notification services together. Every
// host call is fire-and-forget: failures are logged and dropped.
type Scheduler struct {
	timer    host.TimerService
	notifier host.NotificationService
	opts     Options
	now      func() time.Time
	logger   zerolog.Logger
}

// NewScheduler creates a Scheduler. Call Bind to start reacting to alarms
// and button clicks.
func NewScheduler(timer host.TimerService, notifier host.NotificationService, opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	return &Scheduler{
		timer:    timer,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
		logger:   logger.With().Str("component", "reminder").Logger(),
	}
}

// Bind registers the scheduler's handlers with its collaborators.
func (s *Scheduler) Bind() {
	s.timer.OnAlarm(s.OnFire)
	s.notifier.OnButtonClicked(s.OnNotificationAction)
}

// Schedule asks the timer for an alarm named label, firing after the
// configured delay. The label is not validated.
func (s *Scheduler) Schedule(label string) Reminder {
	r := Reminder{Label: label, FireAt: s.now().Add(s.opts.Delay)}
	if err := s.timer.Create(label, host.AlarmInfo{When: r.FireAt}); err != nil {
		s.logger.Warn().Err(err).Str("label", label).Msg("alarm create failed")
		return r
	}
	s.logger.Info().Str("label", label).Time("fire_at", r.FireAt).Msg("reminder scheduled")
	return r
}

// OnFire shows the notification for a fired alarm.
func (s *Scheduler) OnFire(alarm host.Alarm) {
	opts := host.NotificationOptions{
		Type:      host.NotificationBasic,
		IconURL:   s.opts.IconURL,
		Title:     alarm.Name,
		Message:   alarm.Name,
		EventTime: alarm.ScheduledTime,
		Buttons: []host.Button{
			{Title: "Dismiss", IconURL: s.opts.DismissIconURL},
		},
	}

	id, err := s.notifier.Create(context.Background(), alarm.Name, opts)
	if err != nil {
		s.logger.Warn().Err(err).Str("alarm", alarm.Name).Msg("notification create failed")
		return
	}
	s.logger.Info().Str("notification_id", id).Msg("notification shown")
}

// OnNotificationAction clears the notification when Dismiss is pressed.
// Other button indexes are ignored.
func (s *Scheduler) OnNotificationAction(notificationID string, buttonIndex int) {
	if buttonIndex != DismissButton {
		return
	}
	if _, err := s.notifier.Clear(context.Background(), notificationID); err != nil {
		s.logger.Warn().Err(err).Str("notification_id", notificationID).Msg("notification clear failed")
	}
}

// Pending lists alarms that have not fired yet.
func (s *Scheduler) Pending() []host.Alarm {
	return s.timer.GetAll()
}
