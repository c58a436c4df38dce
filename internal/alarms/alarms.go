// Package alarms is an in-process timer service keyed by alarm name.
package alarms

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/notexe/tab-reminder/internal/host"
)

var (
	ErrInvalidWhen = errors.New("alarms: invalid alarm time")
	ErrClosed      = errors.New("alarms: service closed")
)

type entry struct {
	alarm host.Alarm
	timer *time.Timer
	seq   uint64
}

// Service holds at most one pending alarm per name. Listeners are invoked
// on the timer goroutine of the alarm that fired.
type Service struct {
	mu        sync.Mutex
	pending   map[string]*entry
	listeners []host.AlarmListener
	seq       uint64
	closed    bool

	now    func() time.Time
	logger zerolog.Logger
}

var _ host.TimerService = (*Service)(nil)

// New creates an empty alarm service.
func New(logger zerolog.Logger) *Service {
	return &Service{
		pending: make(map[string]*entry),
		now:     time.Now,
		logger:  logger.With().Str("component", "alarms").Logger(),
	}
}

// Create schedules an alarm. A pending alarm with the same name is replaced.
// Times in the past fire immediately.
func (s *Service) Create(name string, info host.AlarmInfo) error {
	if info.When.IsZero() {
		return ErrInvalidWhen
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if old, ok := s.pending[name]; ok {
		old.timer.Stop()
		s.logger.Debug().Str("alarm", name).Msg("replacing pending alarm")
	}

	s.seq++
	seq := s.seq
	wait := info.When.Sub(s.now())
	if wait < 0 {
		wait = 0
	}

	e := &entry{
		alarm: host.Alarm{Name: name, ScheduledTime: info.When},
		seq:   seq,
	}
	e.timer = time.AfterFunc(wait, func() { s.fire(name, seq) })
	s.pending[name] = e

	s.logger.Debug().Str("alarm", name).Dur("in", wait).Msg("alarm scheduled")
	return nil
}

// Get returns the pending alarm with the given name.
func (s *Service) Get(name string) (host.Alarm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending[name]
	if !ok {
		return host.Alarm{}, false
	}
	return e.alarm, true
}

// GetAll returns pending alarms ordered by scheduled time.
func (s *Service) GetAll() []host.Alarm {
	s.mu.Lock()
	out := make([]host.Alarm, 0, len(s.pending))
	for _, e := range s.pending {
		out = append(out, e.alarm)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledTime.Equal(out[j].ScheduledTime) {
			return out[i].Name < out[j].Name
		}
		return out[i].ScheduledTime.Before(out[j].ScheduledTime)
	})
	return out
}

// Clear removes a pending alarm. It reports whether one was removed.
func (s *Service) Clear(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending[name]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.pending, name)
	return true
}

// ClearAll removes every pending alarm and returns how many were removed.
func (s *Service) ClearAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	for name, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, name)
	}
	return n
}

// OnAlarm registers a listener for fired alarms.
func (s *Service) OnAlarm(listener host.AlarmListener) {
	if listener == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, listener)
	s.mu.Unlock()
}

// Close stops all pending timers. Create fails afterwards.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.ClearAll()
}

func (s *Service) fire(name string, seq uint64) {
	s.mu.Lock()
	e, ok := s.pending[name]
	// a replaced alarm whose timer already started must not fire
	if !ok || e.seq != seq {
		s.mu.Unlock()
		return
	}
	delete(s.pending, name)
	listeners := make([]host.AlarmListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.logger.Debug().Str("alarm", name).Msg("alarm fired")
	for _, l := range listeners {
		l(e.alarm)
	}
}
