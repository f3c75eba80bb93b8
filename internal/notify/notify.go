// Package notify fans reminder notifications out to the configured
// sinks. Sink failures are logged, never fatal: a reminder the user
// cannot see on one channel still lands on the others.
package notify

import (
	"log"
	"time"

	"github.com/gofrs/uuid"
)

// Notification carries everything a sink needs to render a reminder.
// Tag is the owning task id and doubles as the dedup key for sinks that
// coalesce (the desktop channel replaces an undismissed notification
// bearing the same tag).
type Notification struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Tag         uuid.UUID `json:"tag"`
	ReminderID  uuid.UUID `json:"reminder_id"`
	SnoozeCount int       `json:"snooze_count"`
	SentAt      time.Time `json:"sent_at"`
}

type Dispatcher interface {
	Dispatch(n Notification)
}

type Sink interface {
	Name() string
	Deliver(n Notification) error
}

// Fanout delivers to every sink in order. It is the production
// Dispatcher.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Dispatch(n Notification) {
	if n.SentAt.IsZero() {
		n.SentAt = time.Now()
	}
	for _, s := range f.sinks {
		if err := s.Deliver(n); err != nil {
			log.Printf("notify: %s sink failed: %v", s.Name(), err)
		}
	}
}
