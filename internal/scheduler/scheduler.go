// Package scheduler scans the task cache for due reminders, fires each
// at most once, and owns the per-reminder snooze timers.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/notify"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/remotestore"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/taskcache"
)

const (
	// DefaultScanInterval is how often the cache is scanned for due
	// reminders.
	DefaultScanInterval = 30 * time.Second
	// DefaultFireWindow is the trailing window a reminder must fall in
	// to fire. It must exceed the scan interval so nothing is skipped
	// between scans; anything older is treated as missed and skipped.
	DefaultFireWindow = 60 * time.Second
	// DefaultSnoozeDelay is how long a snoozed reminder waits before
	// re-notifying.
	DefaultSnoozeDelay = 5 * time.Minute
)

var (
	ErrNotActive = fmt.Errorf("scheduler: reminder is not active")
)

type Scheduler struct {
	cache    *taskcache.Cache
	store    remotestore.Store // nil disables remote persistence of the triggered flag
	notifier notify.Dispatcher

	scanInterval time.Duration
	fireWindow   time.Duration
	snoozeDelay  time.Duration
	nowFn        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	running      bool
	active       map[uuid.UUID]*models.ActiveReminder
	snoozeTimers map[uuid.UUID]*time.Timer

	scanCount  int64
	firedCount int64
}

type Option func(*Scheduler)

func WithIntervals(scan, window, snooze time.Duration) Option {
	return func(s *Scheduler) {
		if scan > 0 {
			s.scanInterval = scan
		}
		if window > 0 {
			s.fireWindow = window
		}
		if snooze > 0 {
			s.snoozeDelay = snooze
		}
	}
}

func New(cache *taskcache.Cache, store remotestore.Store, notifier notify.Dispatcher, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cache:        cache,
		store:        store,
		notifier:     notifier,
		scanInterval: DefaultScanInterval,
		fireWindow:   DefaultFireWindow,
		snoozeDelay:  DefaultSnoozeDelay,
		nowFn:        time.Now,
		ctx:          ctx,
		cancel:       cancel,
		active:       make(map[uuid.UUID]*models.ActiveReminder),
		snoozeTimers: make(map[uuid.UUID]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.loop()
	log.Printf("scheduler: started (scan every %v, fire window %v)", s.scanInterval, s.fireWindow)
}

// Stop cancels the scan loop and every outstanding snooze timer. No
// notification fires after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	for id, timer := range s.snoozeTimers {
		timer.Stop()
		delete(s.snoozeTimers, id)
	}
	s.mu.Unlock()

	s.cancel()
	log.Printf("scheduler: stopped")
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.ScanOnce()
		case <-s.ctx.Done():
			return
		}
	}
}

// ScanOnce walks all non-completed tasks and fires reminders whose time
// fell inside the trailing window. Firing is idempotent against
// repeated scans: an already-active reminder id never fires twice.
func (s *Scheduler) ScanOnce() int {
	now := s.nowFn()
	fired := 0

	for _, task := range s.cache.Snapshot() {
		if task.IsCompleted() {
			continue
		}
		for _, rem := range task.Reminders {
			if rem.Triggered {
				continue
			}
			// Due when now-window < time <= now. Older reminders were
			// missed while the app was closed and stay silent.
			if rem.Time.After(now) || !rem.Time.After(now.Add(-s.fireWindow)) {
				continue
			}
			if s.fire(rem, task, now) {
				fired++
			}
		}
	}

	s.mu.Lock()
	s.scanCount++
	s.firedCount += int64(fired)
	s.dropOrphansLocked()
	s.mu.Unlock()

	return fired
}

func (s *Scheduler) fire(rem models.Reminder, task models.Task, now time.Time) bool {
	s.mu.Lock()
	if _, dup := s.active[rem.ID]; dup {
		s.mu.Unlock()
		return false
	}
	s.active[rem.ID] = &models.ActiveReminder{
		ReminderID:   rem.ID,
		TaskID:       task.ID,
		TaskTitle:    task.Title,
		ReminderTime: rem.Time,
		FiredAt:      now,
	}
	s.mu.Unlock()

	s.markTriggered(task.ID, rem.ID)

	s.notifier.Dispatch(notify.Notification{
		Title:      task.Title,
		Body:       reminderBody(rem, task),
		Tag:        task.ID,
		ReminderID: rem.ID,
		SentAt:     now,
	})
	return true
}

// markTriggered flips the flag in the cache and pushes the task to the
// remote store fire-and-forget. A persistence failure never blocks or
// undoes the local fire; the scan window keeps a stale flag from
// refiring long after reload.
func (s *Scheduler) markTriggered(taskID, reminderID uuid.UUID) {
	s.cache.Patch(taskID, func(t *models.Task) {
		for i := range t.Reminders {
			if t.Reminders[i].ID == reminderID {
				t.Reminders[i].Triggered = true
			}
		}
	})

	if s.store == nil {
		return
	}
	task, ok := s.cache.Get(taskID)
	if !ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
		defer cancel()
		if err := s.store.UpdateTask(ctx, taskID, task); err != nil {
			log.Printf("scheduler: persist triggered flag for task %s: %v", taskID, err)
		}
	}()
}

// Snooze re-arms a fired reminder: the previous snooze timer (if any)
// is cancelled so only the most recent one is ever live.
func (s *Scheduler) Snooze(reminderID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ar, ok := s.active[reminderID]
	if !ok {
		return 0, ErrNotActive
	}
	ar.SnoozeCount++

	if timer, ok := s.snoozeTimers[reminderID]; ok {
		timer.Stop()
	}
	count := ar.SnoozeCount
	s.snoozeTimers[reminderID] = time.AfterFunc(s.snoozeDelay, func() {
		s.renotify(reminderID)
	})

	return count, nil
}

func (s *Scheduler) renotify(reminderID uuid.UUID) {
	s.mu.Lock()
	ar, ok := s.active[reminderID]
	if !ok || !s.running {
		s.mu.Unlock()
		return
	}
	n := notify.Notification{
		Title:       ar.TaskTitle,
		Body:        fmt.Sprintf("Snoozed reminder for %q", ar.TaskTitle),
		Tag:         ar.TaskID,
		ReminderID:  ar.ReminderID,
		SnoozeCount: ar.SnoozeCount,
		SentAt:      s.nowFn(),
	}
	delete(s.snoozeTimers, reminderID)
	s.mu.Unlock()

	s.notifier.Dispatch(n)
}

// Dismiss removes the reminder from the active set permanently and
// cancels any pending snooze timer.
func (s *Scheduler) Dismiss(reminderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[reminderID]; !ok {
		return ErrNotActive
	}
	if timer, ok := s.snoozeTimers[reminderID]; ok {
		timer.Stop()
		delete(s.snoozeTimers, reminderID)
	}
	delete(s.active, reminderID)
	return nil
}

// dropOrphansLocked discards active reminders whose task no longer
// exists in the cache (deleted or filtered out by a reload).
func (s *Scheduler) dropOrphansLocked() {
	for id, ar := range s.active {
		if _, ok := s.cache.Get(ar.TaskID); ok {
			continue
		}
		if timer, ok := s.snoozeTimers[id]; ok {
			timer.Stop()
			delete(s.snoozeTimers, id)
		}
		delete(s.active, id)
	}
}

// ActiveReminders returns the fired-but-undismissed set, oldest first.
func (s *Scheduler) ActiveReminders() []models.ActiveReminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ActiveReminder, 0, len(s.active))
	for _, ar := range s.active {
		out = append(out, *ar)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FiredAt.Before(out[j].FiredAt)
	})
	return out
}

func (s *Scheduler) Stats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]interface{}{
		"running":        s.running,
		"active":         len(s.active),
		"pending_snooze": len(s.snoozeTimers),
		"scans":          s.scanCount,
		"fired":          s.firedCount,
	}
}

func reminderBody(rem models.Reminder, task models.Task) string {
	switch rem.Type {
	case models.ReminderOneDayBefore:
		return fmt.Sprintf("%q is due tomorrow", task.Title)
	case models.ReminderOneHourBefore:
		return fmt.Sprintf("%q is due in an hour", task.Title)
	case models.ReminderCustom:
		return fmt.Sprintf("Reminder for %q", task.Title)
	default:
		return fmt.Sprintf("%q is due now", task.Title)
	}
}
