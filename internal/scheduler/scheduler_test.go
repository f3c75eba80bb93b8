package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/notify"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/taskcache"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (d *recordingDispatcher) Dispatch(n notify.Notification) {
	d.mu.Lock()
	d.sent = append(d.sent, n)
	d.mu.Unlock()
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

func (d *recordingDispatcher) last() notify.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent[len(d.sent)-1]
}

func taskWithReminder(offset time.Duration, now time.Time) (models.Task, models.Reminder) {
	taskID := uuid.Must(uuid.NewV4())
	rem := models.Reminder{
		ID:     uuid.Must(uuid.NewV4()),
		TaskID: taskID,
		Time:   now.Add(offset),
		Type:   models.ReminderOnDue,
	}
	task := models.Task{
		ID:        taskID,
		Title:     "standup",
		Priority:  models.PriorityMedium,
		Status:    models.StatusPending,
		CreatedAt: now.Add(-time.Hour),
		Reminders: []models.Reminder{rem},
	}
	return task, rem
}

func newTestScheduler(cache *taskcache.Cache, d notify.Dispatcher, now time.Time) *Scheduler {
	s := New(cache, nil, d)
	s.nowFn = func() time.Time { return now }
	return s
}

func TestScanOnce_WindowBoundaries(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name      string
		offset    time.Duration
		wantFired bool
	}{
		{"30s ago fires", -30 * time.Second, true},
		{"just inside window fires", -59 * time.Second, true},
		{"90s ago is missed, silent", -90 * time.Second, false},
		{"exactly window edge is missed", -60 * time.Second, false},
		{"10s in the future waits", 10 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := taskcache.New()
			task, _ := taskWithReminder(tt.offset, now)
			cache.Insert(task)

			d := &recordingDispatcher{}
			s := newTestScheduler(cache, d, now)

			fired := s.ScanOnce()
			if (fired == 1) != tt.wantFired {
				t.Errorf("fired = %d, wantFired = %v", fired, tt.wantFired)
			}
		})
	}
}

func TestScanOnce_IdempotentWithinWindow(t *testing.T) {
	now := time.Now()
	cache := taskcache.New()
	task, _ := taskWithReminder(-30*time.Second, now)
	cache.Insert(task)

	d := &recordingDispatcher{}
	s := newTestScheduler(cache, d, now)

	first := s.ScanOnce()
	second := s.ScanOnce()

	if first != 1 {
		t.Fatalf("first scan fired %d, want 1", first)
	}
	if second != 0 {
		t.Errorf("second scan fired %d, want 0", second)
	}
	if got := len(s.ActiveReminders()); got != 1 {
		t.Errorf("active reminders = %d, want exactly 1", got)
	}
	if d.count() != 1 {
		t.Errorf("notifications sent = %d, want 1", d.count())
	}
}

func TestScanOnce_MarksTriggeredInCache(t *testing.T) {
	now := time.Now()
	cache := taskcache.New()
	task, rem := taskWithReminder(-time.Second, now)
	cache.Insert(task)

	d := &recordingDispatcher{}
	s := newTestScheduler(cache, d, now)
	s.ScanOnce()

	got, _ := cache.Get(task.ID)
	if !got.Reminders[0].Triggered {
		t.Error("triggered flag not patched into the cache")
	}
	if got.Reminders[0].ID != rem.ID {
		t.Fatal("test setup broken: reminder id mismatch")
	}
}

func TestScanOnce_SkipsCompletedTasks(t *testing.T) {
	now := time.Now()
	cache := taskcache.New()
	task, _ := taskWithReminder(-time.Second, now)
	task.Status = models.StatusCompleted
	done := now.Add(-time.Minute)
	task.CompletedAt = &done
	cache.Insert(task)

	d := &recordingDispatcher{}
	s := newTestScheduler(cache, d, now)

	if fired := s.ScanOnce(); fired != 0 {
		t.Errorf("completed task fired %d reminders, want 0", fired)
	}
}

func TestSnooze_ChainKeepsOneTimerAndCounts(t *testing.T) {
	now := time.Now()
	cache := taskcache.New()
	task, rem := taskWithReminder(-time.Second, now)
	cache.Insert(task)

	d := &recordingDispatcher{}
	s := New(cache, nil, d, WithIntervals(time.Hour, DefaultFireWindow, 30*time.Millisecond))
	s.nowFn = func() time.Time { return now }
	s.Start()
	defer s.Stop()

	s.ScanOnce()

	if _, err := s.Snooze(rem.ID); err != nil {
		t.Fatalf("first snooze failed: %v", err)
	}
	count, err := s.Snooze(rem.ID)
	if err != nil {
		t.Fatalf("second snooze failed: %v", err)
	}
	if count != 2 {
		t.Errorf("snooze count = %d, want 2", count)
	}

	stats := s.Stats()
	if got := stats["pending_snooze"].(int); got != 1 {
		t.Errorf("pending snooze timers = %d, want 1 (second snooze must cancel the first)", got)
	}

	deadline := time.After(500 * time.Millisecond)
	for d.count() < 2 {
		select {
		case <-deadline:
			t.Fatal("snoozed notification never re-fired")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if got := d.last(); got.SnoozeCount != 2 {
		t.Errorf("re-fired notification snooze count = %d, want 2", got.SnoozeCount)
	}
	if d.count() != 2 {
		t.Errorf("notifications = %d, want 2 (one fire + one snooze re-fire)", d.count())
	}
}

func TestDismiss_CancelsSnoozeAndRemoves(t *testing.T) {
	now := time.Now()
	cache := taskcache.New()
	task, rem := taskWithReminder(-time.Second, now)
	cache.Insert(task)

	d := &recordingDispatcher{}
	s := New(cache, nil, d, WithIntervals(time.Hour, DefaultFireWindow, 20*time.Millisecond))
	s.nowFn = func() time.Time { return now }
	s.Start()
	defer s.Stop()

	s.ScanOnce()
	if _, err := s.Snooze(rem.ID); err != nil {
		t.Fatalf("snooze failed: %v", err)
	}
	if err := s.Dismiss(rem.ID); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}

	if got := len(s.ActiveReminders()); got != 0 {
		t.Errorf("active reminders after dismiss = %d, want 0", got)
	}

	time.Sleep(60 * time.Millisecond)
	if d.count() != 1 {
		t.Errorf("notifications = %d, want 1 (snooze timer must be cancelled by dismiss)", d.count())
	}

	if err := s.Dismiss(rem.ID); err != ErrNotActive {
		t.Errorf("second dismiss = %v, want ErrNotActive", err)
	}
}

func TestStop_CancelsOutstandingSnoozeTimers(t *testing.T) {
	now := time.Now()
	cache := taskcache.New()
	task, rem := taskWithReminder(-time.Second, now)
	cache.Insert(task)

	d := &recordingDispatcher{}
	s := New(cache, nil, d, WithIntervals(time.Hour, DefaultFireWindow, 20*time.Millisecond))
	s.nowFn = func() time.Time { return now }
	s.Start()

	s.ScanOnce()
	if _, err := s.Snooze(rem.ID); err != nil {
		t.Fatalf("snooze failed: %v", err)
	}
	s.Stop()

	time.Sleep(60 * time.Millisecond)
	if d.count() != 1 {
		t.Errorf("notifications after Stop = %d, want 1 (no post-teardown firing)", d.count())
	}
}

func TestScanOnce_DropsActiveRemindersOfDeletedTasks(t *testing.T) {
	now := time.Now()
	cache := taskcache.New()
	task, _ := taskWithReminder(-time.Second, now)
	cache.Insert(task)

	d := &recordingDispatcher{}
	s := newTestScheduler(cache, d, now)
	s.ScanOnce()

	cache.Remove(task.ID)
	s.ScanOnce()

	if got := len(s.ActiveReminders()); got != 0 {
		t.Errorf("active reminders for deleted task = %d, want 0", got)
	}
}

func TestSnooze_UnknownReminder(t *testing.T) {
	cache := taskcache.New()
	d := &recordingDispatcher{}
	s := newTestScheduler(cache, d, time.Now())

	if _, err := s.Snooze(uuid.Must(uuid.NewV4())); err != ErrNotActive {
		t.Errorf("got %v, want ErrNotActive", err)
	}
}
