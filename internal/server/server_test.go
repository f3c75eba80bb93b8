package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/config"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/notify"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/remotestore"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/scheduler"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/syncer"
	"github.com/Dev11-ultroNeous/zest-task-dash/internal/taskcache"
)

// fakeStore is an in-memory remotestore.Store that can be told to fail
// the next mutation.
type fakeStore struct {
	tasks      map[uuid.UUID]models.Task
	categories []models.Category
	failNext   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[uuid.UUID]models.Task)}
}

func (f *fakeStore) takeFailure() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeStore) CreateTask(_ context.Context, task models.Task) (models.Task, error) {
	if err := f.takeFailure(); err != nil {
		return models.Task{}, err
	}
	task.ID = uuid.Must(uuid.NewV4())
	f.tasks[task.ID] = task
	return task, nil
}

func (f *fakeStore) UpdateTask(_ context.Context, id uuid.UUID, task models.Task) error {
	if err := f.takeFailure(); err != nil {
		return err
	}
	f.tasks[id] = task
	return nil
}

func (f *fakeStore) DeleteTask(_ context.Context, id uuid.UUID) error {
	if err := f.takeFailure(); err != nil {
		return err
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeStore) ListTasks(_ context.Context) ([]models.Task, error) {
	out := make([]models.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) ListCategories(_ context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, category models.Category) (models.Category, error) {
	if err := f.takeFailure(); err != nil {
		return models.Category{}, err
	}
	category.ID = uuid.Must(uuid.NewV4())
	f.categories = append(f.categories, category)
	return category, nil
}

type fixture struct {
	router *gin.Engine
	cache  *taskcache.Cache
	store  *fakeStore
	sched  *scheduler.Scheduler
	toasts *notify.ToastSink
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.PrefsPath = filepath.Join(t.TempDir(), "prefs.yaml")
	cfg.RateLimit.RequestsPerMin = 0 // rate limiting has its own tests

	cache := taskcache.New()
	store := newFakeStore()
	coordinator := syncer.New(cache, store, nil)
	toasts := notify.NewToastSink(10)
	desktop := notify.NewDesktopSink(notify.PermissionDefault, nil)
	sched := scheduler.New(cache, store, notify.NewFanout(toasts, desktop),
		scheduler.WithIntervals(time.Hour, time.Minute, time.Minute))
	t.Cleanup(sched.Stop)

	srv := New(cfg, cache, coordinator, sched, store, toasts, desktop)
	return &fixture{router: srv.Router(), cache: cache, store: store, sched: sched, toasts: toasts}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) models.Task {
	t.Helper()
	var task models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode task: %v (%s)", err, w.Body.String())
	}
	return task
}

func TestCreateTask_ReturnsCanonicalRecord(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title":    "ship release",
		"priority": "high",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	created := decodeTask(t, w)
	if created.ID == uuid.Nil {
		t.Error("no id on created task")
	}
	if _, ok := f.cache.Get(created.ID); !ok {
		t.Error("created task not in cache under canonical id")
	}
	if _, ok := f.store.tasks[created.ID]; !ok {
		t.Error("created task not persisted remotely")
	}
}

func TestCreateTask_StoreFailureLeavesCacheClean(t *testing.T) {
	f := setup(t)
	f.store.failNext = remotestore.ErrUnavailable

	w := f.do(t, http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title":    "doomed",
		"priority": "low",
	})
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502: %s", w.Code, w.Body.String())
	}
	if f.cache.Len() != 0 {
		t.Errorf("cache has %d tasks after rolled-back create, want 0", f.cache.Len())
	}
}

func TestCreateTask_DueDateGetsReminders(t *testing.T) {
	f := setup(t)
	due := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)

	w := f.do(t, http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title":          "prepare slides",
		"priority":       "medium",
		"due_date":       due,
		"reminder_types": []string{"on_due", "one_day_before"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	created := decodeTask(t, w)
	if len(created.Reminders) != 2 {
		t.Fatalf("reminders = %d, want 2", len(created.Reminders))
	}
	for _, rem := range created.Reminders {
		if rem.TaskID == uuid.Nil {
			t.Error("reminder missing task id")
		}
	}
}

func TestListTasks_FilterAndSort(t *testing.T) {
	f := setup(t)

	for _, spec := range []struct {
		title    string
		priority string
	}{
		{"alpha", "low"},
		{"beta", "high"},
		{"gamma", "high"},
	} {
		w := f.do(t, http.MethodPost, "/api/v1/tasks", map[string]interface{}{
			"title": spec.title, "priority": spec.priority,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("seed %s: status %d", spec.title, w.Code)
		}
	}

	w := f.do(t, http.MethodGet, "/api/v1/tasks?priority=high&sort_by=title&order=asc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Tasks []models.Task `json:"tasks"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Tasks) != 2 {
		t.Fatalf("filtered tasks = %d, want 2", len(resp.Tasks))
	}
	if resp.Tasks[0].Title != "beta" || resp.Tasks[1].Title != "gamma" {
		t.Errorf("order = [%s %s], want [beta gamma]", resp.Tasks[0].Title, resp.Tasks[1].Title)
	}
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3 (unfiltered cache size)", resp.Total)
	}
}

func TestUpdateTask_PartialPatchAndNullClear(t *testing.T) {
	f := setup(t)
	due := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)

	w := f.do(t, http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title": "original", "priority": "low", "due_date": due,
	})
	created := decodeTask(t, w)

	w = f.do(t, http.MethodPut, "/api/v1/tasks/"+created.ID.String(), json.RawMessage(
		`{"title":"renamed","due_date":null}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	updated := decodeTask(t, w)
	if updated.Title != "renamed" {
		t.Errorf("title = %q, want renamed", updated.Title)
	}
	if updated.DueDate != nil {
		t.Error("explicit null did not clear due date")
	}
	if updated.Priority != models.PriorityLow {
		t.Errorf("priority = %q, absent field must stay unchanged", updated.Priority)
	}
}

func TestToggleTask_SetsAndClearsCompletedAt(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title": "flip me", "priority": "medium",
	})
	created := decodeTask(t, w)
	path := "/api/v1/tasks/" + created.ID.String() + "/toggle"

	w = f.do(t, http.MethodPost, path, nil)
	toggled := decodeTask(t, w)
	if toggled.Status != models.StatusCompleted || toggled.CompletedAt == nil {
		t.Errorf("after first toggle: status=%q completed_at=%v", toggled.Status, toggled.CompletedAt)
	}

	w = f.do(t, http.MethodPost, path, nil)
	toggled = decodeTask(t, w)
	if toggled.Status != models.StatusPending || toggled.CompletedAt != nil {
		t.Errorf("after second toggle: status=%q completed_at=%v", toggled.Status, toggled.CompletedAt)
	}
}

func TestDeleteTask_MissingIs404(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodDelete, "/api/v1/tasks/"+uuid.Must(uuid.NewV4()).String(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDashboardStats_CountsCompleted(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title": "a", "priority": "low",
	})
	created := decodeTask(t, w)
	f.do(t, http.MethodPost, "/api/v1/tasks", map[string]interface{}{
		"title": "b", "priority": "low",
	})
	f.do(t, http.MethodPost, "/api/v1/tasks/"+created.ID.String()+"/toggle", nil)

	w = f.do(t, http.MethodGet, "/api/v1/dashboard/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var stats struct {
		Total          int `json:"total"`
		Completed      int `json:"completed"`
		Pending        int `json:"pending"`
		CompletionRate int `json:"completion_rate"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 2 || stats.Completed != 1 || stats.Pending != 1 {
		t.Errorf("stats = %+v, want total=2 completed=1 pending=1", stats)
	}
	if stats.CompletionRate != 50 {
		t.Errorf("completion_rate = %d, want 50", stats.CompletionRate)
	}
}

func TestPermission_RoundTripAndValidation(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/api/v1/notifications/permission", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("default")) {
		t.Errorf("initial permission: %d %s", w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodPut, "/api/v1/notifications/permission", map[string]string{
		"permission": "granted",
	})
	if w.Code != http.StatusOK {
		t.Errorf("set granted: status = %d", w.Code)
	}

	w = f.do(t, http.MethodPut, "/api/v1/notifications/permission", map[string]string{
		"permission": "maybe",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bogus permission: status = %d, want 400", w.Code)
	}
}

func TestPrefs_RoundTrip(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPut, "/api/v1/prefs", map[string]interface{}{
		"theme":   "dark",
		"sort_by": "priority",
		"order":   "desc",
		"filter":  map[string]string{"status": "pending"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("put prefs: status = %d: %s", w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodGet, "/api/v1/prefs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get prefs: status = %d", w.Code)
	}
	var p struct {
		Theme  string `json:"theme"`
		SortBy string `json:"sort_by"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Theme != "dark" || p.SortBy != "priority" {
		t.Errorf("prefs = %+v, want dark/priority", p)
	}
}

func TestSnooze_UnknownReminderIs404(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/v1/reminders/"+uuid.Must(uuid.NewV4()).String()+"/snooze", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestReminderFlow_FireSnoozeDismissOverHTTP(t *testing.T) {
	f := setup(t)
	f.sched.Start()

	due := time.Now().Add(-10 * time.Second)
	rem := models.Reminder{ID: uuid.Must(uuid.NewV4()), Time: due, Type: models.ReminderOnDue}
	task := models.Task{
		ID:        uuid.Must(uuid.NewV4()),
		Title:     "standup notes",
		Priority:  models.PriorityMedium,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
		Reminders: []models.Reminder{rem},
	}
	f.cache.Insert(task)
	if fired := f.sched.ScanOnce(); fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	w := f.do(t, http.MethodGet, "/api/v1/reminders/active", nil)
	var resp struct {
		Reminders []models.ActiveReminder `json:"reminders"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Reminders) != 1 {
		t.Fatalf("active = %d, want 1", len(resp.Reminders))
	}

	w = f.do(t, http.MethodPost, "/api/v1/reminders/"+rem.ID.String()+"/snooze", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("snooze: status = %d", w.Code)
	}
	var snoozed struct {
		SnoozeCount int `json:"snooze_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snoozed); err != nil {
		t.Fatalf("decode snooze: %v", err)
	}
	if snoozed.SnoozeCount != 1 {
		t.Errorf("snooze_count = %d, want 1", snoozed.SnoozeCount)
	}

	w = f.do(t, http.MethodPost, "/api/v1/reminders/"+rem.ID.String()+"/dismiss", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("dismiss: status = %d, want 204", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/v1/notifications", nil)
	var toasts struct {
		Notifications []notify.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &toasts); err != nil {
		t.Fatalf("decode toasts: %v", err)
	}
	if len(toasts.Notifications) != 1 {
		t.Errorf("toasts = %d, want 1", len(toasts.Notifications))
	}
}

func TestHealth_ReportsComponentStats(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	for _, key := range []string{"cache", "syncer", "scheduler", "toasts", "desktop"} {
		if !bytes.Contains(w.Body.Bytes(), []byte(key)) {
			t.Errorf("health body missing %q section", key)
		}
	}
}
