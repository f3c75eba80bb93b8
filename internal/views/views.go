// Package views derives filtered lists and aggregate numbers from cache
// snapshots. Everything here is pure: no state, re-derived per read.
package views

import (
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Dev11-ultroNeous/zest-task-dash/internal/models"
)

var titleCollator = collate.New(language.Und, collate.Loose)

var priorityRank = map[models.TaskPriority]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

// Filter keeps tasks matching every selected dimension. Search is a
// case-insensitive substring match against title, description and tags.
func Filter(tasks []models.Task, f models.TaskFilter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	for _, t := range tasks {
		if p := f.WantPriority(); p != models.FilterAll && string(t.Priority) != p {
			continue
		}
		if s := f.WantStatus(); s != models.FilterAll && string(t.Status) != s {
			continue
		}
		if c := f.WantCategory(); c != models.FilterAll && t.Category != c {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesSearch(t models.Task, search string) bool {
	if strings.Contains(strings.ToLower(t.Title), search) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), search) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(tag, search) {
			return true
		}
	}
	return false
}

// Sort orders tasks in place, stably. Tasks without a due date always
// sort after dated ones on the due-date key, in either direction.
func Sort(tasks []models.Task, field models.SortField, order models.SortOrder) {
	desc := order == models.OrderDesc

	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch field {
		case models.SortByDueDate:
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return false
			case a.DueDate == nil:
				return false // null ≈ +infinity, always last
			case b.DueDate == nil:
				return true
			case desc:
				return a.DueDate.After(*b.DueDate)
			default:
				return a.DueDate.Before(*b.DueDate)
			}
		case models.SortByPriority:
			if desc {
				return priorityRank[a.Priority] > priorityRank[b.Priority]
			}
			return priorityRank[a.Priority] < priorityRank[b.Priority]
		case models.SortByTitle:
			cmp := titleCollator.CompareString(a.Title, b.Title)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		default: // created date
			if desc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DueToday returns pending tasks due on the current calendar day.
func DueToday(tasks []models.Task, now time.Time) []models.Task {
	dayStart := startOfDay(now)
	dayEnd := dayStart.Add(24 * time.Hour)

	out := make([]models.Task, 0)
	for _, t := range tasks {
		if t.IsCompleted() || t.DueDate == nil {
			continue
		}
		if !t.DueDate.Before(dayStart) && t.DueDate.Before(dayEnd) {
			out = append(out, t)
		}
	}
	return out
}

// Overdue returns pending tasks due strictly before today.
func Overdue(tasks []models.Task, now time.Time) []models.Task {
	dayStart := startOfDay(now)

	out := make([]models.Task, 0)
	for _, t := range tasks {
		if t.IsCompleted() || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(dayStart) {
			out = append(out, t)
		}
	}
	return out
}

// CompletedThisWeek returns tasks completed within the trailing 7 days.
func CompletedThisWeek(tasks []models.Task, now time.Time) []models.Task {
	cutoff := now.AddDate(0, 0, -7)

	out := make([]models.Task, 0)
	for _, t := range tasks {
		if !t.IsCompleted() || t.CompletedAt == nil {
			continue
		}
		if t.CompletedAt.After(cutoff) && !t.CompletedAt.After(now) {
			out = append(out, t)
		}
	}
	return out
}

// CompletionRate is round(100 * completed / total); 0 with no tasks.
func CompletionRate(tasks []models.Task) int {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.IsCompleted() {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(tasks))))
}

// Stats bundles the dashboard aggregates computed in one pass over a
// snapshot.
type Stats struct {
	Total             int `json:"total"`
	Pending           int `json:"pending"`
	Completed         int `json:"completed"`
	DueToday          int `json:"due_today"`
	Overdue           int `json:"overdue"`
	CompletedThisWeek int `json:"completed_this_week"`
	CompletionRate    int `json:"completion_rate"`
}

func BuildStats(tasks []models.Task, now time.Time) Stats {
	s := Stats{
		Total:             len(tasks),
		DueToday:          len(DueToday(tasks, now)),
		Overdue:           len(Overdue(tasks, now)),
		CompletedThisWeek: len(CompletedThisWeek(tasks, now)),
		CompletionRate:    CompletionRate(tasks),
	}
	for _, t := range tasks {
		if t.IsCompleted() {
			s.Completed++
		} else {
			s.Pending++
		}
	}
	return s
}
