package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type ReminderType string

const (
	ReminderOnDue         ReminderType = "on_due"
	ReminderOneDayBefore  ReminderType = "one_day_before"
	ReminderOneHourBefore ReminderType = "one_hour_before"
	ReminderCustom        ReminderType = "custom"
)

// Reminder is owned by its Task; TaskID is kept for lookup and event
// correlation only. Triggered is monotonic: once true it never resets,
// snoozing schedules a fresh local notification instead.
type Reminder struct {
	ID        uuid.UUID    `json:"id"`
	TaskID    uuid.UUID    `json:"task_id"`
	Time      time.Time    `json:"time"`
	Type      ReminderType `json:"type"`
	Triggered bool         `json:"triggered"`
}

// RemindersForDueDate derives the standard reminder set for a due date.
// A nil due date means no reminders are possible.
func RemindersForDueDate(taskID uuid.UUID, due *time.Time, types []ReminderType) []Reminder {
	if due == nil || len(types) == 0 {
		return nil
	}
	out := make([]Reminder, 0, len(types))
	for _, rt := range types {
		var at time.Time
		switch rt {
		case ReminderOnDue:
			at = *due
		case ReminderOneDayBefore:
			at = due.Add(-24 * time.Hour)
		case ReminderOneHourBefore:
			at = due.Add(-time.Hour)
		default:
			continue
		}
		out = append(out, Reminder{
			ID:     uuid.Must(uuid.NewV4()),
			TaskID: taskID,
			Time:   at,
			Type:   rt,
		})
	}
	return out
}

// ActiveReminder is runtime-only state for a fired-but-undismissed
// reminder. It never expires on its own; the user must dismiss it.
type ActiveReminder struct {
	ReminderID   uuid.UUID `json:"reminder_id"`
	TaskID       uuid.UUID `json:"task_id"`
	TaskTitle    string    `json:"task_title"`
	ReminderTime time.Time `json:"reminder_time"`
	FiredAt      time.Time `json:"fired_at"`
	SnoozeCount  int       `json:"snooze_count"`
}
