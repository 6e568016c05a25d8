package model

import (
	"strings"
	"time"
)

// RepeatKind enumerates the supported recurrence rules.
type RepeatKind string

const (
	RepeatNone   RepeatKind = "none"
	RepeatDaily  RepeatKind = "daily"
	RepeatWeekly RepeatKind = "weekly"
)

// Task represents a single item in the tracker. A recurring task has exactly
// one live row: completing it rewrites this row in place with the next
// occurrence while the completed snapshot goes to history.
type Task struct {
	ID          ID         `gorm:"primaryKey" json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	Repeat      RepeatKind `gorm:"default:none" json:"repeat"`
	// RepeatDay is the weekday name constraint for weekly tasks ("Monday").
	RepeatDay      string     `json:"repeat_day,omitempty"`
	RepeatUntil    *time.Time `json:"repeat_until,omitempty"`
	NextOccurrence *time.Time `json:"next_occurrence,omitempty"`
	// Priority orders the board, 1 is highest.
	Priority      int  `gorm:"default:15" json:"priority"`
	NotifyEnabled bool `gorm:"default:false" json:"notify_enabled"`
	// LastNotifiedMinute dedupes pre-start reminders: the minutes-until-start
	// value of the last reminder sent, -1 when none was sent yet.
	LastNotifiedMinute int       `gorm:"default:-1" json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Subtasks           []Subtask `gorm:"foreignKey:TaskID" json:"subtasks"`
}

// Weekday resolves the weekly weekday constraint, nil when absent or
// unparseable.
func (t *Task) Weekday() *time.Weekday {
	wd, ok := ParseWeekday(t.RepeatDay)
	if !ok {
		return nil
	}
	return &wd
}

// ParseWeekday maps an English weekday name to time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.TrimSpace(name)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), name) {
			return wd, true
		}
	}
	return 0, false
}

// Subtask is an ordered step inside a task. Priorities stay dense 1..N in
// display order; deletions reindex the remainder.
type Subtask struct {
	ID          ID     `gorm:"primaryKey" json:"id"`
	TaskID      ID     `gorm:"index" json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `gorm:"default:false" json:"completed"`
	Priority    int    `json:"priority"`
}
