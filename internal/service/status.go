package service

import (
	"time"

	"tasktracker/internal/model"
)

// Status labels a task's position relative to its scheduled window.
type Status string

const (
	StatusExpired      Status = "expired"
	StatusUpcoming     Status = "upcoming"
	StatusStartingSoon Status = "starting_soon"
	StatusActive       Status = "active"
	StatusDue          Status = "due"
	StatusOverdue      Status = "overdue"
)

// statusWindowMinutes is how far outside the scheduled window a task still
// counts as starting soon (before start) or due (after end).
const statusWindowMinutes = 120

// TimeStatus is the classifier result for one task at one instant.
type TimeStatus struct {
	Status   Status
	IsActive bool
	// CompletedRepeating flags a recurring task completed today; the caller
	// surfaces NextOccurrence instead of the status label.
	CompletedRepeating bool
	NextOccurrence     *time.Time
}

// Classify derives a task's lifecycle status at now. Apart from the expired
// rule, comparison is by clock position only: the calendar date is dropped,
// so tasks spanning midnight classify purely on hours and minutes.
func Classify(now time.Time, task *model.Task) TimeStatus {
	today := midnight(now)

	if task.Repeat == model.RepeatNone && midnight(task.StartTime).Before(today) && !task.Completed {
		return TimeStatus{Status: StatusExpired}
	}

	completedToday := task.Repeat != model.RepeatNone && task.Completed &&
		midnight(task.StartTime).Equal(today)

	nowMin := minutesOfDay(now)
	startMin := minutesOfDay(task.StartTime)
	endMin := minutesOfDay(task.EndTime)

	st := TimeStatus{IsActive: !task.Completed && !completedToday}
	switch {
	case nowMin < startMin-statusWindowMinutes:
		st.Status = StatusUpcoming
	case nowMin < startMin:
		st.Status = StatusStartingSoon
	case nowMin <= endMin:
		st.Status = StatusActive
	case nowMin <= endMin+statusWindowMinutes:
		st.Status = StatusDue
	default:
		st.Status = StatusOverdue
	}

	if task.Repeat != model.RepeatNone && task.Completed {
		st.IsActive = false
		// A lapsed RepeatUntil means no further occurrence will ever be
		// scheduled: the task reads as plainly completed, no preview.
		next, err := NextOccurrence(task.Repeat, task.StartTime, task.Weekday())
		if err == nil && (task.RepeatUntil == nil || !next.After(midnight(*task.RepeatUntil))) {
			st.CompletedRepeating = true
			st.NextOccurrence = &next
		}
	}

	return st
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
