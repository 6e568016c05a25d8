package service

import (
	"errors"
	"time"

	"tasktracker/internal/model"
)

// ErrInvalidRepeatKind marks an unknown recurrence value. Callers treat it
// as "no next occurrence" rather than a fatal condition.
var ErrInvalidRepeatKind = errors.New("invalid repeat kind")

// NextOccurrence returns the next scheduled date for a recurring task, at
// midnight in base's location.
//
// Weekly with a weekday constraint advances to the next matching weekday
// strictly after the +7-day point: a +7 landing already on the target
// weekday still skips to the following week's occurrence.
func NextOccurrence(repeat model.RepeatKind, base time.Time, weekday *time.Weekday) (time.Time, error) {
	switch repeat {
	case model.RepeatDaily:
		return midnight(base.AddDate(0, 0, 1)), nil
	case model.RepeatWeekly:
		next := base.AddDate(0, 0, 7)
		if weekday != nil {
			next = next.AddDate(0, 0, 1)
			for next.Weekday() != *weekday {
				next = next.AddDate(0, 0, 1)
			}
		}
		return midnight(next), nil
	default:
		return time.Time{}, ErrInvalidRepeatKind
	}
}

// Reconcile rolls forward, in place, every recurring uncompleted task whose
// scheduled date has fallen strictly before today. Times of day are
// preserved; the next-occurrence marker lands on midnight of the new date.
// Re-running with the same today is a no-op.
func Reconcile(tasks []*model.Task, today time.Time) {
	day := midnight(today)

	for _, task := range tasks {
		if task.Repeat == model.RepeatNone || task.Completed {
			continue
		}
		scheduled := midnight(task.StartTime)
		if !scheduled.Before(day) {
			continue
		}

		var next time.Time
		switch task.Repeat {
		case model.RepeatDaily:
			next = day
		case model.RepeatWeekly:
			// Step occurrence by occurrence rather than jumping, so the
			// weekday constraint keeps its strictly-after semantics.
			next = scheduled
			for next.Before(day) {
				stepped, err := NextOccurrence(model.RepeatWeekly, next, task.Weekday())
				if err != nil {
					break
				}
				next = stepped
			}
		default:
			continue
		}

		task.StartTime = atTimeOfDay(next, task.StartTime)
		task.EndTime = atTimeOfDay(next, task.EndTime)
		occurrence := next
		task.NextOccurrence = &occurrence
		// The rolled-forward occurrence gets a clean reminder slate.
		task.LastNotifiedMinute = -1
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// atTimeOfDay combines day's calendar date with clock's hour and minute.
func atTimeOfDay(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, clock.Location())
}
