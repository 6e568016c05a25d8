package service

import (
	"sort"
	"time"

	"tasktracker/internal/model"
)

// TaskView pairs a task with its derived status for presentation.
type TaskView struct {
	Task   *model.Task
	Status TimeStatus
}

// SelectAndSort picks the tasks that belong on today's board and orders
// them: active before inactive, then by priority with 1 first. The sort is
// stable, ties keep collection order. Subtasks are ordered by priority.
func SelectAndSort(tasks []*model.Task, now time.Time) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		st := Classify(now, task)
		if !onBoard(task, st, now) {
			continue
		}
		SortSubtasks(task.Subtasks)
		views = append(views, TaskView{Task: task, Status: st})
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Status.IsActive != views[j].Status.IsActive {
			return views[i].Status.IsActive
		}
		return views[i].Task.Priority < views[j].Task.Priority
	})

	return views
}

func onBoard(task *model.Task, st TimeStatus, now time.Time) bool {
	if task.Repeat == model.RepeatNone {
		return !task.Completed
	}
	if st.CompletedRepeating {
		// Shown for its next-occurrence preview.
		return true
	}
	return !task.Completed && occurrenceDue(task, now)
}

// occurrenceDue reports whether a recurring task's occurrence has reached
// today. A task without a marker has never been cycled and is always due.
func occurrenceDue(task *model.Task, now time.Time) bool {
	if task.NextOccurrence == nil {
		return true
	}
	return !midnight(now).Before(midnight(*task.NextOccurrence))
}

// SortSubtasks orders subtasks by priority ascending, stable.
func SortSubtasks(subtasks []model.Subtask) {
	sort.SliceStable(subtasks, func(i, j int) bool {
		return subtasks[i].Priority < subtasks[j].Priority
	})
}
