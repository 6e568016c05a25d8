package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
	ErrSubtaskNotFound      = errors.New("subtask not found")
)

// TaskInput represents data required to create or update a task.
type TaskInput struct {
	Title         string
	Description   string
	StartTime     time.Time
	EndTime       time.Time
	Repeat        model.RepeatKind
	RepeatDay     string
	RepeatUntil   *time.Time
	Priority      int
	NotifyEnabled bool
}

// TaskService wraps the task lifecycle: creation, completion with history
// archiving and regeneration, reconciliation and the board view.
//
// Every mutation runs as one load → mutate → replace cycle over the whole
// collection, serialized by a mutex. Concurrent processes sharing the same
// database file would still race; single-process use is assumed.
type TaskService struct {
	taskRepo    *repository.TaskRepository
	historyRepo *repository.HistoryRepository
	mu          sync.Mutex
}

func NewTaskService(taskRepo *repository.TaskRepository, historyRepo *repository.HistoryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, historyRepo: historyRepo}
}

// CreateTask validates input and stores a new task.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput, now time.Time) (*model.Task, error) {
	if err := validateInput(&input, now); err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:                 model.NewID("task"),
		Title:              input.Title,
		Description:        input.Description,
		StartTime:          input.StartTime,
		EndTime:            input.EndTime,
		Repeat:             input.Repeat,
		RepeatDay:          input.RepeatDay,
		RepeatUntil:        input.RepeatUntil,
		Priority:           input.Priority,
		NotifyEnabled:      input.NotifyEnabled,
		LastNotifiedMinute: -1,
		CreatedAt:          now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask rewrites an existing task's editable fields.
func (s *TaskService) UpdateTask(ctx context.Context, id model.ID, input TaskInput, now time.Time) (*model.Task, error) {
	if err := validateInput(&input, now); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.taskRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	task := findTask(tasks, id)
	if task == nil {
		return nil, ErrTaskNotFound
	}

	task.Title = input.Title
	task.Description = input.Description
	task.StartTime = input.StartTime
	task.EndTime = input.EndTime
	task.Repeat = input.Repeat
	task.RepeatDay = input.RepeatDay
	task.RepeatUntil = input.RepeatUntil
	task.Priority = input.Priority
	task.NotifyEnabled = input.NotifyEnabled

	if err := s.taskRepo.ReplaceAll(ctx, tasks); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task and its subtasks.
func (s *TaskService) DeleteTask(ctx context.Context, id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.taskRepo.LoadAll(ctx)
	if err != nil {
		return err
	}
	kept := tasks[:0]
	found := false
	for _, task := range tasks {
		if task.ID == id {
			found = true
			continue
		}
		kept = append(kept, task)
	}
	if !found {
		return ErrTaskNotFound
	}
	return s.taskRepo.ReplaceAll(ctx, kept)
}

// Complete marks a task done, archives a history snapshot and, for
// recurring tasks, rewrites the live row with the next occurrence.
//
// The transition is rejected, without mutation, when the id is unknown
// (ErrTaskNotFound) or the task is already completed
// (ErrTaskAlreadyCompleted). A failed save after the in-memory transition
// is a hard error: memory and durable state may have diverged.
func (s *TaskService) Complete(ctx context.Context, id model.ID, now time.Time) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.taskRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	task := findTask(tasks, id)
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if task.Completed {
		return nil, ErrTaskAlreadyCompleted
	}

	task.Completed = true
	record := snapshot(task, now)

	if task.Repeat != model.RepeatNone {
		regenerate(task, now)
	}

	if err := s.taskRepo.ReplaceAll(ctx, tasks); err != nil {
		return nil, fmt.Errorf("save tasks after completion: %w", err)
	}
	// History is a separate document; a failure here leaves the completed
	// task saved without its archive entry and must surface to the caller.
	if err := s.historyRepo.Append(ctx, &record); err != nil {
		return nil, fmt.Errorf("save history after completion: %w", err)
	}
	return task, nil
}

// Board runs one evaluation cycle: load, reconcile missed occurrences,
// persist, then classify, filter and sort for presentation.
func (s *TaskService) Board(ctx context.Context, now time.Time) ([]TaskView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.taskRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	valid := make([]*model.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.StartTime.IsZero() || task.EndTime.IsZero() {
			log.Printf("[warn] task %s has a malformed schedule, skipping", task.ID)
			continue
		}
		valid = append(valid, task)
	}

	Reconcile(valid, now)
	if err := s.taskRepo.ReplaceAll(ctx, tasks); err != nil {
		return nil, err
	}
	return SelectAndSort(valid, now), nil
}

// History lists archived completions, most recent first.
func (s *TaskService) History(ctx context.Context) ([]model.HistoryRecord, error) {
	return s.historyRepo.List(ctx)
}

// AddSubtask appends a subtask at the end of the parent's order.
func (s *TaskService) AddSubtask(ctx context.Context, taskID model.ID, title, description string) (*model.Subtask, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.taskRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	task := findTask(tasks, taskID)
	if task == nil {
		return nil, ErrTaskNotFound
	}

	subtask := model.Subtask{
		ID:          model.NewID("sub"),
		TaskID:      task.ID,
		Title:       title,
		Description: description,
		Priority:    len(task.Subtasks) + 1,
	}
	task.Subtasks = append(task.Subtasks, subtask)

	if err := s.taskRepo.ReplaceAll(ctx, tasks); err != nil {
		return nil, err
	}
	return &subtask, nil
}

// UpdateSubtask rewrites a subtask's fields. Priority is only touched when
// positive.
func (s *TaskService) UpdateSubtask(ctx context.Context, taskID, subtaskID model.ID, title, description string, priority int) (*model.Subtask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.taskRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	task := findTask(tasks, taskID)
	if task == nil {
		return nil, ErrTaskNotFound
	}
	subtask := findSubtask(task, subtaskID)
	if subtask == nil {
		return nil, ErrSubtaskNotFound
	}

	if title != "" {
		subtask.Title = title
	}
	subtask.Description = description
	if priority > 0 {
		subtask.Priority = priority
	}

	if err := s.taskRepo.ReplaceAll(ctx, tasks); err != nil {
		return nil, err
	}
	return subtask, nil
}

// ToggleSubtask flips a subtask's completed flag. It returns the parent
// task, the updated subtask and whether every subtask of the parent is now
// completed.
func (s *TaskService) ToggleSubtask(ctx context.Context, taskID, subtaskID model.ID) (*model.Task, *model.Subtask, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.taskRepo.LoadAll(ctx)
	if err != nil {
		return nil, nil, false, err
	}
	task := findTask(tasks, taskID)
	if task == nil {
		return nil, nil, false, ErrTaskNotFound
	}
	subtask := findSubtask(task, subtaskID)
	if subtask == nil {
		return nil, nil, false, ErrSubtaskNotFound
	}

	subtask.Completed = !subtask.Completed
	allCompleted := true
	for _, st := range task.Subtasks {
		if !st.Completed {
			allCompleted = false
			break
		}
	}

	if err := s.taskRepo.ReplaceAll(ctx, tasks); err != nil {
		return nil, nil, false, err
	}
	return task, subtask, allCompleted, nil
}

// DeleteSubtask removes a subtask and reindexes the remainder to dense
// priorities 1..N in display order.
func (s *TaskService) DeleteSubtask(ctx context.Context, taskID, subtaskID model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.taskRepo.LoadAll(ctx)
	if err != nil {
		return err
	}
	task := findTask(tasks, taskID)
	if task == nil {
		return ErrTaskNotFound
	}

	kept := task.Subtasks[:0]
	found := false
	for _, st := range task.Subtasks {
		if st.ID == subtaskID {
			found = true
			continue
		}
		kept = append(kept, st)
	}
	if !found {
		return ErrSubtaskNotFound
	}

	SortSubtasks(kept)
	for i := range kept {
		kept[i].Priority = i + 1
	}
	task.Subtasks = kept

	return s.taskRepo.ReplaceAll(ctx, tasks)
}

func validateInput(input *TaskInput, now time.Time) error {
	if input.Title == "" {
		return fmt.Errorf("title is required")
	}
	switch input.Repeat {
	case "":
		input.Repeat = model.RepeatNone
	case model.RepeatNone, model.RepeatDaily, model.RepeatWeekly:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRepeatKind, input.Repeat)
	}
	if input.Repeat == model.RepeatWeekly && input.RepeatDay == "" {
		input.RepeatDay = now.Weekday().String()
	}
	if input.Repeat != model.RepeatWeekly {
		input.RepeatDay = ""
	}
	if input.Priority < 1 || input.Priority > 15 {
		input.Priority = 15
	}
	return nil
}

func findTask(tasks []*model.Task, id model.ID) *model.Task {
	for _, task := range tasks {
		if task.ID == id {
			return task
		}
	}
	return nil
}

func findSubtask(task *model.Task, id model.ID) *model.Subtask {
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == id {
			return &task.Subtasks[i]
		}
	}
	return nil
}

// snapshot builds the immutable history record for a completion: only the
// subtasks completed at this moment are archived, with their identities.
func snapshot(task *model.Task, now time.Time) model.HistoryRecord {
	var completed []model.Subtask
	for _, st := range task.Subtasks {
		if st.Completed {
			completed = append(completed, st)
		}
	}
	return model.HistoryRecord{
		TaskID:      task.ID,
		Title:       task.Title,
		Description: task.Description,
		Repeat:      task.Repeat,
		CompletedAt: now,
		Subtasks:    completed,
		TimeRange:   FormatTimeRange(task.StartTime, task.EndTime),
		Priority:    task.Priority,
	}
}

// regenerate rewrites a just-completed recurring task with its next
// occurrence: the new date comes from the original start, the times of day
// are kept, and every subtask gets a fresh identity with completed reset.
// The retired subtask identities live on in the archived history record.
func regenerate(task *model.Task, now time.Time) {
	next, err := NextOccurrence(task.Repeat, task.StartTime, task.Weekday())
	if err != nil {
		// Unknown kind: no next occurrence, the task stays completed.
		return
	}
	if task.RepeatUntil != nil && next.After(midnight(*task.RepeatUntil)) {
		// Recurrence has run out, the task stays completed for good.
		return
	}

	fresh := make([]model.Subtask, 0, len(task.Subtasks))
	for _, st := range task.Subtasks {
		fresh = append(fresh, model.Subtask{
			ID:          model.NewID("sub"),
			TaskID:      task.ID,
			Title:       st.Title,
			Description: st.Description,
			Priority:    st.Priority,
		})
	}

	task.StartTime = atTimeOfDay(next, task.StartTime)
	task.EndTime = atTimeOfDay(next, task.EndTime)
	task.Completed = false
	occurrence := next
	task.NextOccurrence = &occurrence
	task.Subtasks = fresh
	task.LastNotifiedMinute = -1
	task.CreatedAt = now
}

// FormatTimeRange renders a window like "9:00 AM - 10:30 AM".
func FormatTimeRange(start, end time.Time) string {
	return start.Format("3:04 PM") + " - " + end.Format("3:04 PM")
}
