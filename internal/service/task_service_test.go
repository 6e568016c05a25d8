package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

func newTestService(t *testing.T) (*TaskService, *repository.TaskRepository, *repository.HistoryRepository) {
	t.Helper()

	// A named shared in-memory database: gorm's connection pool would give
	// each connection its own db with a plain ":memory:" dsn.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	taskRepo := repository.NewTaskRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	return NewTaskService(taskRepo, historyRepo), taskRepo, historyRepo
}

func TestCompleteNonRecurringIsTerminal(t *testing.T) {
	svc, _, historyRepo := newTestService(t)
	ctx := context.Background()
	now := date(2024, time.March, 4, 9, 30)

	task, err := svc.CreateTask(ctx, TaskInput{
		Title:     "file taxes",
		StartTime: date(2024, time.March, 4, 9, 0),
		EndTime:   date(2024, time.March, 4, 10, 0),
	}, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	done, err := svc.Complete(ctx, task.ID, now)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.Completed {
		t.Errorf("task should stay completed")
	}

	if _, err := svc.Complete(ctx, task.ID, now); !errors.Is(err, ErrTaskAlreadyCompleted) {
		t.Fatalf("second complete: got %v, want ErrTaskAlreadyCompleted", err)
	}
	if _, err := svc.Complete(ctx, "task_missing", now); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("unknown id: got %v, want ErrTaskNotFound", err)
	}

	records, err := historyRepo.List(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("history records = %d, want exactly 1", len(records))
	}
}

func TestCompleteDailyRegenerates(t *testing.T) {
	svc, taskRepo, historyRepo := newTestService(t)
	ctx := context.Background()
	now := date(2024, time.March, 4, 9, 45)

	task, err := svc.CreateTask(ctx, TaskInput{
		Title:     "morning review",
		StartTime: date(2024, time.March, 4, 9, 0),
		EndTime:   date(2024, time.March, 4, 10, 30),
		Repeat:    model.RepeatDaily,
		Priority:  3,
	}, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	doneSub, err := svc.AddSubtask(ctx, task.ID, "check inbox", "")
	if err != nil {
		t.Fatalf("add subtask: %v", err)
	}
	if _, err := svc.AddSubtask(ctx, task.ID, "write summary", ""); err != nil {
		t.Fatalf("add subtask: %v", err)
	}
	if _, _, _, err := svc.ToggleSubtask(ctx, task.ID, doneSub.ID); err != nil {
		t.Fatalf("toggle subtask: %v", err)
	}

	if _, err := svc.Complete(ctx, task.ID, now); err != nil {
		t.Fatalf("complete: %v", err)
	}

	tasks, err := taskRepo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("live rows = %d, want exactly one per recurring task", len(tasks))
	}
	live := tasks[0]

	if live.Completed {
		t.Errorf("regenerated instance must be pending")
	}
	if want := date(2024, time.March, 5, 9, 0); !live.StartTime.Equal(want) {
		t.Errorf("start = %v, want %v", live.StartTime, want)
	}
	if want := date(2024, time.March, 5, 10, 30); !live.EndTime.Equal(want) {
		t.Errorf("end = %v, want %v", live.EndTime, want)
	}
	if live.NextOccurrence == nil || !live.NextOccurrence.Equal(date(2024, time.March, 5, 0, 0)) {
		t.Errorf("next occurrence = %v, want tomorrow midnight", live.NextOccurrence)
	}
	if len(live.Subtasks) != 2 {
		t.Fatalf("subtasks = %d, want 2", len(live.Subtasks))
	}
	for _, st := range live.Subtasks {
		if st.Completed {
			t.Errorf("regenerated subtask %s must be pending", st.ID)
		}
		if st.ID == doneSub.ID {
			t.Errorf("regenerated subtask kept its old identity %s", st.ID)
		}
	}

	records, err := historyRepo.List(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("history records = %d, want 1", len(records))
	}
	record := records[0]
	if record.TaskID != task.ID {
		t.Errorf("record task id = %s, want %s", record.TaskID, task.ID)
	}
	if len(record.Subtasks) != 1 || record.Subtasks[0].ID != doneSub.ID {
		t.Errorf("record must archive only the completed subtask with its original identity, got %v", record.Subtasks)
	}
	if record.TimeRange != "9:00 AM - 10:30 AM" {
		t.Errorf("time range = %q", record.TimeRange)
	}
}

func TestCompleteWeeklyHonorsWeekdayConstraint(t *testing.T) {
	svc, taskRepo, _ := newTestService(t)
	ctx := context.Background()
	// 2024-03-06 is a Wednesday.
	now := date(2024, time.March, 6, 18, 0)

	task, err := svc.CreateTask(ctx, TaskInput{
		Title:     "weekly planning",
		StartTime: date(2024, time.March, 6, 17, 0),
		EndTime:   date(2024, time.March, 6, 18, 0),
		Repeat:    model.RepeatWeekly,
		RepeatDay: "Wednesday",
	}, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Complete(ctx, task.ID, now); err != nil {
		t.Fatalf("complete: %v", err)
	}

	tasks, err := taskRepo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	live := tasks[0]

	if live.StartTime.Weekday() != time.Wednesday {
		t.Errorf("weekday = %s, want Wednesday", live.StartTime.Weekday())
	}
	if !live.StartTime.After(now) {
		t.Errorf("regenerated occurrence must be strictly after completion")
	}
	// +7 lands on a Wednesday already, so the constraint pushes one more week.
	if want := date(2024, time.March, 20, 17, 0); !live.StartTime.Equal(want) {
		t.Errorf("start = %v, want %v", live.StartTime, want)
	}
}

func TestCompleteStopsAtRepeatUntil(t *testing.T) {
	svc, taskRepo, _ := newTestService(t)
	ctx := context.Background()
	now := date(2024, time.March, 4, 9, 30)
	until := date(2024, time.March, 4, 0, 0)

	task, err := svc.CreateTask(ctx, TaskInput{
		Title:       "last stretch",
		StartTime:   date(2024, time.March, 4, 9, 0),
		EndTime:     date(2024, time.March, 4, 10, 0),
		Repeat:      model.RepeatDaily,
		RepeatUntil: &until,
	}, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Complete(ctx, task.ID, now); err != nil {
		t.Fatalf("complete: %v", err)
	}

	tasks, err := taskRepo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !tasks[0].Completed {
		t.Errorf("task past its repeat-end date must stay completed")
	}
}

func TestBoardReconcilesAndPersists(t *testing.T) {
	svc, taskRepo, _ := newTestService(t)
	ctx := context.Background()

	stale := &model.Task{
		ID:        model.NewID("task"),
		Title:     "stretch",
		Repeat:    model.RepeatDaily,
		StartTime: date(2024, time.March, 1, 7, 0),
		EndTime:   date(2024, time.March, 1, 7, 30),
		Priority:  5,
		CreatedAt: date(2024, time.March, 1, 6, 0),
	}
	if err := taskRepo.ReplaceAll(ctx, []*model.Task{stale}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	now := date(2024, time.March, 4, 7, 15)
	views, err := svc.Board(ctx, now)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	if views[0].Status.Status != StatusActive {
		t.Errorf("status = %s, want active after reconciliation", views[0].Status.Status)
	}

	tasks, err := taskRepo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := date(2024, time.March, 4, 7, 0); !tasks[0].StartTime.Equal(want) {
		t.Errorf("reconciled start was not persisted: %v", tasks[0].StartTime)
	}
}

func TestBoardSkipsMalformedTask(t *testing.T) {
	svc, taskRepo, _ := newTestService(t)
	ctx := context.Background()

	broken := &model.Task{ID: model.NewID("task"), Title: "broken"}
	ok := &model.Task{
		ID:        model.NewID("task"),
		Title:     "fine",
		StartTime: date(2024, time.March, 4, 9, 0),
		EndTime:   date(2024, time.March, 4, 10, 0),
		Priority:  1,
	}
	if err := taskRepo.ReplaceAll(ctx, []*model.Task{broken, ok}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	views, err := svc.Board(ctx, date(2024, time.March, 4, 9, 30))
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(views) != 1 || views[0].Task.Title != "fine" {
		t.Fatalf("malformed task must be skipped, got %d views", len(views))
	}
}

func TestDeleteSubtaskReindexesDense(t *testing.T) {
	svc, taskRepo, _ := newTestService(t)
	ctx := context.Background()
	now := date(2024, time.March, 4, 8, 0)

	task, err := svc.CreateTask(ctx, TaskInput{
		Title:     "pack bags",
		StartTime: date(2024, time.March, 4, 9, 0),
		EndTime:   date(2024, time.March, 4, 10, 0),
	}, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var middle *model.Subtask
	for i, title := range []string{"clothes", "documents", "chargers"} {
		sub, err := svc.AddSubtask(ctx, task.ID, title, "")
		if err != nil {
			t.Fatalf("add subtask: %v", err)
		}
		if i == 1 {
			middle = sub
		}
	}

	if err := svc.DeleteSubtask(ctx, task.ID, middle.ID); err != nil {
		t.Fatalf("delete subtask: %v", err)
	}

	tasks, err := taskRepo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	subs := tasks[0].Subtasks
	SortSubtasks(subs)
	if len(subs) != 2 {
		t.Fatalf("subtasks = %d, want 2", len(subs))
	}
	for i, st := range subs {
		if st.Priority != i+1 {
			t.Errorf("priority[%d] = %d, want %d", i, st.Priority, i+1)
		}
	}
	if subs[0].Title != "clothes" || subs[1].Title != "chargers" {
		t.Errorf("unexpected order: %s, %s", subs[0].Title, subs[1].Title)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	now := date(2024, time.March, 6, 8, 0) // a Wednesday

	if _, err := svc.CreateTask(ctx, TaskInput{
		Title:     "bad repeat",
		StartTime: now,
		EndTime:   now.Add(time.Hour),
		Repeat:    "fortnightly",
	}, now); !errors.Is(err, ErrInvalidRepeatKind) {
		t.Fatalf("got %v, want ErrInvalidRepeatKind", err)
	}

	task, err := svc.CreateTask(ctx, TaskInput{
		Title:     "weekly defaults",
		StartTime: now,
		EndTime:   now.Add(time.Hour),
		Repeat:    model.RepeatWeekly,
		Priority:  99,
	}, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.RepeatDay != "Wednesday" {
		t.Errorf("repeat day = %q, want creation weekday", task.RepeatDay)
	}
	if task.Priority != 15 {
		t.Errorf("priority = %d, want clamped default 15", task.Priority)
	}
}
