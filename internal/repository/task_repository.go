package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tasktracker/internal/model"
)

// TaskRepository persists the task collection. The collection is treated as
// a single document: mutations load everything, change it in memory and
// replace the whole set in one transaction.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// LoadAll returns every task with its subtasks, in creation order.
func (r *TaskRepository) LoadAll(ctx context.Context) ([]*model.Task, error) {
	var tasks []*model.Task
	if err := r.db.WithContext(ctx).
		Preload("Subtasks").
		Order("created_at, id").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return tasks, nil
}

// ReplaceAll swaps the stored collection for the given one atomically.
func (r *TaskRepository) ReplaceAll(ctx context.Context, tasks []*model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Subtask{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		for _, task := range tasks {
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace tasks: %w", err)
	}
	return nil
}

// Create inserts a single new task with its subtasks.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdateReminderMarker writes only the reminder-dedupe column of one row.
// The sweep uses this instead of ReplaceAll so it never races a concurrent
// collection rewrite.
func (r *TaskRepository) UpdateReminderMarker(ctx context.Context, id model.ID, minute int) error {
	if err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ?", id).
		Update("last_notified_minute", minute).Error; err != nil {
		return fmt.Errorf("update reminder marker: %w", err)
	}
	return nil
}
