package model

import "time"

// HistoryRecord is the immutable snapshot archived when a task is completed.
// It keeps only the subtasks that were completed at that moment, with their
// original identities.
type HistoryRecord struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TaskID      ID         `gorm:"index" json:"task_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Repeat      RepeatKind `json:"repeat"`
	CompletedAt time.Time  `json:"completed_at"`
	Subtasks    []Subtask  `gorm:"serializer:json" json:"subtasks"`
	TimeRange   string     `json:"time_range"`
	Priority    int        `json:"priority"`
}
