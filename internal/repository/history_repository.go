package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tasktracker/internal/model"
)

// HistoryRepository is the append-only archive of completions.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(ctx context.Context, record *model.HistoryRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// List returns all records, most recent completion first.
func (r *HistoryRepository) List(ctx context.Context) ([]model.HistoryRecord, error) {
	var records []model.HistoryRecord
	if err := r.db.WithContext(ctx).Order("completed_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}
