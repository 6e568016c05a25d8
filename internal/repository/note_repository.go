package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tasktracker/internal/model"
)

// NoteRepository persists notes with the same whole-collection replace
// semantics as tasks.
type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) LoadAll(ctx context.Context) ([]*model.Note, error) {
	var notes []*model.Note
	if err := r.db.WithContext(ctx).Order("priority, id").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	return notes, nil
}

// UpdateLastNotified writes only one note's reminder timestamp.
func (r *NoteRepository) UpdateLastNotified(ctx context.Context, id model.ID, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", id).
		Update("last_notified", at).Error; err != nil {
		return fmt.Errorf("update last notified: %w", err)
	}
	return nil
}

func (r *NoteRepository) ReplaceAll(ctx context.Context, notes []*model.Note) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Note{}).Error; err != nil {
			return err
		}
		for _, note := range notes {
			if err := tx.Create(note).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace notes: %w", err)
	}
	return nil
}
