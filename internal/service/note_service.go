package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

var ErrNoteNotFound = errors.New("note not found")

// MoveDirection shifts a note one position in its priority order.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// NoteInput represents data required to create or update a note.
type NoteInput struct {
	Title          string
	Description    string
	NotifyEnabled  bool
	NotifyInterval int
}

// NoteService wraps note ordering and reminder bookkeeping.
type NoteService struct {
	noteRepo *repository.NoteRepository
	mu       sync.Mutex
}

func NewNoteService(noteRepo *repository.NoteRepository) *NoteService {
	return &NoteService{noteRepo: noteRepo}
}

// List returns all notes ordered by priority.
func (s *NoteService) List(ctx context.Context) ([]*model.Note, error) {
	notes, err := s.noteRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	sortNotes(notes)
	return notes, nil
}

// Create stores a new note at the end of the order (priority max+1).
func (s *NoteService) Create(ctx context.Context, input NoteInput, now time.Time) (*model.Note, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.noteRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	maxPriority := 0
	for _, note := range notes {
		if note.Priority > maxPriority {
			maxPriority = note.Priority
		}
	}

	note := &model.Note{
		ID:             model.NewID("note"),
		Title:          input.Title,
		Description:    input.Description,
		Priority:       maxPriority + 1,
		NotifyEnabled:  input.NotifyEnabled,
		NotifyInterval: input.NotifyInterval,
		CreatedAt:      now,
	}
	notes = append(notes, note)

	if err := s.noteRepo.ReplaceAll(ctx, notes); err != nil {
		return nil, err
	}
	return note, nil
}

// Update rewrites a note's editable fields. Turning notifications on resets
// the last-notified marker so the next sweep fires immediately.
func (s *NoteService) Update(ctx context.Context, id model.ID, input NoteInput) (*model.Note, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.noteRepo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	note := findNote(notes, id)
	if note == nil {
		return nil, ErrNoteNotFound
	}

	wasEnabled := note.NotifyEnabled
	note.Title = input.Title
	note.Description = input.Description
	note.NotifyEnabled = input.NotifyEnabled
	note.NotifyInterval = input.NotifyInterval
	if input.NotifyEnabled && !wasEnabled {
		note.LastNotified = nil
	}

	if err := s.noteRepo.ReplaceAll(ctx, notes); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes a note.
func (s *NoteService) Delete(ctx context.Context, id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.noteRepo.LoadAll(ctx)
	if err != nil {
		return err
	}
	kept := notes[:0]
	found := false
	for _, note := range notes {
		if note.ID == id {
			found = true
			continue
		}
		kept = append(kept, note)
	}
	if !found {
		return ErrNoteNotFound
	}
	return s.noteRepo.ReplaceAll(ctx, kept)
}

// Move swaps a note's priority with its neighbor in the given direction.
// Moving past either end is a no-op.
func (s *NoteService) Move(ctx context.Context, id model.ID, direction MoveDirection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.noteRepo.LoadAll(ctx)
	if err != nil {
		return err
	}
	sortNotes(notes)

	index := -1
	for i, note := range notes {
		if note.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return ErrNoteNotFound
	}

	switch direction {
	case MoveUp:
		if index > 0 {
			notes[index-1].Priority, notes[index].Priority = notes[index].Priority, notes[index-1].Priority
		}
	case MoveDown:
		if index < len(notes)-1 {
			notes[index+1].Priority, notes[index].Priority = notes[index].Priority, notes[index+1].Priority
		}
	default:
		return fmt.Errorf("invalid move direction %q", direction)
	}

	return s.noteRepo.ReplaceAll(ctx, notes)
}

func findNote(notes []*model.Note, id model.ID) *model.Note {
	for _, note := range notes {
		if note.ID == id {
			return note
		}
	}
	return nil
}

func sortNotes(notes []*model.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Priority < notes[j].Priority
	})
}
