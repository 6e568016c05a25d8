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

func newTestNoteService(t *testing.T) *NoteService {
	t.Helper()

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

	return NewNoteService(repository.NewNoteRepository(db))
}

func seedNotes(t *testing.T, svc *NoteService, titles ...string) []*model.Note {
	t.Helper()
	now := date(2024, time.March, 4, 8, 0)
	notes := make([]*model.Note, 0, len(titles))
	for _, title := range titles {
		note, err := svc.Create(context.Background(), NoteInput{Title: title}, now)
		if err != nil {
			t.Fatalf("create note %q: %v", title, err)
		}
		notes = append(notes, note)
	}
	return notes
}

func noteTitles(notes []*model.Note) []string {
	titles := make([]string, len(notes))
	for i, note := range notes {
		titles[i] = note.Title
	}
	return titles
}

func TestNoteCreateAppendsAtEnd(t *testing.T) {
	svc := newTestNoteService(t)
	created := seedNotes(t, svc, "groceries", "call plumber", "gift ideas")

	for i, note := range created {
		if note.Priority != i+1 {
			t.Errorf("priority of %q = %d, want %d", note.Title, note.Priority, i+1)
		}
	}

	if _, err := svc.Create(context.Background(), NoteInput{}, date(2024, time.March, 4, 8, 0)); err == nil {
		t.Errorf("empty title must be rejected")
	}
}

func TestNoteMoveSwapsNeighbors(t *testing.T) {
	svc := newTestNoteService(t)
	notes := seedNotes(t, svc, "first", "second", "third")
	ctx := context.Background()

	if err := svc.Move(ctx, notes[1].ID, MoveUp); err != nil {
		t.Fatalf("move up: %v", err)
	}
	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if titles := noteTitles(got); titles[0] != "second" || titles[1] != "first" || titles[2] != "third" {
		t.Fatalf("after move up: %v", titles)
	}

	if err := svc.Move(ctx, notes[1].ID, MoveDown); err != nil {
		t.Fatalf("move down: %v", err)
	}
	got, err = svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if titles := noteTitles(got); titles[0] != "first" || titles[1] != "second" || titles[2] != "third" {
		t.Fatalf("after move down: %v", titles)
	}
}

func TestNoteMovePastEndsIsNoop(t *testing.T) {
	svc := newTestNoteService(t)
	notes := seedNotes(t, svc, "top", "bottom")
	ctx := context.Background()

	if err := svc.Move(ctx, notes[0].ID, MoveUp); err != nil {
		t.Fatalf("move up at top: %v", err)
	}
	if err := svc.Move(ctx, notes[1].ID, MoveDown); err != nil {
		t.Fatalf("move down at bottom: %v", err)
	}

	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if titles := noteTitles(got); titles[0] != "top" || titles[1] != "bottom" {
		t.Fatalf("order changed: %v", titles)
	}

	if err := svc.Move(ctx, "note_missing", MoveUp); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("unknown id: got %v, want ErrNoteNotFound", err)
	}
	if err := svc.Move(ctx, notes[0].ID, MoveDirection("sideways")); err == nil {
		t.Errorf("invalid direction must be rejected")
	}
}

func TestNoteUpdateResetsReminderMarker(t *testing.T) {
	svc := newTestNoteService(t)
	notes := seedNotes(t, svc, "water plants")
	ctx := context.Background()

	updated, err := svc.Update(ctx, notes[0].ID, NoteInput{
		Title:          "water plants",
		NotifyEnabled:  true,
		NotifyInterval: 4,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.LastNotified != nil {
		t.Errorf("enabling notifications must clear the last-notified marker")
	}
	if updated.NotifyInterval != 4 {
		t.Errorf("interval = %d, want 4", updated.NotifyInterval)
	}

	if _, err := svc.Update(ctx, "note_missing", NoteInput{Title: "x"}); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("unknown id: got %v, want ErrNoteNotFound", err)
	}
}

func TestNoteDelete(t *testing.T) {
	svc := newTestNoteService(t)
	notes := seedNotes(t, svc, "keep", "drop")
	ctx := context.Background()

	if err := svc.Delete(ctx, notes[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "keep" {
		t.Fatalf("remaining notes: %v", noteTitles(got))
	}

	if err := svc.Delete(ctx, notes[1].ID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("double delete: got %v, want ErrNoteNotFound", err)
	}
}
