package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestWarnings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for i, reason := range []string{"spam", "slurs", "ban evasion"} {
		w := Warning{GuildID: "g1", UserID: "u1", ModeratorID: "m1", Reason: reason, CreatedAt: now.Add(time.Duration(i) * time.Minute)}
		if err := store.AddWarning(ctx, w); err != nil {
			t.Fatalf("add warning: %v", err)
		}
	}

	warnings, err := store.ListWarnings(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("list warnings: %v", err)
	}
	if len(warnings) != 3 || warnings[0].Reason != "spam" {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}

	if err := store.DeleteWarning(ctx, "g1", "u1", 2); err != nil {
		t.Fatalf("delete warning: %v", err)
	}
	warnings, _ = store.ListWarnings(ctx, "g1", "u1")
	if len(warnings) != 2 || warnings[1].Reason != "ban evasion" {
		t.Fatalf("unexpected warnings after delete: %+v", warnings)
	}

	if err := store.DeleteWarning(ctx, "g1", "u1", 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for i, text := range []string{"watch this one", "appealed last ban"} {
		n := Note{GuildID: "g1", UserID: "u1", ModeratorID: "m1", Text: text, CreatedAt: now.Add(time.Duration(i) * time.Minute)}
		if err := store.AddNote(ctx, n); err != nil {
			t.Fatalf("add note: %v", err)
		}
	}

	if err := store.UpdateNote(ctx, "g1", "u1", 1, "reformed"); err != nil {
		t.Fatalf("update note: %v", err)
	}
	notes, err := store.ListNotes(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 2 || notes[0].Text != "reformed" {
		t.Fatalf("unexpected notes: %+v", notes)
	}

	if err := store.DeleteNote(ctx, "g1", "u1", 2); err != nil {
		t.Fatalf("delete note: %v", err)
	}
	if err := store.UpdateNote(ctx, "g1", "u1", 2, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	cleared, err := store.ClearNotes(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("clear notes: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 cleared, got %d", cleared)
	}
	notes, _ = store.ListNotes(ctx, "g1", "u1")
	if len(notes) != 0 {
		t.Fatalf("expected no notes, got %+v", notes)
	}
}
