package service

import (
	"context"
	"errors"
	"testing"

	"dsa_arena/internal/common"
)

func TestNotesLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewNoteService(f.store.Notes(), f.store.Questions(), f.store.Sheets())
	ctx := context.Background()

	first, err := svc.CreateNote(ctx, f.user.ID, CreateNoteRequest{QuestionID: f.easy.ID, Content: "hash map"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	second, _ := svc.CreateNote(ctx, f.user.ID, CreateNoteRequest{QuestionID: f.easy.ID, Content: "  two pointers  "})
	if second.Content != "two pointers" {
		t.Fatalf("content not trimmed: %q", second.Content)
	}

	notes, err := svc.ListNotes(ctx, f.user.ID, f.easy.ID)
	if err != nil || len(notes) != 2 || notes[0].ID != second.ID {
		t.Fatalf("ListNotes = %+v, %v (want newest first)", notes, err)
	}

	bob := f.addUser(t, "bob", "bob@example.com", true)
	if err := svc.DeleteNote(ctx, bob.ID, first.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("deleting someone else's note: %v", err)
	}
	if err := svc.DeleteNote(ctx, f.user.ID, first.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if err := svc.DeleteNote(ctx, f.user.ID, first.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestCreateNoteValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewNoteService(f.store.Notes(), f.store.Questions(), f.store.Sheets())

	if _, err := svc.CreateNote(context.Background(), f.user.ID, CreateNoteRequest{QuestionID: f.easy.ID, Content: "   "}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("empty content err = %v", err)
	}
	if _, err := svc.CreateNote(context.Background(), f.user.ID, CreateNoteRequest{QuestionID: 777, Content: "x"}); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("unknown question err = %v", err)
	}
}

func TestUpsertMarkdown(t *testing.T) {
	f := newFixture(t)
	svc := NewNoteService(f.store.Notes(), f.store.Questions(), f.store.Sheets())
	ctx := context.Background()

	n, created, err := svc.UpsertMarkdown(ctx, f.user.ID, UpsertMarkdownRequest{QuestionID: f.hard.ID, Content: "# v1"})
	if err != nil || !created {
		t.Fatalf("first upsert created=%v err=%v", created, err)
	}
	n2, created, err := svc.UpsertMarkdown(ctx, f.user.ID, UpsertMarkdownRequest{QuestionID: f.hard.ID, Content: "# v2"})
	if err != nil || created {
		t.Fatalf("second upsert created=%v err=%v", created, err)
	}
	if n2.ID != n.ID || n2.Content != "# v2" {
		t.Fatalf("upsert = %+v", n2)
	}
	if c := f.store.MarkdownCount(); c != 1 {
		t.Fatalf("markdown rows = %d, want 1", c)
	}

	view, err := svc.TopicNotes(ctx, f.user.ID, f.graphs.ID)
	if err != nil {
		t.Fatalf("TopicNotes: %v", err)
	}
	if view.TopicName != "Graphs" || len(view.Questions) != 2 {
		t.Fatalf("view = %+v", view)
	}
	for _, q := range view.Questions {
		want := ""
		if q.ID == f.hard.ID {
			want = "# v2"
		}
		if q.NoteContent != want {
			t.Fatalf("question %d note = %q, want %q", q.ID, q.NoteContent, want)
		}
	}

	if _, err := svc.TopicNotes(ctx, f.user.ID, 5555); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("unknown topic err = %v", err)
	}
}
