package memory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
)

func seed(t *testing.T, s *Store) (*model.User, *model.Question) {
	t.Helper()
	ctx := context.Background()
	u := &model.User{ID: "u1", Username: "ann", Email: "ann@example.com", Role: model.RoleUser, IsActive: true}
	if err := s.Users().Create(ctx, nil, u); err != nil {
		t.Fatal(err)
	}
	sheet := &model.Sheet{Name: "Core", Slug: "core"}
	if err := s.Sheets().CreateSheet(ctx, nil, sheet); err != nil {
		t.Fatal(err)
	}
	topic, err := s.Sheets().FindOrCreateTopic(ctx, nil, sheet.ID, "Arrays")
	if err != nil {
		t.Fatal(err)
	}
	q := &model.Question{TopicID: topic.ID, Title: "Two Sum", Difficulty: model.DifficultyEasy}
	if _, err := s.Questions().CreateQuestion(ctx, nil, q); err != nil {
		t.Fatal(err)
	}
	return u, q
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	u, q := seed(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.Statuses().Insert(ctx, tx, u.ID, q.ID, model.StatusSolved); err != nil {
			return err
		}
		if err := s.Progress().Increment(ctx, tx, u.ID, q.SheetID, q.Difficulty); err != nil {
			return err
		}
		if err := s.Users().UpdateScore(ctx, tx, u.ID, 5, "Singham"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx err = %v, want boom", err)
	}

	if n := s.StatusCount(u.ID, model.StatusSolved); n != 0 {
		t.Fatalf("solved rows = %d, want 0", n)
	}
	if _, err := s.Progress().Find(ctx, u.ID, q.SheetID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("progress after rollback err = %v, want not found", err)
	}
	got, err := s.Users().FindByID(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != 0 || got.Rank != "" {
		t.Fatalf("user after rollback = score %d rank %q", got.Score, got.Rank)
	}
}

func TestWithinTxKeepsCommittedWrites(t *testing.T) {
	s := NewStore()
	u, q := seed(t, s)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx *sql.Tx) error {
		_, err := s.Statuses().Insert(ctx, tx, u.ID, q.ID, model.StatusSaved)
		return err
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
	if n := s.StatusCount(u.ID, model.StatusSaved); n != 1 {
		t.Fatalf("saved rows = %d, want 1", n)
	}

	// A later failed transaction leaves earlier commits alone.
	_ = s.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.Statuses().Delete(ctx, tx, u.ID, q.ID, model.StatusSaved); err != nil {
			return err
		}
		return errors.New("abort")
	})
	if n := s.StatusCount(u.ID, model.StatusSaved); n != 1 {
		t.Fatalf("saved rows after aborted delete = %d, want 1", n)
	}
}
