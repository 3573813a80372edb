package service

import (
	"context"
	"sync"
	"testing"

	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/domain/rank"
	"dsa_arena/internal/domain/repository/memory"
	"dsa_arena/internal/platform/logger"
)

const testMaxScore = 1985

type fixture struct {
	store    *memory.Store
	sheet    *model.Sheet
	arrays   *model.Topic
	graphs   *model.Topic
	easy     *model.Question
	medium   *model.Question
	hard     *model.Question
	unmarked *model.Question
	user     *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	f := &fixture{store: store}

	f.sheet = &model.Sheet{Name: "Striver SDE", Slug: "striver-sde", Description: "core"}
	if err := store.Sheets().CreateSheet(ctx, nil, f.sheet); err != nil {
		t.Fatalf("CreateSheet: %v", err)
	}
	var err error
	if f.arrays, err = store.Sheets().FindOrCreateTopic(ctx, nil, f.sheet.ID, "Arrays"); err != nil {
		t.Fatalf("topic: %v", err)
	}
	if f.graphs, err = store.Sheets().FindOrCreateTopic(ctx, nil, f.sheet.ID, "Graphs"); err != nil {
		t.Fatalf("topic: %v", err)
	}
	add := func(topic *model.Topic, title string, d model.Difficulty) *model.Question {
		q := &model.Question{TopicID: topic.ID, Title: title, Link: "https://leetcode.com/problems/" + title, Platform: "leetcode", Difficulty: d}
		if _, err := store.Questions().CreateQuestion(ctx, nil, q); err != nil {
			t.Fatalf("CreateQuestion: %v", err)
		}
		return q
	}
	f.easy = add(f.arrays, "two-sum", model.DifficultyEasy)
	f.medium = add(f.arrays, "3sum", model.DifficultyMedium)
	f.hard = add(f.graphs, "word-ladder", model.DifficultyHard)
	f.unmarked = add(f.graphs, "graph-intro", model.DifficultyUnmarked)

	f.user = f.addUser(t, "alice", "alice@example.com", true)
	return f
}

func (f *fixture) addUser(t *testing.T, username, email string, accepted bool) *model.User {
	t.Helper()
	u := &model.User{
		ID:          username + "-id",
		Username:    username,
		Email:       email,
		DisplayName: username,
		Role:        model.RoleUser,
		Rank:        rank.Baseline,
		IsAccepted:  accepted,
		IsActive:    true,
	}
	if err := f.store.Users().Create(context.Background(), nil, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) statusService() *StatusService {
	return NewStatusService(f.store, f.store.Users(), f.store.Questions(), f.store.Statuses(), f.store.Progress(), testMaxScore, logger.Nop())
}

func (f *fixture) sheetService() *SheetService {
	return NewSheetService(f.store.Sheets(), f.store.Questions(), f.store.Statuses(), f.store.Progress(), f.store.Users(), testMaxScore)
}

// fakePublisher records published notifications.
type fakePublisher struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (p *fakePublisher) Publish(ctx context.Context, n model.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, n)
	return nil
}
