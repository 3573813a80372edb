package service

import (
	"context"
	"errors"
	"fmt"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/domain/repository"

	"golang.org/x/sync/errgroup"
)

type SheetService struct {
	sheetRepo    repository.SheetRepository
	questionRepo repository.QuestionRepository
	statusRepo   repository.StatusRepository
	progressRepo repository.ProgressRepository
	userRepo     repository.UserRepository
	maxScore     int
}

func NewSheetService(
	sheetRepo repository.SheetRepository,
	questionRepo repository.QuestionRepository,
	statusRepo repository.StatusRepository,
	progressRepo repository.ProgressRepository,
	userRepo repository.UserRepository,
	maxScore int,
) *SheetService {
	return &SheetService{
		sheetRepo:    sheetRepo,
		questionRepo: questionRepo,
		statusRepo:   statusRepo,
		progressRepo: progressRepo,
		userRepo:     userRepo,
		maxScore:     maxScore,
	}
}

func (s *SheetService) ListSheets(ctx context.Context) ([]model.Sheet, error) {
	sheets, err := s.sheetRepo.ListSheets(ctx)
	if err != nil {
		return nil, err
	}
	if sheets == nil {
		sheets = []model.Sheet{}
	}
	return sheets, nil
}

// userFlags holds the caller's saved and solved question ids for one sheet.
type userFlags struct {
	saved, solved map[int64]bool
}

func (s *SheetService) loadFlags(ctx context.Context, userID string, sheetID int64) (userFlags, error) {
	var f userFlags
	if userID == "" {
		return f, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		f.saved, err = s.statusRepo.QuestionIDs(gctx, userID, sheetID, model.StatusSaved)
		return err
	})
	g.Go(func() error {
		var err error
		f.solved, err = s.statusRepo.QuestionIDs(gctx, userID, sheetID, model.StatusSolved)
		return err
	})
	err := g.Wait()
	return f, err
}

func buildTopicViews(topics []model.Topic, questions []model.Question, f userFlags) []model.TopicView {
	byTopic := make(map[int64][]model.QuestionView, len(topics))
	for _, q := range questions {
		byTopic[q.TopicID] = append(byTopic[q.TopicID], model.NewQuestionView(q, f.saved[q.ID], f.solved[q.ID]))
	}
	views := make([]model.TopicView, 0, len(topics))
	for _, t := range topics {
		qs := byTopic[t.ID]
		if qs == nil {
			qs = []model.QuestionView{}
		}
		views = append(views, model.TopicView{ID: t.ID, Name: t.Name, Questions: qs})
	}
	return views
}

// GetSheetDetail returns the sheet with its topics and questions. userID may be empty for anonymous callers.
func (s *SheetService) GetSheetDetail(ctx context.Context, sheetID int64, userID string) (*model.SheetDetail, error) {
	sheet, err := s.sheetRepo.FindSheetByID(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	var (
		topics    []model.Topic
		questions []model.Question
		totals    model.SheetTotals
		flags     userFlags
		progress  *model.ProgressSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		topics, err = s.sheetRepo.ListTopics(gctx, sheetID)
		return err
	})
	g.Go(func() (err error) {
		questions, err = s.questionRepo.ListBySheet(gctx, sheetID)
		return err
	})
	g.Go(func() (err error) {
		totals, err = s.sheetRepo.SheetTotals(gctx, sheetID)
		return err
	})
	g.Go(func() (err error) {
		flags, err = s.loadFlags(gctx, userID, sheetID)
		return err
	})
	if userID != "" {
		g.Go(func() error {
			p, err := s.progressRepo.Find(gctx, userID, sheetID)
			switch {
			case err == nil:
				progress = &model.ProgressSummary{SolvedCount: p.SolvedCount}
			case errors.Is(err, common.ErrNotFound):
				progress = &model.ProgressSummary{}
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load sheet %d: %w", sheetID, err)
	}

	return &model.SheetDetail{
		ID:             sheet.ID,
		Name:           sheet.Name,
		Slug:           sheet.Slug,
		Description:    sheet.Description,
		Image:          sheet.Image,
		Topics:         buildTopicViews(topics, questions, flags),
		UserProgress:   progress,
		TotalQuestions: totals.TotalQuestions,
	}, nil
}

func (s *SheetService) TopicsWithQuestions(ctx context.Context, sheetID int64, userID string) ([]model.TopicView, error) {
	if _, err := s.sheetRepo.FindSheetByID(ctx, sheetID); err != nil {
		return nil, err
	}
	var (
		topics    []model.Topic
		questions []model.Question
		flags     userFlags
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		topics, err = s.sheetRepo.ListTopics(gctx, sheetID)
		return err
	})
	g.Go(func() (err error) {
		questions, err = s.questionRepo.ListBySheet(gctx, sheetID)
		return err
	})
	g.Go(func() (err error) {
		flags, err = s.loadFlags(gctx, userID, sheetID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load topics for sheet %d: %w", sheetID, err)
	}
	return buildTopicViews(topics, questions, flags), nil
}

// Progress reports a user's counters on a sheet next to the sheet's totals.
// A user who never solved anything on the sheet gets zero counters.
func (s *SheetService) Progress(ctx context.Context, username string, sheetID int64) (*model.ProgressView, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if _, err := s.sheetRepo.FindSheetByID(ctx, sheetID); err != nil {
		return nil, err
	}

	view := &model.ProgressView{}
	p, err := s.progressRepo.Find(ctx, user.ID, sheetID)
	switch {
	case err == nil:
		view.SolvedCount, view.SolvedEasy, view.SolvedMedium, view.SolvedHard = p.SolvedCount, p.SolvedEasy, p.SolvedMedium, p.SolvedHard
	case !errors.Is(err, common.ErrNotFound):
		return nil, err
	}

	view.SheetTotals, err = s.sheetRepo.SheetTotals(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Saved groups the user's saved questions by topic, keeping repository order.
func (s *SheetService) Saved(ctx context.Context, userID string) ([]model.SavedGroup, error) {
	rows, err := s.statusRepo.ListSaved(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups := []model.SavedGroup{}
	index := make(map[int64]int)
	for _, row := range rows {
		i, ok := index[row.TopicID]
		if !ok {
			i = len(groups)
			index[row.TopicID] = i
			groups = append(groups, model.SavedGroup{
				TopicID:   row.TopicID,
				TopicName: row.TopicName,
				SheetID:   row.SheetID,
				SheetName: row.SheetName,
			})
		}
		groups[i].Questions = append(groups[i].Questions, model.NewQuestionView(row.Question, true, false))
	}
	if len(rows) > 0 {
		solved := make(map[int64]map[int64]bool)
		for gi := range groups {
			sheetID := groups[gi].SheetID
			if _, ok := solved[sheetID]; !ok {
				ids, err := s.statusRepo.QuestionIDs(ctx, userID, sheetID, model.StatusSolved)
				if err != nil {
					return nil, err
				}
				solved[sheetID] = ids
			}
			for qi := range groups[gi].Questions {
				q := &groups[gi].Questions[qi]
				q.IsSolved = solved[sheetID][q.ID]
			}
		}
	}
	return groups, nil
}

// Summary returns a user's score, rank and per-sheet progress.
func (s *SheetService) Summary(ctx context.Context, username string) (*model.UserSummary, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	progress, err := s.progressRepo.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	summary := &model.UserSummary{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Score:       user.Score,
		Rank:        user.Rank,
		MaxScore:    s.maxScore,
		Sheets:      make([]model.SheetSummary, len(progress)),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range progress {
		g.Go(func() error {
			sheet, err := s.sheetRepo.FindSheetByID(gctx, p.SheetID)
			if err != nil {
				return err
			}
			totals, err := s.sheetRepo.SheetTotals(gctx, p.SheetID)
			if err != nil {
				return err
			}
			summary.Sheets[i] = model.SheetSummary{
				SheetID:        p.SheetID,
				SheetName:      sheet.Name,
				SolvedCount:    p.SolvedCount,
				TotalQuestions: totals.TotalQuestions,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("summary for %s: %w", username, err)
	}
	return summary, nil
}
