package service

import (
	"context"
	"database/sql"
	"fmt"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/domain/rank"
	"dsa_arena/internal/domain/repository"
	"dsa_arena/internal/platform/logger"
	"dsa_arena/internal/platform/observability"

	"go.opentelemetry.io/otel/attribute"
)

type StatusService struct {
	txRunner     repository.TxRunner
	userRepo     repository.UserRepository
	questionRepo repository.QuestionRepository
	statusRepo   repository.StatusRepository
	progressRepo repository.ProgressRepository
	maxScore     int
	log          *logger.Logger
}

func NewStatusService(
	txRunner repository.TxRunner,
	userRepo repository.UserRepository,
	questionRepo repository.QuestionRepository,
	statusRepo repository.StatusRepository,
	progressRepo repository.ProgressRepository,
	maxScore int,
	log *logger.Logger,
) *StatusService {
	return &StatusService{
		txRunner:     txRunner,
		userRepo:     userRepo,
		questionRepo: questionRepo,
		statusRepo:   statusRepo,
		progressRepo: progressRepo,
		maxScore:     maxScore,
		log:          log.With("service", "StatusService"),
	}
}

type UpdateStatusRequest struct {
	QuestionID int64  `json:"question_id" validate:"required,gt=0"`
	Action     string `json:"action" validate:"required"`
	Email      string `json:"email,omitempty"` // legacy identity fields, must match the caller
	Username   string `json:"username,omitempty"`
}

// UpdateStatus applies one action for the user inside a single transaction.
// The user row is locked first so concurrent actions by the same user serialize.
func (s *StatusService) UpdateStatus(ctx context.Context, userID string, questionID int64, action model.Action) (*model.StatusResult, error) {
	ctx, span := observability.StartSpan(ctx, "StatusService.UpdateStatus",
		attribute.String("action", action.String()),
		attribute.Int64("question_id", questionID),
	)
	defer span.End()

	var result *model.StatusResult
	err := s.txRunner.WithinTx(ctx, func(tx *sql.Tx) error {
		user, err := s.userRepo.LockByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		question, err := s.questionRepo.FindQuestionByID(ctx, questionID)
		if err != nil {
			return err
		}

		score := user.Score
		switch action {
		case model.ActionSolve:
			score, err = s.solve(ctx, tx, user, question)
		case model.ActionUnsolve:
			score, err = s.unsolve(ctx, tx, user, question)
		case model.ActionSave:
			_, err = s.statusRepo.Insert(ctx, tx, user.ID, question.ID, model.StatusSaved)
		case model.ActionUnsave:
			_, err = s.statusRepo.Delete(ctx, tx, user.ID, question.ID, model.StatusSaved)
		default:
			return fmt.Errorf("unknown action %d: %w", action, common.ErrValidation)
		}
		if err != nil {
			return err
		}

		result = &model.StatusResult{
			Message: fmt.Sprintf("Question %s successful", action),
			Score:   score,
			Rank:    rank.Calculate(score, s.maxScore),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("status updated", "user_id", userID, "question_id", questionID, "action", action.String(), "score", result.Score)
	return result, nil
}

func (s *StatusService) solve(ctx context.Context, tx *sql.Tx, user *model.User, q *model.Question) (int, error) {
	created, err := s.statusRepo.Insert(ctx, tx, user.ID, q.ID, model.StatusSolved)
	if err != nil || !created {
		return user.Score, err
	}
	score := user.Score + q.Difficulty.Points()
	if err := s.userRepo.UpdateScore(ctx, tx, user.ID, score, rank.Calculate(score, s.maxScore)); err != nil {
		return 0, err
	}
	if err := s.progressRepo.Increment(ctx, tx, user.ID, q.SheetID, q.Difficulty); err != nil {
		return 0, err
	}
	return score, nil
}

func (s *StatusService) unsolve(ctx context.Context, tx *sql.Tx, user *model.User, q *model.Question) (int, error) {
	deleted, err := s.statusRepo.Delete(ctx, tx, user.ID, q.ID, model.StatusSolved)
	if err != nil || !deleted {
		return user.Score, err
	}
	score := max(user.Score-q.Difficulty.Points(), 0)
	if err := s.userRepo.UpdateScore(ctx, tx, user.ID, score, rank.Calculate(score, s.maxScore)); err != nil {
		return 0, err
	}
	if err := s.progressRepo.Decrement(ctx, tx, user.ID, q.SheetID, q.Difficulty); err != nil {
		return 0, err
	}
	return score, nil
}
