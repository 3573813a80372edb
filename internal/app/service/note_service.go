package service

import (
	"context"
	"fmt"
	"strings"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/domain/repository"
)

type NoteService struct {
	noteRepo     repository.NoteRepository
	questionRepo repository.QuestionRepository
	sheetRepo    repository.SheetRepository
}

func NewNoteService(noteRepo repository.NoteRepository, questionRepo repository.QuestionRepository, sheetRepo repository.SheetRepository) *NoteService {
	return &NoteService{noteRepo: noteRepo, questionRepo: questionRepo, sheetRepo: sheetRepo}
}

type CreateNoteRequest struct {
	QuestionID int64  `json:"question_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required"`
	Email      string `json:"email,omitempty"`
	Username   string `json:"username,omitempty"`
}

type TopicNotesRequest struct {
	TopicID  int64  `json:"topic_id" validate:"required,gt=0"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

type UpsertMarkdownRequest struct {
	QuestionID int64  `json:"question_id" validate:"required,gt=0"`
	Content    string `json:"content"`
	Email      string `json:"email,omitempty"`
	Username   string `json:"username,omitempty"`
}

func (s *NoteService) ListNotes(ctx context.Context, userID string, questionID int64) ([]model.UserNote, error) {
	return s.noteRepo.ListNotes(ctx, userID, questionID)
}

func (s *NoteService) CreateNote(ctx context.Context, userID string, req CreateNoteRequest) (*model.UserNote, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := common.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.questionRepo.FindQuestionByID(ctx, req.QuestionID); err != nil {
		return nil, err
	}
	note := &model.UserNote{UserID: userID, QuestionID: req.QuestionID, Content: req.Content}
	if err := s.noteRepo.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// DeleteNote removes the caller's note. Notes owned by someone else look missing.
func (s *NoteService) DeleteNote(ctx context.Context, userID string, noteID int64) error {
	deleted, err := s.noteRepo.DeleteNote(ctx, userID, noteID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("note %d: %w", noteID, common.ErrNotFound)
	}
	return nil
}

func (s *NoteService) TopicNotes(ctx context.Context, userID string, topicID int64) (*model.TopicNotesView, error) {
	topic, err := s.sheetRepo.FindTopicByID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	notes, err := s.noteRepo.MarkdownForTopic(ctx, userID, topicID)
	if err != nil {
		return nil, err
	}

	view := &model.TopicNotesView{
		TopicID:   topic.ID,
		TopicName: topic.Name,
		Questions: make([]model.QuestionNoteView, 0, len(questions)),
	}
	for _, q := range questions {
		view.Questions = append(view.Questions, model.QuestionNoteView{
			ID:          q.ID,
			Question:    q.Title,
			Link:        q.Link,
			Difficulty:  q.Difficulty,
			Platform:    q.Platform,
			NoteContent: notes[q.ID],
		})
	}
	return view, nil
}

// UpsertMarkdown creates or replaces the caller's markdown note and reports whether it was created.
func (s *NoteService) UpsertMarkdown(ctx context.Context, userID string, req UpsertMarkdownRequest) (*model.MarkdownNote, bool, error) {
	if err := common.Validate(req); err != nil {
		return nil, false, err
	}
	if _, err := s.questionRepo.FindQuestionByID(ctx, req.QuestionID); err != nil {
		return nil, false, err
	}
	return s.noteRepo.UpsertMarkdown(ctx, userID, req.QuestionID, req.Content)
}
