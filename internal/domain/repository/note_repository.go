package repository

import (
	"context"
	"database/sql"
	"fmt"

	"dsa_arena/internal/domain/model"
)

type NoteRepository interface {
	CreateNote(ctx context.Context, note *model.UserNote) error
	// ListNotes returns the user's notes on a question, newest first.
	ListNotes(ctx context.Context, userID string, questionID int64) ([]model.UserNote, error)
	// DeleteNote removes a note owned by userID and reports whether it existed.
	DeleteNote(ctx context.Context, userID string, noteID int64) (bool, error)

	// UpsertMarkdown writes the single markdown note for (user, question) and reports whether it was created.
	UpsertMarkdown(ctx context.Context, userID string, questionID int64, content string) (*model.MarkdownNote, bool, error)
	// MarkdownForTopic maps question id to markdown content for the topic's questions the user annotated.
	MarkdownForTopic(ctx context.Context, userID string, topicID int64) (map[int64]string, error)
}

type pgNoteRepository struct {
	db *sql.DB
}

func NewPgNoteRepository(db *sql.DB) NoteRepository {
	return &pgNoteRepository{db: db}
}

func (r *pgNoteRepository) CreateNote(ctx context.Context, n *model.UserNote) error {
	query := `INSERT INTO user_notes (user_id, question_id, content) VALUES ($1, $2, $3)
	          RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, query, n.UserID, n.QuestionID, n.Content).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("pgNoteRepository.CreateNote: %w", err)
	}
	return nil
}

func (r *pgNoteRepository) ListNotes(ctx context.Context, userID string, questionID int64) ([]model.UserNote, error) {
	query := `SELECT id, question_id, content, created_at FROM user_notes
	          WHERE user_id = $1 AND question_id = $2
	          ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, questionID)
	if err != nil {
		return nil, fmt.Errorf("pgNoteRepository.ListNotes: %w", err)
	}
	defer rows.Close()

	notes := []model.UserNote{}
	for rows.Next() {
		n := model.UserNote{UserID: userID}
		if err := rows.Scan(&n.ID, &n.QuestionID, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgNoteRepository.ListNotes scan: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *pgNoteRepository) DeleteNote(ctx context.Context, userID string, noteID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_notes WHERE id = $1 AND user_id = $2`, noteID, userID)
	if err != nil {
		return false, fmt.Errorf("pgNoteRepository.DeleteNote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgNoteRepository.DeleteNote: %w", err)
	}
	return n > 0, nil
}

func (r *pgNoteRepository) UpsertMarkdown(ctx context.Context, userID string, questionID int64, content string) (*model.MarkdownNote, bool, error) {
	// xmax is zero only for a freshly inserted tuple.
	query := `INSERT INTO markdown_notes (user_id, question_id, content)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, question_id) DO UPDATE SET content = EXCLUDED.content, updated_at = CURRENT_TIMESTAMP
	          RETURNING id, created_at, updated_at, (xmax = 0)`
	n := &model.MarkdownNote{UserID: userID, QuestionID: questionID, Content: content}
	var created bool
	if err := r.db.QueryRowContext(ctx, query, userID, questionID, content).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt, &created); err != nil {
		return nil, false, fmt.Errorf("pgNoteRepository.UpsertMarkdown: %w", err)
	}
	return n, created, nil
}

func (r *pgNoteRepository) MarkdownForTopic(ctx context.Context, userID string, topicID int64) (map[int64]string, error) {
	query := `SELECT m.question_id, m.content FROM markdown_notes m
	          JOIN questions q ON m.question_id = q.id
	          WHERE m.user_id = $1 AND q.topic_id = $2`
	rows, err := r.db.QueryContext(ctx, query, userID, topicID)
	if err != nil {
		return nil, fmt.Errorf("pgNoteRepository.MarkdownForTopic: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var content string
		if err := rows.Scan(&id, &content); err != nil {
			return nil, fmt.Errorf("pgNoteRepository.MarkdownForTopic scan: %w", err)
		}
		out[id] = content
	}
	return out, rows.Err()
}
