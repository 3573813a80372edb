package repository

import (
	"context"
	"database/sql"
	"fmt"

	"dsa_arena/internal/domain/model"
)

type StatusRepository interface {
	// Insert adds the status row if absent and reports whether it was created.
	Insert(ctx context.Context, tx *sql.Tx, userID string, questionID int64, status model.QuestionStatus) (bool, error)
	// Delete removes the status row and reports whether one existed.
	Delete(ctx context.Context, tx *sql.Tx, userID string, questionID int64, status model.QuestionStatus) (bool, error)
	Has(ctx context.Context, userID string, questionID int64, status model.QuestionStatus) (bool, error)
	// QuestionIDs returns the ids of the sheet's questions the user has marked with status.
	QuestionIDs(ctx context.Context, userID string, sheetID int64, status model.QuestionStatus) (map[int64]bool, error)
	ListSaved(ctx context.Context, userID string) ([]model.SavedQuestion, error)
}

type pgStatusRepository struct {
	db *sql.DB
}

func NewPgStatusRepository(db *sql.DB) StatusRepository {
	return &pgStatusRepository{db: db}
}

func (r *pgStatusRepository) Insert(ctx context.Context, tx *sql.Tx, userID string, questionID int64, status model.QuestionStatus) (bool, error) {
	query := `INSERT INTO user_question_status (user_id, question_id, status)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, question_id, status) DO NOTHING`
	res, err := conn(r.db, tx).ExecContext(ctx, query, userID, questionID, status)
	if err != nil {
		return false, fmt.Errorf("pgStatusRepository.Insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgStatusRepository.Insert: %w", err)
	}
	return n > 0, nil
}

func (r *pgStatusRepository) Delete(ctx context.Context, tx *sql.Tx, userID string, questionID int64, status model.QuestionStatus) (bool, error) {
	query := `DELETE FROM user_question_status WHERE user_id = $1 AND question_id = $2 AND status = $3`
	res, err := conn(r.db, tx).ExecContext(ctx, query, userID, questionID, status)
	if err != nil {
		return false, fmt.Errorf("pgStatusRepository.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("pgStatusRepository.Delete: %w", err)
	}
	return n > 0, nil
}

func (r *pgStatusRepository) Has(ctx context.Context, userID string, questionID int64, status model.QuestionStatus) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM user_question_status WHERE user_id = $1 AND question_id = $2 AND status = $3)`
	if err := r.db.QueryRowContext(ctx, query, userID, questionID, status).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgStatusRepository.Has: %w", err)
	}
	return exists, nil
}

func (r *pgStatusRepository) QuestionIDs(ctx context.Context, userID string, sheetID int64, status model.QuestionStatus) (map[int64]bool, error) {
	query := `SELECT s.question_id
	          FROM user_question_status s
	          JOIN questions q ON s.question_id = q.id
	          JOIN topics t ON q.topic_id = t.id
	          WHERE s.user_id = $1 AND t.sheet_id = $2 AND s.status = $3`
	rows, err := r.db.QueryContext(ctx, query, userID, sheetID, status)
	if err != nil {
		return nil, fmt.Errorf("pgStatusRepository.QuestionIDs: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgStatusRepository.QuestionIDs scan: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (r *pgStatusRepository) ListSaved(ctx context.Context, userID string) ([]model.SavedQuestion, error) {
	query := `SELECT ` + questionColumns + `, t.name, sh.name
	          FROM user_question_status s
	          JOIN questions q ON s.question_id = q.id
	          JOIN topics t ON q.topic_id = t.id
	          JOIN sheets sh ON t.sheet_id = sh.id
	          WHERE s.user_id = $1 AND s.status = 'SAVED'
	          ORDER BY t.sheet_id, t.id, q.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgStatusRepository.ListSaved: %w", err)
	}
	defer rows.Close()

	var saved []model.SavedQuestion
	for rows.Next() {
		var sq model.SavedQuestion
		q := &sq.Question
		if err := rows.Scan(&q.ID, &q.TopicID, &q.SheetID, &q.Title, &q.Link, &q.Solution, &q.Platform, &q.Difficulty,
			&sq.TopicName, &sq.SheetName); err != nil {
			return nil, fmt.Errorf("pgStatusRepository.ListSaved scan: %w", err)
		}
		saved = append(saved, sq)
	}
	return saved, rows.Err()
}
