package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
)

type QuestionRepository interface {
	// CreateQuestion inserts q unless its topic already holds a question with the same title.
	// It reports whether a row was written.
	CreateQuestion(ctx context.Context, tx *sql.Tx, q *model.Question) (bool, error)
	FindQuestionByID(ctx context.Context, id int64) (*model.Question, error)
	ListByTopic(ctx context.Context, topicID int64) ([]model.Question, error)
	ListBySheet(ctx context.Context, sheetID int64) ([]model.Question, error)
}

type pgQuestionRepository struct {
	db *sql.DB
}

func NewPgQuestionRepository(db *sql.DB) QuestionRepository {
	return &pgQuestionRepository{db: db}
}

const questionColumns = `q.id, q.topic_id, t.sheet_id, q.title, q.link, q.solution, q.platform, q.difficulty`

func scanQuestion(row rowScanner) (*model.Question, error) {
	q := &model.Question{}
	if err := row.Scan(&q.ID, &q.TopicID, &q.SheetID, &q.Title, &q.Link, &q.Solution, &q.Platform, &q.Difficulty); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *pgQuestionRepository) CreateQuestion(ctx context.Context, tx *sql.Tx, q *model.Question) (bool, error) {
	query := `INSERT INTO questions (topic_id, title, link, solution, platform, difficulty)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (topic_id, title) DO NOTHING
	          RETURNING id`
	err := conn(r.db, tx).QueryRowContext(ctx, query, q.TopicID, q.Title, q.Link, q.Solution, q.Platform, q.Difficulty).Scan(&q.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pgQuestionRepository.CreateQuestion: %w", err)
	}
	return true, nil
}

func (r *pgQuestionRepository) FindQuestionByID(ctx context.Context, id int64) (*model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions q JOIN topics t ON q.topic_id = t.id WHERE q.id = $1`
	q, err := scanQuestion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("question: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgQuestionRepository.FindQuestionByID: %w", err)
	}
	return q, nil
}

func (r *pgQuestionRepository) list(ctx context.Context, op, where string, arg any) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions q JOIN topics t ON q.topic_id = t.id
	          WHERE ` + where + ` ORDER BY q.topic_id, q.id`
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.%s: %w", op, err)
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("pgQuestionRepository.%s scan: %w", op, err)
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func (r *pgQuestionRepository) ListByTopic(ctx context.Context, topicID int64) ([]model.Question, error) {
	return r.list(ctx, "ListByTopic", "q.topic_id = $1", topicID)
}

func (r *pgQuestionRepository) ListBySheet(ctx context.Context, sheetID int64) ([]model.Question, error) {
	return r.list(ctx, "ListBySheet", "t.sheet_id = $1", sheetID)
}
