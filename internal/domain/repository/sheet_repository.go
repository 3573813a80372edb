package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
)

type SheetRepository interface {
	CreateSheet(ctx context.Context, tx *sql.Tx, sheet *model.Sheet) error
	FindSheetByID(ctx context.Context, id int64) (*model.Sheet, error)
	FindSheetByName(ctx context.Context, tx *sql.Tx, name string) (*model.Sheet, error)
	ListSheets(ctx context.Context) ([]model.Sheet, error)
	// DeleteSheet removes the sheet with its topics, questions and dependent user rows.
	DeleteSheet(ctx context.Context, tx *sql.Tx, id int64) error

	FindOrCreateTopic(ctx context.Context, tx *sql.Tx, sheetID int64, name string) (*model.Topic, error)
	FindTopicByID(ctx context.Context, id int64) (*model.Topic, error)
	ListTopics(ctx context.Context, sheetID int64) ([]model.Topic, error)

	// SheetTotals counts the sheet's questions overall and per difficulty.
	SheetTotals(ctx context.Context, sheetID int64) (model.SheetTotals, error)
}

type pgSheetRepository struct {
	db *sql.DB
}

func NewPgSheetRepository(db *sql.DB) SheetRepository {
	return &pgSheetRepository{db: db}
}

func (r *pgSheetRepository) CreateSheet(ctx context.Context, tx *sql.Tx, s *model.Sheet) error {
	query := `INSERT INTO sheets (name, slug, description, image)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query, s.Name, s.Slug, s.Description, s.Image).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("sheet %q already exists: %w", s.Name, common.ErrConflict)
		}
		return fmt.Errorf("pgSheetRepository.CreateSheet: %w", err)
	}
	return nil
}

func (r *pgSheetRepository) findSheet(ctx context.Context, q querier, op, where string, arg any) (*model.Sheet, error) {
	s := &model.Sheet{}
	err := q.QueryRowContext(ctx, `SELECT id, name, slug, description, image, created_at FROM sheets WHERE `+where, arg).
		Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.Image, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sheet: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgSheetRepository.%s: %w", op, err)
	}
	return s, nil
}

func (r *pgSheetRepository) FindSheetByID(ctx context.Context, id int64) (*model.Sheet, error) {
	return r.findSheet(ctx, r.db, "FindSheetByID", "id = $1", id)
}

func (r *pgSheetRepository) FindSheetByName(ctx context.Context, tx *sql.Tx, name string) (*model.Sheet, error) {
	return r.findSheet(ctx, conn(r.db, tx), "FindSheetByName", "name = $1", name)
}

func (r *pgSheetRepository) ListSheets(ctx context.Context) ([]model.Sheet, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, description, image, created_at FROM sheets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("pgSheetRepository.ListSheets: %w", err)
	}
	defer rows.Close()

	var sheets []model.Sheet
	for rows.Next() {
		var s model.Sheet
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.Image, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgSheetRepository.ListSheets scan: %w", err)
		}
		sheets = append(sheets, s)
	}
	return sheets, rows.Err()
}

func (r *pgSheetRepository) DeleteSheet(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := conn(r.db, tx).ExecContext(ctx, `DELETE FROM sheets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("pgSheetRepository.DeleteSheet: %w", err)
	}
	return nil
}

func (r *pgSheetRepository) FindOrCreateTopic(ctx context.Context, tx *sql.Tx, sheetID int64, name string) (*model.Topic, error) {
	q := conn(r.db, tx)
	t := &model.Topic{SheetID: sheetID, Name: name}
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `INSERT INTO topics (sheet_id, name) VALUES ($1, $2)
	          ON CONFLICT (sheet_id, name) DO UPDATE SET name = EXCLUDED.name
	          RETURNING id`
	if err := q.QueryRowContext(ctx, query, sheetID, name).Scan(&t.ID); err != nil {
		return nil, fmt.Errorf("pgSheetRepository.FindOrCreateTopic: %w", err)
	}
	return t, nil
}

func (r *pgSheetRepository) FindTopicByID(ctx context.Context, id int64) (*model.Topic, error) {
	t := &model.Topic{}
	err := r.db.QueryRowContext(ctx, `SELECT id, sheet_id, name FROM topics WHERE id = $1`, id).Scan(&t.ID, &t.SheetID, &t.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("topic: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgSheetRepository.FindTopicByID: %w", err)
	}
	return t, nil
}

func (r *pgSheetRepository) ListTopics(ctx context.Context, sheetID int64) ([]model.Topic, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, sheet_id, name FROM topics WHERE sheet_id = $1 ORDER BY id`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("pgSheetRepository.ListTopics: %w", err)
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.ID, &t.SheetID, &t.Name); err != nil {
			return nil, fmt.Errorf("pgSheetRepository.ListTopics scan: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (r *pgSheetRepository) SheetTotals(ctx context.Context, sheetID int64) (model.SheetTotals, error) {
	query := `SELECT COUNT(*),
	                 COUNT(*) FILTER (WHERE q.difficulty = 'EASY'),
	                 COUNT(*) FILTER (WHERE q.difficulty = 'MEDIUM'),
	                 COUNT(*) FILTER (WHERE q.difficulty = 'HARD')
	          FROM questions q JOIN topics t ON q.topic_id = t.id
	          WHERE t.sheet_id = $1`
	var totals model.SheetTotals
	err := r.db.QueryRowContext(ctx, query, sheetID).Scan(&totals.TotalQuestions, &totals.TotalEasy, &totals.TotalMedium, &totals.TotalHard)
	if err != nil {
		return totals, fmt.Errorf("pgSheetRepository.SheetTotals: %w", err)
	}
	return totals, nil
}
