package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
)

type ProgressRepository interface {
	Find(ctx context.Context, userID string, sheetID int64) (*model.UserSheetProgress, error)
	ListForUser(ctx context.Context, userID string) ([]model.UserSheetProgress, error)
	// Increment creates the row on first solve, then bumps solved_count and the difficulty bucket.
	Increment(ctx context.Context, tx *sql.Tx, userID string, sheetID int64, d model.Difficulty) error
	// Decrement lowers solved_count and the difficulty bucket, never below zero. A missing row is left alone.
	Decrement(ctx context.Context, tx *sql.Tx, userID string, sheetID int64, d model.Difficulty) error
	// PrimeUser inserts zero rows for every sheet the user has none for.
	PrimeUser(ctx context.Context, tx *sql.Tx, userID string) (int64, error)
	// PrimeAll inserts zero rows for every missing (user, sheet) pair.
	PrimeAll(ctx context.Context) (int64, error)
}

type pgProgressRepository struct {
	db *sql.DB
}

func NewPgProgressRepository(db *sql.DB) ProgressRepository {
	return &pgProgressRepository{db: db}
}

// bucketDeltas returns the (easy, medium, hard) increments for a difficulty. UNMARKED touches no bucket.
func bucketDeltas(d model.Difficulty) (easy, medium, hard int) {
	switch d {
	case model.DifficultyEasy:
		return 1, 0, 0
	case model.DifficultyMedium:
		return 0, 1, 0
	case model.DifficultyHard:
		return 0, 0, 1
	default:
		return 0, 0, 0
	}
}

func (r *pgProgressRepository) Find(ctx context.Context, userID string, sheetID int64) (*model.UserSheetProgress, error) {
	p := &model.UserSheetProgress{UserID: userID, SheetID: sheetID}
	query := `SELECT solved_count, solved_easy, solved_medium, solved_hard
	          FROM user_sheet_progress WHERE user_id = $1 AND sheet_id = $2`
	err := r.db.QueryRowContext(ctx, query, userID, sheetID).Scan(&p.SolvedCount, &p.SolvedEasy, &p.SolvedMedium, &p.SolvedHard)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("progress: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgProgressRepository.Find: %w", err)
	}
	return p, nil
}

func (r *pgProgressRepository) ListForUser(ctx context.Context, userID string) ([]model.UserSheetProgress, error) {
	query := `SELECT sheet_id, solved_count, solved_easy, solved_medium, solved_hard
	          FROM user_sheet_progress WHERE user_id = $1 ORDER BY sheet_id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListForUser: %w", err)
	}
	defer rows.Close()

	var out []model.UserSheetProgress
	for rows.Next() {
		p := model.UserSheetProgress{UserID: userID}
		if err := rows.Scan(&p.SheetID, &p.SolvedCount, &p.SolvedEasy, &p.SolvedMedium, &p.SolvedHard); err != nil {
			return nil, fmt.Errorf("pgProgressRepository.ListForUser scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgProgressRepository) Increment(ctx context.Context, tx *sql.Tx, userID string, sheetID int64, d model.Difficulty) error {
	easy, medium, hard := bucketDeltas(d)
	query := `INSERT INTO user_sheet_progress (user_id, sheet_id, solved_count, solved_easy, solved_medium, solved_hard)
	          VALUES ($1, $2, 1, $3, $4, $5)
	          ON CONFLICT (user_id, sheet_id) DO UPDATE SET
	              solved_count  = user_sheet_progress.solved_count + 1,
	              solved_easy   = user_sheet_progress.solved_easy + EXCLUDED.solved_easy,
	              solved_medium = user_sheet_progress.solved_medium + EXCLUDED.solved_medium,
	              solved_hard   = user_sheet_progress.solved_hard + EXCLUDED.solved_hard`
	if _, err := conn(r.db, tx).ExecContext(ctx, query, userID, sheetID, easy, medium, hard); err != nil {
		return fmt.Errorf("pgProgressRepository.Increment: %w", err)
	}
	return nil
}

func (r *pgProgressRepository) Decrement(ctx context.Context, tx *sql.Tx, userID string, sheetID int64, d model.Difficulty) error {
	easy, medium, hard := bucketDeltas(d)
	query := `UPDATE user_sheet_progress SET
	              solved_count  = GREATEST(solved_count - 1, 0),
	              solved_easy   = GREATEST(solved_easy - $3, 0),
	              solved_medium = GREATEST(solved_medium - $4, 0),
	              solved_hard   = GREATEST(solved_hard - $5, 0)
	          WHERE user_id = $1 AND sheet_id = $2`
	if _, err := conn(r.db, tx).ExecContext(ctx, query, userID, sheetID, easy, medium, hard); err != nil {
		return fmt.Errorf("pgProgressRepository.Decrement: %w", err)
	}
	return nil
}

func (r *pgProgressRepository) PrimeUser(ctx context.Context, tx *sql.Tx, userID string) (int64, error) {
	query := `INSERT INTO user_sheet_progress (user_id, sheet_id)
	          SELECT $1, s.id FROM sheets s
	          ON CONFLICT (user_id, sheet_id) DO NOTHING`
	res, err := conn(r.db, tx).ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("pgProgressRepository.PrimeUser: %w", err)
	}
	return res.RowsAffected()
}

func (r *pgProgressRepository) PrimeAll(ctx context.Context) (int64, error) {
	query := `INSERT INTO user_sheet_progress (user_id, sheet_id)
	          SELECT u.id, s.id FROM users u CROSS JOIN sheets s
	          ON CONFLICT (user_id, sheet_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("pgProgressRepository.PrimeAll: %w", err)
	}
	return res.RowsAffected()
}
