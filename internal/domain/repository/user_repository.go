package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, tx *sql.Tx, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	// LockByID loads the user and holds a row lock until tx ends.
	LockByID(ctx context.Context, tx *sql.Tx, id string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateScore(ctx context.Context, tx *sql.Tx, id string, score int, rank string) error
	UpdateProfileInfo(ctx context.Context, id string, info model.ProfileInfo) error
	UpdateSocialLinks(ctx context.Context, id string, links model.SocialLinks) error
	UpdatePhoto(ctx context.Context, id, path string) error
	UpdateBanner(ctx context.Context, id, path string) error
	Accept(ctx context.Context, id string) error
	TopByScore(ctx context.Context, limit int) ([]model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, display_name, hashed_password, role, tagline, pronouns, location,
	profile_photo, profile_banner, github, linkedin, portfolio, score, rank, privilege,
	is_accepted, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.HashedPassword, &u.Role, &u.Tagline, &u.Pronouns, &u.Location,
		&u.ProfilePhoto, &u.ProfileBanner, &u.GitHub, &u.LinkedIn, &u.Portfolio, &u.Score, &u.Rank, &u.Privilege,
		&u.IsAccepted, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *pgUserRepository) Create(ctx context.Context, tx *sql.Tx, user *model.User) error {
	query := `INSERT INTO users (id, username, email, display_name, hashed_password, role, profile_photo, profile_banner, score, rank, is_accepted, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING created_at, updated_at`
	err := conn(r.db, tx).QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.DisplayName, user.HashedPassword, user.Role,
		user.ProfilePhoto, user.ProfileBanner, user.Score, user.Rank, user.IsAccepted, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) findOne(ctx context.Context, q querier, op, where string, arg any) (*model.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, r.db, "FindByEmail", "email = $1", email)
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, r.db, "FindByUsername", "username = $1", username)
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, r.db, "FindByID", "id = $1", id)
}

func (r *pgUserRepository) LockByID(ctx context.Context, tx *sql.Tx, id string) (*model.User, error) {
	return r.findOne(ctx, conn(r.db, tx), "LockByID", "id = $1 FOR UPDATE", id)
}

func (r *pgUserRepository) exists(ctx context.Context, op, where string, arg any) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE `+where+`)`, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	return exists, nil
}

func (r *pgUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "UsernameExists", "username = $1", username)
}

func (r *pgUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "EmailExists", "email = $1", email)
}

// update runs a single-row UPDATE and reports ErrNotFound when no row matched.
func (r *pgUserRepository) update(ctx context.Context, q querier, op, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("user: %w", common.ErrNotFound)
	}
	return nil
}

func (r *pgUserRepository) UpdateScore(ctx context.Context, tx *sql.Tx, id string, score int, rank string) error {
	return r.update(ctx, conn(r.db, tx), "UpdateScore",
		`UPDATE users SET score = $1, rank = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`,
		score, rank, id)
}

func (r *pgUserRepository) UpdateProfileInfo(ctx context.Context, id string, info model.ProfileInfo) error {
	return r.update(ctx, r.db, "UpdateProfileInfo",
		`UPDATE users SET display_name = $1, tagline = $2, pronouns = $3, location = $4, updated_at = CURRENT_TIMESTAMP WHERE id = $5`,
		info.DisplayName, info.Tagline, info.Pronouns, info.Location, id)
}

func (r *pgUserRepository) UpdateSocialLinks(ctx context.Context, id string, links model.SocialLinks) error {
	return r.update(ctx, r.db, "UpdateSocialLinks",
		`UPDATE users SET github = $1, linkedin = $2, portfolio = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $4`,
		links.GitHub, links.LinkedIn, links.Portfolio, id)
}

func (r *pgUserRepository) UpdatePhoto(ctx context.Context, id, path string) error {
	return r.update(ctx, r.db, "UpdatePhoto",
		`UPDATE users SET profile_photo = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, path, id)
}

func (r *pgUserRepository) UpdateBanner(ctx context.Context, id, path string) error {
	return r.update(ctx, r.db, "UpdateBanner",
		`UPDATE users SET profile_banner = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, path, id)
}

func (r *pgUserRepository) Accept(ctx context.Context, id string) error {
	return r.update(ctx, r.db, "Accept",
		`UPDATE users SET is_accepted = TRUE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
}

func (r *pgUserRepository) TopByScore(ctx context.Context, limit int) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE is_accepted AND is_active
	          ORDER BY score DESC, username ASC
	          LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.TopByScore: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("pgUserRepository.TopByScore scan: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
