package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/forvaidya/icomment/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetBySubject(ctx context.Context, subject string) (*domain.User, error)
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error
	CountAuthored(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (user_id, username, kind, email, subject, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		user.ID, user.Username, user.Kind, user.Email, user.Subject, user.IsAdmin,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE user_id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE username = $1`

	err := r.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetBySubject(ctx context.Context, subject string) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE subject = $1`

	err := r.db.GetContext(ctx, &user, query, subject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	query := `UPDATE users SET is_admin = $2, updated_at = NOW() WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, id, isAdmin)
	return err
}

// CountAuthored returns how many discussions and comments the user authored,
// deleted or not. A non-zero count blocks user removal.
func (r *userRepository) CountAuthored(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	query := `
		SELECT
			(SELECT COUNT(*) FROM discussions WHERE created_by = $1) +
			(SELECT COUNT(*) FROM comments WHERE author_id = $1)`

	err := r.db.GetContext(ctx, &count, query, id)
	return count, err
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
