package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mealcal/core/internal/domain/entities"
	"github.com/mealcal/core/internal/ports"
)

// Postgres error codes the repositories translate
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const userColumns = `id, name, surname, email, password_hash, created_at, updated_at`

// UserRepositoryImpl stores calendar owners. Emails are kept lower-cased.
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = normalizeEmail(user.Email)

	query := `
		INSERT INTO users (id, name, surname, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID, strings.TrimSpace(user.Name), strings.TrimSpace(user.Surname), user.Email, user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if pgCode(err) == uniqueViolation {
		return entities.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.getOne(ctx, "email = $1", normalizeEmail(email))
}

func (r *UserRepositoryImpl) getOne(ctx context.Context, where string, arg interface{}) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	var user entities.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by %s: %w", strings.Fields(where)[0], err)
	}

	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// pgCode returns the Postgres SQLSTATE of err, or "" when err is not a server error
func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
