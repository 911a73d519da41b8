package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rank-ladder/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, nickname, email, password_hash, role, discord_handle, created_at`

func (r *postgresUserRepository) scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Nickname, &u.Email, &u.PasswordHash, &u.Role, &u.DiscordHandle, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, classifyError(err)
	}
	return &u, nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return u, err
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, err
}
