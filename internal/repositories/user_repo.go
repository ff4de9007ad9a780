package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/firststep/ecom/internal/database"
	"github.com/firststep/ecom/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.EmailVerified, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

const userColumns = `id, name, email, password_hash, email_verified, created_at, updated_at`

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE name = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, name))
}

// Create inserts a new user. The unique constraints on email and name are the
// authoritative guard against duplicate registration; violations surface as
// models.ErrEmailTaken / models.ErrNameTaken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, name, email, password_hash, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.EmailVerified, user.CreatedAt, user.UpdatedAt,
	))
}

// MarkEmailVerified flips email_verified for an existing account. Missing
// rows are not an error: verification before registration has no account yet.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, email string) error {
	query := `
		UPDATE users SET email_verified = TRUE, updated_at = NOW()
		WHERE email = $1 AND email_verified = FALSE
	`

	if _, err := r.pool.Exec(ctx, query, email); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", database.MapPostgresError(err))
	}

	return nil
}

// UpdateName changes the unique display name
func (r *UserRepository) UpdateName(ctx context.Context, id, name string) (*models.User, error) {
	query := `
		UPDATE users SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query, name, id))
}

// UpdatePassword replaces the stored credential with a new digest
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `
		UPDATE users SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
