package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/firststep/ecom/internal/database"
	"github.com/firststep/ecom/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VerificationCodeRepository handles one-time code data access. The table is
// keyed by email, so at most one code can exist per address at any point.
type VerificationCodeRepository struct {
	pool *pgxpool.Pool
}

func NewVerificationCodeRepository(db *database.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{pool: db.Pool}
}

func scanCodeRow(scanner rowScanner) (*models.VerificationCode, error) {
	var code models.VerificationCode

	err := scanner.Scan(&code.Email, &code.Code, &code.ExpiresAt, &code.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &code, nil
}

// Upsert stores a fresh code for the email, replacing any previous one in a
// single statement. Two concurrent issues for the same address race cleanly:
// whichever write lands last owns the slot.
func (r *VerificationCodeRepository) Upsert(ctx context.Context, email, code string, expiresAt time.Time) (*models.VerificationCode, error) {
	query := `
		INSERT INTO verification_codes (email, code, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = NOW()
		RETURNING email, code, expires_at, created_at
	`

	record, err := scanCodeRow(r.pool.QueryRow(ctx, query, email, code, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to store verification code: %w", err)
	}

	return record, nil
}

// GetByEmail returns the active code row for the email, expired or not
func (r *VerificationCodeRepository) GetByEmail(ctx context.Context, email string) (*models.VerificationCode, error) {
	query := `
		SELECT email, code, expires_at, created_at
		FROM verification_codes
		WHERE email = $1
	`

	return scanCodeRow(r.pool.QueryRow(ctx, query, email))
}

// DeleteByEmail consumes the email's code slot
func (r *VerificationCodeRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM verification_codes WHERE email = $1`

	if _, err := r.pool.Exec(ctx, query, email); err != nil {
		return fmt.Errorf("failed to delete verification code: %w", database.MapPostgresError(err))
	}

	return nil
}

// DeleteExpired removes codes past their expiry; used by the background sweep
func (r *VerificationCodeRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM verification_codes WHERE expires_at < NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired codes: %w", database.MapPostgresError(err))
	}

	return result.RowsAffected(), nil
}
