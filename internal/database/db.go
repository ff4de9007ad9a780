package database

import (
	"errors"
	"strings"

	"github.com/firststep/ecom/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapPostgresError translates driver errors into the model's sentinel errors.
// The unique constraints on users are the authoritative guard for registration
// conflicts, so unique_violation is refined by constraint name where possible.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch {
			case strings.Contains(pgErr.ConstraintName, "email"):
				return models.ErrEmailTaken
			case strings.Contains(pgErr.ConstraintName, "name"):
				return models.ErrNameTaken
			}
			return models.ErrConflict
		case "23503": // foreign_key_violation
			return models.ErrBadRequest
		case "23502": // not_null_violation
			return models.ErrBadRequest
		}
	}

	return err
}
