package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrRefreshTokenMismatch = errors.New("stored refresh token does not match")
	ErrSettingsNotFound     = errors.New("settings not found")
	ErrMetadataNotFound     = errors.New("login metadata not found")
)

// isUniqueViolation detects unique constraint errors from Postgres and SQLite.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
