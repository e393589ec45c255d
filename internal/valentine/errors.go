package valentine

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidPage     = errors.New("invalid page")
	ErrDuplicateID     = errors.New("duplicate page id")
	ErrAlreadyAccepted = errors.New("already accepted")
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a uniqueness constraint failure,
// whichever layer (gorm translation, pgx, lib/pq) surfaced it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
