package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/randomizer-api/internal/pkg/errors"
)

// uniqueViolationCode — SQLSTATE нарушения уникального ограничения
const uniqueViolationCode = "23505"

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности.
// Поддерживаются оба драйвера: pgx (gorm.io/driver/postgres) и lib/pq.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return true
	}
	return false
}

// translateNotFound преобразует gorm.ErrRecordNotFound в apperrors.ErrNotFound
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}
