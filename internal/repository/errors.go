package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"dochub/internal/domain"
)

// код ошибки postgres для нарушения уникальности
const uniqueViolation = "23505"

// wrapNotFound превращает sql.ErrNoRows в доменную ошибку
func wrapNotFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("%s not found", what)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// checkAffected возвращает NotFound, если запрос не затронул ни одной строки
func checkAffected(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("%s not found", what)
	}
	return nil
}
