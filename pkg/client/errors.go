package client

import (
	"errors"
	"fmt"
	"net/http"

	"dochub/internal/domain"
)

// Ошибки клиента, проверяются через errors.Is
var (
	ErrAuthentication   = errors.New("authentication failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrForbidden        = errors.New("permission denied")
)

// APIError - ответ сервера с кодом ошибки и полем detail
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
	}
	return e.Detail
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrValidation:
		return e.Status == http.StatusBadRequest
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}

// asAPIError приводит ошибку сервисного слоя к виду, который вернул бы сервер
func asAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	status := domain.StatusOf(err)
	if status >= http.StatusInternalServerError {
		return &APIError{Status: status, Detail: "Internal server error"}
	}
	return &APIError{Status: status, Detail: err.Error()}
}

func validationError(format string, args ...any) error {
	return &APIError{Status: http.StatusBadRequest, Detail: fmt.Sprintf(format, args...)}
}
