package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dochub/internal/domain"
	"dochub/internal/logging"
)

var logger = logging.New("http")

// errorResponse - тело ответа с ошибкой
type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("[WriteJSON] Failed to encode response: %v", err)
	}
}

// writeError отдает {"detail": ...} со статусом, который соответствует ошибке
func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := domain.StatusOf(err)
	detail := err.Error()

	if status >= http.StatusInternalServerError {
		logger.Errorf("[%s] %s %s: %v", operation, r.Method, r.URL.Path, err)
		detail = "Internal server error"
	} else {
		logger.Debugf("[%s] %s %s: %v", operation, r.Method, r.URL.Path, err)
	}

	writeJSON(w, status, errorResponse{Detail: detail})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Validation("Request body is empty")
		}
		return domain.Validation("Invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NotFound("Not found.")
	}
	return id, nil
}
