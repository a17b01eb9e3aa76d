package handler

import (
	"net/http"

	"dochub/internal/auth"
	"dochub/internal/domain"
	"dochub/internal/service"
)

type ShareHandler struct {
	documentService *service.DocumentService
	tokens          *auth.TokenManager
}

type updateShareRequest struct {
	Permission domain.Permission `json:"permission"`
}

func NewShareHandler(documentService *service.DocumentService, tokens *auth.TokenManager) *ShareHandler {
	return &ShareHandler{
		documentService: documentService,
		tokens:          tokens,
	}
}

func (h *ShareHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "GetShare", err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "GetShare", err)
		return
	}

	share, err := h.documentService.GetShare(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, "GetShare", err)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

// UpdateShare меняет уровень доступа
func (h *ShareHandler) UpdateShare(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "UpdateShare", err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "UpdateShare", err)
		return
	}

	var req updateShareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "UpdateShare", err)
		return
	}

	share, err := h.documentService.UpdateShare(r.Context(), userID, id, req.Permission)
	if err != nil {
		writeError(w, r, "UpdateShare", err)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

// RemoveShare отзывает доступ
func (h *ShareHandler) RemoveShare(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "RemoveShare", err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "RemoveShare", err)
		return
	}

	if err := h.documentService.RemoveShare(r.Context(), userID, id); err != nil {
		writeError(w, r, "RemoveShare", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
