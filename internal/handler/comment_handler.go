package handler

import (
	"net/http"

	"dochub/internal/auth"
	"dochub/internal/service"
)

type CommentHandler struct {
	documentService *service.DocumentService
	tokens          *auth.TokenManager
}

func NewCommentHandler(documentService *service.DocumentService, tokens *auth.TokenManager) *CommentHandler {
	return &CommentHandler{
		documentService: documentService,
		tokens:          tokens,
	}
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "CreateComment", err)
		return
	}

	var req service.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "CreateComment", err)
		return
	}

	comment, err := h.documentService.AddComment(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, "CreateComment", err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "UpdateComment", err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "UpdateComment", err)
		return
	}

	var req updateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "UpdateComment", err)
		return
	}

	comment, err := h.documentService.UpdateComment(r.Context(), userID, id, req.Content)
	if err != nil {
		writeError(w, r, "UpdateComment", err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "DeleteComment", err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "DeleteComment", err)
		return
	}

	if err := h.documentService.DeleteComment(r.Context(), userID, id); err != nil {
		writeError(w, r, "DeleteComment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
