package handler

import (
	"net/http"

	"dochub/internal/auth"
	"dochub/internal/service"
)

type StorageQuotaHandler struct {
	quotaService *service.StorageQuotaService
	tokens       *auth.TokenManager
}

func NewStorageQuotaHandler(quotaService *service.StorageQuotaService, tokens *auth.TokenManager) *StorageQuotaHandler {
	return &StorageQuotaHandler{
		quotaService: quotaService,
		tokens:       tokens,
	}
}

func (h *StorageQuotaHandler) GetQuotaInfo(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "GetQuotaInfo", err)
		return
	}

	quotaInfo, err := h.quotaService.GetQuotaInfo(r.Context(), userID)
	if err != nil {
		writeError(w, r, "GetQuotaInfo", err)
		return
	}
	writeJSON(w, http.StatusOK, quotaInfo)
}
