package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"dochub/internal/auth"
	"dochub/internal/domain"
	"dochub/internal/preview"
	"dochub/internal/service"
)

const (
	maxUploadSize   = 100 * 1024 * 1024 // 100MB
	multipartMemory = 32 * 1024 * 1024
)

type DocumentHandler struct {
	documentService *service.DocumentService
	previewService  *preview.Service
	tokens          *auth.TokenManager
}

func NewDocumentHandler(
	documentService *service.DocumentService,
	previewService *preview.Service,
	tokens *auth.TokenManager,
) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		previewService:  previewService,
		tokens:          tokens,
	}
}

func listOptions(r *http.Request) domain.ListOptions {
	q := r.URL.Query()
	return domain.ListOptions{
		Search:   strings.TrimSpace(q.Get("search")),
		Ordering: q.Get("ordering"),
	}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "ListDocuments", err)
		return
	}

	docs, err := h.documentService.List(r.Context(), userID, listOptions(r))
	if err != nil {
		writeError(w, r, "ListDocuments", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) MyDocuments(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "MyDocuments", err)
		return
	}

	docs, err := h.documentService.MyDocuments(r.Context(), userID, listOptions(r))
	if err != nil {
		writeError(w, r, "MyDocuments", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "SharedWithMe", err)
		return
	}

	docs, err := h.documentService.SharedWithMe(r.Context(), userID, listOptions(r))
	if err != nil {
		writeError(w, r, "SharedWithMe", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Starred(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "Starred", err)
		return
	}

	docs, err := h.documentService.Starred(r.Context(), userID, listOptions(r))
	if err != nil {
		writeError(w, r, "Starred", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "GetByID", err)
		return
	}

	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeError(w, r, "GetByID", domain.Validation("Document ID is required."))
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, r, "GetByID", domain.Validation("Document ID must be an integer."))
		return
	}

	doc, err := h.documentService.GetByID(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, "GetByID", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "GetDocument", err)
		return
	}

	doc, err := h.documentService.GetBySlug(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, "GetDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Create принимает multipart форму: title, description, file, is_public, tags
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "CreateDocument", err)
		return
	}

	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, "CreateDocument", err)
		return
	}

	name, contentType, data, err := readFormFile(r)
	if err != nil {
		writeError(w, r, "CreateDocument", err)
		return
	}

	upload := domain.DocumentUpload{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		IsPublic:    parseBool(r.FormValue("is_public")),
		Tags:        parseTags(r.MultipartForm.Value["tags"]),
		FileName:    name,
		ContentType: contentType,
		Data:        data,
	}

	doc, err := h.documentService.Create(r.Context(), userID, upload)
	if err != nil {
		writeError(w, r, "CreateDocument", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// Update - частичное обновление, PUT и PATCH обрабатываются одинаково
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "UpdateDocument", err)
		return
	}

	var update domain.DocumentUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, r, "UpdateDocument", err)
		return
	}

	doc, err := h.documentService.Update(r.Context(), userID, chi.URLParam(r, "slug"), update)
	if err != nil {
		writeError(w, r, "UpdateDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "DeleteDocument", err)
		return
	}

	if err := h.documentService.Delete(r.Context(), userID, chi.URLParam(r, "slug")); err != nil {
		writeError(w, r, "DeleteDocument", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "ToggleStar", err)
		return
	}

	doc, err := h.documentService.ToggleStar(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, "ToggleStar", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Comments(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "ListComments", err)
		return
	}

	comments, err := h.documentService.ListComments(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, "ListComments", err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *DocumentHandler) Versions(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "ListVersions", err)
		return
	}

	versions, err := h.documentService.ListVersions(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, "ListVersions", err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *DocumentHandler) Shares(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "ListShares", err)
		return
	}

	shares, err := h.documentService.ListShares(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, "ListShares", err)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}

// AddVersion принимает multipart форму: file, comment
func (h *DocumentHandler) AddVersion(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "AddVersion", err)
		return
	}

	if err := parseMultipart(w, r); err != nil {
		writeError(w, r, "AddVersion", err)
		return
	}

	name, contentType, data, err := readFormFile(r)
	if err != nil {
		writeError(w, r, "AddVersion", err)
		return
	}

	version, err := h.documentService.AddVersion(r.Context(), userID, chi.URLParam(r, "slug"), domain.VersionUpload{
		FileName:    name,
		ContentType: contentType,
		Data:        data,
		Comment:     r.FormValue("comment"),
	})
	if err != nil {
		writeError(w, r, "AddVersion", err)
		return
	}
	writeJSON(w, http.StatusCreated, version)
}

func (h *DocumentHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "ShareDocument", err)
		return
	}

	var req service.ShareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, "ShareDocument", err)
		return
	}

	share, err := h.documentService.Share(r.Context(), userID, chi.URLParam(r, "slug"), req)
	if err != nil {
		writeError(w, r, "ShareDocument", err)
		return
	}
	writeJSON(w, http.StatusCreated, share)
}

// Download отдает файл текущей версии или версии из ?version=
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "Download", err)
		return
	}

	version := 0
	if raw := r.URL.Query().Get("version"); raw != "" {
		version, err = strconv.Atoi(raw)
		if err != nil || version <= 0 {
			writeError(w, r, "Download", domain.Validation("version must be a positive integer"))
			return
		}
	}

	file, err := h.documentService.Download(r.Context(), userID, chi.URLParam(r, "slug"), version)
	if err != nil {
		writeError(w, r, "Download", err)
		return
	}
	defer file.Close()

	contentType := file.ContentType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}))
	if file.ContentLength() > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(file.ContentLength(), 10))
	}

	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, file); err != nil {
		logger.Warnf("[Download] Failed to stream file %s: %v", file.FileName, err)
	}
}

func (h *DocumentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	userID, err := h.tokens.VerifyToken(r)
	if err != nil {
		writeError(w, r, "Preview", err)
		return
	}

	previewData, err := h.previewService.GetOrGeneratePreview(r.Context(), userID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, "Preview", err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(previewData)
}

func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.Validation("file: file size exceeds maximum allowed size of %d bytes", maxUploadSize)
		}
		return domain.Validation("Invalid multipart form: %v", err)
	}
	return nil
}

// readFormFile читает поле file. Отсутствие файла не ошибка, его проверяет сервис.
func readFormFile(r *http.Request) (name, contentType string, data []byte, err error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", "", nil, nil
		}
		return "", "", nil, domain.Validation("file: %v", err)
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return header.Filename, header.Header.Get("Content-Type"), data, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}

// parseTags принимает повторяющиеся поля tags, список через запятую или JSON массив
func parseTags(values []string) []string {
	var tags []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "[") {
			var parsed []string
			if err := json.Unmarshal([]byte(v), &parsed); err == nil {
				tags = append(tags, parsed...)
				continue
			}
		}
		tags = append(tags, strings.Split(v, ",")...)
	}
	return tags
}
