package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// HTTPBackend ходит в REST API сервера
type HTTPBackend struct {
	client *HTTPClient
}

func NewHTTPBackend(client *HTTPClient) *HTTPBackend {
	return &HTTPBackend{client: client}
}

func (b *HTTPBackend) Login(ctx context.Context, email, password string) (AuthTokens, error) {
	var tokens AuthTokens
	err := b.client.DoJSON(ctx, http.MethodPost, loginPath, map[string]string{
		"email":    email,
		"password": password,
	}, &tokens)
	return tokens, err
}

func (b *HTTPBackend) Logout(ctx context.Context, refresh string) error {
	return b.client.DoJSON(ctx, http.MethodPost, "/auth/token/blacklist/", map[string]string{"refresh": refresh}, nil)
}

func (b *HTTPBackend) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := b.client.DoJSON(ctx, http.MethodPost, "/users/", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (b *HTTPBackend) Me(ctx context.Context) (*User, error) {
	var user User
	if err := b.client.DoJSON(ctx, http.MethodGet, "/users/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (b *HTTPBackend) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var user User
	if err := b.client.DoJSON(ctx, http.MethodPut, "/users/update_profile/", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (b *HTTPBackend) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return b.client.DoJSON(ctx, http.MethodPut, "/users/change_password/", req, nil)
}

func (b *HTTPBackend) ResetPassword(ctx context.Context, email string) error {
	return b.client.DoJSON(ctx, http.MethodPost, "/users/reset_password/", map[string]string{"email": email}, nil)
}

func (b *HTTPBackend) ListDocuments(ctx context.Context, opts ListOptions) ([]Document, error) {
	return b.list(ctx, "/documents/", opts)
}

func (b *HTTPBackend) MyDocuments(ctx context.Context, opts ListOptions) ([]Document, error) {
	return b.list(ctx, "/documents/my_documents/", opts)
}

func (b *HTTPBackend) SharedWithMe(ctx context.Context, opts ListOptions) ([]Document, error) {
	return b.list(ctx, "/documents/shared_with_me/", opts)
}

func (b *HTTPBackend) StarredDocuments(ctx context.Context, opts ListOptions) ([]Document, error) {
	return b.list(ctx, "/documents/starred/", opts)
}

func (b *HTTPBackend) list(ctx context.Context, path string, opts ListOptions) ([]Document, error) {
	query := url.Values{}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.Ordering != "" {
		query.Set("ordering", opts.Ordering)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	docs := []Document{}
	if err := b.client.DoJSON(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (b *HTTPBackend) GetDocument(ctx context.Context, slug string) (*DocumentDetail, error) {
	var detail DocumentDetail
	if err := b.client.DoJSON(ctx, http.MethodGet, documentPath(slug), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (b *HTTPBackend) GetDocumentByID(ctx context.Context, id int64) (*DocumentDetail, error) {
	var detail DocumentDetail
	path := "/documents/get_by_id/?id=" + strconv.FormatInt(id, 10)
	if err := b.client.DoJSON(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (b *HTTPBackend) CreateDocument(ctx context.Context, upload Upload) (*Document, error) {
	fields := map[string]string{
		"title":       upload.Title,
		"description": upload.Description,
		"is_public":   strconv.FormatBool(upload.IsPublic),
	}
	if len(upload.Tags) > 0 {
		fields["tags"] = strings.Join(upload.Tags, ",")
	}

	var doc Document
	if err := b.multipart(ctx, "/documents/", fields, upload.FileName, upload.Data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (b *HTTPBackend) UpdateDocument(ctx context.Context, slug string, update DocumentUpdate) (*Document, error) {
	var doc Document
	if err := b.client.DoJSON(ctx, http.MethodPatch, documentPath(slug), update, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (b *HTTPBackend) DeleteDocument(ctx context.Context, slug string) error {
	return b.client.DoJSON(ctx, http.MethodDelete, documentPath(slug), nil, nil)
}

func (b *HTTPBackend) ToggleStar(ctx context.Context, slug string) (*Document, error) {
	var doc Document
	if err := b.client.DoJSON(ctx, http.MethodPost, documentPath(slug)+"star/", nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (b *HTTPBackend) AddComment(ctx context.Context, documentID int64, content string) (*Comment, error) {
	var comment Comment
	err := b.client.DoJSON(ctx, http.MethodPost, "/comments/", map[string]any{
		"document": documentID,
		"content":  content,
	}, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (b *HTTPBackend) DeleteComment(ctx context.Context, id int64) error {
	return b.client.DoJSON(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d/", id), nil, nil)
}

func (b *HTTPBackend) AddVersion(ctx context.Context, slug string, upload VersionUpload) (*Version, error) {
	var version Version
	fields := map[string]string{"comment": upload.Comment}
	if err := b.multipart(ctx, documentPath(slug)+"add_version/", fields, upload.FileName, upload.Data, &version); err != nil {
		return nil, err
	}
	return &version, nil
}

func (b *HTTPBackend) Share(ctx context.Context, slug string, userID int64, permission Permission) (*Share, error) {
	var share Share
	err := b.client.DoJSON(ctx, http.MethodPost, documentPath(slug)+"share/", map[string]any{
		"shared_with": userID,
		"permission":  permission,
	}, &share)
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (b *HTTPBackend) GetShare(ctx context.Context, id int64) (*Share, error) {
	var share Share
	if err := b.client.DoJSON(ctx, http.MethodGet, fmt.Sprintf("/shares/%d/", id), nil, &share); err != nil {
		return nil, err
	}
	return &share, nil
}

func (b *HTTPBackend) RemoveShare(ctx context.Context, id int64) error {
	return b.client.DoJSON(ctx, http.MethodDelete, fmt.Sprintf("/shares/%d/", id), nil, nil)
}

func (b *HTTPBackend) Quota(ctx context.Context) (*QuotaInfo, error) {
	var info QuotaInfo
	if err := b.client.DoJSON(ctx, http.MethodGet, "/quota/", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// multipart отправляет форму с файлом в поле "file"
func (b *HTTPBackend) multipart(ctx context.Context, path string, fields map[string]string, fileName string, data []byte, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return fmt.Errorf("failed to write form file: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := b.client.NewRequest(ctx, http.MethodPost, path, buf.Bytes(), w.FormDataContentType())
	if err != nil {
		return err
	}
	return b.client.send(req, out)
}

func documentPath(slug string) string {
	return "/documents/" + url.PathEscape(slug) + "/"
}
