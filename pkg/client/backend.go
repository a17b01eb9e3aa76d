package client

import "context"

// Backend - удаленная сторона хранилищ: REST API или встроенные фикстуры
type Backend interface {
	Login(ctx context.Context, email, password string) (AuthTokens, error)
	Logout(ctx context.Context, refresh string) error
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Me(ctx context.Context) (*User, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	ResetPassword(ctx context.Context, email string) error

	ListDocuments(ctx context.Context, opts ListOptions) ([]Document, error)
	MyDocuments(ctx context.Context, opts ListOptions) ([]Document, error)
	SharedWithMe(ctx context.Context, opts ListOptions) ([]Document, error)
	StarredDocuments(ctx context.Context, opts ListOptions) ([]Document, error)
	GetDocument(ctx context.Context, slug string) (*DocumentDetail, error)
	GetDocumentByID(ctx context.Context, id int64) (*DocumentDetail, error)
	CreateDocument(ctx context.Context, upload Upload) (*Document, error)
	UpdateDocument(ctx context.Context, slug string, update DocumentUpdate) (*Document, error)
	DeleteDocument(ctx context.Context, slug string) error
	ToggleStar(ctx context.Context, slug string) (*Document, error)

	AddComment(ctx context.Context, documentID int64, content string) (*Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	AddVersion(ctx context.Context, slug string, upload VersionUpload) (*Version, error)
	Share(ctx context.Context, slug string, userID int64, permission Permission) (*Share, error)
	GetShare(ctx context.Context, id int64) (*Share, error)
	RemoveShare(ctx context.Context, id int64) error

	Quota(ctx context.Context) (*QuotaInfo, error)
}
