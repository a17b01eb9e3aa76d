package domain

import (
	"strings"
	"time"
)

type Document struct {
	ID             int64       `json:"id" db:"id"`
	Slug           string      `json:"slug" db:"slug"`
	Title          string      `json:"title" db:"title"`
	Description    string      `json:"description" db:"description"`
	File           string      `json:"file" db:"-"` // ссылка на скачивание, заполняется сервисом
	FileKey        string      `json:"-" db:"file_key"`
	FileType       string      `json:"file_type" db:"file_type"`
	FileSize       int64       `json:"file_size" db:"file_size"`
	IsPublic       bool        `json:"is_public" db:"is_public"`
	IsStarred      bool        `json:"is_starred" db:"-"`
	OwnerID        int64       `json:"-" db:"owner_id"`
	Owner          UserSummary `json:"owner" db:"-"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
	CurrentVersion int         `json:"current_version" db:"current_version"`
	VersionCount   int         `json:"version_count" db:"version_count"`
	ShareCount     int         `json:"share_count" db:"share_count"`
	Tags           []string    `json:"tags" db:"-"`
}

// DocumentDetail - документ вместе с комментариями, версиями и доступами
type DocumentDetail struct {
	Document
	Comments []Comment `json:"comments"`
	Versions []Version `json:"versions"`
	Shares   []Share   `json:"shares"`
}

// DocumentUpload описывает загружаемый файл
type DocumentUpload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"is_public"`
	Tags        []string `json:"tags"`
	FileName    string   `json:"file"`
	ContentType string   `json:"-"`
	Data        []byte   `json:"-"`
}

// DocumentUpdate - частичное обновление метаданных документа
type DocumentUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	IsPublic    *bool     `json:"is_public,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// ListOptions - параметры выборки списка документов
type ListOptions struct {
	Search   string
	Ordering string
}

const DefaultOrdering = "-updated_at"

// OrderingFields - поля, по которым разрешена сортировка
var OrderingFields = map[string]bool{
	"title":      true,
	"created_at": true,
	"updated_at": true,
	"file_size":  true,
}

// ParseOrdering разбирает параметр сортировки вида "-updated_at".
// Неизвестные поля заменяются сортировкой по умолчанию.
func ParseOrdering(ordering string) (field string, desc bool) {
	ordering = strings.TrimSpace(ordering)
	field = strings.TrimPrefix(ordering, "-")
	if !OrderingFields[field] {
		ordering = DefaultOrdering
		field = strings.TrimPrefix(ordering, "-")
	}
	return field, strings.HasPrefix(ordering, "-")
}
