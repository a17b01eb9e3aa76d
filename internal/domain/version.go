// domain/version.go
package domain

import (
	"time"
)

type Version struct {
	ID            int64       `json:"id" db:"id"`
	DocumentID    int64       `json:"document" db:"document_id"`
	VersionNumber int         `json:"version_number" db:"version_number"`
	File          string      `json:"file" db:"-"`
	FileKey       string      `json:"-" db:"file_key"`
	FileSize      int64       `json:"file_size" db:"file_size"`
	Comment       string      `json:"comment" db:"comment"`
	CreatedByID   *int64      `json:"-" db:"created_by"`
	CreatedBy     UserSummary `json:"created_by" db:"-"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}

// VersionUpload - новая версия файла документа
type VersionUpload struct {
	FileName    string
	ContentType string
	Data        []byte
	Comment     string
}
