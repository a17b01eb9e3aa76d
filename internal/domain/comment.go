package domain

import "time"

type Comment struct {
	ID         int64       `json:"id" db:"id"`
	DocumentID int64       `json:"document" db:"document_id"`
	AuthorID   int64       `json:"-" db:"author_id"`
	Author     UserSummary `json:"author" db:"-"`
	Content    string      `json:"content" db:"content"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}
