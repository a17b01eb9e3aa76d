package domain

import (
	"time"
)

type Permission string

const (
	PermissionView    Permission = "view"
	PermissionComment Permission = "comment"
	PermissionEdit    Permission = "edit"
)

// Rank задает порядок прав: edit включает comment, comment включает view
func (p Permission) Rank() int {
	switch p {
	case PermissionView:
		return 1
	case PermissionComment:
		return 2
	case PermissionEdit:
		return 3
	default:
		return 0
	}
}

func (p Permission) Valid() bool {
	return p.Rank() > 0
}

// Allows проверяет, покрывает ли право p требуемое право required
func (p Permission) Allows(required Permission) bool {
	return p.Valid() && p.Rank() >= required.Rank()
}

type Share struct {
	ID           int64       `json:"id" db:"id"`
	DocumentID   int64       `json:"document" db:"document_id"`
	SharedWithID int64       `json:"-" db:"shared_with"`
	SharedWith   UserSummary `json:"shared_with" db:"-"`
	Permission   Permission  `json:"permission" db:"permission"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}
