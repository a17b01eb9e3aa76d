package service

import (
	"context"
	"dochub/internal/domain"
	"errors"
	"fmt"
)

// PermissionService проверяет права пользователя на документ
type PermissionService struct {
	shareRepo ShareRepository
}

func NewPermissionService(shareRepo ShareRepository) *PermissionService {
	return &PermissionService{
		shareRepo: shareRepo,
	}
}

// OperationType определяет тип операции над документом
type OperationType string

const (
	OperationView    OperationType = "view"
	OperationComment OperationType = "comment"
	OperationEdit    OperationType = "edit"
	OperationShare   OperationType = "share"
	OperationDelete  OperationType = "delete"
)

// AccessLevel - уровень доступа: владелец > edit > comment > view
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessView
	AccessComment
	AccessEdit
	AccessOwner
)

var deniedMessages = map[OperationType]string{
	OperationComment: "You do not have permission to comment on this document.",
	OperationEdit:    "You do not have permission to edit this document.",
	OperationShare:   "Only the document owner can share it.",
	OperationDelete:  "Only the document owner can delete it.",
}

// checkAccessLevel проверяет, достаточен ли уровень доступа для операции
func (s *PermissionService) checkAccessLevel(level AccessLevel, operation OperationType) bool {
	switch operation {
	case OperationView:
		return level >= AccessView
	case OperationComment:
		return level >= AccessComment
	case OperationEdit:
		return level >= AccessEdit
	case OperationShare, OperationDelete:
		// Только владелец
		return level == AccessOwner
	default:
		return false
	}
}

// AccessLevel вычисляет уровень доступа пользователя к документу
func (s *PermissionService) AccessLevel(ctx context.Context, userID int64, doc *domain.Document) (AccessLevel, error) {
	if doc.OwnerID == userID {
		return AccessOwner, nil
	}

	level := AccessNone
	share, err := s.shareRepo.GetForUser(ctx, doc.ID, userID)
	switch {
	case err == nil:
		level = levelFromPermission(share.Permission)
	case !errors.Is(err, domain.ErrNotFound):
		return AccessNone, fmt.Errorf("failed to get share: %w", err)
	}

	// Публичный документ можно смотреть и комментировать
	if doc.IsPublic && level < AccessComment {
		level = AccessComment
	}
	return level, nil
}

func levelFromPermission(p domain.Permission) AccessLevel {
	switch p {
	case domain.PermissionView:
		return AccessView
	case domain.PermissionComment:
		return AccessComment
	case domain.PermissionEdit:
		return AccessEdit
	default:
		return AccessNone
	}
}

// CheckPermission проверяет права доступа для конкретной операции
func (s *PermissionService) CheckPermission(
	ctx context.Context,
	userID int64,
	doc *domain.Document,
	operation OperationType,
) (bool, error) {
	level, err := s.AccessLevel(ctx, userID, doc)
	if err != nil {
		return false, err
	}
	return s.checkAccessLevel(level, operation), nil
}

// Require возвращает NotFound, если документ не виден пользователю,
// и Forbidden, если уровня доступа не хватает для операции
func (s *PermissionService) Require(
	ctx context.Context,
	userID int64,
	doc *domain.Document,
	operation OperationType,
) error {
	level, err := s.AccessLevel(ctx, userID, doc)
	if err != nil {
		return err
	}

	if !s.checkAccessLevel(level, OperationView) {
		return domain.NotFound("No Document matches the given query.")
	}
	if !s.checkAccessLevel(level, operation) {
		return domain.Forbidden("%s", deniedMessages[operation])
	}
	return nil
}
