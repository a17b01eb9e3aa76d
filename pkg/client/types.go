package client

import (
	"dochub/internal/domain"
	"dochub/internal/service"
)

// Модели совпадают с JSON ответами REST API
type (
	User           = domain.User
	UserSummary    = domain.UserSummary
	Document       = domain.Document
	DocumentDetail = domain.DocumentDetail
	Comment        = domain.Comment
	Version        = domain.Version
	Share          = domain.Share
	Permission     = domain.Permission
	QuotaInfo      = domain.QuotaInfo
	AuthTokens     = domain.AuthTokens

	ProfileUpdate  = domain.ProfileUpdate
	DocumentUpdate = domain.DocumentUpdate
	Upload         = domain.DocumentUpload
	VersionUpload  = domain.VersionUpload
	ListOptions    = domain.ListOptions

	RegisterRequest       = service.RegisterRequest
	ChangePasswordRequest = service.ChangePasswordRequest
)

const (
	PermissionView    = domain.PermissionView
	PermissionComment = domain.PermissionComment
	PermissionEdit    = domain.PermissionEdit
)
