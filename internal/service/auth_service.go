package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"dochub/internal/auth"
	"dochub/internal/domain"
	"dochub/internal/logging"
)

const minPasswordLength = 8

var errBadCredentials = domain.Unauthorized("No active account found with the given credentials")

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

type ResetConfirmRequest struct {
	Token              string `json:"token"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// AuthService отвечает за регистрацию, вход и профиль пользователя
type AuthService struct {
	users  UserRepository
	tokens *auth.TokenManager
	logger logging.Logger
}

func NewAuthService(users UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logging.New("auth-service"),
	}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if err := validateRegister(&req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infof("[Register] User %d registered: %s", user.ID, user.Email)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.AuthTokens, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AuthTokens{}, errBadCredentials
		}
		return domain.AuthTokens{}, fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return domain.AuthTokens{}, errBadCredentials
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return domain.AuthTokens{}, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warnf("[Login] Failed to update last login for user %d: %v", user.ID, err)
	}
	return tokens, nil
}

// RefreshToken выдает новый access токен по неотозванному refresh токену
func (s *AuthService) RefreshToken(ctx context.Context, refresh string) (domain.AuthTokens, error) {
	if refresh == "" {
		return domain.AuthTokens{}, domain.Validation("refresh: cannot be blank.")
	}

	claims, err := s.tokens.ParseRefresh(ctx, refresh)
	if err != nil {
		return domain.AuthTokens{}, err
	}

	access, err := s.tokens.IssueAccess(claims)
	if err != nil {
		return domain.AuthTokens{}, err
	}
	return domain.AuthTokens{Access: access}, nil
}

func (s *AuthService) VerifyToken(token string) error {
	if token == "" {
		return domain.Validation("token: cannot be blank.")
	}
	_, err := s.tokens.ParseAccess(token)
	return err
}

// Logout отзывает refresh токен
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	if refresh == "" {
		return domain.Validation("refresh: cannot be blank.")
	}
	return s.tokens.Revoke(ctx, refresh)
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile частично обновляет профиль, email здесь не меняется
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	update.Apply(user)
	err = validation.ValidateStruct(user,
		validation.Field(&user.FirstName, validation.Length(0, 150)),
		validation.Field(&user.LastName, validation.Length(0, 150)),
		validation.Field(&user.Bio, validation.Length(0, 500)),
	)
	if err != nil {
		return nil, domain.Validation("%s", err.Error())
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}

	err = validation.ValidateStruct(&req,
		validation.Field(&req.OldPassword, validation.Required),
		validation.Field(&req.NewPassword, validation.Required, validation.Length(minPasswordLength, 128)),
		validation.Field(&req.NewPasswordConfirm,
			validation.Required,
			validation.In(req.NewPassword).Error("Password fields didn't match."),
		),
	)
	if err != nil {
		return domain.Validation("%s", err.Error())
	}

	if !auth.CheckPassword(user.PasswordHash, req.OldPassword) {
		return domain.Validation("old_password: Wrong password.")
	}

	return s.setPassword(ctx, user.ID, req.NewPassword)
}

// ResetPassword всегда завершается успешно, чтобы не раскрывать наличие email.
// Письма сервис не отправляет, токен пишется в лог.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Errorf("[ResetPassword] Failed to get user %s: %v", email, err)
		}
		return nil
	}

	token, err := s.tokens.IssueReset(user)
	if err != nil {
		s.logger.Errorf("[ResetPassword] Failed to issue reset token for user %d: %v", user.ID, err)
		return nil
	}

	s.logger.Infof("[ResetPassword] Reset token for %s: %s", user.Email, token)
	return nil
}

func (s *AuthService) ConfirmResetPassword(ctx context.Context, req ResetConfirmRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Token, validation.Required),
		validation.Field(&req.NewPassword, validation.Required, validation.Length(minPasswordLength, 128)),
		validation.Field(&req.NewPasswordConfirm,
			validation.Required,
			validation.In(req.NewPassword).Error("Password fields didn't match."),
		),
	)
	if err != nil {
		return domain.Validation("%s", err.Error())
	}

	userID, err := s.tokens.ParseReset(req.Token)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, userID, req.NewPassword)
}

func (s *AuthService) setPassword(ctx context.Context, userID int64, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Infof("[SetPassword] Password changed for user %d", userID)
	return nil
}

func validateRegister(req *RegisterRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat, validation.Length(0, 254)),
		validation.Field(&req.Password, validation.Required, validation.Length(minPasswordLength, 128)),
		validation.Field(&req.PasswordConfirm,
			validation.Required,
			validation.In(req.Password).Error("Password fields didn't match."),
		),
		validation.Field(&req.FirstName, validation.Required, validation.Length(1, 150)),
		validation.Field(&req.LastName, validation.Required, validation.Length(1, 150)),
	)
	if err != nil {
		return domain.Validation("%s", err.Error())
	}
	return nil
}
