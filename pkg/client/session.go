package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"dochub/internal/logging"
)

// SessionStore хранит текущего пользователя и управляет токенами
type SessionStore struct {
	backend  Backend
	tokens   TokenStore
	notifier Notifier
	logger   logging.Logger

	mu      sync.RWMutex
	user    *User
	loading int
	lastErr error
}

func NewSessionStore(backend Backend, tokens TokenStore, notifier Notifier) *SessionStore {
	return &SessionStore{
		backend:  backend,
		tokens:   tokens,
		notifier: notifierOrNop(notifier),
		logger:   logging.New("session"),
	}
}

// Login сохраняет пару токенов и загружает профиль пользователя
func (s *SessionStore) Login(ctx context.Context, email, password string) (*User, error) {
	s.begin()
	defer s.end()

	tokens, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, s.fail("Login failed", err)
	}
	if err := s.tokens.Set(KeyToken, tokens.Access); err != nil {
		return nil, s.fail("Login failed", err)
	}
	if err := s.tokens.Set(KeyRefreshToken, tokens.Refresh); err != nil {
		return nil, s.fail("Login failed", err)
	}

	user, err := s.backend.Me(ctx)
	if err != nil {
		s.clear()
		return nil, s.fail("Login failed", err)
	}
	s.setUser(user)

	s.notifier.Notify(Notification{
		Level:   LevelInfo,
		Title:   "Login successful",
		Message: fmt.Sprintf("Welcome back, %s!", user.FirstName),
	})
	return cloneUser(user), nil
}

// Register создает аккаунт и сразу входит в него
func (s *SessionStore) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	s.begin()
	defer s.end()

	if _, err := s.backend.Register(ctx, req); err != nil {
		return nil, s.fail("Registration failed", err)
	}
	return s.Login(ctx, req.Email, req.Password)
}

// Logout всегда завершается успешно; отзыв refresh токена на сервере best-effort
func (s *SessionStore) Logout(ctx context.Context) {
	if refresh, ok := s.tokens.Get(KeyRefreshToken); ok && refresh != "" {
		if err := s.backend.Logout(ctx, refresh); err != nil {
			s.logger.Debugf("[Logout] Failed to revoke refresh token: %v", err)
		}
	}
	s.clear()

	s.notifier.Notify(Notification{Level: LevelInfo, Title: "Logged out", Message: "You have been logged out"})
}

func (s *SessionStore) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	if s.User() == nil {
		return nil, s.fail("Update failed", ErrNotAuthenticated)
	}

	s.begin()
	defer s.end()

	user, err := s.backend.UpdateProfile(ctx, update)
	if err != nil {
		return nil, s.fail("Update failed", err)
	}
	s.setUser(user)

	s.notifier.Notify(Notification{Level: LevelInfo, Title: "Profile updated", Message: "Your profile has been updated successfully"})
	return cloneUser(user), nil
}

func (s *SessionStore) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmation string) error {
	if s.User() == nil {
		return s.fail("Password change failed", ErrNotAuthenticated)
	}

	s.begin()
	defer s.end()

	err := s.backend.ChangePassword(ctx, ChangePasswordRequest{
		OldPassword:        oldPassword,
		NewPassword:        newPassword,
		NewPasswordConfirm: confirmation,
	})
	if err != nil {
		return s.fail("Password change failed", err)
	}

	s.notifier.Notify(Notification{Level: LevelInfo, Title: "Password changed", Message: "Your password has been changed successfully"})
	return nil
}

func (s *SessionStore) ResetPassword(ctx context.Context, email string) error {
	s.begin()
	defer s.end()

	if err := s.backend.ResetPassword(ctx, email); err != nil {
		return s.fail("Password reset failed", err)
	}

	s.notifier.Notify(Notification{Level: LevelInfo, Title: "Password reset", Message: "Check your email for reset instructions"})
	return nil
}

// Restore восстанавливает сессию из сохраненных токенов.
// Если токен больше не действует, сессия очищается.
func (s *SessionStore) Restore(ctx context.Context) error {
	if token, ok := s.tokens.Get(KeyToken); !ok || token == "" {
		return nil
	}

	s.begin()
	defer s.end()

	if raw, ok := s.tokens.Get(KeyUser); ok {
		var cached User
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			s.mu.Lock()
			s.user = &cached
			s.mu.Unlock()
		}
	}

	user, err := s.backend.Me(ctx)
	if err != nil {
		s.logger.Warnf("[Restore] Authentication check failed: %v", err)
		s.clear()
		s.record(err)
		return err
	}
	s.setUser(user)
	return nil
}

// Expire сбрасывает сессию без обращения к серверу (токен обновить не удалось)
func (s *SessionStore) Expire() {
	s.clear()
	s.notifier.Notify(Notification{Level: LevelError, Title: "Session expired", Message: "Please log in again"})
}

func (s *SessionStore) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *SessionStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// LastError возвращает ошибку последней неудачной операции
func (s *SessionStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *SessionStore) setUser(user *User) {
	s.mu.Lock()
	s.user = cloneUser(user)
	s.lastErr = nil
	s.mu.Unlock()

	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Errorf("[SetUser] Failed to encode user %d: %v", user.ID, err)
		return
	}
	if err := s.tokens.Set(KeyUser, string(data)); err != nil {
		s.logger.Errorf("[SetUser] Failed to persist user %d: %v", user.ID, err)
	}
}

func (s *SessionStore) clear() {
	if err := s.tokens.Delete(sessionKeys...); err != nil {
		s.logger.Errorf("[Clear] Failed to clear tokens: %v", err)
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *SessionStore) begin() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *SessionStore) end() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

func (s *SessionStore) record(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *SessionStore) fail(title string, err error) error {
	s.record(err)
	s.notifier.Notify(Notification{Level: LevelError, Title: title, Message: err.Error()})
	return err
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
