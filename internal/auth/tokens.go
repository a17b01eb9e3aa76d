// Package auth выдает и проверяет JWT токены и хеширует пароли.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dochub/internal/config"
	"dochub/internal/domain"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
	TokenReset   TokenType = "reset"
)

var errInvalidToken = domain.Unauthorized("Token is invalid or expired")

// Claims - разобранное содержимое токена
type Claims struct {
	UserID    int64
	Email     string
	Type      TokenType
	ID        string
	ExpiresAt time.Time
}

// TokenManager подписывает токены HS256 общим секретом
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	revoker    Revoker
}

func NewTokenManager(conf config.AuthConfig, revoker Revoker) *TokenManager {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &TokenManager{
		secret:     []byte(conf.Secret),
		issuer:     conf.Issuer,
		accessTTL:  conf.AccessTTL,
		refreshTTL: conf.RefreshTTL,
		resetTTL:   conf.ResetTTL,
		revoker:    revoker,
	}
}

// IssuePair выдает access и refresh токены пользователя
func (m *TokenManager) IssuePair(user *domain.User) (domain.AuthTokens, error) {
	access, err := m.issue(user.ID, user.Email, TokenAccess, m.accessTTL)
	if err != nil {
		return domain.AuthTokens{}, err
	}

	refresh, err := m.issue(user.ID, user.Email, TokenRefresh, m.refreshTTL)
	if err != nil {
		return domain.AuthTokens{}, err
	}

	return domain.AuthTokens{Access: access, Refresh: refresh}, nil
}

// IssueAccess выдает новый access токен по данным refresh токена
func (m *TokenManager) IssueAccess(claims *Claims) (string, error) {
	return m.issue(claims.UserID, claims.Email, TokenAccess, m.accessTTL)
}

// IssueReset выдает одноразовый токен сброса пароля
func (m *TokenManager) IssueReset(user *domain.User) (string, error) {
	return m.issue(user.ID, user.Email, TokenReset, m.resetTTL)
}

func (m *TokenManager) issue(userID int64, email string, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(userID, 10),
		"email": email,
		"type":  string(tokenType),
		"jti":   uuid.NewString(),
		"iss":   m.issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись, срок действия и тип токена
func (m *TokenManager) Parse(tokenStr string, expected TokenType) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errInvalidToken
	}

	if tokenType, _ := mapClaims["type"].(string); TokenType(tokenType) != expected {
		return nil, domain.Unauthorized("Token has wrong type")
	}

	sub, err := mapClaims.GetSubject()
	if err != nil {
		return nil, errInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, errInvalidToken
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errInvalidToken
	}

	email, _ := mapClaims["email"].(string)
	jti, _ := mapClaims["jti"].(string)

	return &Claims{
		UserID:    userID,
		Email:     email,
		Type:      expected,
		ID:        jti,
		ExpiresAt: exp.Time,
	}, nil
}

// ParseAccess возвращает id пользователя из access токена
func (m *TokenManager) ParseAccess(tokenStr string) (int64, error) {
	claims, err := m.Parse(tokenStr, TokenAccess)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// ParseRefresh разбирает refresh токен и проверяет, что он не отозван
func (m *TokenManager) ParseRefresh(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := m.Parse(tokenStr, TokenRefresh)
	if err != nil {
		return nil, err
	}

	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.Unauthorized("Token is blacklisted")
	}
	return claims, nil
}

func (m *TokenManager) ParseReset(tokenStr string) (int64, error) {
	claims, err := m.Parse(tokenStr, TokenReset)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// Revoke отзывает refresh токен до конца его срока действия
func (m *TokenManager) Revoke(ctx context.Context, refresh string) error {
	claims, err := m.ParseRefresh(ctx, refresh)
	if err != nil {
		return err
	}
	return m.revoker.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt))
}

// VerifyToken достает пользователя из заголовка Authorization: Bearer <token>
func (m *TokenManager) VerifyToken(r *http.Request) (int64, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return 0, domain.Unauthorized("Authentication credentials were not provided.")
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return 0, domain.Unauthorized("Authorization header must contain a bearer token")
	}

	userID, err := m.ParseAccess(strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return 0, err
		}
		return 0, errInvalidToken
	}
	return userID, nil
}
