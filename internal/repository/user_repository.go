package repository

import (
	"context"
	"dochub/internal/domain"
	"fmt"
	"github.com/jmoiron/sqlx"
	"strings"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
        INSERT INTO users (email, first_name, last_name, profile_picture, bio, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, date_joined`

	err := r.db.QueryRowContext(
		ctx,
		query,
		strings.ToLower(user.Email),
		user.FirstName,
		user.LastName,
		user.ProfilePicture,
		user.Bio,
		user.PasswordHash,
	).Scan(&user.ID, &user.DateJoined)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("user with this email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.Email = strings.ToLower(user.Email)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return nil, wrapNotFound(err, "user")
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(strings.TrimSpace(email))); err != nil {
		return nil, wrapNotFound(err, "user")
	}
	return &user, nil
}

// Update сохраняет редактируемые поля профиля
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
        UPDATE users
        SET first_name = $1,
            last_name = $2,
            bio = $3,
            profile_picture = $4
        WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.ProfilePicture,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffected(result, "user")
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return checkAffected(result, "user")
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
