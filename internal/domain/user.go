package domain

import (
	"strings"
	"time"
)

type User struct {
	ID             int64      `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	FirstName      string     `json:"first_name" db:"first_name"`
	LastName       string     `json:"last_name" db:"last_name"`
	ProfilePicture *string    `json:"profile_picture,omitempty" db:"profile_picture"`
	Bio            string     `json:"bio" db:"bio"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	DateJoined     time.Time  `json:"date_joined" db:"date_joined"`
	LastLogin      *time.Time `json:"last_login,omitempty" db:"last_login"`
}

// FullName собирает отображаемое имя пользователя
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserSummary - короткое представление пользователя (автор, владелец, получатель доступа)
type UserSummary struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	FullName       string  `json:"full_name"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName(),
		ProfilePicture: u.ProfilePicture,
	}
}

// ProfileUpdate - частичное обновление профиля, nil означает "не менять"
type ProfileUpdate struct {
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// Apply применяет изменения к пользователю
func (p ProfileUpdate) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.ProfilePicture != nil {
		if *p.ProfilePicture == "" {
			u.ProfilePicture = nil
		} else {
			pic := *p.ProfilePicture
			u.ProfilePicture = &pic
		}
	}
}

// AuthTokens - пара access/refresh токенов
type AuthTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}
