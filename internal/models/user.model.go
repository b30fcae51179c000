package models

import (
	"github.com/google/uuid"
)

// User is the public profile row in the "users" table. Its id matches the
// AuthAccount that signed up.
type User struct {
	BaseUUIDModel
	Email                string  `gorm:"type:text;uniqueIndex;not null" json:"email"                validate:"required,email"`
	Username             string  `gorm:"type:text;not null"             json:"username"             validate:"required,min=2,max=40"`
	AvatarURL            *string `gorm:"type:text"                      json:"avatarUrl,omitempty"`
	NotificationsEnabled bool    `gorm:"type:bool;default:false"        json:"notificationsEnabled"`
}

func (User) TableName() string {
	return "users"
}

type UserProfile struct {
	ID                   string  `json:"id"`
	Email                string  `json:"email"`
	Username             string  `json:"username"`
	AvatarURL            *string `json:"avatarUrl,omitempty"`
	NotificationsEnabled bool    `json:"notificationsEnabled"`
}

func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:                   u.ID.String(),
		Email:                u.Email,
		Username:             u.Username,
		AvatarURL:            u.AvatarURL,
		NotificationsEnabled: u.NotificationsEnabled,
	}
}

// NewProfile builds the row inserted right after a successful sign up.
func NewProfile(id uuid.UUID, email, username string) User {
	return User{
		BaseUUIDModel:        BaseUUIDModel{ID: id},
		Email:                email,
		Username:             username,
		NotificationsEnabled: false,
	}
}
