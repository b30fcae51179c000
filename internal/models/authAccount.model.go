package models

import "time"

// AuthAccount is the credential record behind a User. The password hash is
// never serialized.
type AuthAccount struct {
	BaseUUIDModel
	Email        string     `gorm:"type:text;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:text;not null"             json:"-"`
	LastSignInAt *time.Time `gorm:"type:timestamp"                 json:"lastSignInAt,omitempty"`
}

func (AuthAccount) TableName() string {
	return "auth_accounts"
}
