package models

import "github.com/google/uuid"

type Like struct {
	BaseUUIDModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_game" json:"userId"`
	GameSlug string    `gorm:"type:text;not null;uniqueIndex:idx_likes_user_game" json:"gameSlug"`
}

func (Like) TableName() string {
	return "likes"
}
