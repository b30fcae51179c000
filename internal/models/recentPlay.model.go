package models

import (
	"time"

	"github.com/google/uuid"
)

// RecentPlay holds one row per user and game. Repeat plays move PlayedAt
// forward instead of adding rows.
type RecentPlay struct {
	BaseUUIDModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recent_plays_user_game" json:"userId"`
	GameSlug string    `gorm:"type:text;not null;uniqueIndex:idx_recent_plays_user_game" json:"gameSlug"`
	PlayedAt time.Time `gorm:"not null;index"                                           json:"playedAt"`
}

func (RecentPlay) TableName() string {
	return "recent_plays"
}
