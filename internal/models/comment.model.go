package models

import (
	"github.com/google/uuid"
)

const MaxCommentLength = 1000

type Comment struct {
	BaseUUIDModel
	GameSlug string     `gorm:"type:text;not null;index" json:"gameSlug"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null"       json:"userId"`
	Username string     `gorm:"type:text;not null"       json:"username"`
	Content  string     `gorm:"type:text;not null"       json:"content"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"          json:"parentId,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != uuid.Nil
}
