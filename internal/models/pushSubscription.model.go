package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PushSubscription struct {
	BaseUUIDModel
	UserID   *uuid.UUID        `gorm:"type:uuid;index"                json:"userId,omitempty"`
	Endpoint string            `gorm:"type:text;uniqueIndex;not null" json:"endpoint"         validate:"required,url"`
	Keys     datatypes.JSONMap `gorm:"type:json"                      json:"keys"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
