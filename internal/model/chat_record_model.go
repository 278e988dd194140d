package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChatRecord is one append-only analytics/appointment/feedback row.
type ChatRecord struct {
	Id         uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection string                      `gorm:"type:varchar(32);not null;index"`
	Values     datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time                   `gorm:"autoCreateTime"`
}

func (ChatRecord) TableName() string {
	return "chat_records"
}
