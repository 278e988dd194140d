package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type KnowledgeChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IndexName      string          `gorm:"type:varchar(128);not null;index"`
	Document       string          `gorm:"type:text"`
	Source         string          `gorm:"type:varchar(255)"`
	Page           int             `gorm:"default:0"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(1024)"` // Cohere embed-english-v3.0 uses 1024 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (KnowledgeChunk) TableName() string {
	return "knowledge_chunks"
}
