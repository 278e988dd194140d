package implementation

import (
	"context"

	"flcs-chatbot-be/internal/model"
	"flcs-chatbot-be/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatRecordRepositoryImpl struct {
	db *gorm.DB
}

func NewChatRecordRepository(db *gorm.DB) contract.ChatRecordRepository {
	return &ChatRecordRepositoryImpl{db: db}
}

func (r *ChatRecordRepositoryImpl) Append(ctx context.Context, collection string, values []string) error {
	m := &model.ChatRecord{
		Collection: collection,
		Values:     datatypes.JSONSlice[string](values),
	}
	return r.db.WithContext(ctx).Create(m).Error
}
