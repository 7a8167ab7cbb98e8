package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	ListConversation(ctx context.Context, userA, userB uuid.UUID, page, limit int) ([]model.Message, int64, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Message, int64, error)

	CreateFile(ctx context.Context, file *model.FileUpload) error
	FindFileByID(ctx context.Context, id uuid.UUID) (*model.FileUpload, error)
	ListFiles(ctx context.Context) ([]model.FileUpload, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return GetDB(ctx, r.db).Create(message).Error
}

func (r *messageRepository) ListConversation(ctx context.Context, userA, userB uuid.UUID, page, limit int) ([]model.Message, int64, error) {
	var messages []model.Message
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("File").Order("created_at desc").Offset(offset).Limit(limit).Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (r *messageRepository) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Message, int64, error) {
	var messages []model.Message
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Message{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("File").Order("created_at desc").Offset(offset).Limit(limit).Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (r *messageRepository) CreateFile(ctx context.Context, file *model.FileUpload) error {
	return GetDB(ctx, r.db).Create(file).Error
}

func (r *messageRepository) FindFileByID(ctx context.Context, id uuid.UUID) (*model.FileUpload, error) {
	var file model.FileUpload
	if err := GetDB(ctx, r.db).First(&file, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *messageRepository) ListFiles(ctx context.Context) ([]model.FileUpload, error) {
	var files []model.FileUpload
	if err := GetDB(ctx, r.db).Order("uploaded_at desc").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *messageRepository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.FileUpload{}).Error
}
