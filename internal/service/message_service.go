package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Text       string `json:"text"`
	FileID     string `json:"file_id"`
}

type MessageResponse struct {
	ID         string        `json:"id"`
	SenderID   string        `json:"sender_id"`
	ReceiverID string        `json:"receiver_id"`
	Text       string        `json:"text"`
	File       *FileResponse `json:"file,omitempty"`
	CreatedAt  string        `json:"created_at"`
}

type FileResponse struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploaded_at"`
}

// Websocket payload for chat delivery
type ChatEvent struct {
	Event string          `json:"event"`
	Data  MessageResponse `json:"data"`
}

// MessageService persists direct messages and fans them out to the
// receiver's live connections. Delivery is best-effort; the message is
// stored regardless.
type MessageService interface {
	SendMessage(ctx context.Context, senderID uuid.UUID, req SendMessageRequest) (MessageResponse, error)
	ListConversation(ctx context.Context, userID uuid.UUID, otherID string, page, limit int) ([]MessageResponse, int64, error)

	UploadFile(c *gin.Context, file *multipart.FileHeader) (FileResponse, error)
	ListFiles(ctx context.Context) ([]FileResponse, error)
	DeleteFile(ctx context.Context, id string) error
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	hub         *ws.Hub
	uploadDir   string
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	hub *ws.Hub,
	uploadDir string,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		hub:         hub,
		uploadDir:   uploadDir,
	}
}

func (s *messageService) SendMessage(ctx context.Context, senderID uuid.UUID, req SendMessageRequest) (MessageResponse, error) {
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		return MessageResponse{}, fmt.Errorf("%w: invalid receiver_id", ErrValidation)
	}

	if req.Text == "" && req.FileID == "" {
		return MessageResponse{}, fmt.Errorf("%w: message needs text or a file", ErrValidation)
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID.String()); err != nil {
		return MessageResponse{}, fmt.Errorf("%w: receiver %s", ErrNotFound, req.ReceiverID)
	}

	message := model.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       req.Text,
	}

	if req.FileID != "" {
		fileID, err := uuid.Parse(req.FileID)
		if err != nil {
			return MessageResponse{}, fmt.Errorf("%w: invalid file_id", ErrValidation)
		}
		file, err := s.messageRepo.FindFileByID(ctx, fileID)
		if err != nil {
			return MessageResponse{}, fmt.Errorf("%w: file %s", ErrNotFound, req.FileID)
		}
		message.FileID = &file.ID
		message.File = file
	}

	if err := s.messageRepo.Create(ctx, &message); err != nil {
		return MessageResponse{}, fmt.Errorf("failed to store message: %w", err)
	}

	res := toMessageResponse(message)

	// Push to the receiver's open connections
	if s.hub != nil {
		payload, _ := json.Marshal(ChatEvent{Event: "message.received", Data: res})
		s.hub.SendToUser(receiverID.String(), payload)
	}

	return res, nil
}

func (s *messageService) ListConversation(ctx context.Context, userID uuid.UUID, otherID string, page, limit int) ([]MessageResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var messages []model.Message
	var total int64
	var err error

	if otherID != "" {
		other, parseErr := uuid.Parse(otherID)
		if parseErr != nil {
			return nil, 0, fmt.Errorf("%w: invalid user id", ErrValidation)
		}
		messages, total, err = s.messageRepo.ListConversation(ctx, userID, other, page, limit)
	} else {
		messages, total, err = s.messageRepo.ListForUser(ctx, userID, page, limit)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch messages: %w", err)
	}

	res := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, toMessageResponse(m))
	}
	return res, total, nil
}

func (s *messageService) UploadFile(c *gin.Context, fileHeader *multipart.FileHeader) (FileResponse, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return FileResponse{}, fmt.Errorf("failed to prepare upload dir: %w", err)
	}

	// Randomized name keeps uploads from clobbering each other
	storedName := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	dst := filepath.Join(s.uploadDir, storedName)
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		return FileResponse{}, fmt.Errorf("failed to save upload: %w", err)
	}

	file := model.FileUpload{
		FileName: fileHeader.Filename,
		Path:     dst,
		Size:     fileHeader.Size,
	}
	if err := s.messageRepo.CreateFile(c.Request.Context(), &file); err != nil {
		_ = os.Remove(dst)
		return FileResponse{}, fmt.Errorf("failed to store file record: %w", err)
	}

	return toFileResponse(file), nil
}

func (s *messageService) ListFiles(ctx context.Context) ([]FileResponse, error) {
	files, err := s.messageRepo.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch files: %w", err)
	}

	res := make([]FileResponse, 0, len(files))
	for _, f := range files {
		res = append(res, toFileResponse(f))
	}
	return res, nil
}

func (s *messageService) DeleteFile(ctx context.Context, id string) error {
	fileID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid file id", ErrValidation)
	}

	file, err := s.messageRepo.FindFileByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: file %s", ErrNotFound, id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.messageRepo.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	_ = os.Remove(file.Path)

	return nil
}

func toMessageResponse(m model.Message) MessageResponse {
	res := MessageResponse{
		ID:         m.ID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
		Text:       m.Text,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
	if m.File != nil {
		f := toFileResponse(*m.File)
		res.File = &f
	}
	return res
}

func toFileResponse(f model.FileUpload) FileResponse {
	return FileResponse{
		ID:         f.ID.String(),
		FileName:   f.FileName,
		Path:       f.Path,
		Size:       f.Size,
		UploadedAt: f.UploadedAt.Format(time.RFC3339),
	}
}
