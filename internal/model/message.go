package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileUpload is a stored attachment on disk under the configured upload dir.
type FileUpload struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FileName   string    `gorm:"type:varchar(255);not null" json:"file_name"`
	Path       string    `gorm:"type:varchar(512);not null" json:"path"`
	Size       int64     `gorm:"not null" json:"size"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (f *FileUpload) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// Message is a direct message between two users, optionally carrying a file
// attachment. Deleting the attachment leaves the message intact.
type Message struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender     *User       `gorm:"foreignKey:SenderID" json:"-"`
	ReceiverID uuid.UUID   `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Receiver   *User       `gorm:"foreignKey:ReceiverID" json:"-"`
	Text       string      `gorm:"type:text" json:"text"`
	FileID     *uuid.UUID  `gorm:"type:uuid" json:"file_id"`
	File       *FileUpload `gorm:"foreignKey:FileID;constraint:OnDelete:SET NULL" json:"file,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
