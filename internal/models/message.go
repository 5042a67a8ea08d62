package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageStatus string

const (
	MessagePending  MessageStatus = "pending"
	MessageApproved MessageStatus = "approved"
)

// Message status only ever moves pending -> approved. There is no
// rejected state: a moderator removes a message by hard-deleting it.
type Message struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"room_id"`
	SenderID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"sender_id"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	Status    MessageStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`

	Room   Room `gorm:"foreignKey:RoomID" json:"-"`
	Sender User `gorm:"foreignKey:SenderID" json:"-"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
