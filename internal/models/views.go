package models

import (
	"time"

	"github.com/google/uuid"
)

// SenderView is the read-side shape of a message sender. The Message row
// stores only the sender id; the display name is resolved on read so the
// stored reference never has an inconsistent shape.
type SenderView struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// MessageView is what goes over the wire for every message event and
// snapshot.
type MessageView struct {
	ID        uuid.UUID     `json:"id"`
	RoomCode  string        `json:"room_code"`
	Content   string        `json:"content"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	Sender    SenderView    `json:"sender"`
}

// NewMessageView builds a view from a message with its Sender preloaded.
func NewMessageView(m *Message, roomCode string) MessageView {
	return MessageView{
		ID:        m.ID,
		RoomCode:  roomCode,
		Content:   m.Content,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		Sender: SenderView{
			ID:       m.SenderID,
			Username: m.Sender.Username,
		},
	}
}

// RosterEntry is one row of the superadmin live roster push.
type RosterEntry struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	IsOnline bool      `json:"is_online"`
}
