package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room is the ownership root: Users and Messages reference it and are
// removed when the room is deleted.
type Room struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RoomCode     string     `gorm:"type:varchar(6);uniqueIndex;not null" json:"room_code"`
	Name         string     `gorm:"type:varchar(100);not null" json:"name"`
	PasswordHash string     `gorm:"type:varchar(255)" json:"-"` // empty means open room
	CreatedBy    *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// BeforeCreate assigns the ID in Go so the model migrates the same way on
// Postgres and the SQLite test database.
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
