package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"

	// RoleBroadcast is a connection role only: broadcast viewers watch the
	// approved feed anonymously and are never persisted as Users.
	RoleBroadcast Role = "broadcast"
)

type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusApproved UserStatus = "approved"
)

// User belongs to exactly one Room for its lifetime. SocketID is a weak
// association with the current connection and must be cleared on
// disconnect so stale handles never receive targeted events.
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string     `gorm:"type:varchar(50);not null" json:"username"`
	Role      Role       `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	RoomID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"room_id"`
	Status    UserStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	IsOnline  bool       `gorm:"default:false" json:"is_online"`
	SocketID  *string    `gorm:"type:varchar(64);index" json:"-"`
	CreatedAt time.Time  `json:"created_at"`

	Room Room `gorm:"foreignKey:RoomID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
