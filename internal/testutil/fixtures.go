package testutil

import (
	"testing"

	"github.com/roomcast/roomcast/internal/models"
	"gorm.io/gorm"
)

// CreateTestRoom inserts a room with a fixed code.
func CreateTestRoom(t *testing.T, db *gorm.DB, code, name string) *models.Room {
	room := &models.Room{
		RoomCode: code,
		Name:     name,
	}
	if err := db.Create(room).Error; err != nil {
		t.Fatalf("Failed to create test room: %v", err)
	}
	return room
}

// CreateTestUser inserts a user into the given room.
func CreateTestUser(t *testing.T, db *gorm.DB, room *models.Room, username string, role models.Role, status models.UserStatus) *models.User {
	user := &models.User{
		Username: username,
		Role:     role,
		RoomID:   room.ID,
		Status:   status,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestMessage inserts a message from the given sender.
func CreateTestMessage(t *testing.T, db *gorm.DB, room *models.Room, sender *models.User, content string, status models.MessageStatus) *models.Message {
	msg := &models.Message{
		RoomID:   room.ID,
		SenderID: sender.ID,
		Content:  content,
		Status:   status,
	}
	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("Failed to create test message: %v", err)
	}
	return msg
}
