package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/roomcast/roomcast/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

// GetByID loads a message with its sender and room resolved, so callers
// can build a wire view or target the owning room's partitions.
func (r *MessageRepository) GetByID(id uuid.UUID) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").Preload("Room").First(&message, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &message, nil
}

func (r *MessageRepository) SetStatus(id uuid.UUID, status models.MessageStatus) error {
	return r.db.Model(&models.Message{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete hard-removes the row. Moderation has no soft-deleted state.
func (r *MessageRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Message{}, id).Error
}

// FindByRoom returns the full message history in creation order.
func (r *MessageRepository) FindByRoom(roomID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Preload("Sender").
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// FindByRoomAndStatus returns the pending queue or the approved feed,
// oldest first.
func (r *MessageRepository) FindByRoomAndStatus(roomID uuid.UUID, status models.MessageStatus) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Preload("Sender").
		Where("room_id = ? AND status = ?", roomID, status).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}
