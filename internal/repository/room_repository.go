package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/roomcast/roomcast/internal/models"
	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

// GetByCode does an exact match on the stored uppercase code. Callers
// normalize (trim + uppercase) before lookup.
func (r *RoomRepository) GetByCode(code string) (*models.Room, error) {
	var room models.Room
	err := r.db.Where("room_code = ?", code).First(&room).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &room, nil
}

func (r *RoomRepository) GetByID(id uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := r.db.Where("id = ?", id).First(&room).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &room, nil
}

func (r *RoomRepository) CodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Room{}).Where("room_code = ?", code).Count(&count).Error
	return count > 0, err
}

// DeleteCascade removes the room's messages, then its users, then the
// room itself, inside one transaction so a concurrent submit never leaves
// a message pointing at a missing room.
func (r *RoomRepository) DeleteCascade(roomID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.User{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Room{}, roomID).Error
	})
}
