package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/roomcast/roomcast/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetBySocketID(socketID string) (*models.User, error) {
	var user models.User
	err := r.db.Where("socket_id = ?", socketID).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// SetPresence updates the online flag and connection handle in one write.
// Pass a nil socketID to clear the handle.
func (r *UserRepository) SetPresence(id uuid.UUID, online bool, socketID *string) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_online": online,
			"socket_id": socketID,
		}).Error
}

func (r *UserRepository) SetStatus(id uuid.UUID, status models.UserStatus) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// FindByRoom returns the room's users in creation order, optionally
// filtered by status.
func (r *UserRepository) FindByRoom(roomID uuid.UUID, status *models.UserStatus) ([]models.User, error) {
	var users []models.User
	q := r.db.Where("room_id = ?", roomID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	err := q.Order("created_at ASC").Find(&users).Error
	return users, err
}

// OnlineApproved returns the users shown on the superadmin live roster.
func (r *UserRepository) OnlineApproved(roomID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("room_id = ? AND status = ? AND is_online = ?", roomID, models.StatusApproved, true).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}
