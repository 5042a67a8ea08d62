package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/roomcast/roomcast/internal/broker"
	"github.com/roomcast/roomcast/internal/models"
	"github.com/roomcast/roomcast/internal/repository"
	"github.com/roomcast/roomcast/pkg/logger"
	"go.uber.org/zap"
)

// UserService handles room membership: join requests, approval and kicks.
type UserService struct {
	users    *repository.UserRepository
	rooms    *repository.RoomRepository
	broker   broker.EventBroker
	presence *PresenceService
}

func NewUserService(
	users *repository.UserRepository,
	rooms *repository.RoomRepository,
	evBroker broker.EventBroker,
	presence *PresenceService,
) *UserService {
	return &UserService{
		users:    users,
		rooms:    rooms,
		broker:   evBroker,
		presence: presence,
	}
}

// JoinRequest creates a pending user in the room. The user waits for a
// superadmin approval before participating.
func (s *UserService) JoinRequest(username, roomCode string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	room, err := s.rooms.GetByCode(NormalizeCode(roomCode))
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	user := &models.User{
		Username: username,
		Role:     models.RoleUser,
		RoomID:   room.ID,
		Status:   models.StatusPending,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	logger.Log.Info("join request created",
		zap.String("username", username),
		zap.String("room_code", room.RoomCode),
	)

	return user, nil
}

// PendingUsers lists join requests awaiting approval.
func (s *UserService) PendingUsers(roomCode string) ([]models.User, error) {
	room, err := s.rooms.GetByCode(NormalizeCode(roomCode))
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	status := models.StatusPending
	return s.users.FindByRoom(room.ID, &status)
}

// AllUsers lists every user of the room, pending and approved.
func (s *UserService) AllUsers(roomCode string) ([]models.User, error) {
	room, err := s.rooms.GetByCode(NormalizeCode(roomCode))
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	return s.users.FindByRoom(room.ID, nil)
}

// ApproveUser flips a user to approved and notifies both their registered
// connection and the room-wide partition, which covers the case where the
// user reconnected under a stale handle.
func (s *UserService) ApproveUser(userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.users.SetStatus(user.ID, models.StatusApproved); err != nil {
		return nil, err
	}
	user.Status = models.StatusApproved

	room, err := s.rooms.GetByID(user.RoomID)
	if err != nil {
		return nil, err
	}

	ev, err := broker.NewEvent(broker.EventUserApproved, roomCodeOf(room), user.ID.String())
	if err != nil {
		return nil, err
	}
	if user.SocketID != nil {
		ev.SocketID = *user.SocketID
	}
	if err := s.broker.Publish(ev); err != nil {
		logger.Log.Error("failed to publish user_approved",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}

	if room != nil {
		s.presence.BroadcastRoster(room.ID, room.RoomCode)
	}

	logger.Log.Info("user approved",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return user, nil
}

// KickUser sends a forced-disconnect notification to the user's
// registered handle, then clears their presence. The user record itself
// survives the kick; only room deletion removes it.
func (s *UserService) KickUser(userID uuid.UUID) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.SocketID != nil {
		ev, err := broker.NewEvent(broker.EventUserKicked, "", map[string]string{
			"message": "You were removed by Super Admin",
		})
		if err != nil {
			return err
		}
		ev.SocketID = *user.SocketID
		if err := s.broker.Publish(ev); err != nil {
			logger.Log.Error("failed to publish kick notification",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		}
	}

	if err := s.users.SetPresence(user.ID, false, nil); err != nil {
		return err
	}

	room, err := s.rooms.GetByID(user.RoomID)
	if err == nil && room != nil {
		s.presence.BroadcastRoster(room.ID, room.RoomCode)
	}

	logger.Log.Info("user kicked",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return nil
}

func roomCodeOf(room *models.Room) string {
	if room == nil {
		return ""
	}
	return room.RoomCode
}
