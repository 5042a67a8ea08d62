package service

import (
	"github.com/google/uuid"
	"github.com/roomcast/roomcast/internal/broker"
	"github.com/roomcast/roomcast/internal/models"
	"github.com/roomcast/roomcast/internal/repository"
	"github.com/roomcast/roomcast/pkg/logger"
	"go.uber.org/zap"
)

// PresenceService tracks who is online and which connection handle they
// hold. Presence is best effort: persistence errors are logged and
// swallowed so they never block message flow.
type PresenceService struct {
	users  *repository.UserRepository
	broker broker.EventBroker
}

func NewPresenceService(users *repository.UserRepository, evBroker broker.EventBroker) *PresenceService {
	return &PresenceService{
		users:  users,
		broker: evBroker,
	}
}

// MarkOnline records the user's current connection handle. Idempotent: a
// reconnect simply replaces the old handle.
func (s *PresenceService) MarkOnline(userID uuid.UUID, socketID string) {
	if err := s.users.SetPresence(userID, true, &socketID); err != nil {
		logger.Log.Warn("failed to mark user online",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

// MarkOffline clears presence for whichever user holds the handle and
// returns that user so the caller can push a roster update. Returns nil
// when no user holds it (already cleared, or an anonymous connection).
func (s *PresenceService) MarkOffline(socketID string) *models.User {
	user, err := s.users.GetBySocketID(socketID)
	if err != nil {
		logger.Log.Warn("failed to look up socket holder",
			zap.String("socket_id", socketID),
			zap.Error(err),
		)
		return nil
	}
	if user == nil {
		return nil
	}

	if err := s.users.SetPresence(user.ID, false, nil); err != nil {
		logger.Log.Warn("failed to mark user offline",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}

	return user
}

// OnlineApprovedUsers is the roster query for the superadmin view.
func (s *PresenceService) OnlineApprovedUsers(roomID uuid.UUID) ([]models.User, error) {
	return s.users.OnlineApproved(roomID)
}

// BroadcastRoster recomputes the live roster and pushes it to the room.
// Called on every material membership change: join, approve, kick,
// disconnect. Push-only; clients never need to poll.
func (s *PresenceService) BroadcastRoster(roomID uuid.UUID, roomCode string) {
	users, err := s.OnlineApprovedUsers(roomID)
	if err != nil {
		logger.Log.Warn("failed to build roster",
			zap.String("room_code", roomCode),
			zap.Error(err),
		)
		return
	}

	roster := make([]models.RosterEntry, 0, len(users))
	for _, u := range users {
		roster = append(roster, models.RosterEntry{
			ID:       u.ID,
			Username: u.Username,
			Role:     u.Role,
			IsOnline: u.IsOnline,
		})
	}

	ev, err := broker.NewEvent(broker.EventRosterChanged, roomCode, roster)
	if err != nil {
		logger.Log.Warn("failed to encode roster", zap.Error(err))
		return
	}
	if err := s.broker.Publish(ev); err != nil {
		logger.Log.Warn("failed to publish roster",
			zap.String("room_code", roomCode),
			zap.Error(err),
		)
	}
}
