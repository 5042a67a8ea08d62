package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/roomcast/roomcast/internal/audit"
	"github.com/roomcast/roomcast/internal/broker"
	"github.com/roomcast/roomcast/internal/models"
	"github.com/roomcast/roomcast/internal/repository"
	"github.com/roomcast/roomcast/pkg/logger"
	"go.uber.org/zap"
)

// ModerationService owns the message lifecycle: pending -> approved, or
// removal from either state. It performs no fan-out itself; every
// transition is published on the broker with enough routing information
// (room code, status, id) for the hub.
type ModerationService struct {
	messages *repository.MessageRepository
	rooms    *repository.RoomRepository
	broker   broker.EventBroker
	audit    *audit.Log
}

func NewModerationService(
	messages *repository.MessageRepository,
	rooms *repository.RoomRepository,
	evBroker broker.EventBroker,
	auditLog *audit.Log,
) *ModerationService {
	return &ModerationService{
		messages: messages,
		rooms:    rooms,
		broker:   evBroker,
		audit:    auditLog,
	}
}

// Submit creates a pending message. Empty or whitespace-only content is a
// silent no-op, as is an unknown room code: the engine does not assume the
// caller pre-validated room existence.
func (s *ModerationService) Submit(senderID uuid.UUID, roomCode, content string) (*models.MessageView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	room, err := s.rooms.GetByCode(NormalizeCode(roomCode))
	if err != nil {
		return nil, err
	}
	if room == nil {
		logger.Log.Warn("message submitted to unknown room",
			zap.String("room_code", roomCode),
		)
		return nil, nil
	}

	msg := &models.Message{
		RoomID:   room.ID,
		SenderID: senderID,
		Content:  content,
		Status:   models.MessagePending,
	}
	if err := s.messages.Create(msg); err != nil {
		return nil, err
	}

	// Reload with the sender resolved for the wire view.
	full, err := s.messages.GetByID(msg.ID)
	if err != nil || full == nil {
		return nil, err
	}

	view := models.NewMessageView(full, room.RoomCode)

	s.record(audit.Entry{
		Action:    audit.ActionSubmitted,
		MessageID: msg.ID.String(),
		RoomCode:  room.RoomCode,
		SenderID:  senderID.String(),
		Content:   content,
	})

	s.publish(broker.EventMessageSubmitted, room.RoomCode, view)

	return &view, nil
}

// Approve transitions pending -> approved. Approving an already-approved
// message re-affirms it and re-publishes the broadcast event, so client
// retries are safe.
func (s *ModerationService) Approve(messageID uuid.UUID) (*models.MessageView, error) {
	msg, err := s.messages.GetByID(messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	if msg.Status != models.MessageApproved {
		if err := s.messages.SetStatus(msg.ID, models.MessageApproved); err != nil {
			return nil, err
		}
		msg.Status = models.MessageApproved
	}

	view := models.NewMessageView(msg, msg.Room.RoomCode)

	s.record(audit.Entry{
		Action:    audit.ActionApproved,
		MessageID: msg.ID.String(),
		RoomCode:  msg.Room.RoomCode,
	})

	s.publish(broker.EventMessageApproved, msg.Room.RoomCode, view)

	return &view, nil
}

// Delete hard-removes a message regardless of status. The owning room's
// code is resolved before the delete so the notification can still target
// the right partitions.
func (s *ModerationService) Delete(messageID uuid.UUID) error {
	msg, err := s.messages.GetByID(messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}

	roomCode := msg.Room.RoomCode

	if err := s.messages.Delete(msg.ID); err != nil {
		return err
	}

	s.record(audit.Entry{
		Action:    audit.ActionDeleted,
		MessageID: msg.ID.String(),
		RoomCode:  roomCode,
	})

	s.publish(broker.EventMessageDeleted, roomCode, msg.ID.String())

	return nil
}

// HistoryByRoom is the full-ordered-history snapshot for a joining user.
func (s *ModerationService) HistoryByRoom(room *models.Room) ([]models.MessageView, error) {
	msgs, err := s.messages.FindByRoom(room.ID)
	if err != nil {
		return nil, err
	}
	return s.views(msgs, room.RoomCode), nil
}

// PendingByRoom is the moderation queue snapshot for a joining admin.
func (s *ModerationService) PendingByRoom(room *models.Room) ([]models.MessageView, error) {
	msgs, err := s.messages.FindByRoomAndStatus(room.ID, models.MessagePending)
	if err != nil {
		return nil, err
	}
	return s.views(msgs, room.RoomCode), nil
}

// ApprovedByRoom is the feed snapshot for a joining broadcast viewer.
func (s *ModerationService) ApprovedByRoom(room *models.Room) ([]models.MessageView, error) {
	msgs, err := s.messages.FindByRoomAndStatus(room.ID, models.MessageApproved)
	if err != nil {
		return nil, err
	}
	return s.views(msgs, room.RoomCode), nil
}

func (s *ModerationService) views(msgs []models.Message, roomCode string) []models.MessageView {
	views := make([]models.MessageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, models.NewMessageView(&msgs[i], roomCode))
	}
	return views
}

func (s *ModerationService) record(entry audit.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(entry); err != nil {
		logger.Log.Warn("failed to record audit entry",
			zap.String("message_id", entry.MessageID),
			zap.Error(err),
		)
	}
}

func (s *ModerationService) publish(t broker.EventType, roomCode string, payload any) {
	ev, err := broker.NewEvent(t, roomCode, payload)
	if err != nil {
		logger.Log.Error("failed to encode event",
			zap.String("type", string(t)),
			zap.Error(err),
		)
		return
	}
	if err := s.broker.Publish(ev); err != nil {
		logger.Log.Error("failed to publish event",
			zap.String("type", string(t)),
			zap.String("room_code", roomCode),
			zap.Error(err),
		)
	}
}
