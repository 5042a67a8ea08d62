package service

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/roomcast/roomcast/internal/broker"
	"github.com/roomcast/roomcast/internal/models"
	"github.com/roomcast/roomcast/internal/repository"
	"github.com/roomcast/roomcast/internal/utils"
	"github.com/roomcast/roomcast/pkg/logger"
	"go.uber.org/zap"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// CodeFunc produces candidate room codes. Swappable so tests can force
// collisions or fixed codes.
type CodeFunc func() string

// RandomCode draws 6 characters uniformly from [A-Z0-9].
func RandomCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(code)
}

// NormalizeCode applies the lookup convention: trim then uppercase.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// RoomService is the room directory: it owns code generation and
// uniqueness, code resolution and the room deletion cascade.
type RoomService struct {
	rooms  *repository.RoomRepository
	broker broker.EventBroker
	codeFn CodeFunc
}

func NewRoomService(rooms *repository.RoomRepository, evBroker broker.EventBroker, codeFn CodeFunc) *RoomService {
	if codeFn == nil {
		codeFn = RandomCode
	}
	return &RoomService{
		rooms:  rooms,
		broker: evBroker,
		codeFn: codeFn,
	}
}

// CreateRoom generates a unique code, verifying against the stored code
// set before committing. The keyspace is 36^6 so retries are rare, but a
// first draw is never assumed unique.
func (s *RoomService) CreateRoom(name, password string, createdBy *uuid.UUID) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoomNameRequired
	}

	var code string
	for {
		code = s.codeFn()
		exists, err := s.rooms.CodeExists(code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	room := &models.Room{
		RoomCode:  code,
		Name:      name,
		CreatedBy: createdBy,
	}

	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			return nil, err
		}
		room.PasswordHash = hash
	}

	if err := s.rooms.Create(room); err != nil {
		return nil, err
	}

	logger.Log.Info("room created",
		zap.String("room_code", room.RoomCode),
		zap.String("name", room.Name),
	)

	return room, nil
}

// ResolveByCode normalizes and resolves a human-entered code.
func (s *RoomService) ResolveByCode(code string) (*models.Room, error) {
	room, err := s.rooms.GetByCode(NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Authorize checks the join password against the room. Open rooms admit
// everyone.
func (s *RoomService) Authorize(room *models.Room, password string) bool {
	if room.PasswordHash == "" {
		return true
	}
	ok, err := utils.VerifyPassword(password, room.PasswordHash)
	if err != nil {
		logger.Log.Warn("room password check failed",
			zap.String("room_code", room.RoomCode),
			zap.Error(err),
		)
		return false
	}
	return ok
}

// DeleteRoom cascades messages, users and the room itself, then notifies
// every partition of the room.
func (s *RoomService) DeleteRoom(code string) error {
	room, err := s.ResolveByCode(code)
	if err != nil {
		return err
	}

	if err := s.rooms.DeleteCascade(room.ID); err != nil {
		return err
	}

	ev, err := broker.NewEvent(broker.EventRoomDeleted, room.RoomCode, nil)
	if err != nil {
		return err
	}
	if err := s.broker.Publish(ev); err != nil {
		logger.Log.Error("failed to publish room_deleted",
			zap.String("room_code", room.RoomCode),
			zap.Error(err),
		)
	}

	logger.Log.Info("room deleted", zap.String("room_code", room.RoomCode))
	return nil
}
