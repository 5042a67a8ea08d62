package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roomcast/roomcast/internal/service"
	"github.com/roomcast/roomcast/pkg/logger"
	"go.uber.org/zap"
)

type RoomHandler struct {
	rooms *service.RoomService
	users *service.UserService
}

func NewRoomHandler(rooms *service.RoomService, users *service.UserService) *RoomHandler {
	return &RoomHandler{
		rooms: rooms,
		users: users,
	}
}

type CreateRoomRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password,omitempty"`
}

type JoinRoomRequest struct {
	Username string `json:"username" binding:"required"`
	RoomCode string `json:"roomCode" binding:"required"`
}

// CreateRoom handles POST /api/rooms/create.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Room name is required"})
		return
	}

	room, err := h.rooms.CreateRoom(req.Name, req.Password, nil)
	if err != nil {
		if errors.Is(err, service.ErrRoomNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Room name is required"})
			return
		}
		logger.Log.Error("failed to create room", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Room created successfully",
		"room":    room,
	})
}

// JoinRoom handles POST /api/rooms/join: a join request that waits in the
// pending queue for superadmin approval.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and Room Code are required"})
		return
	}

	user, err := h.users.JoinRequest(req.Username, req.RoomCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		case errors.Is(err, service.ErrUsernameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username and Room Code are required"})
		default:
			logger.Log.Error("failed to create join request", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Join request sent. Waiting for approval.",
		"user":    user,
	})
}

// PendingUsers handles GET /api/rooms/:roomCode/pending-users.
func (h *RoomHandler) PendingUsers(c *gin.Context) {
	users, err := h.users.PendingUsers(c.Param("roomCode"))
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
			return
		}
		logger.Log.Error("failed to fetch pending users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// ApproveUser handles PATCH /api/rooms/approve-user/:userId and triggers
// the user_approved broadcast.
func (h *RoomHandler) ApproveUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	user, err := h.users.ApproveUser(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		logger.Log.Error("failed to approve user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User approved successfully",
		"user":    user,
	})
}

// AllUsers handles GET /api/rooms/:roomCode/all-users.
func (h *RoomHandler) AllUsers(c *gin.Context) {
	users, err := h.users.AllUsers(c.Param("roomCode"))
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
			return
		}
		logger.Log.Error("failed to fetch users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, users)
}
