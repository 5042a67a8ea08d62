package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/roomcast/roomcast/internal/hub"
	"github.com/roomcast/roomcast/internal/models"
	"github.com/roomcast/roomcast/internal/service"
	"github.com/roomcast/roomcast/pkg/logger"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Inbound wire event names.
const (
	eventJoinRoom       = "join_room"
	eventSendMessage    = "send_message"
	eventApproveMessage = "approve_message"
	eventApproveUser    = "approve_user"
	eventKickUser       = "kick_user"
	eventDeleteRoom     = "delete_room"
)

type wsRequest struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Role     string `json:"role"`
	UserID   string `json:"userId,omitempty"`
	Password string `json:"password,omitempty"`
}

type sendMessagePayload struct {
	UserID   string `json:"userId"`
	RoomCode string `json:"roomCode"`
	Content  string `json:"content"`
}

type approveMessagePayload struct {
	MessageID string `json:"messageId"`
}

type userTargetPayload struct {
	UserID   string `json:"userId"`
	RoomCode string `json:"roomCode,omitempty"`
}

type deleteRoomPayload struct {
	RoomCode string `json:"roomCode"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // add origin check in production
	},
}

// WebSocketHandler owns the real-time surface. Every event handler wraps
// its body: a malformed or failed event is logged and dropped, never
// answered with an error frame and never a reason to close the
// connection.
type WebSocketHandler struct {
	hub        *hub.Hub
	rooms      *service.RoomService
	users      *service.UserService
	moderation *service.ModerationService
	presence   *service.PresenceService
}

func NewWebSocketHandler(
	h *hub.Hub,
	rooms *service.RoomService,
	users *service.UserService,
	moderation *service.ModerationService,
	presence *service.PresenceService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        h,
		rooms:      rooms,
		users:      users,
		moderation: moderation,
		presence:   presence,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	client := hub.NewClient(conn)
	logger.Log.Debug("client connected", zap.String("socket_id", client.SocketID))

	defer h.disconnect(client)

	h.readLoop(conn, client)
}

func (h *WebSocketHandler) readLoop(conn *websocket.Conn, client *hub.Client) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(conn, done)

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Debug("websocket read error", zap.Error(err))
			}
			return
		}

		switch req.Event {
		case eventJoinRoom:
			h.handleJoinRoom(client, req.Data)
		case eventSendMessage:
			h.handleSendMessage(req.Data)
		case eventApproveMessage:
			h.handleApproveMessage(req.Data)
		case eventApproveUser:
			h.handleApproveUser(req.Data)
		case eventKickUser:
			h.handleKickUser(req.Data)
		case eventDeleteRoom:
			h.handleDeleteRoom(req.Data)
		default:
			logger.Log.Debug("unknown event", zap.String("event", req.Event))
		}
	}
}

func (h *WebSocketHandler) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// handleJoinRoom resolves the room, updates presence, admits the
// connection into the role partition and delivers the role's snapshot.
func (h *WebSocketHandler) handleJoinRoom(client *hub.Client, data json.RawMessage) {
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomCode == "" {
		return
	}

	room, err := h.rooms.ResolveByCode(p.RoomCode)
	if err != nil {
		client.Emit(hub.EventRoomNotFound, nil)
		return
	}

	if !h.rooms.Authorize(room, p.Password) {
		client.Emit(hub.EventAuthFailed, nil)
		return
	}

	if p.UserID != "" {
		if uid, err := uuid.Parse(p.UserID); err == nil {
			h.presence.MarkOnline(uid, client.SocketID)
			client.UserID = &uid
		}
	}

	role := models.Role(p.Role)
	h.hub.Join(client, room.RoomCode, role)

	switch role {
	case models.RoleUser:
		if views, err := h.moderation.HistoryByRoom(room); err == nil {
			client.Emit(hub.EventLoadMessages, views)
		}
	case models.RoleAdmin:
		if views, err := h.moderation.PendingByRoom(room); err == nil {
			client.Emit(hub.EventLoadPendingMessages, views)
		}
	case models.RoleBroadcast:
		if views, err := h.moderation.ApprovedByRoom(room); err == nil {
			client.Emit(hub.EventLoadBroadcastMessages, views)
		}
	}

	// Membership changed: push the live roster to the whole room.
	h.presence.BroadcastRoster(room.ID, room.RoomCode)
}

func (h *WebSocketHandler) handleSendMessage(data json.RawMessage) {
	var p sendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	uid, err := uuid.Parse(p.UserID)
	if err != nil {
		logger.Log.Warn("send_message with invalid user id", zap.String("user_id", p.UserID))
		return
	}

	if _, err := h.moderation.Submit(uid, p.RoomCode, p.Content); err != nil {
		logger.Log.Error("failed to submit message", zap.Error(err))
	}
}

func (h *WebSocketHandler) handleApproveMessage(data json.RawMessage) {
	var p approveMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	mid, err := uuid.Parse(p.MessageID)
	if err != nil {
		return
	}

	if _, err := h.moderation.Approve(mid); err != nil {
		logger.Log.Warn("approve_message failed",
			zap.String("message_id", p.MessageID),
			zap.Error(err),
		)
	}
}

func (h *WebSocketHandler) handleApproveUser(data json.RawMessage) {
	var p userTargetPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	uid, err := uuid.Parse(p.UserID)
	if err != nil {
		return
	}

	if _, err := h.users.ApproveUser(uid); err != nil {
		logger.Log.Warn("approve_user failed",
			zap.String("user_id", p.UserID),
			zap.Error(err),
		)
	}
}

func (h *WebSocketHandler) handleKickUser(data json.RawMessage) {
	var p userTargetPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	uid, err := uuid.Parse(p.UserID)
	if err != nil {
		return
	}

	if err := h.users.KickUser(uid); err != nil {
		logger.Log.Warn("kick_user failed",
			zap.String("user_id", p.UserID),
			zap.Error(err),
		)
	}
}

func (h *WebSocketHandler) handleDeleteRoom(data json.RawMessage) {
	var p deleteRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomCode == "" {
		return
	}

	if err := h.rooms.DeleteRoom(p.RoomCode); err != nil {
		logger.Log.Warn("delete_room failed",
			zap.String("room_code", p.RoomCode),
			zap.Error(err),
		)
	}
}

// disconnect clears the connection from the registry and the user's
// presence, then pushes a roster update to whatever room they were in.
// In-flight writes started before the disconnect still complete.
func (h *WebSocketHandler) disconnect(client *hub.Client) {
	roomCode := h.hub.Remove(client.SocketID)

	user := h.presence.MarkOffline(client.SocketID)
	if user != nil {
		h.presence.BroadcastRoster(user.RoomID, roomCode)
	}

	client.Close()
	logger.Log.Debug("client disconnected", zap.String("socket_id", client.SocketID))
}
