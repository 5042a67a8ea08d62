package handler_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/roomcast/roomcast/internal/audit"
	"github.com/roomcast/roomcast/internal/handler"
	"github.com/roomcast/roomcast/internal/hub"
	"github.com/roomcast/roomcast/internal/models"
	"github.com/roomcast/roomcast/internal/repository"
	"github.com/roomcast/roomcast/internal/service"
	"github.com/roomcast/roomcast/internal/testutil"
	"github.com/roomcast/roomcast/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type WebSocketHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB     *testutil.TestDatabase
	fakeBroker *testutil.FakeBroker
	server     *httptest.Server
	cancel     context.CancelFunc
	moderation *service.ModerationService
}

func (s *WebSocketHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())
}

func (s *WebSocketHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *WebSocketHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.fakeBroker = testutil.NewFakeBroker()

	roomRepo := repository.NewRoomRepository(s.testDB.DB)
	userRepo := repository.NewUserRepository(s.testDB.DB)
	messageRepo := repository.NewMessageRepository(s.testDB.DB)

	auditLog, err := audit.NewLog(filepath.Join(s.T().TempDir(), "audit.log"))
	assert.NoError(s.T(), err)

	roomService := service.NewRoomService(roomRepo, s.fakeBroker, nil)
	presenceService := service.NewPresenceService(userRepo, s.fakeBroker)
	userService := service.NewUserService(userRepo, roomRepo, s.fakeBroker, presenceService)
	s.moderation = service.NewModerationService(messageRepo, roomRepo, s.fakeBroker, auditLog)

	sessionHub := hub.NewHub()
	events, err := s.fakeBroker.Subscribe()
	assert.NoError(s.T(), err)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go sessionHub.Run(ctx, events)

	wsHandler := handler.NewWebSocketHandler(sessionHub, roomService, userService, s.moderation, presenceService)

	router := gin.New()
	router.GET("/ws", wsHandler.HandleWebSocket)
	s.server = httptest.NewServer(router)
}

func (s *WebSocketHandlerIntegrationTestSuite) TearDownTest() {
	s.cancel()
	s.server.Close()
}

func (s *WebSocketHandlerIntegrationTestSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(s.T(), err)
	s.T().Cleanup(func() { conn.Close() })
	return conn
}

func (s *WebSocketHandlerIntegrationTestSuite) send(conn *websocket.Conn, event string, data any) {
	assert.NoError(s.T(), conn.WriteJSON(map[string]any{"event": event, "data": data}))
}

// awaitFrame reads until the named event arrives, skipping unrelated
// frames (roster pushes interleave with everything).
func (s *WebSocketHandlerIntegrationTestSuite) awaitFrame(conn *websocket.Conn, event string) wsFrame {
	deadline := time.Now().Add(2 * time.Second)
	conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			s.T().Fatalf("reading frames while waiting for %q: %v", event, err)
		}
		if frame.Event == event {
			return frame
		}
	}
	s.T().Fatalf("timed out waiting for %q", event)
	return wsFrame{}
}

func (s *WebSocketHandlerIntegrationTestSuite) TestJoinUnknownRoom() {
	conn := s.dial()
	s.send(conn, "join_room", map[string]string{"roomCode": "NOPE42", "role": "user"})
	s.awaitFrame(conn, "room_not_found")
}

func (s *WebSocketHandlerIntegrationTestSuite) TestJoinWrongPassword() {
	roomRepo := repository.NewRoomRepository(s.testDB.DB)
	roomService := service.NewRoomService(roomRepo, s.fakeBroker, func() string { return "AB12CD" })
	_, err := roomService.CreateRoom("Guarded", "hunter2", nil)
	assert.NoError(s.T(), err)

	conn := s.dial()
	s.send(conn, "join_room", map[string]string{
		"roomCode": "AB12CD",
		"role":     "user",
		"password": "wrong",
	})
	s.awaitFrame(conn, "auth_failed")
}

func (s *WebSocketHandlerIntegrationTestSuite) TestUserJoinReceivesHistorySnapshot() {
	room := testutil.CreateTestRoom(s.T(), s.testDB.DB, "AB12CD", "Test")
	alice := testutil.CreateTestUser(s.T(), s.testDB.DB, room, "alice", models.RoleUser, models.StatusApproved)

	_, err := s.moderation.Submit(alice.ID, "AB12CD", "hello")
	assert.NoError(s.T(), err)

	conn := s.dial()
	s.send(conn, "join_room", map[string]string{
		"roomCode": "ab12cd",
		"role":     "user",
		"userId":   alice.ID.String(),
	})

	frame := s.awaitFrame(conn, "load_messages")
	var views []models.MessageView
	assert.NoError(s.T(), json.Unmarshal(frame.Data, &views))
	if assert.Len(s.T(), views, 1) {
		assert.Equal(s.T(), "hello", views[0].Content)
		assert.Equal(s.T(), "alice", views[0].Sender.Username)
	}
}

func (s *WebSocketHandlerIntegrationTestSuite) TestAdminJoinReceivesPendingSnapshot() {
	room := testutil.CreateTestRoom(s.T(), s.testDB.DB, "AB12CD", "Test")
	alice := testutil.CreateTestUser(s.T(), s.testDB.DB, room, "alice", models.RoleUser, models.StatusApproved)

	pending, err := s.moderation.Submit(alice.ID, "AB12CD", "needs review")
	assert.NoError(s.T(), err)
	approved, err := s.moderation.Submit(alice.ID, "AB12CD", "already out")
	assert.NoError(s.T(), err)
	_, err = s.moderation.Approve(approved.ID)
	assert.NoError(s.T(), err)

	conn := s.dial()
	s.send(conn, "join_room", map[string]string{"roomCode": "AB12CD", "role": "admin"})

	frame := s.awaitFrame(conn, "load_pending_messages")
	var views []models.MessageView
	assert.NoError(s.T(), json.Unmarshal(frame.Data, &views))
	if assert.Len(s.T(), views, 1) {
		assert.Equal(s.T(), pending.ID, views[0].ID)
	}
}

func (s *WebSocketHandlerIntegrationTestSuite) TestSendMessageFansOutToRoom() {
	room := testutil.CreateTestRoom(s.T(), s.testDB.DB, "AB12CD", "Test")
	alice := testutil.CreateTestUser(s.T(), s.testDB.DB, room, "alice", models.RoleUser, models.StatusApproved)

	conn := s.dial()
	s.send(conn, "join_room", map[string]string{
		"roomCode": "AB12CD",
		"role":     "user",
		"userId":   alice.ID.String(),
	})
	s.awaitFrame(conn, "load_messages")

	s.send(conn, "send_message", map[string]string{
		"userId":   alice.ID.String(),
		"roomCode": "AB12CD",
		"content":  "live one",
	})

	frame := s.awaitFrame(conn, "receive_message")
	var view models.MessageView
	assert.NoError(s.T(), json.Unmarshal(frame.Data, &view))
	assert.Equal(s.T(), "live one", view.Content)
	assert.Equal(s.T(), models.MessagePending, view.Status)

	s.awaitFrame(conn, "new_pending_message")
}

func TestWebSocketHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(WebSocketHandlerIntegrationTestSuite))
}
