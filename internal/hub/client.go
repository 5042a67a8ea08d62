package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/roomcast/roomcast/internal/models"
	"github.com/roomcast/roomcast/pkg/logger"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Conn is the subset of *websocket.Conn the hub writes through. Narrow so
// tests can capture emits without a network.
type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one live connection. SocketID is the connection handle
// recorded on the User row while the client is online. RoomCode and Role
// belong to the hub registry and are only touched under its lock.
type Client struct {
	SocketID string
	UserID   *uuid.UUID
	Role     models.Role
	RoomCode string

	conn Conn
	mu   sync.Mutex
}

func NewClient(conn Conn) *Client {
	return &Client{
		SocketID: uuid.NewString(),
		conn:     conn,
	}
}

// Emit writes one event to the connection. The mutex serializes writes
// from the read loop and the dispatch loop.
func (c *Client) Emit(event string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(OutboundEvent{Event: event, Data: data}); err != nil {
		logger.Log.Debug("failed to write to client",
			zap.String("socket_id", c.SocketID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
