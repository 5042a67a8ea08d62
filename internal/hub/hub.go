package hub

import (
	"context"
	"sync"

	"github.com/roomcast/roomcast/internal/broker"
	"github.com/roomcast/roomcast/internal/models"
	"github.com/roomcast/roomcast/pkg/logger"
	"go.uber.org/zap"
)

// partitions holds a room's live connections split by role, keyed by
// socket id. The room-wide audience is the union of all four sets; the
// broadcast feed targets only the broadcasters set.
type partitions struct {
	users        map[string]*Client
	admins       map[string]*Client
	broadcasters map[string]*Client
	superadmins  map[string]*Client
}

func newPartitions() *partitions {
	return &partitions{
		users:        make(map[string]*Client),
		admins:       make(map[string]*Client),
		broadcasters: make(map[string]*Client),
		superadmins:  make(map[string]*Client),
	}
}

func (p *partitions) set(role models.Role) map[string]*Client {
	switch role {
	case models.RoleAdmin:
		return p.admins
	case models.RoleBroadcast:
		return p.broadcasters
	case models.RoleSuperadmin:
		return p.superadmins
	default:
		return p.users
	}
}

func (p *partitions) each(fn func(*Client)) {
	for _, set := range []map[string]*Client{p.users, p.admins, p.broadcasters, p.superadmins} {
		for _, c := range set {
			fn(c)
		}
	}
}

func (p *partitions) empty() bool {
	return len(p.users)+len(p.admins)+len(p.broadcasters)+len(p.superadmins) == 0
}

// Hub owns the roomCode -> partitions registry, the only shared mutable
// in-memory structure in the system. It is mutated exclusively through
// Join/Remove/DropRoom and read by every emit.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]*partitions
	bySocket map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]*partitions),
		bySocket: make(map[string]*Client),
	}
}

// Join admits the client into the role-appropriate partition of the room.
// A re-join moves the connection, whether the room or only the role
// changed; the old registration never survives.
func (h *Hub) Join(c *Client, roomCode string, role models.Role) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(c.SocketID)

	c.RoomCode = roomCode
	c.Role = role

	p, ok := h.rooms[roomCode]
	if !ok {
		p = newPartitions()
		h.rooms[roomCode] = p
	}
	p.set(role)[c.SocketID] = c
	h.bySocket[c.SocketID] = c

	logger.Log.Debug("client joined room",
		zap.String("socket_id", c.SocketID),
		zap.String("room_code", roomCode),
		zap.String("role", string(role)),
	)
}

// Remove drops the connection from the registry and reports the room it
// was registered in, or "" if it was not registered. Safe to call twice.
// Callers use the returned code instead of reading Client.RoomCode, which
// is only safe to touch under the hub lock.
func (h *Hub) Remove(socketID string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removeLocked(socketID)
}

func (h *Hub) removeLocked(socketID string) string {
	c, ok := h.bySocket[socketID]
	if !ok {
		return ""
	}
	delete(h.bySocket, socketID)

	roomCode := c.RoomCode
	if p, ok := h.rooms[roomCode]; ok {
		delete(p.set(c.Role), socketID)
		if p.empty() {
			delete(h.rooms, roomCode)
		}
	}
	return roomCode
}

// DropRoom discards a deleted room's registry entry. The connections stay
// open; clients decide what to do with the room_deleted notice.
func (h *Hub) DropRoom(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	p.each(func(c *Client) {
		delete(h.bySocket, c.SocketID)
		c.RoomCode = ""
	})
	delete(h.rooms, roomCode)
}

// EmitToRoom delivers to every connection in the room, all roles.
func (h *Hub) EmitToRoom(roomCode, event string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	p, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	p.each(func(c *Client) {
		c.Emit(event, data)
	})
}

// EmitToBroadcast delivers to the dedicated broadcast-viewer partition.
func (h *Hub) EmitToBroadcast(roomCode, event string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	p, ok := h.rooms[roomCode]
	if !ok {
		return
	}
	for _, c := range p.broadcasters {
		c.Emit(event, data)
	}
}

// EmitToSocket delivers to one registered connection. Reports whether the
// handle was known.
func (h *Hub) EmitToSocket(socketID, event string, data any) bool {
	h.mu.RLock()
	c, ok := h.bySocket[socketID]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	c.Emit(event, data)
	return true
}

// Run consumes broker events until the context ends.
func (h *Hub) Run(ctx context.Context, events <-chan broker.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.Dispatch(ev)
		}
	}
}

// Dispatch applies the routing table for one domain event.
func (h *Hub) Dispatch(ev broker.Event) {
	switch ev.Type {
	case broker.EventMessageSubmitted:
		// Both audiences are notified on every submit: members see the
		// message, admins see the moderation item.
		h.EmitToRoom(ev.RoomCode, EventReceiveMessage, ev.Payload)
		h.EmitToRoom(ev.RoomCode, EventNewPendingMessage, ev.Payload)

	case broker.EventMessageApproved:
		// Members already saw the message at submit time; only the
		// broadcast feed is notified.
		h.EmitToBroadcast(ev.RoomCode, EventBroadcastMessage, ev.Payload)

	case broker.EventMessageDeleted:
		// A delete must clear every view that ever saw the message,
		// whatever its status was at delete time.
		h.EmitToRoom(ev.RoomCode, EventMessageDeleted, ev.Payload)
		h.EmitToBroadcast(ev.RoomCode, EventRemoveBroadcastMessage, ev.Payload)

	case broker.EventUserApproved:
		if ev.SocketID != "" {
			h.EmitToSocket(ev.SocketID, EventUserApproved, ev.Payload)
		}
		if ev.RoomCode != "" {
			h.EmitToRoom(ev.RoomCode, EventUserApproved, ev.Payload)
		}

	case broker.EventUserKicked:
		h.EmitToSocket(ev.SocketID, EventKickedFromRoom, ev.Payload)

	case broker.EventRoomDeleted:
		h.EmitToRoom(ev.RoomCode, EventRoomDeleted, nil)
		h.DropRoom(ev.RoomCode)

	case broker.EventRosterChanged:
		h.EmitToRoom(ev.RoomCode, EventSuperadminLiveUsers, ev.Payload)

	default:
		logger.Log.Warn("unknown broker event", zap.String("type", string(ev.Type)))
	}
}
