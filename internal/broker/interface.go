package broker

import "encoding/json"

// EventType identifies a domain event produced by the services. The hub
// translates these into wire events for the affected partitions, which
// keeps moderation and room logic decoupled from fan-out.
type EventType string

const (
	EventMessageSubmitted EventType = "message_submitted"
	EventMessageApproved  EventType = "message_approved"
	EventMessageDeleted   EventType = "message_deleted"
	EventUserApproved     EventType = "user_approved"
	EventUserKicked       EventType = "user_kicked"
	EventRoomDeleted      EventType = "room_deleted"
	EventRosterChanged    EventType = "roster_changed"
)

// Event is the payload published on the broker. RoomCode targets the
// room's partitions; SocketID targets a single registered connection.
type Event struct {
	Type     EventType       `json:"type"`
	RoomCode string          `json:"room_code,omitempty"`
	SocketID string          `json:"socket_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals the payload and builds an event. A nil payload is
// allowed for events that carry no body (room_deleted).
func NewEvent(t EventType, roomCode string, payload any) (Event, error) {
	ev := Event{Type: t, RoomCode: roomCode}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		ev.Payload = data
	}
	return ev, nil
}

// EventBroker is the pub/sub seam between services and the hub.
type EventBroker interface {
	Publish(ev Event) error
	Subscribe() (<-chan Event, error)
	Close() error
}
