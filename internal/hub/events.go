package hub

// Wire event names. These are the compatibility contract with existing
// clients and must not be renamed.
const (
	EventRoomNotFound           = "room_not_found"
	EventAuthFailed             = "auth_failed"
	EventLoadMessages           = "load_messages"
	EventLoadPendingMessages    = "load_pending_messages"
	EventLoadBroadcastMessages  = "load_broadcast_messages"
	EventReceiveMessage         = "receive_message"
	EventNewPendingMessage      = "new_pending_message"
	EventBroadcastMessage       = "broadcast_message"
	EventMessageDeleted         = "message_deleted"
	EventRemoveBroadcastMessage = "remove_broadcast_message"
	EventUserApproved           = "user_approved"
	EventKickedFromRoom         = "kicked_from_room"
	EventRoomDeleted            = "room_deleted"
	EventSuperadminLiveUsers    = "superadmin_live_users"
)

// OutboundEvent is the JSON envelope written to every connection.
type OutboundEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}
