package service

import (
	"github.com/google/uuid"

	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/registry"
)

// GameService defines the operations the transport layers use to run games.
type GameService interface {
	// Join admits a client into a room, creating it on first use. It
	// returns room.ErrRoomFull when the room is at capacity; the caller
	// reports the failure and closes the connection.
	Join(clientID uuid.UUID, roomID string) error

	// AnnounceJoin notifies the room's other members that the client
	// joined and pushes a fresh directory snapshot to watchers. Called
	// once the client's connection is registered for delivery.
	AnnounceJoin(clientID uuid.UUID, roomID string)

	// Disconnect runs leave processing for a departed client: membership
	// removal, game abort when the client was an active player, room
	// destruction when empty, and the corresponding notifications.
	// Safe to call for unknown or already-removed clients.
	Disconnect(clientID uuid.UUID)

	// HandleMessage routes one inbound frame from a room member.
	// Structured messages are dispatched by action; anything that does
	// not parse as JSON is relayed verbatim to the room's other members.
	HandleMessage(clientID uuid.UUID, data []byte)

	// ListRooms returns the directory snapshot sorted by room id.
	ListRooms() []registry.RoomInfo

	// RoomDetail returns the full view of one room.
	RoomDetail(roomID string) (*registry.RoomDetail, error)

	// Counts returns process-level room/connection totals.
	Counts() Stats
}

// Notifier delivers outbound events. Implemented by the WebSocket hub.
type Notifier interface {
	// BroadcastToRoom marshals event as JSON and delivers it to every
	// connection in the room.
	BroadcastToRoom(roomID string, event any)

	// BroadcastRawToRoomExcept delivers an already-encoded payload to
	// every room connection except one.
	BroadcastRawToRoomExcept(roomID string, except uuid.UUID, data []byte)

	// SendToClient marshals event as JSON and delivers it to a single
	// connection.
	SendToClient(clientID uuid.UUID, event any)

	// BroadcastRoomList marshals event as JSON and delivers it to every
	// directory watcher.
	BroadcastRoomList(event any)
}
