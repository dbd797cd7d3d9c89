// Package websocket provides the WebSocket transport for the game server.
//
// The websocket package implements:
//   - The join stream: one connection per room member
//   - The watch stream: room-directory subscribers
//   - Fan-out delivery of game events to room members
//   - Connection lifecycle and keep-alive management
//
// Architecture:
//
// The package uses a hub-and-spoke model. A single Hub goroutine owns the
// connection maps; registrations, unregistrations and outbound traffic all
// flow through its channels, so the maps need no locking. Each client
// connection runs a read pump and a write pump goroutine.
//
// Backpressure:
//
// Every client has a bounded send queue. The hub enqueues without blocking;
// when a queue is full the client is disconnected rather than letting one
// slow consumer stall broadcasts to the rest of the room or grow memory
// without bound.
//
// Disconnect handling:
//
// However a connection ends (peer close, read error, keep-alive timeout,
// queue overflow), the unregister path runs exactly once per client and
// triggers the game-side leave processing for room members. Watchers have
// no game state and are simply dropped from the subscriber set.
//
// Inbound messages from room members are rate limited with a per-connection
// token bucket; frames over budget are answered with an error event and not
// processed.
package websocket
