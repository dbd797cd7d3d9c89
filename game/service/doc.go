// Package service wires connections to rooms.
//
// The service package implements:
//   - Connection bookkeeping (which client belongs to which room)
//   - Join and disconnect processing, including game aborts
//   - Routing of inbound client messages to the owning room
//   - Translation of room outcomes into outbound wire events
//
// GameService is the interface consumed by the transport layers; the
// implementation delegates room lifecycle to the registry and event
// delivery to a Notifier (implemented by the WebSocket hub). Errors raised
// by a command are reported to the originating client only and never
// mutate state.
package service
