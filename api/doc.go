// Package api provides the HTTP surface of the game server.
//
// The api package implements:
//   - WebSocket endpoints: /join/{room_id} for players, /rooms/stream for
//     room-directory watchers
//   - A small read-only REST API for introspection under /api
//
// Endpoints:
//
//	GET /join/{room_id}   upgrade to the join stream for a room
//	GET /rooms/stream     upgrade to the directory watch stream
//	GET /api/rooms        directory snapshot, sorted by room id
//	GET /api/rooms/{id}   full view of one room
//	GET /api/health       liveness probe
//	GET /api/stats        process totals (uptime, rooms, connections)
//
// All game mutation happens over the WebSocket protocol; the REST API never
// changes state.
package api
