// Package registry owns the set of live rooms.
//
// The Registry is the single authority for room existence: rooms are
// created lazily on the first join to an unknown room id and destroyed
// when their last member leaves. It also produces the room-directory
// snapshot, the ordered (room_id, client_count) projection consumed by
// directory watchers and the REST API.
//
// Concurrency:
//
// A single RWMutex guards the room map. Join and Leave take the write lock
// so that create-if-absent, capacity checks and destroy-on-empty are atomic
// with respect to each other; lookups and snapshots take the read lock.
// Game commands never hold the registry lock; they go straight to the
// room's own mutex.
package registry
