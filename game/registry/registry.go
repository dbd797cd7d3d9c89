package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/config"
	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/room"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomInfo is one entry of the room-directory snapshot.
type RoomInfo struct {
	RoomID      string `json:"room_id"`
	ClientCount int    `json:"client_count"`
}

// RoomDetail is the full REST view of one room.
type RoomDetail struct {
	RoomID      string      `json:"room_id"`
	Phase       room.Phase  `json:"phase"`
	ClientCount int         `json:"client_count"`
	Members     []uuid.UUID `json:"members"`
}

// Registry maps room ids to live rooms and manages their lifecycle.
type Registry struct {
	cfg *config.Config

	mu    sync.RWMutex
	rooms map[string]*room.Room
}

// New creates an empty registry.
func New(cfg *config.Config) *Registry {
	return &Registry{
		cfg:   cfg,
		rooms: make(map[string]*room.Room),
	}
}

// Join admits a client into the named room, creating the room if it does
// not exist yet. A full room rejects the join with room.ErrRoomFull and, if
// it was created by this call, is discarded again.
func (reg *Registry) Join(clientID uuid.UUID, roomID string) (*room.Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, exists := reg.rooms[roomID]
	if !exists {
		r = room.New(roomID, reg.cfg.MaxRoomMembers)
		reg.rooms[roomID] = r
	}

	if err := r.AddMember(clientID); err != nil {
		if !exists {
			delete(reg.rooms, roomID)
		}
		return nil, err
	}
	return r, nil
}

// Leave removes a client from the named room and destroys the room when it
// becomes empty. Leaving an unknown room or a room the client is not in is
// a no-op.
func (reg *Registry) Leave(clientID uuid.UUID, roomID string) room.Departure {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return room.Departure{}
	}

	dep := r.RemoveMember(clientID)
	if dep.Empty {
		delete(reg.rooms, roomID)
	}
	return dep
}

// Get looks up a live room.
func (reg *Registry) Get(roomID string) (*room.Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Snapshot returns the (room_id, client_count) projection sorted by
// room id.
func (reg *Registry) Snapshot() []RoomInfo {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	infos := make([]RoomInfo, 0, len(reg.rooms))
	for id, r := range reg.rooms {
		infos = append(infos, RoomInfo{RoomID: id, ClientCount: r.Count()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].RoomID < infos[j].RoomID })
	return infos
}

// Detail returns the full view of one room.
func (reg *Registry) Detail(roomID string) (*RoomDetail, error) {
	reg.mu.RLock()
	r, ok := reg.rooms[roomID]
	reg.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}

	return &RoomDetail{
		RoomID:      r.ID(),
		Phase:       r.Phase(),
		ClientCount: r.Count(),
		Members:     r.Members(),
	}, nil
}

// Count returns the number of live rooms.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// TotalConnections sums the member counts of every live room.
func (reg *Registry) TotalConnections() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	total := 0
	for _, r := range reg.rooms {
		total += r.Count()
	}
	return total
}
