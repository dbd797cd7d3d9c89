package websocket

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/config"
	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// envelope is one outbound delivery instruction processed by the hub loop.
type envelope struct {
	roomID   string
	target   uuid.UUID
	targeted bool
	except   uuid.UUID
	watchers bool
	data     []byte
}

// Hub maintains the set of active connections and fans events out to them.
type Hub struct {
	cfg *config.Config
	svc service.GameService

	// Room connections by room id, plus directory watchers.
	rooms    map[string]map[*Client]bool
	watchers map[*Client]bool
	byID     map[uuid.UUID]*Client

	outbound   chan envelope
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a hub. SetService must be called before serving
// connections.
func NewHub(cfg *config.Config) *Hub {
	return &Hub{
		cfg:        cfg,
		rooms:      make(map[string]map[*Client]bool),
		watchers:   make(map[*Client]bool),
		byID:       make(map[uuid.UUID]*Client),
		outbound:   make(chan envelope, 256),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
	}
}

// SetService injects the game service. Separate from NewHub because the
// service itself needs the hub as its notifier.
func (h *Hub) SetService(svc service.GameService) {
	h.svc = svc
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.outbound:
			h.deliver(env)
		}
	}
}

// ServeJoin handles a join-stream connection for the given room. The
// upgrade, the capacity check and the join acknowledgement all happen here
// before the client enters the hub.
func (h *Hub) ServeJoin(w http.ResponseWriter, r *http.Request, roomID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	clientID := uuid.New()
	if err := h.svc.Join(clientID, roomID); err != nil {
		// Capacity rejection: tell the client why, then close.
		notice, _ := json.Marshal(service.JoinNotice{
			Success: false,
			RoomID:  roomID,
			Message: err.Error(),
		})
		_ = conn.WriteMessage(websocket.TextMessage, notice)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "room full"))
		conn.Close()
		return
	}

	// Acknowledge before the pumps start so the assigned id is always the
	// client's first message.
	ack, _ := json.Marshal(service.JoinNotice{
		Success: true,
		RoomID:  roomID,
		Message: "joined room " + roomID,
		MyID:    clientID.String(),
	})
	if err := conn.WriteMessage(websocket.TextMessage, ack); err != nil {
		conn.Close()
		h.svc.Disconnect(clientID)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.cfg.SendBufferSize),
		id:     clientID,
		roomID: roomID,
		limiter: rate.NewLimiter(
			rate.Limit(h.cfg.MessagesPerSecond), h.cfg.MessageBurst),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()

	h.svc.AnnounceJoin(clientID, roomID)
}

// ServeWatch handles a watch-stream connection. The current directory
// snapshot is written before the watcher is registered, so it is always the
// first message received.
func (h *Hub) ServeWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	snapshot, _ := json.Marshal(service.RoomListEvent{Rooms: h.svc.ListRooms()})
	if err := conn.WriteMessage(websocket.TextMessage, snapshot); err != nil {
		conn.Close()
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, h.cfg.SendBufferSize),
		id:      uuid.New(),
		watcher: true,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastToRoom implements service.Notifier.
func (h *Hub) BroadcastToRoom(roomID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("failed to marshal room event")
		return
	}
	h.outbound <- envelope{roomID: roomID, data: data}
}

// BroadcastRawToRoomExcept implements service.Notifier.
func (h *Hub) BroadcastRawToRoomExcept(roomID string, except uuid.UUID, data []byte) {
	h.outbound <- envelope{roomID: roomID, except: except, data: data}
}

// SendToClient implements service.Notifier.
func (h *Hub) SendToClient(clientID uuid.UUID, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("client", clientID.String()).Msg("failed to marshal client event")
		return
	}
	h.outbound <- envelope{target: clientID, targeted: true, data: data}
}

// BroadcastRoomList implements service.Notifier.
func (h *Hub) BroadcastRoomList(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal room list")
		return
	}
	h.outbound <- envelope{watchers: true, data: data}
}

// registerClient adds a client to its room or to the watcher set.
func (h *Hub) registerClient(client *Client) {
	if client.watcher {
		h.watchers[client] = true
		log.Debug().Int("watchers", len(h.watchers)).Msg("watcher registered")
		return
	}

	if h.rooms[client.roomID] == nil {
		h.rooms[client.roomID] = make(map[*Client]bool)
	}
	h.rooms[client.roomID][client] = true
	h.byID[client.id] = client

	log.Debug().Str("room", client.roomID).Str("client", client.id.String()).
		Int("connections", len(h.rooms[client.roomID])).Msg("client registered")
}

// unregisterClient removes a client. The map-presence check makes repeated
// unregistrations (read error plus queue overflow, say) act exactly once.
func (h *Hub) unregisterClient(client *Client) {
	if client.watcher {
		if _, ok := h.watchers[client]; ok {
			delete(h.watchers, client)
			close(client.send)
		}
		return
	}

	clients, ok := h.rooms[client.roomID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	delete(h.byID, client.id)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.roomID)
	}

	log.Debug().Str("room", client.roomID).Str("client", client.id.String()).
		Int("remaining", len(clients)).Msg("client unregistered")

	// Leave processing emits events back through this hub, so it must not
	// run on the hub loop itself.
	go h.svc.Disconnect(client.id)
}

// deliver routes one envelope to its recipients.
func (h *Hub) deliver(env envelope) {
	switch {
	case env.targeted:
		if client, ok := h.byID[env.target]; ok {
			h.enqueue(client, env.data)
		}

	case env.watchers:
		for client := range h.watchers {
			h.enqueue(client, env.data)
		}

	default:
		for client := range h.rooms[env.roomID] {
			if client.id == env.except {
				continue
			}
			h.enqueue(client, env.data)
		}
	}
}

// enqueue hands data to a client's write pump without blocking. A full
// queue means the consumer is too slow to keep: the client is dropped.
func (h *Hub) enqueue(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		log.Warn().Str("client", client.id.String()).
			Msg("send queue overflow, disconnecting slow client")
		h.unregisterClient(client)
	}
}
