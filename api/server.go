package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/registry"
	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/service"
	"github.com/htoopyaelinn56/rock-paper-scissors-server/transport/websocket"
)

// Server routes HTTP traffic to the WebSocket hub and the REST handlers.
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	started time.Time
	version string
}

// NewServer creates the API server.
func NewServer(gameService service.GameService, hub *websocket.Hub, version string) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		started: time.Now(),
		version: version,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	// WebSocket streams
	s.router.HandleFunc("/join/{room_id}", s.handleJoin).Methods("GET")
	s.router.HandleFunc("/rooms/stream", s.handleWatch).Methods("GET")

	// Read-only REST introspection
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{room_id}", s.handleRoomDetail).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// WebSocket handlers

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]
	if roomID == "" {
		respondError(w, http.StatusBadRequest, "room_id is required")
		return
	}
	s.hub.ServeJoin(w, r, roomID)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWatch(w, r)
}

// REST handlers

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, service.RoomListEvent{Rooms: s.service.ListRooms()})
}

func (s *Server) handleRoomDetail(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]

	detail, err := s.service.RoomDetail(roomID)
	if err != nil {
		if errors.Is(err, registry.ErrRoomNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts := s.service.Counts()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"rooms":          counts.Rooms,
		"connections":    counts.Connections,
		"version":        s.version,
	})
}
