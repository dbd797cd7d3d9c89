package service

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/engine"
	"github.com/htoopyaelinn56/rock-paper-scissors-server/game/registry"
)

type gameService struct {
	reg      *registry.Registry
	notifier Notifier

	mu      sync.RWMutex
	clients map[uuid.UUID]string
}

// NewGameService creates the service backed by the given registry and
// notifier.
func NewGameService(reg *registry.Registry, notifier Notifier) GameService {
	return &gameService{
		reg:      reg,
		notifier: notifier,
		clients:  make(map[uuid.UUID]string),
	}
}

func (s *gameService) Join(clientID uuid.UUID, roomID string) error {
	if _, err := s.reg.Join(clientID, roomID); err != nil {
		return err
	}

	s.mu.Lock()
	s.clients[clientID] = roomID
	s.mu.Unlock()

	log.Info().Str("room", roomID).Str("client", clientID.String()).Msg("client joined room")
	return nil
}

func (s *gameService) AnnounceJoin(clientID uuid.UUID, roomID string) {
	notice := JoinNotice{
		Success: true,
		RoomID:  roomID,
		Message: fmt.Sprintf("client %s joined the room", clientID),
		MyID:    clientID.String(),
	}
	if data, err := json.Marshal(notice); err == nil {
		s.notifier.BroadcastRawToRoomExcept(roomID, clientID, data)
	}
	s.broadcastDirectory()
}

func (s *gameService) Disconnect(clientID uuid.UUID) {
	s.mu.Lock()
	roomID, ok := s.clients[clientID]
	if ok {
		delete(s.clients, clientID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	dep := s.reg.Leave(clientID, roomID)
	if !dep.Removed {
		return
	}

	log.Info().Str("room", roomID).Str("client", clientID.String()).
		Bool("aborted_game", dep.GameAborted).Msg("client left room")

	if len(dep.Remaining) > 0 {
		s.notifier.BroadcastToRoom(roomID, JoinNotice{
			Success: true,
			RoomID:  roomID,
			Message: fmt.Sprintf("client %s left the room", clientID),
			MyID:    clientID.String(),
		})
		if dep.GameAborted {
			s.notifier.BroadcastToRoom(roomID, GameAbortedEvent{
				Event:   EventGameAborted,
				RoomID:  roomID,
				Message: "game ended: an active player left the room",
			})
		}
	}
	s.broadcastDirectory()
}

func (s *gameService) HandleMessage(clientID uuid.UUID, data []byte) {
	s.mu.RLock()
	roomID, ok := s.clients[clientID]
	s.mu.RUnlock()
	if !ok {
		s.sendError(clientID, "", "you are not in a room")
		return
	}

	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		// Unstructured text is chat: relay it to the other members.
		s.notifier.BroadcastRawToRoomExcept(roomID, clientID, data)
		return
	}

	switch cmd.Action {
	case ActionStart, ActionStartGame:
		s.handleStart(clientID, roomID)
	case ActionMove:
		s.handleMove(clientID, roomID, cmd.Choice)
	default:
		s.sendError(clientID, roomID, fmt.Sprintf("unrecognized action %q", cmd.Action))
	}
}

func (s *gameService) handleStart(clientID uuid.UUID, roomID string) {
	r, err := s.reg.Get(roomID)
	if err != nil {
		s.sendError(clientID, roomID, err.Error())
		return
	}

	players, err := r.Start()
	if err != nil {
		s.sendError(clientID, roomID, err.Error())
		return
	}

	log.Info().Str("room", roomID).Int("players", len(players)).Msg("game started")
	s.notifier.BroadcastToRoom(roomID, GameStartedEvent{
		Event:   EventGameStarted,
		RoomID:  roomID,
		Players: players,
	})
}

func (s *gameService) handleMove(clientID uuid.UUID, roomID, rawChoice string) {
	choice, err := engine.ParseChoice(rawChoice)
	if err != nil {
		s.sendError(clientID, roomID, err.Error())
		return
	}

	r, err := s.reg.Get(roomID)
	if err != nil {
		s.sendError(clientID, roomID, err.Error())
		return
	}

	result, err := r.SubmitMove(clientID, choice)
	if err != nil {
		s.sendError(clientID, roomID, err.Error())
		return
	}
	if result == nil {
		// Still waiting for the rest of the active players.
		return
	}

	switch result.Outcome.Kind {
	case engine.OutcomeSingleWinner:
		log.Info().Str("room", roomID).Str("winner", result.Outcome.Winners[0].String()).Msg("game concluded")
		s.notifier.BroadcastToRoom(roomID, RoundResultEvent{
			Event:   EventRoundResult,
			RoomID:  roomID,
			Tie:     false,
			Winners: result.Outcome.Winners,
			Moves:   result.Moves,
		})
	case engine.OutcomeTie, engine.OutcomeMultipleWinners:
		reason := ReasonTie
		if result.Outcome.Kind == engine.OutcomeMultipleWinners {
			reason = ReasonMultipleWinners
		}
		log.Info().Str("room", roomID).Str("reason", reason).
			Int("next_players", len(result.Outcome.Winners)).Msg("round ended in rematch")
		s.notifier.BroadcastToRoom(roomID, RematchEvent{
			Event:       EventRematch,
			RoomID:      roomID,
			NextPlayers: result.Outcome.Winners,
			Reason:      reason,
			Moves:       result.Moves,
		})
	}
}

func (s *gameService) ListRooms() []registry.RoomInfo {
	return s.reg.Snapshot()
}

func (s *gameService) RoomDetail(roomID string) (*registry.RoomDetail, error) {
	return s.reg.Detail(roomID)
}

func (s *gameService) Counts() Stats {
	return Stats{
		Rooms:       s.reg.Count(),
		Connections: s.reg.TotalConnections(),
	}
}

func (s *gameService) sendError(clientID uuid.UUID, roomID, message string) {
	s.notifier.SendToClient(clientID, ErrorEvent{
		Event:   EventError,
		RoomID:  roomID,
		Message: message,
		MyID:    clientID.String(),
	})
}

func (s *gameService) broadcastDirectory() {
	s.notifier.BroadcastRoomList(RoomListEvent{Rooms: s.reg.Snapshot()})
}
