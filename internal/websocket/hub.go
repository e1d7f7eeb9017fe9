package websocket

import (
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/dtos/room_dto"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Hub tracks which connections sit in which room and fans events out to
// them. It also owns the session map: the only routing table from a live
// connection to its room code. Inbound events resolve through it instead
// of trusting a room code in the payload, so a connection cannot spoof
// another room's events.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	sessions map[string]string // connection id -> room code

	statsMu sync.RWMutex
	stats   HubStats
}

type HubStats struct {
	TotalRooms       int   `json:"total_rooms"`
	TotalClients     int   `json:"total_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
}

func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Client]struct{}),
		sessions: make(map[string]string),
	}
}

// Register binds a client to a room code and adds it to the fan-out set.
func (h *Hub) Register(roomCode string, client *Client) {
	h.mu.Lock()
	if h.rooms[roomCode] == nil {
		h.rooms[roomCode] = make(map[*Client]struct{})
	}
	h.rooms[roomCode][client] = struct{}{}
	h.sessions[client.ID] = roomCode
	size := len(h.rooms[roomCode])
	h.mu.Unlock()

	h.updateStats(func(s *HubStats) { s.TotalConnections++ })

	log.Info().Str("roomCode", roomCode).Str("connID", client.ID).Int("roomSize", size).Msg("ws: client registered to room")
}

// Unregister unbinds a client and drops it from the fan-out set. The Room
// itself lives on in the registry; reclaiming it is the janitor's job.
func (h *Hub) Unregister(roomCode string, client *Client) {
	h.mu.Lock()
	if clients, ok := h.rooms[roomCode]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, roomCode)
		}
	}
	delete(h.sessions, client.ID)
	h.mu.Unlock()

	log.Info().Str("roomCode", roomCode).Str("connID", client.ID).Msg("ws: client unregistered from room")
}

// Resolve answers which room a connection currently belongs to.
func (h *Hub) Resolve(connID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	roomCode, ok := h.sessions[connID]
	return roomCode, ok
}

// BroadcastToRoom sends an event to every client in a room.
func (h *Hub) BroadcastToRoom(roomCode, eventType string, payload any) {
	h.broadcast(roomCode, eventType, payload, nil)
}

// BroadcastToRoomExcept sends an event to every client in a room except the
// originator, which already applied the change locally.
func (h *Hub) BroadcastToRoomExcept(roomCode, eventType string, payload any, except *Client) {
	h.broadcast(roomCode, eventType, payload, except)
}

// Unicast sends an event to a single client.
func (h *Hub) Unicast(client *Client, eventType string, payload any) {
	data, ok := marshalEvent(eventType, payload)
	if !ok {
		return
	}
	client.enqueue(data)
	h.updateStats(func(s *HubStats) { s.MessagesSent++ })
}

func (h *Hub) broadcast(roomCode, eventType string, payload any, except *Client) {
	data, ok := marshalEvent(eventType, payload)
	if !ok {
		return
	}

	// snapshot targets to keep the lock window small
	h.mu.RLock()
	var targets []*Client
	if clients, ok := h.rooms[roomCode]; ok {
		targets = make([]*Client, 0, len(clients))
		for client := range clients {
			if client == except {
				continue
			}
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.enqueue(data)
	}

	if len(targets) > 0 {
		h.updateStats(func(s *HubStats) { s.MessagesSent += int64(len(targets)) })
	}
	log.Debug().Str("roomCode", roomCode).Str("event", eventType).Int("targets", len(targets)).Msg("ws: broadcast completed")
}

func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	rooms := len(h.rooms)
	clients := len(h.sessions)
	h.mu.RUnlock()

	h.statsMu.Lock()
	h.stats.TotalRooms = rooms
	h.stats.TotalClients = clients
	stats := h.stats
	h.statsMu.Unlock()
	return stats
}

// Close disconnects every client, used during graceful shutdown.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Client
	for _, clients := range h.rooms {
		for client := range clients {
			all = append(all, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range all {
		client.Close()
	}
	log.Info().Int("clients", len(all)).Msg("ws: hub shutdown completed")
}

func (h *Hub) updateStats(fn func(*HubStats)) {
	h.statsMu.Lock()
	fn(&h.stats)
	h.statsMu.Unlock()
}

func marshalEvent(eventType string, payload any) ([]byte, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("ws: failed to marshal payload")
		return nil, false
	}
	data, err := json.Marshal(room_dto.WSEnvelope{Type: eventType, Payload: raw})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("ws: failed to marshal envelope")
		return nil, false
	}
	return data, true
}
