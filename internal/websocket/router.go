package websocket

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/dtos/room_dto"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/room"
)

// Inbound event types.
const (
	EventJoinRoom         = "join-room"
	EventVideoPlay        = "video-play"
	EventVideoPause       = "video-pause"
	EventVideoSeek        = "video-seek"
	EventVideoChange      = "video-change"
	EventSendMessage      = "send-message"
	EventCheckSessionTime = "check-session-time"
)

// Outbound event types. Playback events reuse the inbound names.
const (
	EventRoomJoined  = "room-joined"
	EventUserJoined  = "user-joined"
	EventUserLeft    = "user-left"
	EventNewMessage  = "new-message"
	EventSessionTime = "session-time"
	EventError       = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: limit your cors, don't get true so easy in production
	CheckOrigin: func(r *http.Request) bool { return true },
}

type eventHandler func(rt *EventRouter, c *Client, payload jsoniter.RawMessage)

// dispatch maps an inbound event type to its handler. Disconnect is not
// here, it is the implicit transition when the read loop ends.
var dispatch = map[string]eventHandler{
	EventJoinRoom:         (*EventRouter).handleJoin,
	EventVideoPlay:        (*EventRouter).handlePlay,
	EventVideoPause:       (*EventRouter).handlePause,
	EventVideoSeek:        (*EventRouter).handleSeek,
	EventVideoChange:      (*EventRouter).handleVideoChange,
	EventSendMessage:      (*EventRouter).handleSendMessage,
	EventCheckSessionTime: (*EventRouter).handleSessionTime,
}

// EventRouter upgrades connections and routes their events into the room
// state machine, fanning the results back out through the hub.
type EventRouter struct {
	hub      *Hub
	registry *room.Registry
	janitor  *room.Janitor
	budget   time.Duration
	validate *validator.Validate

	MaxConnections int
	MaxPerIP       int
	connMu         sync.Mutex
	connCount      int
	perIP          map[string]int
}

func NewEventRouter(hub *Hub, registry *room.Registry, janitor *room.Janitor, budget time.Duration) *EventRouter {
	return &EventRouter{
		hub:            hub,
		registry:       registry,
		janitor:        janitor,
		budget:         budget,
		validate:       validator.New(),
		MaxConnections: 10000,
		MaxPerIP:       20,
		perIP:          make(map[string]int),
	}
}

// HandleWS upgrades the request and runs the connection's read loop until
// it disconnects.
func (rt *EventRouter) HandleWS(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)
	if !rt.acquireSlot(clientIP) {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	defer rt.releaseSlot(clientIP)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws: upgrade failed")
		return
	}

	client := newClient(uuid.New().String(), conn)
	go client.writePump()

	log.Info().Str("connID", client.ID).Str("ip", clientIP).Msg("ws: client connected")

	rt.readLoop(client)

	// the read loop ended: the connection is gone, process the implicit
	// disconnect transition
	rt.handleDisconnect(client)
	client.Close()

	log.Info().Str("connID", client.ID).Msg("ws: client disconnected")
}

func (rt *EventRouter) readLoop(client *Client) {
	conn := client.Conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("connID", client.ID).Msg("ws: read error")
			}
			return
		}

		var env room_dto.WSEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Debug().Err(err).Str("connID", client.ID).Msg("ws: malformed envelope")
			continue
		}

		handler, ok := dispatch[env.Type]
		if !ok {
			log.Debug().Str("connID", client.ID).Str("type", env.Type).Msg("ws: unknown event type")
			continue
		}
		handler(rt, client, env.Payload)
	}
}

func (rt *EventRouter) handleJoin(c *Client, payload jsoniter.RawMessage) {
	var req room_dto.JoinRoomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Debug().Err(err).Str("connID", c.ID).Msg("ws: malformed join payload")
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		rt.hub.Unicast(c, EventError, room_dto.ErrorPayload{Message: "Invalid join payload"})
		return
	}
	if _, bound := rt.hub.Resolve(c.ID); bound {
		log.Debug().Str("connID", c.ID).Msg("ws: join from already bound connection rejected")
		rt.hub.Unicast(c, EventError, room_dto.ErrorPayload{Message: "Already in a room"})
		return
	}

	roomCode := strings.ToUpper(req.RoomCode)
	joined, snap, ok := rt.registry.Join(roomCode, c.ID, strings.TrimSpace(req.Username))
	if !ok {
		rt.hub.Unicast(c, EventError, room_dto.ErrorPayload{Message: "Room not found"})
		return
	}
	rt.hub.Register(roomCode, c)

	rt.hub.Unicast(c, EventRoomJoined, snap)
	rt.hub.BroadcastToRoomExcept(roomCode, EventUserJoined, room_dto.UserJoinedPayload{
		User:  joined,
		Users: snap.Users,
	}, c)

	log.Info().Str("roomCode", roomCode).Str("connID", c.ID).Str("username", joined.Username).Msg("user joined room")
}

func (rt *EventRouter) handlePlay(c *Client, payload jsoniter.RawMessage) {
	roomCode, rm, ok := rt.boundRoom(c)
	if !ok {
		return
	}
	var req room_dto.PlaybackPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	rm.Play(req.CurrentTime)
	rt.hub.BroadcastToRoomExcept(roomCode, EventVideoPlay, room_dto.PlaybackEventPayload{
		CurrentTime: req.CurrentTime,
		TriggeredBy: c.ID,
	}, c)
}

func (rt *EventRouter) handlePause(c *Client, payload jsoniter.RawMessage) {
	roomCode, rm, ok := rt.boundRoom(c)
	if !ok {
		return
	}
	var req room_dto.PlaybackPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	rm.Pause(req.CurrentTime)
	rt.hub.BroadcastToRoomExcept(roomCode, EventVideoPause, room_dto.PlaybackEventPayload{
		CurrentTime: req.CurrentTime,
		TriggeredBy: c.ID,
	}, c)
}

func (rt *EventRouter) handleSeek(c *Client, payload jsoniter.RawMessage) {
	roomCode, rm, ok := rt.boundRoom(c)
	if !ok {
		return
	}
	var req room_dto.PlaybackPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	rm.Seek(req.CurrentTime)
	rt.hub.BroadcastToRoomExcept(roomCode, EventVideoSeek, room_dto.PlaybackEventPayload{
		CurrentTime: req.CurrentTime,
		TriggeredBy: c.ID,
	}, c)
}

// handleVideoChange broadcasts to everyone including the originator: all
// clients, the one that typed the new video id included, converge on the
// reset state through the same code path.
func (rt *EventRouter) handleVideoChange(c *Client, payload jsoniter.RawMessage) {
	roomCode, rm, ok := rt.boundRoom(c)
	if !ok {
		return
	}
	var req room_dto.VideoChangePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		return
	}

	rm.ChangeVideo(req.VideoID)
	rt.hub.BroadcastToRoom(roomCode, EventVideoChange, room_dto.VideoChangeEventPayload{
		VideoID:     req.VideoID,
		TriggeredBy: c.ID,
	})

	log.Info().Str("roomCode", roomCode).Str("videoId", req.VideoID).Msg("video changed")
}

func (rt *EventRouter) handleSendMessage(c *Client, payload jsoniter.RawMessage) {
	roomCode, rm, ok := rt.boundRoom(c)
	if !ok {
		return
	}
	var req room_dto.SendMessagePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		return
	}

	msg, ok := rm.Append(c.ID, req.Text)
	if !ok {
		return
	}
	rt.hub.BroadcastToRoom(roomCode, EventNewMessage, msg)
}

// handleSessionTime replies to the sender only, it is a query, not a
// broadcastable transition.
func (rt *EventRouter) handleSessionTime(c *Client, _ jsoniter.RawMessage) {
	_, rm, ok := rt.boundRoom(c)
	if !ok {
		return
	}
	status, ok := rm.SessionStatus(rt.budget)
	if !ok {
		log.Debug().Str("connID", c.ID).Msg("ws: session time checked before session start")
		return
	}
	rt.hub.Unicast(c, EventSessionTime, status)
}

func (rt *EventRouter) handleDisconnect(c *Client) {
	roomCode, ok := rt.hub.Resolve(c.ID)
	if !ok {
		return // never joined a room
	}

	rm, found := rt.registry.Get(roomCode)
	rt.hub.Unregister(roomCode, c)
	if !found {
		return
	}

	left, users, ok := rm.Leave(c.ID)
	if !ok {
		return
	}
	rt.hub.BroadcastToRoom(roomCode, EventUserLeft, room_dto.UserLeftPayload{
		User:  left,
		Users: users,
	})

	if len(users) == 0 {
		rt.janitor.Schedule(roomCode)
	}

	log.Info().Str("roomCode", roomCode).Str("connID", c.ID).Msg("user left room")
}

// boundRoom resolves the connection's room through the session map. Events
// from unbound connections are a harmless race with disconnect and are
// dropped silently.
func (rt *EventRouter) boundRoom(c *Client) (string, *room.Room, bool) {
	roomCode, ok := rt.hub.Resolve(c.ID)
	if !ok {
		log.Debug().Str("connID", c.ID).Msg("ws: event from unbound connection dropped")
		return "", nil, false
	}
	rm, ok := rt.registry.Get(roomCode)
	if !ok {
		return "", nil, false
	}
	return roomCode, rm, true
}

func (rt *EventRouter) acquireSlot(clientIP string) bool {
	rt.connMu.Lock()
	defer rt.connMu.Unlock()

	if rt.MaxConnections > 0 && rt.connCount >= rt.MaxConnections {
		return false
	}
	if rt.MaxPerIP > 0 && rt.perIP[clientIP] >= rt.MaxPerIP {
		return false
	}
	rt.connCount++
	rt.perIP[clientIP]++
	return true
}

func (rt *EventRouter) releaseSlot(clientIP string) {
	rt.connMu.Lock()
	defer rt.connMu.Unlock()

	rt.connCount--
	rt.perIP[clientIP]--
	if rt.perIP[clientIP] <= 0 {
		delete(rt.perIP, clientIP)
	}
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
