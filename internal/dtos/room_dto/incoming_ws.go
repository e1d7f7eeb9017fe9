package room_dto

import jsoniter "github.com/json-iterator/go"

// WSEnvelope wraps every message on the wire, both directions.
type WSEnvelope struct {
	Type    string              `json:"type"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

type JoinRoomPayload struct {
	RoomCode string `json:"roomCode" validate:"required,alphanum"`
	Username string `json:"username" validate:"omitempty,max=32"`
}

// PlaybackPayload carries the client-side playhead for play/pause/seek.
// currentTime is client-supplied and intentionally not validated, the
// server relays whatever position the originator reports.
type PlaybackPayload struct {
	CurrentTime float64 `json:"currentTime"`
}

type VideoChangePayload struct {
	VideoID string `json:"videoId" validate:"required"`
}

type SendMessagePayload struct {
	Text string `json:"text" validate:"required,max=2000"`
}
