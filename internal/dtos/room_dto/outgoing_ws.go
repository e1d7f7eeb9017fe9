package room_dto

import "github.com/vinaivinu15-cell/FAM2GETHER/internal/room"

// room-joined carries a room.Snapshot, new-message a room.Message and
// session-time a room.SessionStatus; only the payloads without a direct
// domain type live here.

type UserJoinedPayload struct {
	User  room.Participant   `json:"user"`
	Users []room.Participant `json:"users"`
}

type UserLeftPayload struct {
	User  room.Participant   `json:"user"`
	Users []room.Participant `json:"users"`
}

// PlaybackEventPayload fans out play/pause/seek. TriggeredBy names the
// originating connection so clients can ignore a self-echo; for
// play/pause/seek the server already excludes the originator, for
// video-change it is broadcast to everyone including them.
type PlaybackEventPayload struct {
	CurrentTime float64 `json:"currentTime"`
	TriggeredBy string  `json:"triggeredBy"`
}

type VideoChangeEventPayload struct {
	VideoID     string `json:"videoId"`
	TriggeredBy string `json:"triggeredBy"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
