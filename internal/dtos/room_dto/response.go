package room_dto

type CreateRoomResponse struct {
	RoomCode string `json:"roomCode"`
}

type RoomExistsResponse struct {
	Exists bool `json:"exists"`
}

type RoomStatsResponse struct {
	RoomCode         string `json:"room_code"`
	Exists           bool   `json:"exists"`
	Participants     int    `json:"participants,omitempty"`
	ChatMessages     int    `json:"chat_messages,omitempty"`
	SessionStartTime int64  `json:"session_start_time,omitempty"`
	CreatedAt        int64  `json:"created_at,omitempty"`
}
