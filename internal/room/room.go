package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	JoinedAt int64  `json:"joinedAt"`
}

type VideoState struct {
	VideoID     string  `json:"videoId"`
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	LastUpdated int64   `json:"lastUpdated"`
}

// Message is immutable once appended. User is a snapshot of the author at
// send time, it does not follow later renames or leaves.
type Message struct {
	ID        string      `json:"id"`
	User      Participant `json:"user"`
	Text      string      `json:"text"`
	Timestamp int64       `json:"timestamp"`
}

// Snapshot is the full room state handed to a joining connection.
type Snapshot struct {
	RoomCode         string        `json:"roomCode"`
	Users            []Participant `json:"users"`
	VideoState       VideoState    `json:"videoState"`
	Chat             []Message     `json:"chat"`
	SessionStartTime int64         `json:"sessionStartTime"`
}

// Room holds the authoritative state for one watch party. Every mutation
// goes through the room mutex, so transitions on the same room are
// serialized while different rooms run in parallel.
type Room struct {
	Code string

	mu           sync.Mutex
	participants map[string]Participant
	order        []string // connection ids in join order
	playback     VideoState
	chat         []Message
	createdAt    time.Time
	sessionStart time.Time // zero until the first participant joins
	clk          clock.Clock
}

func newRoom(code string, clk clock.Clock) *Room {
	now := clk.Now()
	return &Room{
		Code:         code,
		participants: make(map[string]Participant),
		playback:     VideoState{LastUpdated: now.UnixMilli()},
		createdAt:    now,
		clk:          clk,
	}
}

// Join adds a connection to the room. An empty username falls back to
// User<n> with n = current participant count + 1. The session clock starts
// with the very first participant and is never reset for the life of the
// room. The returned snapshot includes the joiner.
func (r *Room) Join(connID, username string) (Participant, Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if username == "" {
		username = fmt.Sprintf("User%d", len(r.participants)+1)
	}
	p := Participant{
		ID:       connID,
		Username: username,
		JoinedAt: r.clk.Now().UnixMilli(),
	}
	r.participants[connID] = p
	r.order = append(r.order, connID)

	if r.sessionStart.IsZero() {
		r.sessionStart = r.clk.Now()
	}

	return p, r.snapshotLocked()
}

// Leave removes a connection from the room. ok is false when the
// connection was not a participant.
func (r *Room) Leave(connID string) (left Participant, users []Participant, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	left, ok = r.participants[connID]
	if !ok {
		return Participant{}, nil, false
	}
	delete(r.participants, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return left, r.rosterLocked(), true
}

func (r *Room) Play(currentTime float64) VideoState {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playback.IsPlaying = true
	r.playback.CurrentTime = currentTime
	r.playback.LastUpdated = r.clk.Now().UnixMilli()
	return r.playback
}

func (r *Room) Pause(currentTime float64) VideoState {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playback.IsPlaying = false
	r.playback.CurrentTime = currentTime
	r.playback.LastUpdated = r.clk.Now().UnixMilli()
	return r.playback
}

// Seek moves the playhead without touching the play/pause state.
func (r *Room) Seek(currentTime float64) VideoState {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playback.CurrentTime = currentTime
	r.playback.LastUpdated = r.clk.Now().UnixMilli()
	return r.playback
}

// ChangeVideo swaps the shared video. Changing video always pauses and
// rewinds, so every client converges on the same reset state.
func (r *Room) ChangeVideo(videoID string) VideoState {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.playback.VideoID = videoID
	r.playback.IsPlaying = false
	r.playback.CurrentTime = 0
	r.playback.LastUpdated = r.clk.Now().UnixMilli()
	return r.playback
}

// Append adds a chat message authored by the given connection. ok is false
// when the connection is not a participant of this room.
func (r *Room) Append(connID, text string) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	author, ok := r.participants[connID]
	if !ok {
		return Message{}, false
	}
	msg := Message{
		ID:        uuid.New().String(),
		User:      author,
		Text:      text,
		Timestamp: r.clk.Now().UnixMilli(),
	}
	r.chat = append(r.chat, msg)
	return msg, true
}

func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) Participants() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

func (r *Room) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

func (r *Room) ChatLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chat)
}

func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Room) snapshotLocked() Snapshot {
	chat := make([]Message, len(r.chat))
	copy(chat, r.chat)

	var started int64
	if !r.sessionStart.IsZero() {
		started = r.sessionStart.UnixMilli()
	}
	return Snapshot{
		RoomCode:         r.Code,
		Users:            r.rosterLocked(),
		VideoState:       r.playback,
		Chat:             chat,
		SessionStartTime: started,
	}
}

func (r *Room) rosterLocked() []Participant {
	users := make([]Participant, 0, len(r.participants))
	for _, id := range r.order {
		users = append(users, r.participants[id])
	}
	return users
}
