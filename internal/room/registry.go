package room

import (
	"errors"
	"sync"

	"github.com/benbjohnson/clock"
	gonanoid "github.com/jaevor/go-nanoid"
	"github.com/rs/zerolog/log"
)

// Codes are drawn from the upper-alphanumeric space so they stay easy to
// read out loud and type on a TV remote.
const roomCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const maxCodeAttempts = 10

var ErrCodeSpaceExhausted = errors.New("failed to generate unique room code after multiple attempts")

// Registry owns every live Room. It is constructed once at process start
// and injected wherever rooms are needed, there is no ambient global table.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	clk     clock.Clock
	newCode func() string
}

func NewRegistry(clk clock.Clock, codeLength int) (*Registry, error) {
	gen, err := gonanoid.CustomASCII(roomCodeAlphabet, codeLength)
	if err != nil {
		return nil, err
	}
	return &Registry{
		rooms:   make(map[string]*Room),
		clk:     clk,
		newCode: gen,
	}, nil
}

// Create inserts a new empty room under a freshly drawn code. Collisions
// with a live code are re-drawn rather than assumed away; after
// maxCodeAttempts collisions in a row it gives up with ErrCodeSpaceExhausted.
func (reg *Registry) Create() (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for i := 0; i < maxCodeAttempts; i++ {
		code := reg.newCode()
		if _, taken := reg.rooms[code]; taken {
			continue
		}
		rm := newRoom(code, reg.clk)
		reg.rooms[code] = rm
		log.Info().Str("roomCode", code).Msg("room created")
		return rm, nil
	}
	return nil, ErrCodeSpaceExhausted
}

// Join resolves a live room and adds the participant to it in one step.
// Lookup and join both happen under the registry read lock, and
// DeleteIfEmpty takes the write lock, so a delayed cleanup can never
// reclaim the room between the lookup and the participant insert. Joins
// into different rooms still run in parallel. ok is false when the code
// is not live.
func (reg *Registry) Join(code, connID, username string) (Participant, Snapshot, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	rm, ok := reg.rooms[code]
	if !ok {
		return Participant{}, Snapshot{}, false
	}
	p, snap := rm.Join(connID, username)
	return p, snap, true
}

func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rm, ok := reg.rooms[code]
	return rm, ok
}

// Delete removes a room unconditionally. No-op if the code is not live.
func (reg *Registry) Delete(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// DeleteIfEmpty removes the room only if its current participant count is
// zero. The count is read fresh under the registry lock, never a count
// captured earlier, so a room that regained participants survives no matter
// how many delayed deletes were armed against it.
func (reg *Registry) DeleteIfEmpty(code string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rm, ok := reg.rooms[code]
	if !ok || rm.Count() > 0 {
		return false
	}
	delete(reg.rooms, code)
	return true
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
