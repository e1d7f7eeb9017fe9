package room

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
)

// Janitor reclaims rooms that stay empty for the full cleanup delay. The
// clock is injected so the fire-time re-check can be exercised in tests by
// advancing a mock instead of sleeping.
type Janitor struct {
	reg   *Registry
	delay time.Duration
	clk   clock.Clock
}

func NewJanitor(reg *Registry, delay time.Duration, clk clock.Clock) *Janitor {
	return &Janitor{reg: reg, delay: delay, clk: clk}
}

// Schedule arms a delayed delete for a room that just became empty. There
// is no cancellation token: the participant count is re-read when the timer
// fires, so a rejoin in the meantime turns the fire into a no-op.
func (j *Janitor) Schedule(code string) {
	j.clk.AfterFunc(j.delay, func() {
		if j.reg.DeleteIfEmpty(code) {
			log.Info().Str("roomCode", code).Msg("empty room cleaned up")
		}
	})
	log.Debug().Str("roomCode", code).Dur("delay", j.delay).Msg("room cleanup scheduled")
}
