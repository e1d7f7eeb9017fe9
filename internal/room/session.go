package room

import "time"

// SessionStatus is the answer to a check-session-time query. All durations
// are milliseconds on the wire.
type SessionStatus struct {
	ElapsedTime       int64 `json:"elapsedTime"`
	FreeTimeRemaining int64 `json:"freeTimeRemaining"`
	RequiresPayment   bool  `json:"requiresPayment"`
}

// SessionStatus computes elapsed time against the free-tier budget. It is
// pure math over timestamps, no state is touched. ok is false while no
// participant has ever joined (the session clock has not started).
func (r *Room) SessionStatus(budget time.Duration) (SessionStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessionStart.IsZero() {
		return SessionStatus{}, false
	}

	elapsed := r.clk.Now().Sub(r.sessionStart)
	remaining := budget - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return SessionStatus{
		ElapsedTime:       elapsed.Milliseconds(),
		FreeTimeRemaining: remaining.Milliseconds(),
		RequiresPayment:   elapsed > budget,
	}, true
}
