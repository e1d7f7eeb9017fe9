package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCleanupDelay = 5 * time.Minute

func TestJanitor_DeletesRoomStillEmptyAtFireTime(t *testing.T) {
	reg, mock := newTestRegistry(t)
	j := NewJanitor(reg, testCleanupDelay, mock)

	rm, err := reg.Create()
	require.NoError(t, err)
	rm.Join("conn-1", "Ann")
	rm.Leave("conn-1")

	j.Schedule(rm.Code)

	// still retrievable until the delay has fully elapsed
	mock.Add(testCleanupDelay - time.Second)
	_, ok := reg.Get(rm.Code)
	assert.True(t, ok)

	mock.Add(time.Second)
	_, ok = reg.Get(rm.Code)
	assert.False(t, ok, "room should be reclaimed after the cleanup delay")
}

func TestJanitor_RejoinBeforeFireKeepsRoom(t *testing.T) {
	reg, mock := newTestRegistry(t)
	j := NewJanitor(reg, testCleanupDelay, mock)

	rm, err := reg.Create()
	require.NoError(t, err)
	rm.Join("conn-1", "Ann")
	rm.Leave("conn-1")

	j.Schedule(rm.Code)

	// someone comes back before the timer fires
	mock.Add(testCleanupDelay / 2)
	rm.Join("conn-2", "Bob")

	mock.Add(testCleanupDelay)
	got, ok := reg.Get(rm.Code)
	require.True(t, ok, "the fire must re-check the live count, not the count at arm time")
	assert.Equal(t, 1, got.Count())
}

func TestJanitor_StaleTimersNeverDeleteOccupiedRoom(t *testing.T) {
	reg, mock := newTestRegistry(t)
	j := NewJanitor(reg, testCleanupDelay, mock)

	rm, err := reg.Create()
	require.NoError(t, err)

	// the room empties and refills repeatedly, arming a timer each time
	for i := 0; i < 3; i++ {
		rm.Join("conn-a", "Ann")
		rm.Leave("conn-a")
		j.Schedule(rm.Code)
		mock.Add(time.Minute)
	}
	rm.Join("conn-b", "Bob")

	// let every armed timer fire
	mock.Add(2 * testCleanupDelay)
	_, ok := reg.Get(rm.Code)
	assert.True(t, ok, "no historically armed timer may delete a room with participants")
}

func TestJanitor_FireAfterManualDeleteIsNoOp(t *testing.T) {
	reg, mock := newTestRegistry(t)
	j := NewJanitor(reg, testCleanupDelay, mock)

	rm, err := reg.Create()
	require.NoError(t, err)
	j.Schedule(rm.Code)
	reg.Delete(rm.Code)

	mock.Add(2 * testCleanupDelay)
	assert.Zero(t, reg.Len())
}
