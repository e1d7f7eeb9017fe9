package room

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Unix(1700000000, 0))
	reg, err := NewRegistry(mock, 6)
	require.NoError(t, err)
	return reg, mock
}

func TestCreate_GeneratesShareableCode(t *testing.T) {
	reg, _ := newTestRegistry(t)

	rm, err := reg.Create()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Z]{6}$`), rm.Code)

	got, ok := reg.Get(rm.Code)
	require.True(t, ok)
	assert.Same(t, rm, got)
	assert.Zero(t, rm.Count(), "a fresh room starts empty")
}

func TestCreate_RetriesOnCollision(t *testing.T) {
	reg, _ := newTestRegistry(t)

	first, err := reg.Create()
	require.NoError(t, err)

	// force the next draw to collide with a live code, the one after to be fresh
	draws := []string{first.Code, "FRESH1"}
	reg.newCode = func() string {
		code := draws[0]
		if len(draws) > 1 {
			draws = draws[1:]
		}
		return code
	}

	second, err := reg.Create()
	require.NoError(t, err)
	assert.Equal(t, "FRESH1", second.Code)
	assert.Equal(t, 2, reg.Len())
}

func TestCreate_GivesUpWhenCodeSpaceExhausted(t *testing.T) {
	reg, _ := newTestRegistry(t)

	taken, err := reg.Create()
	require.NoError(t, err)

	reg.newCode = func() string { return taken.Code }

	_, err = reg.Create()
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryJoin_ResolvesAndJoinsInOneStep(t *testing.T) {
	reg, _ := newTestRegistry(t)
	rm, err := reg.Create()
	require.NoError(t, err)

	p, snap, ok := reg.Join(rm.Code, "conn-1", "Ann")
	require.True(t, ok)
	assert.Equal(t, "Ann", p.Username)
	require.Len(t, snap.Users, 1)

	got, ok := reg.Get(rm.Code)
	require.True(t, ok, "a room that accepted a join must stay retrievable")
	assert.Equal(t, 1, got.Count())

	reg.Delete(rm.Code)
	_, _, ok = reg.Join(rm.Code, "conn-2", "Bob")
	assert.False(t, ok, "a reclaimed code reports failure, never a ghost snapshot")
}

func TestRegistryJoin_NeverStrandsAJoinerAgainstCleanup(t *testing.T) {
	reg, _ := newTestRegistry(t)

	// an empty room is joined while a delayed cleanup fires; whichever
	// side wins the registry lock, a joiner who got a snapshot must still
	// resolve the room afterwards
	for i := 0; i < 200; i++ {
		rm, err := reg.Create()
		require.NoError(t, err)

		var wg sync.WaitGroup
		var joined bool
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, joined = reg.Join(rm.Code, "conn-a", "Ann")
		}()
		go func() {
			defer wg.Done()
			reg.DeleteIfEmpty(rm.Code)
		}()
		wg.Wait()

		_, live := reg.Get(rm.Code)
		if joined {
			require.True(t, live, "a room is never deleted while it has a participant")
			require.Equal(t, 1, rm.Count())
		} else {
			require.False(t, live)
		}
		reg.Delete(rm.Code)
	}
}

func TestGet_UnknownCode(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, ok := reg.Get("NOPE99")
	assert.False(t, ok)
}

func TestDelete_IsIdempotent(t *testing.T) {
	reg, _ := newTestRegistry(t)

	rm, err := reg.Create()
	require.NoError(t, err)

	reg.Delete(rm.Code)
	reg.Delete(rm.Code) // no-op

	_, ok := reg.Get(rm.Code)
	assert.False(t, ok)
	assert.Zero(t, reg.Len())
}

func TestDeleteIfEmpty_SparesOccupiedRooms(t *testing.T) {
	reg, _ := newTestRegistry(t)

	rm, err := reg.Create()
	require.NoError(t, err)
	rm.Join("conn-1", "Ann")

	assert.False(t, reg.DeleteIfEmpty(rm.Code))
	_, ok := reg.Get(rm.Code)
	assert.True(t, ok, "a room with participants must never be deleted")

	rm.Leave("conn-1")
	assert.True(t, reg.DeleteIfEmpty(rm.Code))
	_, ok = reg.Get(rm.Code)
	assert.False(t, ok)

	assert.False(t, reg.DeleteIfEmpty(rm.Code), "deleting an absent room reports false")
}
