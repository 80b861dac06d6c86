package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignSeatsInOrder(t *testing.T) {
	var r Roster

	r, slot, err := Assign(r, "p1", "Ana")
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
	assert.True(t, r.Slots[0].Host, "first caller is host")
	assert.True(t, r.Slots[0].Connected)

	r, slot, err = Assign(r, "p2", "Ben")
	require.NoError(t, err)
	assert.Equal(t, 2, slot)
	assert.False(t, r.Slots[1].Host)

	_, _, err = Assign(r, "p3", "Cleo")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestAssignReconnectsKnownPlayer(t *testing.T) {
	var r Roster
	r, _, _ = Assign(r, "p1", "Ana")
	r, _, _ = Assign(r, "p2", "Ben")
	r, _, _ = Release(r, "p1")

	next, slot, err := Assign(r, "p1", "NewName")
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
	assert.True(t, next.Slots[0].Connected)
	assert.Equal(t, "Ana", next.Slots[0].Name, "reconnect keeps original name")
	assert.True(t, next.Slots[0].Host, "reconnect keeps host status")
}

func TestReleaseKeepsSeat(t *testing.T) {
	var r Roster
	r, _, _ = Assign(r, "p1", "Ana")

	next, slot, err := Release(r, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
	assert.False(t, next.Slots[0].Connected)
	assert.Equal(t, "p1", next.Slots[0].ID, "seat stays reserved for reconnection")

	_, _, err = Release(next, "ghost")
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestRosterQueries(t *testing.T) {
	var r Roster
	r, _, _ = Assign(r, "p1", "Ana")
	r, _, _ = Assign(r, "p2", "Ben")

	assert.True(t, IsHost(r, "p1"))
	assert.False(t, IsHost(r, "p2"))
	assert.False(t, IsHost(r, ""))

	slot, ok := SlotOf(r, "p2")
	assert.True(t, ok)
	assert.Equal(t, 2, slot)

	assert.Equal(t, 2, ConnectedCount(r))
	r, _, _ = Release(r, "p2")
	assert.Equal(t, 1, ConnectedCount(r))
	assert.Equal(t, 2, SeatedCount(r))
}

func TestGenerateRoomCode(t *testing.T) {
	code, err := GenerateRoomCode()
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'), "unexpected char %q", c)
	}
}
