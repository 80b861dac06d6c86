package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storychain/story-chain-backend/internal/engine"
	"github.com/storychain/story-chain-backend/internal/types"
)

func TestToCommand_TypedMessages(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want engine.Command
	}{
		{
			"join",
			`{"type":"join","player_id":"p1","name":"Ana"}`,
			engine.Command{Type: engine.CmdJoinGame, PlayerID: "p1", Name: "Ana"},
		},
		{
			"start",
			`{"type":"start","player_id":"p1"}`,
			engine.Command{Type: engine.CmdStartGame, PlayerID: "p1"},
		},
		{
			"suggest",
			`{"type":"suggest","word":"cat","name":"viewer"}`,
			engine.Command{Type: engine.CmdSuggestWord, Word: "cat", User: "viewer"},
		},
		{
			"vote",
			`{"type":"vote","choice":2}`,
			engine.Command{Type: engine.CmdVote, Choice: 2},
		},
		{
			"select word",
			`{"type":"select_word","player_id":"p1","word":"cat"}`,
			engine.Command{Type: engine.CmdSelectWord, PlayerID: "p1", Word: "cat"},
		},
		{
			"restart",
			`{"type":"restart","player_id":"p1"}`,
			engine.Command{Type: engine.CmdRestart, PlayerID: "p1"},
		},
		{
			"leave",
			`{"type":"leave","player_id":"p2"}`,
			engine.Command{Type: engine.CmdLeaveGame, PlayerID: "p2"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toCommand([]byte(tc.raw))
			assert.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestToCommand_RawChatFallsThroughAdapter(t *testing.T) {
	cmd, ok := toCommand([]byte(`{"text":"cat","user":"viewer"}`))
	assert.True(t, ok)
	assert.Equal(t, engine.CmdSuggestWord, cmd.Type)
	assert.Equal(t, "cat", cmd.Word)
	assert.Equal(t, "viewer", cmd.User)

	cmd, ok = toCommand([]byte(`{"content":"!join Ana","username":"viewer"}`))
	assert.True(t, ok)
	assert.Equal(t, engine.CmdJoinGame, cmd.Type)
	assert.Equal(t, "chat:viewer", cmd.PlayerID)

	cmd, ok = toCommand([]byte(`{"text":"2","from":"viewer"}`))
	assert.True(t, ok)
	assert.Equal(t, engine.CmdVote, cmd.Type)
	assert.Equal(t, 2, cmd.Choice)

	_, ok = toCommand([]byte(`{"type":"nonsense"}`))
	assert.False(t, ok)

	_, ok = toCommand([]byte(`not even json`))
	assert.False(t, ok)
}

// Player IDs are credentials: they come back to their owner in the HTTP join
// response and must never appear in a broadcast snapshot.
func TestSnapshotDoesNotExposePlayerIDs(t *testing.T) {
	state := engine.NewState("ABC123", engine.DefaultRules())
	_, state, err := engine.Apply(state, engine.Command{
		Type: engine.CmdJoinGame, PlayerID: "secret-host-token", Name: "Ana",
	}, time.Now())
	require.NoError(t, err)
	_, state, err = engine.Apply(state, engine.Command{
		Type: engine.CmdJoinGame, PlayerID: "secret-guest-token", Name: "Ben",
	}, time.Now())
	require.NoError(t, err)

	payload, err := json.Marshal(types.ServerMessage{
		Type: "StateSnapshot", Version: 2, State: &state,
	})
	require.NoError(t, err)

	assert.NotContains(t, string(payload), "secret-host-token")
	assert.NotContains(t, string(payload), "secret-guest-token")
	assert.NotContains(t, string(payload), "player_id")

	// The rest of the roster still goes out, under the usual snake_case key.
	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &decoded))
	var snap map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["state"], &snap))
	assert.Contains(t, snap, "roster")

	var roster struct {
		Slots []struct {
			Name string `json:"name"`
			Host bool   `json:"is_host"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(snap["roster"], &roster))
	require.Len(t, roster.Slots, 2)
	assert.Equal(t, "Ana", roster.Slots[0].Name)
	assert.True(t, roster.Slots[0].Host)
	assert.Equal(t, "Ben", roster.Slots[1].Name)
}
