package session

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/storychain/story-chain-backend/internal/engine"
	"github.com/storychain/story-chain-backend/internal/registry"
)

// helper: receive one snapshot with a timeout so tests never hang
func recvSnapshot(t *testing.T, ch <-chan Snapshot, within time.Duration) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return snap
	case <-time.After(within):
		t.Fatalf("timed out waiting for snapshot")
		return Snapshot{} // unreachable
	}
}

func recvView(t *testing.T, s *Session, within time.Duration) View {
	t.Helper()
	reply := make(chan View, 1)
	s.Inbox() <- GetState{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func doCmd(t *testing.T, s *Session, cmd engine.Command) Result {
	t.Helper()
	reply := make(chan Result, 1)
	s.Inbox() <- Do{Cmd: cmd, Reply: reply}
	select {
	case r := <-reply:
		return r
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for result")
		return Result{} // unreachable
	}
}

func newTestSession(t *testing.T, rules engine.Rules) *Session {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s := New(ctx, engine.NewState("ABC123", rules), nil, zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func TestSession_JoinSendsSnapshotAndCommandsBumpVersion(t *testing.T) {
	s := newTestSession(t, engine.DefaultRules())

	clientOut := make(chan Snapshot, 4)
	s.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}

	first := recvSnapshot(t, clientOut, 100*time.Millisecond)
	if first.Version != 0 {
		t.Fatalf("after join: want version=0, got %d", first.Version)
	}
	if first.State.Phase != engine.PhaseJoining {
		t.Fatalf("after join: want joining, got %s", first.State.Phase)
	}

	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdJoinGame, PlayerID: "p1", Name: "Ana"}}

	next := recvSnapshot(t, clientOut, 100*time.Millisecond)
	if next.Version != 1 {
		t.Fatalf("after command: want version=1, got %d", next.Version)
	}
	if !next.State.Roster.Slots[0].Connected {
		t.Fatalf("after command: slot 1 should be seated, got %+v", next.State.Roster)
	}
}

func TestSession_RejectedCommandIsSilentlyDropped(t *testing.T) {
	s := newTestSession(t, engine.DefaultRules())

	clientOut := make(chan Snapshot, 4)
	s.Inbox() <- Join{ClientID: "ch1", Outbox: clientOut}
	recvSnapshot(t, clientOut, 100*time.Millisecond)

	// Suggesting outside the collecting phase is a no-op.
	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdSuggestWord, Word: "cat"}}

	select {
	case snap := <-clientOut:
		t.Fatalf("expected no snapshot for dropped command, got %+v", snap)
	case <-time.After(50 * time.Millisecond):
		// good
	}

	v := recvView(t, s, time.Second)
	if v.Version != 0 {
		t.Fatalf("dropped command must not bump version, got %d", v.Version)
	}
}

func TestSession_DoReturnsTypedError(t *testing.T) {
	s := newTestSession(t, engine.DefaultRules())

	doCmd(t, s, engine.Command{Type: engine.CmdJoinGame, PlayerID: "p1", Name: "Ana"})
	doCmd(t, s, engine.Command{Type: engine.CmdJoinGame, PlayerID: "p2", Name: "Ben"})

	res := doCmd(t, s, engine.Command{Type: engine.CmdJoinGame, PlayerID: "p3", Name: "Cleo"})
	if res.Err != registry.ErrRoomFull {
		t.Fatalf("want ErrRoomFull, got %v", res.Err)
	}
}

func TestSession_DropSlowClient(t *testing.T) {
	s := newTestSession(t, engine.DefaultRules())

	slow := make(chan Snapshot, 1) // fills after the join snapshot
	s.Inbox() <- Join{ClientID: "slow", Outbox: slow}

	// Two commands: the second broadcast finds the buffer full.
	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdJoinGame, PlayerID: "p1", Name: "Ana"}}
	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdJoinGame, PlayerID: "p2", Name: "Ben"}}

	deadline := time.After(time.Second)
	for {
		v := recvView(t, s, time.Second)
		if v.NumClients == 0 {
			return // dropped as expected
		}
		select {
		case <-deadline:
			t.Fatalf("slow client was not dropped")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, engine.NewState("ABC123", engine.DefaultRules()), nil, zap.NewNop())

	out := make(chan Snapshot, 2)
	s.Inbox() <- Join{ClientID: "ch1", Outbox: out}
	recvSnapshot(t, out, 100*time.Millisecond)

	s.Close()
	s.Close() // second teardown must be a no-op

	select {
	case _, ok := <-out:
		if ok {
			t.Fatalf("expected outbox to be closed")
		}
	case <-time.After(time.Second):
		t.Fatalf("outbox not closed after shutdown")
	}
}

// End to end through the real scheduler: zero-length windows make every
// one-second tick an expiry, so a one-word story drives itself to
// completion with no input at all.
func TestSession_TimerDrivesGameForward(t *testing.T) {
	rules := engine.DefaultRules()
	rules.CollectSeconds = 0
	rules.SelectSeconds = 0
	rules.StoryLengthTarget = 1

	s := newTestSession(t, rules)
	doCmd(t, s, engine.Command{Type: engine.CmdJoinGame, PlayerID: "p1", Name: "Ana"})
	doCmd(t, s, engine.Command{Type: engine.CmdJoinGame, PlayerID: "p2", Name: "Ben"})
	res := doCmd(t, s, engine.Command{Type: engine.CmdStartGame, PlayerID: "p1"})
	if res.Err != nil {
		t.Fatalf("start: %v", res.Err)
	}

	deadline := time.After(5 * time.Second)
	for {
		v := recvView(t, s, time.Second)
		if v.State.Phase == engine.PhaseCompleted {
			if len(v.State.Story) != 1 {
				t.Fatalf("want 1 auto-resolved word, got %+v", v.State.Story)
			}
			if v.State.Scores[1] == 0 {
				t.Fatalf("auto-resolution must award points")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("game never completed, stuck in %s", v.State.Phase)
		case <-time.After(50 * time.Millisecond):
		}
	}
}
