package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/storychain/story-chain-backend/internal/engine"
)

type Msg interface{ isSessionMsg() }

// FromClient is a fire-and-forget command; rejected commands are dropped
// without telling the sender (noisy chat input is expected).
type FromClient struct {
	Cmd engine.Command
}

func (FromClient) isSessionMsg() {}

// Do is a command whose caller needs the typed result (e.g. RoomFull back
// to an HTTP handler).
type Do struct {
	Cmd   engine.Command
	Reply chan Result
}

func (Do) isSessionMsg() {}

type Result struct {
	Events []engine.Event
	State  engine.State
	Err    error
}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

// tickMsg is enqueued by the timer scheduler, one per elapsed second.
type tickMsg struct{}

func (tickMsg) isSessionMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

// StoryRecord is what gets handed to the archiver when a story completes.
type StoryRecord struct {
	RoomCode   string
	Words      []engine.StoryWord
	Scores     map[int]int
	FinishedAt time.Time
}

// Archiver persists finished stories. Calls happen off the session loop and
// must tolerate cancellation.
type Archiver interface {
	ArchiveStory(ctx context.Context, rec StoryRecord) error
}

// Session owns the single live game. Every producer (websocket readers,
// HTTP handlers, the timer scheduler) funnels through inbox; the loop
// applies one command at a time against the current snapshot.
type Session struct {
	inbox     chan Msg
	state     engine.State
	version   int
	clients   map[string]chan Snapshot
	timer     *Scheduler
	archive   Archiver
	log       *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func New(parent context.Context, initial engine.State, archive Archiver, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		inbox:   make(chan Msg, 64),
		state:   initial,
		version: 0,
		clients: make(map[string]chan Snapshot),
		archive: archive,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.timer = NewScheduler(ctx, time.Second, func(tickCtx context.Context) {
		// Blocking send: ticks queue behind in-flight commands, they are
		// never dropped or merged.
		select {
		case s.inbox <- tickMsg{}:
		case <-tickCtx.Done():
		}
	})

	go s.loop()
	return s
}

// Inbox exposes the serialized command pipeline to the ws/http layers.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Close tears the session down: stops the timer, closes client outboxes,
// cancels the tick source. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(s.cancel)
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: s.version, State: s.state}

			case Leave:
				delete(s.clients, msg.ClientID)

			case FromClient:
				events, next, err := engine.Apply(s.state, msg.Cmd, time.Now())
				if err != nil {
					// Malformed or out-of-phase input is absorbed, never fatal.
					s.log.Debug("command dropped",
						zap.String("type", string(msg.Cmd.Type)),
						zap.Error(err))
					break
				}
				s.commit(events, next)

			case Do:
				events, next, err := engine.Apply(s.state, msg.Cmd, time.Now())
				if err == nil {
					s.commit(events, next)
				}
				msg.Reply <- Result{Events: events, State: s.state, Err: err}

			case tickMsg:
				events, next, err := engine.Apply(s.state, engine.Command{Type: engine.CmdTick}, time.Now())
				if err != nil {
					break
				}
				s.commit(events, next)

			case GetState:
				// test-only: reflect internal state without data races
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// commit installs the new snapshot, reacts to its events, and broadcasts.
// A tick that only decremented the clock still bumps the version so clients
// see the countdown.
func (s *Session) commit(events []engine.Event, next engine.State) {
	s.state = next
	s.version++

	for _, evt := range events {
		switch evt.Type {
		case engine.EvtTimerStarted:
			s.timer.Arm()
		case engine.EvtStoryCompleted:
			s.timer.Stop()
			s.archiveStory()
		case engine.EvtWordAppended:
			s.log.Info("word appended",
				zap.String("word", evt.Word),
				zap.Int("slot", evt.Slot),
				zap.Int("story_len", len(next.Story)))
		}
	}

	s.broadcast(Snapshot{Version: s.version, State: s.state})
}

// archiveStory hands the just-finished story to the archiver off-loop so a
// slow database never stalls event processing.
func (s *Session) archiveStory() {
	if s.archive == nil {
		return
	}
	n := len(s.state.CompletedStories)
	if n == 0 {
		return
	}
	rec := StoryRecord{
		RoomCode:   s.state.RoomCode,
		Words:      s.state.CompletedStories[n-1],
		Scores:     s.state.Scores,
		FinishedAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.archive.ArchiveStory(ctx, rec); err != nil {
			s.log.Warn("story archive failed", zap.Error(err))
		}
	}()
}

func (s *Session) shutdown() {
	s.timer.Stop()
	for id, ch := range s.clients {
		close(ch) // Tell client no more snapshots
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		select {
		case ch <- snap:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}
