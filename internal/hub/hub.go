package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/storychain/story-chain-backend/internal/engine"
	"github.com/storychain/story-chain-backend/internal/session"
)

type HubMsg interface{ isHubMsg() }

// CreateSession boots the live session for a freshly generated room code.
// Replies nil if a session is already live: a process owns at most one.
type CreateSession struct {
	Code  string
	Rules engine.Rules
	Reply chan *session.Session
}

// GetSession replies with the live session when Code matches it (empty Code
// matches unconditionally), nil otherwise.
type GetSession struct {
	Code  string
	Reply chan *session.Session
}

// Teardown closes the live session, if any. Idempotent.
type Teardown struct{}

type ShutdownHub struct{}

func (CreateSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (Teardown) isHubMsg()      {}
func (ShutdownHub) isHubMsg()   {}

// Hub guards the one-live-session rule. All access goes through its inbox
// so creation, lookup and teardown never race.
type Hub struct {
	inbox   chan HubMsg
	live    *session.Session
	code    string
	archive session.Archiver
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, archive session.Archiver, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		archive: archive,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.teardown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession:
				if h.live != nil {
					msg.Reply <- nil
					break
				}
				initial := engine.NewState(msg.Code, msg.Rules)
				h.live = session.New(h.ctx, initial, h.archive, h.log)
				h.code = msg.Code
				h.log.Info("session created", zap.String("room_code", msg.Code))
				msg.Reply <- h.live

			case GetSession:
				if h.live == nil || (msg.Code != "" && msg.Code != h.code) {
					msg.Reply <- nil
					break
				}
				msg.Reply <- h.live

			case Teardown:
				h.teardown()

			case ShutdownHub:
				h.teardown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) teardown() {
	if h.live == nil {
		return
	}
	h.live.Close()
	h.live = nil
	h.code = ""
	h.log.Info("session torn down")
}
