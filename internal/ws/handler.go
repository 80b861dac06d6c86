package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/storychain/story-chain-backend/internal/chat"
	"github.com/storychain/story-chain-backend/internal/engine"
	"github.com/storychain/story-chain-backend/internal/hub"
	"github.com/storychain/story-chain-backend/internal/session"
	"github.com/storychain/story-chain-backend/internal/types"
)

// Handler upgrades a client (streamer UI or chat relay) onto the live
// session: snapshots stream out, commands and raw chat payloads stream in.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.GetSession{Code: code, Reply: reply}
		sess := <-reply
		if sess == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Snapshot, 8)
		clientID := randID(6)

		sess.Inbox() <- session.Join{ClientID: clientID, Outbox: out}
		defer func() { sess.Inbox() <- session.Leave{ClientID: clientID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{Type: "StateSnapshot", Version: snap.Version, State: &snap.State}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			readCtx, readCancel := context.WithTimeout(r.Context(), 30*time.Second)
			_, data, err := conn.Read(readCtx)
			readCancel()
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (session.Leave in defer):
				return
			}

			cmd, ok := toCommand(data)
			if !ok {
				log.Debug("unrecognized payload dropped", zap.String("client", clientID))
				continue
			}

			sess.Inbox() <- session.FromClient{Cmd: cmd}
		}
	}
}

// toCommand maps an inbound frame to an engine command. Typed client
// messages are tried first; anything else is treated as a raw chat payload
// and run through the adapter.
func toCommand(data []byte) (engine.Command, bool) {
	var cm types.ClientMessage
	if err := json.Unmarshal(data, &cm); err == nil && cm.Type != "" {
		switch cm.Type {
		case "join":
			return engine.Command{Type: engine.CmdJoinGame, PlayerID: cm.PlayerID, Name: cm.Name}, true
		case "leave":
			return engine.Command{Type: engine.CmdLeaveGame, PlayerID: cm.PlayerID}, true
		case "start":
			return engine.Command{Type: engine.CmdStartGame, PlayerID: cm.PlayerID}, true
		case "restart":
			return engine.Command{Type: engine.CmdRestart, PlayerID: cm.PlayerID}, true
		case "suggest":
			return engine.Command{Type: engine.CmdSuggestWord, Word: cm.Word, User: cm.Name}, true
		case "vote":
			return engine.Command{Type: engine.CmdVote, Choice: cm.Choice, User: cm.Name}, true
		case "select_word":
			return engine.Command{Type: engine.CmdSelectWord, PlayerID: cm.PlayerID, Word: cm.Word}, true
		default:
			return engine.Command{}, false
		}
	}

	msg, ok := chat.Normalize(data)
	if !ok {
		return engine.Command{}, false
	}
	return chatCommand(msg)
}

// chatCommand maps interpreted chat intent onto commands. Chat users get a
// stable derived player id so "!join" seats the same person across
// reconnects.
func chatCommand(msg chat.Message) (engine.Command, bool) {
	in := chat.Interpret(msg)
	switch in.Kind {
	case chat.InputJoin:
		return engine.Command{Type: engine.CmdJoinGame, PlayerID: "chat:" + msg.User, Name: in.Name}, true
	case chat.InputStart:
		return engine.Command{Type: engine.CmdStartGame, PlayerID: "chat:" + msg.User}, true
	case chat.InputRestart:
		return engine.Command{Type: engine.CmdRestart, PlayerID: "chat:" + msg.User}, true
	case chat.InputVote:
		return engine.Command{Type: engine.CmdVote, Choice: in.Choice, User: msg.User}, true
	case chat.InputWord:
		return engine.Command{Type: engine.CmdSuggestWord, Word: in.Word, User: msg.User}, true
	default:
		return engine.Command{}, false
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
