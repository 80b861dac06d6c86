package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storychain/story-chain-backend/internal/engine"
	"github.com/storychain/story-chain-backend/internal/hub"
	"github.com/storychain/story-chain-backend/internal/registry"
	"github.com/storychain/story-chain-backend/internal/session"
)

// roomCodeCookieAge matches the platform's 24h room persistence.
const roomCodeCookieAge = 86400

type joinRequest struct {
	Name string `json:"name"`
}

type joinResponse struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
	Slot     int    `json:"slot"`
}

// CreateRoom generates a room code, boots the single live session, and
// seats the creator as slot 1 / host. 409 when a session is already live.
func CreateRoom(h *hub.Hub, rules engine.Rules, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req joinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}

		code, err := registry.GenerateRoomCode()
		if err != nil {
			http.Error(w, "failed to generate code", http.StatusInternalServerError)
			return
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.CreateSession{Code: code, Rules: rules, Reply: reply}
		sess := <-reply
		if sess == nil {
			http.Error(w, "a session is already live", http.StatusConflict)
			return
		}

		playerID := uuid.NewString()
		res := do(sess, engine.Command{Type: engine.CmdJoinGame, PlayerID: playerID, Name: req.Name})
		if res.Err != nil {
			log.Error("host seat failed", zap.Error(res.Err))
			http.Error(w, "failed to join room", http.StatusInternalServerError)
			return
		}

		setRoomCookie(w, code)
		writeJSON(w, http.StatusCreated, joinResponse{
			Code:     code,
			PlayerID: playerID,
			Slot:     joinedSlot(res.Events),
		})
	}
}

// JoinRoom seats a second streamer by room code. RoomFull is a typed 409.
func JoinRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		var req joinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.GetSession{Code: code, Reply: reply}
		sess := <-reply
		if sess == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		playerID := uuid.NewString()
		res := do(sess, engine.Command{Type: engine.CmdJoinGame, PlayerID: playerID, Name: req.Name})
		if errors.Is(res.Err, registry.ErrRoomFull) {
			http.Error(w, "room full", http.StatusConflict)
			return
		}
		if res.Err != nil {
			http.Error(w, "failed to join room", http.StatusInternalServerError)
			return
		}

		setRoomCookie(w, code)
		writeJSON(w, http.StatusOK, joinResponse{
			Code:     code,
			PlayerID: playerID,
			Slot:     joinedSlot(res.Events),
		})
	}
}

// LeaveRoom tears the live session down. Tearing down twice is fine.
func LeaveRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.Inbox() <- hub.Teardown{}
		clearRoomCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func do(sess *session.Session, cmd engine.Command) session.Result {
	reply := make(chan session.Result, 1)
	sess.Inbox() <- session.Do{Cmd: cmd, Reply: reply}
	return <-reply
}

func joinedSlot(events []engine.Event) int {
	for _, evt := range events {
		if evt.Type == engine.EvtPlayerJoined {
			return evt.Slot
		}
	}
	return 0
}

func setRoomCookie(w http.ResponseWriter, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:   "roomCode",
		Value:  code,
		Path:   "/",
		MaxAge: roomCodeCookieAge,
	})
}

func clearRoomCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   "roomCode",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
