package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/storychain/story-chain-backend/internal/engine"
	"github.com/storychain/story-chain-backend/internal/hub"
	"github.com/storychain/story-chain-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, rules engine.Rules, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Post("/rooms", CreateRoom(h, rules, log))
	r.Post("/rooms/{code}/join", JoinRoom(h))
	r.Delete("/rooms/{code}", LeaveRoom(h))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	return r
}
