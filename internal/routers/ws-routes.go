package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/websocket"
)

func WSRouter(r chi.Router, events *websocket.EventRouter) {
	r.Get("/ws", events.HandleWS)
}
