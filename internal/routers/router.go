package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/vinaivinu15-cell/FAM2GETHER/config"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/middleware"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/room"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/websocket"
)

func NewRouter(registry *room.Registry, hub *websocket.Hub, events *websocket.EventRouter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{config.Conf.FRONTEND.Origin},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	RoomRouter(r, registry, hub)
	WSRouter(r, events)
	return r
}
