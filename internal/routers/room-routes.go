package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/handlers"
	room_handler "github.com/vinaivinu15-cell/FAM2GETHER/internal/handlers/room-handler"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/room"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/websocket"
)

func RoomRouter(r chi.Router, registry *room.Registry, hub *websocket.Hub) {
	roomHandler := room_handler.NewRoomHandler(registry, hub)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", roomHandler.HandleHealth)
		r.Get("/stats", handlers.WrapHandler(roomHandler.HandleGetHubStats))

		r.Post("/rooms", handlers.WrapHandler(roomHandler.HandleCreateRoom))
		r.Route("/rooms/{roomCode}", func(r chi.Router) {
			r.Get("/exists", handlers.WrapHandler(roomHandler.HandleRoomExists))
			r.Get("/stats", handlers.WrapHandler(roomHandler.HandleGetRoomStats))
		})
	})
}
