package room_handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/dtos/room_dto"
	app_error "github.com/vinaivinu15-cell/FAM2GETHER/internal/errors"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/handlers"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/middleware"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/room"
	ws "github.com/vinaivinu15-cell/FAM2GETHER/internal/websocket"
)

// RoomHandler is the REST collaborator surface: room creation and
// existence lookups for the landing page, plus read-only health/stats.
type RoomHandler struct {
	Registry *room.Registry
	Hub      *ws.Hub
}

func NewRoomHandler(registry *room.Registry, hub *ws.Hub) *RoomHandler {
	return &RoomHandler{Registry: registry, Hub: hub}
}

func (h *RoomHandler) HandleCreateRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	rm, err := h.Registry.Create()
	if err != nil {
		return app_error.NewAppError(http.StatusInternalServerError, err.Error(), "room-code")
	}

	handlers.WriteJSON(w, http.StatusCreated, room_dto.CreateRoomResponse{RoomCode: rm.Code})
	return nil
}

func (h *RoomHandler) HandleRoomExists(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomCode := strings.ToUpper(chi.URLParam(r, "roomCode"))
	_, exists := h.Registry.Get(roomCode)

	handlers.WriteJSON(w, http.StatusOK, room_dto.RoomExistsResponse{Exists: exists})
	return nil
}

func (h *RoomHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "fam2gether-sync-server",
	})
}

func (h *RoomHandler) HandleGetRoomStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomCode := strings.ToUpper(chi.URLParam(r, "roomCode"))
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	stats := room_dto.RoomStatsResponse{RoomCode: roomCode}
	if rm, exists := h.Registry.Get(roomCode); exists {
		snap := rm.Snapshot()
		stats.Exists = true
		stats.Participants = len(snap.Users)
		stats.ChatMessages = len(snap.Chat)
		stats.SessionStartTime = snap.SessionStartTime
		stats.CreatedAt = rm.CreatedAt().UnixMilli()
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("get room stats", stats, reqID))
	return nil
}

func (h *RoomHandler) HandleGetHubStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	stats := h.Hub.Stats()
	log.Debug().Int("rooms", stats.TotalRooms).Int("clients", stats.TotalClients).Msg("hub stats requested")

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("get websocket stats", stats, reqID))
	return nil
}
