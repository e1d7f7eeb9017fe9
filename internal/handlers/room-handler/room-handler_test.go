package room_handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/dtos/room_dto"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/handlers"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/middleware"
	"github.com/vinaivinu15-cell/FAM2GETHER/internal/room"
	ws "github.com/vinaivinu15-cell/FAM2GETHER/internal/websocket"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newTestServer(t *testing.T) (*httptest.Server, *room.Registry) {
	t.Helper()

	mock := clock.NewMock()
	mock.Set(time.Unix(1700000000, 0))
	registry, err := room.NewRegistry(mock, 6)
	require.NoError(t, err)

	h := NewRoomHandler(registry, ws.NewHub())
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	r.Get("/api/health", h.HandleHealth)
	r.Post("/api/rooms", handlers.WrapHandler(h.HandleCreateRoom))
	r.Get("/api/rooms/{roomCode}/exists", handlers.WrapHandler(h.HandleRoomExists))
	r.Get("/api/rooms/{roomCode}/stats", handlers.WrapHandler(h.HandleGetRoomStats))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, registry
}

func TestHandleCreateRoom(t *testing.T) {
	srv, registry := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/rooms", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body room_dto.CreateRoomResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Z]{6}$`), body.RoomCode)

	_, ok := registry.Get(body.RoomCode)
	assert.True(t, ok, "the created room must be live in the registry")
}

func TestHandleRoomExists(t *testing.T) {
	srv, registry := newTestServer(t)
	rm, err := registry.Create()
	require.NoError(t, err)

	for _, tc := range []struct {
		code string
		want bool
	}{
		{rm.Code, true},
		{"NOPE99", false},
	} {
		resp, err := http.Get(srv.URL + "/api/rooms/" + tc.code + "/exists")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body room_dto.RoomExistsResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, tc.want, body.Exists, "code %s", tc.code)
	}
}

func TestHandleGetRoomStats(t *testing.T) {
	srv, registry := newTestServer(t)
	rm, err := registry.Create()
	require.NoError(t, err)
	rm.Join("conn-1", "Ann")
	rm.Append("conn-1", "hello")

	resp, err := http.Get(srv.URL + "/api/rooms/" + rm.Code + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body struct {
		Message string                     `json:"message"`
		Data    room_dto.RoomStatsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Data.Exists)
	assert.Equal(t, 1, body.Data.Participants)
	assert.Equal(t, 1, body.Data.ChatMessages)
	assert.NotZero(t, body.Data.SessionStartTime)
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
