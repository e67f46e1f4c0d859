package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kiball/internal/hub"
	"kiball/internal/room"
	"kiball/internal/ws"
)

func newTestServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx, zap.NewNop())
	srv := httptest.NewServer(SetupRoutes(h, ws.Options{}, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, h
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func TestHealthz(t *testing.T) {
	srv, h := newTestServer(t)

	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.EnsureRoom{ID: "ABC234", Reply: reply}
	require.NotNil(t, <-reply)

	var body struct {
		OK    bool `json:"ok"`
		Rooms int  `json:"rooms"`
	}
	resp := getJSON(t, srv.URL+"/healthz", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.OK)
	assert.Equal(t, 1, body.Rooms)
}

func TestCreateRoom(t *testing.T) {
	srv, h := newTestServer(t)

	resp, err := http.Post(srv.URL+"/rooms", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.ID, 6)

	// The code is live in the hub immediately.
	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.GetRoom{ID: body.ID, Reply: reply}
	assert.NotNil(t, <-reply)
}

func TestListRooms(t *testing.T) {
	srv, h := newTestServer(t)

	var empty []hub.RoomInfo
	getJSON(t, srv.URL+"/rooms", &empty)
	assert.Empty(t, empty)

	reply := make(chan *room.Room, 1)
	h.Inbox() <- hub.EnsureRoom{ID: "ROOM42", Reply: reply}
	require.NotNil(t, <-reply)

	var rooms []hub.RoomInfo
	getJSON(t, srv.URL+"/rooms", &rooms)
	require.Len(t, rooms, 1)
	assert.Equal(t, "ROOM42", rooms[0].ID)
	assert.Equal(t, 0, rooms[0].Players)
}

func TestGeneratedCodesAvoidAmbiguousCharacters(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "1")
	}
}
