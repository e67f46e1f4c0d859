package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kiball/internal/hub"
	"kiball/internal/protocol"
)

const within = time.Second

func newWSServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(ctx, zap.NewNop())
	srv := httptest.NewServer(Handler(h, opts, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, httpURL string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(httpURL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, protocol.MustEncode(msg)))
}

func readFrame(t *testing.T, conn *websocket.Conn) any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	msg, err := protocol.DecodeServer(data)
	require.NoError(t, err)
	return msg
}

func TestJoinOverWebSocket(t *testing.T) {
	srv := newWSServer(t, Options{})
	conn := dialWS(t, srv.URL)

	writeFrame(t, conn, protocol.JoinRoom{Type: protocol.TypeJoinRoom, RoomID: "WS1", Name: "kai"})

	joined, ok := readFrame(t, conn).(protocol.Joined)
	require.True(t, ok)
	assert.NotEmpty(t, joined.PlayerID)
	assert.Equal(t, "WS1", joined.RoomID)
	require.Len(t, joined.State.Players, 1)
	assert.Equal(t, "kai", joined.State.Players[0].Name)
}

func TestBadFramesAnsweredInline(t *testing.T) {
	srv := newWSServer(t, Options{})
	conn := dialWS(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{garbage`)))

	errMsg, ok := readFrame(t, conn).(protocol.Error)
	require.True(t, ok)
	assert.Equal(t, protocol.CodeBadJSON, errMsg.Code)

	// The connection stays usable afterwards.
	writeFrame(t, conn, protocol.Ping{Type: protocol.TypePing, Timestamp: 9})
	pong, ok := readFrame(t, conn).(protocol.Pong)
	require.True(t, ok)
	assert.Equal(t, int64(9), pong.Timestamp)
}

func TestUnresponsivePeerIsTerminated(t *testing.T) {
	srv := newWSServer(t, Options{PingInterval: 20 * time.Millisecond})
	conn := dialWS(t, srv.URL)

	writeFrame(t, conn, protocol.JoinRoom{Type: protocol.TypeJoinRoom, RoomID: "DEAD"})
	readFrame(t, conn) // joined

	// With no read in flight the peer never answers pings, so the liveness
	// sweep tears the connection down.
	time.Sleep(150 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()
	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}
