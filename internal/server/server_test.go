package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/fourteen/internal/config"
	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/protocol/codec"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Redis.Enabled = false
	cfg.Server.Codec = codec.NameJSON
	cfg.Security.BlockedIPs = nil
	cfg.Security.AllowedOrigins = []string{"*"}
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(func() {
		ts.Close()
		s.rateLimiter.Stop()
	})
	return s, ts
}

func wsURL(ts *httptest.Server, query string) string {
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if query != "" {
		u += "?" + query
	}
	return u
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, query), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func write(t *testing.T, conn *websocket.Conn, c codec.Codec, msgType protocol.MessageType, payload any) {
	t.Helper()
	data, err := c.Encode(codec.MustNewMessage(msgType, payload))
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(c.FrameType(), data))
}

// readUntil 读取消息直到出现指定类型，返回该消息和帧类型
func readUntil(t *testing.T, conn *websocket.Conn, want protocol.MessageType) (*protocol.Message, int) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		frameType, data, err := conn.ReadMessage()
		require.NoError(t, err, "等待 %s", want)
		msg, err := codec.ForFrame(frameType).Decode(data)
		require.NoError(t, err)
		if msg.Type == want {
			return msg, frameType
		}
	}
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestServer_CreateAndJoinAcrossCodecs(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig())

	host := dial(t, ts, "")
	connected, frameType := readUntil(t, host, protocol.MsgConnected)
	assert.Equal(t, websocket.TextMessage, frameType)
	hello, err := codec.ParsePayload[protocol.ConnectedPayload](connected)
	require.NoError(t, err)
	assert.NotEmpty(t, hello.PlayerID)

	write(t, host, codec.JSON{}, protocol.MsgCreateRoom, protocol.CreateRoomPayload{PlayerName: "Alice"})
	msg, _ := readUntil(t, host, protocol.MsgRoomCreated)
	created, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
	require.NoError(t, err)
	require.Len(t, created.RoomCode, 6)
	assert.Equal(t, hello.PlayerID, created.Room.Players[0].ID)

	guest := dial(t, ts, "codec=protobuf")
	_, frameType = readUntil(t, guest, protocol.MsgConnected)
	assert.Equal(t, websocket.BinaryMessage, frameType)

	write(t, guest, codec.Protobuf{}, protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode:   strings.ToLower(created.RoomCode),
		PlayerName: "Bob",
	})
	msg, frameType = readUntil(t, guest, protocol.MsgPlayerJoined)
	assert.Equal(t, websocket.BinaryMessage, frameType)
	joined, err := codec.ParsePayload[protocol.PlayerJoinedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "Bob", joined.Player.Name)
	assert.Len(t, joined.Room.Players, 2)

	msg, _ = readUntil(t, host, protocol.MsgPlayerJoined)
	joined, err = codec.ParsePayload[protocol.PlayerJoinedPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "Bob", joined.Player.Name)

	write(t, host, codec.JSON{}, protocol.MsgStartGame, nil)
	msg, _ = readUntil(t, guest, protocol.MsgGameStarted)
	started, err := codec.ParsePayload[protocol.GameStartedPayload](msg)
	require.NoError(t, err)
	assert.True(t, started.Room.GameStarted)
	assert.Len(t, started.Room.Hand, 4)
	assert.Len(t, started.Room.FaceUp, 2)
	assert.Equal(t, 44, started.Room.DeckCount)

	assert.Equal(t, 2, s.GetOnlineCount())
	assert.Equal(t, 1, s.RoomManager().GetActiveGamesCount())
}

func TestServer_DisconnectLeavesRoom(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig())

	host := dial(t, ts, "")
	write(t, host, codec.JSON{}, protocol.MsgCreateRoom, protocol.CreateRoomPayload{PlayerName: "Alice"})
	msg, _ := readUntil(t, host, protocol.MsgRoomCreated)
	created, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
	require.NoError(t, err)

	guest := dial(t, ts, "")
	write(t, guest, codec.JSON{}, protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomCode: created.RoomCode, PlayerName: "Bob"})
	readUntil(t, guest, protocol.MsgPlayerJoined)

	require.NoError(t, host.Close())

	msg, _ = readUntil(t, guest, protocol.MsgPlayerLeft)
	left, err := codec.ParsePayload[protocol.PlayerLeftPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "Alice", left.PlayerName)
	require.Len(t, left.Room.Players, 1)
	assert.True(t, left.Room.Players[0].IsHost)

	assert.Eventually(t, func() bool { return s.GetOnlineCount() == 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestServer_InvalidFrame(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, testConfig())

	conn := dial(t, ts, "")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	msg, _ := readUntil(t, conn, protocol.MsgError)
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, payload.Code)
}

func TestServer_RejectsConnections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		setup  func(cfg *config.Config)
		before func(s *Server)
		query  string
		header http.Header
		status int
	}{
		{
			name:   "unknown codec",
			query:  "codec=xml",
			status: http.StatusBadRequest,
		},
		{
			name:   "blocked ip",
			setup:  func(cfg *config.Config) { cfg.Security.BlockedIPs = []string{"127.0.0.1"} },
			status: http.StatusForbidden,
		},
		{
			name:   "origin not allowed",
			setup:  func(cfg *config.Config) { cfg.Security.AllowedOrigins = []string{"https://fourteen.example"} },
			header: http.Header{"Origin": []string{"https://evil.example"}},
			status: http.StatusForbidden,
		},
		{
			name:   "maintenance",
			before: func(s *Server) { s.EnterMaintenanceMode() },
			status: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			if tt.setup != nil {
				tt.setup(cfg)
			}
			s, ts := newTestServer(t, cfg)
			if tt.before != nil {
				tt.before(s)
			}

			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, tt.query), tt.header)
			if conn != nil {
				_ = conn.Close()
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Zero(t, len(s.semaphore))
		})
	}
}

func TestServer_MaintenanceBlocksCreateRoom(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig())

	conn := dial(t, ts, "")
	readUntil(t, conn, protocol.MsgConnected)
	require.Eventually(t, func() bool { return s.GetOnlineCount() == 1 }, 3*time.Second, 10*time.Millisecond)

	s.EnterMaintenanceMode()
	msg, _ := readUntil(t, conn, protocol.MsgError)
	notice, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeServerMaintenance, notice.Code)

	write(t, conn, codec.JSON{}, protocol.MsgCreateRoom, protocol.CreateRoomPayload{PlayerName: "Alice"})
	msg, _ = readUntil(t, conn, protocol.MsgError)
	rejected, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeServerMaintenance, rejected.Code)
}

func TestServer_RedisEnabled(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("fourteen:room:STALE1", "{}"))

	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()

	s, ts := newTestServer(t, cfg)
	assert.False(t, mr.Exists("fourteen:room:STALE1"))
	require.NotNil(t, s.leaderboard)

	conn := dial(t, ts, "")
	write(t, conn, codec.JSON{}, protocol.MsgCreateRoom, protocol.CreateRoomPayload{PlayerName: "Alice"})
	msg, _ := readUntil(t, conn, protocol.MsgRoomCreated)
	created, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return mr.Exists("fourteen:room:" + created.RoomCode) },
		3*time.Second, 20*time.Millisecond)

	write(t, conn, codec.JSON{}, protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{})
	msg, _ = readUntil(t, conn, protocol.MsgLeaderboardResult)
	board, err := codec.ParsePayload[protocol.LeaderboardResultPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "total", board.Type)
	assert.Empty(t, board.Entries)
}

func TestServer_RedisUnavailable(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = addr

	_, err = NewServer(cfg)
	assert.Error(t, err)
}
