// ABOUTME: Tests for the websocket connection manager against httptest gateways
// ABOUTME: Covers frame delivery, reconnect on abnormal close, and no reconnect on normal close
package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// gateway is a scripted websocket server. Each accepted connection runs
// script with its 1-based connection number.
type gateway struct {
	server *httptest.Server
	conns  atomic.Int32
}

func newGateway(t *testing.T, script func(n int32, conn *websocket.Conn)) *gateway {
	t.Helper()
	g := &gateway{}
	g.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		script(g.conns.Add(1), conn)
	}))
	t.Cleanup(g.server.Close)
	return g
}

func (g *gateway) wsURL() string {
	return "ws" + strings.TrimPrefix(g.server.URL, "http") + "/ws"
}

// drain keeps a server connection open until the client goes away.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func fastOptions() ConnectionOptions {
	return ConnectionOptions{
		ReconnectDelay: 20 * time.Millisecond,
		DialRetryDelay: 30 * time.Millisecond,
		DialTimeout:    time.Second,
	}
}

func nextEvent(t *testing.T, m *ConnectionManager) ConnEvent {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for connection event")
		return ConnEvent{}
	}
}

func TestConnectionManager_DeliversFramesInOrder(t *testing.T) {
	g := newGateway(t, func(n int32, conn *websocket.Conn) {
		for _, f := range []string{`{"type":"a"}`, `{"type":"b"}`, `{"type":"c"}`} {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(f))
		}
		drain(conn)
	})

	m := NewConnectionManager(g.wsURL(), fastOptions())
	defer m.Close()
	require.NoError(t, m.Connect(context.Background()))

	assert.Equal(t, ConnOpened, nextEvent(t, m).Kind)
	for _, want := range []string{`{"type":"a"}`, `{"type":"b"}`, `{"type":"c"}`} {
		ev := nextEvent(t, m)
		require.Equal(t, ConnFrame, ev.Kind)
		assert.Equal(t, want, string(ev.Frame))
	}
	assert.True(t, m.IsConnected())
}

func TestConnectionManager_ReconnectsAfterAbnormalClose(t *testing.T) {
	g := newGateway(t, func(n int32, conn *websocket.Conn) {
		if n == 1 {
			// drop the TCP connection without a close frame
			conn.UnderlyingConn().Close()
			return
		}
		drain(conn)
	})

	m := NewConnectionManager(g.wsURL(), fastOptions())
	defer m.Close()
	require.NoError(t, m.Connect(context.Background()))

	first := nextEvent(t, m)
	require.Equal(t, ConnOpened, first.Kind)

	closed := nextEvent(t, m)
	require.Equal(t, ConnClosed, closed.Kind)
	assert.Equal(t, websocket.CloseAbnormalClosure, closed.Code)
	assert.Equal(t, 20*time.Millisecond, closed.Retry)

	reopened := nextEvent(t, m)
	require.Equal(t, ConnOpened, reopened.Kind)
	assert.Greater(t, reopened.Generation, first.Generation)
	assert.Equal(t, int64(2), m.Attempts())
	assert.Equal(t, int32(2), g.conns.Load())
}

func TestConnectionManager_NoReconnectAfterNormalClose(t *testing.T) {
	g := newGateway(t, func(n int32, conn *websocket.Conn) {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
		drain(conn)
	})

	m := NewConnectionManager(g.wsURL(), fastOptions())
	defer m.Close()
	require.NoError(t, m.Connect(context.Background()))

	require.Equal(t, ConnOpened, nextEvent(t, m).Kind)
	closed := nextEvent(t, m)
	require.Equal(t, ConnClosed, closed.Kind)
	assert.Equal(t, websocket.CloseNormalClosure, closed.Code)
	assert.Zero(t, closed.Retry)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int64(1), m.Attempts(), "no reconnect is scheduled")
	assert.False(t, m.IsConnected())
}

func TestConnectionManager_DialFailureRetries(t *testing.T) {
	g := newGateway(t, func(n int32, conn *websocket.Conn) { drain(conn) })
	url := g.wsURL()
	g.server.Close()

	m := NewConnectionManager(url, fastOptions())
	defer m.Close()

	err := m.Connect(context.Background())
	require.Error(t, err)

	ev := nextEvent(t, m)
	assert.Equal(t, ConnError, ev.Kind)
	assert.Equal(t, 30*time.Millisecond, ev.Retry)

	again := nextEvent(t, m)
	assert.Equal(t, ConnError, again.Kind, "retry fires on its own")
	assert.GreaterOrEqual(t, m.Attempts(), int64(2))
}

func TestConnectionManager_ConnectReplacesExistingSocket(t *testing.T) {
	var serverSawClose atomic.Bool
	g := newGateway(t, func(n int32, conn *websocket.Conn) {
		drain(conn)
		if n == 1 {
			serverSawClose.Store(true)
		}
	})

	m := NewConnectionManager(g.wsURL(), fastOptions())
	defer m.Close()

	require.NoError(t, m.Connect(context.Background()))
	first := nextEvent(t, m)
	require.NoError(t, m.Connect(context.Background()))
	second := nextEvent(t, m)

	assert.Equal(t, ConnOpened, second.Kind, "superseded socket emits no close event")
	assert.False(t, m.IsCurrent(first.Generation))
	assert.True(t, m.IsCurrent(second.Generation))
	assert.Eventually(t, serverSawClose.Load, time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(2), m.Attempts(), "closing the old socket does not trigger a reconnect")
}

func TestConnectionManager_CloseStopsReconnect(t *testing.T) {
	g := newGateway(t, func(n int32, conn *websocket.Conn) {
		conn.UnderlyingConn().Close()
	})

	opts := fastOptions()
	opts.ReconnectDelay = 100 * time.Millisecond
	m := NewConnectionManager(g.wsURL(), opts)
	require.NoError(t, m.Connect(context.Background()))
	require.Equal(t, ConnOpened, nextEvent(t, m).Kind)
	require.Equal(t, ConnClosed, nextEvent(t, m).Kind)

	require.NoError(t, m.Close())
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, int64(1), m.Attempts())
	assert.ErrorIs(t, m.Connect(context.Background()), ErrManagerClosed)
	assert.NoError(t, m.Close(), "close is idempotent")
}

func TestConnectionManager_SendsAuthHeader(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		drain(conn)
	}))
	defer srv.Close()

	opts := fastOptions()
	opts.Header = http.Header{"Authorization": []string{"Bearer secret"}}
	m := NewConnectionManager("ws"+strings.TrimPrefix(srv.URL, "http"), opts)
	defer m.Close()

	require.NoError(t, m.Connect(context.Background()))
	require.Equal(t, ConnOpened, nextEvent(t, m).Kind)
	assert.Equal(t, "Bearer secret", auth.Load())
}

func TestCloseCode(t *testing.T) {
	assert.Equal(t, 1000, CloseCode(&websocket.CloseError{Code: 1000}))
	assert.Equal(t, 1001, CloseCode(&websocket.CloseError{Code: 1001}))
	assert.Equal(t, 1006, CloseCode(assert.AnError))
}

func TestDefaultConnectionOptions(t *testing.T) {
	m := NewConnectionManager("ws://example.invalid/ws", ConnectionOptions{})

	assert.Equal(t, 3*time.Second, m.opts.ReconnectDelay)
	assert.Equal(t, 5*time.Second, m.opts.DialRetryDelay)
	assert.Equal(t, 30*time.Second, m.opts.DialTimeout)
}
