// ABOUTME: WebSocket connection manager for the gateway's /ws endpoint
// ABOUTME: Owns the single live socket, emits ordered events, and reconnects on abnormal close
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ramborogers/cyberai-tui/internal/logger"
)

var ErrManagerClosed = errors.New("connection manager closed")

type ConnEventKind int

const (
	ConnOpened ConnEventKind = iota
	ConnFrame
	ConnClosed
	ConnError
)

func (k ConnEventKind) String() string {
	switch k {
	case ConnOpened:
		return "opened"
	case ConnFrame:
		return "frame"
	case ConnClosed:
		return "closed"
	case ConnError:
		return "error"
	default:
		return "unknown"
	}
}

// ConnEvent is one observation about the socket. Frame is set for ConnFrame,
// Code for ConnClosed, Err for ConnError and ConnClosed.
type ConnEvent struct {
	Kind       ConnEventKind
	Generation uint64
	Frame      []byte
	Code       int
	Err        error
	// Retry is the delay before the next automatic Connect, zero if none.
	Retry time.Duration
}

type ConnectionOptions struct {
	// ReconnectDelay applies after a non-normal close.
	ReconnectDelay time.Duration
	// DialRetryDelay applies after the dial itself fails.
	DialRetryDelay time.Duration
	DialTimeout    time.Duration
	Header         http.Header
	Dialer         *websocket.Dialer
}

func DefaultConnectionOptions() ConnectionOptions {
	return ConnectionOptions{
		ReconnectDelay: 3 * time.Second,
		DialRetryDelay: 5 * time.Second,
		DialTimeout:    30 * time.Second,
	}
}

type ConnectionManager struct {
	url  string
	opts ConnectionOptions
	log  logger.Scoped

	mu         sync.Mutex
	conn       *websocket.Conn
	generation uint64
	timer      *time.Timer
	stopped    bool

	events   chan ConnEvent
	done     chan struct{}
	attempts atomic.Int64
}

func NewConnectionManager(url string, opts ConnectionOptions) *ConnectionManager {
	def := DefaultConnectionOptions()
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = def.ReconnectDelay
	}
	if opts.DialRetryDelay <= 0 {
		opts.DialRetryDelay = def.DialRetryDelay
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = def.DialTimeout
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}

	return &ConnectionManager{
		url:    url,
		opts:   opts,
		log:    logger.Scope("ws"),
		events: make(chan ConnEvent, 256),
		done:   make(chan struct{}),
	}
}

// Events delivers socket events in order. It is never closed; select on Done.
func (c *ConnectionManager) Events() <-chan ConnEvent {
	return c.events
}

// Done is closed by Close.
func (c *ConnectionManager) Done() <-chan struct{} {
	return c.done
}

// Attempts counts dial attempts, including automatic reconnects.
func (c *ConnectionManager) Attempts() int64 {
	return c.attempts.Load()
}

func (c *ConnectionManager) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && !c.stopped
}

// IsCurrent reports whether gen is the live socket's generation.
func (c *ConnectionManager) IsCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation && !c.stopped
}

// Connect dials a new socket, closing any existing one first. A dial failure
// is reported as a ConnError event and retried after DialRetryDelay.
func (c *ConnectionManager) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrManagerClosed
	}
	c.cancelTimerLocked()
	c.generation++
	gen := c.generation
	if c.conn != nil {
		c.log.Debug("closing socket before reconnect")
		closeConn(c.conn)
		c.conn = nil
	}
	c.mu.Unlock()

	c.attempts.Add(1)
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancel()

	conn, _, err := c.opts.Dialer.DialContext(dialCtx, c.url, c.opts.Header) //nolint:bodyclose // websocket connection, not HTTP response
	if err != nil {
		err = fmt.Errorf("dial %s: %w", c.url, err)
		c.log.Warn("%v, retrying in %s", err, c.opts.DialRetryDelay)
		if c.IsCurrent(gen) {
			c.emit(ConnEvent{Kind: ConnError, Generation: gen, Err: err, Retry: c.opts.DialRetryDelay})
			c.schedule(c.opts.DialRetryDelay)
		}
		return err
	}

	c.mu.Lock()
	if c.stopped || gen != c.generation {
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.mu.Unlock()

	c.log.Info("connected to %s", c.url)
	c.emit(ConnEvent{Kind: ConnOpened, Generation: gen})
	go c.readLoop(conn, gen)
	return nil
}

// Close sends a normal closure, cancels any pending reconnect, and stops
// the manager for good.
func (c *ConnectionManager) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return nil
	}
	c.stopped = true
	c.cancelTimerLocked()
	close(c.done)

	if c.conn != nil {
		closeConn(c.conn)
		c.conn = nil
	}
	return nil
}

func (c *ConnectionManager) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			c.handleReadError(conn, gen, err)
			return
		}
		if !c.IsCurrent(gen) {
			return
		}
		c.emit(ConnEvent{Kind: ConnFrame, Generation: gen, Frame: frame})
	}
}

func (c *ConnectionManager) handleReadError(conn *websocket.Conn, gen uint64, err error) {
	c.mu.Lock()
	if c.stopped || gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.mu.Unlock()
	conn.Close()

	code := CloseCode(err)
	if code == websocket.CloseNormalClosure {
		c.log.Info("connection closed normally")
		c.emit(ConnEvent{Kind: ConnClosed, Generation: gen, Code: code, Err: err})
		return
	}

	c.log.Warn("connection lost (code %d): %v, reconnecting in %s", code, err, c.opts.ReconnectDelay)
	c.emit(ConnEvent{Kind: ConnClosed, Generation: gen, Code: code, Err: err, Retry: c.opts.ReconnectDelay})
	c.schedule(c.opts.ReconnectDelay)
}

func (c *ConnectionManager) schedule(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.cancelTimerLocked()
	c.timer = time.AfterFunc(delay, func() {
		_ = c.Connect(context.Background())
	})
}

func (c *ConnectionManager) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *ConnectionManager) emit(ev ConnEvent) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// CloseCode extracts the websocket close code from a read error. Errors that
// carry no close frame are reported as abnormal closure (1006).
func CloseCode(err error) int {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return websocket.CloseAbnormalClosure
}

func closeConn(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}
