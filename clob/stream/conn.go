package stream

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// coreConn is the socket lifecycle shared by the three stream clients:
// dial, handshake, readLoop + pingLoop, and unbounded reconnect with
// capped exponential backoff. The owning client supplies the handshake
// payload and the frame handler; the core guarantees the handshake is
// replayed on every reconnect before any frame is dispatched.
type coreConn struct {
	url  string
	cfg  *Config
	log  *logrus.Entry
	conn *websocket.Conn
	// connMu guards conn; writes to the socket hold it so a reconnect can't
	// swap the connection mid-frame
	connMu sync.Mutex

	state atomic.Int32

	running   bool
	runningMu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	stopCh chan struct{}
	doneCh chan struct{}

	reconnectAttempts int
	reconnectMu       sync.Mutex

	// handshake is sent after every successful dial, initial and reconnect
	handshake func() (any, error)
	// onFrame receives every non-heartbeat frame
	onFrame func([]byte)

	errChan chan error
}

func newCoreConn(wsURL string, cfg *Config, log *logrus.Entry) *coreConn {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &coreConn{
		url:     wsURL,
		cfg:     cfg,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		errChan: make(chan error, cfg.ErrorBufferSize),
	}
}

// State reports the current lifecycle phase.
func (c *coreConn) State() State {
	return State(c.state.Load())
}

func (c *coreConn) setState(s State) {
	c.state.Store(int32(s))
}

// Errors exposes asynchronous failures (reconnect exhaustion, dropped
// events). The channel is buffered and never blocks the stream.
func (c *coreConn) Errors() <-chan error {
	return c.errChan
}

func (c *coreConn) reportErr(err error) {
	select {
	case c.errChan <- err:
	default:
	}
}

// start dials, handshakes and launches the read and ping loops.
func (c *coreConn) start(ctx context.Context) error {
	c.runningMu.Lock()
	if c.running {
		c.runningMu.Unlock()
		return errors.New("stream client already running")
	}
	c.running = true
	c.runningMu.Unlock()

	if ctx != nil {
		c.ctx, c.cancel = context.WithCancel(ctx)
	}

	if err := c.connect(); err != nil {
		c.runningMu.Lock()
		c.running = false
		c.runningMu.Unlock()
		c.setState(StateDisconnected)
		return err
	}

	go c.readLoop()
	go c.pingLoop()
	return nil
}

// stop tears down the socket and waits briefly for the loops to exit.
func (c *coreConn) stop() {
	c.runningMu.Lock()
	if !c.running {
		c.runningMu.Unlock()
		return
	}
	c.running = false
	c.runningMu.Unlock()

	c.cancel()
	close(c.stopCh)

	c.connMu.Lock()
	if c.conn != nil {
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	select {
	case <-c.doneCh:
	case <-time.After(5 * time.Second):
		c.log.Warn("timed out waiting for stream loops to exit")
	}
	c.setState(StateDisconnected)
}

func (c *coreConn) isRunning() bool {
	c.runningMu.RLock()
	defer c.runningMu.RUnlock()
	return c.running
}

// connect dials and replays the handshake. Holding connMu across the dial
// keeps concurrent writers off the half-open socket.
func (c *coreConn) connect() error {
	c.setState(StateConnecting)

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}
	if c.cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(c.cfg.ProxyURL)
		if err != nil {
			c.setState(StateDisconnected)
			return errors.Wrap(err, "invalid proxy url")
		}
		dialer.Proxy = http.ProxyURL(proxyURL)
	}

	headers := make(http.Header)
	headers.Set("User-Agent", "polyclob/1.0")

	conn, _, err := dialer.Dial(c.url, headers)
	if err != nil {
		c.setState(StateDisconnected)
		return errors.Wrapf(err, "dial %s", c.url)
	}

	if c.handshake != nil {
		payload, err := c.handshake()
		if err != nil {
			_ = conn.Close()
			c.setState(StateDisconnected)
			return err
		}
		if payload != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := conn.WriteJSON(payload); err != nil {
				_ = conn.Close()
				c.setState(StateDisconnected)
				return errors.Wrap(err, "send handshake")
			}
		}
	}

	c.conn = conn
	c.setState(StateSubscribed)

	c.reconnectMu.Lock()
	c.reconnectAttempts = 0
	c.reconnectMu.Unlock()
	return nil
}

// writeJSON sends one JSON control message on the live socket.
func (c *coreConn) writeJSON(v any) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return errors.New("not connected")
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteJSON(v)
}

func (c *coreConn) readLoop() {
	defer close(c.doneCh)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.stopCh:
			return
		default:
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			if c.cfg.ReconnectEnabled {
				c.reconnect()
			} else {
				time.Sleep(1 * time.Second)
			}
			continue
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			c.connMu.Lock()
			if c.conn != nil {
				_ = c.conn.Close()
				c.conn = nil
			}
			c.connMu.Unlock()

			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.setState(StateDisconnected)
				return
			}
			if !c.isRunning() {
				c.setState(StateDisconnected)
				return
			}

			c.log.WithError(err).Warn("stream read error")
			if c.cfg.ReconnectEnabled {
				c.reconnect()
			} else {
				c.setState(StateDisconnected)
				time.Sleep(1 * time.Second)
			}
			continue
		}

		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 {
			continue
		}
		// text heartbeats ride the same data channel
		if string(trimmed) == "PING" {
			c.connMu.Lock()
			if c.conn != nil {
				_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
				_ = c.conn.WriteMessage(websocket.TextMessage, []byte("PONG"))
			}
			c.connMu.Unlock()
			continue
		}
		if string(trimmed) == "PONG" || string(trimmed) == "pong" {
			continue
		}

		c.setState(StateStreaming)
		if c.onFrame != nil {
			c.onFrame(trimmed)
		}
	}
}

func (c *coreConn) pingLoop() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.connMu.Lock()
			conn := c.conn
			if conn != nil {
				_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, []byte("PING")); err != nil {
					c.log.WithError(err).Warn("ping failed")
				}
			}
			c.connMu.Unlock()
		}
	}
}

// reconnect retries the dial forever. Delays grow exponentially for the
// first MaxReconnectAttempts tries, then hold at MaxReconnectDelay until the
// upstream comes back. The handshake is part of connect, so a successful
// reconnect is already resubscribed.
func (c *coreConn) reconnect() {
	c.reconnectMu.Lock()
	c.reconnectAttempts++
	attempts := c.reconnectAttempts
	c.reconnectMu.Unlock()

	c.setState(StateReconnecting)

	var delay time.Duration
	if attempts > c.cfg.MaxReconnectAttempts {
		if attempts == c.cfg.MaxReconnectAttempts+1 {
			c.reportErr(errors.Errorf("reconnect backoff exhausted after %d attempts, retrying every %s",
				c.cfg.MaxReconnectAttempts, c.cfg.MaxReconnectDelay))
		}
		delay = c.cfg.MaxReconnectDelay
	} else {
		delay = c.cfg.ReconnectDelay * time.Duration(1<<uint(attempts-1))
		if delay > c.cfg.MaxReconnectDelay {
			delay = c.cfg.MaxReconnectDelay
		}
	}
	c.log.WithFields(logrus.Fields{"attempt": attempts, "delay": delay}).Info("reconnecting")

	select {
	case <-c.ctx.Done():
		return
	case <-c.stopCh:
		return
	case <-time.After(delay):
	}

	if err := c.connect(); err != nil {
		c.log.WithError(err).Warn("reconnect failed")
	}
}
