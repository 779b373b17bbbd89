// Package transport is the persistent text channel to the renderer.
package transport

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grovetools/mviewer/errors"
	"github.com/grovetools/mviewer/logging"
	"github.com/sirupsen/logrus"
)

// DefaultPath is the renderer's WebSocket endpoint.
const DefaultPath = "/ws"

// DefaultRetryInterval is the delay between dial attempts.
const DefaultRetryInterval = 500 * time.Millisecond

// ErrClosedByClient is reported by Err after Close.
var ErrClosedByClient = stderrors.New("transport closed by client")

// Handler receives one inbound text message.
type Handler func(message string)

type handlerEntry struct {
	id int
	fn Handler
}

// Option configures a Client.
type Option func(*Client)

// WithPath overrides the WebSocket path.
func WithPath(path string) Option {
	return func(c *Client) { c.url.Path = path }
}

// WithRetryInterval sets the delay between dial attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retry = d
		}
	}
}

// WithDialer replaces websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithLogger sets the logger used for connection events.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Client) { c.logger = l }
}

// Client is a single WebSocket session to the renderer. Sends issued before
// the connection opens wait for it; once the session ends every send fails.
type Client struct {
	url    url.URL
	dialer *websocket.Dialer
	retry  time.Duration
	logger *logrus.Entry

	startOnce sync.Once
	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	doneOnce  sync.Once

	mu   sync.Mutex // guards conn and err
	conn *websocket.Conn
	err  error

	writeMu sync.Mutex

	handlersMu sync.RWMutex
	handlers   []handlerEntry
	nextID     int
}

// New creates a client for ws://host:port/ws. Call Connect to start dialing.
func New(host string, port int, opts ...Option) *Client {
	c := &Client{
		url: url.URL{
			Scheme: "ws",
			Host:   net.JoinHostPort(host, strconv.Itoa(port)),
			Path:   DefaultPath,
		},
		dialer: websocket.DefaultDialer,
		retry:  DefaultRetryInterval,
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewLogger("transport")
	}
	return c
}

// URL returns the endpoint this client dials.
func (c *Client) URL() string {
	return c.url.String()
}

// Connect starts dialing in the background and returns immediately. Failed
// dials are retried until ctx is cancelled or Close is called.
func (c *Client) Connect(ctx context.Context) {
	c.startOnce.Do(func() {
		go c.dialLoop(ctx)
	})
}

func (c *Client) dialLoop(ctx context.Context) {
	target := c.url.String()
	for attempt := 1; ; attempt++ {
		conn, _, err := c.dialer.DialContext(ctx, target, nil)
		if err == nil {
			c.mu.Lock()
			select {
			case <-c.done:
				c.mu.Unlock()
				conn.Close()
				return
			default:
			}
			c.conn = conn
			c.mu.Unlock()

			c.logger.WithFields(logrus.Fields{"url": target, "attempts": attempt}).Info("Connected to renderer")
			c.readyOnce.Do(func() { close(c.ready) })
			c.readLoop(conn)
			return
		}

		c.logger.WithError(err).WithField("url", target).Debug("Renderer not reachable yet, retrying")
		select {
		case <-ctx.Done():
			c.finish(ctx.Err())
			return
		case <-c.done:
			return
		case <-time.After(c.retry):
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("Renderer closed the connection")
			} else {
				select {
				case <-c.done:
				default:
					c.logger.WithError(err).Warn("Renderer connection lost")
				}
			}
			c.finish(err)
			return
		}
		c.deliver(string(data))
	}
}

// deliver hands a message to every handler in registration order.
func (c *Client) deliver(message string) {
	c.handlersMu.RLock()
	handlers := make([]handlerEntry, len(c.handlers))
	copy(handlers, c.handlers)
	c.handlersMu.RUnlock()

	for _, h := range handlers {
		h.fn(message)
	}
}

// OnMessage registers a handler. Handlers run synchronously on the read
// loop, in the order they were registered.
func (c *Client) OnMessage(h Handler) (unsubscribe func()) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	c.nextID++
	id := c.nextID
	c.handlers = append(c.handlers, handlerEntry{id: id, fn: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.handlersMu.Lock()
			defer c.handlersMu.Unlock()
			for i, e := range c.handlers {
				if e.id == id {
					c.handlers = append(c.handlers[:i:i], c.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// Ready is closed once the connection is open.
func (c *Client) Ready() <-chan struct{} {
	return c.ready
}

// Done is closed when the session ends for any reason.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns why the session ended, or nil while it is alive.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Send writes one text message, waiting for the connection to open first.
// It fails only if ctx ends or the session is over.
func (c *Client) Send(ctx context.Context, text string) error {
	select {
	case <-c.ready:
	case <-c.done:
		return errors.TransportClosed(c.Err())
	case <-ctx.Done():
		return ctx.Err()
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.done:
		return errors.TransportClosed(c.Err())
	default:
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		c.finish(err)
		return errors.TransportClosed(err)
	}
	c.logger.WithField("command", truncate(text, 80)).Debug("Sent")
	return nil
}

// Close ends the session, sending a close frame if the connection is open.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	c.finish(ErrClosedByClient)
	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.writeMu.Unlock()

	if err := conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (c *Client) finish(err error) {
	c.doneOnce.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		close(c.done)
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
