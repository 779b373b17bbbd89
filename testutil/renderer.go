// Package testutil provides a fake renderer for tests: a WebSocket endpoint
// that records commands and pushes directives, plus HTTP document serving.
package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// ReplyFunc returns the directives sent back for one received command.
type ReplyFunc func(command string) []string

// Renderer is an in-process stand-in for the mViewer backend.
type Renderer struct {
	Server *httptest.Server

	upgrader websocket.Upgrader
	writeMu  sync.Mutex

	mu        sync.Mutex
	commands  []string
	documents map[string][]byte
	statuses  map[string]int
	requests  map[string][]string
	conns     []*websocket.Conn
	reply     ReplyFunc

	received  chan string
	connected chan struct{}
	connOnce  sync.Once
}

// NewRenderer starts a fake renderer. It is shut down when the test ends.
func NewRenderer(t *testing.T) *Renderer {
	t.Helper()
	r := newRenderer()
	r.Server = httptest.NewServer(r)
	t.Cleanup(r.Close)
	return r
}

// NewUnstartedRenderer returns a renderer whose server has not been started,
// so clients can be created before it listens.
func NewUnstartedRenderer(t *testing.T) *Renderer {
	t.Helper()
	r := newRenderer()
	r.Server = httptest.NewUnstartedServer(r)
	t.Cleanup(r.Close)
	return r
}

func newRenderer() *Renderer {
	return &Renderer{
		documents: map[string][]byte{},
		statuses:  map[string]int{},
		requests:  map[string][]string{},
		received:  make(chan string, 256),
		connected: make(chan struct{}),
	}
}

// Start starts an unstarted renderer.
func (r *Renderer) Start() {
	r.Server.Start()
}

// Close drops every connection and stops the server.
func (r *Renderer) Close() {
	r.CloseConnections()
	r.Server.Close()
}

// HostPort splits the server address.
func (r *Renderer) HostPort(t *testing.T) (string, int) {
	t.Helper()
	host, port, err := net.SplitHostPort(r.Server.Listener.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return host, p
}

// BaseURL is the HTTP root that serves documents.
func (r *Renderer) BaseURL() string {
	return r.Server.URL + "/"
}

// SetDocument serves body at /name.
func (r *Renderer) SetDocument(name string, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents[name] = []byte(body)
	delete(r.statuses, name)
}

// FailDocument makes /name answer with status.
func (r *Renderer) FailDocument(name string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[name] = status
}

// OnCommand installs a reply function for received commands.
func (r *Renderer) OnCommand(fn ReplyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reply = fn
}

// Connected is closed when the first client connects.
func (r *Renderer) Connected() <-chan struct{} {
	return r.connected
}

// Push sends a directive to every connected client.
func (r *Renderer) Push(t *testing.T, directive string) {
	t.Helper()
	r.mu.Lock()
	conns := append([]*websocket.Conn(nil), r.conns...)
	r.mu.Unlock()
	for _, c := range conns {
		require.NoError(t, r.write(c, directive))
	}
}

// CloseConnections closes every client connection without a close frame.
func (r *Renderer) CloseConnections() {
	r.mu.Lock()
	conns := r.conns
	r.conns = nil
	r.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}

// Commands returns a copy of every command received so far.
func (r *Renderer) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

// Requests returns the seed query values seen for /name.
func (r *Renderer) Requests(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requests[name]...)
}

// WaitForCommand returns the next received command or fails the test.
func (r *Renderer) WaitForCommand(t *testing.T, timeout time.Duration) string {
	t.Helper()
	select {
	case cmd := <-r.received:
		return cmd
	case <-time.After(timeout):
		t.Fatalf("no command received within %s (so far: %q)", timeout, r.Commands())
		return ""
	}
}

// ExpectNoCommand fails the test if a command arrives within d.
func (r *Renderer) ExpectNoCommand(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case cmd := <-r.received:
		t.Fatalf("unexpected command %q", cmd)
	case <-time.After(d):
	}
}

// ServeHTTP serves /ws as a WebSocket and everything else from documents.
func (r *Renderer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path == "/ws" {
		r.serveWS(w, req)
		return
	}

	name := strings.TrimPrefix(req.URL.Path, "/")
	r.mu.Lock()
	r.requests[name] = append(r.requests[name], req.URL.Query().Get("seed"))
	status, failed := r.statuses[name]
	body, ok := r.documents[name]
	r.mu.Unlock()

	switch {
	case failed:
		http.Error(w, http.StatusText(status), status)
	case !ok:
		http.NotFound(w, req)
	default:
		_, _ = w.Write(body)
	}
}

func (r *Renderer) serveWS(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	r.mu.Lock()
	r.conns = append(r.conns, conn)
	r.mu.Unlock()
	r.connOnce.Do(func() { close(r.connected) })

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		cmd := string(data)

		r.mu.Lock()
		r.commands = append(r.commands, cmd)
		reply := r.reply
		r.mu.Unlock()

		select {
		case r.received <- cmd:
		default:
		}

		if reply != nil {
			for _, d := range reply(cmd) {
				if err := r.write(conn, d); err != nil {
					return
				}
			}
		}
	}
}

func (r *Renderer) write(conn *websocket.Conn, text string) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}
