package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

// maxHeldBytes bounds what is kept while terminal output is held.
const maxHeldBytes = 64 << 10

// terminalSink is the stderr side of every logger. While the console owns
// the screen, entries are held back and written once it lets go.
type terminalSink struct {
	mu      sync.Mutex
	w       io.Writer
	holding bool
	held    bytes.Buffer
	dropped int
}

func (s *terminalSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.holding {
		return s.w.Write(p)
	}
	if s.held.Len()+len(p) > maxHeldBytes {
		s.dropped++
		return len(p), nil
	}
	s.held.Write(p)
	return len(p), nil
}

func (s *terminalSink) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

func (s *terminalSink) hold() func() {
	s.mu.Lock()
	s.holding = true
	s.mu.Unlock()

	var once sync.Once
	return func() { once.Do(s.release) }
}

func (s *terminalSink) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holding = false
	if s.held.Len() > 0 {
		_, _ = s.w.Write(s.held.Bytes())
		s.held.Reset()
	}
	if s.dropped > 0 {
		fmt.Fprintf(s.w, "(%d log entries dropped while the console was open)\n", s.dropped)
		s.dropped = 0
	}
}

var terminal = &terminalSink{w: os.Stderr}

// SetGlobalOutput redirects the terminal sink of every logger.
func SetGlobalOutput(w io.Writer) {
	terminal.set(w)
}

// GetGlobalOutput returns the terminal sink shared by every logger.
func GetGlobalOutput() io.Writer {
	return terminal
}

// HoldGlobalOutput keeps log entries off the terminal until the returned
// function is called, then writes them out in order. The console holds
// output for as long as it owns the alternate screen.
func HoldGlobalOutput() (release func()) {
	return terminal.hold()
}
