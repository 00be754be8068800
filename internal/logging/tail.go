package logging

import (
	"strings"
	"sync"
)

// Tail is an io.Writer that keeps the most recent log lines in memory.
// It stands in for stdout while a full-screen UI owns the terminal.
type Tail struct {
	mu      sync.Mutex
	limit   int
	lines   []string
	partial string
}

// NewTail returns a Tail holding at most limit lines.
func NewTail(limit int) *Tail {
	if limit < 1 {
		limit = 1
	}
	return &Tail{limit: limit}
}

// Write implements io.Writer.
func (t *Tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	text := t.partial + string(p)
	parts := strings.Split(text, "\n")
	t.partial = parts[len(parts)-1]
	for _, line := range parts[:len(parts)-1] {
		t.lines = append(t.lines, strings.TrimRight(line, "\r"))
	}
	if over := len(t.lines) - t.limit; over > 0 {
		t.lines = append([]string(nil), t.lines[over:]...)
	}
	return len(p), nil
}

// Lines returns a copy of the buffered lines, oldest first.
func (t *Tail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}
