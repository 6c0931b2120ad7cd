package web

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// LogEvent is a single log line for SSE clients.
type LogEvent struct {
	Time string `json:"t"`
	Msg  string `json:"msg"`
}

// Broadcaster fans log lines out to the connected SSE clients.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan string]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives broadcast messages and a cleanup
// function. The caller must call the returned cleanup when done (e.g. on
// client disconnect).
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		delete(b.clients, ch)
		b.mu.Unlock()
		close(ch)
	}
	return ch, unsub
}

// Broadcast sends a message to all subscribed clients as JSON:
// {"t":"...","msg":"..."}. Slow clients may miss messages (non-blocking,
// buffered).
func (b *Broadcaster) Broadcast(msg string) {
	data, err := json.Marshal(LogEvent{
		Time: time.Now().Format(time.RFC3339),
		Msg:  msg,
	})
	if err != nil {
		return
	}
	payload := string(data)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- payload:
		default:
			// channel full, skip
		}
	}
}

// Writer wraps the broadcaster as an io.Writer so it can sit in an
// io.MultiWriter behind debug.SetOutput.
func Writer(b *Broadcaster) *broadcastWriter {
	return &broadcastWriter{b: b}
}

type broadcastWriter struct {
	b *Broadcaster
}

func (w *broadcastWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		w.b.Broadcast(msg)
	}
	return len(p), nil
}
