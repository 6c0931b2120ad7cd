package web

import (
	"encoding/json"
	"net/http"
	"time"
)

// Snapshot is the monitor view of both axes, in degrees.
type Snapshot struct {
	PanCurrent  float64 `json:"pan_current"`
	PanTarget   float64 `json:"pan_target"`
	TiltCurrent float64 `json:"tilt_current"`
	TiltTarget  float64 `json:"tilt_target"`
}

// SnapshotFunc returns the live axis state. Called from HTTP handler
// goroutines, so the implementation must be safe for concurrent use.
type SnapshotFunc func() Snapshot

// Handlers holds dependencies for HTTP handlers. The monitor is strictly
// read-only: targets only ever come from the serial host.
type Handlers struct {
	Broadcaster *Broadcaster
	Snapshot    SnapshotFunc
}

// NewHandlers creates handlers with the given dependencies.
func NewHandlers(broadcaster *Broadcaster, snapshot SnapshotFunc) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Snapshot:    snapshot,
	}
}

// HandleStatus returns the current axis state as JSON.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if h.Snapshot == nil {
		http.Error(w, "status not configured", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Snapshot())
}

// ServeIndex serves the monitor page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

// HandleLogStream handles GET /log/stream for SSE.
func (h *Handlers) HandleLogStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>pantiltd monitor</title>
<style>
body { font-family: monospace; background: #1e1e1e; color: #ddd; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1em; }
td, th { border: 1px solid #555; padding: 0.3em 0.8em; }
#log { white-space: pre; border: 1px solid #555; padding: 0.5em; height: 20em; overflow-y: scroll; }
</style>
</head>
<body>
<h1>pantiltd monitor</h1>
<table>
<tr><th></th><th>current</th><th>target</th></tr>
<tr><td>pan</td><td id="pc">-</td><td id="pt">-</td></tr>
<tr><td>tilt</td><td id="tc">-</td><td id="tt">-</td></tr>
</table>
<div id="log"></div>
<script>
async function refresh() {
  const r = await fetch('/status');
  const s = await r.json();
  document.getElementById('pc').textContent = s.pan_current.toFixed(1);
  document.getElementById('pt').textContent = s.pan_target.toFixed(1);
  document.getElementById('tc').textContent = s.tilt_current.toFixed(1);
  document.getElementById('tt').textContent = s.tilt_target.toFixed(1);
}
setInterval(refresh, 250);
refresh();
const log = document.getElementById('log');
const es = new EventSource('/log/stream');
es.onmessage = (e) => {
  const evt = JSON.parse(e.data);
  log.textContent += evt.t + ' ' + evt.msg + '\n';
  log.scrollTop = log.scrollHeight;
};
</script>
</body>
</html>
`
