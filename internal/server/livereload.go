package server

import (
	"bytes"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// LiveReloadPath is the websocket endpoint pages connect to.
const LiveReloadPath = "/livereload"

// reloadClient is appended to served HTML pages when live reload is on.
const reloadClient = `<script>
(function() {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "` + LiveReloadPath + `");
  ws.onmessage = function() { location.reload(); };
})();
</script>`

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// reloadMessage is the outgoing websocket message.
type reloadMessage struct {
	Type  string   `json:"type"`
	Paths []string `json:"paths,omitempty"`
}

// Hub tracks connected pages and notifies them of rebuilds.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	logger  *zap.SugaredLogger
}

// NewHub returns an empty hub.
func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{}), logger: logger}
}

// ServeHTTP upgrades the request and holds the connection until the page
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("livereload upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debugw("livereload read", "error", err)
			}
			return
		}
	}
}

// Broadcast sends a reload message to every connected page.
func (h *Hub) Broadcast(paths []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg := reloadMessage{Type: "reload", Paths: paths}
	for conn := range h.clients {
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debugw("livereload write", "error", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Clients reports the number of connected pages.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every page.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// staticHandler serves files from the site directory, adding the reload
// client to HTML pages when live reload is on.
func (s *Server) staticHandler(files http.Handler) http.Handler {
	if !s.cfg.LiveReload {
		return files
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/") {
			name = path.Join(name, "index.html")
		}
		if path.Ext(name) != ".html" {
			files.ServeHTTP(w, r)
			return
		}
		data, err := os.ReadFile(filepath.Join(s.cfg.Dir, filepath.FromSlash(name)))
		if err != nil {
			files.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(injectReloadClient(data))
	})
}

// injectReloadClient places the client before </body>, or at the end when
// the page has none.
func injectReloadClient(page []byte) []byte {
	i := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if i < 0 {
		return append(page, reloadClient...)
	}
	out := make([]byte, 0, len(page)+len(reloadClient))
	out = append(out, page[:i]...)
	out = append(out, reloadClient...)
	return append(out, page[i:]...)
}
