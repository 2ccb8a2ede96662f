package dev

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// ReloadPath is the websocket endpoint browsers connect to.
const ReloadPath = "/_slate/reload"

// Message kinds sent to browsers.
const (
	MessageReload = "reload"
	MessageError  = "error"
)

// Message is one JSON frame on the reload socket. Error is set only for
// MessageError.
type Message struct {
	Kind  string `json:"kind"`
	Error string `json:"error,omitempty"`
}

// ReloadServer keeps the open reload sockets and broadcasts to them.
type ReloadServer struct {
	upgrader websocket.Upgrader

	// mu guards conns and serializes writes.
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewReloadServer creates a ReloadServer accepting any origin.
func NewReloadServer() *ReloadServer {
	return &ReloadServer{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request and holds the socket until the browser
// goes away.
func (s *ReloadServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	s.drop(conn)
}

// Notify tells browsers the outcome of a rebuild: a reload when err is nil,
// otherwise the error text.
func (s *ReloadServer) Notify(err error) {
	msg := Message{Kind: MessageReload}
	if err != nil {
		msg = Message{Kind: MessageError, Error: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		if conn.WriteJSON(msg) != nil {
			delete(s.conns, conn)
			conn.Close()
		}
	}
}

func (s *ReloadServer) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of open sockets.
func (s *ReloadServer) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close closes every open socket.
func (s *ReloadServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
		delete(s.conns, conn)
	}
}

// ClientScript returns the browser side of the reload socket for a server
// mounted at base ("" for the root).
func ClientScript(base string) string {
	return strings.Replace(clientScript, "{{path}}", strings.TrimSuffix(base, "/")+ReloadPath, 1)
}

// The client reconnects every second after the socket closes. An error
// replaces any earlier one in a fixed <pre>; the next reload removes it.
const clientScript = `<script>
(function() {
  function connect() {
    var ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '{{path}}');
    ws.onmessage = function(e) {
      var msg = JSON.parse(e.data);
      if (msg.kind === 'reload') {
        location.reload();
        return;
      }
      var pre = document.getElementById('slate-error') || document.body.appendChild(document.createElement('pre'));
      pre.id = 'slate-error';
      pre.style.cssText = 'position:fixed;inset:0;margin:0;padding:20px;background:#111;color:#f66;white-space:pre-wrap;z-index:99999';
      pre.textContent = msg.error;
    };
    ws.onclose = function() { setTimeout(connect, 1000); };
  }
  connect();
})();
</script>`
