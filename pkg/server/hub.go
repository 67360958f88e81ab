package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/goliatone/go-schemaforge/pkg/fieldtree"
	"github.com/goliatone/go-schemaforge/pkg/jsonschema"
	"github.com/goliatone/go-schemaforge/pkg/session"
)

// PreviewMessage is pushed to websocket clients on connect and after every
// edit.
type PreviewMessage struct {
	Type    string           `json:"type"`
	Version uint64           `json:"version"`
	Fields  fieldtree.Forest `json:"fields"`
	Schema  json.RawMessage  `json:"schema"`
}

func (s *Server) preview(snap session.Snapshot) (PreviewMessage, error) {
	raw, err := jsonschema.Marshal(s.session.CompileSnapshot(snap))
	if err != nil {
		return PreviewMessage{}, err
	}
	fields := snap.Forest
	if fields == nil {
		fields = fieldtree.Forest{}
	}
	return PreviewMessage{
		Type:    "schema",
		Version: snap.Version,
		Fields:  fields,
		Schema:  raw,
	}, nil
}

type hub struct {
	upgrader     websocket.Upgrader
	logger       Logger
	writeTimeout time.Duration

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// wsClient represents a single websocket connection. Previews are queued in a
// one-slot channel drained by the client's own writer goroutine; a newer
// preview replaces one still waiting, so broadcasting never waits on the
// network.
type wsClient struct {
	conn *websocket.Conn
	send chan PreviewMessage
	done chan struct{}

	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn: conn,
		send: make(chan PreviewMessage, 1),
		done: make(chan struct{}),
	}
}

func newHub(logger Logger, writeTimeout time.Duration, checkOrigin func(*http.Request) bool) *hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		logger:       logger,
		writeTimeout: writeTimeout,
		clients:      make(map[*wsClient]struct{}),
	}
}

// serve upgrades the request, queues the current preview and then keeps the
// connection registered until the client goes away. Incoming messages are
// ignored.
func (h *hub) serve(sess *session.Session, build func(session.Snapshot) (PreviewMessage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", F("error", err))
			return
		}
		client := newClient(conn)

		h.mu.Lock()
		h.clients[client] = struct{}{}
		h.mu.Unlock()
		h.logger.Debug("websocket connected", F("remote", r.RemoteAddr))

		defer func() {
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			client.close()
			h.logger.Debug("websocket disconnected", F("remote", r.RemoteAddr))
		}()

		go h.writeLoop(client)

		msg, err := build(sess.Snapshot())
		if err != nil {
			h.logger.Error("build preview", F("error", err))
			return
		}
		client.enqueue(msg)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// writeLoop sends queued previews in version order, skipping any older than
// the last one written.
func (h *hub) writeLoop(c *wsClient) {
	var (
		last uint64
		sent bool
	)
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if sent && msg.Version <= last {
				continue
			}
			if err := c.write(msg, h.writeTimeout); err != nil {
				h.logger.Warn("websocket write failed", F("error", err))
				c.close()
				return
			}
			last, sent = msg.Version, true
		}
	}
}

func (h *hub) broadcast(msg PreviewMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.enqueue(msg)
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.close()
	}
}

// enqueue never blocks. When the slot is taken the newer of the two previews
// is kept.
func (c *wsClient) enqueue(msg PreviewMessage) {
	for {
		select {
		case <-c.done:
			return
		case c.send <- msg:
			return
		default:
		}
		select {
		case pending := <-c.send:
			if pending.Version > msg.Version {
				msg = pending
			}
		default:
		}
	}
}

func (c *wsClient) write(msg PreviewMessage, timeout time.Duration) error {
	payload, err := gojson.Marshal(msg)
	if err != nil {
		return err
	}
	if timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// close stops the writer and closes the connection. WriteControl may run
// alongside the writer goroutine.
func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = c.conn.Close()
	})
}
