// Package stream serves the maintenance ledger over HTTP: a WebSocket
// feed of committed entries plus JSON endpoints for tasks and history.
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventlog"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/ledger"
)

// Server exposes a chain read-only. Writes go through the CLI or embed
// the coordinator directly; the server only observes commits.
type Server struct {
	mu sync.Mutex

	chain    *ledger.Chain
	logger   *slog.Logger
	upgrader websocket.Upgrader
	clients  map[*client]bool
}

type client struct {
	id       string
	conn     *websocket.Conn
	sendChan chan []byte
	cancel   func()
}

// NewServer creates a server for the given chain.
func NewServer(chain *ledger.Chain, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		chain:   chain,
		logger:  logger,
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeHTTP handles HTTP requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/ws":
		s.handleWebSocket(w, r)
	case r.URL.Path == "/health":
		s.handleHealth(w, r)
	case r.URL.Path == "/log":
		s.handleLog(w, r)
	case r.URL.Path == "/tasks":
		s.handleTasks(w, r)
	case strings.HasPrefix(r.URL.Path, "/tasks/"):
		s.handleTask(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	connected := len(s.clients)
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"status":       "ok",
		"entries":      len(s.chain.Log()),
		"tasks":        s.chain.TokenIDCounter(),
		"certificates": s.chain.CertificateCount(),
		"clients":      connected,
	})
}

// handleLog returns the commit log, optionally from a sequence number
// given as ?from=N.
func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	entries := s.chain.Log()
	if from := r.URL.Query().Get("from"); from != "" {
		seq, err := strconv.ParseUint(from, 10, 64)
		if err != nil {
			http.Error(w, "invalid from parameter", http.StatusBadRequest)
			return
		}
		if seq < uint64(len(entries)) {
			entries = entries[seq:]
		} else {
			entries = nil
		}
	}
	writeJSON(w, entries)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.chain.Tasks())
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(strings.TrimPrefix(r.URL.Path, "/tasks/"), 10, 64)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	task, err := s.chain.MaintenanceTask(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, task)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	entries, cancel := s.chain.Subscribe()
	c := &client{
		id:       uuid.NewString(),
		conn:     conn,
		sendChan: make(chan []byte, 256),
		cancel:   cancel,
	}

	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()

	s.logger.Info("client connected", "client", c.id)

	go c.writePump(s.logger)
	go s.forwardEntries(c, entries)
	s.readPump(c)
}

// forwardEntries pushes committed entries to the client until its
// subscription is cancelled.
func (s *Server) forwardEntries(c *client, entries <-chan eventlog.Entry) {
	for e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			s.logger.Error("marshal entry", "seq", e.Seq, "err", err)
			continue
		}
		select {
		case c.sendChan <- data:
		default:
			s.logger.Warn("client send buffer full", "client", c.id)
		}
	}
}

// readPump consumes the client's messages, which carry no commands; it
// exists to observe pongs and detect disconnects.
func (s *Server) readPump(c *client) {
	defer s.removeClient(c)

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Error("client read error", "client", c.id, "err", err)
			}
			return
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	// sendChan stays open: forwardEntries may still be draining the
	// subscription. writePump exits on its next write to the closed conn.
	c.cancel()
	c.conn.Close()
	s.logger.Info("client disconnected", "client", c.id)
}

func (c *client) writePump(logger *slog.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.sendChan:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("client write error", "client", c.id, "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
