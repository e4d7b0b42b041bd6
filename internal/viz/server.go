// Package viz pushes the progress snapshot to dashboard clients over a
// websocket. It only ever reads snapshots; it never blocks the pipeline.
package viz

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/openclaw/forge/internal/logging"
	"github.com/openclaw/forge/internal/progress"
)

// pushInterval is how often the current snapshot is sent to each client.
const pushInterval = 100 * time.Millisecond

// Server serves the run status over /ws.
type Server struct {
	record   *progress.Record
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a Server over the shared progress record.
func NewServer(record *progress.Record, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.New().WithComponent("viz")
	}
	return &Server{
		record:   record,
		logger:   logger,
		upgrader: websocket.Upgrader{},
	}
}

// Start begins listening on addr and serving in a background goroutine.
// It returns the bound address so callers (and tests using ":0") know
// where to connect.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/status", s.handleStatus)

	go func() {
		if err := http.Serve(ln, mux); err != nil {
			s.logger.Debug("server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	s.logger.Info("dashboard listening", map[string]interface{}{"addr": ln.Addr().String()})
	return ln.Addr().String(), nil
}

// Close stops the listener. In-flight websocket loops exit on their next
// write.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// handleWS streams the snapshot to one client until the write fails.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(pushInterval)
	defer ticker.Stop()

	for range ticker.C {
		payload, err := json.Marshal(s.record.Snapshot())
		if err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// handleStatus serves a one-shot JSON snapshot for polling clients.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.record.Snapshot())
}
