// Package server exposes a simulation's stats to external diagnostics
// overlays: a JSON snapshot endpoint for one-shot reads and a
// websocket stream for live HUDs. It only ever reads immutable
// snapshots, so it never touches the tick loop's data structures.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/simcore/internal/config"
	"github.com/zeusync/simcore/internal/core/observability/log"
	"github.com/zeusync/simcore/internal/sim"
)

const writeTimeout = 5 * time.Second

// SnapshotSource supplies the stats to serve. *sim.Simulation
// satisfies it.
type SnapshotSource interface {
	Snapshot() sim.Snapshot
}

// Server is the diagnostics endpoint for one simulation instance.
type Server struct {
	cfg    config.DiagConfig
	logger *log.Logger
	source SnapshotSource

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[uuid.UUID]*websocket.Conn
}

// New creates a diagnostics server reading from the given source.
func New(cfg config.DiagConfig, source SnapshotSource, logger *log.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[uuid.UUID]*websocket.Conn),
	}
}

// Handler returns the HTTP routes. Split out from Run so tests can
// drive them through httptest without opening a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Run serves until the context is cancelled, then shuts down
// gracefully and disconnects every websocket subscriber.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("diagnostics server listening", log.String("addr", s.cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		s.broadcast(ctx)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.closeClients()
		return err
	})

	return g.Wait()
}

// broadcast pushes a stats frame to every subscriber at the configured
// interval. Frames identical to the previous one are skipped; the
// comparison hashes the encoded payload, which is cheaper than keeping
// and comparing a decoded copy.
func (s *Server) broadcast(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval())
	defer ticker.Stop()

	var lastFrame uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload, err := json.Marshal(s.source.Snapshot())
			if err != nil {
				s.logger.Error("snapshot encode failed", log.Error(err))
				continue
			}
			frame := xxhash.Sum64(payload)
			if frame == lastFrame {
				continue
			}
			lastFrame = frame
			s.send(payload)
		}
	}
}

func (s *Server) send(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conn := range s.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.logger.Debug("dropping subscriber",
				log.String("session_id", id.String()), log.Error(err))
			_ = conn.Close()
			delete(s.clients, id)
		}
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conn := range s.clients {
		_ = conn.Close()
		delete(s.clients, id)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.source.Snapshot()); err != nil {
		s.logger.Error("stats encode failed", log.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	id := uuid.New()
	s.mu.Lock()
	s.clients[id] = conn
	s.mu.Unlock()
	s.logger.Info("subscriber connected", log.String("session_id", id.String()))

	// Push the current snapshot immediately so a HUD renders without
	// waiting for the next interval.
	if payload, err := json.Marshal(s.source.Snapshot()); err == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = conn.WriteMessage(websocket.TextMessage, payload)
	}

	// Subscribers never send data; the read loop only notices closure.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		s.mu.Lock()
		if _, ok := s.clients[id]; ok {
			delete(s.clients, id)
			_ = conn.Close()
		}
		s.mu.Unlock()
		s.logger.Info("subscriber disconnected", log.String("session_id", id.String()))
	}()
}
