// Package server exposes AIBA's handler results as a WebSocket event feed and
// serves a JSON snapshot of memory.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/GriffinCanCode/aiba/internal/memory"
	"github.com/GriffinCanCode/aiba/internal/orchestrator"
	"github.com/GriffinCanCode/aiba/internal/trace"
)

// Message is an inbound client message.
type Message struct {
	Type string `json:"type"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PongMessage answers a ping.
type PongMessage struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
}

// MemoryResponse is the body of GET /api/memory.
type MemoryResponse struct {
	Count   int            `json:"count"`
	Entries []memory.Entry `json:"entries"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}
	r.timestamps = append(r.timestamps, now)
	return true
}

// Server streams bus events to WebSocket clients.
type Server struct {
	bus   *orchestrator.Bus
	mem   *memory.Store
	mu    sync.RWMutex
	conns map[*websocket.Conn]*rateLimiter
}

// New creates a server. Call Broadcast to start forwarding events.
func New(bus *orchestrator.Bus, mem *memory.Store) *Server {
	return &Server{
		bus:   bus,
		mem:   mem,
		conns: make(map[*websocket.Conn]*rateLimiter),
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/memory", s.handleMemory)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Apply middleware: trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Clients returns the number of connected WebSocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := trace.Logger(r.Context())
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	rl := &rateLimiter{}
	s.mu.Lock()
	s.conns[conn] = rl
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	ctx := r.Context()
	log.Info("websocket connected", "remote", r.RemoteAddr)

	for {
		var msg Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(ctx, conn, ErrorMessage{Type: "error", Message: "rate limit exceeded"})
			continue
		}

		switch msg.Type {
		case "ping":
			_ = wsjson.Write(ctx, conn, PongMessage{Type: "pong", Time: time.Now()})
		default:
			_ = wsjson.Write(ctx, conn, ErrorMessage{Type: "error", Message: "unknown message type: " + msg.Type})
		}
	}
}

// Broadcast forwards bus events to every connected client until ctx is done.
func (s *Server) Broadcast(ctx context.Context) {
	events, cancel := s.bus.Subscribe(orchestrator.EventBuffer)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			s.send(ctx, evt)
		}
	}
}

func (s *Server) send(ctx context.Context, evt orchestrator.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.conns {
		go func(c *websocket.Conn) {
			wctx, cancel := context.WithTimeout(ctx, WriteTimeout)
			defer cancel()
			if err := wsjson.Write(wctx, c, evt); err != nil {
				trace.Logger(ctx).Debug("event write failed", "type", evt.Type, "error", err)
			}
		}(conn)
	}
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	entries := s.mem.Entries()
	writeJSON(w, MemoryResponse{Count: len(entries), Entries: entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "clients": s.Clients()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Serve serves the feed on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.Broadcast(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			trace.Logger(ctx).Error("http shutdown error", "error", err)
		}
	}()

	trace.Logger(ctx).Info("event feed listening", "addr", ln.Addr().String())
	if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
