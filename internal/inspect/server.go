// Package inspect serves a live view of a running solver over a websocket.
// Clients send JSON commands to move the focus or pause the worker and
// receive msgpack snapshot frames of the focus node, both in reply and on a
// fixed refresh interval.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/tinylib/msgp/msgp"

	"github.com/lox/bombpot/sdk/solver"
)

// DefaultHandLimit caps the hand rows in a snapshot.
const DefaultHandLimit = 50

// Target is the solver surface the inspector drives. *solver.Solver
// implements it.
type Target interface {
	Root() *solver.Node
	Focus() *solver.Node
	SetFocus(*solver.Node)
	Pause()
	Resume()
	Stats() solver.Stats
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock replaces the clock driving snapshot pushes.
func WithClock(c quartz.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithRefresh sets how often snapshots are pushed. Zero disables pushes.
func WithRefresh(d time.Duration) Option {
	return func(s *Server) { s.refresh = d }
}

// WithHandLimit caps the hand rows per snapshot.
func WithHandLimit(n int) Option {
	return func(s *Server) { s.handLimit = n }
}

// Server is the inspector websocket server.
type Server struct {
	target    Target
	logger    *log.Logger
	clock     quartz.Clock
	refresh   time.Duration
	handLimit int
	validator *validator
	upgrader  websocket.Upgrader

	mu    sync.RWMutex
	conns map[*conn]struct{}
}

// New creates a server for target.
func New(target Target, opts ...Option) (*Server, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	s := &Server{
		target:    target,
		logger:    log.New(io.Discard),
		clock:     quartz.NewReal(),
		refresh:   time.Second,
		handLimit: DefaultHandLimit,
		validator: v,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		conns: make(map[*conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithPrefix("inspect")
	return s, nil
}

// Handler returns the HTTP routes: /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, pushing snapshots to
// every client on the refresh interval.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.refresh > 0 {
		s.clock.TickerFunc(ctx, s.refresh, func() error {
			s.Broadcast()
			return nil
		}, "inspect", "push")
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting inspector", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.closeAll()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	err := httpServer.Shutdown(shutdownCtx)
	s.closeAll()
	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	s.logger.Info("Inspector stopped")
	return err
}

// Broadcast sends a snapshot of the focus node to every client.
func (s *Server) Broadcast() {
	s.mu.RLock()
	n := len(s.conns)
	s.mu.RUnlock()
	if n == 0 {
		return
	}

	frame, err := Marshal(s.Snapshot())
	if err != nil {
		s.logger.Error("Failed to encode snapshot", "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.conns {
		c.enqueue(frame)
	}
	s.logger.Debug("Pushed snapshot", "clients", n)
}

// Snapshot describes the target and its focus node now.
func (s *Server) Snapshot() *Snapshot {
	st := s.target.Stats()
	return &Snapshot{
		Type:          TypeSnapshot,
		State:         st.State.String(),
		Iterations:    st.Iterations,
		DecisionNodes: st.DecisionNodes,
		ChanceNodes:   st.ChanceNodes,
		Node:          newNodeFrame(s.target.Focus().Report(s.handLimit)),
	}
}

// Apply executes cmd against the target.
func (s *Server) Apply(cmd Command) error {
	switch cmd.Type {
	case CommandSnapshot:
	case CommandRoot:
		s.target.SetFocus(s.target.Root())
	case CommandParent:
		if p := s.target.Focus().Parent(); p != nil {
			s.target.SetFocus(p)
		}
	case CommandFocus:
		n, err := solver.Navigate(s.target.Root(), cmd.Path)
		if err != nil {
			return err
		}
		s.target.SetFocus(n)
	case CommandPause:
		s.target.Pause()
	case CommandResume:
		s.target.Resume()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	return nil
}

// handleCommand parses and applies a raw client message and returns the
// frame to send back.
func (s *Server) handleCommand(data []byte) []byte {
	var reply msgp.Encodable
	cmd, err := s.validator.parse(data)
	if err == nil {
		err = s.Apply(cmd)
	}
	if err != nil {
		s.logger.Warn("Rejected command", "error", err)
		reply = &ErrorFrame{Type: TypeError, Message: err.Error()}
	} else {
		s.logger.Debug("Applied command", "type", cmd.Type, "path", cmd.Path)
		reply = s.Snapshot()
	}

	frame, err := Marshal(reply)
	if err != nil {
		s.logger.Error("Failed to encode reply", "error", err)
		return nil
	}
	return frame
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := newConn(ws, s)
	s.mu.Lock()
	s.conns[c] = struct{}{}
	total := len(s.conns)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)

	c.start()
	go func() {
		<-c.ctx.Done()
		s.mu.Lock()
		delete(s.conns, c)
		total := len(s.conns)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "total", total)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) closeAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.conns {
		_ = c.close()
	}
}
