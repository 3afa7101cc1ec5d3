package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/randutil"
)

// Server exposes the configured tables over WebSocket. Each table runs
// its own Session; connections claim a seat and route actions into that
// session's queue.
type Server struct {
	cfg      *Config
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session
	seats    map[string]map[int]bool
}

// NewServer builds a server and one session per configured table. Table
// RNGs are derived from seed so a run is reproducible end to end.
func NewServer(cfg *Config, logger *log.Logger, clock quartz.Clock, seed int64) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[string]*Session),
		seats:    make(map[string]map[int]bool),
	}

	for i, table := range cfg.Tables {
		rng := randutil.New(seed + int64(i))
		s.sessions[table.Name] = NewSession(table, logger, clock, rng)
		s.seats[table.Name] = make(map[int]bool)
	}

	return s
}

// Run serves until the context is cancelled or a session fails. Table
// sessions and the HTTP listener run under one errgroup so any failure
// tears the whole server down.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for name, session := range s.sessions {
		g.Go(func() error {
			s.logger.Info("table running", "table", name)
			return session.Run(ctx)
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	httpServer := &http.Server{Addr: s.cfg.ListenAddress(), Handler: mux}

	g.Go(func() error {
		s.logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Session returns the session for a table name, or nil.
func (s *Server) Session(table string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[table]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// handleWebSocket upgrades a connection and binds it to a seat at a
// table. Query parameters: table (name), seat (index).
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	seat, err := strconv.Atoi(r.URL.Query().Get("seat"))
	if err != nil {
		http.Error(w, "seat must be an integer", http.StatusBadRequest)
		return
	}

	session := s.Session(table)
	if session == nil {
		http.Error(w, "unknown table", http.StatusNotFound)
		return
	}
	if seat < 0 || seat >= len(session.Snapshot().Players) {
		http.Error(w, "seat out of range", http.StatusBadRequest)
		return
	}
	if !s.claimSeat(table, seat) {
		http.Error(w, "seat taken", http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.releaseSeat(table, seat)
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:    conn,
		session: session,
		seat:    seat,
		send:    make(chan any, 32),
		logger:  s.logger.With("table", table, "seat", seat),
	}

	s.logger.Info("player connected", "table", table, "seat", seat)
	c.run(r.Context())
	s.releaseSeat(table, seat)
	s.logger.Info("player disconnected", "table", table, "seat", seat)
}

func (s *Server) claimSeat(table string, seat int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	taken := s.seats[table]
	if taken[seat] {
		return false
	}
	taken[seat] = true
	return true
}

func (s *Server) releaseSeat(table string, seat int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seats[table], seat)
}

// client is one seated websocket connection. All writes go through the
// send channel so only the write pump touches the socket.
type client struct {
	conn    *websocket.Conn
	session *Session
	seat    int
	send    chan any
	logger  *log.Logger
}

func (c *client) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	states, unsubscribe := c.session.Subscribe()
	defer unsubscribe()

	go c.writePump(ctx)
	go c.statePump(ctx, states)

	// Push the current state so a reconnecting player is not blind
	// until the next action.
	c.enqueueState(c.session.Snapshot())

	c.readPump(ctx)
	_ = c.conn.Close()
}

// readPump parses action messages and feeds them to the session,
// reporting rejections back to this client only.
func (c *client) readPump(ctx context.Context) {
	for {
		var msg ActionMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}

		action, ok := parseAction(msg.Action)
		if !ok {
			c.send <- ErrorMessage{Type: "error", Reason: fmt.Sprintf("unknown action %q", msg.Action)}
			continue
		}

		if err := c.session.Submit(ctx, c.seat, action, msg.Amount); err != nil {
			var rej *game.Rejection
			if errors.As(err, &rej) {
				c.send <- ErrorMessage{Type: "error", Reason: rej.Reason}
				continue
			}
			return
		}
	}
}

func (c *client) statePump(ctx context.Context, states <-chan *game.GameState) {
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			c.enqueueState(state)
		}
	}
}

func (c *client) enqueueState(state *game.GameState) {
	view := projectState(c.session.HandID(), state, c.seat)
	select {
	case c.send <- view:
	default:
		return
	}

	if required := actionRequired(state); required != nil && required.Seat == c.seat {
		select {
		case c.send <- *required:
		default:
		}
	}
}

func (c *client) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("write failed", "error", err)
				_ = c.conn.Close()
				return
			}
		}
	}
}
