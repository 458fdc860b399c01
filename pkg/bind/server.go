package bind

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vango-dev/pulse/internal/errors"
	"github.com/vango-dev/pulse/pkg/microtask"
	"github.com/vango-dev/pulse/pkg/reactive"
	"go.uber.org/zap"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// ReadBufferSize is the WebSocket read buffer size in bytes.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size in bytes.
	WriteBufferSize int

	// AllowedOrigins lists the origins allowed to open a WebSocket.
	// "*" allows any origin. Empty allows same-origin requests only.
	AllowedOrigins []string

	// WriteTimeout bounds each WebSocket write.
	WriteTimeout time.Duration

	// SendQueueSize is the number of frames buffered per client. A client
	// that falls further behind is disconnected.
	SendQueueSize int

	// MaxBodyBytes bounds PUT request bodies.
	MaxBodyBytes int64
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		WriteTimeout:    10 * time.Second,
		SendQueueSize:   64,
		MaxBodyBytes:    1 << 20,
	}
}

// Server serves a Registry over HTTP and WebSocket.
type Server struct {
	loop     *microtask.Loop
	registry *Registry
	config   *ServerConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[string]*client
}

// NewServer creates a server. Cells in registry must be owned by loop: every
// read and write the server makes runs through loop.Do.
func NewServer(loop *microtask.Loop, registry *Registry, config *ServerConfig, logger *zap.Logger) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		loop:     loop,
		registry: registry,
		config:   config,
		logger:   logger.With(zap.String("component", "bind")),
		clients:  make(map[string]*client),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the server's routes.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/state", srv.Handler())
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/cells", s.handleList)
	r.Get("/cells/{name}", s.handleGet)
	r.Put("/cells/{name}", s.handleSet)
	r.Get("/actions", s.handleActions)
	r.Post("/actions/{name}", s.handleAction)
	r.Get("/ws", s.HandleWebSocket)
	return r
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects every WebSocket client.
func (s *Server) Close() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var states []CellState
	err := s.loop.Do(r.Context(), func() {
		states = s.registry.Snapshot()
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	cell, err := s.registry.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var state CellState
	err = s.loop.Do(r.Context(), func() {
		state = stateOf(cell)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	cell, err := s.registry.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body struct {
		Value json.RawMessage `json:"value"`
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, s.config.MaxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, errors.New("E121").Wrap(err))
		return
	}
	value, err := decodeValue(cell, body.Value)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var (
		state  CellState
		setErr error
	)
	err = s.loop.Do(r.Context(), func() {
		if setErr = cell.SetAny(value); setErr == nil {
			state = stateOf(cell)
		}
	})
	if err == nil {
		err = setErr
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Actions())
}

// handleAction runs an action and responds with every cell's new value.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if err := s.invoke(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, err)
		return
	}

	var states []CellState
	if err := s.loop.Do(r.Context(), func() { states = s.registry.Snapshot() }); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

// HandleWebSocket upgrades the request and streams cell values until the
// client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(uuid.NewString(), conn, s.config, s.logger)
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.logger.Info("client connected", zap.String("client", c.id))

	go c.writePump()

	err = s.loop.Do(r.Context(), func() {
		for _, name := range s.registry.Names() {
			cell, err := s.registry.Lookup(name)
			if err != nil {
				continue
			}
			c.watch(name, cell)
		}
	})
	if err == nil {
		s.readPump(r.Context(), c)
	} else {
		s.logger.Warn("subscribe failed", zap.String("client", c.id), zap.Error(err))
	}

	// Disposing on the loop means no listener can push to c afterwards.
	if err := s.loop.Do(context.Background(), c.dispose); err != nil {
		s.logger.Debug("dispose skipped", zap.String("client", c.id), zap.Error(err))
	}
	c.close()

	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	s.logger.Info("client disconnected", zap.String("client", c.id))
}

// readPump applies set and action frames until the connection fails.
func (s *Server) readPump(ctx context.Context, c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed", zap.String("client", c.id), zap.Error(err))
			}
			return
		}

		frame, err := parseFrame(data)
		if err != nil {
			c.sendError(frame.Cell, err)
			continue
		}
		if frame.Type == FrameAction {
			err = s.invoke(ctx, frame.Action)
		} else {
			err = s.apply(ctx, frame)
		}
		if err != nil {
			c.sendError(frame.Cell, err)
			if stderrors.Is(err, microtask.ErrLoopClosed) {
				return
			}
		}
	}
}

// apply sets a cell from a set frame.
func (s *Server) apply(ctx context.Context, frame Frame) error {
	cell, err := s.registry.Lookup(frame.Cell)
	if err != nil {
		return err
	}
	value, err := decodeValue(cell, frame.Value)
	if err != nil {
		return err
	}

	var setErr error
	if err := s.loop.Do(ctx, func() { setErr = cell.SetAny(value) }); err != nil {
		return err
	}
	return setErr
}

// invoke runs the named action on the loop.
func (s *Server) invoke(ctx context.Context, name string) error {
	action, err := s.registry.Action(name)
	if err != nil {
		return err
	}
	return s.loop.Do(ctx, action)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	// Same-origin fallback, as websocket.Upgrader does without CheckOrigin.
	host := strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
	return strings.EqualFold(host, r.Host)
}

// writeError writes err as a JSON error object with a status derived from
// its code.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	perr := coded(err)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("error", perr.FormatCompact()), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, perr.FormatJSON()+"\n")
}

func statusFor(err error) int {
	switch {
	case stderrors.Is(err, ErrUnknownCell), stderrors.Is(err, ErrUnknownAction):
		return http.StatusNotFound
	case stderrors.Is(err, ErrMalformedFrame), stderrors.Is(err, reactive.ErrTypeMismatch):
		return http.StatusBadRequest
	case stderrors.Is(err, reactive.ErrReadOnly):
		return http.StatusConflict
	case stderrors.Is(err, microtask.ErrLoopClosed):
		return http.StatusServiceUnavailable
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
