package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"memory-duel/internal/config"
	"memory-duel/internal/game"
	"memory-duel/internal/session"
	"memory-duel/internal/store"
	"memory-duel/internal/ws"
)

// ReconnectGracePeriod is how long a session outlives its socket in memory.
// After that a reload resumes from the store.
const ReconnectGracePeriod = 30 * time.Second

var defaultAllowedOrigins = []string{
	"http://localhost",
	"https://localhost",
	"http://127.0.0.1",
	"https://127.0.0.1",
}

// Server holds all server state
type Server struct {
	cfg        *config.Config
	hub        *ws.Hub
	store      store.Store
	logger     *zap.Logger
	facePool   []string
	upgrader   websocket.Upgrader
	sessions   map[string]*session.Session
	sessionsMu sync.RWMutex
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, st store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		hub:      ws.NewHub(logger.Named("hub")),
		store:    st,
		logger:   logger,
		facePool: game.DefaultFacePool(cfg.FacePoolSize),
		sessions: make(map[string]*session.Session),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return isAllowedWebSocketOrigin(r, s.cfg.AllowedWSOrigins)
		},
	}
	return s
}

// routes builds the HTTP handler: gin for routing, gorilla/handlers around it
// for proxy headers, CORS and access logs.
func (s *Server) routes() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ws", s.handleWebSocket)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", s.handleHealth)
		v1.GET("/sessions/:id", s.handleGetSession)
	}

	router.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.cfg.StaticDir))))

	cors := handlers.CORS(
		handlers.AllowedOriginValidator(func(origin string) bool {
			return isOriginAllowed(origin, s.cfg.AllowedWSOrigins)
		}),
		handlers.AllowedMethods([]string{http.MethodGet}),
	)
	accessLog := zap.NewStdLog(s.logger.Named("http")).Writer()

	return handlers.CombinedLoggingHandler(accessLog, handlers.ProxyHeaders(cors(router)))
}

func (s *Server) handleHealth(c *gin.Context) {
	s.sessionsMu.RLock()
	sessions := len(s.sessions)
	s.sessionsMu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": sessions,
		"clients":  s.hub.ClientCount(),
	})
}

// handleGetSession returns the same view a reconnecting socket would get.
func (s *Server) handleGetSession(c *gin.Context) {
	sess := s.getSession(c.Param("id"))
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	view, ok := sess.View()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no game in session"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	// Get session ID from query params or generate new one
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		sessionID = session.NewID()
	}

	client := ws.NewClient(s.hub, conn, sessionID)
	client.SetOnDisconnect(s.handleClientDisconnect)
	s.hub.Register(client)

	// Start write pump (includes ping/pong)
	go client.WritePump()

	s.attach(client)

	// Read messages
	client.ReadPump(s.handleMessage)
}

// attach hands a fresh connection the game it left behind, from memory or
// from the store. Without one the client stays in the lobby.
func (s *Server) attach(client *ws.Client) {
	if sess := s.getSession(client.SessionID); sess != nil {
		if view, ok := sess.Reattach(); ok {
			client.SetState(ws.ClientInGame)
			s.send(client, ws.MsgGameState, view)
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	data, err := s.store.GetSession(ctx, client.SessionID)
	if err != nil {
		s.logger.Warn("failed to load checkpoint", zap.String("session_id", client.SessionID), zap.Error(err))
	}
	if data != nil {
		sess := s.getOrCreateSession(client.SessionID)
		if err := sess.Resume(data); err != nil {
			s.logger.Warn("discarding checkpoint", zap.String("session_id", client.SessionID), zap.Error(err))
			sess.Close()
			s.removeSession(client.SessionID)
		} else if view, ok := sess.View(); ok {
			client.SetState(ws.ClientInGame)
			s.send(client, ws.MsgGameState, view)
			return
		}
	}

	s.send(client, ws.MsgGameState, ws.GameStatePayload{SessionID: client.SessionID})
}

func (s *Server) handleMessage(client *ws.Client, msg *ws.Message) {
	// Validate message against client state
	if !ws.IsAllowed(client.GetState(), msg.Type) {
		s.sendError(client, "invalid_state",
			"Message "+string(msg.Type)+" not allowed in state "+string(client.GetState()))
		return
	}

	switch msg.Type {
	case ws.MsgStartGame:
		s.handleStartGame(client, msg)
	case ws.MsgFlipCard:
		s.handleFlipCard(client, msg)
	case ws.MsgRematch:
		s.handleRematch(client)
	case ws.MsgLeaveGame:
		s.handleLeaveGame(client)
	default:
		s.logger.Debug("unknown message type", zap.String("type", string(msg.Type)))
	}
}

func (s *Server) handleStartGame(client *ws.Client, msg *ws.Message) {
	var payload ws.StartGamePayload
	if err := msg.Decode(&payload); err != nil {
		s.sendError(client, "invalid_payload", "Invalid start game payload")
		return
	}

	gridSize := payload.GridSize
	if gridSize == 0 {
		gridSize = s.cfg.DefaultGridSize
	}

	sess := s.getOrCreateSession(client.SessionID)
	if err := sess.Start(payload.Player1, payload.Player2, gridSize); err != nil {
		s.sendGameError(client, err)
		return
	}
	client.SetState(ws.ClientInGame)
}

func (s *Server) handleFlipCard(client *ws.Client, msg *ws.Message) {
	var payload ws.FlipCardPayload
	if err := msg.Decode(&payload); err != nil {
		s.sendError(client, "invalid_payload", "Invalid flip card payload")
		return
	}

	sess := s.getSession(client.SessionID)
	if sess == nil || !sess.HasGame() {
		s.sendError(client, "no_active_game", "No active game found")
		return
	}

	// Rejected flips are silently ignored
	sess.Flip(payload.CardID)
}

func (s *Server) handleRematch(client *ws.Client) {
	sess := s.getSession(client.SessionID)
	if sess == nil {
		s.sendError(client, "no_active_game", "No active game found")
		return
	}
	if err := sess.Rematch(); err != nil {
		s.sendGameError(client, err)
		return
	}
	client.SetState(ws.ClientInGame)
}

func (s *Server) handleLeaveGame(client *ws.Client) {
	if sess := s.getSession(client.SessionID); sess != nil {
		sess.Close()
		s.removeSession(client.SessionID)
	}
	client.SetState(ws.ClientLobby)
}

// handleClientDisconnect freezes the clock and drops the session from memory
// if nobody reconnects within the grace period. The checkpoint stays.
func (s *Server) handleClientDisconnect(client *ws.Client) {
	// A reload already took over the session.
	if current := s.hub.GetClient(client.SessionID); current != nil && current != client {
		return
	}

	sess := s.getSession(client.SessionID)
	if sess == nil {
		return
	}
	sess.Suspend()

	if sess.IsOver() {
		s.removeSession(client.SessionID)
		return
	}

	time.AfterFunc(ReconnectGracePeriod, func() {
		if s.hub.GetClient(client.SessionID) != nil {
			return
		}
		s.sessionsMu.Lock()
		defer s.sessionsMu.Unlock()
		if s.sessions[client.SessionID] == sess {
			delete(s.sessions, client.SessionID)
			s.logger.Info("session evicted", zap.String("session_id", client.SessionID))
		}
	})
}

func (s *Server) getSession(id string) *session.Session {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return s.sessions[id]
}

func (s *Server) getOrCreateSession(id string) *session.Session {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := session.New(id, session.Options{
		Notifier:    s.hub,
		Store:       s.store,
		Logger:      s.logger.Named("session"),
		FacePool:    s.facePool,
		RevealDelay: s.cfg.RevealDelay,
		UnlockDelay: s.cfg.UnlockDelay,
	})
	s.sessions[id] = sess
	return sess
}

func (s *Server) removeSession(id string) {
	s.sessionsMu.Lock()
	delete(s.sessions, id)
	s.sessionsMu.Unlock()
}

// closeSessions stops every clock; checkpoints stay for the next process.
func (s *Server) closeSessions() {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	for id, sess := range s.sessions {
		sess.Suspend()
		delete(s.sessions, id)
	}
}

func (s *Server) send(client *ws.Client, msgType ws.MessageType, payload interface{}) {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		s.logger.Error("failed to build message", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	if err := client.SendMessage(msg); err != nil {
		s.logger.Warn("failed to send message", zap.String("session_id", client.SessionID), zap.Error(err))
	}
}

func (s *Server) sendGameError(client *ws.Client, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidConfiguration):
		s.sendError(client, "invalid_configuration", err.Error())
	case errors.Is(err, session.ErrNoGame):
		s.sendError(client, "no_active_game", err.Error())
	default:
		s.logger.Error("game error", zap.String("session_id", client.SessionID), zap.Error(err))
		s.sendError(client, "internal_error", "Something went wrong")
	}
}

func (s *Server) sendError(client *ws.Client, code, message string) {
	errMsg, err := ws.NewErrorMessage(code, message)
	if err != nil {
		return
	}
	client.SendMessage(errMsg)
}

// isAllowedWebSocketOrigin accepts requests without an Origin header, which
// only non-browser clients send.
func isAllowedWebSocketOrigin(r *http.Request, allowedOrigins string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return isOriginAllowed(origin, allowedOrigins)
}

// isOriginAllowed matches origin against a comma separated list. An empty list
// means localhost on any port. Wildcards are not supported.
func isOriginAllowed(origin, allowedOrigins string) bool {
	if origin == "" {
		return false
	}
	originURL, err := url.Parse(origin)
	if err != nil || originURL.Scheme == "" || originURL.Host == "" {
		return false
	}

	if strings.TrimSpace(allowedOrigins) == "" {
		for _, allowed := range defaultAllowedOrigins {
			allowedURL, _ := url.Parse(allowed)
			if strings.EqualFold(originURL.Scheme, allowedURL.Scheme) &&
				strings.EqualFold(originURL.Hostname(), allowedURL.Hostname()) {
				return true
			}
		}
		return false
	}

	for _, allowed := range strings.Split(allowedOrigins, ",") {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" || allowed == "*" {
			continue
		}
		allowedURL, err := url.Parse(allowed)
		if err != nil {
			continue
		}
		if strings.EqualFold(originURL.Scheme, allowedURL.Scheme) &&
			strings.EqualFold(originURL.Host, allowedURL.Host) {
			return true
		}
	}
	return false
}
