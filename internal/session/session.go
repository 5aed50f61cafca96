package session

import (
	"context"
	"math/rand"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"

	"memory-duel/internal/game"
	"memory-duel/internal/store"
	"memory-duel/internal/ws"
)

const (
	// DefaultRevealDelay is how long a completed pair stays visible before it
	// is resolved on screen: the 800ms flip animation minus the 240ms it takes
	// the card to turn edge-on.
	DefaultRevealDelay = 560 * time.Millisecond
	DefaultUnlockDelay = 240 * time.Millisecond

	storeTimeout = 5 * time.Second
)

// Notifier delivers messages to whoever is watching a session
type Notifier interface {
	Notify(sessionID string, msg *ws.Message)
}

// Options configure a Session. Zero values fall back to defaults.
type Options struct {
	Notifier    Notifier
	Store       store.Store
	Logger      *zap.Logger
	FacePool    []string
	RevealDelay time.Duration
	UnlockDelay time.Duration
	Rand        *rand.Rand
}

// Session hosts the hot-seat game of one browser. It serializes access to the
// game, paces reveals, runs the clock and checkpoints progress.
type Session struct {
	ID string

	opts   Options
	logger *zap.Logger

	mu       sync.Mutex
	state    *game.GameState
	names    [2]string
	gridSize int
	pacing   bool
	outbox   []*ws.Message

	// clock
	elapsed   time.Duration
	startedAt time.Time
	running   bool
	clockDone chan struct{}
}

// NewID generates a random session ID
func NewID() string {
	return uuid.NewV4().String()
}

// New creates an idle session; call Start or Resume to deal a game
func New(id string, opts Options) *Session {
	if id == "" {
		id = NewID()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Session{
		ID:     id,
		opts:   opts,
		logger: opts.Logger.With(zap.String("session_id", id)),
	}
}

// Start deals a new game, replacing any game in progress.
func (s *Session) Start(player1, player2 string, gridSize int) error {
	sink := &presenter{s: s}
	gs, err := game.StartGame(game.Settings{
		Player1Name: player1,
		Player2Name: player2,
		GridSize:    gridSize,
		FacePool:    s.opts.FacePool,
		Rand:        s.opts.Rand,
		Listener:    sink,
		Logger:      s.logger,
	})
	if err != nil {
		return err
	}
	sink.game = gs

	s.mu.Lock()
	s.names = [2]string{player1, player2}
	s.gridSize = gridSize
	s.replaceLocked(gs, 0)
	view := s.viewLocked()
	s.mu.Unlock()

	s.notify(ws.MsgGameStarted, view)
	s.checkpoint(gs)
	return nil
}

// Rematch starts a new game with the players and grid of the last one.
func (s *Session) Rematch() error {
	s.mu.Lock()
	names, gridSize := s.names, s.gridSize
	s.mu.Unlock()

	if gridSize == 0 {
		return ErrNoGame
	}
	return s.Start(names[0], names[1], gridSize)
}

// Resume restores a checkpointed game. The caller sends the view.
func (s *Session) Resume(data *store.SessionData) error {
	if data == nil {
		return game.ErrInvalidSnapshot
	}
	sink := &presenter{s: s}
	gs, err := game.Restore(snapshotFromData(data), sink, s.logger)
	if err != nil {
		return err
	}
	sink.game = gs

	s.mu.Lock()
	s.names = [2]string{gs.Player(0).Name, gs.Player(1).Name}
	s.gridSize = gs.GridSize()
	s.replaceLocked(gs, time.Duration(data.ElapsedSeconds)*time.Second)
	s.mu.Unlock()

	s.logger.Info("session resumed", zap.Int("flips", gs.FlipCount()))
	return nil
}

func (s *Session) replaceLocked(gs *game.GameState, elapsed time.Duration) {
	s.state = gs
	s.pacing = false
	s.outbox = nil
	s.startClockLocked(elapsed)
}

// Flip forwards a flip request to the game. The flip is shown at once; when
// it completes a pair, the result is held back for the reveal delay and
// further flips are refused until the pair has been resolved on screen.
func (s *Session) Flip(cardID int) bool {
	s.mu.Lock()
	gs := s.state
	if gs == nil || s.pacing {
		s.mu.Unlock()
		return false
	}

	s.outbox = s.outbox[:0]
	if !gs.RequestFlip(cardID) {
		s.mu.Unlock()
		return false
	}
	msgs := s.outbox
	s.outbox = nil

	if gs.IsOver() {
		s.stopClockLocked()
	}
	immediate, deferred := msgs[:1], msgs[1:]
	if len(deferred) > 0 {
		s.pacing = true
	}
	s.mu.Unlock()

	s.deliver(immediate)
	if len(deferred) > 0 {
		time.AfterFunc(s.opts.RevealDelay, func() {
			s.resolve(gs, deferred)
		})
	}
	return true
}

func (s *Session) resolve(gs *game.GameState, msgs []*ws.Message) {
	s.mu.Lock()
	if s.state != gs {
		s.mu.Unlock()
		return
	}
	over := gs.IsOver()
	s.mu.Unlock()

	s.deliver(msgs)

	if over {
		s.forget()
		return
	}
	s.checkpoint(gs)

	time.AfterFunc(s.opts.UnlockDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == gs {
			s.pacing = false
		}
	})
}

// View returns the full state of the session for its client
func (s *Session) View() (ws.GameStatePayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return ws.GameStatePayload{}, false
	}
	return s.viewLocked(), true
}

func (s *Session) viewLocked() ws.GameStatePayload {
	gs := s.state
	view := ws.GameStatePayload{
		SessionID:     s.ID,
		GridSize:      gs.GridSize(),
		CurrentPlayer: gs.CurrentPlayerIndex(),
		FlipCount:     gs.FlipCount(),
		Elapsed:       FormatElapsed(s.elapsedLocked()),
		Locked:        s.pacing || gs.Locked(),
		Players:       make([]ws.PlayerInfo, 2),
	}
	for i := range view.Players {
		p := gs.Player(i)
		view.Players[i] = ws.PlayerInfo{Name: p.Name, Score: p.Score(), BonusRound: p.HasBonusRound()}
	}
	for _, c := range gs.Deck().Cards() {
		info := ws.CardInfo{ID: c.ID, FaceUp: c.IsFaceUp(), Removed: c.IsRemoved()}
		if c.IsFaceUp() {
			info.Face = c.FaceValue
		}
		view.Cards = append(view.Cards, info)
	}
	return view
}

// IsOver reports whether the current game has finished
func (s *Session) IsOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != nil && s.state.IsOver()
}

// HasGame reports whether a game was dealt
func (s *Session) HasGame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != nil
}

// Suspend pauses the clock while nobody is watching
func (s *Session) Suspend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopClockLocked()
}

// Reattach restarts a suspended clock and returns the view for the new connection
func (s *Session) Reattach() (ws.GameStatePayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return ws.GameStatePayload{}, false
	}
	if !s.state.IsOver() && !s.running {
		s.startClockLocked(s.elapsed)
	}
	return s.viewLocked(), true
}

// Close ends the session: pending reveals are dropped and the checkpoint is deleted
func (s *Session) Close() {
	s.mu.Lock()
	s.stopClockLocked()
	s.state = nil
	s.pacing = false
	s.mu.Unlock()

	s.forget()
}

func (s *Session) checkpoint(gs *game.GameState) {
	if s.opts.Store == nil {
		return
	}

	s.mu.Lock()
	if s.state != gs {
		s.mu.Unlock()
		return
	}
	snap, ok := gs.Snapshot()
	elapsed := s.elapsedLocked()
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.opts.Store.SaveSession(ctx, dataFromSnapshot(s.ID, snap, elapsed)); err != nil {
		s.logger.Warn("failed to save checkpoint", zap.Error(err))
	}
}

func (s *Session) forget() {
	if s.opts.Store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.opts.Store.DeleteSession(ctx, s.ID); err != nil {
		s.logger.Warn("failed to delete checkpoint", zap.Error(err))
	}
}

func (s *Session) notify(msgType ws.MessageType, payload interface{}) {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		s.logger.Error("failed to build message", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	s.deliver([]*ws.Message{msg})
}

func (s *Session) deliver(msgs []*ws.Message) {
	if s.opts.Notifier == nil {
		return
	}
	for _, msg := range msgs {
		s.opts.Notifier.Notify(s.ID, msg)
	}
}

// Error types
type SessionError string

func (e SessionError) Error() string { return string(e) }

const (
	ErrNoGame SessionError = "no game to replay"
)
