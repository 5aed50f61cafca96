package game

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"
)

// Settings are the parameters of a new game.
type Settings struct {
	Player1Name string
	Player2Name string
	GridSize    int // cells per side; the deck holds GridSize*GridSize cards

	FacePool []string   // defaults to DefaultFacePool(DefaultFacePoolSize)
	Rand     *rand.Rand // defaults to a time-seeded source
	Listener Listener
	Logger   *zap.Logger
}

// GameState is one game between two players. It is not safe for concurrent
// use; callers serialize RequestFlip themselves.
type GameState struct {
	players       [2]*Player
	currentPlayer int
	deck          *Deck
	gridSize      int
	faceUp        []*Card
	flipCount     int
	locked        bool
	over          bool
	outcome       Outcome

	listener Listener
	logger   *zap.Logger
}

// StartGame validates settings and deals a new game. No state is created on error.
func StartGame(s Settings) (*GameState, error) {
	if s.Player1Name == "" || s.Player2Name == "" {
		return nil, fmt.Errorf("%w: player names must not be empty", ErrInvalidConfiguration)
	}
	if s.GridSize <= 0 || s.GridSize%2 != 0 {
		return nil, fmt.Errorf("%w: grid size %d must be a positive even number", ErrInvalidConfiguration, s.GridSize)
	}

	pool := s.FacePool
	if pool == nil {
		pool = DefaultFacePool(DefaultFacePoolSize)
	}

	deck, err := BuildDeck(pool, s.GridSize*s.GridSize/2, s.Rand)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	gs := newGameState(NewPlayer(s.Player1Name), NewPlayer(s.Player2Name), deck, s.GridSize, s.Listener, s.Logger)
	gs.logger.Info("game started",
		zap.String("player1", s.Player1Name),
		zap.String("player2", s.Player2Name),
		zap.Int("grid_size", s.GridSize),
		zap.Int("cards", deck.Len()))
	return gs, nil
}

func newGameState(p1, p2 *Player, deck *Deck, gridSize int, l Listener, logger *zap.Logger) *GameState {
	if l == nil {
		l = NopListener{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameState{
		players:  [2]*Player{p1, p2},
		deck:     deck,
		gridSize: gridSize,
		faceUp:   make([]*Card, 0, 2),
		listener: l,
		logger:   logger,
	}
}

// RequestFlip turns card id face up. It returns false and changes nothing when
// the game is over, a pair is resolving, or the card is unknown, removed or
// already face up. Flipping the second card of a pair resolves it immediately.
func (gs *GameState) RequestFlip(id int) bool {
	if gs.over || gs.locked {
		return false
	}
	card, ok := gs.deck.Card(id)
	if !ok || card.removed || card.faceUp {
		return false
	}

	card.faceUp = true
	gs.faceUp = append(gs.faceUp, card)
	gs.flipCount++
	if len(gs.faceUp) == 2 {
		gs.locked = true
	}

	gs.listener.OnFlip(card)

	if gs.locked {
		gs.evaluatePair()
	}
	return true
}

func (gs *GameState) evaluatePair() {
	first, second := gs.faceUp[0], gs.faceUp[1]
	player := gs.CurrentPlayer()

	if first.Matches(second) {
		if err := gs.deck.RemovePair(first, second); err != nil {
			panic(fmt.Errorf("game: resolving pair %d/%d: %w", first.ID, second.ID, err))
		}
		player.IncrementScore()
		player.SetBonusRound(true)
		gs.faceUp = gs.faceUp[:0]
		gs.logger.Debug("pair matched",
			zap.String("player", player.Name),
			zap.String("face", first.FaceValue),
			zap.Int("score", player.Score()))
		gs.listener.OnMatch(first, second, player)

		if gs.deck.Remaining() == 0 {
			gs.finish()
			return
		}
	} else {
		first.faceUp = false
		second.faceUp = false
		gs.faceUp = gs.faceUp[:0]
		if player.HasBonusRound() {
			player.SetBonusRound(false)
		}
		gs.listener.OnUnflip(first)
		gs.listener.OnUnflip(second)
	}

	gs.switchTurn()
	gs.locked = false
}

// switchTurn passes the turn unless the current player earned a bonus round.
// The bonus flag is left as is; only a miss clears it.
func (gs *GameState) switchTurn() {
	if gs.CurrentPlayer().HasBonusRound() {
		return
	}
	gs.currentPlayer = (gs.currentPlayer + 1) % len(gs.players)
	gs.listener.OnTurnSwitch(gs.currentPlayer)
}

func (gs *GameState) finish() {
	gs.over = true
	gs.locked = false
	gs.outcome = DetermineOutcome(gs.players[0], gs.players[1])
	gs.logger.Info("game over",
		zap.Stringer("outcome", gs.outcome),
		zap.Int("score1", gs.players[0].Score()),
		zap.Int("score2", gs.players[1].Score()),
		zap.Int("flips", gs.flipCount))
	gs.listener.OnGameOver(gs.outcome)
}

// CurrentPlayer returns the player whose turn it is.
func (gs *GameState) CurrentPlayer() *Player {
	return gs.players[gs.currentPlayer]
}

// CurrentPlayerIndex returns 0 or 1.
func (gs *GameState) CurrentPlayerIndex() int {
	return gs.currentPlayer
}

// Player returns the player in seat i, or nil.
func (gs *GameState) Player(i int) *Player {
	if i < 0 || i >= len(gs.players) {
		return nil
	}
	return gs.players[i]
}

func (gs *GameState) Deck() *Deck {
	return gs.deck
}

func (gs *GameState) GridSize() int {
	return gs.gridSize
}

// FaceUpCards returns the cards of the pair in progress (0 or 1 while idle).
func (gs *GameState) FaceUpCards() []*Card {
	out := make([]*Card, len(gs.faceUp))
	copy(out, gs.faceUp)
	return out
}

// FlipCount returns the number of accepted flips since the game started.
func (gs *GameState) FlipCount() int {
	return gs.flipCount
}

// Locked reports whether a pair is being resolved.
func (gs *GameState) Locked() bool {
	return gs.locked
}

// IsOver reports whether every pair has been matched.
func (gs *GameState) IsOver() bool {
	return gs.over
}

// Outcome returns the result once the game is over.
func (gs *GameState) Outcome() (Outcome, bool) {
	return gs.outcome, gs.over
}
