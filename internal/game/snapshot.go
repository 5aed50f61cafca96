package game

import (
	"fmt"

	"go.uber.org/zap"
)

// Snapshot is a copy of an idle game, enough to rebuild it later.
type Snapshot struct {
	Players       [2]PlayerSnapshot
	CurrentPlayer int
	FlipCount     int
	GridSize      int
	Cards         []CardSnapshot
}

type PlayerSnapshot struct {
	Name       string
	Score      int
	BonusRound bool
}

type CardSnapshot struct {
	FaceValue string
	FaceUp    bool
	Removed   bool
}

// Snapshot copies the game. It returns false while a pair is resolving or
// after the game is over, since neither state can be resumed.
func (gs *GameState) Snapshot() (Snapshot, bool) {
	if gs.locked || gs.over {
		return Snapshot{}, false
	}

	snap := Snapshot{
		CurrentPlayer: gs.currentPlayer,
		FlipCount:     gs.flipCount,
		GridSize:      gs.gridSize,
		Cards:         make([]CardSnapshot, 0, gs.deck.Len()),
	}
	for i, p := range gs.players {
		snap.Players[i] = PlayerSnapshot{Name: p.Name, Score: p.score, BonusRound: p.bonusRound}
	}
	for _, c := range gs.deck.cards {
		snap.Cards = append(snap.Cards, CardSnapshot{FaceValue: c.FaceValue, FaceUp: c.faceUp, Removed: c.removed})
	}
	return snap, true
}

// Restore rebuilds a game from a snapshot after checking it describes a
// reachable, unfinished position.
func Restore(snap Snapshot, l Listener, logger *zap.Logger) (*GameState, error) {
	if err := snap.validate(); err != nil {
		return nil, err
	}

	cards := make([]*Card, len(snap.Cards))
	var faceUp []*Card
	for i, cs := range snap.Cards {
		cards[i] = &Card{ID: i, FaceValue: cs.FaceValue, faceUp: cs.FaceUp, removed: cs.Removed}
		if cs.FaceUp {
			faceUp = append(faceUp, cards[i])
		}
	}

	players := [2]*Player{}
	for i, ps := range snap.Players {
		players[i] = &Player{Name: ps.Name, score: ps.Score, bonusRound: ps.BonusRound}
	}

	gs := newGameState(players[0], players[1], &Deck{cards: cards, rng: NewRand()}, snap.GridSize, l, logger)
	gs.currentPlayer = snap.CurrentPlayer
	gs.flipCount = snap.FlipCount
	gs.faceUp = append(gs.faceUp, faceUp...)
	return gs, nil
}

func (snap Snapshot) validate() error {
	for i, p := range snap.Players {
		if p.Name == "" {
			return fmt.Errorf("%w: player %d has no name", ErrInvalidSnapshot, i+1)
		}
		if p.Score < 0 {
			return fmt.Errorf("%w: player %d has a negative score", ErrInvalidSnapshot, i+1)
		}
	}
	if snap.CurrentPlayer != 0 && snap.CurrentPlayer != 1 {
		return fmt.Errorf("%w: current player %d", ErrInvalidSnapshot, snap.CurrentPlayer)
	}
	if snap.GridSize <= 0 || snap.GridSize%2 != 0 || len(snap.Cards) != snap.GridSize*snap.GridSize {
		return fmt.Errorf("%w: %d cards for grid size %d", ErrInvalidSnapshot, len(snap.Cards), snap.GridSize)
	}

	type faceState struct{ count, removed int }
	faces := make(map[string]*faceState)
	faceUp, removedPairs := 0, 0
	for _, c := range snap.Cards {
		fs, ok := faces[c.FaceValue]
		if !ok {
			fs = &faceState{}
			faces[c.FaceValue] = fs
		}
		fs.count++
		if c.Removed {
			fs.removed++
			if c.FaceUp {
				return fmt.Errorf("%w: removed card %q is face up", ErrInvalidSnapshot, c.FaceValue)
			}
		}
		if c.FaceUp {
			faceUp++
		}
	}
	for face, fs := range faces {
		if fs.count != 2 {
			return fmt.Errorf("%w: face %q appears %d times", ErrInvalidSnapshot, face, fs.count)
		}
		switch fs.removed {
		case 0:
		case 2:
			removedPairs++
		default:
			return fmt.Errorf("%w: face %q removed without its pair", ErrInvalidSnapshot, face)
		}
	}
	if faceUp > 1 {
		return fmt.Errorf("%w: %d cards face up", ErrInvalidSnapshot, faceUp)
	}
	if removedPairs == len(faces) {
		return fmt.Errorf("%w: game already finished", ErrInvalidSnapshot)
	}
	if snap.Players[0].Score+snap.Players[1].Score != removedPairs {
		return fmt.Errorf("%w: scores do not add up to %d matched pairs", ErrInvalidSnapshot, removedPairs)
	}
	return nil
}
