package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []string
}

func (r *recorder) OnFlip(c *Card)   { r.events = append(r.events, fmt.Sprintf("flip %d", c.ID)) }
func (r *recorder) OnUnflip(c *Card) { r.events = append(r.events, fmt.Sprintf("unflip %d", c.ID)) }
func (r *recorder) OnMatch(a, b *Card, p *Player) {
	r.events = append(r.events, fmt.Sprintf("match %d %d %s", a.ID, b.ID, p.Name))
}
func (r *recorder) OnTurnSwitch(i int) { r.events = append(r.events, fmt.Sprintf("turn %d", i)) }
func (r *recorder) OnGameOver(o Outcome) {
	r.events = append(r.events, "over "+o.String())
}

func newTestGame(t *testing.T, gridSize int, l Listener) *GameState {
	t.Helper()
	gs, err := StartGame(Settings{
		Player1Name: "A",
		Player2Name: "B",
		GridSize:    gridSize,
		Rand:        rand.New(rand.NewSource(7)),
		Listener:    l,
	})
	require.NoError(t, err)
	return gs
}

// pairIDs returns the ids of every unremoved pair, in grid order of first card.
func pairIDs(d *Deck) [][2]int {
	seen := make(map[string]int)
	var pairs [][2]int
	for _, c := range d.Cards() {
		if c.IsRemoved() {
			continue
		}
		if first, ok := seen[c.FaceValue]; ok {
			pairs = append(pairs, [2]int{first, c.ID})
			continue
		}
		seen[c.FaceValue] = c.ID
	}
	return pairs
}

// mismatch returns two unremoved cards with different faces.
func mismatch(t *testing.T, d *Deck) (int, int) {
	t.Helper()
	pairs := pairIDs(d)
	require.GreaterOrEqual(t, len(pairs), 2, "need two pairs left for a miss")
	return pairs[0][0], pairs[1][0]
}

func matchPair(t *testing.T, gs *GameState) {
	t.Helper()
	pairs := pairIDs(gs.Deck())
	require.NotEmpty(t, pairs)
	require.True(t, gs.RequestFlip(pairs[0][0]))
	require.True(t, gs.RequestFlip(pairs[0][1]))
}

func missPair(t *testing.T, gs *GameState) {
	t.Helper()
	a, b := mismatch(t, gs.Deck())
	require.True(t, gs.RequestFlip(a))
	require.True(t, gs.RequestFlip(b))
}
