package game

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDeck(t *testing.T) {
	deck, err := BuildDeck(DefaultFacePool(DefaultFacePoolSize), 8, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, 16, deck.Len())
	assert.Equal(t, 16, deck.Remaining())

	faces := make(map[string]int)
	for i, c := range deck.Cards() {
		assert.Equal(t, i, c.ID)
		assert.False(t, c.IsFaceUp())
		assert.False(t, c.IsRemoved())
		faces[c.FaceValue]++
	}
	assert.Len(t, faces, 8)
	for face, n := range faces {
		assert.Equal(t, 2, n, "face %s", face)
	}
}

func TestBuildDeckSameSeedSameOrder(t *testing.T) {
	pool := DefaultFacePool(32)
	d1, err := BuildDeck(pool, 8, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	d2, err := BuildDeck(pool, 8, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	for i := 0; i < d1.Len(); i++ {
		c1, _ := d1.Card(i)
		c2, _ := d2.Card(i)
		assert.Equal(t, c1.FaceValue, c2.FaceValue)
	}
}

func TestBuildDeckInsufficientFaceValues(t *testing.T) {
	tests := []struct {
		name  string
		pool  []string
		count int
	}{
		{name: "pool smaller than count", pool: []string{"a", "b", "c"}, count: 4},
		{name: "duplicates count once", pool: []string{"a", "a", "b"}, count: 3},
		{name: "empty pool", pool: nil, count: 1},
		{name: "zero count", pool: []string{"a"}, count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck, err := BuildDeck(tt.pool, tt.count, nil)
			assert.ErrorIs(t, err, ErrInsufficientFaceValues)
			assert.Nil(t, deck)
		})
	}
}

func TestShufflePreservesCards(t *testing.T) {
	deck, err := BuildDeck(DefaultFacePool(16), 8, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	before := faceList(deck)
	for i := 0; i < 50; i++ {
		deck.Shuffle()
		assert.Equal(t, before, faceList(deck))
	}
	for i, c := range deck.Cards() {
		assert.Equal(t, i, c.ID, "ids follow positions after a shuffle")
	}
}

func TestShuffleIsUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	const runs = 60000

	counts := make(map[string]int)
	for i := 0; i < runs; i++ {
		s := []int{0, 1, 2}
		shuffle(rng, s)
		counts[fmt.Sprint(s)]++
	}

	require.Len(t, counts, 6, "every permutation of three elements shows up")
	for perm, n := range counts {
		assert.InDelta(t, runs/6, n, 600, "permutation %s", perm)
	}
}

func TestRemovePair(t *testing.T) {
	deck, err := BuildDeck([]string{"x", "y"}, 2, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	pairs := pairIDs(deck)
	require.Len(t, pairs, 2)

	a, _ := deck.Card(pairs[0][0])
	b, _ := deck.Card(pairs[0][1])
	other, _ := deck.Card(pairs[1][0])

	assert.ErrorIs(t, deck.RemovePair(a, other), ErrNotAPair)
	assert.ErrorIs(t, deck.RemovePair(a, a), ErrNotAPair)
	assert.ErrorIs(t, deck.RemovePair(a, nil), ErrNotAPair)
	assert.Equal(t, 4, deck.Remaining())

	require.NoError(t, deck.RemovePair(a, b))
	assert.True(t, a.IsRemoved())
	assert.True(t, b.IsRemoved())
	assert.False(t, a.IsFaceUp())
	assert.Equal(t, 2, deck.Remaining())

	assert.ErrorIs(t, deck.RemovePair(a, b), ErrAlreadyRemoved)
	assert.Equal(t, 2, deck.Remaining())
}

func TestRemainingStaysEven(t *testing.T) {
	const count = 8
	deck, err := BuildDeck(DefaultFacePool(count), count, rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	matches := 0
	for _, p := range pairIDs(deck) {
		assert.Equal(t, 0, deck.Remaining()%2)
		assert.NotZero(t, deck.Remaining())

		a, _ := deck.Card(p[0])
		b, _ := deck.Card(p[1])
		require.NoError(t, deck.RemovePair(a, b))
		matches++
	}
	assert.Equal(t, count, matches)
	assert.Zero(t, deck.Remaining())
}

func TestCardLookupOutOfRange(t *testing.T) {
	deck, err := BuildDeck([]string{"x"}, 1, nil)
	require.NoError(t, err)

	_, ok := deck.Card(-1)
	assert.False(t, ok)
	_, ok = deck.Card(deck.Len())
	assert.False(t, ok)
}

func TestMaxGridSize(t *testing.T) {
	assert.Equal(t, 16, MaxGridSize(DefaultFacePoolSize))
	assert.Equal(t, 2, MaxGridSize(2))
	assert.Equal(t, 0, MaxGridSize(1))
	assert.Equal(t, 4, MaxGridSize(17))
}

func faceList(d *Deck) []string {
	var out []string
	for _, c := range d.Cards() {
		out = append(out, c.FaceValue)
	}
	sort.Strings(out)
	return out
}
