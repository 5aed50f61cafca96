package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Deck is the ordered set of cards on the grid. Cards keep their position
// when removed so the grid layout never shifts.
type Deck struct {
	cards []*Card
	rng   *rand.Rand
}

// NewRand returns a time-seeded random source for decks.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// BuildDeck picks count distinct faces at random from pool, creates two cards
// for each and shuffles them. A nil rng uses a time-seeded source.
func BuildDeck(pool []string, count int, rng *rand.Rand) (*Deck, error) {
	if rng == nil {
		rng = NewRand()
	}

	faces := distinct(pool)
	if count < 1 || len(faces) < count {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientFaceValues, count, len(faces))
	}

	// Shuffle the pool first so every game draws a different subset of faces.
	shuffle(rng, faces)

	cards := make([]*Card, count*2)
	for i := range cards {
		cards[i] = &Card{FaceValue: faces[i%count]}
	}

	d := &Deck{cards: cards, rng: rng}
	d.Shuffle()
	return d, nil
}

// Shuffle permutes the cards in place and renumbers them by position.
func (d *Deck) Shuffle() {
	shuffle(d.rng, d.cards)
	for i, c := range d.cards {
		c.ID = i
	}
}

// RemovePair takes two matching cards out of play.
func (d *Deck) RemovePair(first, second *Card) error {
	if first == nil || second == nil || !first.Matches(second) {
		return ErrNotAPair
	}
	if first.removed || second.removed {
		return ErrAlreadyRemoved
	}

	first.removed, first.faceUp = true, false
	second.removed, second.faceUp = true, false
	return nil
}

// Remaining returns the number of cards still in play.
func (d *Deck) Remaining() int {
	n := 0
	for _, c := range d.cards {
		if !c.removed {
			n++
		}
	}
	return n
}

// Len returns the total number of cards, removed ones included.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Card returns the card at position id.
func (d *Deck) Card(id int) (*Card, bool) {
	if id < 0 || id >= len(d.cards) {
		return nil, false
	}
	return d.cards[id], true
}

// Cards returns the cards in grid order. The slice is a copy; the cards are not.
func (d *Deck) Cards() []*Card {
	out := make([]*Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// shuffle is a Fisher-Yates shuffle: walk from the last index down to 1 and
// swap each element with one drawn uniformly from [0, i].
func shuffle[T any](rng *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
