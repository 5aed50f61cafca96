package game

// Card is a single card on the grid. ID is the card's position in the deck
// and never changes during a game, even after the card is removed.
type Card struct {
	ID        int
	FaceValue string

	faceUp  bool
	removed bool
}

// IsFaceUp reports whether the card is currently showing its face.
func (c *Card) IsFaceUp() bool {
	return c.faceUp
}

// IsRemoved reports whether the card was matched and taken out of play.
func (c *Card) IsRemoved() bool {
	return c.removed
}

// Matches reports whether two distinct cards share a face value.
func (c *Card) Matches(other *Card) bool {
	return other != nil && c != other && c.FaceValue == other.FaceValue
}
