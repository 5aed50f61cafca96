package game

// Player is one of the two seats at the table.
type Player struct {
	Name string

	score      int
	bonusRound bool
}

// NewPlayer creates a player with no score
func NewPlayer(name string) *Player {
	return &Player{Name: name}
}

// Score returns the number of pairs the player has matched.
func (p *Player) Score() int {
	return p.score
}

// HasBonusRound reports whether the player keeps the turn after the current pair.
func (p *Player) HasBonusRound() bool {
	return p.bonusRound
}

// IncrementScore adds one matched pair to the player's score
func (p *Player) IncrementScore() {
	p.score++
}

// SetBonusRound sets the bonus flag to exactly active.
func (p *Player) SetBonusRound(active bool) {
	p.bonusRound = active
}
