package game

// Outcome is the final result of a game: a winner or a draw.
type Outcome struct {
	Draw        bool
	WinnerIndex int // -1 on a draw
	Winner      *Player
}

// DetermineOutcome compares the two scores.
func DetermineOutcome(first, second *Player) Outcome {
	switch {
	case first.Score() > second.Score():
		return Outcome{WinnerIndex: 0, Winner: first}
	case second.Score() > first.Score():
		return Outcome{WinnerIndex: 1, Winner: second}
	default:
		return Outcome{Draw: true, WinnerIndex: -1}
	}
}

func (o Outcome) String() string {
	if o.Draw || o.Winner == nil {
		return "It's a draw!"
	}
	return o.Winner.Name + " wins!"
}
