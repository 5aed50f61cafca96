package game

// Listener receives state changes from a GameState, in the order they happen.
// Callbacks run synchronously inside RequestFlip; a callback that calls back
// into RequestFlip while a pair is resolving is ignored.
type Listener interface {
	OnFlip(card *Card)
	OnUnflip(card *Card)
	OnMatch(first, second *Card, player *Player)
	OnTurnSwitch(playerIndex int)
	OnGameOver(outcome Outcome)
}

// NopListener ignores every event. Embed it to implement only some callbacks.
type NopListener struct{}

func (NopListener) OnFlip(*Card)                  {}
func (NopListener) OnUnflip(*Card)                {}
func (NopListener) OnMatch(*Card, *Card, *Player) {}
func (NopListener) OnTurnSwitch(int)              {}
func (NopListener) OnGameOver(Outcome)            {}
