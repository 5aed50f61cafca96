package game

// GameError is a sentinel error kind returned by the game core.
type GameError string

func (e GameError) Error() string { return string(e) }

const (
	ErrInvalidConfiguration   GameError = "invalid game configuration"
	ErrInsufficientFaceValues GameError = "not enough distinct face values"
	ErrNotAPair               GameError = "cards are not a pair"
	ErrAlreadyRemoved         GameError = "card already removed"
	ErrInvalidSnapshot        GameError = "invalid game snapshot"
)
