package ws

import "encoding/json"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client -> Server messages
	MsgStartGame MessageType = "start_game"
	MsgFlipCard  MessageType = "flip_card"
	MsgRematch   MessageType = "rematch"
	MsgLeaveGame MessageType = "leave_game"

	// Server -> Client messages
	MsgError         MessageType = "error"
	MsgGameStarted   MessageType = "game_started"
	MsgGameState     MessageType = "game_state"
	MsgCardFlipped   MessageType = "card_flipped"
	MsgCardUnflipped MessageType = "card_unflipped"
	MsgPairMatched   MessageType = "pair_matched"
	MsgTurnSwitched  MessageType = "turn_switched"
	MsgGameOver      MessageType = "game_over"
	MsgTimer         MessageType = "timer"
)

// Message is the base WebSocket message structure
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StartGamePayload starts (or restarts) the hot-seat game of this browser
type StartGamePayload struct {
	Player1  string `json:"player1"`
	Player2  string `json:"player2"`
	GridSize int    `json:"gridSize"`
}

// FlipCardPayload asks to turn a card face up
type FlipCardPayload struct {
	CardID int `json:"cardId"`
}

// ErrorPayload for error messages
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GameStatePayload is the full view of a session, sent on start and on reconnect
type GameStatePayload struct {
	SessionID     string       `json:"sessionId"`
	GridSize      int          `json:"gridSize"`
	CurrentPlayer int          `json:"currentPlayer"`
	FlipCount     int          `json:"flipCount"`
	Elapsed       string       `json:"elapsed"`
	Locked        bool         `json:"locked"`
	Players       []PlayerInfo `json:"players"`
	Cards         []CardInfo   `json:"cards"`
}

// PlayerInfo for game state
type PlayerInfo struct {
	Name       string `json:"name"`
	Score      int    `json:"score"`
	BonusRound bool   `json:"bonusRound"`
}

// CardInfo for game state. Face is only set for face-up cards.
type CardInfo struct {
	ID      int    `json:"id"`
	Face    string `json:"face,omitempty"`
	FaceUp  bool   `json:"faceUp"`
	Removed bool   `json:"removed"`
}

// CardFlippedPayload when a card turns face up
type CardFlippedPayload struct {
	CardID    int    `json:"cardId"`
	Face      string `json:"face"`
	FlipCount int    `json:"flipCount"`
}

// CardUnflippedPayload when a card turns back face down
type CardUnflippedPayload struct {
	CardID int `json:"cardId"`
}

// PairMatchedPayload when a pair is taken off the grid
type PairMatchedPayload struct {
	CardIDs     []int `json:"cardIds"`
	PlayerIndex int   `json:"playerIndex"`
	Score       int   `json:"score"`
}

// TurnSwitchedPayload when the other player takes over
type TurnSwitchedPayload struct {
	PlayerIndex int `json:"playerIndex"`
}

// GameOverPayload when every pair is matched
type GameOverPayload struct {
	Winner      int    `json:"winner"` // 0 for draw, 1 or 2 for winner
	WinnerName  string `json:"winnerName"`
	Title       string `json:"title"`
	FinalScores []int  `json:"finalScores"`
	FlipCount   int    `json:"flipCount"`
	Elapsed     string `json:"elapsed"`
}

// TimerPayload carries the elapsed game time as mm:ss
type TimerPayload struct {
	Elapsed string `json:"elapsed"`
}

// Helper functions for creating messages

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}
	return &Message{
		Type:    msgType,
		Payload: payloadBytes,
	}, nil
}

func NewErrorMessage(code, message string) (*Message, error) {
	return NewMessage(MsgError, ErrorPayload{
		Code:    code,
		Message: message,
	})
}

// Decode unmarshals the payload into v
func (m *Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 {
		return ErrEmptyPayload
	}
	return json.Unmarshal(m.Payload, v)
}

var ValidMessagesForLobby = []MessageType{
	MsgStartGame,
	MsgLeaveGame,
}

var ValidMessagesForInGame = []MessageType{
	MsgStartGame,
	MsgFlipCard,
	MsgRematch,
	MsgLeaveGame,
}

// IsAllowed reports whether msgType may be sent by a client in state
func IsAllowed(state ClientState, msgType MessageType) bool {
	var allowed []MessageType
	switch state {
	case ClientLobby:
		allowed = ValidMessagesForLobby
	case ClientInGame:
		allowed = ValidMessagesForInGame
	default:
		return false
	}

	for _, t := range allowed {
		if t == msgType {
			return true
		}
	}
	return false
}
