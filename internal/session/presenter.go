package session

import (
	"go.uber.org/zap"

	"memory-duel/internal/game"
	"memory-duel/internal/ws"
)

// presenter turns game events into client messages. Its callbacks run inside
// GameState.RequestFlip, with the session mutex held, so it only queues.
type presenter struct {
	s    *Session
	game *game.GameState
}

func (p *presenter) OnFlip(card *game.Card) {
	p.queue(ws.MsgCardFlipped, ws.CardFlippedPayload{
		CardID:    card.ID,
		Face:      card.FaceValue,
		FlipCount: p.game.FlipCount(),
	})
}

func (p *presenter) OnUnflip(card *game.Card) {
	p.queue(ws.MsgCardUnflipped, ws.CardUnflippedPayload{CardID: card.ID})
}

func (p *presenter) OnMatch(first, second *game.Card, player *game.Player) {
	p.queue(ws.MsgPairMatched, ws.PairMatchedPayload{
		CardIDs:     []int{first.ID, second.ID},
		PlayerIndex: p.game.CurrentPlayerIndex(),
		Score:       player.Score(),
	})
}

func (p *presenter) OnTurnSwitch(playerIndex int) {
	p.queue(ws.MsgTurnSwitched, ws.TurnSwitchedPayload{PlayerIndex: playerIndex})
}

func (p *presenter) OnGameOver(outcome game.Outcome) {
	payload := ws.GameOverPayload{
		Title:       outcome.String(),
		FinalScores: []int{p.game.Player(0).Score(), p.game.Player(1).Score()},
		FlipCount:   p.game.FlipCount(),
		Elapsed:     FormatElapsed(p.s.elapsedLocked()),
	}
	if !outcome.Draw {
		payload.Winner = outcome.WinnerIndex + 1 // 1-indexed for display
		payload.WinnerName = outcome.Winner.Name
	}
	p.queue(ws.MsgGameOver, payload)
}

func (p *presenter) queue(msgType ws.MessageType, payload interface{}) {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		p.s.logger.Error("failed to build message", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	p.s.outbox = append(p.s.outbox, msg)
}
