package session

import (
	"time"

	"memory-duel/internal/game"
	"memory-duel/internal/store"
)

func dataFromSnapshot(id string, snap game.Snapshot, elapsed time.Duration) *store.SessionData {
	data := &store.SessionData{
		ID:             id,
		GridSize:       snap.GridSize,
		CurrentPlayer:  snap.CurrentPlayer,
		FlipCount:      snap.FlipCount,
		ElapsedSeconds: int(elapsed / time.Second),
		Players:        make([]store.PlayerData, 0, len(snap.Players)),
		Cards:          make([]store.CardData, 0, len(snap.Cards)),
		UpdatedAt:      time.Now(),
	}
	for _, p := range snap.Players {
		data.Players = append(data.Players, store.PlayerData{Name: p.Name, Score: p.Score, BonusRound: p.BonusRound})
	}
	for _, c := range snap.Cards {
		data.Cards = append(data.Cards, store.CardData{Face: c.FaceValue, FaceUp: c.FaceUp, Removed: c.Removed})
	}
	return data
}

// snapshotFromData converts a stored checkpoint back; game.Restore validates it.
func snapshotFromData(data *store.SessionData) game.Snapshot {
	snap := game.Snapshot{
		CurrentPlayer: data.CurrentPlayer,
		FlipCount:     data.FlipCount,
		GridSize:      data.GridSize,
		Cards:         make([]game.CardSnapshot, 0, len(data.Cards)),
	}
	for i, p := range data.Players {
		if i >= len(snap.Players) {
			break
		}
		snap.Players[i] = game.PlayerSnapshot{Name: p.Name, Score: p.Score, BonusRound: p.BonusRound}
	}
	for _, c := range data.Cards {
		snap.Cards = append(snap.Cards, game.CardSnapshot{FaceValue: c.Face, FaceUp: c.FaceUp, Removed: c.Removed})
	}
	return snap
}
