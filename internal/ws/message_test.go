package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageDecodeRoundTrip(t *testing.T) {
	msg, err := NewMessage(MsgFlipCard, FlipCardPayload{CardID: 7})
	require.NoError(t, err)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"flip_card","payload":{"cardId":7}}`, string(raw))

	var payload FlipCardPayload
	require.NoError(t, msg.Decode(&payload))
	assert.Equal(t, 7, payload.CardID)
}

func TestDecodeEmptyPayload(t *testing.T) {
	msg, err := NewMessage(MsgRematch, nil)
	require.NoError(t, err)

	var payload StartGamePayload
	assert.ErrorIs(t, msg.Decode(&payload), ErrEmptyPayload)
}

func TestCardInfoHidesFaceWhenEmpty(t *testing.T) {
	raw, err := json.Marshal(CardInfo{ID: 3})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "face\"")
}

func TestIsAllowed(t *testing.T) {
	tests := []struct {
		state ClientState
		msg   MessageType
		want  bool
	}{
		{ClientLobby, MsgStartGame, true},
		{ClientLobby, MsgFlipCard, false},
		{ClientLobby, MsgRematch, false},
		{ClientInGame, MsgFlipCard, true},
		{ClientInGame, MsgRematch, true},
		{ClientInGame, MsgStartGame, true},
		{ClientState("bogus"), MsgStartGame, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state)+"/"+string(tt.msg), func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowed(tt.state, tt.msg))
		})
	}
}

func TestSendMessageAfterCloseIsDropped(t *testing.T) {
	client := NewClient(NewHub(nil), nil, "s1")
	client.Close()

	msg, err := NewMessage(MsgTimer, TimerPayload{Elapsed: "00:01"})
	require.NoError(t, err)
	assert.NoError(t, client.SendMessage(msg))
	assert.True(t, client.IsClosed())
}

func TestSendMessageReportsFullChannel(t *testing.T) {
	client := NewClient(NewHub(nil), nil, "s1")
	msg, err := NewMessage(MsgTimer, TimerPayload{Elapsed: "00:01"})
	require.NoError(t, err)

	for i := 0; i < cap(client.Send); i++ {
		require.NoError(t, client.SendMessage(msg))
	}
	assert.ErrorIs(t, client.SendMessage(msg), ErrChannelFull)
}
