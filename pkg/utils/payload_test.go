package utils

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/omok/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_FromJson(t *testing.T) {
	result := "BLACK wins!"
	data, err := jsoniter.Marshal(domain.Message{
		Type: domain.PlayerMove,
		Payload: domain.PlayerMovePayload{
			Color:      domain.White,
			X:          3,
			Y:          7,
			Verdict:    domain.DoubleThree,
			GameResult: &result,
		},
	})
	require.NoError(t, err)

	var msg domain.Message
	require.NoError(t, jsoniter.Unmarshal(data, &msg))
	payload, err := DecodePayload[domain.PlayerMovePayload](msg.Payload)
	require.NoError(t, err)
	assert.Equal(t, domain.White, payload.Color)
	assert.Equal(t, 3, payload.X)
	assert.Equal(t, 7, payload.Y)
	assert.Equal(t, domain.DoubleThree, payload.Verdict)
	require.NotNil(t, payload.GameResult)
	assert.Equal(t, result, *payload.GameResult)
}

func TestDecodePayload_FromStruct(t *testing.T) {
	in := domain.StartGamePayload{
		Color:      domain.Black,
		Restricted: domain.Black,
		Moves:      []domain.MoveRecord{{Color: domain.White, BoardIndex: 112, X: 8, Y: 8}},
	}
	out, err := DecodePayload[domain.StartGamePayload](in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodePayload_Invalid(t *testing.T) {
	_, err := DecodePayload[domain.PlayerMovePayload](map[string]any{"Color": "PURPLE"})
	assert.Error(t, err)
}
