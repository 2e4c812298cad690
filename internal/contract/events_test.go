package contract

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/stark20/internal/abi"
	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/starknet"
)

func key(name string) string { return felt.Hex(abi.Selector(name)) }

func TestDecodeMintEvent(t *testing.T) {
	g := newGateway(t, nil, nil)
	ev, err := g.DecodeEvent(starknet.Event{
		FromAddress: tokenAddr,
		Keys:        []string{key("Mint"), "0x123"},
		Data:        []string{"0x3e8", "0x0"},
	})
	require.NoError(t, err)

	mint, ok := ev.(MintEvent)
	require.True(t, ok)
	assert.Equal(t, abi.EventMint, mint.EventName())
	assert.Equal(t, "0x123", felt.FormatAddress(mint.Receiver))
	assert.Equal(t, "1000", felt.DecodeWide(mint.Amount))
}

func TestDecodeEveryVariant(t *testing.T) {
	g := newGateway(t, nil, nil)
	tests := []struct {
		ev     starknet.Event
		name   string
		fields map[string]string
	}{
		{
			starknet.Event{Keys: []string{key("Transfer"), "0x1", "0x2"}, Data: []string{"0x5", "0x0"}},
			abi.EventTransfer,
			map[string]string{"sender": "0x1", "receiver": "0x2", "amount": "5"},
		},
		{
			starknet.Event{Keys: []string{key("Approval"), "0x1", "0x3"}, Data: []string{"0x7", "0x0"}},
			abi.EventApproval,
			map[string]string{"owner": "0x1", "spender": "0x3", "value": "7"},
		},
		{
			starknet.Event{Keys: []string{key("Burnt"), "0x4"}, Data: []string{"0x0", "0x1"}},
			abi.EventBurnt,
			map[string]string{"burner": "0x4", "value": "340282366920938463463374607431768211456"},
		},
		{
			starknet.Event{Keys: []string{key("Ownership"), "0x9", "0x8"}},
			abi.EventOwnership,
			map[string]string{"current_owner": "0x9", "prev_owner": "0x8"},
		},
	}
	for _, tt := range tests {
		t.Run(abi.ShortName(tt.name), func(t *testing.T) {
			got, err := g.DecodeEvent(tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.name, got.EventName())
			assert.Equal(t, tt.fields, got.Fields())
		})
	}
}

func TestDecodeUnknownEvent(t *testing.T) {
	g := newGateway(t, nil, nil)
	_, err := g.DecodeEvent(starknet.Event{Keys: []string{key("Swap")}})
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = g.DecodeEvent(starknet.Event{})
	assert.ErrorIs(t, err, ErrUnknownEvent)

	name, ok := g.EventName(starknet.Event{Keys: []string{key("Approval")}})
	require.True(t, ok)
	assert.Equal(t, abi.EventApproval, name)
}

func TestDecodeTruncatedEvent(t *testing.T) {
	g := newGateway(t, nil, nil)
	_, err := g.DecodeEvent(starknet.Event{Keys: []string{key("Mint"), "0x1"}, Data: []string{"0x3e8"}})
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = g.DecodeEvent(starknet.Event{Keys: []string{key("Transfer"), "0x1"}, Data: []string{"0x1", "0x0"}})
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestDecodeGarbageFelt(t *testing.T) {
	g := newGateway(t, nil, nil)
	_, err := g.DecodeEvent(starknet.Event{Keys: []string{key("Burnt"), "0xnothex"}, Data: []string{"0x1", "0x0"}})
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestDecodeLimbOverflow(t *testing.T) {
	g := newGateway(t, nil, nil)
	over := felt.Hex(new(big.Int).Lsh(big.NewInt(1), 128))
	_, err := g.DecodeEvent(starknet.Event{Keys: []string{key("Mint"), "0x1"}, Data: []string{over, "0x0"}})
	assert.ErrorIs(t, err, felt.ErrRange)
}
