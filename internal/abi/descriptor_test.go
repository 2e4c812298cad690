package abi

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selTransferFn  = "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e"
	selBalanceOf   = "0x35a73cd311a05d46deda634c5ee045db92f811b4e74bca4437fcb5302b7af33"
	keyTransferEv  = "0x99cd8bde557814842a3121e8ddfd433a539b8c9f14bf31ebf108d12e6196e9"
	keyMintEv      = "0x34e55c1cd55f1338241b50d352f0e91c7e4ffad0e4271d64eb347589ebdfd16"
	keyOwnershipEv = "0xc1b16c4caaf7563d3646b26aa470becc925edd3f4002f276e5a958b060fe07"
)

func hexInt(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s[2:], 16)
	require.True(t, ok)
	return n
}

// ---------------------------------------------------------------------------
// Selector
// ---------------------------------------------------------------------------

func TestSelector(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"transfer", selTransferFn},
		{"balance_of", selBalanceOf},
		{"Transfer", keyTransferEv},
		{"Mint", keyMintEv},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, "0x"+Selector(tt.name).Text(16))
		})
	}
}

func TestSelectorFits250Bits(t *testing.T) {
	for _, name := range []string{"a", "claim_ownership", "decrease_allowance"} {
		assert.LessOrEqual(t, Selector(name).BitLen(), 250)
	}
}

// ---------------------------------------------------------------------------
// Descriptor
// ---------------------------------------------------------------------------

func TestBuiltinERC20Functions(t *testing.T) {
	d, err := BuiltinDescriptor("erc20")
	require.NoError(t, err)

	for _, name := range []string{"name", "symbol", "decimals", "total_supply", "balance_of", "allowance", "owner"} {
		fn, err := d.Function(name)
		require.NoError(t, err, name)
		assert.True(t, fn.IsView(), name)
	}
	for _, name := range []string{"mint", "transfer", "transfer_from", "approve", "burn",
		"increase_allowance", "decrease_allowance", "init_ownership", "claim_ownership"} {
		fn, err := d.Function(name)
		require.NoError(t, err, name)
		assert.True(t, fn.IsExternal(), name)
	}
	assert.Len(t, d.Functions(), 16)
}

func TestFunctionNotFound(t *testing.T) {
	d, err := BuiltinDescriptor("erc20")
	require.NoError(t, err)
	_, err = d.Function("rug_pull")
	assert.ErrorIs(t, err, ErrFunctionNotFound)
}

func TestBuiltinMissing(t *testing.T) {
	_, err := BuiltinDescriptor("nope")
	assert.ErrorIs(t, err, ErrBuiltinNotFound)
}

func TestCalldataWidth(t *testing.T) {
	d, err := BuiltinDescriptor("erc20")
	require.NoError(t, err)

	tests := map[string]int{
		"transfer_from":   4,
		"transfer":        3,
		"burn":            2,
		"claim_ownership": 0,
		"balance_of":      1,
	}
	for name, want := range tests {
		fn, err := d.Function(name)
		require.NoError(t, err)
		got, err := d.CalldataWidth(fn)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestTypeWidthUnknown(t *testing.T) {
	_, err := TypeWidth("core::array::Array::<core::felt252>")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestEventNameForKey(t *testing.T) {
	d, err := BuiltinDescriptor("erc20")
	require.NoError(t, err)

	name, ok := d.EventNameForKey(hexInt(t, keyTransferEv))
	require.True(t, ok)
	assert.Equal(t, EventTransfer, name)

	name, ok = d.EventNameForKey(hexInt(t, keyOwnershipEv))
	require.True(t, ok)
	assert.Equal(t, EventOwnership, name)

	_, ok = d.EventNameForKey(big.NewInt(1))
	assert.False(t, ok)
	_, ok = d.EventNameForKey(nil)
	assert.False(t, ok)
}

func TestEventMembers(t *testing.T) {
	d, err := BuiltinDescriptor("erc20")
	require.NoError(t, err)

	ev, err := d.Event(EventTransfer)
	require.NoError(t, err)
	keys := ev.KeyMembers()
	require.Len(t, keys, 2)
	assert.Equal(t, "sender", keys[0].Name)
	assert.Equal(t, "receiver", keys[1].Name)
	data := ev.DataMembers()
	require.Len(t, data, 1)
	assert.Equal(t, "amount", data[0].Name)

	_, err = d.Event("starknet_erc20::erc_20::ERC20::Nope")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "Transfer", ShortName(EventTransfer))
	assert.Equal(t, "plain", ShortName("plain"))
}

// ---------------------------------------------------------------------------
// Parse / Load
// ---------------------------------------------------------------------------

func TestLoadMatchesBuiltin(t *testing.T) {
	d, err := Load(filepath.Join("testdata", "erc20.json"))
	require.NoError(t, err)

	builtin, err := BuiltinDescriptor("erc20")
	require.NoError(t, err)

	for _, fn := range builtin.Functions() {
		got, err := d.Function(fn.Name)
		require.NoError(t, err, fn.Name)
		assert.Equal(t, fn.StateMutability, got.StateMutability, fn.Name)
		assert.ElementsMatch(t, fn.Inputs, got.Inputs, fn.Name)
	}

	name, ok := d.EventNameForKey(hexInt(t, keyMintEv))
	require.True(t, ok)
	assert.Equal(t, EventMint, name)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	assert.Error(t, err)

	_, err = Parse([]byte(`[]`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAllBuiltinsSorted(t *testing.T) {
	all := AllBuiltins()
	require.NotEmpty(t, all)
	b, ok := GetBuiltin("erc20")
	require.True(t, ok)
	assert.Equal(t, "erc20", b.ID)
}
