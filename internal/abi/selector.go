package abi

import (
	"math/big"

	"golang.org/x/crypto/sha3"
)

// Core Cairo types used by the token interface.
const (
	TypeFelt    = "core::felt252"
	TypeAddress = "core::starknet::contract_address::ContractAddress"
	TypeBool    = "core::bool"
	TypeU8      = "core::integer::u8"
	TypeU16     = "core::integer::u16"
	TypeU32     = "core::integer::u32"
	TypeU64     = "core::integer::u64"
	TypeU128    = "core::integer::u128"
	TypeU256    = "core::integer::u256"
)

// mask250 keeps the low 250 bits of a Keccak digest.
var mask250 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

// Selector computes the Starknet entry point / event selector of name:
// Keccak-256 truncated to 250 bits (sn_keccak).
func Selector(name string) *big.Int {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	n := new(big.Int).SetBytes(h.Sum(nil))
	return n.And(n, mask250)
}
