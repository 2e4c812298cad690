package felt

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Codec errors. Callers match them with errors.Is.
var (
	ErrRange  = errors.New("value out of range")
	ErrValue  = errors.New("invalid value")
	ErrDecode = errors.New("malformed short string")
)

// Prime is the Starknet field modulus P = 2^251 + 17·2^192 + 1.
var Prime = func() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 251)
	p.Add(p, new(big.Int).Lsh(big.NewInt(17), 192))
	return p.Add(p, big.NewInt(1))
}()

// ParseFelt parses a 0x-prefixed hex or a decimal string into a field element.
func ParseFelt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty felt", ErrValue)
	}

	n := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if digits == "" {
			digits = "0"
		}
		_, ok = n.SetString(digits, 16)
	} else {
		_, ok = n.SetString(s, 10)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a number", ErrValue, s)
	}
	if n.Sign() < 0 || n.Cmp(Prime) >= 0 {
		return nil, fmt.Errorf("%w: %q is outside the field", ErrValue, s)
	}
	return n, nil
}

// ParseAddress parses a contract or account address.
func ParseAddress(s string) (*big.Int, error) {
	a, err := ParseFelt(s)
	if err != nil {
		return nil, fmt.Errorf("address: %w", err)
	}
	return a, nil
}

// MustParse is ParseFelt for constants. It panics on bad input.
func MustParse(s string) *big.Int {
	n, err := ParseFelt(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Hex renders a felt for the wire: 0x-prefixed lowercase hex.
func Hex(v *big.Int) string {
	if v == nil {
		return "0x0"
	}
	return hexutil.EncodeBig(v)
}

// FormatAddress renders an address for display: "0x0" for zero, otherwise
// lowercase hex without padding.
func FormatAddress(raw *big.Int) string {
	return Hex(raw)
}

// HexSlice renders every element with Hex.
func HexSlice(vs []*big.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = Hex(v)
	}
	return out
}

// ParseSlice parses a list of wire felts, as returned by a node.
func ParseSlice(ss []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(ss))
	for i, s := range ss {
		v, err := ParseFelt(s)
		if err != nil {
			return nil, fmt.Errorf("felt %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// SameAddress compares two addresses numerically, so zero padding and case
// do not matter.
func SameAddress(a, b string) bool {
	x, err := ParseFelt(a)
	if err != nil {
		return false
	}
	y, err := ParseFelt(b)
	if err != nil {
		return false
	}
	return x.Cmp(y) == 0
}
