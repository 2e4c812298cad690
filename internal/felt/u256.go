package felt

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// two128 is the limb base of a u256.
var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

// U256 is a Cairo core::integer::u256: two 128-bit limbs with
// value = Low + High·2^128. Both limbs are always < 2^128.
type U256 struct {
	Low  *big.Int
	High *big.Int
}

// EncodeWide splits v into u256 limbs. Fails with ErrRange when v is negative
// or does not fit in 256 bits.
func EncodeWide(v *big.Int) (U256, error) {
	if v == nil {
		return U256{}, fmt.Errorf("%w: nil amount", ErrValue)
	}
	if v.Sign() < 0 {
		return U256{}, fmt.Errorf("%w: %s is negative", ErrRange, v)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return U256{}, fmt.Errorf("%w: %s does not fit in 256 bits", ErrRange, v)
	}
	return fromUint256(u), nil
}

// ParseWide parses a decimal (or 0x-hex) amount and encodes it.
func ParseWide(s string) (U256, error) {
	s = strings.TrimSpace(s)
	n := new(big.Int)
	var ok bool
	switch {
	case s == "":
		return U256{}, fmt.Errorf("%w: empty amount", ErrValue)
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		_, ok = n.SetString(s[2:], 16)
	default:
		_, ok = n.SetString(s, 10)
	}
	if !ok {
		return U256{}, fmt.Errorf("%w: amount %q is not an integer", ErrValue, s)
	}
	return EncodeWide(n)
}

// U256FromFelts builds a u256 from its wire limbs (low first).
func U256FromFelts(low, high *big.Int) (U256, error) {
	w := U256{Low: low, High: high}
	if err := w.Validate(); err != nil {
		return U256{}, err
	}
	return w, nil
}

// DecodeWide renders the exact decimal value of w.
func DecodeWide(w U256) string {
	return w.Int().Dec()
}

// Validate checks the limb invariant.
func (w U256) Validate() error {
	for name, limb := range map[string]*big.Int{"low": w.Low, "high": w.High} {
		if limb == nil {
			return fmt.Errorf("%w: missing %s limb", ErrValue, name)
		}
		if limb.Sign() < 0 || limb.Cmp(two128) >= 0 {
			return fmt.Errorf("%w: %s limb %s exceeds 128 bits", ErrRange, name, limb)
		}
	}
	return nil
}

// Int returns the full 256-bit value.
func (w U256) Int() *uint256.Int {
	lo, _ := uint256.FromBig(orZero(w.Low))
	hi, _ := uint256.FromBig(orZero(w.High))
	hi.Lsh(hi, 128)
	return hi.Or(hi, lo)
}

// BigInt returns the full value as a big.Int.
func (w U256) BigInt() *big.Int {
	return w.Int().ToBig()
}

// Felts returns the calldata encoding: [low, high].
func (w U256) Felts() []*big.Int {
	return []*big.Int{orZero(w.Low), orZero(w.High)}
}

// IsZero reports whether the value is zero.
func (w U256) IsZero() bool {
	return w.Int().IsZero()
}

func (w U256) String() string {
	return DecodeWide(w)
}

func fromUint256(u *uint256.Int) U256 {
	var lo, hi uint256.Int
	lo[0], lo[1] = u[0], u[1]
	hi[0], hi[1] = u[2], u[3]
	return U256{Low: lo.ToBig(), High: hi.ToBig()}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
