package felt

import (
	"fmt"
	"math/big"
)

// MaxShortTextLen is the number of bytes that fit in one felt.
const MaxShortTextLen = 31

// EncodeShortText packs an ASCII string of at most 31 bytes into a felt,
// big-endian. Only printable ASCII is accepted so the value round-trips
// through DecodeShortText.
func EncodeShortText(s string) (*big.Int, error) {
	if len(s) > MaxShortTextLen {
		return nil, fmt.Errorf("%w: %q is %d bytes, max %d", ErrValue, s, len(s), MaxShortTextLen)
	}
	for i := 0; i < len(s); i++ {
		if !printable(s[i]) {
			return nil, fmt.Errorf("%w: byte 0x%02x at offset %d is not printable ASCII", ErrValue, s[i], i)
		}
	}
	return new(big.Int).SetBytes([]byte(s)), nil
}

// DecodeShortText unpacks a felt into its ASCII text. Leading zero bytes are
// padding. Any other non-printable byte yields ErrDecode.
func DecodeShortText(raw *big.Int) (string, error) {
	if raw == nil || raw.Sign() == 0 {
		return "", nil
	}
	if raw.Sign() < 0 {
		return "", fmt.Errorf("%w: negative value", ErrDecode)
	}

	// big.Int.Bytes already drops leading zeros.
	b := raw.Bytes()
	if len(b) > MaxShortTextLen {
		return "", fmt.Errorf("%w: %d bytes, max %d", ErrDecode, len(b), MaxShortTextLen)
	}
	for i, c := range b {
		if !printable(c) {
			return "", fmt.Errorf("%w: byte 0x%02x at offset %d", ErrDecode, c, i)
		}
	}
	return string(b), nil
}

// DecodeShortTextHex is DecodeShortText for a wire hex (or decimal) string.
func DecodeShortTextHex(s string) (string, error) {
	n, ok := new(big.Int).SetString(trimHex(s))
	if !ok {
		return "", fmt.Errorf("%w: %q is not a number", ErrDecode, s)
	}
	return DecodeShortText(n)
}

// ShortTextOr decodes raw and falls back to placeholder when it is malformed.
func ShortTextOr(raw *big.Int, placeholder string) string {
	s, err := DecodeShortText(raw)
	if err != nil {
		return placeholder
	}
	return s
}

func printable(c byte) bool {
	return c >= 0x20 && c <= 0x7e
}

// trimHex returns the digits and base for big.Int.SetString.
func trimHex(s string) (string, int) {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		if len(s) == 2 {
			return "0", 16
		}
		return s[2:], 16
	}
	return s, 10
}
