package bc

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Yakuhito/hermes/errors"
)

// Bytes32 is a 32-byte value: a coin id, a puzzle hash,
// a genesis challenge or a structured-signing hash.
type Bytes32 [32]byte

// String returns the bytes of b32 encoded in 0x-prefixed hex.
func (b32 Bytes32) String() string {
	return hexutil.Encode(b32[:])
}

// MarshalText satisfies the TextMarshaler interface.
// It returns the bytes of b32 encoded in 0x-prefixed hex,
// for formats that can't hold arbitrary binary data.
// It never returns an error.
func (b32 Bytes32) MarshalText() ([]byte, error) {
	return []byte(b32.String()), nil
}

// UnmarshalText satisfies the TextUnmarshaler interface.
// It decodes hex data from b into b32. The 0x prefix is optional.
func (b32 *Bytes32) UnmarshalText(b []byte) error {
	b = bytes.TrimPrefix(b, []byte("0x"))
	if len(b) != hex.EncodedLen(len(*b32)) {
		return errors.WithDetailf(
			ErrMalformedArgument,
			"expected hex string of length %d, but got `%s`",
			hex.EncodedLen(len(*b32)),
			b,
		)
	}
	_, err := hex.Decode(b32[:], b)
	return errors.Sub(ErrMalformedArgument, err)
}

// UnmarshalJSON satisfies the json.Unmarshaler interface.
// If b is a JSON-encoded null, it copies the zero-value into b32. Othwerwise, it
// decodes hex data from b into b32.
func (b32 *Bytes32) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*b32 = Bytes32{}
		return nil
	}
	s := new(string)
	err := json.Unmarshal(b, s)
	if err != nil {
		return err
	}
	return b32.UnmarshalText([]byte(*s))
}

// ParseBytes32 decodes a 0x-prefixed or bare hex string.
func ParseBytes32(s string) (b32 Bytes32, err error) {
	err = b32.UnmarshalText([]byte(s))
	return b32, err
}

// BytesToBytes32 copies b into a Bytes32.
// It fails if b is not exactly 32 bytes long.
func BytesToBytes32(b []byte) (b32 Bytes32, err error) {
	if len(b) != len(b32) {
		return b32, errors.WithDetailf(ErrMalformedArgument, "got %d bytes, want 32", len(b))
	}
	copy(b32[:], b)
	return b32, nil
}

// HexBytes is a variable-length byte string whose text
// and JSON form is 0x-prefixed hex. Serialized programs
// use it in coin spends.
type HexBytes []byte

// MarshalText satisfies the TextMarshaler interface.
func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(h)), nil
}

// UnmarshalText satisfies the TextUnmarshaler interface.
// The 0x prefix is optional.
func (h *HexBytes) UnmarshalText(b []byte) error {
	b = bytes.TrimPrefix(b, []byte("0x"))
	buf := make([]byte, hex.DecodedLen(len(b)))
	if _, err := hex.Decode(buf, b); err != nil {
		return errors.Sub(ErrMalformedArgument, err)
	}
	*h = buf
	return nil
}
