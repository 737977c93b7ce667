// Package k1 holds the secp256k1 signer material used by the
// message authorization layer: compressed and uncompressed public
// keys, Ethereum-style addresses and 64-byte r‖s signatures.
//
// Signatures are checked the way the on-chain secp256k1_verify
// operator checks them: the s component must lie in the lower
// half of the group order. ParseSignature normalizes wallet output
// into that form.
package k1

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Yakuhito/hermes/crypto/keccak"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
)

// Sizes of the fixed-width values in this package.
const (
	PublicKeySize       = 33
	UncompressedKeySize = 64
	AddressSize         = 20
	SignatureSize       = 64
)

// ErrInvalidKey is returned for byte strings of the right
// width that do not encode a point on the curve.
var ErrInvalidKey = errors.New("invalid secp256k1 public key")

// PublicKey is a SEC1 compressed public key.
type PublicKey [PublicKeySize]byte

// UncompressedKey is an uncompressed public key
// without its 0x04 format byte.
type UncompressedKey [UncompressedKeySize]byte

// Address is the trailing 20 bytes of the Keccak-256
// hash of an uncompressed public key.
type Address [AddressSize]byte

// ParsePublicKey accepts a 33-byte compressed key, a 65-byte
// uncompressed key with its 0x04 prefix, or the 64-byte raw
// form, and returns the compressed key.
func ParsePublicKey(b []byte) (PublicKey, error) {
	var pk PublicKey
	switch len(b) {
	case PublicKeySize:
	case UncompressedKeySize + 1:
	case UncompressedKeySize:
		b = append([]byte{0x04}, b...)
	default:
		return pk, errors.WithDetailf(bc.ErrMalformedArgument, "public key is %d bytes", len(b))
	}
	key, err := btcec.ParsePubKey(b)
	if err != nil {
		return pk, errors.Sub(ErrInvalidKey, err)
	}
	copy(pk[:], key.SerializeCompressed())
	return pk, nil
}

// FromPrivate returns the compressed public key of priv.
func FromPrivate(priv *btcec.PrivateKey) (pk PublicKey) {
	copy(pk[:], priv.PubKey().SerializeCompressed())
	return pk
}

func (pk PublicKey) parse() (*btcec.PublicKey, error) {
	key, err := btcec.ParsePubKey(pk[:])
	if err != nil {
		return nil, errors.Sub(ErrInvalidKey, err)
	}
	return key, nil
}

// Uncompressed returns the uncompressed form of pk.
func (pk PublicKey) Uncompressed() (UncompressedKey, error) {
	var u UncompressedKey
	key, err := pk.parse()
	if err != nil {
		return u, err
	}
	copy(u[:], key.SerializeUncompressed()[1:])
	return u, nil
}

// Address returns the address derived from pk.
func (pk PublicKey) Address() (Address, error) {
	u, err := pk.Uncompressed()
	if err != nil {
		return Address{}, err
	}
	return u.Address(), nil
}

// String returns pk in 0x-prefixed hex.
func (pk PublicKey) String() string {
	return hexutil.Encode(pk[:])
}

// MarshalText satisfies the TextMarshaler interface.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText satisfies the TextUnmarshaler interface.
func (pk *PublicKey) UnmarshalText(b []byte) error {
	raw, err := hexutil.Decode(string(b))
	if err != nil {
		return errors.Sub(bc.ErrMalformedArgument, err)
	}
	*pk, err = ParsePublicKey(raw)
	return err
}

// Address returns keccak256(u)[12:].
func (u UncompressedKey) Address() (a Address) {
	h := keccak.Sum(u[:])
	copy(a[:], h[12:])
	return a
}

// Compress returns the compressed form of u:
// a parity byte for y followed by x.
// It does not check that u is on the curve.
func (u UncompressedKey) Compress() (pk PublicKey) {
	pk[0] = 0x02 | u[63]&1
	copy(pk[1:], u[:32])
	return pk
}

// String returns u in 0x-prefixed hex.
func (u UncompressedKey) String() string {
	return hexutil.Encode(u[:])
}

// MarshalText satisfies the TextMarshaler interface.
func (u UncompressedKey) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// String returns the EIP-55 mixed-case checksum form of a.
func (a Address) String() string {
	return common.Address(a).Hex()
}

// MarshalText satisfies the TextMarshaler interface.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText satisfies the TextUnmarshaler interface.
func (a *Address) UnmarshalText(b []byte) error {
	var err error
	*a, err = ParseAddress(string(b))
	return err
}

// ParseAddress decodes a 0x-prefixed 20-byte hex address.
// The checksum casing is not enforced.
func ParseAddress(s string) (Address, error) {
	var a Address
	if !common.IsHexAddress(s) {
		return a, errors.WithDetailf(bc.ErrMalformedArgument, "%q is not a 20-byte hex address", s)
	}
	return Address(common.HexToAddress(s)), nil
}
