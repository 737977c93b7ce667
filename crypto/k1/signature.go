package k1

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
)

// compact signature header for a compressed key, before the recovery id
const compactCompressed = 27 + 4

// Signature is a secp256k1 ECDSA signature, r‖s,
// each a 32-byte big-endian scalar.
type Signature [SignatureSize]byte

// ParseSignature accepts a 64-byte r‖s signature or a 65-byte
// wallet signature, whose trailing recovery byte is dropped.
// A signature with s in the upper half of the group order is
// rewritten to the equivalent lower-half form.
func ParseSignature(b []byte) (Signature, error) {
	var sig Signature
	switch len(b) {
	case SignatureSize, SignatureSize + 1:
	default:
		return sig, errors.WithDetailf(bc.ErrMalformedArgument, "signature is %d bytes", len(b))
	}
	r, s, ok := scalars(b[:SignatureSize])
	if !ok {
		return sig, errors.WithDetail(bc.ErrMalformedArgument, "signature scalar out of range")
	}
	if s.IsOverHalfOrder() {
		s.Negate()
	}
	r.PutBytesUnchecked(sig[:32])
	s.PutBytesUnchecked(sig[32:])
	return sig, nil
}

func scalars(b []byte) (r, s btcec.ModNScalar, ok bool) {
	if r.SetByteSlice(b[:32]) || s.SetByteSlice(b[32:64]) {
		return r, s, false
	}
	return r, s, !r.IsZero() && !s.IsZero()
}

// IsLowS reports whether s lies in the lower half
// of the group order.
func (sig Signature) IsLowS() bool {
	_, s, ok := scalars(sig[:])
	return ok && !s.IsOverHalfOrder()
}

// Verify checks sig over hash against pk. It returns
// bc.ErrSignatureMismatch for any signature the on-chain
// verifier would reject, including high-s signatures.
func (sig Signature) Verify(pk PublicKey, hash bc.Bytes32) error {
	key, err := pk.parse()
	if err != nil {
		return err
	}
	r, s, ok := scalars(sig[:])
	if !ok || s.IsOverHalfOrder() {
		return errors.WithDetail(bc.ErrSignatureMismatch, "non-canonical signature")
	}
	if !ecdsa.NewSignature(&r, &s).Verify(hash[:], key) {
		return bc.ErrSignatureMismatch
	}
	return nil
}

// String returns sig in 0x-prefixed hex.
func (sig Signature) String() string {
	return hexutil.Encode(sig[:])
}

// MarshalText satisfies the TextMarshaler interface.
func (sig Signature) MarshalText() ([]byte, error) {
	return []byte(sig.String()), nil
}

// UnmarshalText satisfies the TextUnmarshaler interface.
// It accepts the same forms as ParseSignature.
func (sig *Signature) UnmarshalText(b []byte) error {
	raw, err := hexutil.Decode(string(b))
	if err != nil {
		return errors.Sub(bc.ErrMalformedArgument, err)
	}
	*sig, err = ParseSignature(raw)
	return err
}

// Sign returns a deterministic (RFC 6979) low-s signature
// of hash by priv.
func Sign(priv *btcec.PrivateKey, hash bc.Bytes32) Signature {
	var sig Signature
	compact := ecdsa.SignCompact(priv, hash[:], true)
	copy(sig[:], compact[1:])
	return sig
}

// SignRecoverable is Sign followed by the Ethereum wallet
// recovery byte, 27 or 28.
func SignRecoverable(priv *btcec.PrivateKey, hash bc.Bytes32) [SignatureSize + 1]byte {
	var out [SignatureSize + 1]byte
	compact := ecdsa.SignCompact(priv, hash[:], true)
	copy(out[:], compact[1:])
	out[SignatureSize] = 27 + compact[0] - compactCompressed
	return out
}

// RecoverPublicKey returns the key that produced the 65-byte
// wallet signature sig over hash. The recovery byte may be
// 0, 1, 27 or 28.
func RecoverPublicKey(hash bc.Bytes32, sig []byte) (PublicKey, error) {
	var pk PublicKey
	if len(sig) != SignatureSize+1 {
		return pk, errors.WithDetailf(bc.ErrMalformedArgument, "recoverable signature is %d bytes", len(sig))
	}
	v := sig[SignatureSize]
	if v >= 27 {
		v -= 27
	}
	if v > 3 {
		return pk, errors.WithDetailf(bc.ErrMalformedArgument, "recovery byte %d", sig[SignatureSize])
	}
	compact := make([]byte, 0, SignatureSize+1)
	compact = append(compact, compactCompressed+v)
	compact = append(compact, sig[:SignatureSize]...)
	key, _, err := ecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return pk, errors.Sub(bc.ErrSignatureMismatch, err)
	}
	copy(pk[:], key.SerializeCompressed())
	return pk, nil
}
