package txbuilder

import (
	"context"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Yakuhito/hermes/crypto/k1"
	"github.com/Yakuhito/hermes/eip712"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/log"
	"github.com/Yakuhito/hermes/protocol/bc"
)

// ErrNoKey is returned by a local signer that holds
// no key for a signing instruction.
var ErrNoKey = errors.New("no key for signer")

// SigningInstruction tells an external signer what to sign for
// one message spend. A wallet can sign TypedData with
// eth_signTypedData_v4; other signers sign HashToSign directly.
type SigningInstruction struct {
	Position            int               `json:"position"`
	Variant             string            `json:"variant"`
	CoinID              bc.Bytes32        `json:"coin_id"`
	DelegatedPuzzleHash bc.Bytes32        `json:"delegated_puzzle_hash"`
	HashToSign          bc.Bytes32        `json:"hash_to_sign"`
	TypedData           *eip712.TypedData `json:"typed_data"`

	// Exactly one of PublicKey and Address is set when the
	// instruction is built. Sign fills in PublicKey for an
	// address signer by recovering it from the signature.
	PublicKey *k1.PublicKey `json:"public_key,omitempty"`
	Address   *k1.Address   `json:"address,omitempty"`

	Signature bc.HexBytes `json:"signature,omitempty"`
}

// SignFunc returns a 64-byte signature or a 65-byte recoverable
// signature of si.HashToSign.
type SignFunc func(ctx context.Context, si *SigningInstruction) ([]byte, error)

// Sign asks signFn for every signature tpl is missing. Requests
// run concurrently, one goroutine per instruction, and the first
// failure cancels the context passed to the others. Signatures
// are checked against the instruction's signer before being stored.
func Sign(ctx context.Context, tpl *Template, signFn SignFunc) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, si := range tpl.SigningInstructions {
		if len(si.Signature) > 0 {
			continue
		}
		i, si := i, si
		g.Go(func() error {
			b, err := signFn(gctx, si)
			if err != nil {
				return errors.WithDetailf(err, "computing signature %d", i)
			}
			err = si.addSignature(b)
			if err != nil {
				return errors.Wrapf(err, "signature %d", i)
			}
			log.Printkv(ctx, log.KeyCoin, si.CoinID, log.KeyVariant, si.Variant, "signed", si.HashToSign)
			return nil
		})
	}
	return g.Wait()
}

func (si *SigningInstruction) addSignature(b []byte) error {
	sig, err := k1.ParseSignature(b)
	if err != nil {
		return err
	}
	if si.PublicKey == nil {
		if si.Address == nil {
			return errors.WithDetail(ErrBadTemplate, "signing instruction has no signer")
		}
		pk, err := k1.RecoverPublicKey(si.HashToSign, b)
		if err != nil {
			return errors.WithDetail(err, "an address signer needs a 65-byte recoverable signature")
		}
		a, err := pk.Address()
		if err != nil {
			return err
		}
		if a != *si.Address {
			return errors.WithDetailf(bc.ErrAddressMismatch, "signature recovers %s, want %s", a, si.Address)
		}
		si.PublicKey = &pk
	}
	err = sig.Verify(*si.PublicKey, si.HashToSign)
	if err != nil {
		return err
	}
	si.Signature = sig[:]
	return nil
}

// LocalSigner returns a SignFunc that signs with whichever of keys
// matches the instruction's public key or address. It produces
// 65-byte recoverable signatures, as a wallet does.
func LocalSigner(keys ...*btcec.PrivateKey) SignFunc {
	return func(ctx context.Context, si *SigningInstruction) ([]byte, error) {
		for _, priv := range keys {
			pk := k1.FromPrivate(priv)
			if si.PublicKey != nil && *si.PublicKey == pk {
				sig := k1.SignRecoverable(priv, si.HashToSign)
				return sig[:], nil
			}
			if si.Address != nil {
				a, err := pk.Address()
				if err == nil && a == *si.Address {
					sig := k1.SignRecoverable(priv, si.HashToSign)
					return sig[:], nil
				}
			}
		}
		return nil, errors.WithDetailf(ErrNoKey, "coin %s", si.CoinID)
	}
}
