package bc

import (
	"bytes"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Yakuhito/hermes/errors"
)

// G2Element is a compressed BLS12-381 G2 point,
// the aggregated signature of a spend bundle.
type G2Element [96]byte

// IdentityG2 is the point at infinity. Bundles whose
// coins require no BLS signatures carry it.
var IdentityG2 = G2Element{0xc0}

// MarshalText satisfies the TextMarshaler interface.
func (g G2Element) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(g[:])), nil
}

// UnmarshalText satisfies the TextUnmarshaler interface.
func (g *G2Element) UnmarshalText(b []byte) error {
	b = bytes.TrimPrefix(b, []byte("0x"))
	if len(b) != hex.EncodedLen(len(g)) {
		return errors.WithDetailf(ErrMalformedArgument, "aggregated signature is %d hex digits, want %d", len(b), hex.EncodedLen(len(g)))
	}
	_, err := hex.Decode(g[:], b)
	return errors.Sub(ErrMalformedArgument, err)
}

// CoinSpend reveals a coin's puzzle and the solution
// it is run with.
type CoinSpend struct {
	Coin         Coin     `json:"coin"`
	PuzzleReveal HexBytes `json:"puzzle_reveal"`
	Solution     HexBytes `json:"solution"`
}

// SpendBundle is a set of coin spends accepted or
// rejected by the ledger as a unit.
type SpendBundle struct {
	CoinSpends          []CoinSpend `json:"coin_spends"`
	AggregatedSignature G2Element   `json:"aggregated_signature"`
}

// NewSpendBundle returns a bundle of spends
// carrying the identity aggregated signature.
func NewSpendBundle(spends ...CoinSpend) *SpendBundle {
	return &SpendBundle{CoinSpends: spends, AggregatedSignature: IdentityG2}
}

// Find returns the spend of the coin with the given id.
func (sb *SpendBundle) Find(id Bytes32) (*CoinSpend, bool) {
	for i := range sb.CoinSpends {
		if sb.CoinSpends[i].Coin.ID() == id {
			return &sb.CoinSpends[i], true
		}
	}
	return nil, false
}
