package layer

import (
	"bytes"

	"github.com/Yakuhito/hermes/clvm"
	"github.com/Yakuhito/hermes/crypto/k1"
	"github.com/Yakuhito/hermes/eip712"
	"github.com/Yakuhito/hermes/errors"
	"github.com/Yakuhito/hermes/protocol/bc"
	"github.com/Yakuhito/hermes/protocol/consensus"
	"github.com/Yakuhito/hermes/spend"
)

// MessageLayer is a member puzzle unlocked by an EIP-712 signature.
//
// The puzzle is curried with (0x19 0x01 ‖ domainSeparator, typeHash,
// identity), where identity is PublicKey for MessageV1 and MessageV2
// and Address for MessageV3.
type MessageLayer struct {
	Variant   Variant
	Network   consensus.Network
	PublicKey k1.PublicKey
	Address   k1.Address
}

var _ Layer = (*MessageLayer)(nil)

type keyArgs struct {
	Prefix    []byte `clvm:"width=34"`
	TypeHash  bc.Bytes32
	PublicKey k1.PublicKey
}

type addressArgs struct {
	Prefix   []byte `clvm:"width=34"`
	TypeHash bc.Bytes32
	Address  k1.Address
}

// NewMessageLayer returns the layer of variant v for the signer pk.
// For MessageV3 the layer commits to pk's address.
func NewMessageLayer(v Variant, network consensus.Network, pk k1.PublicKey) (*MessageLayer, error) {
	if !v.valid() {
		return nil, errors.WithDetailf(ErrVariant, "variant %d", int(v))
	}
	l := &MessageLayer{Variant: v, Network: network}
	if v.UsesAddress() {
		a, err := pk.Address()
		if err != nil {
			return nil, err
		}
		l.Address = a
		return l, nil
	}
	if _, err := pk.Uncompressed(); err != nil {
		return nil, err
	}
	l.PublicKey = pk
	return l, nil
}

// NewAddressLayer returns a MessageV3 layer for an address
// whose public key is not yet known.
func NewAddressLayer(network consensus.Network, a k1.Address) *MessageLayer {
	return &MessageLayer{Variant: MessageV3, Network: network, Address: a}
}

func (l *MessageLayer) Kind() Kind { return KindMessage }

// Domain returns the signing domain of l.
func (l *MessageLayer) Domain() eip712.Domain {
	return eip712.Domain{Scheme: l.Variant.Scheme(), Network: l.Network}
}

// HashToSign returns the digest the signer signs to
// spend coinID with the given delegated puzzle.
func (l *MessageLayer) HashToSign(coinID, delegatedPuzzleHash bc.Bytes32) bc.Bytes32 {
	return l.Domain().HashToSign(coinID, delegatedPuzzleHash)
}

// TypedData returns the wallet signing request for the same digest.
func (l *MessageLayer) TypedData(coinID, delegatedPuzzleHash bc.Bytes32) *eip712.TypedData {
	return l.Domain().TypedData(coinID, delegatedPuzzleHash)
}

func (l *MessageLayer) args() interface{} {
	prefix := l.Domain().Prefix()
	if l.Variant.UsesAddress() {
		return &addressArgs{Prefix: prefix, TypeHash: eip712.TypeHash, Address: l.Address}
	}
	return &keyArgs{Prefix: prefix, TypeHash: eip712.TypeHash, PublicKey: l.PublicKey}
}

func (l *MessageLayer) identity() []byte {
	if l.Variant.UsesAddress() {
		return l.Address[:]
	}
	return l.PublicKey[:]
}

func (l *MessageLayer) ConstructPuzzle(ctx *spend.Context) (*clvm.Program, error) {
	if !l.Variant.valid() {
		return nil, errors.WithDetailf(ErrVariant, "variant %d", int(l.Variant))
	}
	return ctx.Curry(l.Variant.Template(), l.args())
}

// PuzzleHash panics if l.Variant is not a known variant.
func (l *MessageLayer) PuzzleHash() bc.Bytes32 {
	t := l.Variant.Template()
	if t == nil {
		panic(errors.WithDetailf(ErrVariant, "variant %d", int(l.Variant)))
	}
	return clvm.CurryTreeHash(t.Hash,
		clvm.HashAtom(l.Domain().Prefix()),
		clvm.HashAtom(eip712.TypeHash[:]),
		clvm.HashAtom(l.identity()),
	)
}

func parseMessage(v Variant, args []*clvm.Program, networks []consensus.Network) (*MessageLayer, error) {
	var prefix []byte
	var typeHash bc.Bytes32
	l := &MessageLayer{Variant: v}
	if v.UsesAddress() {
		var a addressArgs
		if err := clvm.UnmarshalCurried(args, &a); err != nil {
			return nil, decodeErr(err, "message layer arguments")
		}
		prefix, typeHash, l.Address = a.Prefix, a.TypeHash, a.Address
	} else {
		var a keyArgs
		if err := clvm.UnmarshalCurried(args, &a); err != nil {
			return nil, decodeErr(err, "message layer arguments")
		}
		if _, err := a.PublicKey.Uncompressed(); err != nil {
			return nil, decodeErr(err, "message layer public key")
		}
		prefix, typeHash, l.PublicKey = a.Prefix, a.TypeHash, a.PublicKey
	}
	if typeHash != eip712.TypeHash {
		return nil, errors.WithDetailf(bc.ErrDecode, "type hash %s is not %s", typeHash, eip712.TypeHash)
	}
	for _, n := range append(consensus.Known(), networks...) {
		d := eip712.Domain{Scheme: v.Scheme(), Network: n}
		if bytes.Equal(prefix, d.Prefix()) {
			l.Network = n
			return l, nil
		}
	}
	return nil, errors.WithDetailf(bc.ErrDecode, "domain prefix %x matches no known network", prefix)
}

// ParseMessageLayer recognizes a message puzzle of any variant.
// It returns (nil, nil) if p is not one.
func ParseMessageLayer(p *clvm.Program, networks ...consensus.Network) (*MessageLayer, error) {
	l, err := ParsePuzzle(p, networks...)
	if err != nil {
		return nil, err
	}
	ml, _ := l.(*MessageLayer)
	return ml, nil
}

// MessageSolution is the witness of a message layer.
type MessageSolution struct {
	CoinID bc.Bytes32

	// SignedHash is the hash to sign, carried only by MessageV2.
	SignedHash bc.Bytes32

	// PublicKey is the signer's key, carried only by MessageV3.
	PublicKey k1.UncompressedKey

	Signature         k1.Signature
	DelegatedPuzzle   *clvm.Program
	DelegatedSolution *clvm.Program
}

func (*MessageSolution) solution() {}

type v1Solution struct {
	CoinID            bc.Bytes32
	Signature         k1.Signature
	DelegatedPuzzle   *clvm.Program
	DelegatedSolution *clvm.Program
}

type v2Solution struct {
	CoinID            bc.Bytes32
	SignedHash        bc.Bytes32
	Signature         k1.Signature
	DelegatedPuzzle   *clvm.Program
	DelegatedSolution *clvm.Program
}

type v3Solution struct {
	CoinID            bc.Bytes32
	PublicKey         k1.UncompressedKey
	Signature         k1.Signature
	DelegatedPuzzle   *clvm.Program
	DelegatedSolution *clvm.Program
}

// Solve returns the solution spending coinID with the given
// delegated spend and a signature by pk. It fills the fields
// carried by l's variant.
func (l *MessageLayer) Solve(coinID bc.Bytes32, dp, ds *clvm.Program, pk k1.PublicKey, sig k1.Signature) (*MessageSolution, error) {
	sol := &MessageSolution{
		CoinID:            coinID,
		Signature:         sig,
		DelegatedPuzzle:   dp,
		DelegatedSolution: ds,
	}
	if l.Variant.EmbedsHash() {
		sol.SignedHash = l.HashToSign(coinID, treeHash(dp))
	}
	if l.Variant.UsesAddress() {
		u, err := pk.Uncompressed()
		if err != nil {
			return nil, err
		}
		sol.PublicKey = u
	}
	return sol, nil
}

// ConstructSolution encodes sol in l's variant. A MessageV2
// solution with a zero SignedHash gets the recomputed hash; a
// nonzero one must equal it.
func (l *MessageLayer) ConstructSolution(ctx *spend.Context, s Solution) (*clvm.Program, error) {
	sol, ok := s.(*MessageSolution)
	if !ok {
		return nil, errors.WithDetailf(ErrSolutionKind, "message layer given %T", s)
	}
	if sol == nil {
		return nil, errors.WithDetail(bc.ErrMalformedArgument, "nil message solution")
	}
	var wire interface{}
	switch l.Variant {
	case MessageV1:
		wire = &v1Solution{sol.CoinID, sol.Signature, sol.DelegatedPuzzle, sol.DelegatedSolution}
	case MessageV2:
		h := l.HashToSign(sol.CoinID, treeHash(sol.DelegatedPuzzle))
		if sol.SignedHash != (bc.Bytes32{}) && sol.SignedHash != h {
			return nil, errors.WithDetailf(bc.ErrMessageMismatch, "signed hash %s, recomputed %s", sol.SignedHash, h)
		}
		wire = &v2Solution{sol.CoinID, h, sol.Signature, sol.DelegatedPuzzle, sol.DelegatedSolution}
	case MessageV3:
		wire = &v3Solution{sol.CoinID, sol.PublicKey, sol.Signature, sol.DelegatedPuzzle, sol.DelegatedSolution}
	default:
		return nil, errors.WithDetailf(ErrVariant, "variant %d", int(l.Variant))
	}
	p, err := clvm.Marshal(wire)
	return p, errors.Sub(bc.ErrMalformedArgument, err)
}

func (l *MessageLayer) ParseSolution(p *clvm.Program) (Solution, error) {
	sol := new(MessageSolution)
	var err error
	switch l.Variant {
	case MessageV1:
		var w v1Solution
		err = clvm.Unmarshal(p, &w)
		sol.CoinID, sol.Signature, sol.DelegatedPuzzle, sol.DelegatedSolution = w.CoinID, w.Signature, w.DelegatedPuzzle, w.DelegatedSolution
	case MessageV2:
		var w v2Solution
		err = clvm.Unmarshal(p, &w)
		sol.CoinID, sol.SignedHash, sol.Signature, sol.DelegatedPuzzle, sol.DelegatedSolution = w.CoinID, w.SignedHash, w.Signature, w.DelegatedPuzzle, w.DelegatedSolution
	case MessageV3:
		var w v3Solution
		err = clvm.Unmarshal(p, &w)
		sol.CoinID, sol.PublicKey, sol.Signature, sol.DelegatedPuzzle, sol.DelegatedSolution = w.CoinID, w.PublicKey, w.Signature, w.DelegatedPuzzle, w.DelegatedSolution
	default:
		return nil, errors.WithDetailf(ErrVariant, "variant %d", int(l.Variant))
	}
	if err != nil {
		return nil, decodeErr(err, "message layer solution")
	}
	return sol, nil
}

// Verify performs the checks the puzzle makes when spending coinID
// with sol, in the same order, and fails on the first one that does
// not hold. No signature is checked unless the embedded hash and the
// claimed address are correct.
func (l *MessageLayer) Verify(coinID bc.Bytes32, sol *MessageSolution) error {
	h := l.HashToSign(sol.CoinID, treeHash(sol.DelegatedPuzzle))
	if l.Variant.EmbedsHash() && sol.SignedHash != h {
		return errors.WithDetailf(bc.ErrMessageMismatch, "signed hash %s, recomputed %s", sol.SignedHash, h)
	}

	key := l.PublicKey
	if l.Variant.UsesAddress() {
		if a := sol.PublicKey.Address(); a != l.Address {
			return errors.WithDetailf(bc.ErrAddressMismatch, "key hashes to %s, puzzle commits to %s", a, l.Address)
		}
		key = sol.PublicKey.Compress()
	}

	err := sol.Signature.Verify(key, h)
	if errors.Root(err) == k1.ErrInvalidKey {
		err = errors.Sub(bc.ErrSignatureMismatch, err)
	}
	if err != nil {
		return err
	}

	if sol.CoinID != coinID {
		return errors.WithDetailf(bc.ErrMessageMismatch, "solution asserts coin %s, spending %s", sol.CoinID, coinID)
	}
	return nil
}

func treeHash(p *clvm.Program) bc.Bytes32 {
	if p == nil {
		p = clvm.Nil
	}
	return p.TreeHash()
}
