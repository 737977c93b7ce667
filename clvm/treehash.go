package clvm

import (
	"crypto/sha256"

	"github.com/Yakuhito/hermes/protocol/bc"
)

// Tree hash domain prefixes.
const (
	atomPrefixByte = 0x01
	pairPrefixByte = 0x02
)

// TreeHash returns the content hash of p: sha256(0x01 ‖ atom)
// for atoms and sha256(0x02 ‖ hash(first) ‖ hash(rest)) for
// pairs. It is the puzzle hash a coin commits to.
func (p *Program) TreeHash() bc.Bytes32 {
	if p.IsAtom() {
		return HashAtom(p.atom)
	}
	return HashPair(p.first.TreeHash(), p.rest.TreeHash())
}

// HashAtom returns the tree hash of the atom b.
func HashAtom(b []byte) (h bc.Bytes32) {
	d := sha256.New()
	d.Write([]byte{atomPrefixByte})
	d.Write(b)
	d.Sum(h[:0])
	return h
}

// HashPair returns the tree hash of a pair whose
// halves have the given hashes.
func HashPair(first, rest bc.Bytes32) (h bc.Bytes32) {
	d := sha256.New()
	d.Write([]byte{pairPrefixByte})
	d.Write(first[:])
	d.Write(rest[:])
	d.Sum(h[:0])
	return h
}

// TreeHashList returns the tree hash of the proper
// list whose elements have the given hashes.
func TreeHashList(items ...bc.Bytes32) bc.Bytes32 {
	h := nilHash
	for i := len(items) - 1; i >= 0; i-- {
		h = HashPair(items[i], h)
	}
	return h
}

var (
	nilHash   = HashAtom(nil)
	oneHash   = HashAtom([]byte{1})
	quoteHash = HashAtom([]byte{byte(OpQuote)})
	applyHash = HashAtom([]byte{byte(OpApply)})
	consHash  = HashAtom([]byte{byte(OpCons)})
)
